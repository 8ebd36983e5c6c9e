// Package config reads the optional .usdtgen.yaml generation settings.
//
// Everything here has a working default: the config file exists so projects
// can pin an output directory, widen the encoding table with their own named
// types, or target a case-folding consumer, without growing the command line.
package config
