// Package generate orchestrates a full generation run.
//
// For every provider of the batch the driver encodes arguments, allocates
// identifiers, renders the wrapper files and writes them to the output
// directory. Per-probe problems are collected across the whole batch and
// reported together; a provider with any problem produces no output files at
// all. Writes go through a temp-file-and-rename step so a crashed or failed
// run can never leave a half-written wrapper for the build to pick up. This
// is the only package with filesystem side effects.
package generate
