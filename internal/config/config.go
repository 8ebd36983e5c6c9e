package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tracewire/usdtgen/internal/abi"
	"github.com/tracewire/usdtgen/internal/probe"
)

// DefaultFileName is looked up in the working directory when no explicit
// config path is given.
const DefaultFileName = ".usdtgen.yaml"

// Config is the full set of generation settings.
type Config struct {
	// Out is the directory generated files are written to.
	Out string `yaml:"out"`

	// Package is the package name of generated Go bindings.
	Package string `yaml:"package"`

	// GoBindings switches emission of the cgo binding file.
	GoBindings bool `yaml:"go_bindings"`

	// CaseFoldingABI targets consumers that fold probe identifier case,
	// turning fire/Fire into a generation-time collision.
	CaseFoldingABI bool `yaml:"case_folding_abi"`

	// Encodings maps named source types to one of the built-in semantic
	// types, e.g. "time.Duration: int64". Merged over the built-in table;
	// built-ins win on conflict.
	Encodings map[string]probe.Type `yaml:"encodings"`
}

// Default returns the settings used when no config file is present.
func Default() Config {
	return Config{
		Out:        ".",
		Package:    "usdt",
		GoBindings: true,
	}
}

// Load reads the config at path. An empty path means DefaultFileName, and a
// missing file at that default is not an error, just the defaults.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	return Parse(data)
}

// Parse decodes settings from raw yaml over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Out == "" {
		cfg.Out = "."
	}
	if cfg.Package == "" {
		cfg.Package = "usdt"
	}
	if !probe.IsIdent(cfg.Package) {
		return Config{}, fmt.Errorf("parse config: %q is not a valid package name", cfg.Package)
	}

	return cfg, nil
}

// Profile resolves the target ABI profile from the settings.
func (c Config) Profile() abi.Profile {
	if c.CaseFoldingABI {
		return abi.CaseFolding()
	}
	return abi.SystemTap()
}
