package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/joklawitter/algo-phylo/nexus"
)

// options mirrors nexus.Options in a form that can be read from a file.
type options struct {
	Workers int  `toml:"workers" yaml:"workers"`
	Lenient bool `toml:"lenient" yaml:"lenient"`
}

func (o *options) nexus() nexus.Options {
	return nexus.Options{Workers: o.Workers, Lenient: o.Lenient}
}

// merge copies values from a file into o, except those given explicitly on
// the command line.
func (o *options) merge(file *options, flags *pflag.FlagSet) {
	if !flags.Changed("workers") {
		o.Workers = file.Workers
	}
	if !flags.Changed("lenient") {
		o.Lenient = file.Lenient
	}
}

// loadOptions reads options from a TOML or YAML file, chosen by extension.
// Keys missing from the file keep their defaults.
func loadOptions(name string) (*options, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}

	opts := defaultOptions()
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), opts); err != nil {
			return nil, fmt.Errorf("Could not read '%s': %s", name, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, opts); err != nil {
			return nil, fmt.Errorf("Could not read '%s': %s", name, err)
		}
	default:
		return nil, fmt.Errorf("Unknown options file type '%s'.", ext)
	}
	if opts.Workers < 0 {
		return nil, fmt.Errorf("Invalid workers %d in '%s'.", opts.Workers, name)
	}
	return opts, nil
}
