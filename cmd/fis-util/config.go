// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/Seagate/nvdimm-fis/pkg/fis"
	"github.com/Seagate/nvdimm-fis/pkg/ndctl"
	"github.com/Seagate/nvdimm-fis/pkg/nfit"
)

// Config holds the settings that may come from the config file
type Config struct {
	SysfsRoot    string `yaml:"sysfs_root"`
	DevRoot      string `yaml:"dev_root"`
	NfitTable    string `yaml:"nfit_table"`
	Verbosity    string `yaml:"verbosity"`
	OutputFormat string `yaml:"output_format"`
	DumpDir      string `yaml:"dump_dir"`
}

func DefaultConfig() *Config {
	return &Config{
		SysfsRoot:    ndctl.DEFAULT_SYSFS_ROOT,
		DevRoot:      ndctl.DEFAULT_DEV_ROOT,
		NfitTable:    nfit.NFIT_TABLE_PATH,
		Verbosity:    DefaultVerbosity,
		OutputFormat: fis.FORMAT_JSON,
	}
}

// LoadConfig reads path over the defaults. Keys missing from the file keep their default.
func LoadConfig(fs afero.Fs, path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	switch cfg.OutputFormat {
	case fis.FORMAT_JSON, fis.FORMAT_YAML:
	default:
		return nil, errors.Errorf("config %s: unknown output_format %q", path, cfg.OutputFormat)
	}
	return cfg, nil
}

// apply overrides config values with the ones given on the command line
func (c *Config) apply(s *Settings) {
	if s.Verbosity != "" {
		c.Verbosity = s.Verbosity
	}
	if s.Format != "" {
		c.OutputFormat = s.Format
	}
	if s.Dump != "" {
		c.DumpDir = s.Dump
	}
	if s.SysfsRoot != "" {
		c.SysfsRoot = s.SysfsRoot
	}
	if s.Nfit != "" {
		c.NfitTable = s.Nfit
	}
}
