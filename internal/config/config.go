// Package config loads oreclctl's YAML configuration file.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is oreclctl's top-level configuration, adapted from
// fxnlabs-function-node's internal/config layout.
type Config struct {
	Logger struct {
		Verbosity string `yaml:"verbosity"`
	} `yaml:"logger"`

	Device struct {
		Name string `yaml:"name"`
	} `yaml:"device"`

	Defaults struct {
		UseDoublePrecision bool   `yaml:"useDoublePrecision"`
		RNGSeed            uint64 `yaml:"rngSeed"`
		Debug              bool   `yaml:"debug"`
	} `yaml:"defaults"`
}

// LoadConfig reads and parses the YAML file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a Config with the package's baked-in defaults, used when no
// config file is supplied.
func Default() *Config {
	cfg := &Config{}
	cfg.Logger.Verbosity = "info"
	cfg.Device.Name = "OpenCL/Software/CPU"
	cfg.Defaults.UseDoublePrecision = true
	cfg.Defaults.RNGSeed = 42
	return cfg
}
