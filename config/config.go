// Package config loads the optional .skyci.yaml project file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the project file looked up in the working directory.
const DefaultPath = ".skyci.yaml"

// Config is the project-level configuration. Every field is optional.
type Config struct {
	SDK         SDKConfig      `yaml:"sdk"`
	SkipMarkers []string       `yaml:"skip_markers,omitempty"`
	Install     InstallConfig  `yaml:"install"`
	Coverage    CoverageConfig `yaml:"coverage"`
	Visual      VisualConfig   `yaml:"visual"`
	Publish     PublishConfig  `yaml:"publish"`
	ResultPath  string         `yaml:"result_path,omitempty"`
}

type SDKConfig struct {
	Package  string `yaml:"package,omitempty"`
	Platform string `yaml:"platform,omitempty"`
}

type InstallConfig struct {
	BuilderConfig string `yaml:"builder_config,omitempty"`
}

type CoverageConfig struct {
	Codecov *bool `yaml:"codecov,omitempty"`
}

// CodecovEnabled reports whether the Codecov upload runs. It defaults to true.
func (c CoverageConfig) CodecovEnabled() bool {
	return c.Codecov == nil || *c.Codecov
}

type VisualConfig struct {
	BaselineDir string `yaml:"baseline_dir,omitempty"`
	FailureDir  string `yaml:"failure_dir,omitempty"`
	ResultsRepo string `yaml:"results_repo,omitempty"`
}

type PublishConfig struct {
	Access  string `yaml:"access,omitempty"`
	DistDir string `yaml:"dist_dir,omitempty"`
}

// Parse decodes YAML data into a Config. Empty input yields the zero Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing skyci config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config file at path. A missing file is not an error and
// returns the zero Config, with found set to false.
func Load(path string) (cfg *Config, found bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading skyci config %s: %w", path, err)
	}
	cfg, err = Parse(data)
	if err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}
