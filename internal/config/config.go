package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/docrunner/docrunner/internal/domain"
)

// Config is the top-level configuration struct.
type Config struct {
	Target    TargetConfig    `yaml:"target"`
	Browser   BrowserConfig   `yaml:"browser"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Pandoc    PandocConfig    `yaml:"pandoc"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type TargetConfig struct {
	// BaseURL resolves relative navigation targets. A document preamble
	// base_url is used as a fallback when this is empty.
	BaseURL     string `yaml:"base_url"`
	Environment string `yaml:"environment"`
}

type BrowserConfig struct {
	Headless           *bool  `yaml:"headless"` // pointer to distinguish unset from false
	ViewportWidth      int    `yaml:"viewport_width"`
	ViewportHeight     int    `yaml:"viewport_height"`
	NavigationTimeout  string `yaml:"navigation_timeout"`
	InteractionTimeout string `yaml:"interaction_timeout"`
	// DefaultWait is the pause applied by wait steps that carry no duration.
	DefaultWait string `yaml:"default_wait"`
	Video       bool   `yaml:"video"`
}

type ArtifactsConfig struct {
	Directory string `yaml:"directory"`
}

type PandocConfig struct {
	Binary  string `yaml:"binary"`
	Timeout string `yaml:"timeout"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads a YAML configuration file and returns a Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewError("config", path, 0, "failed to read config file", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, domain.NewError("config", path, 0, "failed to parse config file", err)
	}

	return cfg, nil
}
