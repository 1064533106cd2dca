package config

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	headless := true
	return &Config{
		Target: TargetConfig{
			Environment: "staging",
		},
		Browser: BrowserConfig{
			Headless:           &headless,
			ViewportWidth:      1280,
			ViewportHeight:     800,
			NavigationTimeout:  "15s",
			InteractionTimeout: "10s",
			DefaultWait:        "1s",
			Video:              false,
		},
		Artifacts: ArtifactsConfig{
			Directory: "artifacts",
		},
		Pandoc: PandocConfig{
			Binary:  "pandoc",
			Timeout: "60s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
