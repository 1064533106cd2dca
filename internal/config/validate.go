package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/docrunner/docrunner/internal/domain"
)

// Validate checks the Config for required fields and valid values.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Target.BaseURL != "" {
		u, err := url.Parse(cfg.Target.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("target.base_url must be an absolute URL (got %q)", cfg.Target.BaseURL))
		}
	}

	if cfg.Browser.ViewportWidth < 0 || cfg.Browser.ViewportHeight < 0 {
		errs = append(errs, "browser.viewport dimensions must not be negative")
	}
	for field, val := range map[string]string{
		"browser.navigation_timeout":  cfg.Browser.NavigationTimeout,
		"browser.interaction_timeout": cfg.Browser.InteractionTimeout,
		"browser.default_wait":        cfg.Browser.DefaultWait,
		"pandoc.timeout":              cfg.Pandoc.Timeout,
	} {
		if val == "" {
			continue
		}
		if d, err := time.ParseDuration(val); err != nil {
			errs = append(errs, fmt.Sprintf("%s is not a valid duration: %v", field, err))
		} else if d <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive (got %s)", field, val))
		}
	}

	if cfg.Artifacts.Directory == "" {
		errs = append(errs, "artifacts.directory must not be empty")
	}

	if cfg.Logging.Level != "" {
		validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
		if !validLevels[cfg.Logging.Level] {
			errs = append(errs, fmt.Sprintf("logging.level must be one of: debug, info, warn, error (got %q)", cfg.Logging.Level))
		}
	}

	if len(errs) > 0 {
		return domain.NewError("config", "", 0, fmt.Sprintf("validation failed: %s", strings.Join(errs, "; ")), nil)
	}

	return nil
}

// Duration parses a configured duration string, returning fallback when the
// field is empty. Validate has already rejected malformed values.
func Duration(val string, fallback time.Duration) time.Duration {
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return d
}
