package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/logplay/pkg/filter"
	"github.com/ccollicutt/logplay/pkg/logging"
)

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.applyEnvironmentOverrides(); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// FromEnvironment returns the defaults with environment overrides applied, validated.
func FromEnvironment() (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.applyEnvironmentOverrides(); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate normalizes a configuration and checks it for errors.
// Invalid rates fall back to defaults rather than failing. Validate is idempotent.
func Validate(cfg *Config) error {
	cfg.RateHz = Rate(NormalizeRate(float64(cfg.RateHz)))

	if err := validateDirectory(cfg); err != nil {
		return fmt.Errorf("directory: %w", err)
	}

	switch cfg.OnStop {
	case "":
		cfg.OnStop = DefaultStopPolicy
	case StopPolicyDrain, StopPolicyPause:
	default:
		return fmt.Errorf("on_stop: invalid policy %q (must be drain or pause)", cfg.OnStop)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}

	if cfg.Filter != "" {
		if _, err := filter.Compile(cfg.Filter); err != nil {
			return fmt.Errorf("filter: %w", err)
		}
	}

	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

func validateDirectory(cfg *Config) error {
	if strings.TrimSpace(cfg.Directory) == "" {
		cfg.Directory = DefaultDirectory
		return nil
	}
	if filepath.IsAbs(cfg.Directory) {
		cfg.Directory = filepath.Clean(cfg.Directory)
		return nil
	}
	abs, err := filepath.Abs(cfg.Directory)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", cfg.Directory, err)
	}
	cfg.Directory = abs
	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	wh.Token = expandEnvVar(wh.Token)

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	// Handle ${VAR} format
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		varName := s[2 : len(s)-1]
		return os.Getenv(varName)
	}

	// Handle $VAR format (no braces)
	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		varName := s[1:]
		return os.Getenv(varName)
	}

	return s
}
