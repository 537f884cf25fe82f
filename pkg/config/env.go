package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Environment variable names.
const (
	EnvRateHz    = "LOGPLAY_RATE_HZ"
	EnvDirectory = "LOGPLAY_DIRECTORY"
	EnvOnStop    = "LOGPLAY_ON_STOP"
	EnvLogLevel  = "LOGPLAY_LOG_LEVEL"
)

// environment holds overrides read from the process environment.
// RateHz stays a string so a non-numeric value falls back to the default instead of failing.
type environment struct {
	RateHz    string `env:"LOGPLAY_RATE_HZ"`
	Directory string `env:"LOGPLAY_DIRECTORY"`
	OnStop    string `env:"LOGPLAY_ON_STOP"`
	LogLevel  string `env:"LOGPLAY_LOG_LEVEL"`
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() error {
	var e environment
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if e.RateHz != "" {
		c.RateHz = ParseRate(e.RateHz)
	}
	if e.Directory != "" {
		c.Directory = e.Directory
	}
	if e.OnStop != "" {
		c.OnStop = StopPolicy(e.OnStop)
	}
	if e.LogLevel != "" {
		c.Logging.Level = e.LogLevel
	}
	return nil
}
