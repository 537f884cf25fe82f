package config

import (
	"time"
)

// Default values for configuration.
const (
	DefaultRateHz         = 6.0
	MaxRateHz             = 100.0
	DefaultDirectory      = "/signalk/deltalogs"
	DefaultStopPolicy     = StopPolicyDrain
	DefaultLogLevel       = "info"
	DefaultWebhookTimeout = 10 * time.Second
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	cfg := &Config{
		RateHz:    DefaultRateHz,
		Directory: DefaultDirectory,
		OnStop:    DefaultStopPolicy,
		Webhooks:  []WebhookConfig{},
	}
	cfg.Logging.Level = DefaultLogLevel
	return cfg
}
