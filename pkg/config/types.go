// Package config provides configuration loading and validation for logplay.
package config

import (
	"math"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/logplay/pkg/logging"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// RateHz is the replay rate in deltas per second.
	RateHz Rate `yaml:"rate_hz"`

	// Directory holds the log files to replay. Must be absolute after validation.
	Directory string `yaml:"directory"`

	// OnStop selects what the read loop does while playback is stopped.
	OnStop StopPolicy `yaml:"on_stop,omitempty"`

	// Filter is an optional expression applied by the host before output.
	Filter string `yaml:"filter,omitempty"`

	// Listen is an optional address serving /stream and /metrics.
	Listen string `yaml:"listen,omitempty"`

	Logging  logging.Config  `yaml:"logging"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`
}

// Player returns the engine configuration.
func (c *Config) Player() PlayerConfig {
	return PlayerConfig{
		RateHz:    float64(c.RateHz),
		Directory: c.Directory,
		OnStop:    c.OnStop,
	}
}

// PlayerConfig is what the replay engine needs to run.
type PlayerConfig struct {
	RateHz    float64
	Directory string
	OnStop    StopPolicy
}

// Rate is a replay rate in Hz. Non-numeric YAML values decode as 0,
// which normalization turns into DefaultRateHz.
type Rate float64

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *Rate) UnmarshalYAML(node *yaml.Node) error {
	var f float64
	if err := node.Decode(&f); err != nil {
		*r = 0
		return nil
	}
	*r = Rate(f)
	return nil
}

// ParseRate parses s leniently; anything unparseable becomes 0.
func ParseRate(s string) Rate {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return Rate(f)
}

// StopPolicy controls the read loop while playback is stopped.
type StopPolicy string

const (
	// StopPolicyDrain keeps reading and discards deltas while stopped.
	StopPolicyDrain StopPolicy = "drain"
	// StopPolicyPause blocks the read loop until playback starts again.
	StopPolicyPause StopPolicy = "pause"
)

// NormalizeRate returns rate clamped to (0, MaxRateHz], or DefaultRateHz if rate is not positive.
func NormalizeRate(rate float64) float64 {
	if math.IsNaN(rate) || rate <= 0 {
		return DefaultRateHz
	}
	if rate > MaxRateHz {
		return MaxRateHz
	}
	return rate
}

// PacingInterval is round(1000/rate) milliseconds for a normalized rate.
func PacingInterval(rate float64) time.Duration {
	ms := math.Round(1000 / NormalizeRate(rate))
	if ms < 1 {
		ms = 1
	}
	if ms > float64(math.MaxInt64/int64(time.Millisecond)) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ms) * time.Millisecond
}

// WebhookConfig defines an HTTP endpoint that receives every played delta.
type WebhookConfig struct {
	Name    string        `yaml:"name,omitempty"`
	URL     string        `yaml:"url"`
	Token   string        `yaml:"token,omitempty"` // supports ${ENV_VAR}
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
