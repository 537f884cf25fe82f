package config

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
rate_hz: 10
directory: /var/lib/logplay/deltas
on_stop: pause
filter: 'context == "vessels.self"'
logging:
  level: debug
`
	path := writeTempFile(t, "config.yaml", content)
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.RateHz != 10 {
		t.Errorf("RateHz = %v, want 10", cfg.RateHz)
	}
	if cfg.Directory != "/var/lib/logplay/deltas" {
		t.Errorf("Directory = %q", cfg.Directory)
	}
	if cfg.OnStop != StopPolicyPause {
		t.Errorf("OnStop = %q, want pause", cfg.OnStop)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(context.Background(), "/nonexistent/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	content := `invalid: yaml: content: [`
	path := writeTempFile(t, "invalid.yaml", content)
	_, err := Load(context.Background(), path)
	if err == nil {
		t.Error("Load() expected error for invalid YAML")
	}
}

func TestLoad_NonNumericRate(t *testing.T) {
	path := writeTempFile(t, "config.yaml", "rate_hz: fast\ndirectory: /tmp\n")
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RateHz != DefaultRateHz {
		t.Errorf("RateHz = %v, want default %v", cfg.RateHz, DefaultRateHz)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvRateHz, "25")
	t.Setenv(EnvDirectory, "/srv/deltas")
	t.Setenv(EnvOnStop, "pause")
	t.Setenv(EnvLogLevel, "warn")

	path := writeTempFile(t, "config.yaml", "rate_hz: 2\ndirectory: /tmp\n")
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RateHz != 25 {
		t.Errorf("RateHz = %v, want 25", cfg.RateHz)
	}
	if cfg.Directory != "/srv/deltas" {
		t.Errorf("Directory = %q, want /srv/deltas", cfg.Directory)
	}
	if cfg.OnStop != StopPolicyPause {
		t.Errorf("OnStop = %q, want pause", cfg.OnStop)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestFromEnvironment_NonNumericRate(t *testing.T) {
	t.Setenv(EnvRateHz, "lots")
	cfg, err := FromEnvironment()
	if err != nil {
		t.Fatalf("FromEnvironment() error = %v", err)
	}
	if cfg.RateHz != DefaultRateHz {
		t.Errorf("RateHz = %v, want %v", cfg.RateHz, DefaultRateHz)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.RateHz != DefaultRateHz {
		t.Errorf("RateHz = %v, want %v", cfg.RateHz, DefaultRateHz)
	}
	if cfg.Directory != DefaultDirectory {
		t.Errorf("Directory = %q, want %q", cfg.Directory, DefaultDirectory)
	}
	if cfg.OnStop != StopPolicyDrain {
		t.Errorf("OnStop = %q, want drain", cfg.OnStop)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate(DefaultConfig()) error = %v", err)
	}
}

func TestNormalizeRate(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{10, 10},
		{100, 100},
		{0.5, 0.5},
		{100.1, 100},
		{5000, 100},
		{0, DefaultRateHz},
		{-3, DefaultRateHz},
		{math.NaN(), DefaultRateHz},
		{math.Inf(-1), DefaultRateHz},
		{math.Inf(1), MaxRateHz},
	}
	for _, tt := range tests {
		if got := NormalizeRate(tt.in); got != tt.want {
			t.Errorf("NormalizeRate(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPacingInterval(t *testing.T) {
	tests := []struct {
		rate float64
		want time.Duration
	}{
		{10, 100 * time.Millisecond},
		{6, 167 * time.Millisecond},
		{3, 333 * time.Millisecond},
		{100, 10 * time.Millisecond},
		{1, time.Second},
		{0.5, 2 * time.Second},
		{0, 167 * time.Millisecond},
		{-1, 167 * time.Millisecond},
		{250, 10 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := PacingInterval(tt.rate); got != tt.want {
			t.Errorf("PacingInterval(%v) = %v, want %v", tt.rate, got, tt.want)
		}
	}
}

func TestValidate_RelativeDirectory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Directory = "logs"
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !filepath.IsAbs(cfg.Directory) {
		t.Errorf("Directory = %q, want absolute path", cfg.Directory)
	}
}

func TestValidate_EmptyDirectory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Directory = "  "
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Directory != DefaultDirectory {
		t.Errorf("Directory = %q, want %q", cfg.Directory, DefaultDirectory)
	}
}

func TestValidate_InvalidStopPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OnStop = "rewind"
	if err := Validate(cfg); err == nil {
		t.Error("Validate() expected error for invalid on_stop")
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "shouty"
	if err := Validate(cfg); err == nil {
		t.Error("Validate() expected error for invalid log level")
	}
}

func TestValidate_InvalidFilter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Filter = `context ==`
	if err := Validate(cfg); err == nil {
		t.Error("Validate() expected error for invalid filter")
	}
}

func TestValidate_Idempotent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateHz = 500
	cfg.Directory = "relative"
	if err := Validate(cfg); err != nil {
		t.Fatal(err)
	}
	first := *cfg
	if err := Validate(cfg); err != nil {
		t.Fatal(err)
	}
	if first.RateHz != cfg.RateHz || first.Directory != cfg.Directory {
		t.Errorf("second Validate() changed config: %+v -> %+v", first, *cfg)
	}
}

func TestPlayer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateHz = 12
	cfg.Directory = "/data"
	cfg.OnStop = StopPolicyPause

	pc := cfg.Player()
	if pc.RateHz != 12 || pc.Directory != "/data" || pc.OnStop != StopPolicyPause {
		t.Errorf("Player() = %+v", pc)
	}
}

func TestValidate_Webhook_Valid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Webhooks = []WebhookConfig{{Name: "sink", URL: "https://example.com/deltas"}}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Webhooks[0].Timeout != DefaultWebhookTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Webhooks[0].Timeout, DefaultWebhookTimeout)
	}
}

func TestValidate_Webhook_Invalid(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"missing url", ""},
		{"bad scheme", "ftp://example.com/hook"},
		{"missing host", "http:///hook"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Webhooks = []WebhookConfig{{URL: tt.url}}
			if err := Validate(cfg); err == nil {
				t.Errorf("Validate() expected error for url %q", tt.url)
			}
		})
	}
}

func TestExpandEnvVar(t *testing.T) {
	t.Setenv("TEST_WEBHOOK_TOKEN", "secret-value")

	tests := []struct {
		input string
		want  string
	}{
		{"${TEST_WEBHOOK_TOKEN}", "secret-value"},
		{"$TEST_WEBHOOK_TOKEN", "secret-value"},
		{"plain-value", "plain-value"},
		{"", ""},
		{"${NONEXISTENT_VAR}", ""},
	}

	for _, tt := range tests {
		got := expandEnvVar(tt.input)
		if got != tt.want {
			t.Errorf("expandEnvVar(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLoad_WithWebhooks(t *testing.T) {
	content := `
directory: /tmp
webhooks:
  - name: test-webhook
    url: "https://example.com/webhook"
    timeout: 30s
  - url: "https://backup.example.com/webhook"
`
	path := writeTempFile(t, "config-with-webhooks.yaml", content)
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Webhooks) != 2 {
		t.Fatalf("Webhooks = %d, want 2", len(cfg.Webhooks))
	}
	if cfg.Webhooks[0].Timeout != 30*time.Second {
		t.Errorf("Webhook[0].Timeout = %v, want 30s", cfg.Webhooks[0].Timeout)
	}
	if cfg.Webhooks[1].Timeout != DefaultWebhookTimeout {
		t.Errorf("Webhook[1].Timeout = %v, want %v", cfg.Webhooks[1].Timeout, DefaultWebhookTimeout)
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return path
}
