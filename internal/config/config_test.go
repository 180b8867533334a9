package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	if cfg.Scheduler.IntervalMinutes != 1 {
		t.Errorf("IntervalMinutes = %d, want 1", cfg.Scheduler.IntervalMinutes)
	}
	if !reflect.DeepEqual(cfg.Scheduler.NudgeIntervalsMinutes, []int{5, 15, 60}) {
		t.Errorf("NudgeIntervalsMinutes = %v", cfg.Scheduler.NudgeIntervalsMinutes)
	}
	if cfg.Scheduler.FirstNotify != FirstNotifyImmediate {
		t.Errorf("FirstNotify = %q", cfg.Scheduler.FirstNotify)
	}
	if cfg.Location() != time.UTC {
		t.Errorf("Location = %v, want UTC", cfg.Location())
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlData := `timezone: Europe/Berlin
scheduler:
  interval_minutes: 5
  nudge_intervals_minutes: [30, 10]
ai:
  backend_url: https://example.test
`
	if err := os.WriteFile(path, []byte(yamlData), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("REMIND_SCHEDULER__NOTIFY_TIMEOUT_SECONDS", "3")
	t.Setenv("REMIND_NOTIFICATION_SOUND_ENABLED", "false")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Timezone != "Europe/Berlin" || cfg.Scheduler.IntervalMinutes != 5 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.AI.BackendURL != "https://example.test" {
		t.Errorf("BackendURL = %q", cfg.AI.BackendURL)
	}
	if cfg.Scheduler.NotifyTimeoutSeconds != 3 {
		t.Errorf("NotifyTimeoutSeconds = %d, want 3", cfg.Scheduler.NotifyTimeoutSeconds)
	}
	if cfg.Notifications.Sound {
		t.Error("sound should be disabled by env")
	}
	want := []time.Duration{10 * time.Minute, 30 * time.Minute}
	if got := cfg.NudgeIntervals(); !reflect.DeepEqual(got, want) {
		t.Errorf("NudgeIntervals = %v, want %v", got, want)
	}
}

func TestLoadNudgeIntervalsFromEnv(t *testing.T) {
	t.Setenv("REMIND_NUDGE_INTERVALS_MINUTES", "60, 5,15")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg.Scheduler.NudgeIntervalsMinutes, []int{5, 15, 60}) {
		t.Errorf("NudgeIntervalsMinutes = %v", cfg.Scheduler.NudgeIntervalsMinutes)
	}

	t.Setenv("REMIND_NUDGE_INTERVALS_MINUTES", "5,soon")
	if _, err := Load(""); err == nil {
		t.Error("expected error for a non-numeric interval")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"interval too small", func(c *Config) { c.Scheduler.IntervalMinutes = 0 }},
		{"interval too large", func(c *Config) { c.Scheduler.IntervalMinutes = 61 }},
		{"negative nudge", func(c *Config) { c.Scheduler.NudgeIntervalsMinutes = []int{5, -1} }},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }},
		{"bad policy", func(c *Config) { c.Scheduler.FirstNotify = "eventually" }},
		{"telegram without token", func(c *Config) { c.Telegram.Enabled = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateAllowsEmptyNudges(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Scheduler.NudgeIntervalsMinutes = nil
	if err := cfg.Validate(); err != nil {
		t.Errorf("empty nudge list should be valid: %v", err)
	}
	if len(cfg.NudgeIntervals()) != 0 {
		t.Errorf("NudgeIntervals = %v, want empty", cfg.NudgeIntervals())
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := Save(path, map[string]interface{}{"scheduler.interval_minutes": 7}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := Save(path, map[string]interface{}{"timezone": "Asia/Tokyo"}); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scheduler.IntervalMinutes != 7 || cfg.Timezone != "Asia/Tokyo" {
		t.Errorf("saved values not loaded: interval=%d tz=%q", cfg.Scheduler.IntervalMinutes, cfg.Timezone)
	}
}

func TestLoadBackendEnvAliases(t *testing.T) {
	t.Setenv("REMIND_OPENAI_API_KEY", "sk-test")
	t.Setenv("REMIND_DATABASE_URL", "sqlite://"+filepath.Join(t.TempDir(), "b.db"))
	t.Setenv("REMIND_RATE_LIMIT_REQUESTS", "3")
	t.Setenv("REMIND_PADDLE_PRODUCT_PRO", "pro_123")
	t.Setenv("REMIND_PORT", "9000")

	cfg, err := LoadBackend("")
	if err != nil {
		t.Fatalf("LoadBackend: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.AI.APIKey != "sk-test" || cfg.AI.Model != "gpt-5-nano" {
		t.Errorf("AI = %+v", cfg.AI)
	}
	if cfg.RateLimit.Requests != 3 || cfg.RateLimit.WindowSeconds != 60 {
		t.Errorf("RateLimit = %+v", cfg.RateLimit)
	}
	if cfg.Paddle.ProductPro != "pro_123" {
		t.Errorf("ProductPro = %q", cfg.Paddle.ProductPro)
	}
	if cfg.Addr() != "0.0.0.0:9000" {
		t.Errorf("Addr = %q", cfg.Addr())
	}

	pc := cfg.GetProviderConfig()
	if pc.Type != ProviderOpenAI || pc.APIKey != "sk-test" {
		t.Errorf("ProviderConfig = %+v", pc)
	}
}

func TestBackendValidateRequiresKey(t *testing.T) {
	t.Setenv("REMIND_OPENAI_API_KEY", "")

	cfg, err := LoadBackend("")
	if err != nil {
		t.Fatalf("LoadBackend: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error without an API key")
	}

	cfg.AI.Provider = ProviderOllama
	if err := cfg.Validate(); err != nil {
		t.Errorf("ollama needs no key: %v", err)
	}
}

func TestParseIntervals(t *testing.T) {
	got, err := ParseIntervals("15,5,,60")
	if err != nil {
		t.Fatalf("ParseIntervals: %v", err)
	}
	if !reflect.DeepEqual(got, []int{5, 15, 60}) {
		t.Errorf("ParseIntervals = %v", got)
	}
	if _, err := ParseIntervals("0"); err == nil {
		t.Error("zero interval should be rejected")
	}
}
