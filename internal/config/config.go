package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // timezone validation on hosts without zoneinfo

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Provider type constants (duplicated from api package to avoid import cycle)
const (
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
	ProviderOllama   = "ollama"
)

// First notification policies for the scheduler.
const (
	FirstNotifyImmediate     = "immediate"
	FirstNotifyFirstInterval = "first_interval"
)

const envPrefix = "REMIND_"

type Config struct {
	Timezone      string              `koanf:"timezone"`
	Database      DatabaseConfig      `koanf:"database"`
	License       LicenseConfig       `koanf:"license"`
	Scheduler     SchedulerConfig     `koanf:"scheduler"`
	Notifications NotificationsConfig `koanf:"notifications"`
	AI            AIConfig            `koanf:"ai"`
	Telegram      TelegramConfig      `koanf:"telegram"`
	UI            UIConfig            `koanf:"ui"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type LicenseConfig struct {
	Path string `koanf:"path"`
}

type SchedulerConfig struct {
	IntervalMinutes       int    `koanf:"interval_minutes"`
	NudgeIntervalsMinutes []int  `koanf:"nudge_intervals_minutes"`
	FirstNotify           string `koanf:"first_notify"` // immediate | first_interval
	NotifyTimeoutSeconds  int    `koanf:"notify_timeout_seconds"`
}

type NotificationsConfig struct {
	Enabled bool `koanf:"enabled"`
	Sound   bool `koanf:"sound"`
}

// AIConfig points the CLI at the remote suggestion service.
type AIConfig struct {
	Enabled    bool   `koanf:"enabled"`
	BackendURL string `koanf:"backend_url"`
	Timeout    int    `koanf:"timeout"`
}

type TelegramConfig struct {
	Enabled  bool   `koanf:"enabled"`
	BotToken string `koanf:"bot_token"`
	ChatID   string `koanf:"chat_id"`
}

type UIConfig struct {
	ColoredOutput bool `koanf:"colored_output"`
}

// Flat variable names used by earlier releases.
var cliEnvAliases = map[string]string{
	"REMIND_SCHEDULER_INTERVAL_MINUTES": "scheduler.interval_minutes",
	"REMIND_NOTIFICATIONS_ENABLED":      "notifications.enabled",
	"REMIND_NOTIFICATION_SOUND_ENABLED": "notifications.sound",
	"REMIND_AI_REPHRASING_ENABLED":      "ai.enabled",
	"REMIND_AI_BACKEND_URL":             "ai.backend_url",
	"REMIND_TELEGRAM_BOT_TOKEN":         "telegram.bot_token",
	"REMIND_TELEGRAM_CHAT_ID":           "telegram.chat_id",

	// parsed separately as comma separated lists
	"REMIND_NUDGE_INTERVALS_MINUTES":            "",
	"REMIND_SCHEDULER__NUDGE_INTERVALS_MINUTES": "",
}

// Load reads defaults, then the YAML file at configPath (if it exists),
// then REMIND_* environment variables. Nested keys use a double
// underscore: REMIND_SCHEDULER__INTERVAL_MINUTES=5.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = ExpandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey(cliEnvAliases)), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// Handle the comma separated nudge list, e.g. REMIND_NUDGE_INTERVALS_MINUTES=5,15,60
	for _, name := range []string{"REMIND_NUDGE_INTERVALS_MINUTES", "REMIND_SCHEDULER__NUDGE_INTERVALS_MINUTES"} {
		if v := os.Getenv(name); v != "" {
			intervals, err := ParseIntervals(v)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", name, err)
			}
			if err := k.Set("scheduler.nudge_intervals_minutes", intervals); err != nil {
				return nil, fmt.Errorf("failed to set nudge intervals: %w", err)
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Database.Path = ExpandPath(cfg.Database.Path)
	cfg.License.Path = ExpandPath(cfg.License.Path)

	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}

	if c.Scheduler.IntervalMinutes < 1 || c.Scheduler.IntervalMinutes > 60 {
		return fmt.Errorf("scheduler interval must be between 1 and 60 minutes, got %d", c.Scheduler.IntervalMinutes)
	}

	for _, m := range c.Scheduler.NudgeIntervalsMinutes {
		if m <= 0 {
			return fmt.Errorf("nudge intervals must be positive, got %d", m)
		}
	}
	sort.Ints(c.Scheduler.NudgeIntervalsMinutes)

	switch c.Scheduler.FirstNotify {
	case FirstNotifyImmediate, FirstNotifyFirstInterval:
	case "":
		c.Scheduler.FirstNotify = FirstNotifyImmediate
	default:
		return fmt.Errorf("unknown first_notify policy %q (supported: %s, %s)",
			c.Scheduler.FirstNotify, FirstNotifyImmediate, FirstNotifyFirstInterval)
	}

	if c.Scheduler.NotifyTimeoutSeconds <= 0 {
		return fmt.Errorf("notify_timeout_seconds must be positive")
	}

	if c.AI.Timeout <= 0 {
		return fmt.Errorf("ai timeout must be positive")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" || c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram is enabled but bot_token or chat_id is missing")
		}
		if _, err := strconv.ParseInt(c.Telegram.ChatID, 10, 64); err != nil {
			return fmt.Errorf("telegram chat_id must be numeric: %w", err)
		}
	}

	return nil
}

// Location returns the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// NudgeIntervals returns the escalation thresholds in ascending order.
func (c *Config) NudgeIntervals() []time.Duration {
	out := make([]time.Duration, 0, len(c.Scheduler.NudgeIntervalsMinutes))
	for _, m := range c.Scheduler.NudgeIntervalsMinutes {
		out = append(out, time.Duration(m)*time.Minute)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseIntervals parses a comma separated list of minutes such as "5,15,60".
func ParseIntervals(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid interval %q", part)
		}
		if n <= 0 {
			return nil, fmt.Errorf("interval must be positive, got %d", n)
		}
		out = append(out, n)
	}
	sort.Ints(out)
	return out, nil
}

// Save merges updates (dotted keys) into the YAML file at configPath,
// creating it when needed. Only the file is rewritten; defaults and
// environment overrides are not persisted.
func Save(configPath string, updates map[string]interface{}) error {
	configPath = ExpandPath(configPath)
	k := koanf.New(".")

	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return fmt.Errorf("failed to load config file: %w", err)
		}
	}

	for key, value := range updates {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	data, err := k.Marshal(yaml.Parser())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// envKey maps REMIND_* variable names to koanf keys. Names present in
// aliases map to the alias (an empty alias skips the variable); all
// other names are lowercased with "__" turned into a nesting dot.
func envKey(aliases map[string]string) func(string) string {
	return func(s string) string {
		if key, ok := aliases[s]; ok {
			return key
		}
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}
}

// ExpandPath replaces a leading "~/" with the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}
