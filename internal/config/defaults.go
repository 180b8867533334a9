package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"timezone": "UTC",
		"database": map[string]interface{}{
			"path": "~/.remind/reminders.db",
		},
		"license": map[string]interface{}{
			"path": "~/.remind/license.json",
		},
		"scheduler": map[string]interface{}{
			"interval_minutes":        1,
			"nudge_intervals_minutes": []int{5, 15, 60},
			"first_notify":            FirstNotifyImmediate,
			"notify_timeout_seconds":  10,
		},
		"notifications": map[string]interface{}{
			"enabled": true,
			"sound":   true,
		},
		"ai": map[string]interface{}{
			"enabled":     true,
			"backend_url": "",
			"timeout":     30,
		},
		"telegram": map[string]interface{}{
			"enabled":   false,
			"bot_token": "",
			"chat_id":   "",
		},
		"ui": map[string]interface{}{
			"colored_output": true,
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func DefaultBackendConfig() map[string]interface{} {
	return map[string]interface{}{
		"server": map[string]interface{}{
			"host": "0.0.0.0",
			"port": 8000,
		},
		"database": map[string]interface{}{
			"url": "sqlite://./backend.db",
		},
		"ai": map[string]interface{}{
			"provider":    ProviderOpenAI,
			"api_key":     "",
			"base_url":    "",
			"model":       "gpt-5-nano",
			"timeout":     30,
			"temperature": 0.3,
		},
		"rate_limit": map[string]interface{}{
			"requests":       10,
			"window_seconds": 60,
		},
		"paddle": map[string]interface{}{
			"webhook_secret": "",
			"product_indie":  "",
			"product_pro":    "",
			"product_team":   "",
		},
		"maintenance": map[string]interface{}{
			"interval_minutes": 60,
		},
	}
}

func NewDefaultBackendProvider() *confmap.Confmap {
	return confmap.Provider(DefaultBackendConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.remind/config.yaml"
}

func GetDefaultBackendConfigPath() string {
	return "./backend.yaml"
}
