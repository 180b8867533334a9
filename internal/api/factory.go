package api

import (
	"fmt"

	"github.com/notexe/remind/internal/config"
)

// NewProvider creates a Provider based on the configuration.
func NewProvider(cfg *config.ProviderConfig) (Provider, error) {
	switch cfg.Type {
	case config.ProviderOpenAI:
		return NewOpenAIProvider(cfg)

	case config.ProviderDeepSeek:
		return NewDeepSeekProvider(cfg)

	case config.ProviderOllama:
		return NewOllamaProvider(cfg)

	default:
		return nil, fmt.Errorf("unknown provider type: %s (supported: %s, %s, %s)",
			cfg.Type, config.ProviderOpenAI, config.ProviderDeepSeek, config.ProviderOllama)
	}
}
