package translate

import (
	"fmt"
	"time"

	"subsync/internal/config"
	"subsync/internal/services"
	"subsync/internal/services/llm"
)

// Provider names accepted in configuration.
const (
	ProviderLLM            = "llm"
	ProviderLibreTranslate = "libretranslate"
	ProviderNone           = "none"
)

// New builds the configured translator wrapped in a fresh Memo. A missing
// API key for the llm provider is a configuration error.
func New(cfg config.TranslatorConfig, llmOpts ...llm.Option) (*Memo, error) {
	var next Translator
	switch cfg.Provider {
	case ProviderLLM, "":
		if cfg.APIKey == "" {
			return nil, services.Wrap(services.ErrConfiguration, "translate", "init",
				"translator.api_key not set (or SUBSYNC_TRANSLATOR_API_KEY)", nil)
		}
		next = llm.NewClient(llm.Config{
			APIKey:         cfg.APIKey,
			BaseURL:        cfg.BaseURL,
			Model:          cfg.Model,
			Referer:        cfg.Referer,
			Title:          cfg.Title,
			TimeoutSeconds: cfg.TimeoutSeconds,
		}, llmOpts...)
	case ProviderLibreTranslate:
		next = NewLibreTranslate(cfg.BaseURL, cfg.APIKey, time.Duration(cfg.TimeoutSeconds)*time.Second, nil)
	case ProviderNone:
		next = Identity{}
	default:
		return nil, services.Wrap(services.ErrConfiguration, "translate", "init",
			fmt.Sprintf("unsupported provider %q", cfg.Provider), nil)
	}
	return NewMemo(next), nil
}
