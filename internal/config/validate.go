package config

import (
	"errors"
	"fmt"
	"regexp"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAlignment(); err != nil {
		return err
	}
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	if err := c.validateTranslator(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateAlignment() error {
	if c.Alignment.WindowMinutes <= 0 {
		return errors.New("alignment.window_minutes must be positive")
	}
	if c.Alignment.Threshold < 0 || c.Alignment.Threshold > 100 {
		return errors.New("alignment.threshold must be between 0 and 100")
	}
	switch c.Alignment.Scorer {
	case "token_set", "cosine":
	default:
		return fmt.Errorf("alignment.scorer: unsupported value %q (use token_set or cosine)", c.Alignment.Scorer)
	}
	return nil
}

func (c *Config) validateSubtitles() error {
	for _, pattern := range c.Subtitles.MarkerPatterns {
		if _, err := regexp.Compile("(?i)" + pattern); err != nil {
			return fmt.Errorf("subtitles.marker_patterns: invalid pattern %q: %w", pattern, err)
		}
	}
	return nil
}

func (c *Config) validateTranslator() error {
	switch c.Translator.Provider {
	case "llm", "libretranslate", "none":
	default:
		return fmt.Errorf("translator.provider: unsupported value %q (use llm, libretranslate or none)", c.Translator.Provider)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
