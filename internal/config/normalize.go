package config

import (
	"fmt"
	"os"
	"strings"

	"subsync/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAlignment()
	c.normalizeSubtitles()
	c.normalizeTranslator()
	c.normalizeOpenSubtitles()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OpenSubtitlesCacheDir) == "" {
		c.Paths.OpenSubtitlesCacheDir = defaultOpenSubtitlesCacheDir
	}
	if c.Paths.OpenSubtitlesCacheDir, err = expandPath(c.Paths.OpenSubtitlesCacheDir); err != nil {
		return fmt.Errorf("paths.opensubtitles_cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeAlignment() {
	c.Alignment.Scorer = strings.ToLower(strings.TrimSpace(c.Alignment.Scorer))
	if c.Alignment.Scorer == "" {
		c.Alignment.Scorer = defaultScorer
	}
	if c.Alignment.WindowMinutes == 0 {
		c.Alignment.WindowMinutes = defaultWindowMinutes
	}
}

func (c *Config) normalizeSubtitles() {
	if ref := language.ToISO2(c.Subtitles.ReferenceLanguage); ref != "" {
		c.Subtitles.ReferenceLanguage = ref
	} else {
		c.Subtitles.ReferenceLanguage = strings.ToLower(strings.TrimSpace(c.Subtitles.ReferenceLanguage))
	}
	if c.Subtitles.ReferenceLanguage == "" {
		c.Subtitles.ReferenceLanguage = defaultReferenceLanguage
	}
	if input := language.ToISO2(c.Subtitles.InputLanguage); input != "" {
		c.Subtitles.InputLanguage = input
	} else {
		c.Subtitles.InputLanguage = strings.ToLower(strings.TrimSpace(c.Subtitles.InputLanguage))
	}
	patterns := make([]string, 0, len(c.Subtitles.MarkerPatterns))
	for _, pattern := range c.Subtitles.MarkerPatterns {
		if trimmed := strings.TrimSpace(pattern); trimmed != "" {
			patterns = append(patterns, trimmed)
		}
	}
	c.Subtitles.MarkerPatterns = patterns
	c.Subtitles.OutputSuffix = strings.TrimSpace(c.Subtitles.OutputSuffix)
	if c.Subtitles.OutputSuffix == "" {
		c.Subtitles.OutputSuffix = defaultOutputSuffix
	}
	if !strings.HasPrefix(c.Subtitles.OutputSuffix, ".") {
		c.Subtitles.OutputSuffix = "." + c.Subtitles.OutputSuffix
	}
}

func (c *Config) normalizeTranslator() {
	c.Translator.Provider = strings.ToLower(strings.TrimSpace(c.Translator.Provider))
	if c.Translator.Provider == "" {
		c.Translator.Provider = defaultTranslatorProvider
	}
	c.Translator.BaseURL = strings.TrimSpace(c.Translator.BaseURL)
	switch c.Translator.Provider {
	case "libretranslate":
		if c.Translator.BaseURL == "" || c.Translator.BaseURL == defaultTranslatorBaseURL {
			c.Translator.BaseURL = defaultLibreTranslateBaseURL
		}
	default:
		if c.Translator.BaseURL == "" {
			c.Translator.BaseURL = defaultTranslatorBaseURL
		}
	}
	c.Translator.Model = strings.TrimSpace(c.Translator.Model)
	if c.Translator.Model == "" {
		c.Translator.Model = defaultTranslatorModel
	}
	c.Translator.Referer = strings.TrimSpace(c.Translator.Referer)
	if c.Translator.Referer == "" {
		c.Translator.Referer = defaultTranslatorReferer
	}
	c.Translator.Title = strings.TrimSpace(c.Translator.Title)
	if c.Translator.Title == "" {
		c.Translator.Title = defaultTranslatorTitle
	}
	if c.Translator.TimeoutSeconds <= 0 {
		c.Translator.TimeoutSeconds = defaultTranslatorTimeout
	}
	c.Translator.APIKey = strings.TrimSpace(c.Translator.APIKey)
	if c.Translator.APIKey == "" {
		if value, ok := os.LookupEnv("SUBSYNC_TRANSLATOR_API_KEY"); ok {
			c.Translator.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.Translator.APIKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeOpenSubtitles() {
	c.OpenSubtitles.APIKey = strings.TrimSpace(c.OpenSubtitles.APIKey)
	if c.OpenSubtitles.APIKey == "" {
		if value, ok := os.LookupEnv("OPENSUBTITLES_API_KEY"); ok {
			c.OpenSubtitles.APIKey = strings.TrimSpace(value)
		}
	}
	c.OpenSubtitles.UserAgent = strings.TrimSpace(c.OpenSubtitles.UserAgent)
	if c.OpenSubtitles.UserAgent == "" {
		c.OpenSubtitles.UserAgent = defaultOpenSubtitlesUserAgent
	}
	c.OpenSubtitles.UserToken = strings.TrimSpace(c.OpenSubtitles.UserToken)
	if c.OpenSubtitles.UserToken == "" {
		if value, ok := os.LookupEnv("OPENSUBTITLES_USER_TOKEN"); ok {
			c.OpenSubtitles.UserToken = strings.TrimSpace(value)
		}
	}
	c.OpenSubtitles.BaseURL = strings.TrimSpace(c.OpenSubtitles.BaseURL)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
