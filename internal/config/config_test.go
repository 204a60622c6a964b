package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"subsync/internal/config"
)

func TestLoadDefaultConfigExpandsPathsAndUsesEnv(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("OPENSUBTITLES_API_KEY", "os-key")
	t.Setenv("SUBSYNC_TRANSLATOR_API_KEY", "tr-key")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".local", "share", "subsync", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.Paths.HistoryDB != filepath.Join(tempHome, ".local", "share", "subsync", "history.db") {
		t.Fatalf("unexpected history db: %q", cfg.Paths.HistoryDB)
	}
	if cfg.Window() != 10*time.Minute {
		t.Fatalf("expected 10 minute window, got %s", cfg.Window())
	}
	if cfg.Alignment.Threshold != 90 {
		t.Fatalf("expected threshold 90, got %d", cfg.Alignment.Threshold)
	}
	if cfg.Alignment.Scorer != "token_set" {
		t.Fatalf("expected token_set scorer, got %q", cfg.Alignment.Scorer)
	}
	if cfg.Subtitles.ReferenceLanguage != "en" {
		t.Fatalf("expected reference language en, got %q", cfg.Subtitles.ReferenceLanguage)
	}
	if len(cfg.Subtitles.MarkerPatterns) == 0 || cfg.Subtitles.MarkerPatterns[0] != "opensubtitles" {
		t.Fatalf("expected default marker patterns, got %v", cfg.Subtitles.MarkerPatterns)
	}
	if cfg.OpenSubtitles.APIKey != "os-key" {
		t.Fatalf("expected OpenSubtitles key from env, got %q", cfg.OpenSubtitles.APIKey)
	}
	if cfg.Translator.APIKey != "tr-key" {
		t.Fatalf("expected translator key from env, got %q", cfg.Translator.APIKey)
	}
	if ready, reason := cfg.OpenSubtitlesReady(); ready || !strings.Contains(reason, "enabled") {
		t.Fatalf("expected catalogue disabled by default, got ready=%v reason=%q", ready, reason)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
}

func TestLoadCustomConfigNormalizesValues(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[alignment]
window_minutes = 5
threshold = 80
scorer = " COSINE "

[subtitles]
reference_language = "eng"
input_language = "Spanish"
output_suffix = "aligned"
marker_patterns = ["addic7ed", "  "]

[translator]
provider = "LibreTranslate"

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s to exist, got %s exists=%v", path, resolved, exists)
	}
	if cfg.Window() != 5*time.Minute {
		t.Fatalf("unexpected window: %s", cfg.Window())
	}
	if cfg.Alignment.Scorer != "cosine" {
		t.Fatalf("expected scorer cosine, got %q", cfg.Alignment.Scorer)
	}
	if cfg.Subtitles.ReferenceLanguage != "en" || cfg.Subtitles.InputLanguage != "es" {
		t.Fatalf("expected normalized languages en/es, got %q/%q", cfg.Subtitles.ReferenceLanguage, cfg.Subtitles.InputLanguage)
	}
	if cfg.Subtitles.OutputSuffix != ".aligned" {
		t.Fatalf("expected dotted suffix, got %q", cfg.Subtitles.OutputSuffix)
	}
	if len(cfg.Subtitles.MarkerPatterns) != 1 || cfg.Subtitles.MarkerPatterns[0] != "addic7ed" {
		t.Fatalf("unexpected marker patterns: %v", cfg.Subtitles.MarkerPatterns)
	}
	if cfg.Translator.Provider != "libretranslate" {
		t.Fatalf("expected provider libretranslate, got %q", cfg.Translator.Provider)
	}
	if !strings.Contains(cfg.Translator.BaseURL, "libretranslate") {
		t.Fatalf("expected libretranslate base url, got %q", cfg.Translator.BaseURL)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging settings: %+v", cfg.Logging)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"threshold": func(c *config.Config) { c.Alignment.Threshold = 101 },
		"window":    func(c *config.Config) { c.Alignment.WindowMinutes = -1 },
		"scorer":    func(c *config.Config) { c.Alignment.Scorer = "levenshtein" },
		"provider":  func(c *config.Config) { c.Translator.Provider = "babelfish" },
		"pattern":   func(c *config.Config) { c.Subtitles.MarkerPatterns = []string{"(unclosed"} },
		"level":     func(c *config.Config) { c.Logging.Level = "verbose" },
	}
	for name, mutate := range cases {
		cfg := config.Default()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestSampleConfigParses(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var cfg config.Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if cfg.Alignment.Threshold != 90 || cfg.Alignment.WindowMinutes != 10 {
		t.Fatalf("unexpected sample alignment section: %+v", cfg.Alignment)
	}
}
