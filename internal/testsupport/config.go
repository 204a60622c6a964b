package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"subsync/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Translation defaults to the identity provider and the catalogue is off.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.OpenSubtitlesCacheDir = filepath.Join(base, "cache", "opensubtitles")
	cfgVal.Paths.HistoryDB = filepath.Join(base, "logs", "history.db")
	cfgVal.Translator.Provider = "none"
	cfgVal.Subtitles.InputLanguage = "es"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithOpenSubtitles enables the catalogue against baseURL.
func WithOpenSubtitles(baseURL, apiKey string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.OpenSubtitles.Enabled = true
		b.cfg.OpenSubtitles.BaseURL = baseURL
		b.cfg.OpenSubtitles.APIKey = apiKey
	}
}

// WithHistory toggles the run ledger.
func WithHistory(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = enabled
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffprobe and ffmpeg are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffprobe", "ffmpeg"}
		}
		for _, name := range names {
			WriteStubBinary(b.t, filepath.Join(b.baseDir, "bin"), name, "exit 0")
		}
		b.t.Setenv("PATH", filepath.Join(b.baseDir, "bin")+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// WriteStubBinary writes an executable shell script named name into dir and
// returns its path. body is the script after the shebang line.
func WriteStubBinary(t testing.TB, dir, name, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
