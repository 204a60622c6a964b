package preflight

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subsync/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckTranslator_None(t *testing.T) {
	result := CheckTranslator(context.Background(), config.TranslatorConfig{Provider: "none"})
	if !result.Passed {
		t.Fatalf("identity translator should pass: %s", result.Detail)
	}
}

func TestCheckTranslator_MissingKey(t *testing.T) {
	result := CheckTranslator(context.Background(), config.TranslatorConfig{Provider: "llm"})
	if result.Passed {
		t.Fatal("expected failure without api key")
	}
	if !strings.Contains(result.Detail, "api_key") {
		t.Fatalf("detail should name the missing key: %q", result.Detail)
	}
}

func TestCheckTranslator_LLMHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": `{"ok":true}`}}},
		})
	}))
	defer srv.Close()

	result := CheckTranslator(context.Background(), config.TranslatorConfig{Provider: "llm", APIKey: "k", BaseURL: srv.URL})
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckTranslator_LibreTranslateDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	result := CheckTranslator(context.Background(), config.TranslatorConfig{Provider: "libretranslate", BaseURL: srv.URL})
	if result.Passed {
		t.Fatal("expected failure for unavailable server")
	}
}

func TestCheckOpenSubtitles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Api-Key") != "good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	if result := CheckOpenSubtitles(context.Background(), &cfg); !result.Passed || result.Detail != "Disabled" {
		t.Fatalf("disabled catalogue should pass, got %+v", result)
	}

	cfg.OpenSubtitles.Enabled = true
	cfg.OpenSubtitles.BaseURL = srv.URL
	if result := CheckOpenSubtitles(context.Background(), &cfg); result.Passed {
		t.Fatal("expected failure for missing key")
	}

	cfg.OpenSubtitles.APIKey = "bad-key"
	if result := CheckOpenSubtitles(context.Background(), &cfg); result.Passed || !strings.Contains(result.Detail, "auth failed") {
		t.Fatalf("expected auth failure, got %+v", result)
	}

	cfg.OpenSubtitles.APIKey = "good-key"
	if result := CheckOpenSubtitles(context.Background(), &cfg); !result.Passed {
		t.Fatalf("expected pass, got %+v", result)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.WorkDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Translator.Provider = "none"

	results := RunAll(context.Background(), &cfg)
	if len(results) != 4 {
		t.Fatalf("expected work, log, translator and opensubtitles checks, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}

func TestRunAll_ChecksCacheWhenCatalogueEnabled(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.WorkDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Paths.OpenSubtitlesCacheDir = filepath.Join(t.TempDir(), "missing")
	cfg.Translator.Provider = "none"
	cfg.OpenSubtitles.Enabled = true

	failed := Failed(RunAll(context.Background(), &cfg))
	names := make([]string, 0, len(failed))
	for _, r := range failed {
		names = append(names, r.Name)
	}
	joined := strings.Join(names, ",")
	if !strings.Contains(joined, "OpenSubtitles cache") || !strings.Contains(joined, "OpenSubtitles") {
		t.Fatalf("expected cache and key failures, got %v", names)
	}
}
