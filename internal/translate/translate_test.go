package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"subsync/internal/config"
	"subsync/internal/services"
)

func TestMemoCachesPerTextAndTarget(t *testing.T) {
	calls := 0
	memo := NewMemo(Func(func(_ context.Context, text, target string) (string, error) {
		calls++
		return target + ":" + text, nil
	}))
	ctx := context.Background()

	for range 3 {
		got, err := memo.Translate(ctx, "hola", "en")
		if err != nil || got != "en:hola" {
			t.Fatalf("unexpected result %q, %v", got, err)
		}
	}
	if _, err := memo.Translate(ctx, "hola", "fr"); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 underlying calls, got %d", calls)
	}
}

func TestMemoDoesNotCacheErrors(t *testing.T) {
	calls := 0
	memo := NewMemo(Func(func(context.Context, string, string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("boom")
		}
		return "ok", nil
	}))
	if _, err := memo.Translate(context.Background(), "x", "en"); err == nil {
		t.Fatal("expected first call to fail")
	}
	if got, err := memo.Translate(context.Background(), "x", "en"); err != nil || got != "ok" {
		t.Fatalf("expected retry to reach translator, got %q, %v", got, err)
	}
}

func TestLibreTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/translate":
			var req libreRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode: %v", err)
			}
			if req.Source != "auto" || req.Target != "en" || req.Format != "text" || req.APIKey != "k" {
				t.Errorf("unexpected request %+v", req)
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"translatedText": "Hello there"})
		case "/languages":
			_, _ = w.Write([]byte(`[]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewLibreTranslate(server.URL+"/", "k", 0, nil)
	got, err := client.Translate(context.Background(), "Hola", "en")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "Hello there" {
		t.Fatalf("unexpected translation %q", got)
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestLibreTranslateSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "target not supported"})
	}))
	defer server.Close()

	_, err := NewLibreTranslate(server.URL, "", 0, nil).Translate(context.Background(), "Hola", "xx")
	if err == nil || !strings.Contains(err.Error(), "target not supported") {
		t.Fatalf("expected server message in error, got %v", err)
	}
}

func TestNewRequiresKeyForLLM(t *testing.T) {
	_, err := New(config.TranslatorConfig{Provider: ProviderLLM})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestNewIdentityProvider(t *testing.T) {
	tr, err := New(config.TranslatorConfig{Provider: ProviderNone})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := tr.Translate(context.Background(), "Bonjour", "en")
	if err != nil || got != "Bonjour" {
		t.Fatalf("identity translator returned %q, %v", got, err)
	}
	if err := tr.HealthCheck(context.Background()); err != nil {
		t.Fatalf("identity health: %v", err)
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	if _, err := New(config.TranslatorConfig{Provider: "babelfish"}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}


func TestLazyBuildsOnceAndOnlyWhenUsed(t *testing.T) {
	builds := 0
	lazy := NewLazy(func() (Translator, error) {
		builds++
		return Identity{}, nil
	})
	if builds != 0 {
		t.Fatal("translator built eagerly")
	}
	for range 2 {
		got, err := lazy.Translate(context.Background(), "hola", "en")
		if err != nil || got != "hola" {
			t.Fatalf("Translate = %q, %v", got, err)
		}
	}
	if builds != 1 {
		t.Fatalf("expected one build, got %d", builds)
	}
}

func TestLazySurfacesBuildError(t *testing.T) {
	lazy := NewLazy(func() (Translator, error) {
		return New(config.TranslatorConfig{Provider: ProviderLLM})
	})
	if _, err := lazy.Translate(context.Background(), "x", "en"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if err := lazy.HealthCheck(context.Background()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration from health check, got %v", err)
	}
}
