package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"subsync/internal/config"
	"subsync/internal/deps"
	"subsync/internal/services/llm"
	"subsync/internal/subtitles/opensubtitles"
	"subsync/internal/translate"
)

// CheckTranslator verifies that the configured translation provider answers.
// It uses a 30-second timeout and a single attempt (no retries).
func CheckTranslator(ctx context.Context, cfg config.TranslatorConfig) Result {
	name := "Translator"
	if cfg.Provider != "" {
		name = fmt.Sprintf("Translator (%s)", cfg.Provider)
	}
	if cfg.Provider == translate.ProviderNone {
		return Result{Name: name, Passed: true, Detail: "identity (no translation)"}
	}

	translator, err := translate.New(cfg, llm.WithRetryMaxAttempts(1))
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := translator.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckOpenSubtitles verifies the catalogue API key. A disabled catalogue
// passes since runs that need it fail with their own error.
func CheckOpenSubtitles(ctx context.Context, cfg *config.Config) Result {
	const name = "OpenSubtitles"
	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if !cfg.OpenSubtitles.Enabled {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	if ok, reason := cfg.OpenSubtitlesReady(); !ok {
		return Result{Name: name, Detail: reason}
	}

	client, err := opensubtitles.New(opensubtitles.Config{
		APIKey:    cfg.OpenSubtitles.APIKey,
		UserAgent: cfg.OpenSubtitles.UserAgent,
		UserToken: cfg.OpenSubtitles.UserToken,
		BaseURL:   cfg.OpenSubtitles.BaseURL,
	})
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(checkCtx); err != nil {
		var apiErr *opensubtitles.APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
			return Result{Name: name, Detail: "auth failed (invalid api key)"}
		}
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external binaries for the given config.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(ctx, deps.MediaRequirements(cfg.FFprobeBinary(), cfg.FFmpegBinary()))
}

// summarizeError produces a human-readable summary for health check failures.
func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (API unreachable)"
	}
	return strings.TrimSpace(err.Error())
}
