package preflight

import (
	"context"

	"subsync/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the directory and service checks for the given config.
// Binary checks are reported separately by CheckSystemDeps.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if cfg.OpenSubtitles.Enabled {
		results = append(results, CheckDirectoryAccess("OpenSubtitles cache", cfg.Paths.OpenSubtitlesCacheDir))
	}
	results = append(results, CheckTranslator(ctx, cfg.GetTranslator()))
	results = append(results, CheckOpenSubtitles(ctx, cfg))
	return results
}

// Failed returns the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
