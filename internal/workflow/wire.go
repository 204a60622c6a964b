package workflow

import (
	"context"
	"log/slog"

	"subsync/internal/align"
	"subsync/internal/config"
	"subsync/internal/history"
	"subsync/internal/logging"
	"subsync/internal/media/ffmpeg"
	"subsync/internal/media/ffprobe"
	"subsync/internal/services"
	"subsync/internal/sources"
	"subsync/internal/subtitles"
	"subsync/internal/subtitles/opensubtitles"
	"subsync/internal/translate"
)

// Build assembles a Runner from configuration. The returned closer releases
// the history store and must be called once the runner is no longer used.
//
// The translator is built lazily, so runs that never translate (manual
// offsets, early failures) do not require translator credentials.
func Build(cfg *config.Config, logger *slog.Logger) (*Runner, func() error, error) {
	markers, err := subtitles.NewMarkerSet(cfg.Subtitles.MarkerPatterns)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrConfiguration, "workflow", "init", "subtitles.marker_patterns", err)
	}
	scorer, err := align.NewScorer(cfg.Alignment.Scorer)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrConfiguration, "workflow", "init", "alignment.scorer", err)
	}

	translatorCfg := cfg.GetTranslator()
	translator := translate.NewLazy(func() (translate.Translator, error) {
		memo, err := translate.New(translatorCfg)
		if err != nil {
			return nil, err
		}
		return memo, nil
	})
	aligner := align.New(translator, scorer, align.Options{
		Window:         cfg.Window(),
		Threshold:      cfg.Alignment.Threshold,
		TargetLanguage: cfg.Subtitles.ReferenceLanguage,
	}, logger)

	catalogue, err := buildCatalogue(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	ffprobeBinary := cfg.FFprobeBinary()
	inspector := sources.InspectorFunc(func(ctx context.Context, path string) (ffprobe.Result, error) {
		return ffprobe.Inspect(ctx, ffprobeBinary, path)
	})
	resolver := sources.NewResolver(inspector, ffmpeg.NewExtractor(cfg.FFmpegBinary()), catalogue, cfg.Paths.WorkDir, logger)

	closer := func() error { return nil }
	var recorder Recorder
	if cfg.History.Enabled {
		store, err := history.Open(cfg.Paths.HistoryDB)
		if err != nil {
			logging.WarnWithContext(logging.NewComponentLogger(logger, "workflow"), "history ledger unavailable", "history_unavailable",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check paths.history_db"),
				logging.String(logging.FieldImpact, "runs will not be recorded"),
			)
		} else {
			recorder = store
			closer = store.Close
		}
	}

	runner := NewRunner(resolver, aligner, recorder, Settings{
		ReferenceLanguage: cfg.Subtitles.ReferenceLanguage,
		InputLanguage:     cfg.Subtitles.InputLanguage,
		OutputSuffix:      cfg.Subtitles.OutputSuffix,
		Markers:           markers,
	}, logger)
	return runner, closer, nil
}

// buildCatalogue returns nil when the catalogue is disabled or lacks a key;
// runs that need it then fail with a configuration error.
func buildCatalogue(cfg *config.Config, logger *slog.Logger) (sources.Catalogue, error) {
	if ok, _ := cfg.OpenSubtitlesReady(); !ok {
		return nil, nil
	}
	client, err := opensubtitles.New(opensubtitles.Config{
		APIKey:    cfg.OpenSubtitles.APIKey,
		UserAgent: cfg.OpenSubtitles.UserAgent,
		UserToken: cfg.OpenSubtitles.UserToken,
		BaseURL:   cfg.OpenSubtitles.BaseURL,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "init", "opensubtitles client", err)
	}
	cache, err := opensubtitles.NewCache(cfg.Paths.OpenSubtitlesCacheDir, logger)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "init", "opensubtitles cache", err)
	}
	return sources.NewOpenSubtitlesCatalogue(client, cache, nil, logger), nil
}
