package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"subsync/internal/language"
	"subsync/internal/logging"
	"subsync/internal/subtitles/opensubtitles"
)

// OpenSubtitlesAPI is the subset of the OpenSubtitles client used here.
type OpenSubtitlesAPI interface {
	Search(ctx context.Context, req opensubtitles.SearchRequest) (opensubtitles.SearchResponse, error)
	Download(ctx context.Context, fileID int64, format string) (opensubtitles.DownloadResult, error)
}

// OpenSubtitlesCatalogue implements Catalogue on top of the OpenSubtitles
// API: moviehash lookup first, then a title query from the file name, with
// ranked candidates, an on-disk cache and rate-limited retries.
type OpenSubtitlesCatalogue struct {
	client  OpenSubtitlesAPI
	cache   *opensubtitles.Cache
	limiter *opensubtitles.Limiter
	logger  *slog.Logger
}

// NewOpenSubtitlesCatalogue wires the catalogue. Downloads are kept in
// cache; a nil limiter gets the package defaults.
func NewOpenSubtitlesCatalogue(client OpenSubtitlesAPI, cache *opensubtitles.Cache, limiter *opensubtitles.Limiter, logger *slog.Logger) *OpenSubtitlesCatalogue {
	logger = logging.NewComponentLogger(logger, "opensubtitles")
	if limiter == nil {
		limiter = opensubtitles.NewLimiter(opensubtitles.WithRetryHook(func(attempt int, wait time.Duration, err error) {
			logging.WarnWithContext(logger, "opensubtitles transient failure; retrying", "opensubtitles_rate_limited",
				logging.Int("attempt", attempt),
				logging.Duration("wait", wait),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "OpenSubtitles is throttling or unavailable"),
				logging.String(logging.FieldImpact, "catalogue lookup delayed"),
			)
		}))
	}
	return &OpenSubtitlesCatalogue{client: client, cache: cache, limiter: limiter, logger: logger}
}

// FindBest implements Catalogue.
func (c *OpenSubtitlesCatalogue) FindBest(ctx context.Context, video string, languages []string) (map[string]string, error) {
	hash, err := opensubtitles.MovieHash(video)
	if err != nil {
		if !errors.Is(err, opensubtitles.ErrFileTooSmall) {
			return nil, err
		}
		c.logger.Debug("moviehash unavailable; using title search only", logging.String("path", video))
		hash = ""
	}
	hint := opensubtitles.ParseFileName(video)
	c.logger.Debug("catalogue lookup",
		logging.String("moviehash", hash),
		logging.String("title", hint.Title),
		logging.Int("year", hint.Year),
	)

	found := make(map[string]string, len(languages))
	for _, lang := range languages {
		if _, done := found[lang]; done {
			continue
		}
		code := language.ToISO2(lang)
		if code == "" {
			code = lang
		}
		path, err := c.findLanguage(ctx, hash, hint, lang, code)
		if err != nil {
			return nil, err
		}
		if path != "" {
			found[lang] = path
		}
	}
	return found, nil
}

func (c *OpenSubtitlesCatalogue) findLanguage(ctx context.Context, hash string, hint opensubtitles.FeatureHint, lang, code string) (string, error) {
	for _, variant := range opensubtitles.SearchVariants(hash, hint, []string{code}) {
		var resp opensubtitles.SearchResponse
		err := c.limiter.Do(ctx, func(ctx context.Context) error {
			var searchErr error
			resp, searchErr = c.client.Search(ctx, variant)
			return searchErr
		})
		if err != nil {
			return "", fmt.Errorf("search %s: %w", code, err)
		}
		ranked := opensubtitles.Rank(resp.Subtitles, opensubtitles.Criteria{Language: lang, Title: hint.Title, Year: hint.Year})
		if len(ranked) == 0 {
			continue
		}
		best := ranked[0]
		c.logger.Info("catalogue candidate selected",
			logging.Args(append(logging.DecisionAttrs("catalogue_candidate", "selected", fmt.Sprint(best.Reasons)),
				logging.String("language", code),
				logging.Any("file_id", best.Subtitle.FileID),
				logging.String("release", best.Subtitle.Release),
				logging.Bool("moviehash_match", best.Subtitle.MovieHashMatch),
				logging.Int("candidates", len(ranked)),
			)...)...,
		)
		return c.fetch(ctx, best.Subtitle, hash)
	}
	c.logger.Info("no catalogue candidates", logging.String("language", code))
	return "", nil
}

func (c *OpenSubtitlesCatalogue) fetch(ctx context.Context, sub opensubtitles.Subtitle, hash string) (string, error) {
	if c.cache == nil {
		return "", errors.New("opensubtitles cache directory is not configured")
	}
	hit, ok, err := c.cache.Load(sub.FileID)
	if err != nil {
		c.logger.Warn("opensubtitles cache read failed", logging.Error(err))
	} else if ok {
		c.logger.Debug("opensubtitles cache hit", logging.String("path", hit.Path))
		return hit.Path, nil
	}

	var result opensubtitles.DownloadResult
	err = c.limiter.Do(ctx, func(ctx context.Context) error {
		var dlErr error
		result, dlErr = c.client.Download(ctx, sub.FileID, "srt")
		return dlErr
	})
	if err != nil {
		return "", fmt.Errorf("download file %d: %w", sub.FileID, err)
	}

	return c.cache.Store(ctx, opensubtitles.CacheEntry{
		FileID:       sub.FileID,
		Language:     sub.Language,
		FileName:     result.FileName,
		DownloadURL:  result.DownloadURL,
		MovieHash:    hash,
		FeatureTitle: sub.FeatureTitle,
		FeatureYear:  sub.FeatureYear,
	}, result.Data)
}
