package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"subsync/internal/align"
	"subsync/internal/fileutil"
	"subsync/internal/history"
	"subsync/internal/logging"
	"subsync/internal/services"
	"subsync/internal/sources"
	"subsync/internal/subtitles"
)

// outputLockTimeout bounds how long a run waits for another run writing the
// same output path.
const outputLockTimeout = 30 * time.Second

// Resolver produces the local subtitle files of a run.
type Resolver interface {
	Resolve(ctx context.Context, req sources.Request) (sources.Resolved, error)
}

// Recorder persists a finished run.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) (history.Entry, error)
}

// Request describes one synchronization run.
type Request struct {
	// ReferencePath is a subtitle file or a media container.
	ReferencePath string
	// InputPath is the subtitle (or container) to shift. Empty means both
	// tracks come from the catalogue for ReferencePath.
	InputPath  string
	OutputPath string
	DryRun     bool
	// RequireMatch fails the run instead of passing the input through
	// unshifted when no candidate beats the threshold.
	RequireMatch bool
	// ManualOffset skips matching and applies the given shift.
	ManualOffset *time.Duration
}

// Result reports what a run did.
type Result struct {
	RunID        string
	Reference    sources.Track
	Input        sources.Track
	OutputPath   string
	Offset       time.Duration
	Alignment    align.Result
	Manual       bool
	Written      bool
	MarkersFound int
	NegativeCues int
	Status       string
}

// LowConfidence reports whether the input passed through unshifted because
// no reference cue matched.
func (r Result) LowConfidence() bool {
	return !r.Manual && !r.Alignment.Matched
}

// Settings carries the configuration a Runner needs.
type Settings struct {
	ReferenceLanguage string
	InputLanguage     string
	OutputSuffix      string
	Markers           *subtitles.MarkerSet
}

// Runner executes synchronization runs.
type Runner struct {
	resolver Resolver
	aligner  *align.Aligner
	recorder Recorder
	settings Settings
	logger   *slog.Logger
	now      func() time.Time
}

// NewRunner wires a Runner. recorder may be nil.
func NewRunner(resolver Resolver, aligner *align.Aligner, recorder Recorder, settings Settings, logger *slog.Logger) *Runner {
	return &Runner{
		resolver: resolver,
		aligner:  aligner,
		recorder: recorder,
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		now:      time.Now,
	}
}

// Run executes one synchronization. Fatal errors leave no output behind;
// an existing file at the output path is replaced only by a complete result.
func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	result := Result{RunID: uuid.NewString()}
	ctx = services.WithRunID(ctx, result.RunID)
	logger := logging.WithContext(ctx, r.logger)
	started := r.now()

	err := r.run(ctx, logger, req, &result)
	if err != nil {
		result.Status = history.StatusFailed
	}
	r.record(ctx, logger, req, result, started, err)
	if err != nil {
		return result, err
	}

	logger.Info("synchronization finished",
		logging.String("status", result.Status),
		logging.Duration("offset", result.Offset),
		logging.Int("score", result.Alignment.Score),
		logging.String("output", result.OutputPath),
		logging.Bool("written", result.Written),
	)
	return result, nil
}

func (r *Runner) run(ctx context.Context, logger *slog.Logger, req Request, result *Result) error {
	if strings.TrimSpace(req.OutputPath) != "" && !validOutputPath(req.OutputPath) {
		return services.Wrap(services.ErrConfiguration, "workflow", "output",
			fmt.Sprintf("unsupported output format %q", req.OutputPath), nil)
	}

	var resolved sources.Resolved
	err := runStage(ctx, logger, StageResolve, func(ctx context.Context, _ *slog.Logger) error {
		var err error
		resolved, err = r.resolver.Resolve(ctx, sources.Request{
			ReferencePath:     req.ReferencePath,
			InputPath:         req.InputPath,
			ReferenceLanguage: r.settings.ReferenceLanguage,
			InputLanguage:     r.settings.InputLanguage,
		})
		return err
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := resolved.Release(); err != nil {
			logger.Warn("failed to remove run artifacts", logging.Error(err))
		}
	}()
	result.Reference = resolved.Reference
	result.Input = resolved.Input
	if dir := resolved.TempDir(); dir != "" {
		logger.Debug("run artifacts staged", logging.String("artifact_dir", dir))
	}

	var reference, input *subtitles.Track
	err = runStage(ctx, logger, StageParse, func(ctx context.Context, stageLogger *slog.Logger) error {
		var err error
		if input, err = loadTrack(resolved.Input.Path); err != nil {
			return err
		}
		if req.ManualOffset == nil {
			if reference, err = loadTrack(resolved.Reference.Path); err != nil {
				return err
			}
		}
		stageLogger.Info("tracks loaded",
			logging.Int("input_cues", input.Len()),
			logging.Int("reference_cues", reference.Len()),
			logging.String("reference_origin", string(resolved.Reference.Origin)),
			logging.String("input_origin", string(resolved.Input.Origin)),
		)
		return nil
	})
	if err != nil {
		return err
	}

	err = runStage(ctx, logger, StageFilter, func(ctx context.Context, stageLogger *slog.Logger) error {
		result.MarkersFound = input.FilterMarkings(r.settings.Markers)
		if result.MarkersFound > 0 {
			stageLogger.Info("advertisement cues removed", logging.Int("removed", result.MarkersFound))
		}
		if input.Len() == 0 {
			return services.Wrap(services.ErrEmptyTrack, "workflow", "filter",
				"input track has no cues after removing markings", nil)
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = runStage(ctx, logger, StageAlign, func(ctx context.Context, stageLogger *slog.Logger) error {
		if req.ManualOffset != nil {
			result.Manual = true
			result.Offset = *req.ManualOffset
			result.Status = history.StatusManual
			stageLogger.Info("manual offset applied",
				logging.Args(append(logging.DecisionAttrs("offset_source", "manual", "offset given on command line"),
					logging.Duration("offset", result.Offset))...)...,
			)
			return nil
		}
		res, err := r.aligner.Align(ctx, reference, input)
		if err != nil {
			return err
		}
		result.Alignment = res
		result.Offset = res.Offset
		if res.Matched {
			result.Status = history.StatusAligned
			return nil
		}
		result.Status = history.StatusLowConfidence
		if req.RequireMatch {
			return services.Wrap(services.ErrLowConfidence, "workflow", "align",
				fmt.Sprintf("best score %d does not exceed threshold %d", res.Score, res.Threshold), nil)
		}
		return nil
	})
	if err != nil {
		return err
	}

	var shifted *subtitles.Track
	err = runStage(ctx, logger, StageApply, func(ctx context.Context, stageLogger *slog.Logger) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		shifted = align.Apply(input, result.Offset)
		result.NegativeCues = shifted.NegativeCues()
		if result.NegativeCues > 0 {
			logging.WarnWithContext(stageLogger, "cues shifted before zero", "negative_timestamps",
				logging.Int("cues", result.NegativeCues),
				logging.Duration("offset", result.Offset),
				logging.String(logging.FieldErrorHint, "the reference starts later than the input; check the match"),
				logging.String(logging.FieldImpact, "affected cues are written at 00:00:00"),
			)
		}
		return nil
	})
	if err != nil {
		return err
	}

	result.OutputPath = strings.TrimSpace(req.OutputPath)
	if result.OutputPath == "" {
		result.OutputPath = DefaultOutputPath(req, resolved.Input, r.settings.OutputSuffix)
	}
	if req.DryRun {
		logger.Info("dry run; output not written", logging.String("output", result.OutputPath))
		return nil
	}

	return runStage(ctx, logger, StageWrite, func(ctx context.Context, stageLogger *slog.Logger) error {
		lockCtx, cancel := context.WithTimeout(ctx, outputLockTimeout)
		defer cancel()
		unlock, err := fileutil.Lock(lockCtx, result.OutputPath)
		if err != nil {
			return services.Wrap(services.ErrCollaborator, "workflow", "write", "output is locked by another run", err)
		}
		defer func() { _ = unlock() }()

		if err := subtitles.Save(shifted, result.OutputPath); err != nil {
			return services.Wrap(services.ErrCollaborator, "workflow", "write", result.OutputPath, err)
		}
		result.Written = true
		stageLogger.Info("synchronized subtitle written", logging.String("output", result.OutputPath))
		return nil
	})
}

func loadTrack(path string) (*subtitles.Track, error) {
	track, err := subtitles.Load(path)
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidSubtitle, "workflow", "parse", path, err)
	}
	return track, nil
}

func (r *Runner) record(ctx context.Context, logger *slog.Logger, req Request, result Result, started time.Time, runErr error) {
	if r.recorder == nil {
		return
	}
	entry := history.Entry{
		ID:              result.RunID,
		StartedAt:       started,
		FinishedAt:      r.now(),
		ReferencePath:   req.ReferencePath,
		InputPath:       req.InputPath,
		OutputPath:      result.OutputPath,
		ReferenceOrigin: string(result.Reference.Origin),
		InputOrigin:     string(result.Input.Origin),
		Offset:          result.Offset,
		Score:           result.Alignment.Score,
		Threshold:       result.Alignment.Threshold,
		Matched:         result.Alignment.Matched,
		Manual:          result.Manual,
		DryRun:          req.DryRun,
		Status:          result.Status,
	}
	if runErr != nil {
		entry.Error = runErr.Error()
	}
	// Detach from cancellation so an interrupted run is still recorded.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, err := r.recorder.Record(recordCtx, entry); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("failed to record run history", logging.Error(err))
	}
}
