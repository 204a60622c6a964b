package align

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"subsync/internal/logging"
	"subsync/internal/services"
	"subsync/internal/subtitles"
	"subsync/internal/translate"
)

const (
	DefaultWindow    = 10 * time.Minute
	DefaultThreshold = 90
)

// Options tunes the offset search.
type Options struct {
	// Window bounds reference candidates to cues ending at or before it.
	Window time.Duration
	// Threshold is the score a candidate must strictly exceed.
	Threshold int
	// TargetLanguage is the reference track's language, passed to the
	// translator.
	TargetLanguage string
}

// Candidate is one scored reference cue.
type Candidate struct {
	Cue   subtitles.Cue
	Score int
}

// Result describes the outcome of one offset search.
type Result struct {
	Offset          time.Duration
	Score           int
	Threshold       int
	Matched         bool
	Lead           subtitles.Cue
	LeadTranslated string
	// Match is the best-scoring reference cue; zero when the window was empty.
	Match      subtitles.Cue
	Candidates int
}

// LowConfidence reports whether the track passes through unshifted because
// no candidate beat the threshold.
func (r Result) LowConfidence() bool {
	return !r.Matched
}

// Aligner computes offsets between tracks.
type Aligner struct {
	translator translate.Translator
	scorer     Scorer
	opts       Options
	logger     *slog.Logger
}

// New constructs an Aligner. A zero Window takes DefaultWindow; Threshold is
// used as given.
func New(translator translate.Translator, scorer Scorer, opts Options, logger *slog.Logger) *Aligner {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if scorer == nil {
		scorer = ScorerFunc(func(a, b string) int { return 0 })
	}
	if translator == nil {
		translator = translate.Identity{}
	}
	return &Aligner{
		translator: translator,
		scorer:     scorer,
		opts:       opts,
		logger:     logging.NewComponentLogger(logger, "align"),
	}
}

// Align computes the offset that moves input onto ref. input must already be
// marker-filtered; an empty input fails with services.ErrEmptyTrack before the
// translator is called. Translator failures are fatal.
func (a *Aligner) Align(ctx context.Context, ref, input *subtitles.Track) (Result, error) {
	result := Result{Threshold: a.opts.Threshold}
	if input.Len() == 0 {
		return result, services.Wrap(services.ErrEmptyTrack, "align", "lead", "input track has no cues after filtering", nil)
	}
	logger := logging.WithContext(ctx, a.logger)

	lead := input.Cues[0]
	result.Lead = lead

	translated, err := a.translator.Translate(ctx, lead.Text(), a.opts.TargetLanguage)
	if err != nil {
		return result, services.Wrap(services.ErrCollaborator, "align", "translate lead cue", "", err)
	}
	result.LeadTranslated = translated

	window := ref.SliceBefore(a.opts.Window)
	slices.SortStableFunc(window.Cues, func(x, y subtitles.Cue) int { return cmp.Compare(x.Start, y.Start) })
	result.Candidates = window.Len()

	best := -1
	for i, candidate := range window.Cues {
		score := a.scorer.Score(candidate.Text(), translated)
		if best < 0 || score > result.Score {
			best = i
			result.Score = score
		}
	}
	if best >= 0 {
		result.Match = window.Cues[best]
	}

	if best >= 0 && result.Score > a.opts.Threshold {
		result.Matched = true
		result.Offset = result.Match.Start - lead.Start
		logger.Info("offset selected",
			logging.Args(append(logging.DecisionAttrs("alignment_match", "matched", "score above threshold"),
				logging.Duration("offset", result.Offset),
				logging.Int("score", result.Score),
				logging.Int("threshold", a.opts.Threshold),
				logging.Int("reference_index", result.Match.Index),
				logging.Int("candidates", result.Candidates),
			)...)...,
		)
		return result, nil
	}

	logging.WarnWithContext(logger, "no reference cue matched the lead cue; leaving timings unchanged",
		"alignment_low_confidence",
		logging.Int("score", result.Score),
		logging.Int("threshold", a.opts.Threshold),
		logging.Int("candidates", result.Candidates),
		logging.String("lead_cue", lead.Text()),
		logging.String("lead_translated", translated),
		logging.String(logging.FieldErrorHint, "check the tracks belong to the same release or pass --offset"),
		logging.String(logging.FieldImpact, "output timings equal input timings"),
	)
	return result, nil
}

// Apply returns a copy of track shifted by offset and reindexed 1..N in start
// order. track itself is not modified.
func Apply(track *subtitles.Track, offset time.Duration) *subtitles.Track {
	out := track.Shifted(offset)
	out.Reindex()
	return out
}
