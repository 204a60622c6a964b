package align

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"subsync/internal/services"
	"subsync/internal/subtitles"
	"subsync/internal/translate"
)

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

func track(cues ...subtitles.Cue) *subtitles.Track {
	t := subtitles.NewTrack(cues...)
	t.Reindex()
	return t
}

func line(start, end time.Duration, text string) subtitles.Cue {
	return subtitles.Cue{Start: start, End: end, Lines: []string{text}}
}

// tableScorer returns fixed scores keyed by reference text.
func tableScorer(scores map[string]int) Scorer {
	return ScorerFunc(func(ref, _ string) int { return scores[ref] })
}

func countingTranslator(calls *int) translate.Translator {
	return translate.Func(func(_ context.Context, text, _ string) (string, error) {
		*calls++
		return text, nil
	})
}

func TestAlignScenarioExactMatch(t *testing.T) {
	ref := track(
		line(ms(1000), ms(3000), "Previously on"),
		line(ms(5000), ms(7000), "Hello there"),
		line(ms(9000), ms(11000), "General Kenobi"),
	)
	input := track(
		line(ms(12500), ms(14000), "Hola"),
		line(ms(16500), ms(18000), "General Kenobi"),
	)
	translator := translate.Func(func(_ context.Context, text, target string) (string, error) {
		if target != "en" {
			t.Fatalf("unexpected target %q", target)
		}
		if text == "Hola" {
			return "Hello there", nil
		}
		return text, nil
	})

	aligner := New(translator, ScorerFunc(func(a, b string) int {
		if a == b {
			return 100
		}
		return 10
	}), Options{Threshold: 90, TargetLanguage: "en"}, nil)

	result, err := aligner.Align(context.Background(), ref, input)
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if !result.Matched || result.LowConfidence() {
		t.Fatalf("expected a match, got %+v", result)
	}
	if result.Offset != ms(5000)-ms(12500) {
		t.Fatalf("offset = %s, want -7.5s", result.Offset)
	}
	if result.Score != 100 || result.LeadTranslated != "Hello there" || result.Match.Text() != "Hello there" {
		t.Fatalf("unexpected result %+v", result)
	}

	shifted := Apply(input, result.Offset)
	if shifted.Cues[0].Start != ms(5000) {
		t.Fatalf("shifted lead cue starts at %s, want 5s", shifted.Cues[0].Start)
	}
	if input.Cues[0].Start != ms(12500) {
		t.Fatal("Apply mutated the input track")
	}
}

func TestAlignScenarioNoMatchPassesThrough(t *testing.T) {
	ref := track(line(ms(1000), ms(2000), "a"), line(ms(3000), ms(4000), "b"))
	input := track(line(ms(500), ms(900), "x"), line(ms(2000), ms(2500), "y"))

	aligner := New(translate.Identity{}, tableScorer(map[string]int{"a": 40, "b": 89}), Options{Threshold: 90}, nil)
	result, err := aligner.Align(context.Background(), ref, input)
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if result.Matched || !result.LowConfidence() || result.Offset != 0 {
		t.Fatalf("expected low-confidence zero offset, got %+v", result)
	}
	if result.Score != 89 || result.Match.Text() != "b" {
		t.Fatalf("best candidate should still be reported, got %+v", result)
	}
	out := Apply(input, result.Offset)
	if !reflect.DeepEqual(out, input) {
		t.Fatalf("zero offset changed timings: %+v vs %+v", out, input)
	}
}

func TestAlignScenarioEmptyInputSkipsCollaborators(t *testing.T) {
	calls := 0
	scored := 0
	aligner := New(countingTranslator(&calls), ScorerFunc(func(a, b string) int {
		scored++
		return 100
	}), Options{Threshold: 90}, nil)

	_, err := aligner.Align(context.Background(), track(line(0, ms(1000), "a")), &subtitles.Track{})
	if !errors.Is(err, services.ErrEmptyTrack) {
		t.Fatalf("expected ErrEmptyTrack, got %v", err)
	}
	if calls != 0 || scored != 0 {
		t.Fatalf("collaborators invoked: translate=%d score=%d", calls, scored)
	}
}

func TestAlignThresholdIsStrict(t *testing.T) {
	ref := track(line(ms(10000), ms(11000), "at"), line(ms(20000), ms(21000), "above"))
	input := track(line(ms(1000), ms(2000), "opening line"))

	equal := New(translate.Identity{}, tableScorer(map[string]int{"at": 90}), Options{Threshold: 90}, nil)
	result, err := equal.Align(context.Background(), ref, input)
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if result.Matched || result.Offset != 0 {
		t.Fatalf("score equal to threshold must not match: %+v", result)
	}

	above := New(translate.Identity{}, tableScorer(map[string]int{"at": 90, "above": 91}), Options{Threshold: 90}, nil)
	result, err = above.Align(context.Background(), ref, input)
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if !result.Matched || result.Offset != ms(19000) {
		t.Fatalf("score threshold+1 must match with offset 19s: %+v", result)
	}
}

func TestAlignTieKeepsEarliestStart(t *testing.T) {
	// Source order puts the later cue first; candidates are scanned by start.
	ref := subtitles.NewTrack(
		line(ms(8000), ms(9000), "late"),
		line(ms(4000), ms(5000), "early"),
	)
	input := track(line(ms(1000), ms(2000), "opening line"))

	aligner := New(translate.Identity{}, tableScorer(map[string]int{"late": 95, "early": 95}), Options{Threshold: 90}, nil)
	result, err := aligner.Align(context.Background(), ref, input)
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if result.Match.Text() != "early" || result.Offset != ms(3000) {
		t.Fatalf("expected earliest tied cue, got %+v", result)
	}
}

func TestAlignIgnoresCuesOutsideWindow(t *testing.T) {
	ref := track(
		line(ms(1000), ms(2000), "inside"),
		line(9*time.Minute+59*time.Second, 10*time.Minute, "edge"),
		line(10*time.Minute, 10*time.Minute+time.Millisecond, "outside"),
	)
	input := track(line(0, ms(500), "opening line"))

	aligner := New(translate.Identity{}, tableScorer(map[string]int{"inside": 10, "edge": 95, "outside": 100}), Options{Threshold: 90}, nil)
	result, err := aligner.Align(context.Background(), ref, input)
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if result.Candidates != 2 {
		t.Fatalf("expected 2 candidates in window, got %d", result.Candidates)
	}
	if result.Match.Text() != "edge" || result.Offset != 9*time.Minute+59*time.Second {
		t.Fatalf("expected cue ending exactly at cutoff to win, got %+v", result)
	}
}

func TestAlignTranslatorFailureIsFatal(t *testing.T) {
	aligner := New(translate.Func(func(context.Context, string, string) (string, error) {
		return "", errors.New("quota exceeded")
	}), tableScorer(nil), Options{Threshold: 90}, nil)

	_, err := aligner.Align(context.Background(), track(line(0, ms(1000), "a")), track(line(0, ms(1000), "b")))
	if !errors.Is(err, services.ErrCollaborator) {
		t.Fatalf("expected collaborator error, got %v", err)
	}
}

func TestAlignEmptyReferenceIsLowConfidence(t *testing.T) {
	aligner := New(translate.Identity{}, tableScorer(nil), Options{Threshold: 90}, nil)
	result, err := aligner.Align(context.Background(), &subtitles.Track{}, track(line(0, ms(1000), "b")))
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if result.Matched || result.Candidates != 0 || result.Offset != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestApplyReindexesAfterShift(t *testing.T) {
	input := subtitles.NewTrack(
		subtitles.Cue{Index: 4, Start: ms(3000), End: ms(4000), Lines: []string{"b"}},
		subtitles.Cue{Index: 2, Start: ms(1000), End: ms(2000), Lines: []string{"a"}},
	)
	out := Apply(input, -ms(1500))
	if out.Cues[0].Index != 1 || out.Cues[1].Index != 2 {
		t.Fatalf("expected contiguous indices, got %+v", out.Cues)
	}
	if out.Cues[0].Start != -ms(500) || out.Cues[0].Text() != "a" {
		t.Fatalf("unexpected first cue %+v", out.Cues[0])
	}
}

func TestNewScorer(t *testing.T) {
	for _, name := range []string{ScorerTokenSet, ScorerCosine, ""} {
		scorer, err := NewScorer(name)
		if err != nil {
			t.Fatalf("NewScorer(%q): %v", name, err)
		}
		if got := scorer.Score("hello there", "There, hello!"); got != 100 {
			t.Fatalf("%s scorer gave %d for reordered text", name, got)
		}
	}
	if _, err := NewScorer("levenshtein"); err == nil {
		t.Fatal("expected unknown scorer error")
	}
}
