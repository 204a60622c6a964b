package subtitles

import (
	"slices"
	"strings"
	"time"
)

// Cue is one timed subtitle entry.
type Cue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Lines []string
}

// Text joins the cue's display lines into a single comparison string.
func (c Cue) Text() string {
	parts := make([]string, 0, len(c.Lines))
	for _, line := range c.Lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}

// Track is an ordered sequence of cues.
type Track struct {
	Cues []Cue
}

// NewTrack builds a track from cues, copying the slice.
func NewTrack(cues ...Cue) *Track {
	return &Track{Cues: cloneCues(cues)}
}

// Len returns the number of cues; a nil track is empty.
func (t *Track) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Cues)
}

// Clone returns a deep copy that shares no memory with t.
func (t *Track) Clone() *Track {
	if t == nil {
		return &Track{}
	}
	return &Track{Cues: cloneCues(t.Cues)}
}

// FilterMarkings drops every cue whose text matches markers and returns how
// many were removed. Surviving cues keep their relative order and indices.
func (t *Track) FilterMarkings(markers *MarkerSet) int {
	if t == nil || markers == nil || len(t.Cues) == 0 {
		return 0
	}
	kept := make([]Cue, 0, len(t.Cues))
	for _, cue := range t.Cues {
		if markers.Match(cue.Text()) {
			continue
		}
		kept = append(kept, cue)
	}
	removed := len(t.Cues) - len(kept)
	t.Cues = kept
	return removed
}

// SliceBefore returns a new track holding the cues whose end is at or before
// cutoff. t is left untouched.
func (t *Track) SliceBefore(cutoff time.Duration) *Track {
	out := &Track{}
	if t == nil {
		return out
	}
	for _, cue := range t.Cues {
		if cue.End <= cutoff {
			out.Cues = append(out.Cues, cloneCue(cue))
		}
	}
	return out
}

// Shift translates every cue by offset in place. Timestamps are not clamped.
func (t *Track) Shift(offset time.Duration) {
	if t == nil || offset == 0 {
		return
	}
	for i := range t.Cues {
		t.Cues[i].Start += offset
		t.Cues[i].End += offset
	}
}

// Shifted returns a shifted copy of t.
func (t *Track) Shifted(offset time.Duration) *Track {
	out := t.Clone()
	out.Shift(offset)
	return out
}

// Reindex orders cues by start time, keeping source order among equal starts,
// and numbers them 1..N.
func (t *Track) Reindex() {
	if t == nil {
		return
	}
	slices.SortStableFunc(t.Cues, func(a, b Cue) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		default:
			return 0
		}
	})
	for i := range t.Cues {
		t.Cues[i].Index = i + 1
	}
}

// NegativeCues counts cues whose start or end lies before zero.
func (t *Track) NegativeCues() int {
	if t == nil {
		return 0
	}
	count := 0
	for _, cue := range t.Cues {
		if cue.Start < 0 || cue.End < 0 {
			count++
		}
	}
	return count
}

// Bounds returns the earliest start and latest end across the track.
func (t *Track) Bounds() (time.Duration, time.Duration) {
	if t.Len() == 0 {
		return 0, 0
	}
	first, last := t.Cues[0].Start, t.Cues[0].End
	for _, cue := range t.Cues[1:] {
		first = min(first, cue.Start)
		last = max(last, cue.End)
	}
	return first, last
}

func cloneCues(cues []Cue) []Cue {
	if cues == nil {
		return nil
	}
	out := make([]Cue, len(cues))
	for i, cue := range cues {
		out[i] = cloneCue(cue)
	}
	return out
}

func cloneCue(cue Cue) Cue {
	cue.Lines = slices.Clone(cue.Lines)
	return cue
}
