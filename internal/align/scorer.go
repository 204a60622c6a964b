package align

import (
	"fmt"

	"subsync/internal/textutil"
)

// Scorer rates the similarity of two texts on a 0..100 scale.
type Scorer interface {
	Score(a, b string) int
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(a, b string) int

// Score calls f.
func (f ScorerFunc) Score(a, b string) int { return f(a, b) }

// Scorer names accepted in configuration.
const (
	ScorerTokenSet = "token_set"
	ScorerCosine   = "cosine"
)

// NewScorer returns the named scorer.
func NewScorer(name string) (Scorer, error) {
	switch name {
	case ScorerTokenSet, "":
		return ScorerFunc(textutil.TokenSetRatio), nil
	case ScorerCosine:
		return ScorerFunc(textutil.CosineScore), nil
	default:
		return nil, fmt.Errorf("unknown scorer %q", name)
	}
}
