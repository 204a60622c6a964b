package textutil

import (
	"math"
	"slices"
	"strings"
)

// CosineSimilarity computes the cosine similarity between two fingerprints.
// Returns 0 if either fingerprint is nil or has zero norm.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for token, count := range a.tokens {
		if other, ok := b.tokens[token]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (a.norm * b.norm)
}

// CosineScore is CosineSimilarity of the two texts scaled to 0..100.
func CosineScore(a, b string) int {
	return percent(CosineSimilarity(NewFingerprint(a), NewFingerprint(b)))
}

// TokenSetRatio scores two texts 0..100 by comparing their token sets, so
// word order and repeated words do not matter and a text that contains all
// of the other's words scores 100. Either text being empty after
// normalization scores 0.
//
// The shared tokens (sorted) are compared against the shared tokens followed
// by each side's remaining tokens (sorted), and the best of the three
// pairwise Ratio values wins.
func TokenSetRatio(a, b string) int {
	left, right := tokenSet(a), tokenSet(b)
	if len(left) == 0 || len(right) == 0 {
		return 0
	}

	var shared, onlyLeft, onlyRight []string
	for token := range left {
		if _, ok := right[token]; ok {
			shared = append(shared, token)
		} else {
			onlyLeft = append(onlyLeft, token)
		}
	}
	for token := range right {
		if _, ok := left[token]; !ok {
			onlyRight = append(onlyRight, token)
		}
	}
	slices.Sort(shared)
	slices.Sort(onlyLeft)
	slices.Sort(onlyRight)

	sect := strings.Join(shared, " ")
	combinedLeft := strings.TrimSpace(sect + " " + strings.Join(onlyLeft, " "))
	combinedRight := strings.TrimSpace(sect + " " + strings.Join(onlyRight, " "))

	return max(
		Ratio(sect, combinedLeft),
		Ratio(sect, combinedRight),
		Ratio(combinedLeft, combinedRight),
	)
}

// Ratio is the normalized indel similarity of two strings,
// 2*LCS/(len(a)+len(b)) scaled to 0..100 and rounded half to even.
// Identical strings score 100; otherwise an empty string scores 0.
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	common := lcsLength(ra, rb)
	return percent(2 * float64(common) / float64(len(ra)+len(rb)))
}

func tokenSet(text string) map[string]struct{} {
	tokens := Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}

func lcsLength(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func percent(value float64) int {
	return int(math.RoundToEven(100 * value))
}
