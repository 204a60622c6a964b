package opensubtitles

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"subsync/internal/language"
	"subsync/internal/textutil"
)

// Criteria describes the feature a download is expected to belong to.
type Criteria struct {
	Language string
	Title    string
	Year     int
}

// Ranked pairs a candidate with the score that ordered it.
type Ranked struct {
	Subtitle Subtitle
	Score    float64
	Reasons  []string
}

// Rank orders candidates for the wanted language: human subtitles before
// machine translations, then by score, downloads and file ID. Candidates in
// other languages or with a clearly different feature title are dropped.
func Rank(subs []Subtitle, want Criteria) []Ranked {
	var human, machine []Ranked
	for _, sub := range subs {
		if sub.FileID == 0 {
			continue
		}
		if want.Language != "" && !language.Matches(sub.Language, want.Language) {
			continue
		}
		if titleMismatch(want.Title, sub.FeatureTitle) && !sub.MovieHashMatch {
			continue
		}
		score, reasons := scoreCandidate(sub, want)
		entry := Ranked{Subtitle: sub, Score: score, Reasons: reasons}
		if sub.AITranslated {
			machine = append(machine, entry)
		} else {
			human = append(human, entry)
		}
	}
	ordered := make([]Ranked, 0, len(human)+len(machine))
	for _, bucket := range [][]Ranked{human, machine} {
		slices.SortStableFunc(bucket, func(a, b Ranked) int {
			if c := cmp.Compare(b.Score, a.Score); c != 0 {
				return c
			}
			if c := cmp.Compare(b.Subtitle.Downloads, a.Subtitle.Downloads); c != 0 {
				return c
			}
			return cmp.Compare(a.Subtitle.FileID, b.Subtitle.FileID)
		})
		ordered = append(ordered, bucket...)
	}
	return ordered
}

func scoreCandidate(sub Subtitle, want Criteria) (float64, []string) {
	base := math.Log1p(math.Max(0, float64(sub.Downloads)))
	score := base
	reasons := []string{fmt.Sprintf("downloads=%.2f", base)}

	if sub.MovieHashMatch {
		score += 5.0
		reasons = append(reasons, "moviehash=match")
	}

	releaseScore, releaseReasons := releaseScore(sub.Release)
	score += releaseScore
	reasons = append(reasons, releaseReasons...)

	if want.Title != "" && sub.FeatureTitle != "" {
		switch titleScore := textutil.TokenSetRatio(want.Title, sub.FeatureTitle); {
		case titleScore == 100:
			score += 1.0
			reasons = append(reasons, "title=exact")
		case titleScore >= 75:
			score += 0.5
			reasons = append(reasons, "title=close")
		}
	}

	if want.Year > 0 && sub.FeatureYear > 0 {
		delta := math.Abs(float64(want.Year - sub.FeatureYear))
		switch {
		case delta == 0:
			score += 1.5
			reasons = append(reasons, "year=exact")
		case delta <= 1:
			score += 1.0
			reasons = append(reasons, "year=close")
		case delta <= 3:
			score -= 0.5
			reasons = append(reasons, "year=off")
		default:
			score -= 1.0
			reasons = append(reasons, "year=far")
		}
	}

	if sub.HearingImpaired {
		score -= 0.5
		reasons = append(reasons, "flag=hi")
	}
	if sub.AITranslated {
		score -= 4.0
		reasons = append(reasons, "flag=ai")
	}
	return score, reasons
}

// titleMismatch reports whether fewer than half of the expected title's
// words appear in the candidate title. Empty titles never mismatch.
func titleMismatch(expected, candidate string) bool {
	expectedWords := textutil.Tokenize(expected)
	candidateWords := textutil.Tokenize(candidate)
	if len(expectedWords) == 0 || len(candidateWords) == 0 {
		return false
	}
	matches := 0
	for _, word := range expectedWords {
		if slices.Contains(candidateWords, word) {
			matches++
		}
	}
	return float64(matches)/float64(len(expectedWords)) < 0.5
}

func releaseScore(release string) (float64, []string) {
	release = strings.ToLower(strings.TrimSpace(release))
	if release == "" {
		return 0, nil
	}
	var (
		score   float64
		reasons []string
	)
	apply := func(delta float64, label string, patterns ...string) {
		for _, pattern := range patterns {
			if strings.Contains(release, pattern) {
				score += delta
				reasons = append(reasons, label)
				return
			}
		}
	}
	apply(3.0, "release=bluray", "bluray", "blu-ray", "bdrip", "brrip")
	apply(2.5, "release=remux", "remux")
	apply(1.5, "release=uhd", "2160p", "uhd")
	apply(1.0, "release=1080p", "1080p")
	apply(0.5, "release=720p", "720p")
	apply(-2.0, "release=web", "webrip", "web-dl", "webdl")
	apply(-1.0, "release=sd", "hdrip", "dvdrip", "tvrip", "hdtv")
	apply(-4.0, "release=cam", "camrip", "telesync", "telecine", "screener")
	apply(-1.5, "release=hardcoded", "hcsub", "hardcoded")
	return score, reasons
}
