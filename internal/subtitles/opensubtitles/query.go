package opensubtitles

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	yearPattern    = regexp.MustCompile(`^[(\[]?((?:19|20)\d{2})[)\]]?$`)
	episodePattern = regexp.MustCompile(`(?i)^S(\d{1,2})E(\d{1,3})$`)
	separatorRe    = regexp.MustCompile(`[._]+`)
)

// FeatureHint is what can be guessed about a feature from its file name.
type FeatureHint struct {
	Title   string
	Year    int
	Season  int
	Episode int
}

// ParseFileName guesses title, year and episode numbers from a media file
// name such as "The.Movie.2019.1080p.BluRay.mkv". The title is everything
// before the last year or the episode tag; a leading year stays part of it.
func ParseFileName(path string) FeatureHint {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	words := strings.Fields(separatorRe.ReplaceAllString(base, " "))

	var hint FeatureHint
	cut := len(words)
	for i, word := range words {
		if m := episodePattern.FindStringSubmatch(word); m != nil {
			hint.Season, _ = strconv.Atoi(m[1])
			hint.Episode, _ = strconv.Atoi(m[2])
			cut = i
			break
		}
	}
	for i := cut - 1; i > 0; i-- {
		if m := yearPattern.FindStringSubmatch(words[i]); m != nil {
			hint.Year, _ = strconv.Atoi(m[1])
			cut = i
			break
		}
	}
	title := strings.Join(words[:cut], " ")
	hint.Title = strings.TrimSpace(strings.Trim(title, " -"))
	return hint
}

// SearchVariants returns the ordered requests to try for a video: an exact
// moviehash lookup first, then a title query built from the file name hint.
// Duplicates and empty variants are skipped.
func SearchVariants(movieHash string, hint FeatureHint, languages []string) []SearchRequest {
	variants := make([]SearchRequest, 0, 2)
	if hash := strings.TrimSpace(movieHash); hash != "" {
		variants = append(variants, SearchRequest{MovieHash: hash, Languages: languages})
	}
	if hint.Title != "" {
		variants = append(variants, SearchRequest{
			Query:     hint.Title,
			Year:      hint.Year,
			Season:    hint.Season,
			Episode:   hint.Episode,
			Languages: languages,
		})
	}
	unique := make([]SearchRequest, 0, len(variants))
	seen := make(map[string]struct{}, len(variants))
	for _, variant := range variants {
		key := searchParams(variant).Encode()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, variant)
	}
	return unique
}
