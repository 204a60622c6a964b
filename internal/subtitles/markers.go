package subtitles

import (
	"fmt"
	"regexp"
	"strings"
)

// MarkerSet is a compiled list of case-insensitive watermark patterns.
type MarkerSet struct {
	patterns []*regexp.Regexp
}

// NewMarkerSet compiles patterns case-insensitively. Blank entries are skipped.
func NewMarkerSet(patterns []string) (*MarkerSet, error) {
	set := &MarkerSet{}
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("compile marker pattern %q: %w", pattern, err)
		}
		set.patterns = append(set.patterns, re)
	}
	return set, nil
}

// Len reports how many patterns the set holds.
func (m *MarkerSet) Len() int {
	if m == nil {
		return 0
	}
	return len(m.patterns)
}

// Match reports whether text matches any pattern.
func (m *MarkerSet) Match(text string) bool {
	if m == nil {
		return false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	for _, re := range m.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
