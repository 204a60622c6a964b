package subtitles

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/asticode/go-astisub"
)

var subtitleExtensions = map[string]struct{}{
	".srt":  {},
	".vtt":  {},
	".ass":  {},
	".ssa":  {},
	".stl":  {},
	".ttml": {},
}

// IsSubtitleFile reports whether path has an extension Load can parse.
// Anything else is treated as a media container.
func IsSubtitleFile(path string) bool {
	_, ok := subtitleExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Load parses a subtitle file, keeping cue order and numbering cues 1..N.
func Load(path string) (*Track, error) {
	if !IsSubtitleFile(path) {
		return nil, fmt.Errorf("unsupported subtitle extension %q", filepath.Ext(path))
	}
	parsed, err := astisub.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	track := &Track{Cues: make([]Cue, 0, len(parsed.Items))}
	for i, item := range parsed.Items {
		if item == nil {
			continue
		}
		track.Cues = append(track.Cues, Cue{
			Index: i + 1,
			Start: item.StartAt,
			End:   item.EndAt,
			Lines: itemLines(item),
		})
	}
	return track, nil
}

func itemLines(item *astisub.Item) []string {
	lines := make([]string, 0, len(item.Lines))
	for _, line := range item.Lines {
		var sb strings.Builder
		for j, part := range line.Items {
			if j > 0 && sb.Len() > 0 && !strings.HasSuffix(sb.String(), " ") && !strings.HasPrefix(part.Text, " ") {
				sb.WriteByte(' ')
			}
			sb.WriteString(part.Text)
		}
		lines = append(lines, strings.TrimSpace(sb.String()))
	}
	return lines
}

// Save writes track to path in the format implied by its extension. The file
// is written to a sibling temp file and renamed into place, so an existing
// target is only replaced by a complete result. Negative timestamps are
// clamped to zero.
func Save(track *Track, path string) error {
	if track == nil {
		return errors.New("save subtitles: nil track")
	}
	if !IsSubtitleFile(path) {
		return fmt.Errorf("unsupported subtitle extension %q", filepath.Ext(path))
	}

	out := astisub.NewSubtitles()
	for _, cue := range track.Cues {
		item := &astisub.Item{
			Index:   cue.Index,
			StartAt: max(cue.Start, 0),
			EndAt:   max(cue.End, 0),
		}
		for _, line := range cue.Lines {
			item.Lines = append(item.Lines, astisub.Line{Items: []astisub.LineItem{{Text: line}}})
		}
		out.Items = append(out.Items, item)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".subsync-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	if err := out.Write(tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
