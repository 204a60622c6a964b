package subtitles

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:02,500
Hello there

2
00:00:03,000 --> 00:00:04,000
General Kenobi
You are a bold one
`

func TestLoadParsesSRT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.srt")
	if err := os.WriteFile(path, []byte(sampleSRT), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	track, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if track.Len() != 2 {
		t.Fatalf("expected 2 cues, got %d", track.Len())
	}
	first := track.Cues[0]
	if first.Index != 1 || first.Start != time.Second || first.End != 2500*time.Millisecond {
		t.Fatalf("unexpected first cue: %+v", first)
	}
	if got := track.Cues[1].Text(); got != "General Kenobi You are a bold one" {
		t.Fatalf("unexpected joined text %q", got)
	}
}

func TestSaveClampsNegativeAndReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.srt")
	if err := os.WriteFile(path, []byte("old contents"), 0o644); err != nil {
		t.Fatalf("seed output: %v", err)
	}
	track := NewTrack(
		Cue{Index: 1, Start: -2 * time.Second, End: -time.Second, Lines: []string{"gone early"}},
		Cue{Index: 2, Start: 4 * time.Second, End: 5 * time.Second, Lines: []string{"on time"}},
	)
	if err := Save(track, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if strings.Contains(string(data), "old contents") {
		t.Fatal("output was not replaced")
	}
	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Len() != 2 {
		t.Fatalf("expected 2 cues after reload, got %d", reloaded.Len())
	}
	if reloaded.Cues[0].Start != 0 || reloaded.Cues[0].End != 0 {
		t.Fatalf("expected clamped timings, got %+v", reloaded.Cues[0])
	}
	if reloaded.Cues[1].Start != 4*time.Second || reloaded.Cues[1].Text() != "on time" {
		t.Fatalf("unexpected second cue: %+v", reloaded.Cues[1])
	}
	if track.Cues[0].Start != -2*time.Second {
		t.Fatal("Save must not mutate the in-memory track")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the output file, found %d entries", len(entries))
	}
}

func TestSaveRejectsUnknownExtension(t *testing.T) {
	if err := Save(NewTrack(), filepath.Join(t.TempDir(), "out.txt")); err == nil {
		t.Fatal("expected extension error")
	}
}

func TestIsSubtitleFile(t *testing.T) {
	for path, want := range map[string]bool{
		"movie.SRT":  true,
		"movie.vtt":  true,
		"movie.ass":  true,
		"movie.mkv":  false,
		"movie.mp4":  false,
		"no-ext":     false,
		"movie.ttml": true,
	} {
		if got := IsSubtitleFile(path); got != want {
			t.Fatalf("IsSubtitleFile(%q) = %v, want %v", path, got, want)
		}
	}
}
