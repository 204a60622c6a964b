package opensubtitles

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestMovieHash(t *testing.T) {
	data := make([]byte, 2*hashChunkSize)
	binary.LittleEndian.PutUint64(data[0:8], 1)
	binary.LittleEndian.PutUint64(data[len(data)-8:], 2)
	path := filepath.Join(t.TempDir(), "movie.mkv")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := MovieHash(path)
	if err != nil {
		t.Fatalf("MovieHash: %v", err)
	}
	if got != "0000000000020003" {
		t.Fatalf("MovieHash = %s, want 0000000000020003", got)
	}
}

func TestMovieHashRejectsSmallFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.mkv")
	if err := os.WriteFile(path, []byte("tiny"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := MovieHash(path); !errors.Is(err, ErrFileTooSmall) {
		t.Fatalf("expected ErrFileTooSmall, got %v", err)
	}
}

func TestMovieHashMissingFile(t *testing.T) {
	if _, err := MovieHash(filepath.Join(t.TempDir(), "nope.mkv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
