package opensubtitles

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

const hashChunkSize = 64 * 1024

// ErrFileTooSmall is returned by MovieHash for files shorter than two chunks.
var ErrFileTooSmall = errors.New("opensubtitles: file too small for moviehash")

// MovieHash computes the OpenSubtitles hash of a video file: the file size
// plus the little-endian uint64 sum of the first and last 64 KiB, as 16 hex
// digits.
func MovieHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("moviehash: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("moviehash: %w", err)
	}
	size := info.Size()
	if size < 2*hashChunkSize {
		return "", ErrFileTooSmall
	}

	hash := uint64(size)
	buf := make([]byte, hashChunkSize)
	for _, offset := range []int64{0, size - hashChunkSize} {
		if _, err := file.ReadAt(buf, offset); err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("moviehash: read at %d: %w", offset, err)
		}
		for i := 0; i < hashChunkSize; i += 8 {
			hash += binary.LittleEndian.Uint64(buf[i : i+8])
		}
	}
	return fmt.Sprintf("%016x", hash), nil
}
