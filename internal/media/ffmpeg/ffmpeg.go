// Package ffmpeg extracts embedded subtitle streams with the ffmpeg binary.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// CommandRunner executes an external command and returns an error carrying
// its stderr on failure.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Extractor converts one container stream into a standalone subtitle file.
type Extractor struct {
	binary string
	run    CommandRunner
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithCommandRunner overrides process execution, mainly for tests.
func WithCommandRunner(r CommandRunner) Option {
	return func(e *Extractor) {
		if r != nil {
			e.run = r
		}
	}
}

// NewExtractor returns an extractor invoking binary (default "ffmpeg").
func NewExtractor(binary string, opts ...Option) *Extractor {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	e := &Extractor{binary: binary, run: defaultCommandRunner}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractSubtitle writes the stream with absolute index streamIndex from
// source into destination, converting to the format implied by destination's
// extension. A partial destination is removed on failure.
func (e *Extractor) ExtractSubtitle(ctx context.Context, source string, streamIndex int, destination string) error {
	if strings.TrimSpace(source) == "" || strings.TrimSpace(destination) == "" {
		return errors.New("ffmpeg extract: source and destination required")
	}
	if streamIndex < 0 {
		return fmt.Errorf("ffmpeg extract: invalid stream index %d", streamIndex)
	}
	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return fmt.Errorf("ffmpeg extract: create destination dir: %w", err)
	}
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-i", source,
		"-map", "0:" + strconv.Itoa(streamIndex),
		"-an", "-vn",
		destination,
	}
	if err := e.run(ctx, e.binary, args...); err != nil {
		_ = os.Remove(destination)
		return fmt.Errorf("ffmpeg extract stream %d: %w", streamIndex, err)
	}
	info, err := os.Stat(destination)
	if err != nil {
		return fmt.Errorf("ffmpeg extract: output missing: %w", err)
	}
	if info.Size() == 0 {
		_ = os.Remove(destination)
		return fmt.Errorf("ffmpeg extract stream %d: empty output", streamIndex)
	}
	return nil
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr strings.Builder
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
