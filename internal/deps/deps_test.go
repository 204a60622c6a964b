package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\necho \"present version 6.1 Copyright\"\necho second line\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: "  "},
	}

	results := CheckBinaries(context.Background(), reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available || results[0].Path != present {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Version != "present version 6.1 Copyright" {
		t.Fatalf("unexpected version %q", results[0].Version)
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected unset result %#v", results[2])
	}
}

func TestCheckBinariesSilentVersion(t *testing.T) {
	binDir := t.TempDir()
	failing := filepath.Join(binDir, "failing")
	if err := os.WriteFile(failing, []byte("#!/bin/sh\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	results := CheckBinaries(context.Background(), []Requirement{{Name: "Failing", Command: failing}})
	if !results[0].Available || results[0].Version != "" {
		t.Fatalf("binary on PATH stays available without a version, got %#v", results[0])
	}
}

func TestMediaRequirements(t *testing.T) {
	reqs := MediaRequirements("ffprobe", "/opt/ffmpeg")
	if len(reqs) != 2 || reqs[0].Command != "ffprobe" || reqs[1].Command != "/opt/ffmpeg" {
		t.Fatalf("unexpected requirements %#v", reqs)
	}
	for _, req := range reqs {
		if !req.Optional {
			t.Fatalf("media tools should be optional: %#v", req)
		}
	}
}
