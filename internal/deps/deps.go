package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const versionTimeout = 5 * time.Second

// Requirement defines an external binary subsync may execute.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Path        string
	Version     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// MediaRequirements lists the FFmpeg tools used for embedded subtitle
// streams. Both are optional: subtitle-file runs never execute them.
func MediaRequirements(ffprobeBinary, ffmpegBinary string) []Requirement {
	return []Requirement{
		{
			Name:        "FFprobe",
			Command:     ffprobeBinary,
			Description: "Lists subtitle streams in media containers",
			Optional:    true,
		},
		{
			Name:        "FFmpeg",
			Command:     ffmpegBinary,
			Description: "Extracts embedded subtitle streams",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
// Available binaries are asked for their version with "-version".
func CheckBinaries(ctx context.Context, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = path
		status.Version = binaryVersion(ctx, path)
		results = append(results, status)
	}
	return results
}

// binaryVersion returns the first line printed by "<path> -version", or ""
// when the binary does not answer.
func binaryVersion(ctx context.Context, path string) string {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(line)
}
