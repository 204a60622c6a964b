package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInputNotFound      = errors.New("input not found")
	ErrEmptyTrack         = errors.New("empty track")
	ErrNoEmbeddedSubtitle = errors.New("no embedded subtitle")
	ErrCatalogueMiss      = errors.New("catalogue miss")
	ErrCollaborator       = errors.New("collaborator failure")
	ErrInvalidSubtitle    = errors.New("invalid subtitle")
	ErrLowConfidence      = errors.New("low confidence match")
	ErrExternalTool       = errors.New("external tool error")
	ErrConfiguration      = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrCollaborator
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps a run error to the process exit status reported by the CLI.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInputNotFound), errors.Is(err, ErrEmptyTrack), errors.Is(err, ErrInvalidSubtitle):
		return 2
	case errors.Is(err, ErrNoEmbeddedSubtitle), errors.Is(err, ErrCatalogueMiss):
		return 3
	case errors.Is(err, ErrLowConfidence):
		return 4
	default:
		return 1
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
