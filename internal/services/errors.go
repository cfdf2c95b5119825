package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFilesystem    = errors.New("filesystem error")
	ErrSerialization = errors.New("serialization error")
	ErrArchive       = errors.New("archive error")
	ErrConfiguration = errors.New("configuration error")
	ErrBusy          = errors.New("build already in progress")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The original error stays
// reachable through errors.Is and errors.As.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrFilesystem
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind names the failure class of err for logs and history records.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBusy):
		return "busy"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrSerialization):
		return "serialization"
	case errors.Is(err, ErrArchive):
		return "archive"
	case errors.Is(err, ErrFilesystem):
		return "filesystem"
	default:
		return "unknown"
	}
}

// ExitCode maps a build outcome to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
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
		return "build failure"
	}
	return strings.Join(parts, ": ")
}
