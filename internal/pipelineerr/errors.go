// Package pipelineerr defines the typed error hierarchy the compose
// pipeline uses to distinguish the four error kinds named by the design:
// missing input, malformed input, external tool failure, and output
// failure. Each constructor wraps the underlying error with %w so callers
// can still errors.Is/errors.As through to it.
package pipelineerr

import (
	"errors"
	"fmt"
)

var (
	// ErrInputMissing marks a required artifact that was not found on disk.
	ErrInputMissing = errors.New("input missing")
	// ErrInputMalformed marks an XML parse failure or a required attribute
	// absent from an otherwise-present artifact.
	ErrInputMalformed = errors.New("input malformed")
	// ErrExternalTool marks a nonzero exit from the font-metric tool or the
	// encoder.
	ErrExternalTool = errors.New("external tool failure")
	// ErrOutputFailure marks a write or rename error while producing the
	// final MP4 or metadata.
	ErrOutputFailure = errors.New("output failure")
)

// Missing wraps err as an ErrInputMissing, naming the artifact path.
func Missing(path string, err error) error {
	return fmt.Errorf("%s: %w: %v", path, ErrInputMissing, err)
}

// Malformed wraps err as an ErrInputMalformed, naming the artifact path.
func Malformed(path string, err error) error {
	return fmt.Errorf("%s: %w: %v", path, ErrInputMalformed, err)
}

// ToolFailure wraps err as an ErrExternalTool, naming the tool invoked.
func ToolFailure(tool string, err error) error {
	return fmt.Errorf("%s: %w: %v", tool, ErrExternalTool, err)
}

// Output wraps err as an ErrOutputFailure, naming the destination path.
func Output(path string, err error) error {
	return fmt.Errorf("%s: %w: %v", path, ErrOutputFailure, err)
}
