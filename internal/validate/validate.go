// Package validate holds the pre-flight gate run before compression.
package validate

import (
	"strings"

	"github.com/planbiir/gpxpack/internal/gpx"
)

const (
	xmlDeclPrefix = "<?xml"
	rootTagMarker = "<gpx"
)

// Validate reports whether input is a GPX document the pipeline accepts.
func Validate(input string) bool {
	return Check(input) == nil
}

// Check runs the cheap size and marker checks first and only then parses.
// It returns nil for acceptable input.
func Check(input string) error {
	if len(input) > gpx.MaxInputBytes {
		return gpx.ErrInputTooLarge
	}
	if !strings.HasPrefix(strings.TrimSpace(input), xmlDeclPrefix) {
		return gpx.NewInvalidFormat("missing XML declaration")
	}
	if !strings.Contains(input, rootTagMarker) {
		return gpx.NewInvalidFormat("missing <gpx> root element")
	}
	if _, err := gpx.ParseString(input); err != nil {
		return err
	}
	return nil
}
