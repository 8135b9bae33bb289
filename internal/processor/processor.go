// Package processor exposes the pipeline entry points used by the CLI and
// the HTTP service. Every call is independent and keeps no state.
package processor

import (
	"github.com/rs/zerolog/log"

	"github.com/planbiir/gpxpack/internal/analyze"
	"github.com/planbiir/gpxpack/internal/codec"
	"github.com/planbiir/gpxpack/internal/gpx"
	"github.com/planbiir/gpxpack/internal/reduce"
	"github.com/planbiir/gpxpack/internal/validate"
)

// Result pairs an analysis with the compressed payload it describes.
type Result struct {
	Analysis analyze.Analysis `json:"analysis"`
	Data     []byte           `json:"data"`
}

// ValidateGPX reports whether text passes the pre-flight gate.
func ValidateGPX(text string) bool {
	return validate.Validate(text)
}

// ReduceCompressGPX validates, reduces and compresses text. An analysis is
// run first on a best-effort basis and its result discarded. Any rejection
// by the validator is an InvalidFormat error wrapping the validator's cause.
func ReduceCompressGPX(text string) ([]byte, error) {
	if err := validate.Check(text); err != nil {
		log.Debug().Err(err).Msg("validation failed")
		return nil, gpx.WrapInvalidFormat(err)
	}

	if _, err := analyze.Analyze(text); err != nil {
		log.Debug().Err(err).Msg("best-effort analysis failed")
	}

	reduced, err := reduce.Reduce(text)
	if err != nil {
		return nil, err
	}

	return codec.Compress(reduced)
}

// DecompressGPX returns the whitespace-cleaned reduced text inside data.
func DecompressGPX(data []byte) (string, error) {
	return codec.Decompress(data)
}

// AnalyzeGPX runs the analyzer over text.
func AnalyzeGPX(text string) (analyze.Analysis, error) {
	return analyze.Analyze(text)
}

// ProcessGPXWithAnalytics analyzes text and then runs the compress pipeline.
// A successful analysis does not imply the pipeline accepts the input.
func ProcessGPXWithAnalytics(text string) (Result, error) {
	analysis, err := analyze.Analyze(text)
	if err != nil {
		return Result{}, err
	}

	data, err := ReduceCompressGPX(text)
	if err != nil {
		return Result{}, err
	}

	log.Info().
		Int("points", analysis.PointCount).
		Int("original_bytes", analysis.OriginalSizeBytes).
		Int("compressed_bytes", len(data)).
		Msg("processed gpx")

	return Result{Analysis: analysis, Data: data}, nil
}
