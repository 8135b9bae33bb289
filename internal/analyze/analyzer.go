// Package analyze computes descriptive statistics over a GPX document and
// over the artifacts of the reduce and compress pipeline, including a
// round-trip integrity check of the compressed output.
package analyze

import (
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/planbiir/gpxpack/internal/codec"
	"github.com/planbiir/gpxpack/internal/gpx"
	"github.com/planbiir/gpxpack/internal/reduce"
	"github.com/planbiir/gpxpack/internal/validate"
)

// Analyzer runs the analysis. The clock and round-trip check are
// injectable for tests.
type Analyzer struct {
	now    func() time.Time
	verify func(compressed []byte) (int, error)
}

// New returns an Analyzer using the wall clock.
func New() *Analyzer {
	return &Analyzer{now: time.Now, verify: roundTrip}
}

// Analyze runs a wall-clock Analyzer over input.
func Analyze(input string) (Analysis, error) {
	return New().Analyze(input)
}

// Analyze parses input, reduces and compresses it, and reports sizes, counts,
// extents and per-stage timings. Parse, reduction and compression failures
// abort the call; round-trip failures are recorded in the result.
func (a *Analyzer) Analyze(input string) (Analysis, error) {
	timings := make(map[string]float64, 4)

	start := a.now()
	doc, err := gpx.ParseString(input)
	if err != nil {
		return Analysis{}, err
	}
	timings[StageParsing] = a.elapsedMs(start)

	stats := doc.Stats()
	result := Analysis{
		OriginalSizeBytes: len(input),
		PointCount:        stats.Points,
		TracksCount:       stats.Tracks,
		SegmentsCount:     stats.Segments,
		ElevationRange:    elevationRange(doc),
		BoundingBox:       boundingBox(doc),
		DistanceKm:        stats.DistanceKm,
		DurationSec:       stats.Duration.Seconds(),
	}

	start = a.now()
	reducedText, err := reduce.Reduce(input)
	if err != nil {
		return Analysis{}, err
	}
	timings[StageReduction] = a.elapsedMs(start)

	reduced, err := reduce.Decode(reducedText)
	if err != nil {
		return Analysis{}, err
	}
	result.ReducedSizeBytes = len(reducedText)
	result.ReducedPointCount = reduced.PointCount()

	start = a.now()
	compressed, err := codec.Compress(reducedText)
	if err != nil {
		return Analysis{}, err
	}
	timings[StageCompression] = a.elapsedMs(start)

	result.CompressedSizeBytes = len(compressed)
	result.CompressionRatio = ratio(result.CompressedSizeBytes, result.OriginalSizeBytes)
	result.PointReductionRatio = ratio(result.ReducedPointCount, result.PointCount)

	start = a.now()
	size, err := a.verify(compressed)
	timings[StageDecompression] = a.elapsedMs(start)
	result.DecompressedSize = size
	result.DecompressedValid = err == nil
	if err != nil {
		msg := err.Error()
		result.DecompressedError = &msg
		log.Warn().Err(err).Msg("round-trip check failed")
	}

	result.TimingMs = timings

	log.Debug().
		Int("points", result.PointCount).
		Int("original_bytes", result.OriginalSizeBytes).
		Int("compressed_bytes", result.CompressedSizeBytes).
		Float64("compression_ratio", result.CompressionRatio).
		Msg("analysis complete")

	return result, nil
}

func (a *Analyzer) elapsedMs(start time.Time) float64 {
	return float64(a.now().Sub(start)) / float64(time.Millisecond)
}

// roundTrip decompresses the payload, rebuilds a GPX document from the
// reduced form and checks it against the validator. It returns the size of
// the re-serialized document.
func roundTrip(compressed []byte) (int, error) {
	text, err := codec.Decompress(compressed)
	if err != nil {
		return 0, err
	}

	reduced, err := reduce.Decode(text)
	if err != nil {
		return 0, err
	}

	out, err := reduced.ToGPX().Marshal()
	if err != nil {
		return 0, err
	}

	return len(out), validate.Check(out)
}

func elevationRange(doc *gpx.GPX) *ElevationRange {
	minEle, maxEle := math.Inf(1), math.Inf(-1)
	found := false

	for _, track := range doc.Tracks {
		for _, segment := range track.Segments {
			for _, point := range segment.Points {
				if point.Elevation == nil {
					continue
				}
				found = true
				minEle = math.Min(minEle, *point.Elevation)
				maxEle = math.Max(maxEle, *point.Elevation)
			}
		}
	}

	if !found {
		return nil
	}
	return &ElevationRange{minEle, maxEle}
}

func boundingBox(doc *gpx.GPX) *BoundingBox {
	box := BoundingBox{
		MinLat: math.Inf(1),
		MaxLat: math.Inf(-1),
		MinLon: math.Inf(1),
		MaxLon: math.Inf(-1),
	}
	found := false

	for _, track := range doc.Tracks {
		for _, segment := range track.Segments {
			for _, point := range segment.Points {
				found = true
				box.MinLat = math.Min(box.MinLat, point.Lat)
				box.MaxLat = math.Max(box.MaxLat, point.Lat)
				box.MinLon = math.Min(box.MinLon, point.Lon)
				box.MaxLon = math.Max(box.MaxLon, point.Lon)
			}
		}
	}

	if !found {
		return nil
	}
	return &box
}
