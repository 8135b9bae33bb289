package analyze

// Stage names recorded in Analysis.TimingMs.
const (
	StageParsing       = "parsing"
	StageReduction     = "reduction"
	StageCompression   = "compression"
	StageDecompression = "decompression"
)

// BoundingBox is the minimal lat/lon rectangle enclosing all points.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// ElevationRange is the [min, max] elevation over points that carry one.
type ElevationRange [2]float64

// Min returns the lowest elevation.
func (r ElevationRange) Min() float64 { return r[0] }

// Max returns the highest elevation.
func (r ElevationRange) Max() float64 { return r[1] }

// Analysis describes one run of the pipeline over a document.
type Analysis struct {
	OriginalSizeBytes   int     `json:"original_size_bytes"`
	ReducedSizeBytes    int     `json:"reduced_size_bytes"`
	CompressedSizeBytes int     `json:"compressed_size_bytes"`
	CompressionRatio    float64 `json:"compression_ratio"`

	PointCount          int     `json:"point_count"`
	ReducedPointCount   int     `json:"reduced_point_count"`
	PointReductionRatio float64 `json:"point_reduction_ratio"`
	TracksCount         int     `json:"tracks_count"`
	SegmentsCount       int     `json:"segments_count"`

	ElevationRange *ElevationRange `json:"elevation_range"`
	BoundingBox    *BoundingBox    `json:"bounding_box"`

	DistanceKm  float64 `json:"distance_km"`
	DurationSec float64 `json:"duration_sec"`

	TimingMs map[string]float64 `json:"timing_ms"`

	// Round-trip integrity check
	DecompressedSize  int     `json:"decompressed_size"`
	DecompressedValid bool    `json:"decompressed_valid"`
	DecompressedError *string `json:"decompressed_error,omitempty"`
}

// ratio returns 1 - (newV/oldV), or 0 when oldV is 0.
func ratio(newV, oldV int) float64 {
	if oldV == 0 {
		return 0
	}
	return 1 - float64(newV)/float64(oldV)
}
