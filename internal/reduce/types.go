package reduce

import (
	"github.com/planbiir/gpxpack/internal/gpx"
)

// Document is the reduced form of a GPX document. Only geometry survives;
// the JSON keys mirror the GPX element names.
type Document struct {
	Tracks []Track `json:"trk"`
}

// Track holds the segments of one reduced track.
type Track struct {
	Segments []Segment `json:"trkseg"`
}

// Segment holds the points of one reduced segment.
type Segment struct {
	Points []Point `json:"trkpt"`
}

// Point is a rounded track point. Elevation is always written and is 0 when
// the source point had none.
type Point struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Elevation float64 `json:"ele"`
}

// Config controls reduction limits and precision.
type Config struct {
	MaxInputBytes int // reject larger inputs before parsing
	MaxPoints     int // reject documents with more points
	Scale         float64
}

// DefaultConfig returns the limits every public entry point uses.
func DefaultConfig() Config {
	return Config{
		MaxInputBytes: gpx.MaxInputBytes,
		MaxPoints:     gpx.MaxPoints,
		Scale:         100, // two decimal places, ~1.1km
	}
}

// PointCount returns the number of points across all tracks and segments.
func (d Document) PointCount() int {
	n := 0
	for _, track := range d.Tracks {
		for _, segment := range track.Segments {
			n += len(segment.Points)
		}
	}
	return n
}

// ToGPX converts the reduced form back into a GPX document. Every point
// carries an elevation.
func (d Document) ToGPX() *gpx.GPX {
	out := gpx.New()
	out.Tracks = make([]gpx.Track, len(d.Tracks))
	for i, track := range d.Tracks {
		segments := make([]gpx.TrackSegment, len(track.Segments))
		for j, segment := range track.Segments {
			points := make([]gpx.Point, len(segment.Points))
			for k, p := range segment.Points {
				points[k] = gpx.Point{
					Lat:       p.Lat,
					Lon:       p.Lon,
					Elevation: gpx.Float(p.Elevation),
					TrackIdx:  i,
					SegIdx:    j,
					PtIdx:     k,
				}
			}
			segments[j] = gpx.TrackSegment{Points: points}
		}
		out.Tracks[i] = gpx.Track{Segments: segments}
	}
	return out
}
