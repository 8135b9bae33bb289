// Package reduce turns a parsed GPX document into a compact, precision-reduced
// JSON form that keeps only latitude, longitude and elevation.
package reduce

import (
	"encoding/json"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/planbiir/gpxpack/internal/gpx"
)

// Reduce parses input and returns the reduced document serialized as JSON,
// using DefaultConfig.
func Reduce(input string) (string, error) {
	return DefaultConfig().Reduce(input)
}

// Reduce parses input and returns the reduced document serialized as JSON.
func (c Config) Reduce(input string) (string, error) {
	if len(input) > c.MaxInputBytes {
		return "", gpx.ErrInputTooLarge
	}

	doc, err := gpx.ParseString(input)
	if err != nil {
		return "", err
	}

	pointCount := doc.PointCount()
	if pointCount > c.MaxPoints {
		return "", gpx.NewTooManyPoints(pointCount, c.MaxPoints)
	}

	reduced := c.FromDocument(doc)

	data, err := json.Marshal(reduced)
	if err != nil {
		return "", gpx.NewSerializationError(err)
	}

	log.Debug().
		Int("points", pointCount).
		Int("input_bytes", len(input)).
		Int("reduced_bytes", len(data)).
		Msg("reduced gpx")

	return string(data), nil
}

// FromDocument reduces doc with DefaultConfig precision.
func FromDocument(doc *gpx.GPX) Document {
	return DefaultConfig().FromDocument(doc)
}

// FromDocument rounds every point of doc. Track and segment metadata is
// dropped; order is preserved. No limits are applied.
func (c Config) FromDocument(doc *gpx.GPX) Document {
	reduced := Document{Tracks: make([]Track, 0, len(doc.Tracks))}

	for _, track := range doc.Tracks {
		segments := make([]Segment, 0, len(track.Segments))
		for _, seg := range track.Segments {
			points := make([]Point, 0, len(seg.Points))
			for _, pt := range seg.Points {
				ele := 0.0
				if pt.Elevation != nil {
					ele = c.round(*pt.Elevation)
				}
				points = append(points, Point{
					Lat:       c.round(pt.Lat),
					Lon:       c.round(pt.Lon),
					Elevation: ele,
				})
			}
			segments = append(segments, Segment{Points: points})
		}
		reduced.Tracks = append(reduced.Tracks, Track{Segments: segments})
	}

	return reduced
}

// round applies round-half-away-from-zero at the configured scale.
func (c Config) round(v float64) float64 {
	return math.Round(v*c.Scale) / c.Scale
}

// Decode reads reduced JSON back into a Document.
func Decode(text string) (Document, error) {
	var doc Document
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return Document{}, gpx.NewParseError(err)
	}
	return doc, nil
}
