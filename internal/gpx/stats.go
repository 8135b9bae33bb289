package gpx

import (
	"math"
	"time"
)

// Stats holds the structural counts of a document plus distance and duration.
type Stats struct {
	Points     int
	Tracks     int
	Segments   int
	Duration   time.Duration
	DistanceKm float64
}

// PointCount returns the number of points across all tracks and segments.
func (g *GPX) PointCount() int {
	n := 0
	for _, track := range g.Tracks {
		for _, segment := range track.Segments {
			n += len(segment.Points)
		}
	}
	return n
}

// SegmentCount returns the sum of per-track segment counts.
func (g *GPX) SegmentCount() int {
	n := 0
	for _, track := range g.Tracks {
		n += len(track.Segments)
	}
	return n
}

// Stats returns basic statistics about the GPX data. Distance is summed
// within segments only; duration spans the first and last timed point.
func (g *GPX) Stats() Stats {
	points := g.FlattenPoints()
	stats := Stats{
		Points:   len(points),
		Tracks:   len(g.Tracks),
		Segments: g.SegmentCount(),
	}

	var first, last *time.Time
	for i, p := range points {
		if p.Time != nil {
			if first == nil {
				first = p.Time
			}
			last = p.Time
		}
		if i > 0 && points[i-1].TrackIdx == p.TrackIdx && points[i-1].SegIdx == p.SegIdx {
			stats.DistanceKm += haversineKm(points[i-1], p)
		}
	}
	if first != nil {
		stats.Duration = last.Sub(*first)
	}

	return stats
}

// haversineKm calculates the great-circle distance between two points (km)
func haversineKm(p1, p2 Point) float64 {
	const earthRadius = 6371.0 // km

	if p1.Lat == p2.Lat && p1.Lon == p2.Lon {
		return 0
	}

	lat1Rad := p1.Lat * math.Pi / 180
	lat2Rad := p2.Lat * math.Pi / 180
	deltaLat := (p2.Lat - p1.Lat) * math.Pi / 180
	deltaLon := (p2.Lon - p1.Lon) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}
