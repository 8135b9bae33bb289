package gpx

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strings"
)

// ParseString parses GPX held in memory.
func ParseString(s string) (*GPX, error) {
	return ParseReader(strings.NewReader(s))
}

// ParseReader parses GPX from an io.Reader. Any failure is returned as a
// *Error of KindParse carrying the decoder's message.
func ParseReader(r io.Reader) (*GPX, error) {
	decoder := xml.NewDecoder(r)

	var gpxData GPX
	if err := decoder.Decode(&gpxData); err != nil {
		return nil, NewParseError(err)
	}

	// Set default namespaces if missing
	if gpxData.XMLNS == "" {
		gpxData.XMLNS = DefaultXMLNS
	}
	if gpxData.Version == "" {
		gpxData.Version = DefaultVersion
	}
	if gpxData.Creator == "" {
		gpxData.Creator = DefaultCreator
	}

	for trackIdx, track := range gpxData.Tracks {
		for segIdx, segment := range track.Segments {
			for ptIdx := range segment.Points {
				pt := &gpxData.Tracks[trackIdx].Segments[segIdx].Points[ptIdx]
				if err := checkBounds(*pt); err != nil {
					return nil, NewParseError(fmt.Errorf("track %d segment %d point %d: %w", trackIdx, segIdx, ptIdx, err))
				}
				pt.TrackIdx = trackIdx
				pt.SegIdx = segIdx
				pt.PtIdx = ptIdx
			}
		}
	}

	return &gpxData, nil
}

func checkBounds(p Point) error {
	if !finite(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %v out of bounds", p.Lat)
	}
	if !finite(p.Lon) || p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("longitude %v out of bounds", p.Lon)
	}
	if p.Elevation != nil && !finite(*p.Elevation) {
		return fmt.Errorf("elevation %v is not a finite number", *p.Elevation)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// WriteToWriter writes GPX data to an io.Writer
func (g *GPX) WriteToWriter(w io.Writer) error {
	// Write XML header
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return NewSerializationError(err)
	}

	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")

	if err := encoder.Encode(g); err != nil {
		return NewSerializationError(fmt.Errorf("failed to encode GPX: %w", err))
	}

	return nil
}

// Marshal serializes the document, XML declaration included.
func (g *GPX) Marshal() (string, error) {
	var buf strings.Builder
	if err := g.WriteToWriter(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FlattenPoints returns all points from all tracks and segments in order
func (g *GPX) FlattenPoints() []Point {
	var points []Point

	for trackIdx, track := range g.Tracks {
		for segIdx, segment := range track.Segments {
			for ptIdx, point := range segment.Points {
				point.TrackIdx = trackIdx
				point.SegIdx = segIdx
				point.PtIdx = ptIdx
				points = append(points, point)
			}
		}
	}

	return points
}
