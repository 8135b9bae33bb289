package gpx

import (
	"encoding/xml"
	"time"
)

// Limits applied before any expensive work is done on a document.
const (
	MaxInputBytes = 50_000_000 // 50MB
	MaxPoints     = 100_000
)

// Namespace and version written when a document is serialized.
const (
	DefaultXMLNS   = "http://www.topografix.com/GPX/1/1"
	DefaultVersion = "1.1"
	DefaultCreator = "gpxpack"
)

// Point represents a GPS track point. Only position and elevation are
// carried through reduction; Time is kept for statistics.
type Point struct {
	Lat       float64    `xml:"lat,attr"`
	Lon       float64    `xml:"lon,attr"`
	Elevation *float64   `xml:"ele,omitempty"`
	Time      *time.Time `xml:"time,omitempty"`

	// Position of the point in the original document
	TrackIdx, SegIdx, PtIdx int `xml:"-"`
}

// HasElevation reports whether the point carried an <ele> element.
func (p Point) HasElevation() bool {
	return p.Elevation != nil
}

// Track represents a GPX track with segments
type Track struct {
	Name        string         `xml:"name,omitempty"`
	Description string         `xml:"desc,omitempty"`
	Segments    []TrackSegment `xml:"trkseg"`
}

// TrackSegment represents a track segment
type TrackSegment struct {
	Points []Point `xml:"trkpt"`
}

// GPX represents the full GPX file structure
type GPX struct {
	XMLName xml.Name `xml:"gpx"`
	Version string   `xml:"version,attr"`
	Creator string   `xml:"creator,attr"`
	XMLNS   string   `xml:"xmlns,attr,omitempty"`

	Metadata *Metadata `xml:"metadata,omitempty"`
	Tracks   []Track   `xml:"trk"`
}

// Metadata represents GPX metadata
type Metadata struct {
	Name        string     `xml:"name,omitempty"`
	Description string     `xml:"desc,omitempty"`
	Time        *time.Time `xml:"time,omitempty"`
}

// New returns an empty document with the default namespace and version.
func New() *GPX {
	return &GPX{
		Version: DefaultVersion,
		Creator: DefaultCreator,
		XMLNS:   DefaultXMLNS,
	}
}

// Float returns a pointer to v, for building points with elevation.
func Float(v float64) *float64 {
	return &v
}
