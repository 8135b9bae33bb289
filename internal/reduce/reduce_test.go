package reduce

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planbiir/gpxpack/internal/gpx"
	"github.com/planbiir/gpxpack/internal/validate"
)

const threePointGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test">
	<trk>
		<name>Morning Ride</name>
		<trkseg>
			<trkpt lat="45.1234" lon="-122.6789"><ele>10.2</ele></trkpt>
			<trkpt lat="45.1236" lon="-122.6791"></trkpt>
			<trkpt lat="45.1238" lon="-122.6795"><ele>12.7</ele></trkpt>
		</trkseg>
	</trk>
</gpx>`

// syntheticGPX builds a single-segment track with n points.
func syntheticGPX(n int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<gpx version="1.1" creator="test"><trk><trkseg>` + "\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<trkpt lat="%.5f" lon="%.5f"><ele>%.1f</ele></trkpt>`+"\n",
			46.0+float64(i%1000)*0.0001, 7.0+float64(i%1000)*0.0001, 1000+float64(i%100))
	}
	b.WriteString("</trkseg></trk></gpx>\n")
	return b.String()
}

func TestReduceExample(t *testing.T) {
	out, err := Reduce(threePointGPX)
	require.NoError(t, err)

	doc, err := Decode(out)
	require.NoError(t, err)
	require.Len(t, doc.Tracks, 1)
	require.Len(t, doc.Tracks[0].Segments, 1)

	want := []Point{
		{Lat: 45.12, Lon: -122.68, Elevation: 10.2},
		{Lat: 45.12, Lon: -122.68, Elevation: 0.0},
		{Lat: 45.12, Lon: -122.68, Elevation: 12.7},
	}
	assert.Equal(t, want, doc.Tracks[0].Segments[0].Points)
}

func TestReduceOutputShape(t *testing.T) {
	out, err := Reduce(threePointGPX)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, `{"trk":[{"trkseg":[{"trkpt":[`), out)
	assert.Contains(t, out, `{"lat":45.12,"lon":-122.68,"ele":0}`)
	assert.NotContains(t, out, "Morning Ride")
	assert.NotContains(t, out, "\n")
}

func TestReducePreservesStructure(t *testing.T) {
	input := `<?xml version="1.0"?>
<gpx version="1.1">
	<trk><trkseg><trkpt lat="1.111" lon="2.222"/></trkseg><trkseg/></trk>
	<trk><trkseg><trkpt lat="-3.335" lon="-4.445"/><trkpt lat="5" lon="6"/></trkseg></trk>
</gpx>`

	out, err := Reduce(input)
	require.NoError(t, err)

	doc, err := Decode(out)
	require.NoError(t, err)
	require.Len(t, doc.Tracks, 2)
	require.Len(t, doc.Tracks[0].Segments, 2)
	assert.Empty(t, doc.Tracks[0].Segments[1].Points)
	assert.Equal(t, 3, doc.PointCount())
	assert.Equal(t, Point{Lat: 1.11, Lon: 2.22}, doc.Tracks[0].Segments[0].Points[0])
	assert.Equal(t, Point{Lat: 5, Lon: 6}, doc.Tracks[1].Segments[0].Points[1])
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	c := DefaultConfig()
	cases := map[float64]float64{
		0.125:    0.13,
		-0.125:   -0.13,
		1.004:    1.0,
		-45.1238: -45.12,
		0:        0,
	}
	for in, want := range cases {
		assert.InDelta(t, want, c.round(in), 1e-9, "round(%v)", in)
	}
}

func TestReduceKeepsPointCount(t *testing.T) {
	for _, n := range []int{0, 1, 250, 5000} {
		out, err := Reduce(syntheticGPX(n))
		require.NoError(t, err, "n=%d", n)

		doc, err := Decode(out)
		require.NoError(t, err)
		assert.Equal(t, n, doc.PointCount())

		for _, p := range doc.Tracks[0].Segments[0].Points {
			assert.InDelta(t, p.Lat, math.Round(p.Lat*100)/100, 1e-9)
			assert.InDelta(t, p.Lon, math.Round(p.Lon*100)/100, 1e-9)
		}
	}
}

func TestReduceTooManyPoints(t *testing.T) {
	_, err := Reduce(syntheticGPX(gpx.MaxPoints + 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, gpx.ErrTooManyPoints))

	var gerr *gpx.Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, gpx.MaxPoints+1, gerr.Count)
	assert.Equal(t, gpx.MaxPoints, gerr.Limit)
}

func TestReduceLimitsFromConfig(t *testing.T) {
	c := DefaultConfig()
	c.MaxPoints = 2
	_, err := c.Reduce(threePointGPX)
	assert.True(t, errors.Is(err, gpx.ErrTooManyPoints))

	c = DefaultConfig()
	c.MaxInputBytes = 10
	_, err = c.Reduce(threePointGPX)
	assert.True(t, errors.Is(err, gpx.ErrInputTooLarge))
}

func TestReduceInputTooLarge(t *testing.T) {
	input := strings.Repeat(" ", gpx.MaxInputBytes+1)
	_, err := Reduce(input)
	assert.True(t, errors.Is(err, gpx.ErrInputTooLarge))
}

func TestReduceParseError(t *testing.T) {
	_, err := Reduce(`<?xml version="1.0"?><gpx><trk>`)
	require.Error(t, err)
	assert.Equal(t, gpx.KindParse, gpx.KindOf(err))
	assert.Contains(t, err.Error(), "error parsing GPX")
}

func TestReduceRejectsNonFiniteValues(t *testing.T) {
	inputs := map[string]string{
		"lat":       `<?xml version="1.0"?><gpx><trk><trkseg><trkpt lat="NaN" lon="1"></trkpt></trkseg></trk></gpx>`,
		"elevation": `<?xml version="1.0"?><gpx><trk><trkseg><trkpt lat="1" lon="1"><ele>Inf</ele></trkpt></trkseg></trk></gpx>`,
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			assert.False(t, validate.Validate(input))

			_, err := Reduce(input)
			require.Error(t, err)
			assert.Equal(t, gpx.KindParse, gpx.KindOf(err))
		})
	}
}

func TestDecodeError(t *testing.T) {
	_, err := Decode("<trk/>")
	assert.Equal(t, gpx.KindParse, gpx.KindOf(err))
}

func TestToGPX(t *testing.T) {
	doc := Document{Tracks: []Track{{Segments: []Segment{{Points: []Point{
		{Lat: 45.12, Lon: -122.68, Elevation: 0},
	}}}}}}

	out := doc.ToGPX()
	require.Equal(t, 1, out.PointCount())

	pt := out.Tracks[0].Segments[0].Points[0]
	require.NotNil(t, pt.Elevation)
	assert.Equal(t, 0.0, *pt.Elevation)
	assert.Equal(t, gpx.DefaultVersion, out.Version)
}
