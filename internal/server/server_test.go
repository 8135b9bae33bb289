package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planbiir/gpxpack/internal/codec"
	"github.com/planbiir/gpxpack/internal/config"
	"github.com/planbiir/gpxpack/internal/gpx"
	"github.com/planbiir/gpxpack/internal/processor"
)

const sampleGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test">
	<trk>
		<trkseg>
			<trkpt lat="45.1234" lon="-122.6789"><ele>10.2</ele></trkpt>
			<trkpt lat="45.1236" lon="-122.6791"></trkpt>
			<trkpt lat="45.1238" lon="-122.6795"><ele>12.7</ele></trkpt>
		</trkseg>
	</trk>
</gpx>`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.RateLimit = 0
	return NewServer(cfg, zerolog.Nop())
}

func post(t *testing.T, s *Server, path, contentType string, body []byte) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := s.App.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthRoute(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := s.App.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(HeaderRequestID))
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	resp, err := s.App.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "req-42", resp.Header.Get(HeaderRequestID))
}

func TestValidateHandler(t *testing.T) {
	s := newTestServer(t)

	resp := post(t, s, "/gpx/validate", "application/gpx+xml", []byte(sampleGPX))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeJSON(t, resp)["valid"])

	resp = post(t, s, "/gpx/validate", "text/plain", []byte("<gpx/>"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decodeJSON(t, resp)["valid"])
}

func TestReduceAndDecompressHandlers(t *testing.T) {
	s := newTestServer(t)

	resp := post(t, s, "/gpx/reduce", "application/gpx+xml", []byte(sampleGPX))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/gzip", resp.Header.Get("Content-Type"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	resp = post(t, s, "/gpx/decompress", "application/octet-stream", data)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	text, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(text), `{"lat":45.12,"lon":-122.68,"ele":0}`)
}

func TestAnalyzeHandler(t *testing.T) {
	s := newTestServer(t)

	resp := post(t, s, "/gpx/analyze", "application/gpx+xml", []byte(sampleGPX))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeJSON(t, resp)
	assert.Equal(t, float64(3), body["point_count"])
	assert.Equal(t, []any{10.2, 12.7}, body["elevation_range"])
	assert.Equal(t, true, body["decompressed_valid"])
}

func TestProcessHandler(t *testing.T) {
	s := newTestServer(t)

	resp := post(t, s, "/gpx/process", "application/gpx+xml", []byte(sampleGPX))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	var result processor.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 3, result.Analysis.PointCount)

	text, err := codec.Decompress(result.Data)
	require.NoError(t, err)
	assert.Contains(t, text, `"trkpt"`)
}

func TestMultipartGzipUpload(t *testing.T) {
	s := newTestServer(t)

	compressed, err := codec.Compress(sampleGPX)
	require.NoError(t, err)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(FormField, "ride.gpx.gz")
	require.NoError(t, err)
	_, err = part.Write(compressed)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp := post(t, s, "/gpx/analyze", mw.FormDataContentType(), buf.Bytes())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), decodeJSON(t, resp)["point_count"])
}

func TestMultipartBadFileName(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(FormField, "../etc/passwd")
	require.NoError(t, err)
	_, err = part.Write([]byte(sampleGPX))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp := post(t, s, "/gpx/reduce", mw.FormDataContentType(), buf.Bytes())
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "InvalidFormat", decodeJSON(t, resp)["kind"])
}

func TestErrorStatuses(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name   string
		path   string
		body   string
		status int
		kind   string
	}{
		{"parse error", "/gpx/analyze", `<?xml version="1.0"?><gpx><trk>`, http.StatusUnprocessableEntity, "ParseError"},
		{"invalid format", "/gpx/reduce", `<gpx version="1.1"></gpx>`, http.StatusUnprocessableEntity, "InvalidFormat"},
		{"bad gzip", "/gpx/decompress", "not gzip", http.StatusUnprocessableEntity, "DecompressionError"},
		{"empty body", "/gpx/analyze", "", http.StatusBadRequest, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := post(t, s, tc.path, "text/plain", []byte(tc.body))
			require.Equal(t, tc.status, resp.StatusCode)
			body := decodeJSON(t, resp)
			assert.Equal(t, tc.kind, body["kind"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRateLimitIsPerClient(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimit = 0.001
	cfg.RateBurst = 1
	cfg.ProxyHeader = "X-Forwarded-For"
	s := NewServer(cfg, zerolog.Nop())

	validate := func(client string) int {
		req := httptest.NewRequest(http.MethodPost, "/gpx/validate", strings.NewReader(sampleGPX))
		req.Header.Set("X-Forwarded-For", client)
		resp, err := s.App.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, http.StatusOK, validate("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, validate("10.0.0.1"))

	// Another client still has its own bucket
	assert.Equal(t, http.StatusOK, validate("10.0.0.2"))
	assert.Equal(t, http.StatusTooManyRequests, validate("10.0.0.2"))

	// Health is not throttled
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	hresp, err := s.App.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, hresp.StatusCode)
}

func TestDecompressRejectsOversizeOutput(t *testing.T) {
	s := newTestServer(t)

	bomb, err := codec.Compress(strings.Repeat("a", gpx.MaxInputBytes+1))
	require.NoError(t, err)
	require.Less(t, len(bomb), 1<<20)

	resp := post(t, s, "/gpx/decompress", "application/octet-stream", bomb)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "InputTooLarge", decodeJSON(t, resp)["kind"])
}

func TestReduceOversizeInput(t *testing.T) {
	s := newTestServer(t)

	body := []byte(strings.Repeat(" ", gpx.MaxInputBytes+1))
	resp := post(t, s, "/gpx/reduce", "text/plain", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "InvalidFormat", decodeJSON(t, resp)["kind"])
}

func TestGzipBody(t *testing.T) {
	s := newTestServer(t)

	compressed, err := codec.Compress(strings.TrimSpace(sampleGPX))
	require.NoError(t, err)

	resp := post(t, s, "/gpx/validate", "application/gzip", compressed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeJSON(t, resp)["valid"])
}
