// Package codec wraps reduced GPX text in a whitespace-normalized gzip stream
// and reverses the operation.
package codec

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"

	"github.com/planbiir/gpxpack/internal/gpx"
)

// Level is the gzip level used for every stream (0=none, 9=best).
const Level = 6

var errInvalidUTF8 = errors.New("stream did not contain valid UTF-8")

// Compress removes excess whitespace from text and gzips the result.
func Compress(text string) ([]byte, error) {
	var buf bytes.Buffer
	cleaned := CleanWhitespace(text)
	if err := compressTo(&buf, cleaned); err != nil {
		return nil, err
	}

	log.Debug().
		Int("input_bytes", len(text)).
		Int("cleaned_bytes", len(cleaned)).
		Int("compressed_bytes", buf.Len()).
		Msg("compressed payload")

	return buf.Bytes(), nil
}

func compressTo(dst io.Writer, text string) error {
	zw, err := gzip.NewWriterLevel(dst, Level)
	if err != nil {
		return gpx.NewCompressionError(err)
	}

	if _, err := io.WriteString(zw, text); err != nil {
		zw.Close()
		return gpx.NewCompressionError(err)
	}

	if err := zw.Close(); err != nil {
		return gpx.NewCompressionError(err)
	}
	return nil
}

// Decompress gunzips data and returns it as text. Framing errors, truncated
// streams and non UTF-8 payloads are reported as DecompressionError.
func Decompress(data []byte) (string, error) {
	return decompress(data, -1)
}

// DecompressLimit is Decompress with a ceiling on the decoded size. Streams
// that inflate past limit bytes fail with InputTooLarge.
func DecompressLimit(data []byte, limit int64) (string, error) {
	return decompress(data, limit)
}

func decompress(data []byte, limit int64) (string, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", gpx.NewDecompressionError(err)
	}
	defer zr.Close()

	var src io.Reader = zr
	if limit >= 0 {
		src = io.LimitReader(zr, limit+1)
	}

	var out bytes.Buffer
	if _, err := io.Copy(&out, src); err != nil {
		return "", gpx.NewDecompressionError(err)
	}

	if limit >= 0 && int64(out.Len()) > limit {
		return "", gpx.ErrInputTooLarge
	}

	if !utf8.Valid(out.Bytes()) {
		return "", gpx.NewDecompressionError(errInvalidUTF8)
	}

	return out.String(), nil
}

// CleanWhitespace trims every line, drops empty lines and joins the rest
// with a single newline. It is not a full markup minifier.
func CleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
