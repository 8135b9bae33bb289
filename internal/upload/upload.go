// Package upload checks uploaded file names and unwraps gzipped GPX uploads
// before they reach the pipeline.
package upload

import (
	"regexp"
	"strings"

	"github.com/planbiir/gpxpack/internal/codec"
	"github.com/planbiir/gpxpack/internal/gpx"
)

// MinContentBytes is the shortest trimmed document accepted as GPX.
const MinContentBytes = 50

var (
	fileNamePattern   = regexp.MustCompile(`(?i)^[a-zA-Z0-9._\-\s]+\.gpx(\.gz)?$`)
	forbiddenNameChar = regexp.MustCompile(`[<>:"|?*\x00-\x1f]`)

	// Markup that has no place in a track log and would be dangerous if the
	// document were ever rendered.
	suspiciousContent = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<script`),
		regexp.MustCompile(`(?i)javascript:`),
		regexp.MustCompile(`(?i)vbscript:`),
		regexp.MustCompile(`(?i)on\w+\s*=`),
		regexp.MustCompile(`(?i)<iframe`),
		regexp.MustCompile(`(?i)<object`),
		regexp.MustCompile(`(?i)<embed`),
	}
)

// ValidFileName accepts plain names ending in .gpx or .gpx.gz.
func ValidFileName(name string) bool {
	if name == "" {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	if forbiddenNameChar.MatchString(name) {
		return false
	}
	return fileNamePattern.MatchString(strings.TrimSpace(name))
}

// IsCompressed reports whether name denotes a gzipped GPX upload.
func IsCompressed(name string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(name)), ".gz")
}

// Extract returns the trimmed GPX text of an upload, gunzipping .gpx.gz
// files and running CheckContent on the result.
func Extract(name string, data []byte) (string, error) {
	if !ValidFileName(name) {
		return "", gpx.NewInvalidFormat("file name not valid")
	}

	var text string
	if IsCompressed(name) {
		inflated, err := codec.DecompressLimit(data, gpx.MaxInputBytes)
		if err != nil {
			return "", err
		}
		text = inflated
	} else {
		if len(data) > gpx.MaxInputBytes {
			return "", gpx.ErrInputTooLarge
		}
		text = string(data)
	}

	text = strings.TrimSpace(text)
	if err := CheckContent(text); err != nil {
		return "", err
	}
	return text, nil
}

// CheckContent rejects uploads that are too short to be GPX or that carry
// script-like markup.
func CheckContent(text string) error {
	if len(strings.TrimSpace(text)) < MinContentBytes {
		return gpx.NewInvalidFormat("file content is too short to be a valid GPX file")
	}
	for _, pattern := range suspiciousContent {
		if pattern.MatchString(text) {
			return gpx.NewInvalidFormat("file contains potentially malicious content")
		}
	}
	return nil
}
