package gpx

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures so callers can map them to responses.
type Kind int

const (
	KindUnknown Kind = iota
	KindInputTooLarge
	KindParse
	KindTooManyPoints
	KindSerialization
	KindCompression
	KindDecompression
	KindInvalidFormat
)

var kindNames = map[Kind]string{
	KindUnknown:       "Unknown",
	KindInputTooLarge: "InputTooLarge",
	KindParse:         "ParseError",
	KindTooManyPoints: "TooManyPoints",
	KindSerialization: "SerializationError",
	KindCompression:   "CompressionError",
	KindDecompression: "DecompressionError",
	KindInvalidFormat: "InvalidFormat",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// Error is returned by every pipeline stage. Detail carries the underlying
// codec or parser message; Count and Limit are only set for KindTooManyPoints.
type Error struct {
	Kind   Kind
	Detail string
	Count  int
	Limit  int
	Err    error
}

// Sentinels for errors.Is. Any *Error of the same Kind matches.
var (
	ErrInputTooLarge = &Error{Kind: KindInputTooLarge}
	ErrParse         = &Error{Kind: KindParse}
	ErrTooManyPoints = &Error{Kind: KindTooManyPoints}
	ErrSerialization = &Error{Kind: KindSerialization}
	ErrCompression   = &Error{Kind: KindCompression}
	ErrDecompression = &Error{Kind: KindDecompression}
	ErrInvalidFormat = &Error{Kind: KindInvalidFormat}
)

func (e *Error) Error() string {
	switch e.Kind {
	case KindInputTooLarge:
		return fmt.Sprintf("GPX file too large (max %d bytes)", MaxInputBytes)
	case KindTooManyPoints:
		return fmt.Sprintf("GPX file contains too many points (%d > %d max)", e.Count, e.Limit)
	case KindInvalidFormat:
		if e.Detail == "" {
			return "invalid GPX format"
		}
		return "invalid GPX format: " + e.Detail
	case KindParse:
		return "error parsing GPX: " + e.Detail
	case KindSerialization:
		return "serialization error: " + e.Detail
	case KindCompression:
		return "compression error: " + e.Detail
	case KindDecompression:
		return "decompression error: " + e.Detail
	}
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newKindError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Detail: err.Error(), Err: err}
}

// NewParseError wraps a parser failure.
func NewParseError(err error) *Error {
	return newKindError(KindParse, err)
}

// NewSerializationError wraps an encoder failure.
func NewSerializationError(err error) *Error {
	return newKindError(KindSerialization, err)
}

// NewCompressionError wraps a gzip writer failure.
func NewCompressionError(err error) *Error {
	return newKindError(KindCompression, err)
}

// NewDecompressionError wraps a gzip reader or decoding failure.
func NewDecompressionError(err error) *Error {
	return newKindError(KindDecompression, err)
}

// NewTooManyPoints reports a document above the point ceiling.
func NewTooManyPoints(count, limit int) *Error {
	return &Error{Kind: KindTooManyPoints, Count: count, Limit: limit}
}

// WrapInvalidFormat reports a rejection by the pre-flight gate. The cause
// stays reachable through errors.Is and errors.As.
func WrapInvalidFormat(err error) *Error {
	return newKindError(KindInvalidFormat, err)
}

// NewInvalidFormat reports a failed cheap pre-flight check.
func NewInvalidFormat(detail string) *Error {
	return &Error{Kind: KindInvalidFormat, Detail: detail}
}
