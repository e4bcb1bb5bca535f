package mask

import "errors"

// Sentinel errors for mask loading.
var (
	// ErrUnknownSource is returned for an empty source or an unknown builtin.
	ErrUnknownSource = errors.New("mask: unknown source")

	// ErrDecode is returned when image bytes cannot be decoded.
	ErrDecode = errors.New("mask: cannot decode image")
)

// BuiltinPrefix marks a generated shape in a source string.
const BuiltinPrefix = "builtin:"

// Defaults.
const (
	DefaultThreshold = 10
	DefaultSize      = 128
)

// Options tunes mask extraction.
type Options struct {
	// Threshold is the red*alpha/255 value a pixel must exceed to be active.
	Threshold int

	// Width resamples the source to this many columns; 0 keeps the native size.
	Width int
}

// DefaultOptions returns Threshold 10 and native width.
func DefaultOptions() Options {
	return Options{Threshold: DefaultThreshold}
}
