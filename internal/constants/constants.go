// Package constants provides shared constants used across the codebase.
package constants

// Image processing constants
const (
	// MaxImageSize is the maximum dimension (width or height) of an image sent to the extractor
	MaxImageSize = 1024

	// JPEGQuality is the quality used when re-encoding preprocessed images
	JPEGQuality = 90

	// MaxUploadSize is the maximum request body size in bytes (20MB).
	// Images arrive base64 encoded, so this bounds the decoded image to ~15MB.
	MaxUploadSize = 20 << 20
)

// Processing constants
const (
	// DefaultConcurrency is the default number of parallel workers for batch enrollment
	DefaultConcurrency = 4

	// ExtractorTimeout bounds a single feature extraction request in seconds
	ExtractorTimeout = 60
)

// Audit directions
const (
	DirectionIn = "in"
)
