// Package embedding turns face images into encodings using an external
// feature extractor.
package embedding

import (
	"context"
	"time"

	"github.com/kozaktomas/face-gate/internal/facematch"
)

// Extractor produces face encodings from an image.
// Implementations return an empty slice when no face is found.
type Extractor interface {
	ExtractFaces(ctx context.Context, imageData []byte) ([]facematch.Encoding, error)
}

// ObserveFunc receives the duration and outcome of each extraction
type ObserveFunc func(d time.Duration, faces int, err error)

type observed struct {
	next    Extractor
	observe ObserveFunc
}

// WithObserver wraps an extractor so every call is reported to observe.
func WithObserver(next Extractor, observe ObserveFunc) Extractor {
	if observe == nil {
		return next
	}
	return &observed{next: next, observe: observe}
}

func (o *observed) ExtractFaces(ctx context.Context, imageData []byte) ([]facematch.Encoding, error) {
	start := time.Now()
	encodings, err := o.next.ExtractFaces(ctx, imageData)
	o.observe(time.Since(start), len(encodings), err)
	return encodings, err
}
