package pose

import (
	"context"
	"image"

	"github.com/pkg/errors"
)

// ErrImageNotAvailable is returned by frame sources that have no image ready yet. It is a per frame
// condition and never fatal.
var ErrImageNotAvailable = errors.New("image not available yet")

// An Extractor detects body landmarks in an image. rotationDegrees is the clockwise rotation that
// makes the image upright; returned positions are in the unrotated image's pixel space.
type Extractor interface {
	Detect(ctx context.Context, img image.Image, rotationDegrees int) ([]Landmark, error)
}

// ExtractorFunc adapts a function to an Extractor.
type ExtractorFunc func(ctx context.Context, img image.Image, rotationDegrees int) ([]Landmark, error)

// Detect calls f.
func (f ExtractorFunc) Detect(ctx context.Context, img image.Image, rotationDegrees int) ([]Landmark, error) {
	return f(ctx, img, rotationDegrees)
}
