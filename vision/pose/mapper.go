package pose

import (
	"image"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"go.viam.com/tryon/rimage/transform"
)

// A CoordinateMapper moves points from the space landmarks are detected in to the space the
// overlay is displayed in.
type CoordinateMapper interface {
	Map(pt r2.Point) r2.Point
}

// CoordinateMapperFunc adapts a function to a CoordinateMapper.
type CoordinateMapperFunc func(pt r2.Point) r2.Point

// Map calls f.
func (f CoordinateMapperFunc) Map(pt r2.Point) r2.Point {
	return f(pt)
}

// IdentityMapper leaves points where they are.
type IdentityMapper struct{}

// Map returns pt.
func (IdentityMapper) Map(pt r2.Point) r2.Point {
	return pt
}

// HomographyMapper maps points through a projective transform.
type HomographyMapper struct {
	Transform transform.Homography
}

// Map applies the transform.
func (m HomographyMapper) Map(pt r2.Point) r2.Point {
	return m.Transform.Apply(pt)
}

// NewViewMapper returns the mapping from a sensor buffer of bufferSize, which must be rotated
// clockwise by rotationDegrees to be upright, onto a display of displaySize. The upright buffer is
// scaled to fill the display and centered, cropping whichever axis overflows. With mirror set the
// result is flipped horizontally, as for a front facing camera preview.
func NewViewMapper(bufferSize image.Point, rotationDegrees int, displaySize image.Point, mirror bool) (HomographyMapper, error) {
	if bufferSize.X <= 0 || bufferSize.Y <= 0 {
		return HomographyMapper{}, errors.Errorf("buffer size must be positive, got %v", bufferSize)
	}
	if displaySize.X <= 0 || displaySize.Y <= 0 {
		return HomographyMapper{}, errors.Errorf("display size must be positive, got %v", displaySize)
	}

	w, h := float64(bufferSize.X), float64(bufferSize.Y)
	var rotate transform.Homography
	uprightW, uprightH := w, h
	switch ((rotationDegrees % 360) + 360) % 360 {
	case 0:
		rotate = transform.Identity()
	case 90:
		rotate = transform.Homography{{0, -1, h}, {1, 0, 0}, {0, 0, 1}}
		uprightW, uprightH = h, w
	case 180:
		rotate = transform.Homography{{-1, 0, w}, {0, -1, h}, {0, 0, 1}}
	case 270:
		rotate = transform.Homography{{0, 1, 0}, {-1, 0, w}, {0, 0, 1}}
		uprightW, uprightH = h, w
	default:
		return HomographyMapper{}, errors.Errorf("rotation must be a multiple of 90 degrees, got %d", rotationDegrees)
	}

	dw, dh := float64(displaySize.X), float64(displaySize.Y)
	s := math.Max(dw/uprightW, dh/uprightH)
	fill := transform.Translation((dw-uprightW*s)/2, (dh-uprightH*s)/2).Mul(transform.Scaling(s))

	m := fill.Mul(rotate)
	if mirror {
		m = transform.Homography{{-1, 0, dw}, {0, 1, 0}, {0, 0, 1}}.Mul(m)
	}
	return HomographyMapper{Transform: m}, nil
}

// MapLandmarks returns a copy of landmarks with every position moved through mapper.
func MapLandmarks(landmarks []Landmark, mapper CoordinateMapper) []Landmark {
	out := make([]Landmark, len(landmarks))
	for i, lm := range landmarks {
		lm.Position = mapper.Map(lm.Position)
		out[i] = lm
	}
	return out
}
