package transform

import "github.com/pkg/errors"

const (
	// DefaultScale is the overlay scale used when none is configured.
	DefaultScale = 0.5
	// MaxScale is the largest accepted overlay scale.
	MaxScale = 2.0
)

// Compose returns userOffset · perspective · recenterBack · scale · recenterToOrigin. Read right
// to left: a source point is moved so the preview center sits at the origin, scaled, moved back,
// projected onto the body, and finally shifted by the user offset in display space.
func Compose(perspective, recenterToOrigin, scale, recenterBack, userOffset Homography) Homography {
	return userOffset.Mul(perspective).Mul(recenterBack).Mul(scale).Mul(recenterToOrigin)
}

// Compose computes the same product as the package level Compose inside the arena's scratch
// matrices.
func (a *Arena) Compose(perspective, recenterToOrigin, scale, recenterBack, userOffset Homography) Homography {
	load(a.temps[1], perspective)
	a.mulRight(a.temps[0], a.temps[1], recenterBack)
	a.mulRight(a.temps[1], a.temps[0], scale)
	a.mulRight(a.temps[0], a.temps[1], recenterToOrigin)
	a.mulLeft(a.temps[1], userOffset, a.temps[0])
	return FromMatrix(a.temps[1])
}

// Adjustments are the user controlled factors composed around the perspective transform.
type Adjustments struct {
	PreviewWidth  float64
	PreviewHeight float64
	Scale         float64
	OffsetX       float64
	OffsetY       float64
}

// Validate checks that the scale lies in (0, MaxScale] and the preview has a positive size.
func (adj Adjustments) Validate() error {
	if adj.Scale <= 0 || adj.Scale > MaxScale {
		return errors.Errorf("scale must be in (0, %v], got %v", MaxScale, adj.Scale)
	}
	if adj.PreviewWidth <= 0 || adj.PreviewHeight <= 0 {
		return errors.Errorf("preview size must be positive, got %vx%v", adj.PreviewWidth, adj.PreviewHeight)
	}
	return nil
}

// RecenterToOrigin translates by (-w/2, -h/2) of the preview.
func (adj Adjustments) RecenterToOrigin() Homography {
	return Translation(-adj.PreviewWidth/2, -adj.PreviewHeight/2)
}

// RecenterBack translates by (w/2, h/2) of the preview.
func (adj Adjustments) RecenterBack() Homography {
	return Translation(adj.PreviewWidth/2, adj.PreviewHeight/2)
}

// ScaleFactor is the uniform scale.
func (adj Adjustments) ScaleFactor() Homography {
	return Scaling(adj.Scale)
}

// UserOffset is the display space translation.
func (adj Adjustments) UserOffset() Homography {
	return Translation(adj.OffsetX, adj.OffsetY)
}

// ComposeAdjusted composes perspective with every factor of adj.
func (a *Arena) ComposeAdjusted(perspective Homography, adj Adjustments) Homography {
	return a.Compose(perspective, adj.RecenterToOrigin(), adj.ScaleFactor(), adj.RecenterBack(), adj.UserOffset())
}
