// Package tryon warps an overlay texture onto a detected torso and runs detection frames through a
// single flight pipeline.
package tryon

import (
	"strings"

	"github.com/pkg/errors"

	"go.viam.com/tryon/rimage"
	"go.viam.com/tryon/rimage/transform"
)

// Alignment is a horizontal placement preset derived from the detected shoulder width.
type Alignment string

// The alignment presets. AlignNone keeps the configured x offset.
const (
	AlignNone   Alignment = ""
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// ParseAlignment accepts the preset names, ignoring case.
func ParseAlignment(name string) (Alignment, error) {
	switch a := Alignment(strings.ToLower(strings.TrimSpace(name))); a {
	case AlignNone, AlignLeft, AlignCenter, AlignRight:
		return a, nil
	default:
		return AlignNone, errors.Errorf("unknown alignment %q", name)
	}
}

// OffsetX returns the x offset the preset places the overlay at: minus half the shoulder width,
// zero, or plus half the shoulder width.
func (a Alignment) OffsetX(shoulderWidth float64) float64 {
	switch a {
	case AlignLeft:
		return -shoulderWidth / 2
	case AlignRight:
		return shoulderWidth / 2
	default:
		return 0
	}
}

// FitSize replaces the raw torso quad with one of a fixed size that keeps the pose's orientation.
type FitSize struct {
	Width         float64
	Height        float64
	CenterOffsetX float64
	CenterOffsetY float64
}

// Params are the user adjustable rendering settings.
type Params struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
	Align   Alignment
	Fit     *FitSize
	Kernel  rimage.Kernel

	// DebugMarkers draws the torso landmarks and the destination quad over the overlay.
	DebugMarkers bool
}

// DefaultParams returns a half scale overlay without offset.
func DefaultParams() Params {
	return Params{Scale: transform.DefaultScale}
}

// Validate checks the parameter ranges.
func (p Params) Validate() error {
	if p.Scale <= 0 || p.Scale > transform.MaxScale {
		return errors.Errorf("scale must be in (0, %v], got %v", transform.MaxScale, p.Scale)
	}
	if _, err := ParseAlignment(string(p.Align)); err != nil {
		return err
	}
	if p.Fit != nil && (p.Fit.Width <= 0 || p.Fit.Height <= 0) {
		return errors.Errorf("fit size must be positive, got %vx%v", p.Fit.Width, p.Fit.Height)
	}
	return nil
}

// offsetX is the effective x offset for a torso with the given shoulder width.
func (p Params) offsetX(shoulderWidth float64) float64 {
	if p.Align == AlignNone {
		return p.OffsetX
	}
	return p.Align.OffsetX(shoulderWidth)
}
