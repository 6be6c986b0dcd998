package tryon

import (
	"context"
	"image"
	"image/color"
	"sync/atomic"

	"github.com/pkg/errors"

	"go.viam.com/tryon/logging"
	"go.viam.com/tryon/rimage"
	"go.viam.com/tryon/rimage/transform"
	"go.viam.com/tryon/vision/pose"
)

// ErrNotReady is returned while the display has no usable size.
var ErrNotReady = errors.New("display is not ready")

const markerRadius = 4

// Overlay is the outcome of one render.
type Overlay struct {
	// Raster is display sized and transparent wherever the texture does not land. It is nil only
	// when the display was not ready.
	Raster *image.RGBA
	// Rendered is false when there was no torso to place the texture on.
	Rendered bool
	// Quad is the destination quad in display space.
	Quad transform.Quad
	// Transform maps texture coordinates to display coordinates.
	Transform transform.Homography
}

// Engine warps a fixed texture onto torso quads. It owns its output raster and scratch arena and
// must not be rendered from more than one goroutine at a time. Params may be swapped concurrently.
type Engine struct {
	logger  logging.Logger
	texture *image.RGBA
	srcQuad transform.Quad
	arena   *transform.Arena
	raster  *image.RGBA
	params  atomic.Pointer[Params]
}

// NewEngine returns an engine for texture. The texture's corners become the fixed source quad.
func NewEngine(texture *image.RGBA, params Params, logger logging.Logger) (*Engine, error) {
	if texture == nil || texture.Rect.Empty() {
		return nil, errors.New("texture must not be empty")
	}
	texture = rimage.ToRGBA(texture)
	e := &Engine{
		logger:  logger,
		texture: texture,
		srcQuad: transform.RectQuad(float64(texture.Rect.Dx()), float64(texture.Rect.Dy())),
		arena:   transform.NewArena(),
	}
	if err := e.SetParams(params); err != nil {
		return nil, err
	}
	return e, nil
}

// SetParams validates and installs new parameters, used from the next render on.
func (e *Engine) SetParams(params Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	e.params.Store(&params)
	return nil
}

// Params returns the parameters in use.
func (e *Engine) Params() Params {
	return *e.params.Load()
}

// SourceQuad is the texture's corner quad.
func (e *Engine) SourceQuad() transform.Quad {
	return e.srcQuad
}

// Render draws the texture onto body, given in display coordinates, into a raster of displaySize.
// A nil body, or one whose quad admits no perspective transform, yields a cleared raster with
// Rendered unset. A non-positive or unallocatable display size drops the raster and returns
// ErrNotReady.
func (e *Engine) Render(ctx context.Context, body *pose.Body, displaySize image.Point) (Overlay, error) {
	return e.RenderLandmarks(ctx, body, nil, displaySize)
}

// RenderLandmarks is Render with the full set of detected landmarks, in display coordinates, for
// the debug markers. With no landmarks the torso joints of body are marked instead.
func (e *Engine) RenderLandmarks(
	ctx context.Context,
	body *pose.Body,
	landmarks []pose.Landmark,
	displaySize image.Point,
) (Overlay, error) {
	if displaySize.X <= 0 || displaySize.Y <= 0 {
		e.raster = nil
		return Overlay{}, ErrNotReady
	}
	raster, err := rimage.EnsureRaster(e.raster, displaySize)
	if err != nil {
		e.raster = nil
		return Overlay{}, errors.Wrap(ErrNotReady, err.Error())
	}
	if raster != e.raster {
		e.logger.Debugw("allocated overlay raster", "width", displaySize.X, "height", displaySize.Y)
		e.raster = raster
	}

	params := e.Params()
	if body == nil {
		rimage.Clear(raster)
		if params.DebugMarkers {
			e.drawMarkers(raster, landmarks, nil)
		}
		return Overlay{Raster: raster}, nil
	}
	if len(landmarks) == 0 {
		landmarks = body.Landmarks()
	}
	dst := body.Quad()
	if params.Fit != nil {
		dst = body.ScaledOffsetQuad(params.Fit.Width, params.Fit.Height, params.Fit.CenterOffsetX, params.Fit.CenterOffsetY)
	}

	perspective, err := e.arena.SolvePerspective(e.srcQuad, dst)
	if err != nil {
		if errors.Is(err, transform.ErrDegenerateQuad) {
			e.logger.Debugw("skipping degenerate torso quad", "quad", dst, "error", err)
			rimage.Clear(raster)
			return Overlay{Raster: raster, Quad: dst}, nil
		}
		return Overlay{}, err
	}

	adj := transform.Adjustments{
		PreviewWidth:  float64(displaySize.X),
		PreviewHeight: float64(displaySize.Y),
		Scale:         params.Scale,
		OffsetX:       params.offsetX(body.ShoulderWidth()),
		OffsetY:       params.OffsetY,
	}
	m := e.arena.ComposeAdjusted(perspective, adj)

	if err := rimage.Warp(ctx, raster, e.texture, m, params.Kernel); err != nil {
		if errors.Is(err, transform.ErrSingular) {
			e.logger.Debugw("skipping singular overlay transform", "transform", m.String())
			return Overlay{Raster: raster, Quad: dst}, nil
		}
		return Overlay{}, err
	}

	if params.DebugMarkers {
		placed := e.srcQuad.Apply(m)
		e.drawMarkers(raster, landmarks, &placed)
	}
	return Overlay{Raster: raster, Rendered: true, Quad: dst, Transform: m}, nil
}

// drawMarkers marks every landmark and, when placed is set, outlines the texture's placement.
func (e *Engine) drawMarkers(raster *image.RGBA, landmarks []pose.Landmark, placed *transform.Quad) {
	markers := make([]rimage.Marker, 0, len(landmarks))
	for _, lm := range landmarks {
		markers = append(markers, rimage.Marker{Position: lm.Position, Label: lm.Type.String()})
	}
	if placed != nil {
		rimage.DrawQuad(raster, *placed, color.White, 2)
	}
	rimage.DrawMarkers(raster, markers, markerRadius)
}
