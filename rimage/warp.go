package rimage

import (
	"context"
	"image"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"go.viam.com/tryon/rimage/transform"
	"go.viam.com/tryon/utils"
)

// Warp resamples src into dst through m, which maps source coordinates to destination
// coordinates. dst is cleared first. Every destination pixel is mapped back through the inverse
// of m; pixels landing outside the source bounds stay fully transparent and the rest are sampled
// with kernel. Rows are processed in parallel, and Warp returns once all of them are written.
func Warp(ctx context.Context, dst, src *image.RGBA, m transform.Homography, kernel Kernel) error {
	if dst == nil || src == nil {
		return errors.New("warp needs both a source and a destination raster")
	}
	Clear(dst)

	inv, err := m.Inverse()
	if err != nil {
		return errors.Wrap(err, "cannot invert warp transform")
	}

	sb, db := src.Rect, dst.Rect
	if sb.Empty() || db.Empty() {
		return nil
	}

	return utils.GroupWorkParallel(
		ctx,
		db.Dy(),
		func(groupNum, groupSize, from, to int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
			return func(memberNum, workNum int) {
				y := db.Min.Y + workNum
				for x := db.Min.X; x < db.Max.X; x++ {
					p := snapToGrid(inv.Apply(r2.Point{X: float64(x), Y: float64(y)}))
					if !insideBounds(sb, p) {
						continue
					}
					c := kernel.sample(src, p.X, p.Y)
					i := dst.PixOffset(x, y)
					s := dst.Pix[i : i+4 : i+4]
					s[0], s[1], s[2], s[3] = c.R, c.G, c.B, c.A
				}
			}, nil
		},
	)
}

// snapEpsilon is how close to a pixel center a mapped coordinate must be to be treated as on it.
const snapEpsilon = 1e-9

// snapToGrid removes round-off from coordinates that land on a pixel center.
func snapToGrid(p r2.Point) r2.Point {
	if rx := math.Round(p.X); math.Abs(p.X-rx) < snapEpsilon {
		p.X = rx
	}
	if ry := math.Round(p.Y); math.Abs(p.Y-ry) < snapEpsilon {
		p.Y = ry
	}
	return p
}

// insideBounds reports whether p lies in [Min.X, Max.X) x [Min.Y, Max.Y). Non-finite points are
// never inside.
func insideBounds(b image.Rectangle, p r2.Point) bool {
	if !utils.IsFinite(p.X, p.Y) {
		return false
	}
	return p.X >= float64(b.Min.X) && p.X < float64(b.Max.X) &&
		p.Y >= float64(b.Min.Y) && p.Y < float64(b.Max.Y)
}
