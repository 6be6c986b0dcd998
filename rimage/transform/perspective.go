package transform

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// ErrDegenerateQuad is returned when no perspective transform maps one quad onto the other.
var ErrDegenerateQuad = errors.New("degenerate quad")

// SolvePerspective returns the homography T such that T·src[i] = dst[i] for all four corners.
// It allocates a one-shot Arena; frame loops should keep an Arena and call its method instead.
func SolvePerspective(src, dst Quad) (Homography, error) {
	return NewArena().SolvePerspective(src, dst)
}

// SolvePerspective solves the 4-point DLT system with h22 fixed to 1. Both quads are first moved
// to their centroid and scaled to a mean corner distance of sqrt(2) to keep the system well
// conditioned, and the solution is mapped back to pixel space.
func (a *Arena) SolvePerspective(src, dst Quad) (Homography, error) {
	if src.Degenerate() {
		return Homography{}, errors.Wrap(ErrDegenerateQuad, "source")
	}
	if dst.Degenerate() {
		return Homography{}, errors.Wrap(ErrDegenerateQuad, "destination")
	}

	srcNorm, srcPts := normalize(src)
	dstNorm, dstPts := normalize(dst)

	a.system.Zero()
	for i := 0; i < 4; i++ {
		sx, sy := srcPts[i].X, srcPts[i].Y
		dx, dy := dstPts[i].X, dstPts[i].Y
		r := 2 * i

		// x' = (h00 X + h01 Y + h02)/(h20 X + h21 Y + 1)
		a.system.Set(r, 0, sx)
		a.system.Set(r, 1, sy)
		a.system.Set(r, 2, 1)
		a.system.Set(r, 6, -sx*dx)
		a.system.Set(r, 7, -sy*dx)
		a.rhs.SetVec(r, dx)

		// y' = (h10 X + h11 Y + h12)/(h20 X + h21 Y + 1)
		a.system.Set(r+1, 3, sx)
		a.system.Set(r+1, 4, sy)
		a.system.Set(r+1, 5, 1)
		a.system.Set(r+1, 6, -sx*dy)
		a.system.Set(r+1, 7, -sy*dy)
		a.rhs.SetVec(r+1, dy)
	}

	if err := a.solution.SolveVec(a.system, a.rhs); err != nil {
		return Homography{}, errors.Wrap(ErrDegenerateQuad, err.Error())
	}

	var hn Homography
	for i := 0; i < 8; i++ {
		v := a.solution.AtVec(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Homography{}, errors.Wrap(ErrDegenerateQuad, "non-finite solution")
		}
		hn[i/3][i%3] = v
	}
	hn[2][2] = 1

	dstDenorm, err := dstNorm.Inverse()
	if err != nil {
		return Homography{}, errors.Wrap(ErrDegenerateQuad, err.Error())
	}
	return dstDenorm.Mul(hn).Mul(srcNorm).Normalized(), nil
}

// normalize returns the similarity moving q's centroid to the origin with a mean corner distance
// of sqrt(2), and q mapped through it.
func normalize(q Quad) (Homography, Quad) {
	c := q.Center()
	var meanDist float64
	for _, p := range q {
		meanDist += p.Sub(c).Norm()
	}
	meanDist /= 4

	s := math.Sqrt2 / meanDist
	t := Homography{
		{s, 0, -s * c.X},
		{0, s, -s * c.Y},
		{0, 0, 1},
	}
	var out Quad
	for i, p := range q {
		out[i] = r2.Point{X: s * (p.X - c.X), Y: s * (p.Y - c.Y)}
	}
	return t, out
}
