package transform

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrSingular is returned when a transform has no inverse.
var ErrSingular = errors.New("homography is singular")

// Homography is a 3x3 matrix (represented as a 2D array) used to transform a plane from one 2D
// perspective to another in homogeneous coordinates. Indices are [row][column].
// Composition with Mul is matrix multiplication, so a.Mul(b) applies b first, then a.
type Homography [3][3]float64

// Identity returns the neutral element of composition.
func Identity() Homography {
	return Homography{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// NewHomography creates a Homography from a slice of 9 floats in row-major order.
func NewHomography(vals []float64) (Homography, error) {
	if len(vals) != 9 {
		return Homography{}, errors.Errorf("input to NewHomography must have length of 9. Has length of %d", len(vals))
	}
	var h Homography
	for i, v := range vals {
		h[i/3][i%3] = v
	}
	return h, nil
}

// Translation returns the transform moving every point by (dx, dy).
func Translation(dx, dy float64) Homography {
	return Homography{
		{1, 0, dx},
		{0, 1, dy},
		{0, 0, 1},
	}
}

// Scaling returns a uniform scale about the origin.
func Scaling(s float64) Homography {
	return Homography{
		{s, 0, 0},
		{0, s, 0},
		{0, 0, 1},
	}
}

// At returns the entry at the given row and column.
func (h Homography) At(row, col int) float64 {
	return h[row][col]
}

// Mul returns the matrix product h·o.
func (h Homography) Mul(o Homography) Homography {
	var out Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r][c] = h[r][0]*o[0][c] + h[r][1]*o[1][c] + h[r][2]*o[2][c]
		}
	}
	return out
}

// Apply maps a point through the transform, dividing by the homogeneous coordinate. Points that
// map to infinity come back with non-finite coordinates.
func (h Homography) Apply(pt r2.Point) r2.Point {
	x := h.At(0, 0)*pt.X + h.At(0, 1)*pt.Y + h.At(0, 2)
	y := h.At(1, 0)*pt.X + h.At(1, 1)*pt.Y + h.At(1, 2)
	z := h.At(2, 0)*pt.X + h.At(2, 1)*pt.Y + h.At(2, 2)
	return r2.Point{X: x / z, Y: y / z}
}

// Normalized scales the matrix so that the bottom-right entry is 1. Matrices whose bottom-right
// entry is zero are returned unchanged.
func (h Homography) Normalized() Homography {
	w := h[2][2]
	if w == 0 || w == 1 {
		return h
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			h[r][c] /= w
		}
	}
	return h
}

// Inverse returns the inverse transform, or ErrSingular.
func (h Homography) Inverse() (Homography, error) {
	var inv mat.Dense
	if err := inv.Inverse(h.Dense()); err != nil {
		return Homography{}, errors.Wrap(ErrSingular, err.Error())
	}
	out := FromMatrix(&inv)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if math.IsNaN(out[r][c]) || math.IsInf(out[r][c], 0) {
				return Homography{}, ErrSingular
			}
		}
	}
	return out.Normalized(), nil
}

// Dense copies the transform into a gonum matrix.
func (h Homography) Dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		h[0][0], h[0][1], h[0][2],
		h[1][0], h[1][1], h[1][2],
		h[2][0], h[2][1], h[2][2],
	})
}

// FromMatrix copies a 3x3 gonum matrix into a Homography. It panics on other shapes.
func FromMatrix(m mat.Matrix) Homography {
	if r, c := m.Dims(); r != 3 || c != 3 {
		panic(fmt.Sprintf("expected 3x3 matrix, got %dx%d", r, c))
	}
	var h Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			h[r][c] = m.At(r, c)
		}
	}
	return h
}

// AlmostEqual compares entries after normalizing both matrices.
func (h Homography) AlmostEqual(o Homography, epsilon float64) bool {
	a, b := h.Normalized(), o.Normalized()
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if math.Abs(a[r][c]-b[r][c]) > epsilon {
				return false
			}
		}
	}
	return true
}

// String renders the matrix row by row.
func (h Homography) String() string {
	return fmt.Sprintf("[%g %g %g; %g %g %g; %g %g %g]",
		h[0][0], h[0][1], h[0][2], h[1][0], h[1][1], h[1][2], h[2][0], h[2][1], h[2][2])
}
