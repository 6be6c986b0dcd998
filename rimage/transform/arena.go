package transform

import "gonum.org/v1/gonum/mat"

// Arena holds the scratch matrices used to solve and compose transforms so that a frame loop does
// not allocate. An Arena is owned by one caller and is not safe for concurrent use; results never
// alias its buffers.
type Arena struct {
	system   *mat.Dense    // 8x8 DLT system
	rhs      *mat.VecDense // 8
	solution *mat.VecDense // 8

	operand *mat.Dense // 3x3 factor being multiplied in
	temps   [2]*mat.Dense
}

// NewArena allocates a scratch arena.
func NewArena() *Arena {
	return &Arena{
		system:   mat.NewDense(8, 8, nil),
		rhs:      mat.NewVecDense(8, nil),
		solution: mat.NewVecDense(8, nil),
		operand:  mat.NewDense(3, 3, nil),
		temps:    [2]*mat.Dense{mat.NewDense(3, 3, nil), mat.NewDense(3, 3, nil)},
	}
}

func load(dst *mat.Dense, h Homography) {
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			dst.Set(r, c, h[r][c])
		}
	}
}

// mulRight computes dst = lhs·h.
func (a *Arena) mulRight(dst *mat.Dense, lhs mat.Matrix, h Homography) {
	load(a.operand, h)
	dst.Mul(lhs, a.operand)
}

// mulLeft computes dst = h·rhs.
func (a *Arena) mulLeft(dst *mat.Dense, h Homography, rhs mat.Matrix) {
	load(a.operand, h)
	dst.Mul(a.operand, rhs)
}
