package content

import "math"

// Matrix is a PDF transformation matrix [a b c d e f], the 3x2 affine
// form of PDF 1.7 §8.3.4:
//
//	| a b 0 |
//	| c d 0 |
//	| e f 1 |
type Matrix struct {
	A, B, C, D, E, F float64
}

// Identity is the identity transform.
var Identity = Matrix{A: 1, D: 1}

// Mul computes m concatenated with n, i.e. the matrix that applies m
// first, then n ("cm" right-multiplies the CTM per PDF 1.7 §8.3.4).
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.B*n.C,
		B: m.A*n.B + m.B*n.D,
		C: m.C*n.A + m.D*n.C,
		D: m.C*n.B + m.D*n.D,
		E: m.E*n.A + m.F*n.C + n.E,
		F: m.E*n.B + m.F*n.D + n.F,
	}
}

// Apply transforms the point (x, y) by m.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return x*m.A + y*m.C + m.E, x*m.B + y*m.D + m.F
}

// ScaleX is a rough text-space to device-space horizontal scale factor,
// used by the page analyzer's estimate of how much space a run of text
// occupies.
func (m Matrix) ScaleX() float64 {
	return math.Hypot(m.A, m.B)
}
