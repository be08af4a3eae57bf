package batch

import "math"

// Matrix is the 2D affine transform that places quads:
//
//	x' = A*x + B*y + C
//	y' = D*x + E*y + F
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transform.
func Identity() Matrix { return Matrix{A: 1, E: 1} }

// Translate returns a translation by (x, y).
func Translate(x, y float64) Matrix { return Matrix{A: 1, C: x, E: 1, F: y} }

// Scale returns a scaling by x and y around the origin.
func Scale(x, y float64) Matrix { return Matrix{A: x, E: y} }

// Rotate turns by angle radians. With y pointing down the rotation is
// clockwise on screen.
func Rotate(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	return Matrix{A: cos, B: -sin, D: sin, E: cos}
}

// Multiply returns m·other: other is applied first.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// TransformPoint maps p through m.
func (m Matrix) TransformPoint(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}

// Mat4 expands the affine matrix to a row-major 4x4 uniform payload.
func (m Matrix) Mat4() [16]float32 {
	return [16]float32{
		float32(m.A), float32(m.B), 0, float32(m.C),
		float32(m.D), float32(m.E), 0, float32(m.F),
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Ortho returns a row-major orthographic projection mapping the box
// [left,right]×[bottom,top]×[near,far] to clip space.
func Ortho(left, right, bottom, top, near, far float64) [16]float32 {
	rl := right - left
	tb := top - bottom
	fn := far - near
	return [16]float32{
		float32(2 / rl), 0, 0, float32(-(right + left) / rl),
		0, float32(2 / tb), 0, float32(-(top + bottom) / tb),
		0, 0, float32(-2 / fn), float32(-(far + near) / fn),
		0, 0, 0, 1,
	}
}
