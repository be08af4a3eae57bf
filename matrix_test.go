package batch

import (
	"math"
	"testing"
)

func TestMatrixTransformPoint(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		in   Point
		want Point
	}{
		{"identity", Identity(), Pt(3, 4), Pt(3, 4)},
		{"translate", Translate(10, 20), Pt(1, 2), Pt(11, 22)},
		{"scale", Scale(2, 3), Pt(1, 1), Pt(2, 3)},
		{"rotate 90deg", Rotate(math.Pi / 2), Pt(1, 0), Pt(0, 1)},
		{"translate after rotate", Translate(5, 5).Multiply(Rotate(math.Pi)), Pt(1, 0), Pt(4, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.TransformPoint(tt.in)
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
				t.Errorf("TransformPoint(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// applyRowMajor multiplies a row-major 4x4 matrix with (x, y, 0, 1).
func applyRowMajor(m [16]float32, x, y float32) (float32, float32) {
	return m[0]*x + m[1]*y + m[3], m[4]*x + m[5]*y + m[7]
}

func TestOrthoTopLeftOrigin(t *testing.T) {
	m := Ortho(0, 800, 600, 0, -1, 1)
	tests := []struct {
		x, y   float32
		cx, cy float32
	}{
		{0, 0, -1, 1},
		{800, 600, 1, -1},
		{400, 300, 0, 0},
	}
	for _, tt := range tests {
		cx, cy := applyRowMajor(m, tt.x, tt.y)
		if math.Abs(float64(cx-tt.cx)) > 1e-6 || math.Abs(float64(cy-tt.cy)) > 1e-6 {
			t.Errorf("Ortho maps (%v,%v) to (%v,%v), want (%v,%v)", tt.x, tt.y, cx, cy, tt.cx, tt.cy)
		}
	}
}

func TestMatrixMat4(t *testing.T) {
	m := Translate(7, 9).Mat4()
	x, y := applyRowMajor(m, 1, 1)
	if x != 8 || y != 10 {
		t.Errorf("Mat4 translate = (%v,%v), want (8,10)", x, y)
	}
}
