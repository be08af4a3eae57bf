package batch

// Point is a position in surface pixels.
type Point struct {
	X, Y float64
}

// Pt returns Point{x, y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}
