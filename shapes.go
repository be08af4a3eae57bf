package batch

import (
	"fmt"
	"image"
	"math"
)

// fullUV maps a quad onto the whole texture, corners in the order
// top-left, top-right, bottom-right, bottom-left.
var fullUV = [4]Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// DrawRect draws a w×h rectangle in the current color with the blank
// texture. (x, y) is where the style's anchor lands.
func (b *Batcher) DrawRect(x, y, w, h float64) error {
	return b.drawQuad(nil, x, y, w, h, fullUV)
}

// DrawImage draws t stretched to w×h. A zero w and h use the texture size.
func (b *Batcher) DrawImage(t *Texture, x, y, w, h float64) error {
	if t == nil {
		return fmt.Errorf("%w: nil texture", ErrInvalidFormat)
	}
	if w == 0 && h == 0 {
		w, h = float64(t.Width()), float64(t.Height())
	}
	return b.drawQuad(t, x, y, w, h, fullUV)
}

// DrawImageRegion draws the src sub-rectangle of t stretched to w×h.
func (b *Batcher) DrawImageRegion(t *Texture, src image.Rectangle, x, y, w, h float64) error {
	if t == nil {
		return fmt.Errorf("%w: nil texture", ErrInvalidFormat)
	}
	tw, th := float64(t.Width()), float64(t.Height())
	u0, v0 := float64(src.Min.X)/tw, float64(src.Min.Y)/th
	u1, v1 := float64(src.Max.X)/tw, float64(src.Max.Y)/th
	return b.drawQuad(t, x, y, w, h, [4]Point{{u0, v0}, {u1, v0}, {u1, v1}, {u0, v1}})
}

// DrawPolygon draws a filled convex polygon in the current color.
func (b *Batcher) DrawPolygon(points []Point) error {
	if len(points) < 3 {
		return fmt.Errorf("%w: polygon needs 3 points, got %d", ErrInvalidPointCount, len(points))
	}
	return b.drawPoints(Triangle, points)
}

// DrawPoints draws one point primitive per entry in the current color.
// Like every batch, points are drawn once at least 3 are pending.
func (b *Batcher) DrawPoints(points []Point) error {
	if len(points) == 0 {
		return fmt.Errorf("%w: no points", ErrInvalidPointCount)
	}
	return b.drawPoints(Points, points)
}

// DrawLine draws a segment as a quad of the given width.
func (b *Batcher) DrawLine(x1, y1, x2, y2, width float64) error {
	dx, dy := x2-x1, y2-y1
	l := math.Hypot(dx, dy)
	if l == 0 {
		return fmt.Errorf("%w: zero-length line", ErrInvalidPointCount)
	}
	nx, ny := -dy/l*width/2, dx/l*width/2
	corners := [4]Point{
		{x1 + nx, y1 + ny},
		{x2 + nx, y2 + ny},
		{x2 - nx, y2 - ny},
		{x1 - nx, y1 - ny},
	}
	return b.emitQuad(nil, corners, fullUV)
}

// quadCorners places a w×h quad so that its anchor lands on (x, y), rotated
// around the anchor by the style angle.
func (b *Batcher) quadCorners(x, y, w, h float64) [4]Point {
	ax, ay := b.style.Align.anchor(w, h)
	m := Translate(x, y).Multiply(Rotate(b.style.Angle))
	return [4]Point{
		m.TransformPoint(Pt(-ax, -ay)),
		m.TransformPoint(Pt(w-ax, -ay)),
		m.TransformPoint(Pt(w-ax, h-ay)),
		m.TransformPoint(Pt(-ax, h-ay)),
	}
}

func (b *Batcher) drawQuad(t *Texture, x, y, w, h float64, uv [4]Point) error {
	return b.emitQuad(t, b.quadCorners(x, y, w, h), uv)
}

func (b *Batcher) emitQuad(t *Texture, corners, uv [4]Point) error {
	if err := b.BindProgram(nil); err != nil {
		return err
	}
	if err := b.BindTexture(t, 0); err != nil {
		return err
	}
	if err := b.BeginShape(Triangle, 4, 0); err != nil {
		return err
	}
	for i := range corners {
		if i > 0 {
			if err := b.NextVertex(); err != nil {
				b.abortShape()
				return err
			}
		}
		if err := b.defaultVertex(corners[i], uv[i]); err != nil {
			b.abortShape()
			return err
		}
	}
	if err := b.EndShape(); err != nil {
		b.abortShape()
		return err
	}
	return nil
}

func (b *Batcher) drawPoints(topology Topology, points []Point) error {
	if err := b.BindProgram(nil); err != nil {
		return err
	}
	if err := b.BindTexture(nil, 0); err != nil {
		return err
	}
	if err := b.BeginShape(topology, len(points), 0); err != nil {
		return err
	}
	for i, p := range points {
		if i > 0 {
			if err := b.NextVertex(); err != nil {
				b.abortShape()
				return err
			}
		}
		if err := b.defaultVertex(p, Point{}); err != nil {
			b.abortShape()
			return err
		}
	}
	if err := b.EndShape(); err != nil {
		b.abortShape()
		return err
	}
	return nil
}

// defaultVertex writes one vertex of the default program layout.
func (b *Batcher) defaultVertex(pos, uv Point) error {
	r, g, bl, a := b.style.Color.Float32()
	if err := b.Vertex2f(float32(pos.X), float32(pos.Y)); err != nil {
		return err
	}
	if err := b.Vertex4f(r, g, bl, a); err != nil {
		return err
	}
	return b.Vertex2f(float32(uv.X), float32(uv.Y))
}

// abortShape rewinds the vertex arena to the start of the shape in
// progress. Only the helpers use it; they own the whole shape.
func (b *Batcher) abortShape() {
	if !b.shape.active {
		return
	}
	b.vertices.cursor = b.shape.startByte
	b.shape = shapeState{}
}
