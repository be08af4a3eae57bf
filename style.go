package batch

// HAlign is the horizontal anchor of a quad.
type HAlign uint8

const (
	AlignLeft HAlign = iota
	AlignCenter
	AlignRight
)

// VAlign is the vertical anchor of a quad.
type VAlign uint8

const (
	AlignTop VAlign = iota
	AlignMiddle
	AlignBottom
)

// Align places the anchor of a quad. The quad's (x, y) is where the anchor
// lands, and rotation turns the quad around it.
type Align struct {
	H HAlign
	V VAlign

	offset     bool
	offX, offY float64
}

// AlignAt returns an anchor at one of the nine named positions.
func AlignAt(h HAlign, v VAlign) Align {
	return Align{H: h, V: v}
}

// AlignOffset returns an anchor x, y pixels from the quad's top-left corner.
func AlignOffset(x, y float64) Align {
	return Align{offset: true, offX: x, offY: y}
}

// anchor returns the anchor position relative to the top-left corner of a
// w×h quad.
func (a Align) anchor(w, h float64) (float64, float64) {
	if a.offset {
		return a.offX, a.offY
	}
	var ax, ay float64
	switch a.H {
	case AlignCenter:
		ax = w / 2
	case AlignRight:
		ax = w
	}
	switch a.V {
	case AlignMiddle:
		ay = h / 2
	case AlignBottom:
		ay = h
	}
	return ax, ay
}

// Style is the state the shape helpers read for every quad.
type Style struct {
	Color RGBA
	Align Align
	// Angle is the rotation in radians around the anchor.
	Angle float64
}

// DefaultStyle is opaque white, top-left anchored, unrotated.
func DefaultStyle() Style {
	return Style{Color: White}
}

// Style returns the current style.
func (b *Batcher) Style() Style { return b.style }

// SetStyle replaces the current style.
func (b *Batcher) SetStyle(s Style) { b.style = s }

// SetColor sets the color of subsequent shapes.
func (b *Batcher) SetColor(c RGBA) { b.style.Color = c }

// SetAlign sets the anchor of subsequent quads.
func (b *Batcher) SetAlign(a Align) { b.style.Align = a }

// SetAngle sets the rotation of subsequent quads in radians.
func (b *Batcher) SetAngle(radians float64) { b.style.Angle = radians }
