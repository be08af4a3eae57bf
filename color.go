package batch

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// RGBA is a straight-alpha color with components in [0, 1]. It is the value
// written to the color attribute of the default vertex layout.
type RGBA struct {
	R, G, B, A float64
}

// Common colors.
var (
	Black       = RGB(0, 0, 0)
	White       = RGB(1, 1, 1)
	Transparent = RGBA{}
)

// RGB returns an opaque color.
func RGB(r, g, b float64) RGBA { return RGBA{R: r, G: g, B: b, A: 1} }

// RGBA2 returns a color with alpha.
func RGBA2(r, g, b, a float64) RGBA { return RGBA{R: r, G: g, B: b, A: a} }

// Color converts c to an 8-bit color.NRGBA, clamping out-of-range values.
func (c RGBA) Color() color.Color {
	return color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)}
}

// FromColor converts any color.Color to straight alpha.
func FromColor(c color.Color) RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA{
		R: float64(n.R) / 255,
		G: float64(n.G) / 255,
		B: float64(n.B) / 255,
		A: float64(n.A) / 255,
	}
}

// Float32 returns the components as vertex attribute values.
func (c RGBA) Float32() (r, g, b, a float32) {
	return float32(c.R), float32(c.G), float32(c.B), float32(c.A)
}

// ParseHex parses "RGB", "RGBA", "RRGGBB" or "RRGGBBAA", with an optional
// leading '#'.
func ParseHex(s string) (RGBA, error) {
	digits := strings.TrimPrefix(s, "#")
	short := len(digits) == 3 || len(digits) == 4
	if !short && len(digits) != 6 && len(digits) != 8 {
		return RGBA{}, fmt.Errorf("batch: invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return RGBA{}, fmt.Errorf("batch: invalid hex color %q", s)
	}

	width, mask := uint(8), uint64(0xff)
	if short {
		width, mask = 4, 0xf
	}
	n := len(digits) * 4 / int(width)
	var comp [4]float64
	comp[3] = 1
	for i := range n {
		x := v >> (uint(n-1-i) * width) & mask
		comp[i] = float64(x) / float64(mask)
	}
	return RGBA{R: comp[0], G: comp[1], B: comp[2], A: comp[3]}, nil
}

// Hex is ParseHex for literals. Malformed input yields opaque black.
func Hex(s string) RGBA {
	c, err := ParseHex(s)
	if err != nil {
		return Black
	}
	return c
}

func to8(x float64) uint8 {
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 255
	}
	return uint8(x*255 + 0.5)
}
