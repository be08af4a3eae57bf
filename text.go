package batch

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// TextImage rasterizes s in white on a transparent background. A nil face
// uses basicfont.Face7x13. Tint the result with SetColor when drawing.
func TextImage(face font.Face, s string) *image.RGBA {
	if face == nil {
		face = basicfont.Face7x13
	}
	metrics := face.Metrics()
	width := font.MeasureString(face, s).Ceil()
	height := (metrics.Ascent + metrics.Descent).Ceil()
	if width == 0 {
		width = 1
	}
	if height == 0 {
		height = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: metrics.Ascent},
	}
	d.DrawString(s)
	return img
}

// NewTextTexture rasterizes s with TextImage and uploads it. The caller
// owns the texture.
func (c *Context) NewTextTexture(surface Surface, face font.Face, s string) (*Texture, error) {
	return c.NewTextureFromImage(surface, TextImage(face, s), FilterNearest)
}
