package batch

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// MaxTextureSlots is the number of texture units a context tracks.
const MaxTextureSlots = 16

// Texture is GPU pixel storage that can be bound to a slot.
type Texture struct {
	ctx       *Context
	surface   Surface
	handle    TextureHandle
	desc      TextureDescriptor
	destroyed bool
}

func validateTextureDescriptor(desc TextureDescriptor) error {
	if desc.Width <= 0 || desc.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidFormat, desc.Width, desc.Height)
	}
	if desc.Channels < 1 || desc.Channels > 4 {
		return fmt.Errorf("%w: %d channels, want 1..4", ErrInvalidFormat, desc.Channels)
	}
	switch desc.ChannelBits {
	case 8, 16, 32:
	default:
		return fmt.Errorf("%w: %d bits per channel, want 8, 16 or 32", ErrInvalidFormat, desc.ChannelBits)
	}
	return validateSampling(desc.Sampling())
}

func validateSampling(s Sampling) error {
	if s.Filter > FilterNearest {
		return fmt.Errorf("%w: unknown filter %d", ErrInvalidFormat, s.Filter)
	}
	if s.WrapS > WrapClampToBorder || s.WrapT > WrapClampToBorder {
		return fmt.Errorf("%w: unknown wrap mode %s/%s", ErrInvalidFormat, s.WrapS, s.WrapT)
	}
	return nil
}

// NewTexture creates a texture. A nil pixels slice allocates zeroed
// storage; otherwise its length must be Width*Height*PixelSize.
func (c *Context) NewTexture(surface Surface, desc TextureDescriptor, pixels []byte) (*Texture, error) {
	if err := validateTextureDescriptor(desc); err != nil {
		return nil, err
	}
	want := desc.Width * desc.Height * desc.PixelSize()
	if pixels == nil {
		pixels = make([]byte, want)
	}
	if len(pixels) != want {
		return nil, fmt.Errorf("%w: got %d bytes of pixel data, want %d", ErrInvalidFormat, len(pixels), want)
	}
	if err := c.ensureCurrent(surface, "NewTexture"); err != nil {
		return nil, err
	}
	h, err := c.backend.CreateTexture(desc, pixels)
	if err != nil {
		return nil, fmt.Errorf("batch: create texture: %w", err)
	}
	return &Texture{ctx: c, surface: surface, handle: h, desc: desc}, nil
}

// NewTextureFromImage uploads img as an RGBA8 texture.
func (c *Context) NewTextureFromImage(surface Surface, img image.Image, filter Filter) (*Texture, error) {
	rgba := toRGBA(img)
	b := rgba.Bounds()
	return c.NewTexture(surface, TextureDescriptor{
		Width:       b.Dx(),
		Height:      b.Dy(),
		Channels:    4,
		ChannelBits: 8,
		Filter:      filter,
	}, rgba.Pix)
}

// toRGBA returns img as a tightly packed *image.RGBA with origin (0,0).
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Handle returns the backend handle.
func (t *Texture) Handle() TextureHandle { return t.handle }

// Descriptor returns the storage description.
func (t *Texture) Descriptor() TextureDescriptor { return t.desc }

// Width returns the width in pixels.
func (t *Texture) Width() int { return t.desc.Width }

// Height returns the height in pixels.
func (t *Texture) Height() int { return t.desc.Height }

// Bind binds the texture at slot. Rebinding the texture already at slot is
// a no-op. Batchers sharing the context flush first.
func (t *Texture) Bind(slot int) error {
	if t.destroyed {
		return ErrDestroyed
	}
	if slot < 0 || slot >= MaxTextureSlots {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	if err := t.ctx.ensureCurrent(t.surface, "Texture.Bind"); err != nil {
		return err
	}
	if t.ctx.textures[slot] == t {
		return nil
	}
	if err := t.ctx.beforeStateChange("texture change"); err != nil {
		return err
	}
	t.ctx.backend.BindTexture(t.handle, slot)
	t.ctx.textures[slot] = t
	Logger().Debug("batch: texture bound", "handle", t.handle, "slot", slot)
	return nil
}

// IsBound reports whether the texture is bound at slot.
func (t *Texture) IsBound(slot int) bool {
	return t.ctx.textures[slot] == t
}

// SetPixels overwrites the region (x, y, w, h) with tightly packed pixels.
func (t *Texture) SetPixels(x, y, w, h int, pixels []byte) error {
	if t.destroyed {
		return ErrDestroyed
	}
	if err := t.checkRegion(x, y, w, h); err != nil {
		return err
	}
	if want := w * h * t.desc.PixelSize(); len(pixels) != want {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidFormat, len(pixels), want)
	}
	if err := t.ctx.ensureCurrent(t.surface, "SetPixels"); err != nil {
		return err
	}
	// Geometry already batched must sample the old contents.
	if t.isBoundAnywhere() {
		if err := t.ctx.beforeStateChange("texture update"); err != nil {
			return err
		}
	}
	if err := t.ctx.backend.UpdateTexture(t.handle, x, y, w, h, pixels); err != nil {
		return fmt.Errorf("batch: update texture: %w", err)
	}
	return nil
}

// SetPixel writes the pixel at (x, y). Components the format lacks are
// dropped.
func (t *Texture) SetPixel(x, y int, c RGBA) error {
	return t.SetPixels(x, y, 1, 1, encodePixel(t.desc, c))
}

// ReadPixels returns the region (x, y, w, h) tightly packed in the
// texture's format.
func (t *Texture) ReadPixels(x, y, w, h int) ([]byte, error) {
	if t.destroyed {
		return nil, ErrDestroyed
	}
	if err := t.checkRegion(x, y, w, h); err != nil {
		return nil, err
	}
	if err := t.ctx.ensureCurrent(t.surface, "ReadPixels"); err != nil {
		return nil, err
	}
	pixels, err := t.ctx.backend.ReadTexture(t.handle, x, y, w, h)
	if err != nil {
		return nil, fmt.Errorf("batch: read texture: %w", err)
	}
	if want := w * h * t.desc.PixelSize(); len(pixels) != want {
		return nil, fmt.Errorf("batch: read texture: got %d bytes, want %d", len(pixels), want)
	}
	return pixels, nil
}

// Pixel returns the color at (x, y). Missing color components read as 0,
// a missing alpha as 1.
func (t *Texture) Pixel(x, y int) (RGBA, error) {
	pixels, err := t.ReadPixels(x, y, 1, 1)
	if err != nil {
		return RGBA{}, err
	}
	return decodePixel(t.desc, pixels), nil
}

// SetFilter changes how the texture is sampled.
func (t *Texture) SetFilter(f Filter) error {
	s := t.desc.Sampling()
	s.Filter = f
	return t.setSampling(s)
}

// SetWrap sets the wrap modes along the horizontal (s) and vertical (t)
// texture axes.
func (t *Texture) SetWrap(s, tw Wrap) error {
	smp := t.desc.Sampling()
	smp.WrapS, smp.WrapT = s, tw
	return t.setSampling(smp)
}

// SetBorderColor sets the color sampled outside a WrapClampToBorder axis.
func (t *Texture) SetBorderColor(c RGBA) error {
	s := t.desc.Sampling()
	s.Border = c
	return t.setSampling(s)
}

func (t *Texture) setSampling(s Sampling) error {
	if t.destroyed {
		return ErrDestroyed
	}
	if err := validateSampling(s); err != nil {
		return err
	}
	if s == t.desc.Sampling() {
		return nil
	}
	if err := t.ctx.ensureCurrent(t.surface, "SetSampling"); err != nil {
		return err
	}
	if t.isBoundAnywhere() {
		if err := t.ctx.beforeStateChange("texture sampling"); err != nil {
			return err
		}
	}
	if err := t.ctx.backend.SetTextureSampling(t.handle, s); err != nil {
		return fmt.Errorf("batch: texture sampling: %w", err)
	}
	t.desc.Filter, t.desc.WrapS, t.desc.WrapT, t.desc.Border = s.Filter, s.WrapS, s.WrapT, s.Border
	return nil
}

func (t *Texture) checkRegion(x, y, w, h int) error {
	if x < 0 || y < 0 || w <= 0 || h <= 0 || x+w > t.desc.Width || y+h > t.desc.Height {
		return fmt.Errorf("%w: region (%d,%d %dx%d) outside %dx%d texture",
			ErrInvalidFormat, x, y, w, h, t.desc.Width, t.desc.Height)
	}
	return nil
}

func (t *Texture) isBoundAnywhere() bool {
	for _, bound := range t.ctx.textures {
		if bound == t {
			return true
		}
	}
	return false
}

// Destroy releases the texture and unbinds it from every slot.
func (t *Texture) Destroy() {
	if t.destroyed {
		return
	}
	for slot, bound := range t.ctx.textures {
		if bound == t {
			delete(t.ctx.textures, slot)
		}
	}
	t.ctx.backend.DestroyTexture(t.handle)
	t.destroyed = true
}
