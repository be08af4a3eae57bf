//go:build !nogl

package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v3.2-core/gl"
	"github.com/gogpu/batch"
)

// pixelFormat is the GL description of a texture descriptor.
type pixelFormat struct {
	internal int32
	format   uint32
	xtype    uint32
}

func texturePixelFormat(desc batch.TextureDescriptor) (pixelFormat, error) {
	formats := [...]uint32{gl.RED, gl.RG, gl.RGB, gl.RGBA}
	internal := map[int][4]int32{
		8:  {gl.R8, gl.RG8, gl.RGB8, gl.RGBA8},
		16: {gl.R16, gl.RG16, gl.RGB16, gl.RGBA16},
		32: {gl.R32F, gl.RG32F, gl.RGB32F, gl.RGBA32F},
	}
	types := map[int]uint32{8: gl.UNSIGNED_BYTE, 16: gl.UNSIGNED_SHORT, 32: gl.FLOAT}

	if desc.Channels < 1 || desc.Channels > 4 {
		return pixelFormat{}, fmt.Errorf("%w: %d channels", batch.ErrInvalidFormat, desc.Channels)
	}
	in, ok := internal[desc.ChannelBits]
	if !ok {
		return pixelFormat{}, fmt.Errorf("%w: %d-bit channels", batch.ErrInvalidFormat, desc.ChannelBits)
	}
	return pixelFormat{
		internal: in[desc.Channels-1],
		format:   formats[desc.Channels-1],
		xtype:    types[desc.ChannelBits],
	}, nil
}

func filterParam(f batch.Filter) int32 {
	if f == batch.FilterNearest {
		return gl.NEAREST
	}
	return gl.LINEAR
}

func wrapParam(w batch.Wrap) int32 {
	switch w {
	case batch.WrapRepeat:
		return gl.REPEAT
	case batch.WrapMirroredRepeat:
		return gl.MIRRORED_REPEAT
	case batch.WrapClampToBorder:
		return gl.CLAMP_TO_BORDER
	default:
		return gl.CLAMP_TO_EDGE
	}
}

// applySampling sets the sampler parameters of the texture bound to the
// active unit.
func applySampling(s batch.Sampling) {
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrapParam(s.WrapS))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrapParam(s.WrapT))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filterParam(s.Filter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filterParam(s.Filter))
	r, g, bl, a := s.Border.Float32()
	border := [4]float32{r, g, bl, a}
	gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &border[0])
}

// restoreUnit0 rebinds the texture BindTexture last put on unit 0, which
// uploads replace.
func (b *Backend) restoreUnit0() {
	var id uint32
	if t, ok := b.textures[b.units[0]]; ok {
		id = t.id
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, id)
}

// CreateTexture implements batch.Backend.
func (b *Backend) CreateTexture(desc batch.TextureDescriptor, pixels []byte) (batch.TextureHandle, error) {
	pf, err := texturePixelFormat(desc)
	if err != nil {
		return 0, err
	}
	var id uint32
	gl.GenTextures(1, &id)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	applySampling(desc.Sampling())
	gl.TexImage2D(gl.TEXTURE_2D, 0, pf.internal, int32(desc.Width), int32(desc.Height), 0,
		pf.format, pf.xtype, gl.Ptr(pixels))
	code := gl.GetError()
	b.restoreUnit0()
	if code != gl.NO_ERROR {
		gl.DeleteTextures(1, &id)
		return 0, fmt.Errorf("opengl: create texture: GL error 0x%x", code)
	}

	b.nextTexture++
	h := b.nextTexture
	b.textures[h] = &texture{id: id, desc: desc}
	return h, nil
}

// UpdateTexture implements batch.Backend.
func (b *Backend) UpdateTexture(h batch.TextureHandle, x, y, width, height int, pixels []byte) error {
	t, ok := b.textures[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, h)
	}
	pf, err := texturePixelFormat(t.desc)
	if err != nil {
		return err
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, int32(x), int32(y), int32(width), int32(height),
		pf.format, pf.xtype, gl.Ptr(pixels))
	b.restoreUnit0()
	return nil
}

// ReadTexture reads the whole level 0 image back and crops the region.
func (b *Backend) ReadTexture(h batch.TextureHandle, x, y, width, height int) ([]byte, error) {
	t, ok := b.textures[h]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTexture, h)
	}
	pf, err := texturePixelFormat(t.desc)
	if err != nil {
		return nil, err
	}
	ps := t.desc.PixelSize()
	full := make([]byte, t.desc.Width*t.desc.Height*ps)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.GetTexImage(gl.TEXTURE_2D, 0, pf.format, pf.xtype, gl.Ptr(full))
	b.restoreUnit0()
	return crop(full, t.desc.Width, ps, x, y, width, height), nil
}

// crop copies the region (x, y, w, h) out of tightly packed rows of
// stride pixels.
func crop(src []byte, stride, ps, x, y, w, h int) []byte {
	out := make([]byte, 0, w*h*ps)
	for row := 0; row < h; row++ {
		off := ((y+row)*stride + x) * ps
		out = append(out, src[off:off+w*ps]...)
	}
	return out
}

// SetTextureSampling implements batch.Backend.
func (b *Backend) SetTextureSampling(h batch.TextureHandle, s batch.Sampling) error {
	t, ok := b.textures[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, h)
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	applySampling(s)
	b.restoreUnit0()
	t.desc.Filter, t.desc.WrapS, t.desc.WrapT, t.desc.Border = s.Filter, s.WrapS, s.WrapT, s.Border
	return nil
}

// DestroyTexture implements batch.Backend.
func (b *Backend) DestroyTexture(h batch.TextureHandle) {
	t, ok := b.textures[h]
	if !ok {
		return
	}
	gl.DeleteTextures(1, &t.id)
	delete(b.textures, h)
	for unit, bound := range b.units {
		if bound == h {
			delete(b.units, unit)
		}
	}
}

// BindTexture binds the texture to a texture unit.
func (b *Backend) BindTexture(h batch.TextureHandle, slot int) {
	t, ok := b.textures[h]
	if !ok {
		return
	}
	gl.ActiveTexture(gl.TEXTURE0 + uint32(slot))
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	b.units[slot] = h
}
