//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/batch"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// texture is a sampled GPU texture with a CPU copy of its pixels in the GPU
// layout. Updates patch the copy and re-upload it.
type texture struct {
	desc   batch.TextureDescriptor
	format gputypes.TextureFormat
	bpp    int // bytes per pixel on the GPU
	pixels []byte
	tex    hal.Texture
	view   hal.TextureView
}

// textureFormat maps a descriptor to a sampled format. Three-channel data
// is widened to RGBA with opaque alpha.
func textureFormat(desc batch.TextureDescriptor) (gputypes.TextureFormat, int, error) {
	if desc.ChannelBits != 8 {
		return 0, 0, fmt.Errorf("%w: %d-bit channels", ErrUnsupportedFormat, desc.ChannelBits)
	}
	switch desc.Channels {
	case 1:
		return gputypes.TextureFormatR8Unorm, 1, nil
	case 2:
		return gputypes.TextureFormatRG8Unorm, 2, nil
	case 3, 4:
		return gputypes.TextureFormatRGBA8Unorm, 4, nil
	default:
		return 0, 0, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, desc.Channels)
	}
}

// widen converts src rows from the descriptor layout to the GPU layout.
func widen(desc batch.TextureDescriptor, bpp int, src []byte, pixels int) []byte {
	if desc.Channels != 3 {
		out := make([]byte, pixels*bpp)
		copy(out, src)
		return out
	}
	out := make([]byte, pixels*4)
	for i := 0; i < pixels && i*3+2 < len(src); i++ {
		out[i*4] = src[i*3]
		out[i*4+1] = src[i*3+1]
		out[i*4+2] = src[i*3+2]
		out[i*4+3] = 0xFF
	}
	return out
}

// CreateTexture implements batch.Backend for 8-bit textures.
func (b *Backend) CreateTexture(desc batch.TextureDescriptor, pixels []byte) (batch.TextureHandle, error) {
	t, err := b.newTexture(desc, pixels)
	if err != nil {
		return 0, err
	}
	b.nextTexture++
	h := b.nextTexture
	b.textures[h] = t
	return h, nil
}

func (b *Backend) newTexture(desc batch.TextureDescriptor, pixels []byte) (*texture, error) {
	format, bpp, err := textureFormat(desc)
	if err != nil {
		return nil, err
	}
	t := &texture{
		desc:   desc,
		format: format,
		bpp:    bpp,
		pixels: widen(desc, bpp, pixels, desc.Width*desc.Height),
	}
	t.tex, err = b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "batch_texture",
		Size:          hal.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}
	t.view, err = b.device.CreateTextureView(t.tex, &hal.TextureViewDescriptor{
		Label:         "batch_texture_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		b.device.DestroyTexture(t.tex)
		return nil, fmt.Errorf("create texture view: %w", err)
	}
	b.upload(t)
	return t, nil
}

func (b *Backend) upload(t *texture) {
	w, h := uint32(t.desc.Width), uint32(t.desc.Height)
	b.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		t.pixels,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: w * uint32(t.bpp), RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
}

func (t *texture) destroy(device hal.Device) {
	if t.view != nil {
		device.DestroyTextureView(t.view)
	}
	if t.tex != nil {
		device.DestroyTexture(t.tex)
	}
}

// UpdateTexture implements batch.Backend.
func (b *Backend) UpdateTexture(h batch.TextureHandle, x, y, width, height int, pixels []byte) error {
	t, ok := b.textures[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, h)
	}
	if x < 0 || y < 0 || x+width > t.desc.Width || y+height > t.desc.Height {
		return ErrRegionOutOfBounds
	}
	region := widen(t.desc, t.bpp, pixels, width*height)
	rowBytes := width * t.bpp
	for row := 0; row < height; row++ {
		dst := ((y+row)*t.desc.Width + x) * t.bpp
		copy(t.pixels[dst:dst+rowBytes], region[row*rowBytes:])
	}
	b.upload(t)
	return nil
}

// narrow converts GPU-layout pixels back to the descriptor layout.
func narrow(desc batch.TextureDescriptor, src []byte) []byte {
	if desc.Channels != 3 {
		return append([]byte(nil), src...)
	}
	out := make([]byte, 0, len(src)/4*3)
	for i := 0; i+3 < len(src); i += 4 {
		out = append(out, src[i], src[i+1], src[i+2])
	}
	return out
}

// ReadTexture implements batch.Backend from the CPU copy, which always
// matches the last upload.
func (b *Backend) ReadTexture(h batch.TextureHandle, x, y, width, height int) ([]byte, error) {
	t, ok := b.textures[h]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTexture, h)
	}
	if x < 0 || y < 0 || x+width > t.desc.Width || y+height > t.desc.Height {
		return nil, ErrRegionOutOfBounds
	}
	rowBytes := width * t.bpp
	region := make([]byte, 0, rowBytes*height)
	for row := 0; row < height; row++ {
		src := ((y+row)*t.desc.Width + x) * t.bpp
		region = append(region, t.pixels[src:src+rowBytes]...)
	}
	return narrow(t.desc, region), nil
}

// SetTextureSampling implements batch.Backend. Samplers are chosen per
// draw, so only the descriptor changes.
func (b *Backend) SetTextureSampling(h batch.TextureHandle, s batch.Sampling) error {
	t, ok := b.textures[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, h)
	}
	if (s.WrapS == batch.WrapClampToBorder || s.WrapT == batch.WrapClampToBorder) &&
		t.desc.WrapS != batch.WrapClampToBorder && t.desc.WrapT != batch.WrapClampToBorder {
		batch.Logger().Warn("wgpu: clamp-to-border is not supported, clamping to edge", "texture", h)
	}
	t.desc.Filter, t.desc.WrapS, t.desc.WrapT, t.desc.Border = s.Filter, s.WrapS, s.WrapT, s.Border
	return nil
}

// DestroyTexture implements batch.Backend.
func (b *Backend) DestroyTexture(h batch.TextureHandle) {
	t, ok := b.textures[h]
	if !ok {
		return
	}
	t.destroy(b.device)
	delete(b.textures, h)
	for slot, bound := range b.bound {
		if bound == h {
			delete(b.bound, slot)
		}
	}
}

// BindTexture implements batch.Backend.
func (b *Backend) BindTexture(h batch.TextureHandle, slot int) { b.bound[slot] = h }

// textureAt returns the texture bound to a unit, or a 1x1 white texture.
func (b *Backend) textureAt(unit int) (*texture, error) {
	if t, ok := b.textures[b.bound[unit]]; ok {
		return t, nil
	}
	if b.fallback == nil {
		t, err := b.newTexture(batch.TextureDescriptor{Width: 1, Height: 1, Channels: 4, ChannelBits: 8},
			[]byte{0xFF, 0xFF, 0xFF, 0xFF})
		if err != nil {
			return nil, err
		}
		b.fallback = t
	}
	return b.fallback, nil
}

// samplerKey is the part of batch.Sampling a WebGPU sampler can express.
// The border color is not among it.
type samplerKey struct {
	filter batch.Filter
	u, v   gputypes.AddressMode
}

// addressMode maps a wrap mode. WebGPU has no border color, so
// WrapClampToBorder clamps to the edge texel.
func addressMode(w batch.Wrap) gputypes.AddressMode {
	switch w {
	case batch.WrapRepeat:
		return gputypes.AddressModeRepeat
	case batch.WrapMirroredRepeat:
		return gputypes.AddressModeMirrorRepeat
	default:
		return gputypes.AddressModeClampToEdge
	}
}

// sampler returns the cached sampler for a sampling state.
func (b *Backend) sampler(smp batch.Sampling) (hal.Sampler, error) {
	key := samplerKey{filter: smp.Filter, u: addressMode(smp.WrapS), v: addressMode(smp.WrapT)}
	if s, ok := b.samplers[key]; ok {
		return s, nil
	}
	mode := gputypes.FilterModeLinear
	if key.filter == batch.FilterNearest {
		mode = gputypes.FilterModeNearest
	}
	s, err := b.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "batch_sampler",
		AddressModeU: key.u,
		AddressModeV: key.v,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    mode,
		MinFilter:    mode,
		MipmapFilter: mode,
	})
	if err != nil {
		return nil, fmt.Errorf("create sampler: %w", err)
	}
	b.samplers[key] = s
	return s, nil
}
