//go:build !nogpu

package wgpu

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/batch"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrTargetDestroyed is returned when using a destroyed Target.
var ErrTargetDestroyed = errors.New("wgpu: target destroyed")

// Target is an offscreen color texture that implements batch.Surface. One
// Target of a backend is current at a time; draws go to it.
type Target struct {
	backend       *Backend
	width, height int
	format        gputypes.TextureFormat
	tex           hal.Texture
	view          hal.TextureView
	auto          bool

	// clear is applied by the next render pass.
	clear *gputypes.Color
}

var _ batch.Surface = (*Target)(nil)

// NewTarget creates a target in the backend's format, cleared to
// transparent black. The first target of a backend starts current.
func (b *Backend) NewTarget(width, height int) (*Target, error) {
	t := &Target{backend: b, format: b.format, auto: true}
	if err := t.allocate(width, height); err != nil {
		return nil, err
	}
	if b.current == nil {
		b.current = t
	}
	return t, nil
}

func (t *Target) allocate(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("wgpu: invalid target size %dx%d", width, height)
	}
	d := t.backend.device
	tex, err := d.CreateTexture(&hal.TextureDescriptor{
		Label:         "batch_target",
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        t.format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create target texture: %w", err)
	}
	view, err := d.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "batch_target_view",
		Format:        t.format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.DestroyTexture(tex)
		return fmt.Errorf("create target view: %w", err)
	}
	t.release()
	t.tex, t.view = tex, view
	t.width, t.height = width, height
	t.clear = &gputypes.Color{}
	return nil
}

func (t *Target) release() {
	d := t.backend.device
	if t.view != nil {
		d.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		d.DestroyTexture(t.tex)
		t.tex = nil
	}
}

// IsCurrent implements batch.Surface.
func (t *Target) IsCurrent() bool { return t.backend.current == t }

// MakeCurrent implements batch.Surface.
func (t *Target) MakeCurrent() error {
	if t.tex == nil {
		return ErrTargetDestroyed
	}
	t.backend.current = t
	return nil
}

// AutoMakeCurrent implements batch.Surface.
func (t *Target) AutoMakeCurrent() bool { return t.auto }

// SetAutoMakeCurrent controls on-demand activation.
func (t *Target) SetAutoMakeCurrent(auto bool) { t.auto = auto }

// Size implements batch.Surface.
func (t *Target) Size() (width, height int) { return t.width, t.height }

// Format returns the color format.
func (t *Target) Format() gputypes.TextureFormat { return t.format }

// Resize reallocates the texture. The contents are cleared.
func (t *Target) Resize(width, height int) error {
	if width == t.width && height == t.height {
		return nil
	}
	return t.allocate(width, height)
}

// Clear schedules a clear to c for the next render pass.
func (t *Target) Clear(c batch.RGBA) {
	t.clear = &gputypes.Color{R: c.R * c.A, G: c.G * c.A, B: c.B * c.A, A: c.A}
}

// Destroy releases the texture.
func (t *Target) Destroy() {
	t.release()
	if t.backend.current == t {
		t.backend.current = nil
	}
}

// colorAttachment consumes the pending clear.
func (t *Target) colorAttachment() hal.RenderPassColorAttachment {
	a := hal.RenderPassColorAttachment{
		View:    t.view,
		LoadOp:  gputypes.LoadOpLoad,
		StoreOp: gputypes.StoreOpStore,
	}
	if t.clear != nil {
		a.LoadOp = gputypes.LoadOpClear
		a.ClearValue = *t.clear
		t.clear = nil
	}
	return a
}

// Snapshot copies the target to the CPU. The target holds premultiplied
// color, which is what image.RGBA stores.
func (t *Target) Snapshot() (*image.RGBA, error) {
	if t.tex == nil {
		return nil, ErrTargetDestroyed
	}
	b := t.backend
	w, h := uint32(t.width), uint32(t.height)

	bytesPerRow := w * 4
	const copyPitchAlignment = 256
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "batch_target_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer b.device.DestroyBuffer(staging)

	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "batch_snapshot"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("batch_snapshot"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	if t.clear != nil {
		rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
			Label:            "batch_clear",
			ColorAttachments: []hal.RenderPassColorAttachment{t.colorAttachment()},
		})
		rp.End()
	}

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(t.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
	if err := b.submit(encoder); err != nil {
		return nil, err
	}

	readback := make([]byte, stagingSize)
	if err := b.queue.ReadBuffer(staging, 0, readback); err != nil {
		return nil, fmt.Errorf("readback: %w", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, t.width, t.height))
	for y := 0; y < t.height; y++ {
		src := readback[uint32(y)*alignedBytesPerRow:][:bytesPerRow]
		copy(img.Pix[y*img.Stride:], src)
	}
	if t.format == gputypes.TextureFormatBGRA8Unorm {
		swapRB(img.Pix)
	}
	clampPremultiplied(img.Pix)
	return img, nil
}

func swapRB(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}

// clampPremultiplied keeps every color channel at or below alpha, which
// image.RGBA requires and additive blending can violate.
func clampPremultiplied(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		a := pix[i+3]
		for c := 0; c < 3; c++ {
			if pix[i+c] > a {
				pix[i+c] = a
			}
		}
	}
}
