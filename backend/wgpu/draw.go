//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/batch"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DrawIndexed uploads the staged vertices and the first count staged
// indices, then draws them into the current target in one render pass and
// waits for the GPU.
func (b *Backend) DrawIndexed(h batch.ProgramHandle, topology batch.Topology, count int) error {
	p, ok := b.programs[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownProgram, h)
	}
	if !p.hasLayout || p.layout.Stride == 0 {
		return ErrNoLayout
	}
	target := b.current
	if target == nil || target.view == nil {
		return ErrNoTarget
	}
	if count > len(p.indices) {
		count = len(p.indices)
	}
	prim, err := primitiveTopology(topology)
	if err != nil {
		return err
	}
	p.assembled = assembleIndices(p.assembled[:0], topology, p.indices[:count])
	if len(p.assembled) == 0 || len(p.vertices) == 0 {
		return nil
	}

	if err := b.stage(p); err != nil {
		return err
	}
	pipeline, err := b.pipeline(p, prim, target.format)
	if err != nil {
		return err
	}
	bindGroup, err := b.bindGroup(p)
	if err != nil {
		return err
	}
	if bindGroup != nil {
		defer b.device.DestroyBindGroup(bindGroup)
	}

	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "batch_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("batch_draw"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:            "batch_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{target.colorAttachment()},
	})
	rp.SetPipeline(pipeline)
	if bindGroup != nil {
		rp.SetBindGroup(0, bindGroup, nil)
	}
	rp.SetVertexBuffer(0, p.vertexBuf, 0)
	rp.SetIndexBuffer(p.indexBuf, gputypes.IndexFormatUint32, 0)
	rp.DrawIndexed(uint32(len(p.assembled)), 1, 0, 0, 0)
	rp.End()

	if err := b.submit(encoder); err != nil {
		return err
	}
	batch.Logger().Debug("wgpu: draw", "program", h, "topology", topology,
		"indices", len(p.assembled), "vertexBytes", len(p.vertices))
	return nil
}

// stage copies the staged vertices and assembled indices into the
// program's buffers, growing them when needed.
func (b *Backend) stage(p *program) error {
	vertexBytes := p.vertices
	if pad := len(vertexBytes) % 4; pad != 0 {
		vertexBytes = append(vertexBytes, make([]byte, 4-pad)...)
	}
	if err := b.ensureBuffer(&p.vertexBuf, &p.vertexCap, uint64(len(vertexBytes)),
		"batch_vertices", gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst); err != nil {
		return err
	}
	indexBytes := uint32Bytes(p.assembled)
	if err := b.ensureBuffer(&p.indexBuf, &p.indexCap, uint64(len(indexBytes)),
		"batch_indices", gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst); err != nil {
		return err
	}
	b.queue.WriteBuffer(p.vertexBuf, 0, vertexBytes)
	b.queue.WriteBuffer(p.indexBuf, 0, indexBytes)
	return nil
}

// ensureBuffer replaces buf with a larger one when size exceeds its
// capacity. Capacity grows to the next power of two.
func (b *Backend) ensureBuffer(buf *hal.Buffer, capacity *uint64, size uint64, label string, usage gputypes.BufferUsage) error {
	if *buf != nil && size <= *capacity {
		return nil
	}
	newCap := uint64(256)
	for newCap < size {
		newCap *= 2
	}
	nb, err := b.device.CreateBuffer(&hal.BufferDescriptor{Label: label, Size: newCap, Usage: usage})
	if err != nil {
		return fmt.Errorf("create %s: %w", label, err)
	}
	if *buf != nil {
		b.device.DestroyBuffer(*buf)
	}
	*buf, *capacity = nb, newCap
	return nil
}

// bindGroup builds the per-draw bind group: uniform buffers, the textures
// of the units each texture_2d samples and one sampler matching the first
// texture's sampling.
func (b *Backend) bindGroup(p *program) (hal.BindGroup, error) {
	if len(p.bindings) == 0 {
		return nil, nil //nolint:nilnil // programs without bindings draw without a bind group
	}
	entries := make([]gputypes.BindGroupEntry, 0, len(p.bindings))
	var sampling batch.Sampling
	firstTexture := true
	var samplerBindings []uint32
	for i, bd := range p.bindings {
		switch bd.kind {
		case bindUniform:
			entries = append(entries, gputypes.BindGroupEntry{
				Binding: bd.index,
				Resource: gputypes.BufferBinding{
					Buffer: p.uniforms[i].NativeHandle(), Offset: 0, Size: bd.size,
				},
			})
		case bindTexture:
			t, err := b.textureAt(p.units[i])
			if err != nil {
				return nil, err
			}
			if firstTexture {
				sampling = t.desc.Sampling()
				firstTexture = false
			}
			entries = append(entries, gputypes.BindGroupEntry{
				Binding:  bd.index,
				Resource: gputypes.TextureViewBinding{TextureView: t.view.NativeHandle()},
			})
		case bindSampler:
			samplerBindings = append(samplerBindings, bd.index)
		}
	}
	if len(samplerBindings) > 0 {
		s, err := b.sampler(sampling)
		if err != nil {
			return nil, err
		}
		for _, idx := range samplerBindings {
			entries = append(entries, gputypes.BindGroupEntry{
				Binding:  idx,
				Resource: gputypes.SamplerBinding{Sampler: s.NativeHandle()},
			})
		}
	}

	bg, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "batch_bind",
		Layout:  p.bindLayout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group: %w", err)
	}
	return bg, nil
}
