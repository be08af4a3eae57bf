//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/batch"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

type pipelineKey struct {
	topology gputypes.PrimitiveTopology
	format   gputypes.TextureFormat
}

// program owns the shader modules, bind group layout and per-topology
// pipelines of one compiled program, plus its upload buffers.
type program struct {
	vertexModule   hal.ShaderModule
	fragmentModule hal.ShaderModule
	bindLayout     hal.BindGroupLayout
	pipeLayout     hal.PipelineLayout
	pipelines      map[pipelineKey]hal.RenderPipeline

	bindings []binding
	slots    map[string]int // name -> index into bindings
	uniforms map[int]hal.Buffer
	units    map[int]int // texture binding -> texture unit

	layout    batch.VertexLayout
	hasLayout bool

	vertices  []byte
	indices   []uint32
	assembled []uint32

	vertexBuf hal.Buffer
	vertexCap uint64
	indexBuf  hal.Buffer
	indexCap  uint64
}

// CompileProgram validates both WGSL sources with naga, reflects their
// bindings and creates the shader modules, one uniform buffer per
// var<uniform> and the pipeline layout. Pipelines are created on first draw.
func (b *Backend) CompileProgram(vertexSource, fragmentSource string) (batch.ProgramHandle, error) {
	if _, err := naga.Compile(vertexSource); err != nil {
		return 0, &batch.CompileError{Stage: "vertex", Log: err.Error()}
	}
	if _, err := naga.Compile(fragmentSource); err != nil {
		return 0, &batch.CompileError{Stage: "fragment", Log: err.Error()}
	}
	bindings, err := reflectBindings(vertexSource, fragmentSource)
	if err != nil {
		return 0, &batch.CompileError{Stage: "link", Log: err.Error()}
	}

	p := &program{
		bindings:  bindings,
		slots:     make(map[string]int, len(bindings)),
		uniforms:  make(map[int]hal.Buffer),
		units:     make(map[int]int),
		pipelines: make(map[pipelineKey]hal.RenderPipeline),
	}
	if err := b.createProgramObjects(p, vertexSource, fragmentSource); err != nil {
		b.destroyProgramObjects(p)
		return 0, err
	}

	b.nextProgram++
	h := b.nextProgram
	b.programs[h] = p
	batch.Logger().Debug("wgpu: program compiled", "program", h, "bindings", len(bindings))
	return h, nil
}

func (b *Backend) createProgramObjects(p *program, vertexSource, fragmentSource string) error {
	var err error
	p.vertexModule, err = b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "batch_vertex",
		Source: hal.ShaderSource{WGSL: vertexSource},
	})
	if err != nil {
		return fmt.Errorf("create vertex shader module: %w", err)
	}
	p.fragmentModule, err = b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "batch_fragment",
		Source: hal.ShaderSource{WGSL: fragmentSource},
	})
	if err != nil {
		return fmt.Errorf("create fragment shader module: %w", err)
	}

	entries := make([]gputypes.BindGroupLayoutEntry, 0, len(p.bindings))
	unit := 0
	for i, bd := range p.bindings {
		entry := gputypes.BindGroupLayoutEntry{Binding: bd.index, Visibility: bd.visibility}
		switch bd.kind {
		case bindUniform:
			entry.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}
			buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
				Label: "batch_uniform_" + bd.name,
				Size:  bd.size,
				Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
			})
			if err != nil {
				return fmt.Errorf("create uniform buffer %s: %w", bd.name, err)
			}
			p.uniforms[i] = buf
			b.queue.WriteBuffer(buf, 0, make([]byte, bd.size))
			p.slots[bd.name] = i
		case bindTexture:
			entry.Texture = &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			}
			p.units[i] = unit
			unit++
			p.slots[bd.name] = i
		case bindSampler:
			entry.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}
		}
		entries = append(entries, entry)
	}

	p.bindLayout, err = b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "batch_bind_layout",
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	p.pipeLayout, err = b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "batch_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	return nil
}

func (b *Backend) destroyPipelines(p *program) {
	for k, pl := range p.pipelines {
		b.device.DestroyRenderPipeline(pl)
		delete(p.pipelines, k)
	}
}

func (b *Backend) destroyProgramObjects(p *program) {
	b.destroyPipelines(p)
	if p.pipeLayout != nil {
		b.device.DestroyPipelineLayout(p.pipeLayout)
	}
	if p.bindLayout != nil {
		b.device.DestroyBindGroupLayout(p.bindLayout)
	}
	for _, buf := range p.uniforms {
		b.device.DestroyBuffer(buf)
	}
	if p.vertexBuf != nil {
		b.device.DestroyBuffer(p.vertexBuf)
	}
	if p.indexBuf != nil {
		b.device.DestroyBuffer(p.indexBuf)
	}
	if p.fragmentModule != nil {
		b.device.DestroyShaderModule(p.fragmentModule)
	}
	if p.vertexModule != nil {
		b.device.DestroyShaderModule(p.vertexModule)
	}
}

// DestroyProgram implements batch.Backend.
func (b *Backend) DestroyProgram(h batch.ProgramHandle) {
	p, ok := b.programs[h]
	if !ok {
		return
	}
	b.destroyProgramObjects(p)
	delete(b.programs, h)
	if b.active == h {
		b.active = 0
	}
}

// UniformSlot resolves a var<uniform> or texture_2d name.
func (b *Backend) UniformSlot(h batch.ProgramHandle, name string) (int, bool) {
	p, ok := b.programs[h]
	if !ok {
		return -1, false
	}
	slot, ok := p.slots[name]
	if !ok {
		return -1, false
	}
	return slot, true
}

// ConfigureLayout records the vertex layout. Pipelines built for a previous
// layout are dropped.
func (b *Backend) ConfigureLayout(h batch.ProgramHandle, layout batch.VertexLayout) error {
	p, ok := b.programs[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownProgram, h)
	}
	if _, err := vertexBufferLayout(layout); err != nil {
		return err
	}
	b.destroyPipelines(p)
	p.layout = layout
	p.hasLayout = true
	return nil
}

// UseProgram implements batch.Backend.
func (b *Backend) UseProgram(h batch.ProgramHandle) { b.active = h }

// UploadVertices stages vertex bytes; they reach the GPU with the next draw.
func (b *Backend) UploadVertices(h batch.ProgramHandle, data []byte) {
	if p, ok := b.programs[h]; ok {
		p.vertices = append(p.vertices[:0], data...)
	}
}

// UploadIndices stages indices; they are assembled for the draw topology
// and uploaded with the next draw.
func (b *Backend) UploadIndices(h batch.ProgramHandle, indices []uint32) {
	if p, ok := b.programs[h]; ok {
		p.indices = append(p.indices[:0], indices...)
	}
}

// SetUniformInts implements batch.Backend. An int on a texture slot selects
// the texture unit it samples.
func (b *Backend) SetUniformInts(h batch.ProgramHandle, slot int, kind batch.UniformKind, values []int32) {
	p, ok := b.programs[h]
	if !ok || slot < 0 || slot >= len(p.bindings) {
		return
	}
	if p.bindings[slot].kind == bindTexture {
		if len(values) > 0 {
			p.units[slot] = int(values[0])
		}
		return
	}
	b.writeUniform(p, slot, packUniform(kind, intWords(values)))
}

// SetUniformFloats implements batch.Backend.
func (b *Backend) SetUniformFloats(h batch.ProgramHandle, slot int, kind batch.UniformKind, values []float32) {
	p, ok := b.programs[h]
	if !ok || slot < 0 || slot >= len(p.bindings) {
		return
	}
	b.writeUniform(p, slot, packUniform(kind, floatWords(values)))
}

func (b *Backend) writeUniform(p *program, slot int, data []byte) {
	buf, ok := p.uniforms[slot]
	if !ok {
		return
	}
	b.queue.WriteBuffer(buf, 0, fitUniform(data, p.bindings[slot].size))
}

// vertexBufferLayout converts a batch layout into the single interleaved
// vertex buffer of a pipeline.
func vertexBufferLayout(layout batch.VertexLayout) (gputypes.VertexBufferLayout, error) {
	attrs := make([]gputypes.VertexAttribute, 0, len(layout.Attributes))
	for _, a := range layout.Attributes {
		f, err := vertexFormat(a.AttributeDescriptor)
		if err != nil {
			return gputypes.VertexBufferLayout{}, err
		}
		attrs = append(attrs, gputypes.VertexAttribute{
			Format:         f,
			Offset:         uint64(a.Offset),
			ShaderLocation: a.Location,
		})
	}
	return gputypes.VertexBufferLayout{
		ArrayStride: uint64(layout.Stride),
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes:  attrs,
	}, nil
}

func vertexFormat(d batch.AttributeDescriptor) (gputypes.VertexFormat, error) {
	floats := [...]gputypes.VertexFormat{
		gputypes.VertexFormatFloat32,
		gputypes.VertexFormatFloat32x2,
		gputypes.VertexFormatFloat32x3,
		gputypes.VertexFormatFloat32x4,
	}
	ints := [...]gputypes.VertexFormat{
		gputypes.VertexFormatSint32,
		gputypes.VertexFormatSint32x2,
		gputypes.VertexFormatSint32x3,
		gputypes.VertexFormatSint32x4,
	}
	if d.Components < 1 || d.Components > 4 {
		return 0, fmt.Errorf("%w: location %d has %d components", batch.ErrInvalidAttribute, d.Location, d.Components)
	}
	if d.Kind == batch.ScalarInt {
		return ints[d.Components-1], nil
	}
	return floats[d.Components-1], nil
}

// pipeline returns the render pipeline for a topology and target format,
// creating it on first use.
func (b *Backend) pipeline(p *program, topology gputypes.PrimitiveTopology, format gputypes.TextureFormat) (hal.RenderPipeline, error) {
	key := pipelineKey{topology: topology, format: format}
	if pl, ok := p.pipelines[key]; ok {
		return pl, nil
	}
	vbl, err := vertexBufferLayout(p.layout)
	if err != nil {
		return nil, err
	}
	premulBlend := gputypes.BlendStatePremultiplied()
	pl, err := b.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "batch_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.vertexModule,
			EntryPoint: "vs_main",
			Buffers:    []gputypes.VertexBufferLayout{vbl},
		},
		Fragment: &hal.FragmentState{
			Module:     p.fragmentModule,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: topology,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create pipeline: %w", err)
	}
	p.pipelines[key] = pl
	return pl, nil
}
