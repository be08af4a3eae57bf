package recording

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/gogpu/batch"
)

// Errors returned by the recording backend.
var (
	ErrUnknownProgram    = errors.New("recording: unknown program")
	ErrUnknownTexture    = errors.New("recording: unknown texture")
	ErrNoLayout          = errors.New("recording: program has no vertex layout")
	ErrIndexOutOfBounds  = errors.New("recording: index outside uploaded vertices")
	ErrCountOutOfBounds  = errors.New("recording: draw count exceeds uploaded indices")
	ErrRegionOutOfBounds = errors.New("recording: region outside texture")
)

// DrawCall is one recorded draw with the state it used.
type DrawCall struct {
	Program  batch.ProgramHandle
	Topology batch.Topology
	// Vertices is a copy of the vertex bytes uploaded before the draw.
	Vertices []byte
	// Indices are the Count indices drawn.
	Indices []uint32
	// Stride is the program's bytes per vertex.
	Stride int
	// Textures maps slots to the textures bound at draw time.
	Textures map[int]batch.TextureHandle
}

// VertexCount returns the number of uploaded vertices.
func (d DrawCall) VertexCount() int {
	if d.Stride == 0 {
		return 0
	}
	return len(d.Vertices) / d.Stride
}

// Uniform is the last value uploaded to a uniform slot.
type Uniform struct {
	Kind   batch.UniformKind
	Ints   []int32
	Floats []float32
}

type program struct {
	vertexSource   string
	fragmentSource string
	slots          map[string]int
	layout         batch.VertexLayout
	hasLayout      bool
	vertices       []byte
	indices        []uint32
	uniforms       map[int]Uniform
}

type texture struct {
	desc   batch.TextureDescriptor
	pixels []byte
}

// Backend is an in-memory batch.Backend.
//
// The Backend is not safe for concurrent use.
type Backend struct {
	nextProgram batch.ProgramHandle
	nextTexture batch.TextureHandle
	programs    map[batch.ProgramHandle]*program
	textures    map[batch.TextureHandle]*texture
	bound       map[int]batch.TextureHandle
	active      batch.ProgramHandle

	current *Surface

	commands []Command
	draws    []DrawCall
}

var _ batch.Backend = (*Backend)(nil)

// New creates an empty recording backend.
func New() *Backend {
	return &Backend{
		programs: make(map[batch.ProgramHandle]*program),
		textures: make(map[batch.TextureHandle]*texture),
		bound:    make(map[int]batch.TextureHandle),
	}
}

// Name implements batch.Backend.
func (b *Backend) Name() string { return "recording" }

func (b *Backend) record(c Command) { b.commands = append(b.commands, c) }

// CompileProgram accepts any pair of non-empty sources. Every identifier in
// either source becomes a uniform slot, so any uniform name the shaders
// mention resolves.
func (b *Backend) CompileProgram(vertexSource, fragmentSource string) (batch.ProgramHandle, error) {
	if strings.TrimSpace(vertexSource) == "" {
		return 0, &batch.CompileError{Stage: "vertex", Log: "empty source"}
	}
	if strings.TrimSpace(fragmentSource) == "" {
		return 0, &batch.CompileError{Stage: "fragment", Log: "empty source"}
	}
	b.nextProgram++
	h := b.nextProgram
	p := &program{
		vertexSource:   vertexSource,
		fragmentSource: fragmentSource,
		slots:          make(map[string]int),
		uniforms:       make(map[int]Uniform),
	}
	for _, src := range []string{vertexSource, fragmentSource} {
		for _, ident := range identifiers(src) {
			if _, ok := p.slots[ident]; !ok {
				p.slots[ident] = len(p.slots)
			}
		}
	}
	b.programs[h] = p
	b.record(CompileCommand{Program: h})
	return h, nil
}

// identifiers splits source text into identifier tokens.
func identifiers(src string) []string {
	return strings.FieldsFunc(src, func(r rune) bool {
		return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// DestroyProgram implements batch.Backend.
func (b *Backend) DestroyProgram(h batch.ProgramHandle) {
	delete(b.programs, h)
	if b.active == h {
		b.active = 0
	}
	b.record(DestroyProgramCommand{Program: h})
}

// UniformSlot implements batch.Backend.
func (b *Backend) UniformSlot(h batch.ProgramHandle, name string) (int, bool) {
	p, ok := b.programs[h]
	if !ok {
		return -1, false
	}
	slot, ok := p.slots[name]
	return slot, ok
}

// ConfigureLayout implements batch.Backend.
func (b *Backend) ConfigureLayout(h batch.ProgramHandle, layout batch.VertexLayout) error {
	p, ok := b.programs[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownProgram, h)
	}
	p.layout = layout
	p.hasLayout = true
	b.record(ConfigureLayoutCommand{Program: h, Layout: layout})
	return nil
}

// UseProgram implements batch.Backend.
func (b *Backend) UseProgram(h batch.ProgramHandle) {
	b.active = h
	b.record(UseProgramCommand{Program: h})
}

// UploadVertices implements batch.Backend.
func (b *Backend) UploadVertices(h batch.ProgramHandle, data []byte) {
	if p, ok := b.programs[h]; ok {
		p.vertices = append(p.vertices[:0], data...)
	}
	b.record(UploadVerticesCommand{Program: h, Size: len(data)})
}

// UploadIndices implements batch.Backend.
func (b *Backend) UploadIndices(h batch.ProgramHandle, indices []uint32) {
	if p, ok := b.programs[h]; ok {
		p.indices = append(p.indices[:0], indices...)
	}
	b.record(UploadIndicesCommand{Program: h, Count: len(indices)})
}

// SetUniformInts implements batch.Backend.
func (b *Backend) SetUniformInts(h batch.ProgramHandle, slot int, kind batch.UniformKind, values []int32) {
	v := append([]int32(nil), values...)
	if p, ok := b.programs[h]; ok && slot >= 0 {
		p.uniforms[slot] = Uniform{Kind: kind, Ints: v}
	}
	b.record(SetUniformCommand{Program: h, Slot: slot, Kind: kind, Ints: v})
}

// SetUniformFloats implements batch.Backend.
func (b *Backend) SetUniformFloats(h batch.ProgramHandle, slot int, kind batch.UniformKind, values []float32) {
	v := append([]float32(nil), values...)
	if p, ok := b.programs[h]; ok && slot >= 0 {
		p.uniforms[slot] = Uniform{Kind: kind, Floats: v}
	}
	b.record(SetUniformCommand{Program: h, Slot: slot, Kind: kind, Floats: v})
}

// CreateTexture implements batch.Backend.
func (b *Backend) CreateTexture(desc batch.TextureDescriptor, pixels []byte) (batch.TextureHandle, error) {
	b.nextTexture++
	h := b.nextTexture
	b.textures[h] = &texture{desc: desc, pixels: append([]byte(nil), pixels...)}
	b.record(CreateTextureCommand{Texture: h, Descriptor: desc})
	return h, nil
}

// UpdateTexture implements batch.Backend.
func (b *Backend) UpdateTexture(h batch.TextureHandle, x, y, w, height int, pixels []byte) error {
	t, ok := b.textures[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, h)
	}
	if x+w > t.desc.Width || y+height > t.desc.Height {
		return ErrRegionOutOfBounds
	}
	ps := t.desc.PixelSize()
	for row := 0; row < height; row++ {
		dst := ((y+row)*t.desc.Width + x) * ps
		copy(t.pixels[dst:dst+w*ps], pixels[row*w*ps:])
	}
	b.record(UpdateTextureCommand{Texture: h, X: x, Y: y, Width: w, Height: height})
	return nil
}

// ReadTexture implements batch.Backend.
func (b *Backend) ReadTexture(h batch.TextureHandle, x, y, w, height int) ([]byte, error) {
	t, ok := b.textures[h]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTexture, h)
	}
	if x < 0 || y < 0 || x+w > t.desc.Width || y+height > t.desc.Height {
		return nil, ErrRegionOutOfBounds
	}
	ps := t.desc.PixelSize()
	out := make([]byte, 0, w*height*ps)
	for row := 0; row < height; row++ {
		src := ((y+row)*t.desc.Width + x) * ps
		out = append(out, t.pixels[src:src+w*ps]...)
	}
	return out, nil
}

// SetTextureSampling implements batch.Backend.
func (b *Backend) SetTextureSampling(h batch.TextureHandle, smp batch.Sampling) error {
	t, ok := b.textures[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, h)
	}
	t.desc.Filter, t.desc.WrapS, t.desc.WrapT, t.desc.Border = smp.Filter, smp.WrapS, smp.WrapT, smp.Border
	b.record(SetSamplingCommand{Texture: h, Sampling: smp})
	return nil
}

// DestroyTexture implements batch.Backend.
func (b *Backend) DestroyTexture(h batch.TextureHandle) {
	delete(b.textures, h)
	for slot, bound := range b.bound {
		if bound == h {
			delete(b.bound, slot)
		}
	}
	b.record(DestroyTextureCommand{Texture: h})
}

// BindTexture implements batch.Backend.
func (b *Backend) BindTexture(h batch.TextureHandle, slot int) {
	b.bound[slot] = h
	b.record(BindTextureCommand{Texture: h, Slot: slot})
}

// DrawIndexed validates the draw against the uploaded buffers and records
// it.
func (b *Backend) DrawIndexed(h batch.ProgramHandle, topology batch.Topology, count int) error {
	p, ok := b.programs[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownProgram, h)
	}
	if !p.hasLayout || p.layout.Stride == 0 {
		return ErrNoLayout
	}
	if count > len(p.indices) {
		return fmt.Errorf("%w: %d > %d", ErrCountOutOfBounds, count, len(p.indices))
	}
	vertexCount := uint32(len(p.vertices) / p.layout.Stride)
	for _, idx := range p.indices[:count] {
		if idx >= vertexCount {
			return fmt.Errorf("%w: %d >= %d", ErrIndexOutOfBounds, idx, vertexCount)
		}
	}

	textures := make(map[int]batch.TextureHandle, len(b.bound))
	for slot, t := range b.bound {
		textures[slot] = t
	}
	b.draws = append(b.draws, DrawCall{
		Program:  h,
		Topology: topology,
		Vertices: append([]byte(nil), p.vertices...),
		Indices:  append([]uint32(nil), p.indices[:count]...),
		Stride:   p.layout.Stride,
		Textures: textures,
	})
	b.record(DrawCommand{Program: h, Topology: topology, Count: count, Draw: len(b.draws) - 1})
	batch.Logger().Debug("recording: draw", "program", h, "topology", topology, "count", count)
	return nil
}

// DefaultShaders implements batch.Backend.
func (b *Backend) DefaultShaders() (vertex, fragment string) {
	return defaultVertexShader, defaultFragmentShader
}

// Commands returns every recorded command in call order.
func (b *Backend) Commands() []Command { return b.commands }

// Draws returns the recorded draw calls.
func (b *Backend) Draws() []DrawCall { return b.draws }

// Reset forgets recorded commands and draws. Programs, textures and
// bindings are kept.
func (b *Backend) Reset() {
	b.commands = nil
	b.draws = nil
}

// ActiveProgram returns the program passed to the last UseProgram.
func (b *Backend) ActiveProgram() batch.ProgramHandle { return b.active }

// BoundTexture returns the texture bound at slot.
func (b *Backend) BoundTexture(slot int) (batch.TextureHandle, bool) {
	h, ok := b.bound[slot]
	return h, ok
}

// Layout returns the configured layout of a program.
func (b *Backend) Layout(h batch.ProgramHandle) (batch.VertexLayout, bool) {
	p, ok := b.programs[h]
	if !ok || !p.hasLayout {
		return batch.VertexLayout{}, false
	}
	return p.layout, true
}

// UniformValue returns the last value uploaded to the named uniform.
func (b *Backend) UniformValue(h batch.ProgramHandle, name string) (Uniform, bool) {
	p, ok := b.programs[h]
	if !ok {
		return Uniform{}, false
	}
	slot, ok := p.slots[name]
	if !ok {
		return Uniform{}, false
	}
	u, ok := p.uniforms[slot]
	return u, ok
}

// TexturePixels returns the current contents of a texture.
func (b *Backend) TexturePixels(h batch.TextureHandle) ([]byte, bool) {
	t, ok := b.textures[h]
	if !ok {
		return nil, false
	}
	return t.pixels, true
}

// TextureSampling returns the sampler state of a texture.
func (b *Backend) TextureSampling(h batch.TextureHandle) (batch.Sampling, bool) {
	t, ok := b.textures[h]
	if !ok {
		return batch.Sampling{}, false
	}
	return t.desc.Sampling(), true
}

// Programs returns the number of live programs.
func (b *Backend) Programs() int { return len(b.programs) }

// Textures returns the number of live textures.
func (b *Backend) Textures() int { return len(b.textures) }

func init() {
	batch.RegisterBackend("recording", func() (batch.Backend, error) {
		return New(), nil
	})
}
