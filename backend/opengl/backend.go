//go:build !nogl

package opengl

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.2-core/gl"
	"github.com/gogpu/batch"
)

//go:embed shaders/batch.vert
var defaultVertexShader string

//go:embed shaders/batch.frag
var defaultFragmentShader string

// Errors returned by the OpenGL backend.
var (
	ErrUnknownProgram = errors.New("opengl: unknown program")
	ErrUnknownTexture = errors.New("opengl: unknown texture")
	ErrNoLayout       = errors.New("opengl: program has no vertex layout")
)

type program struct {
	id       uint32
	vao      uint32
	vbo      uint32
	ebo      uint32
	layout   batch.VertexLayout
	uniforms map[string]int32
}

type texture struct {
	id   uint32
	desc batch.TextureDescriptor
}

// Backend issues GL calls into whichever context is current.
//
// The Backend is not safe for concurrent use.
type Backend struct {
	nextProgram batch.ProgramHandle
	nextTexture batch.TextureHandle
	programs    map[batch.ProgramHandle]*program
	textures    map[batch.TextureHandle]*texture
	// units holds the texture bound at each unit by BindTexture.
	units  map[int]batch.TextureHandle
	active batch.ProgramHandle
}

var _ batch.Backend = (*Backend)(nil)

// New creates a backend. GL is loaded by the first OpenWindow.
func New() *Backend {
	return &Backend{
		programs: make(map[batch.ProgramHandle]*program),
		textures: make(map[batch.TextureHandle]*texture),
		units:    make(map[int]batch.TextureHandle),
	}
}

// Name implements batch.Backend.
func (b *Backend) Name() string { return "opengl" }

// DefaultShaders implements batch.Backend.
func (b *Backend) DefaultShaders() (vertex, fragment string) {
	return defaultVertexShader, defaultFragmentShader
}

// CompileProgram compiles both stages and links them. The info log of the
// failing stage is returned in the *batch.CompileError.
func (b *Backend) CompileProgram(vertexSource, fragmentSource string) (batch.ProgramHandle, error) {
	vs, err := compileShader(gl.VERTEX_SHADER, vertexSource)
	if err != nil {
		return 0, &batch.CompileError{Stage: "vertex", Log: err.Error()}
	}
	defer gl.DeleteShader(vs)
	fs, err := compileShader(gl.FRAGMENT_SHADER, fragmentSource)
	if err != nil {
		return 0, &batch.CompileError{Stage: "fragment", Log: err.Error()}
	}
	defer gl.DeleteShader(fs)

	id := gl.CreateProgram()
	gl.AttachShader(id, vs)
	gl.AttachShader(id, fs)
	gl.LinkProgram(id)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(id, logLength, nil, gl.Str(log))
		gl.DeleteProgram(id)
		return 0, &batch.CompileError{Stage: "link", Log: strings.TrimRight(log, "\x00")}
	}

	b.nextProgram++
	h := b.nextProgram
	b.programs[h] = &program{id: id, uniforms: make(map[string]int32)}
	batch.Logger().Debug("opengl: program linked", "program", h, "id", id)
	return h, nil
}

func compileShader(kind uint32, source string) (uint32, error) {
	shader := gl.CreateShader(kind)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, errors.New(strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

// DestroyProgram implements batch.Backend.
func (b *Backend) DestroyProgram(h batch.ProgramHandle) {
	p, ok := b.programs[h]
	if !ok {
		return
	}
	if p.vbo != 0 {
		gl.DeleteBuffers(1, &p.vbo)
	}
	if p.ebo != 0 {
		gl.DeleteBuffers(1, &p.ebo)
	}
	if p.vao != 0 {
		gl.DeleteVertexArrays(1, &p.vao)
	}
	gl.DeleteProgram(p.id)
	delete(b.programs, h)
	if b.active == h {
		b.active = 0
	}
}

// UniformSlot returns the uniform location. Names the linker optimized out
// resolve to -1 with ok set, the way glGetUniformLocation reports them.
func (b *Backend) UniformSlot(h batch.ProgramHandle, name string) (int, bool) {
	p, ok := b.programs[h]
	if !ok {
		return -1, false
	}
	loc, ok := p.uniforms[name]
	if !ok {
		loc = gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
		p.uniforms[name] = loc
	}
	return int(loc), loc >= 0
}

// ConfigureLayout creates the vertex array with its vertex and element
// buffers and points each attribute at its interleaved offset.
func (b *Backend) ConfigureLayout(h batch.ProgramHandle, layout batch.VertexLayout) error {
	p, ok := b.programs[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownProgram, h)
	}
	if p.vao == 0 {
		gl.GenVertexArrays(1, &p.vao)
		gl.GenBuffers(1, &p.vbo)
		gl.GenBuffers(1, &p.ebo)
	}
	gl.BindVertexArray(p.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, p.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, p.ebo)
	for _, a := range layout.Attributes {
		typ, integer, err := attribType(a.AttributeDescriptor)
		if err != nil {
			return err
		}
		if integer {
			gl.VertexAttribIPointerWithOffset(a.Location, int32(a.Components), typ, int32(layout.Stride), uintptr(a.Offset))
		} else {
			gl.VertexAttribPointerWithOffset(a.Location, int32(a.Components), typ, false, int32(layout.Stride), uintptr(a.Offset))
		}
		gl.EnableVertexAttribArray(a.Location)
	}
	p.layout = layout
	return nil
}

func attribType(d batch.AttributeDescriptor) (typ uint32, integer bool, err error) {
	if d.Components < 1 || d.Components > 4 {
		return 0, false, fmt.Errorf("%w: location %d has %d components", batch.ErrInvalidAttribute, d.Location, d.Components)
	}
	if d.Kind == batch.ScalarInt {
		return gl.INT, true, nil
	}
	return gl.FLOAT, false, nil
}

// UseProgram implements batch.Backend.
func (b *Backend) UseProgram(h batch.ProgramHandle) {
	p, ok := b.programs[h]
	if !ok {
		return
	}
	gl.UseProgram(p.id)
	b.active = h
}

// UploadVertices replaces the vertex buffer contents.
func (b *Backend) UploadVertices(h batch.ProgramHandle, data []byte) {
	p, ok := b.programs[h]
	if !ok || p.vbo == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, p.vbo)
	if len(data) == 0 {
		gl.BufferData(gl.ARRAY_BUFFER, 0, nil, gl.DYNAMIC_DRAW)
		return
	}
	gl.BufferData(gl.ARRAY_BUFFER, len(data), gl.Ptr(data), gl.DYNAMIC_DRAW)
}

// UploadIndices replaces the element buffer contents.
func (b *Backend) UploadIndices(h batch.ProgramHandle, indices []uint32) {
	p, ok := b.programs[h]
	if !ok || p.ebo == 0 {
		return
	}
	gl.BindVertexArray(p.vao)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, p.ebo)
	if len(indices) == 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, 0, nil, gl.DYNAMIC_DRAW)
		return
	}
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.DYNAMIC_DRAW)
}

// DrawIndexed implements batch.Backend.
func (b *Backend) DrawIndexed(h batch.ProgramHandle, topology batch.Topology, count int) error {
	p, ok := b.programs[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownProgram, h)
	}
	if p.vao == 0 {
		return ErrNoLayout
	}
	mode, err := drawMode(topology)
	if err != nil {
		return err
	}
	if b.active != h {
		gl.UseProgram(p.id)
		b.active = h
	}
	gl.BindVertexArray(p.vao)
	gl.DrawElementsWithOffset(mode, int32(count), gl.UNSIGNED_INT, 0)
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("opengl: draw %s: GL error 0x%x", topology, code)
	}
	return nil
}

func drawMode(t batch.Topology) (uint32, error) {
	switch t {
	case batch.Points:
		return gl.POINTS, nil
	case batch.Triangle:
		return gl.TRIANGLES, nil
	case batch.TriangleStrip:
		return gl.TRIANGLE_STRIP, nil
	case batch.TriangleFan:
		return gl.TRIANGLE_FAN, nil
	case batch.Line:
		return gl.LINES, nil
	case batch.LineStrip:
		return gl.LINE_STRIP, nil
	case batch.LineLoop:
		return gl.LINE_LOOP, nil
	default:
		return 0, fmt.Errorf("opengl: cannot draw topology %s", t)
	}
}

func init() {
	batch.RegisterBackend("opengl", func() (batch.Backend, error) {
		return New(), nil
	})
}
