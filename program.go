package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Program is a compiled GPU program together with its interleaved vertex
// layout and its registered uniforms.
//
// Lifecycle: NewProgram, AddAttribute (repeatedly), EnableAttributes once,
// then Bind and draw, and finally Destroy. The stride is fixed once the
// attributes are enabled.
type Program struct {
	ctx      *Context
	surface  Surface
	handle   ProgramHandle
	autoBind bool

	attributes []AttributeDescriptor
	layout     VertexLayout
	enabled    bool

	uniforms  map[string]uniform
	destroyed bool
}

// ProgramOption configures a Program during creation.
type ProgramOption func(*programOptions)

type programOptions struct {
	autoBind bool
}

func defaultProgramOptions() programOptions {
	return programOptions{autoBind: true}
}

// WithoutAutoBind makes operations that need the program bound fail with
// ErrProgramNotBound instead of binding it implicitly.
func WithoutAutoBind() ProgramOption {
	return func(o *programOptions) {
		o.autoBind = false
	}
}

// NewProgram compiles a program for the surface.
func (c *Context) NewProgram(surface Surface, vertexSource, fragmentSource string, opts ...ProgramOption) (*Program, error) {
	o := defaultProgramOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := c.ensureCurrent(surface, "NewProgram"); err != nil {
		return nil, err
	}

	h, err := c.backend.CompileProgram(vertexSource, fragmentSource)
	if err != nil {
		return nil, err
	}
	Logger().Debug("batch: program compiled", "backend", c.backend.Name(), "handle", h)

	return &Program{
		ctx:      c,
		surface:  surface,
		handle:   h,
		autoBind: o.autoBind,
		uniforms: make(map[string]uniform),
	}, nil
}

// NewProgramFromFiles reads both shader sources from disk and compiles them.
func (c *Context) NewProgramFromFiles(surface Surface, vertexPath, fragmentPath string, opts ...ProgramOption) (*Program, error) {
	vs, err := readShader(vertexPath)
	if err != nil {
		return nil, err
	}
	fs, err := readShader(fragmentPath)
	if err != nil {
		return nil, err
	}
	return c.NewProgram(surface, vs, fs, opts...)
}

func readShader(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: shader file %s: %w", ErrFileNotFound, path, err)
	}
	if err != nil {
		return "", fmt.Errorf("batch: read shader %s: %w", path, err)
	}
	return string(data), nil
}

// Surface returns the surface the program was created for.
func (p *Program) Surface() Surface { return p.surface }

// Handle returns the backend handle.
func (p *Program) Handle() ProgramHandle { return p.handle }

// Stride returns the bytes per vertex. It is zero until EnableAttributes.
func (p *Program) Stride() int { return p.layout.Stride }

// Layout returns the enabled vertex layout.
func (p *Program) Layout() VertexLayout { return p.layout }

// Enabled reports whether EnableAttributes succeeded.
func (p *Program) Enabled() bool { return p.enabled }

// IsBound reports whether the program is the context's active program.
func (p *Program) IsBound() bool { return p.ctx.active == p }

// AddAttribute appends an attribute at location. Registration order is the
// order of the fields inside one vertex.
func (p *Program) AddAttribute(location uint32, t AttribType) error {
	if p.enabled {
		return fmt.Errorf("%w: cannot add location %d", ErrAttributesEnabled, location)
	}
	n := t.Components()
	if n == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidAttribute, t)
	}
	p.attributes = append(p.attributes, AttributeDescriptor{
		Location:   location,
		Components: n,
		Kind:       t.Scalar(),
	})
	return nil
}

// EnableAttributes computes the stride and configures the backend to read
// every attribute at its interleaved offset.
func (p *Program) EnableAttributes() error {
	if p.enabled {
		return ErrAttributesEnabled
	}
	if err := p.assertBound("EnableAttributes"); err != nil {
		return err
	}
	layout, err := buildLayout(p.attributes)
	if err != nil {
		return err
	}
	if err := p.ctx.backend.ConfigureLayout(p.handle, layout); err != nil {
		return fmt.Errorf("batch: configure layout: %w", err)
	}
	p.layout = layout
	p.enabled = true
	Logger().Debug("batch: attributes enabled", "handle", p.handle,
		"attributes", len(layout.Attributes), "stride", layout.Stride)
	return nil
}

// Bind activates the program. Binding the active program is a no-op.
// Batchers sharing the context flush their pending geometry before the
// switch.
func (p *Program) Bind() error {
	if p.destroyed {
		return ErrDestroyed
	}
	if err := p.ctx.ensureCurrent(p.surface, "Bind"); err != nil {
		return err
	}
	if p.ctx.active == p {
		return nil
	}
	if err := p.ctx.beforeStateChange("program change"); err != nil {
		return err
	}
	p.ctx.backend.UseProgram(p.handle)
	p.ctx.active = p
	Logger().Debug("batch: program bound", "handle", p.handle)
	return nil
}

// assertBound binds the program on demand when auto binding is enabled.
func (p *Program) assertBound(op string) error {
	if p.destroyed {
		return ErrDestroyed
	}
	if err := p.ctx.ensureCurrent(p.surface, op); err != nil {
		return err
	}
	if p.ctx.active == p {
		return nil
	}
	if !p.autoBind {
		return fmt.Errorf("%w: call Bind before %s", ErrProgramNotBound, op)
	}
	return p.Bind()
}

// UploadVertexBytes replaces the program's vertex buffer contents.
func (p *Program) UploadVertexBytes(data []byte) error {
	if err := p.assertBound("UploadVertexBytes"); err != nil {
		return err
	}
	p.ctx.backend.UploadVertices(p.handle, data)
	return nil
}

// UploadIndexInts replaces the program's index buffer contents.
func (p *Program) UploadIndexInts(indices []uint32) error {
	if err := p.assertBound("UploadIndexInts"); err != nil {
		return err
	}
	p.ctx.backend.UploadIndices(p.handle, indices)
	return nil
}

// Destroy releases the program. Destroying the active program leaves the
// context without one.
func (p *Program) Destroy() {
	if p.destroyed {
		return
	}
	if p.ctx.active == p {
		p.ctx.active = nil
	}
	p.ctx.backend.DestroyProgram(p.handle)
	p.destroyed = true
}
