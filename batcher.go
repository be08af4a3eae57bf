package batch

import "fmt"

// Default program attribute locations and uniforms.
const (
	LocationPosition = 0
	LocationColor    = 1
	LocationTexCoord = 2

	UniformProjection = "u_projection"
	UniformTexture    = "u_texture"
)

// Stats counts batcher activity since creation or the last ResetStats.
type Stats struct {
	// DrawCalls is the number of draw calls issued.
	DrawCalls int
	// FlushRequests counts every Render, explicit or triggered by a state
	// change, including the ones that drew nothing.
	FlushRequests int
	// SkippedFlushes counts pending batches left undrawn because the active
	// program belonged to another surface or fewer than 3 indices were
	// pending.
	SkippedFlushes int
	// DiscardedBatches counts undrawable batches dropped to make room for
	// a shape with another topology or for lack of space.
	DiscardedBatches int

	Shapes   int
	Vertices int
	Indices  int
}

// shapeState is the shape assembly state. The zero value is Idle.
type shapeState struct {
	active            bool
	topology          Topology
	vertexCount       int
	verticesRemaining int
	bytesRemaining    int
	stride            int
	startVertex       uint32
	startByte         int
	indexCount        int
}

// Batcher accumulates shapes into a vertex arena and an index arena and
// draws them with as few draw calls as the requested state changes allow.
//
// A Batcher borrows the context's active program and textures. It owns the
// default program and the blank texture it creates, released by Close.
type Batcher struct {
	ctx     *Context
	surface Surface

	vertices vertexArena
	indices  indexArena
	topology Topology
	stride   int
	shape    shapeState
	scratch  []uint32

	program *Program
	blank   *Texture
	style   Style

	stats  Stats
	closed bool
}

// New creates a batcher for surface. It compiles the default program,
// binds it together with a 1x1 white texture at slot 0 and uploads an
// orthographic projection matching the surface size.
func New(ctx *Context, surface Surface, opts ...Option) (*Batcher, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := ctx.ensureCurrent(surface, "New"); err != nil {
		return nil, err
	}

	b := &Batcher{
		ctx:      ctx,
		surface:  surface,
		vertices: newVertexArena(o.vertexCapacity),
		indices:  newIndexArena(o.indexCapacity),
		style:    o.style,
	}

	vs, fs := ctx.backend.DefaultShaders()
	p, err := ctx.NewProgram(surface, vs, fs)
	if err != nil {
		return nil, fmt.Errorf("batch: default program: %w", err)
	}
	b.program = p
	ctx.attach(b)

	if err := b.setupDefaultProgram(); err != nil {
		b.Close()
		return nil, err
	}

	blank, err := ctx.NewTexture(surface, TextureDescriptor{
		Width: 1, Height: 1, Channels: 4, ChannelBits: 8, Filter: FilterNearest,
	}, []byte{0xff, 0xff, 0xff, 0xff})
	if err != nil {
		b.Close()
		return nil, err
	}
	b.blank = blank
	if err := blank.Bind(0); err != nil {
		b.Close()
		return nil, err
	}

	if err := b.UpdateProjection(); err != nil {
		b.Close()
		return nil, err
	}

	Logger().Debug("batch: batcher created", "backend", ctx.backend.Name(),
		"vertexCapacity", o.vertexCapacity, "indexCapacity", o.indexCapacity)
	return b, nil
}

func (b *Batcher) setupDefaultProgram() error {
	p := b.program
	if err := p.Bind(); err != nil {
		return err
	}
	for _, a := range []struct {
		loc uint32
		t   AttribType
	}{
		{LocationPosition, Vec2},
		{LocationColor, Vec4},
		{LocationTexCoord, Vec2},
	} {
		if err := p.AddAttribute(a.loc, a.t); err != nil {
			return err
		}
	}
	if err := p.EnableAttributes(); err != nil {
		return err
	}
	if err := p.AddUniform(UniformProjection, UniformMat4); err != nil {
		return err
	}
	if err := p.AddUniform(UniformTexture, UniformInt); err != nil {
		return err
	}
	return p.SetUniformInt(UniformTexture, 0)
}

// UpdateProjection uploads a top-left origin orthographic projection for
// the current surface size to the default program. Call it after the
// surface is resized.
func (b *Batcher) UpdateProjection() error {
	w, h := b.surface.Size()
	prev := b.ctx.active
	proj := Ortho(0, float64(w), float64(h), 0, -1, 1)
	if err := b.program.SetUniformMatrix(UniformProjection, proj[:]); err != nil {
		return err
	}
	if prev != nil && prev != b.program && !prev.destroyed {
		return prev.Bind()
	}
	return nil
}

// Surface returns the surface the batcher draws to.
func (b *Batcher) Surface() Surface { return b.surface }

// Context returns the rendering context.
func (b *Batcher) Context() *Context { return b.ctx }

// DefaultProgram returns the built-in position/color/texcoord program.
func (b *Batcher) DefaultProgram() *Program { return b.program }

// BlankTexture returns the 1x1 white texture bound in place of nil.
func (b *Batcher) BlankTexture() *Texture { return b.blank }

// Topology returns the topology of the pending batch.
func (b *Batcher) Topology() Topology { return b.topology }

// InShape reports whether a shape is being assembled.
func (b *Batcher) InShape() bool { return b.shape.active }

// Pending returns the vertex bytes and indices waiting for a flush.
func (b *Batcher) Pending() (vertexBytes, indices int) {
	return b.vertices.cursor, b.indices.cursor
}

// Capacity returns the arena sizes.
func (b *Batcher) Capacity() (vertexBytes, indices int) {
	return b.vertices.capacity(), b.indices.capacity()
}

// Stats returns activity counters.
func (b *Batcher) Stats() Stats { return b.stats }

// ResetStats zeroes the activity counters.
func (b *Batcher) ResetStats() { b.stats = Stats{} }

// Close detaches the batcher from its context and releases the default
// program and blank texture. Pending geometry is dropped.
func (b *Batcher) Close() {
	if b.closed {
		return
	}
	b.closed = true
	b.ctx.detach(b)
	if b.blank != nil {
		b.blank.Destroy()
	}
	if b.program != nil {
		b.program.Destroy()
	}
	b.vertices.reset()
	b.indices.reset()
	b.shape = shapeState{}
}
