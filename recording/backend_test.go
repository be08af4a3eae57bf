package recording

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/gogpu/batch"
)

func newBatcher(t *testing.T, opts ...batch.Option) (*Backend, *Surface, *batch.Batcher) {
	t.Helper()
	be := New()
	s := be.NewSurface(320, 240)
	b, err := batch.New(batch.NewContext(be), s, opts...)
	if err != nil {
		t.Fatalf("batch.New: %v", err)
	}
	t.Cleanup(b.Close)
	return be, s, b
}

func TestBatchingTwoRects(t *testing.T) {
	be, _, b := newBatcher(t)
	b.SetColor(batch.Hex("#3366ff"))
	if err := b.DrawRect(10, 10, 50, 50); err != nil {
		t.Fatal(err)
	}
	if err := b.DrawRect(100, 10, 50, 50); err != nil {
		t.Fatal(err)
	}
	if err := b.Render(); err != nil {
		t.Fatal(err)
	}

	draws := be.Draws()
	if len(draws) != 1 {
		t.Fatalf("draws = %d, want 1", len(draws))
	}
	d := draws[0]
	if d.Topology != batch.Triangle || len(d.Indices) != 12 || d.VertexCount() != 8 {
		t.Errorf("draw = %v, %d indices, %d vertices", d.Topology, len(d.Indices), d.VertexCount())
	}
	if d.Textures[0] != b.BlankTexture().Handle() {
		t.Error("rects should sample the blank texture")
	}
}

func TestManyPoints(t *testing.T) {
	be, s, b := newBatcher(t, batch.WithVertexCapacity(20*1000))
	ctx := b.Context()
	p, err := ctx.NewProgram(s, "in vec2 pos; in vec3 col; uniform mat4 u_projection;", "out vec4 c;")
	if err != nil {
		t.Fatal(err)
	}
	_ = p.AddAttribute(0, batch.Vec2)
	_ = p.AddAttribute(1, batch.Vec3)
	if err := p.EnableAttributes(); err != nil {
		t.Fatal(err)
	}
	if err := b.BindProgram(p); err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(1))
	const perShape = 100
	for shape := 0; shape < 25; shape++ {
		if err := b.BeginShape(batch.Points, perShape, 0); err != nil {
			t.Fatalf("shape %d: %v", shape, err)
		}
		for i := 0; i < perShape; i++ {
			if i > 0 {
				if err := b.NextVertex(); err != nil {
					t.Fatal(err)
				}
			}
			_ = b.Vertex2f(rng.Float32()*320, rng.Float32()*240)
			if err := b.Vertex3f(rng.Float32(), rng.Float32(), rng.Float32()); err != nil {
				t.Fatal(err)
			}
		}
		if err := b.EndShape(); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Render(); err != nil {
		t.Fatal(err)
	}

	// 2500 points of 20 bytes do not fit a 20000 byte arena at once.
	var total int
	for _, d := range be.Draws() {
		if d.Program != p.Handle() || d.Topology != batch.Points {
			t.Fatalf("unexpected draw %v with program %d", d.Topology, d.Program)
		}
		total += len(d.Indices)
	}
	if total != 2500 {
		t.Errorf("points drawn = %d, want 2500", total)
	}
	if len(be.Draws()) < 3 {
		t.Errorf("draws = %d, expected capacity flushes", len(be.Draws()))
	}
}

func TestProjectionUniform(t *testing.T) {
	be, s, b := newBatcher(t)
	u, ok := be.UniformValue(b.DefaultProgram().Handle(), batch.UniformProjection)
	if !ok || u.Kind != batch.UniformMat4 || len(u.Floats) != 16 {
		t.Fatalf("projection = %+v, %v", u, ok)
	}
	if u.Floats[0] != float32(2.0/320) {
		t.Errorf("projection[0] = %v", u.Floats[0])
	}

	s.Resize(640, 480)
	if err := b.UpdateProjection(); err != nil {
		t.Fatal(err)
	}
	u, _ = be.UniformValue(b.DefaultProgram().Handle(), batch.UniformProjection)
	if u.Floats[0] != float32(2.0/640) {
		t.Errorf("after resize projection[0] = %v", u.Floats[0])
	}
	tex, _ := be.UniformValue(b.DefaultProgram().Handle(), batch.UniformTexture)
	if len(tex.Ints) != 1 || tex.Ints[0] != 0 {
		t.Errorf("u_texture = %+v, want [0]", tex)
	}
}

func TestCompileErrors(t *testing.T) {
	be := New()
	if _, err := be.CompileProgram("", "x"); !errors.Is(err, batch.ConfigurationError) {
		t.Errorf("empty vertex source: err = %v", err)
	}
	var ce *batch.CompileError
	if _, err := be.CompileProgram("x", " "); !errors.As(err, &ce) || ce.Stage != "fragment" {
		t.Errorf("empty fragment source: err = %v", err)
	}
}

func TestUniformSlots(t *testing.T) {
	be := New()
	h, err := be.CompileProgram("uniform float u_a;", "uniform vec2 u_b;")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := be.UniformSlot(h, "u_b"); !ok {
		t.Error("u_b should resolve")
	}
	if _, ok := be.UniformSlot(h, "u_missing"); ok {
		t.Error("u_missing should not resolve")
	}
}

func TestDrawValidation(t *testing.T) {
	be := New()
	h, _ := be.CompileProgram("v", "f")
	if err := be.DrawIndexed(h, batch.Triangle, 3); !errors.Is(err, ErrNoLayout) {
		t.Errorf("err = %v, want ErrNoLayout", err)
	}
	_ = be.ConfigureLayout(h, batch.VertexLayout{Stride: 8})
	be.UploadVertices(h, make([]byte, 16))
	be.UploadIndices(h, []uint32{0, 1, 2})
	if err := be.DrawIndexed(h, batch.Triangle, 3); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("err = %v, want ErrIndexOutOfBounds", err)
	}
	if err := be.DrawIndexed(h, batch.Triangle, 4); !errors.Is(err, ErrCountOutOfBounds) {
		t.Errorf("err = %v, want ErrCountOutOfBounds", err)
	}
	if err := be.DrawIndexed(99, batch.Triangle, 3); !errors.Is(err, ErrUnknownProgram) {
		t.Errorf("err = %v, want ErrUnknownProgram", err)
	}
}

func TestUpdateTexture(t *testing.T) {
	be, s, b := newBatcher(t)
	tex, err := b.Context().NewTexture(s, batch.TextureDescriptor{Width: 3, Height: 2, Channels: 1, ChannelBits: 8}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := tex.SetPixels(1, 0, 2, 2, []byte{1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}
	got, _ := be.TexturePixels(tex.Handle())
	want := []byte{0, 1, 2, 0, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pixels = %v, want %v", got, want)
		}
	}
}

func TestReadTexture(t *testing.T) {
	be, s, b := newBatcher(t)
	tex, err := b.Context().NewTexture(s, batch.TextureDescriptor{Width: 2, Height: 2, Channels: 3, ChannelBits: 8}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := tex.SetPixel(1, 1, batch.RGB(0, 0, 1)); err != nil {
		t.Fatal(err)
	}
	c, err := tex.Pixel(1, 1)
	if err != nil {
		t.Fatalf("Pixel: %v", err)
	}
	if c != batch.RGB(0, 0, 1) {
		t.Errorf("Pixel(1, 1) = %+v, want opaque blue", c)
	}
	row, err := tex.ReadPixels(0, 1, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if want := []byte{0, 0, 0, 0, 0, 255}; string(row) != string(want) {
		t.Errorf("ReadPixels = %v, want %v", row, want)
	}
	if _, err := be.ReadTexture(tex.Handle(), 1, 1, 2, 1); !errors.Is(err, ErrRegionOutOfBounds) {
		t.Errorf("err = %v, want ErrRegionOutOfBounds", err)
	}
	if _, err := be.ReadTexture(99, 0, 0, 1, 1); !errors.Is(err, ErrUnknownTexture) {
		t.Errorf("err = %v, want ErrUnknownTexture", err)
	}
}

func TestTextureSampling(t *testing.T) {
	be, s, b := newBatcher(t)
	tex, _ := b.Context().NewTexture(s, batch.TextureDescriptor{Width: 1, Height: 1, Channels: 4, ChannelBits: 8}, nil)
	be.Reset()

	if err := tex.SetWrap(batch.WrapClampToBorder, batch.WrapRepeat); err != nil {
		t.Fatal(err)
	}
	if err := tex.SetBorderColor(batch.RGB(0, 1, 0)); err != nil {
		t.Fatal(err)
	}
	want := batch.Sampling{WrapS: batch.WrapClampToBorder, WrapT: batch.WrapRepeat, Border: batch.RGB(0, 1, 0)}
	if got, ok := be.TextureSampling(tex.Handle()); !ok || got != want {
		t.Errorf("TextureSampling = %+v, %v, want %+v", got, ok, want)
	}
	cmds := be.Commands()
	if len(cmds) != 2 || cmds[1].Type() != CmdSetSampling {
		t.Fatalf("commands = %v", cmds)
	}
	if cmd := cmds[1].(SetSamplingCommand); cmd.Texture != tex.Handle() || cmd.Sampling != want {
		t.Errorf("command = %+v", cmd)
	}
	if CmdSetSampling.String() != "SetSampling" {
		t.Errorf("String() = %q", CmdSetSampling)
	}
	if err := be.SetTextureSampling(99, want); !errors.Is(err, ErrUnknownTexture) {
		t.Errorf("err = %v, want ErrUnknownTexture", err)
	}
}

func TestCommandLog(t *testing.T) {
	be, _, b := newBatcher(t)
	be.Reset()
	_ = b.DrawRect(0, 0, 1, 1)
	_ = b.Render()

	var types []CommandType
	for _, c := range be.Commands() {
		types = append(types, c.Type())
	}
	want := []CommandType{CmdUploadVertices, CmdUploadIndices, CmdDraw}
	if len(types) != len(want) {
		t.Fatalf("commands = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("command %d = %v, want %v", i, types[i], want[i])
		}
	}
	if CmdDraw.String() != "Draw" || CommandType(200).String() != "Unknown" {
		t.Error("CommandType.String mismatch")
	}
}

func TestRegistered(t *testing.T) {
	be, err := batch.OpenBackend("recording")
	if err != nil {
		t.Fatal(err)
	}
	if be.Name() != "recording" {
		t.Errorf("Name() = %q", be.Name())
	}
}

func TestSurfaceActivation(t *testing.T) {
	be := New()
	a := be.NewSurface(10, 10)
	bs := be.NewSurface(10, 10)
	if !a.IsCurrent() || bs.IsCurrent() {
		t.Fatal("first surface should start current")
	}
	bs.SetAutoMakeCurrent(false)
	ctx := batch.NewContext(be)
	if _, err := batch.New(ctx, bs); !errors.Is(err, batch.ErrSurfaceNotCurrent) {
		t.Errorf("err = %v, want ErrSurfaceNotCurrent", err)
	}
	_ = bs.MakeCurrent()
	if _, err := batch.New(ctx, bs); err != nil {
		t.Errorf("New after MakeCurrent: %v", err)
	}
	if bs.Activations() != 1 {
		t.Errorf("Activations() = %d, want 1", bs.Activations())
	}
}
