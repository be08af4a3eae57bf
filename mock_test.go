package batch

import (
	"errors"
	"testing"
)

// mockSurface is a test surface.
type mockSurface struct {
	b       *mockBackend
	w, h    int
	auto    bool
	makeErr error
}

func (s *mockSurface) IsCurrent() bool { return s.b.current == s }

func (s *mockSurface) MakeCurrent() error {
	if s.makeErr != nil {
		return s.makeErr
	}
	s.b.current = s
	s.b.makeCurrentCalls++
	return nil
}

func (s *mockSurface) AutoMakeCurrent() bool     { return s.auto }
func (s *mockSurface) Size() (width, height int) { return s.w, s.h }

type mockDraw struct {
	program  ProgramHandle
	topology Topology
	count    int
	vertices []byte
	indices  []uint32
	texture  TextureHandle
}

type mockProgram struct {
	layout   VertexLayout
	vertices []byte
	indices  []uint32
	ints     map[int][]int32
	floats   map[int][]float32
	slots    map[string]int
}

// mockBackend records calls for assertions.
type mockBackend struct {
	current          *mockSurface
	makeCurrentCalls int

	programs map[ProgramHandle]*mockProgram
	textures map[TextureHandle][]byte
	descs    map[TextureHandle]TextureDescriptor
	bound    map[int]TextureHandle
	active   ProgramHandle
	next     uint32

	draws      []mockDraw
	uses       int
	compileErr error
	layoutErr  error
	drawErr    error
}

func newMockBackend() *mockBackend {
	return &mockBackend{
		programs: make(map[ProgramHandle]*mockProgram),
		textures: make(map[TextureHandle][]byte),
		descs:    make(map[TextureHandle]TextureDescriptor),
		bound:    make(map[int]TextureHandle),
	}
}

func (m *mockBackend) newSurface(w, h int) *mockSurface {
	s := &mockSurface{b: m, w: w, h: h, auto: true}
	if m.current == nil {
		m.current = s
	}
	return s
}

func (m *mockBackend) Name() string { return "mock" }

func (m *mockBackend) CompileProgram(vs, fs string) (ProgramHandle, error) {
	if m.compileErr != nil {
		return 0, m.compileErr
	}
	if vs == "" {
		return 0, &CompileError{Stage: "vertex", Log: "empty source"}
	}
	m.next++
	h := ProgramHandle(m.next)
	m.programs[h] = &mockProgram{
		ints:   make(map[int][]int32),
		floats: make(map[int][]float32),
		slots:  map[string]int{UniformProjection: 0, UniformTexture: 1, "u_scale": 2, "u_offset": 3, "u_weights": 4, "u_ids": 5, "u_mode": 6},
	}
	return h, nil
}

func (m *mockBackend) DestroyProgram(p ProgramHandle) { delete(m.programs, p) }

func (m *mockBackend) UniformSlot(p ProgramHandle, name string) (int, bool) {
	slot, ok := m.programs[p].slots[name]
	return slot, ok
}

func (m *mockBackend) ConfigureLayout(p ProgramHandle, layout VertexLayout) error {
	if m.layoutErr != nil {
		return m.layoutErr
	}
	m.programs[p].layout = layout
	return nil
}

func (m *mockBackend) UseProgram(p ProgramHandle) {
	m.active = p
	m.uses++
}

func (m *mockBackend) UploadVertices(p ProgramHandle, data []byte) {
	m.programs[p].vertices = append([]byte(nil), data...)
}

func (m *mockBackend) UploadIndices(p ProgramHandle, indices []uint32) {
	m.programs[p].indices = append([]uint32(nil), indices...)
}

func (m *mockBackend) SetUniformInts(p ProgramHandle, slot int, _ UniformKind, values []int32) {
	if slot >= 0 {
		m.programs[p].ints[slot] = append([]int32(nil), values...)
	}
}

func (m *mockBackend) SetUniformFloats(p ProgramHandle, slot int, _ UniformKind, values []float32) {
	if slot >= 0 {
		m.programs[p].floats[slot] = append([]float32(nil), values...)
	}
}

func (m *mockBackend) CreateTexture(desc TextureDescriptor, pixels []byte) (TextureHandle, error) {
	m.next++
	h := TextureHandle(m.next)
	m.textures[h] = append([]byte(nil), pixels...)
	m.descs[h] = desc
	return h, nil
}

func (m *mockBackend) UpdateTexture(t TextureHandle, x, y, w, h int, pixels []byte) error {
	dst, ok := m.textures[t]
	if !ok {
		return errors.New("mock: unknown texture")
	}
	desc := m.descs[t]
	bpp := desc.PixelSize()
	for row := 0; row < h; row++ {
		off := ((y+row)*desc.Width + x) * bpp
		copy(dst[off:off+w*bpp], pixels[row*w*bpp:])
	}
	return nil
}

func (m *mockBackend) ReadTexture(t TextureHandle, x, y, w, h int) ([]byte, error) {
	src, ok := m.textures[t]
	if !ok {
		return nil, errors.New("mock: unknown texture")
	}
	desc := m.descs[t]
	bpp := desc.PixelSize()
	out := make([]byte, 0, w*h*bpp)
	for row := 0; row < h; row++ {
		off := ((y+row)*desc.Width + x) * bpp
		out = append(out, src[off:off+w*bpp]...)
	}
	return out, nil
}

func (m *mockBackend) SetTextureSampling(t TextureHandle, s Sampling) error {
	desc, ok := m.descs[t]
	if !ok {
		return errors.New("mock: unknown texture")
	}
	desc.Filter, desc.WrapS, desc.WrapT, desc.Border = s.Filter, s.WrapS, s.WrapT, s.Border
	m.descs[t] = desc
	return nil
}

func (m *mockBackend) DestroyTexture(t TextureHandle) {
	delete(m.textures, t)
	delete(m.descs, t)
}

func (m *mockBackend) BindTexture(t TextureHandle, slot int) { m.bound[slot] = t }

func (m *mockBackend) DrawIndexed(p ProgramHandle, topology Topology, count int) error {
	if m.drawErr != nil {
		return m.drawErr
	}
	prog := m.programs[p]
	m.draws = append(m.draws, mockDraw{
		program:  p,
		topology: topology,
		count:    count,
		vertices: append([]byte(nil), prog.vertices...),
		indices:  append([]uint32(nil), prog.indices[:count]...),
		texture:  m.bound[0],
	})
	return nil
}

func (m *mockBackend) DefaultShaders() (string, string) {
	return "default.vert", "default.frag"
}

// newTestBatcher returns a batcher with a small arena on a 100x100 surface.
func newTestBatcher(t *testing.T, opts ...Option) (*mockBackend, *mockSurface, *Batcher) {
	t.Helper()
	be := newMockBackend()
	s := be.newSurface(100, 100)
	b, err := New(NewContext(be), s, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(b.Close)
	return be, s, b
}

// writeVertex writes one default-layout vertex.
func writeVertex(t *testing.T, b *Batcher, x, y float32) {
	t.Helper()
	if err := b.Vertex2f(x, y); err != nil {
		t.Fatalf("Vertex2f: %v", err)
	}
	if err := b.Vertex4f(1, 1, 1, 1); err != nil {
		t.Fatalf("Vertex4f: %v", err)
	}
	if err := b.Vertex2f(0, 0); err != nil {
		t.Fatalf("Vertex2f: %v", err)
	}
}

// writeShape writes a complete shape of n default-layout vertices.
func writeShape(t *testing.T, b *Batcher, topology Topology, n int) {
	t.Helper()
	if err := b.BeginShape(topology, n, 0); err != nil {
		t.Fatalf("BeginShape(%v, %d): %v", topology, n, err)
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			if err := b.NextVertex(); err != nil {
				t.Fatalf("NextVertex: %v", err)
			}
		}
		writeVertex(t, b, float32(i), float32(i))
	}
	if err := b.EndShape(); err != nil {
		t.Fatalf("EndShape: %v", err)
	}
}
