package batch

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestUnitQuadScenario(t *testing.T) {
	be, _, b := newTestBatcher(t)

	if err := b.BeginShape(Triangle, 4, 0); err != nil {
		t.Fatalf("BeginShape: %v", err)
	}
	for i, p := range [][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}} {
		if i > 0 {
			if err := b.NextVertex(); err != nil {
				t.Fatalf("NextVertex: %v", err)
			}
		}
		writeVertex(t, b, p[0], p[1])
	}
	if err := b.EndShape(); err != nil {
		t.Fatalf("EndShape: %v", err)
	}
	if err := b.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if len(be.draws) != 1 {
		t.Fatalf("draw calls = %d, want 1", len(be.draws))
	}
	d := be.draws[0]
	if d.topology != Triangle {
		t.Errorf("topology = %v, want Triangle", d.topology)
	}
	want := []uint32{0, 1, 2, 0, 2, 3}
	if d.count != len(want) {
		t.Fatalf("count = %d, want %d", d.count, len(want))
	}
	for i := range want {
		if d.indices[i] != want[i] {
			t.Errorf("indices = %v, want %v", d.indices, want)
			break
		}
	}
	if vb, ib := b.Pending(); vb != 0 || ib != 0 {
		t.Errorf("Pending() = %d, %d after flush, want 0, 0", vb, ib)
	}
}

func TestAutoIndexCounts(t *testing.T) {
	tests := []struct {
		topology Topology
		n        int
		want     int
	}{
		{Triangle, 3, 3},
		{Triangle, 5, 9},
		{Triangle, 8, 18},
		{Points, 4, 4},
		{Line, 6, 6},
		{LineStrip, 5, 5},
		{LineLoop, 3, 3},
		{TriangleStrip, 5, 5},
		{TriangleFan, 6, 6},
	}
	for _, tt := range tests {
		t.Run(tt.topology.String(), func(t *testing.T) {
			_, _, b := newTestBatcher(t)
			writeShape(t, b, tt.topology, tt.n)
			if _, ib := b.Pending(); ib != tt.want {
				t.Errorf("indices = %d, want %d", ib, tt.want)
			}
		})
	}
}

func TestIndicesRebasedAcrossShapes(t *testing.T) {
	be, _, b := newTestBatcher(t)
	writeShape(t, b, Triangle, 3)
	writeShape(t, b, Triangle, 4)
	if err := b.Render(); err != nil {
		t.Fatal(err)
	}
	want := []uint32{0, 1, 2, 3, 4, 5, 3, 5, 6}
	got := be.draws[0].indices
	if len(got) != len(want) {
		t.Fatalf("indices = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("indices = %v, want %v", got, want)
		}
	}
}

func TestVertexBytesRoundTrip(t *testing.T) {
	be, _, b := newTestBatcher(t)

	var want []byte
	putF := func(v float32) {
		want = binary.LittleEndian.AppendUint32(want, math.Float32bits(v))
	}

	if err := b.BeginShape(Triangle, 3, 0); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if i > 0 {
			if err := b.NextVertex(); err != nil {
				t.Fatal(err)
			}
		}
		x, y := float32(i)*1.5, float32(-i)
		_ = b.Vertex2f(x, y)
		_ = b.Vertex1f(0.25)
		_ = b.Vertex3f(0.5, 0.75, 1)
		_ = b.Vertex2f(float32(i), 0.125)
		for _, v := range []float32{x, y, 0.25, 0.5, 0.75, 1, float32(i), 0.125} {
			putF(v)
		}
	}
	if err := b.EndShape(); err != nil {
		t.Fatal(err)
	}
	if err := b.Render(); err != nil {
		t.Fatal(err)
	}

	got := be.draws[0].vertices
	if len(got) != len(want) {
		t.Fatalf("uploaded %d bytes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d = %#x, want %#x", i, got[i], want[i])
		}
	}
}

func intLayoutBatcher(t *testing.T) (*mockBackend, *Batcher, *Program) {
	t.Helper()
	be, s, b := newTestBatcher(t)
	p, err := b.Context().NewProgram(s, "ints", "fs")
	if err != nil {
		t.Fatal(err)
	}
	_ = p.AddAttribute(0, IVec4)
	_ = p.AddAttribute(1, IVec3)
	_ = p.AddAttribute(2, IVec2)
	_ = p.AddAttribute(3, Int)
	if err := p.EnableAttributes(); err != nil {
		t.Fatal(err)
	}
	if err := b.BindProgram(p); err != nil {
		t.Fatal(err)
	}
	return be, b, p
}

func TestIntVertexFields(t *testing.T) {
	be, b, p := intLayoutBatcher(t)
	if p.Stride() != 40 {
		t.Fatalf("Stride = %d, want 40", p.Stride())
	}
	if err := b.BeginShape(Points, 3, 0); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if i > 0 {
			_ = b.NextVertex()
		}
		for _, err := range []error{
			b.Vertex4i(1, 2, 3, 4),
			b.Vertex3i(5, 6, 7),
			b.Vertex2i(8, 9),
			b.Vertex1i(int32(-i)),
		} {
			if err != nil {
				t.Fatalf("vertex write: %v", err)
			}
		}
	}
	if err := b.EndShape(); err != nil {
		t.Fatal(err)
	}
	if err := b.Render(); err != nil {
		t.Fatal(err)
	}
	d := be.draws[len(be.draws)-1]
	if d.program != p.Handle() || d.topology != Points {
		t.Fatalf("draw = %+v", d)
	}
	last := int32(binary.LittleEndian.Uint32(d.vertices[2*40+36:]))
	if last != -2 {
		t.Errorf("last int of vertex 2 = %d, want -2", last)
	}
}

func TestVertexOverflow(t *testing.T) {
	_, _, b := newTestBatcher(t)
	if err := b.BeginShape(Triangle, 3, 0); err != nil {
		t.Fatal(err)
	}
	_ = b.Vertex4f(1, 2, 3, 4)
	_ = b.Vertex4f(1, 2, 3, 4)
	err := b.Vertex1f(1)
	if !errors.Is(err, ErrVertexOverflow) || !errors.Is(err, ProtocolViolation) {
		t.Fatalf("err = %v, want ErrVertexOverflow", err)
	}
	// Overflow does not consume bytes.
	if err := b.NextVertex(); err != nil {
		t.Errorf("NextVertex after rejected write: %v", err)
	}
}

func TestVertexUnderflow(t *testing.T) {
	_, _, b := newTestBatcher(t)
	if err := b.BeginShape(Triangle, 3, 0); err != nil {
		t.Fatal(err)
	}
	_ = b.Vertex2f(1, 2)
	if err := b.NextVertex(); !errors.Is(err, ErrVertexUnderflow) {
		t.Errorf("NextVertex: err = %v, want ErrVertexUnderflow", err)
	}

	_, _, b2 := newTestBatcher(t)
	_ = b2.BeginShape(Points, 1, 0)
	_ = b2.Vertex4f(1, 2, 3, 4)
	if err := b2.EndShape(); !errors.Is(err, ErrVertexUnderflow) {
		t.Errorf("EndShape: err = %v, want ErrVertexUnderflow", err)
	}
}

func TestVertexCountViolations(t *testing.T) {
	_, _, b := newTestBatcher(t)
	_ = b.BeginShape(Triangle, 3, 0)
	writeVertex(t, b, 0, 0)
	if err := b.EndShape(); !errors.Is(err, ErrTooFewVertices) {
		t.Errorf("EndShape after 1 of 3: err = %v, want ErrTooFewVertices", err)
	}

	_, _, b = newTestBatcher(t)
	_ = b.BeginShape(Points, 1, 0)
	writeVertex(t, b, 0, 0)
	if err := b.NextVertex(); err != nil {
		t.Fatalf("NextVertex on last vertex: %v", err)
	}
	if err := b.NextVertex(); !errors.Is(err, ErrNoMoreVertices) {
		t.Errorf("second NextVertex: err = %v, want ErrNoMoreVertices", err)
	}
	if err := b.Vertex2f(0, 0); !errors.Is(err, ErrNoMoreVertices) {
		t.Errorf("write past last vertex: err = %v, want ErrNoMoreVertices", err)
	}
	if err := b.EndShape(); !errors.Is(err, ErrTooManyVertices) {
		t.Errorf("EndShape: err = %v, want ErrTooManyVertices", err)
	}
}

func TestOutOfSequence(t *testing.T) {
	_, _, b := newTestBatcher(t)
	if err := b.Vertex2f(0, 0); !errors.Is(err, ErrNoShape) {
		t.Errorf("Vertex2f while idle: err = %v", err)
	}
	if err := b.NextVertex(); !errors.Is(err, ErrNoShape) {
		t.Errorf("NextVertex while idle: err = %v", err)
	}
	if err := b.EndShape(); !errors.Is(err, ErrNoShape) {
		t.Errorf("EndShape while idle: err = %v", err)
	}
	_ = b.BeginShape(Points, 1, 0)
	if err := b.BeginShape(Points, 1, 0); !errors.Is(err, ErrShapeInProgress) {
		t.Errorf("nested BeginShape: err = %v", err)
	}
	if err := b.Render(); !errors.Is(err, ErrShapeInProgress) {
		t.Errorf("Render during shape: err = %v", err)
	}
	if err := b.BindProgram(nil); err != nil {
		t.Errorf("BindProgram to the active program must be a no-op: %v", err)
	}
	if err := b.BindTexture(nil, 1); !errors.Is(err, ErrShapeInProgress) {
		t.Errorf("BindTexture during shape: err = %v", err)
	}
}

func TestBeginShapeValidation(t *testing.T) {
	_, _, b := newTestBatcher(t)
	tests := []struct {
		name     string
		topology Topology
		n, idx   int
		want     error
	}{
		{"none topology", TopologyNone, 3, 0, ErrTopologyNone},
		{"no vertices", Points, 0, 0, ErrEmptyShape},
		{"negative indices", Points, 1, -1, ErrIndexCount},
		{"triangle of two", Triangle, 2, 0, ErrTooFewVertices},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := b.BeginShape(tt.topology, tt.n, tt.idx); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if b.InShape() {
				t.Error("failed BeginShape must stay idle")
			}
		})
	}
}

func TestShapeTooLarge(t *testing.T) {
	_, _, b := newTestBatcher(t, WithVertexCapacity(32*9), WithIndexCapacity(64))
	err := b.BeginShape(Triangle, 9, 0)
	if !errors.Is(err, ErrShapeTooLarge) || !errors.Is(err, CapacityError) {
		t.Fatalf("9 vertices: err = %v, want ErrShapeTooLarge", err)
	}
	if err := b.BeginShape(Points, 2, 64); !errors.Is(err, ErrShapeTooLarge) {
		t.Fatalf("64 indices: err = %v, want ErrShapeTooLarge", err)
	}
	if err := b.BeginShape(Triangle, 8, 0); err != nil {
		t.Fatalf("8 vertices: %v", err)
	}
}

func TestEndShapeIndices(t *testing.T) {
	be, _, b := newTestBatcher(t)
	writeShape(t, b, Triangle, 3)

	if err := b.BeginShape(Triangle, 4, 6); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		if i > 0 {
			_ = b.NextVertex()
		}
		writeVertex(t, b, 0, 0)
	}
	if err := b.EndShapeIndices([]uint32{0, 1}); !errors.Is(err, ErrIndexCount) {
		t.Errorf("short index list: err = %v", err)
	}
	if err := b.EndShapeIndices([]uint32{0, 1, 2, 0, 2, 4}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("index 4 of 4 vertices: err = %v", err)
	}
	if err := b.EndShapeIndices([]uint32{3, 2, 1, 1, 0, 3}); err != nil {
		t.Fatalf("EndShapeIndices: %v", err)
	}
	if err := b.Render(); err != nil {
		t.Fatal(err)
	}
	got := be.draws[0].indices[3:]
	want := []uint32{6, 5, 4, 4, 3, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rebased indices = %v, want %v", got, want)
		}
	}
}

func TestSurfaceMismatch(t *testing.T) {
	be, _, b := newTestBatcher(t)
	s2 := be.newSurface(50, 50)
	p2, err := b.Context().NewProgram(s2, "vs", "fs")
	if err != nil {
		t.Fatal(err)
	}
	_ = p2.AddAttribute(0, Vec2)
	if err := p2.EnableAttributes(); err != nil {
		t.Fatal(err)
	}
	err = b.BeginShape(Points, 3, 0)
	if !errors.Is(err, ErrSurfaceMismatch) || !errors.Is(err, ContextError) {
		t.Errorf("err = %v, want ErrSurfaceMismatch", err)
	}
}

func TestBeginShapeSurfaceNotCurrent(t *testing.T) {
	be, s, b := newTestBatcher(t)
	other := be.newSurface(10, 10)
	_ = other.MakeCurrent()
	s.auto = false
	if err := b.BeginShape(Points, 3, 0); !errors.Is(err, ErrSurfaceNotCurrent) {
		t.Errorf("err = %v, want ErrSurfaceNotCurrent", err)
	}
	s.auto = true
	if err := b.BeginShape(Points, 3, 0); err != nil {
		t.Errorf("auto activation: %v", err)
	}
	if !s.IsCurrent() {
		t.Error("surface should have been made current")
	}
}
