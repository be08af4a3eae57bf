package batch

import (
	"errors"
	"testing"
)

func TestRectsCoalesce(t *testing.T) {
	be, _, b := newTestBatcher(t)
	if err := b.DrawRect(0, 0, 10, 10); err != nil {
		t.Fatal(err)
	}
	if err := b.DrawRect(20, 0, 10, 10); err != nil {
		t.Fatal(err)
	}
	if err := b.Render(); err != nil {
		t.Fatal(err)
	}
	if len(be.draws) != 1 {
		t.Fatalf("draw calls = %d, want 1", len(be.draws))
	}
	want := []uint32{0, 1, 2, 0, 2, 3, 4, 5, 6, 4, 6, 7}
	got := be.draws[0].indices
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("indices = %v, want %v", got, want)
		}
	}
}

func TestTextureSwapSplitsBatch(t *testing.T) {
	be, s, b := newTestBatcher(t)
	tex, err := b.Context().NewTexture(s, TextureDescriptor{Width: 2, Height: 2, Channels: 4, ChannelBits: 8}, nil)
	if err != nil {
		t.Fatal(err)
	}

	_ = b.DrawRect(0, 0, 10, 10)
	if err := b.BindTexture(tex, 0); err != nil {
		t.Fatal(err)
	}
	_ = b.DrawRect(20, 0, 10, 10)
	if err := b.Render(); err != nil {
		t.Fatal(err)
	}
	if len(be.draws) != 2 {
		t.Fatalf("draw calls = %d, want 2", len(be.draws))
	}
	if be.draws[0].texture != b.BlankTexture().Handle() {
		t.Error("first draw should sample the blank texture")
	}

	_ = b.DrawImage(tex, 0, 0, 0, 0)
	_ = b.DrawImage(tex, 5, 5, 0, 0)
	_ = b.Render()
	if len(be.draws) != 3 || be.draws[2].texture != tex.Handle() {
		t.Errorf("images should share one draw call with their texture, draws = %d", len(be.draws))
	}
}

func TestBindTextureSameIsNoop(t *testing.T) {
	_, _, b := newTestBatcher(t)
	_ = b.DrawRect(0, 0, 10, 10)
	b.ResetStats()
	if err := b.BindTexture(nil, 0); err != nil {
		t.Fatal(err)
	}
	if st := b.Stats(); st.FlushRequests != 0 {
		t.Errorf("flushes = %d, want 0", st.FlushRequests)
	}
}

func TestProgramSwitchFlushesOnce(t *testing.T) {
	be, s, b := newTestBatcher(t)
	p2, err := b.Context().NewProgram(s, "vs2", "fs2", WithoutAutoBind())
	if err != nil {
		t.Fatal(err)
	}

	_ = b.DrawRect(0, 0, 10, 10)
	b.ResetStats()
	if err := b.BindProgram(p2); err != nil {
		t.Fatal(err)
	}
	st := b.Stats()
	if st.FlushRequests != 1 || st.DrawCalls != 1 {
		t.Errorf("after switch: flushes = %d, draws = %d, want 1, 1", st.FlushRequests, st.DrawCalls)
	}
	if be.draws[0].program != b.DefaultProgram().Handle() {
		t.Error("pending geometry must be drawn with the previous program")
	}
	if !p2.IsBound() {
		t.Error("p2 should be active")
	}

	if err := b.BindProgram(p2); err != nil {
		t.Fatal(err)
	}
	if st := b.Stats(); st.FlushRequests != 1 {
		t.Errorf("rebinding the active program flushed: %d", st.FlushRequests)
	}
}

func TestDegenerateFlushKeepsArenas(t *testing.T) {
	be, _, b := newTestBatcher(t)
	if err := b.DrawPoints([]Point{{1, 1}, {2, 2}}); err != nil {
		t.Fatal(err)
	}
	vb, ib := b.Pending()
	for i := 0; i < 2; i++ {
		if err := b.Render(); err != nil {
			t.Fatal(err)
		}
	}
	if len(be.draws) != 0 {
		t.Errorf("draw calls = %d, want 0", len(be.draws))
	}
	if vb2, ib2 := b.Pending(); vb2 != vb || ib2 != ib {
		t.Errorf("Pending() = %d,%d, want %d,%d", vb2, ib2, vb, ib)
	}
	if st := b.Stats(); st.SkippedFlushes != 2 {
		t.Errorf("SkippedFlushes = %d, want 2", st.SkippedFlushes)
	}

	// A third point makes the batch drawable.
	_ = b.DrawPoints([]Point{{3, 3}})
	_ = b.Render()
	if len(be.draws) != 1 || be.draws[0].count != 3 || be.draws[0].topology != Points {
		t.Errorf("draws = %+v", be.draws)
	}
}

// vec3Program returns an enabled program with a single Vec3 attribute on
// the batcher's surface, leaving the default program bound.
func vec3Program(t *testing.T, b *Batcher) *Program {
	t.Helper()
	p, err := b.Context().NewProgram(b.surface, "vs3", "fs3")
	if err != nil {
		t.Fatalf("NewProgram: %v", err)
	}
	if err := p.AddAttribute(0, Vec3); err != nil {
		t.Fatal(err)
	}
	if err := p.EnableAttributes(); err != nil {
		t.Fatal(err)
	}
	if err := b.BindProgram(nil); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestProgramChangeDiscardsUndrawable(t *testing.T) {
	be, _, b := newTestBatcher(t)
	p2 := vec3Program(t, b)
	if err := b.DrawPoints([]Point{{1, 1}, {2, 2}}); err != nil {
		t.Fatal(err)
	}
	if err := b.BindProgram(p2); err != nil {
		t.Fatalf("BindProgram: %v", err)
	}
	if vb, ib := b.Pending(); vb != 0 || ib != 0 {
		t.Fatalf("Pending() = %d, %d, want 0, 0", vb, ib)
	}
	if st := b.Stats(); st.DiscardedBatches != 1 {
		t.Errorf("DiscardedBatches = %d, want 1", st.DiscardedBatches)
	}

	for i := 0; i < 3; i++ {
		if err := b.BeginShape(Points, 1, 0); err != nil {
			t.Fatal(err)
		}
		if err := b.Vertex3f(float32(i), 0, 0); err != nil {
			t.Fatal(err)
		}
		if err := b.EndShape(); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Render(); err != nil {
		t.Fatal(err)
	}
	if len(be.draws) != 1 {
		t.Fatalf("draws = %d, want 1", len(be.draws))
	}
	d := be.draws[0]
	if d.program != p2.Handle() || len(d.vertices) != 3*12 {
		t.Errorf("draw = program %d with %d bytes, want program %d with 36 bytes",
			d.program, len(d.vertices), p2.Handle())
	}
	for i, idx := range d.indices {
		if idx != uint32(i) {
			t.Errorf("indices = %v, want [0 1 2]", d.indices)
			break
		}
	}
}

func TestTextureChangeDiscardsUndrawable(t *testing.T) {
	be, s, b := newTestBatcher(t)
	tex, err := b.Context().NewTexture(s, TextureDescriptor{Width: 1, Height: 1, Channels: 4, ChannelBits: 8}, []byte{1, 2, 3, 4})
	if err != nil {
		t.Fatal(err)
	}
	if err := b.DrawPoints([]Point{{1, 1}, {2, 2}}); err != nil {
		t.Fatal(err)
	}
	if err := b.BindTexture(tex, 0); err != nil {
		t.Fatalf("BindTexture: %v", err)
	}
	if vb, ib := b.Pending(); vb != 0 || ib != 0 {
		t.Fatalf("Pending() = %d, %d, want 0, 0", vb, ib)
	}
	if st := b.Stats(); st.DiscardedBatches != 1 || st.DrawCalls != 0 {
		t.Errorf("stats = %+v, want one discarded batch and no draws", st)
	}
	if len(be.draws) != 0 {
		t.Errorf("draws = %d, want 0", len(be.draws))
	}
}

func TestLayoutChangeFlushesPending(t *testing.T) {
	be, _, b := newTestBatcher(t)
	p2 := vec3Program(t, b)
	_ = b.DrawPoints([]Point{{1, 1}, {2, 2}, {3, 3}})
	// Switch the active program behind the batcher's back so only the
	// stride differs when the next shape begins.
	b.ctx.active = p2
	if err := b.BeginShape(Points, 1, 0); err != nil {
		t.Fatal(err)
	}
	if len(be.draws) != 1 || len(be.draws[0].vertices) != 3*32 {
		t.Fatalf("stride change should flush the default-layout points, draws = %+v", be.draws)
	}
	if b.shape.startVertex != 0 {
		t.Errorf("startVertex = %d, want 0", b.shape.startVertex)
	}
}

func TestTopologyChangeFlushes(t *testing.T) {
	be, _, b := newTestBatcher(t)
	_ = b.DrawRect(0, 0, 10, 10)
	_ = b.DrawPoints([]Point{{1, 1}, {2, 2}, {3, 3}})
	if len(be.draws) != 1 || be.draws[0].topology != Triangle {
		t.Fatalf("topology change should flush the triangles, draws = %d", len(be.draws))
	}
	_ = b.Render()
	if len(be.draws) != 2 || be.draws[1].topology != Points {
		t.Errorf("second draw = %+v", be.draws[len(be.draws)-1])
	}
}

func TestTopologyChangeDiscardsUndrawable(t *testing.T) {
	be, _, b := newTestBatcher(t)
	_ = b.DrawPoints([]Point{{1, 1}})
	_ = b.DrawRect(0, 0, 10, 10)
	if st := b.Stats(); st.DiscardedBatches != 1 {
		t.Errorf("DiscardedBatches = %d, want 1", st.DiscardedBatches)
	}
	_ = b.Render()
	if len(be.draws) != 1 || be.draws[0].count != 6 || len(be.draws[0].vertices) != 4*32 {
		t.Errorf("draws = %+v", be.draws)
	}
}

func TestCapacityFlush(t *testing.T) {
	be, _, b := newTestBatcher(t, WithVertexCapacity(32*9))
	for i := 0; i < 3; i++ {
		if err := b.DrawRect(float64(i), 0, 1, 1); err != nil {
			t.Fatal(err)
		}
	}
	if len(be.draws) != 1 || be.draws[0].count != 12 {
		t.Fatalf("full arena should flush two rects, draws = %+v", be.draws)
	}
	if vb, ib := b.Pending(); vb != 128 || ib != 6 {
		t.Errorf("Pending() = %d, %d, want 128, 6", vb, ib)
	}
}

func TestIndexCapacityFlush(t *testing.T) {
	be, _, b := newTestBatcher(t, WithIndexCapacity(12))
	_ = b.DrawRect(0, 0, 1, 1)
	_ = b.DrawRect(0, 0, 1, 1)
	if len(be.draws) != 1 {
		t.Errorf("draws = %d, want 1", len(be.draws))
	}
}

func TestCrossSurfaceRenderIsNoop(t *testing.T) {
	be, _, b := newTestBatcher(t)
	_ = b.DrawRect(0, 0, 10, 10)

	s2 := be.newSurface(10, 10)
	p2, err := b.Context().NewProgram(s2, "vs", "fs")
	if err != nil {
		t.Fatal(err)
	}
	// Binding flushes b's rect while its program is still active.
	if err := p2.Bind(); err != nil {
		t.Fatal(err)
	}
	if len(be.draws) != 1 {
		t.Fatalf("draws = %d, want 1", len(be.draws))
	}

	b.ResetStats()
	if err := b.Render(); err != nil {
		t.Fatalf("cross-surface Render: %v", err)
	}
	if len(be.draws) != 1 {
		t.Error("cross-surface flush must not draw")
	}
	if st := b.Stats(); st.FlushRequests != 1 || st.DrawCalls != 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestRenderAfterClose(t *testing.T) {
	be := newMockBackend()
	s := be.newSurface(10, 10)
	b, err := New(NewContext(be), s)
	if err != nil {
		t.Fatal(err)
	}
	b.Close()
	if err := b.Render(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("err = %v, want ErrDestroyed", err)
	}
	if len(be.programs) != 0 || len(be.textures) != 0 {
		t.Error("Close should release the default program and blank texture")
	}
}

func TestDrawError(t *testing.T) {
	be, _, b := newTestBatcher(t)
	_ = b.DrawRect(0, 0, 1, 1)
	be.drawErr = errors.New("device lost")
	if err := b.Render(); err == nil {
		t.Fatal("expected draw error")
	}
}
