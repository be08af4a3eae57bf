package batch

import "testing"

func TestDefaultOptions(t *testing.T) {
	_, _, b := newTestBatcher(t)
	v, i := b.Capacity()
	if v != DefaultVertexCapacity || i != DefaultIndexCapacity {
		t.Errorf("Capacity() = %d, %d, want %d, %d", v, i, DefaultVertexCapacity, DefaultIndexCapacity)
	}
	if b.Style() != DefaultStyle() {
		t.Errorf("Style() = %+v, want default", b.Style())
	}
}

func TestWithCapacities(t *testing.T) {
	tests := []struct {
		name         string
		opts         []Option
		wantVertices int
		wantIndices  int
	}{
		{"custom", []Option{WithVertexCapacity(4096), WithIndexCapacity(600)}, 4096, 600},
		{"zero ignored", []Option{WithVertexCapacity(0), WithIndexCapacity(0)}, DefaultVertexCapacity, DefaultIndexCapacity},
		{"negative ignored", []Option{WithVertexCapacity(-1), WithIndexCapacity(-5)}, DefaultVertexCapacity, DefaultIndexCapacity},
		{"last wins", []Option{WithVertexCapacity(1024), WithVertexCapacity(2048)}, 2048, DefaultIndexCapacity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, b := newTestBatcher(t, tt.opts...)
			v, i := b.Capacity()
			if v != tt.wantVertices || i != tt.wantIndices {
				t.Errorf("Capacity() = %d, %d, want %d, %d", v, i, tt.wantVertices, tt.wantIndices)
			}
		})
	}
}

func TestWithStyle(t *testing.T) {
	s := Style{Color: RGB(1, 0, 0), Align: AlignAt(AlignCenter, AlignMiddle), Angle: 0.5}
	_, _, b := newTestBatcher(t, WithStyle(s))
	if b.Style() != s {
		t.Errorf("Style() = %+v, want %+v", b.Style(), s)
	}
}
