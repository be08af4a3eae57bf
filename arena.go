package batch

import (
	"encoding/binary"
	"math"
)

// vertexArena is a fixed-capacity byte buffer of interleaved vertex data.
// Scalars are stored little-endian, matching the GPU vertex fetch layout.
type vertexArena struct {
	buf    []byte
	cursor int
}

func newVertexArena(capacity int) vertexArena {
	return vertexArena{buf: make([]byte, capacity)}
}

func (a *vertexArena) capacity() int  { return len(a.buf) }
func (a *vertexArena) remaining() int { return len(a.buf) - a.cursor }

func (a *vertexArena) putFloat32(v float32) {
	binary.LittleEndian.PutUint32(a.buf[a.cursor:], math.Float32bits(v))
	a.cursor += 4
}

func (a *vertexArena) putInt32(v int32) {
	binary.LittleEndian.PutUint32(a.buf[a.cursor:], uint32(v))
	a.cursor += 4
}

// used returns the bytes written since the last reset.
func (a *vertexArena) used() []byte { return a.buf[:a.cursor] }

func (a *vertexArena) reset() { a.cursor = 0 }

// indexArena is a fixed-capacity buffer of batch-global vertex indices.
type indexArena struct {
	buf    []uint32
	cursor int
}

func newIndexArena(capacity int) indexArena {
	return indexArena{buf: make([]uint32, capacity)}
}

func (a *indexArena) capacity() int  { return len(a.buf) }
func (a *indexArena) remaining() int { return len(a.buf) - a.cursor }

// appendRebased copies indices shifted by base.
func (a *indexArena) appendRebased(indices []uint32, base uint32) {
	dst := a.buf[a.cursor : a.cursor+len(indices)]
	for i, idx := range indices {
		dst[i] = idx + base
	}
	a.cursor += len(indices)
}

func (a *indexArena) used() []uint32 { return a.buf[:a.cursor] }

func (a *indexArena) reset() { a.cursor = 0 }
