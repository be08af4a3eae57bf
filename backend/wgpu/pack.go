//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/batch"
)

// packUniform lays out uniform words the way WGSL stores them in the
// uniform address space. Matrices arrive row-major and are written
// column-major; mat2 columns are 8 bytes apart, mat3 and mat4 columns 16.
// Array elements are 16 bytes apart.
func packUniform(kind batch.UniformKind, words []uint32) []byte {
	switch {
	case kind.IsMatrix():
		n := kind.MatrixSize()
		stride := 16
		if n == 2 {
			stride = 8
		}
		buf := make([]byte, n*stride)
		for c := 0; c < n; c++ {
			for r := 0; r < n; r++ {
				if i := r*n + c; i < len(words) {
					binary.LittleEndian.PutUint32(buf[c*stride+r*4:], words[i])
				}
			}
		}
		return buf
	case kind.IsArray():
		buf := make([]byte, len(words)*16)
		for i, w := range words {
			binary.LittleEndian.PutUint32(buf[i*16:], w)
		}
		return buf
	default:
		buf := make([]byte, len(words)*4)
		for i, w := range words {
			binary.LittleEndian.PutUint32(buf[i*4:], w)
		}
		return buf
	}
}

func intWords(values []int32) []uint32 {
	words := make([]uint32, len(values))
	for i, v := range values {
		words[i] = uint32(v)
	}
	return words
}

func floatWords(values []float32) []uint32 {
	words := make([]uint32, len(values))
	for i, v := range values {
		words[i] = math.Float32bits(v)
	}
	return words
}

// fitUniform pads or truncates packed data to the buffer size.
func fitUniform(data []byte, size uint64) []byte {
	if uint64(len(data)) == size {
		return data
	}
	out := make([]byte, size)
	copy(out, data)
	return out
}

// uint32Bytes encodes indices for an IndexFormatUint32 buffer.
func uint32Bytes(values []uint32) []byte {
	out := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}
