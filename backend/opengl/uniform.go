//go:build !nogl

package opengl

import (
	"github.com/go-gl/gl/v3.2-core/gl"
	"github.com/gogpu/batch"
)

// withProgram runs fn with h in use and restores the active program.
func (b *Backend) withProgram(h batch.ProgramHandle, fn func()) {
	p, ok := b.programs[h]
	if !ok {
		return
	}
	if b.active == h {
		fn()
		return
	}
	gl.UseProgram(p.id)
	fn()
	if prev, ok := b.programs[b.active]; ok {
		gl.UseProgram(prev.id)
	}
}

// SetUniformInts implements batch.Backend.
func (b *Backend) SetUniformInts(h batch.ProgramHandle, slot int, kind batch.UniformKind, values []int32) {
	if slot < 0 || len(values) == 0 {
		return
	}
	loc := int32(slot)
	b.withProgram(h, func() {
		switch kind {
		case batch.UniformInt:
			gl.Uniform1i(loc, values[0])
		case batch.UniformIVec2:
			gl.Uniform2i(loc, values[0], values[1])
		case batch.UniformIVec3:
			gl.Uniform3i(loc, values[0], values[1], values[2])
		case batch.UniformIVec4:
			gl.Uniform4i(loc, values[0], values[1], values[2], values[3])
		case batch.UniformIntArray:
			gl.Uniform1iv(loc, int32(len(values)), &values[0])
		}
	})
}

// SetUniformFloats implements batch.Backend. Matrices are uploaded with
// transpose set, since they arrive row-major.
func (b *Backend) SetUniformFloats(h batch.ProgramHandle, slot int, kind batch.UniformKind, values []float32) {
	if slot < 0 || len(values) == 0 {
		return
	}
	loc := int32(slot)
	b.withProgram(h, func() {
		switch kind {
		case batch.UniformFloat:
			gl.Uniform1f(loc, values[0])
		case batch.UniformVec2:
			gl.Uniform2f(loc, values[0], values[1])
		case batch.UniformVec3:
			gl.Uniform3f(loc, values[0], values[1], values[2])
		case batch.UniformVec4:
			gl.Uniform4f(loc, values[0], values[1], values[2], values[3])
		case batch.UniformFloatArray:
			gl.Uniform1fv(loc, int32(len(values)), &values[0])
		case batch.UniformMat2:
			gl.UniformMatrix2fv(loc, 1, true, &values[0])
		case batch.UniformMat3:
			gl.UniformMatrix3fv(loc, 1, true, &values[0])
		case batch.UniformMat4:
			gl.UniformMatrix4fv(loc, 1, true, &values[0])
		}
	})
}
