package batch

import "fmt"

// ProgramHandle identifies a compiled program inside a Backend.
type ProgramHandle uint32

// TextureHandle identifies a texture inside a Backend.
type TextureHandle uint32

// Filter selects texture sampling.
type Filter uint8

const (
	FilterLinear Filter = iota
	FilterNearest
)

// Wrap selects how texture coordinates outside [0, 1] are resolved.
type Wrap uint8

const (
	WrapClampToEdge Wrap = iota
	WrapRepeat
	WrapMirroredRepeat
	// WrapClampToBorder samples the border color outside the texture.
	WrapClampToBorder
)

func (w Wrap) String() string {
	switch w {
	case WrapClampToEdge:
		return "ClampToEdge"
	case WrapRepeat:
		return "Repeat"
	case WrapMirroredRepeat:
		return "MirroredRepeat"
	case WrapClampToBorder:
		return "ClampToBorder"
	default:
		return fmt.Sprintf("Wrap(%d)", uint8(w))
	}
}

// Sampling is the sampler state of a texture.
type Sampling struct {
	Filter       Filter
	WrapS, WrapT Wrap
	// Border is used by WrapClampToBorder.
	Border RGBA
}

// TextureDescriptor describes texture storage.
type TextureDescriptor struct {
	Width, Height int
	// Channels is the number of components per pixel, 1..4.
	Channels int
	// ChannelBits is the size of one component: 8, 16 or 32.
	ChannelBits int
	Filter      Filter
	WrapS       Wrap
	WrapT       Wrap
	Border      RGBA
}

// Sampling returns the sampler part of the descriptor.
func (d TextureDescriptor) Sampling() Sampling {
	return Sampling{Filter: d.Filter, WrapS: d.WrapS, WrapT: d.WrapT, Border: d.Border}
}

// PixelSize returns the bytes per pixel.
func (d TextureDescriptor) PixelSize() int {
	return d.Channels * d.ChannelBits / 8
}

// Backend is the low-level graphics capability the batcher drives.
// Implementations live in the backend/ sub-packages.
//
// Uploads replace the previous contents of the program's buffers.
type Backend interface {
	// Name returns the backend identifier.
	Name() string

	// CompileProgram compiles and links a program. Failures are returned as
	// *CompileError.
	CompileProgram(vertexSource, fragmentSource string) (ProgramHandle, error)

	// DestroyProgram releases a program and its buffers.
	DestroyProgram(p ProgramHandle)

	// UniformSlot resolves a uniform name.
	UniformSlot(p ProgramHandle, name string) (int, bool)

	// ConfigureLayout creates the vertex layout object and points every
	// attribute at its interleaved offset.
	ConfigureLayout(p ProgramHandle, layout VertexLayout) error

	// UseProgram activates the program for subsequent calls.
	UseProgram(p ProgramHandle)

	UploadVertices(p ProgramHandle, data []byte)
	UploadIndices(p ProgramHandle, indices []uint32)

	// SetUniformInts and SetUniformFloats upload uniform values. Slot is
	// the value returned by UniformSlot; negative slots are ignored.
	// Matrices arrive row-major.
	SetUniformInts(p ProgramHandle, slot int, kind UniformKind, values []int32)
	SetUniformFloats(p ProgramHandle, slot int, kind UniformKind, values []float32)

	CreateTexture(desc TextureDescriptor, pixels []byte) (TextureHandle, error)
	UpdateTexture(t TextureHandle, x, y, width, height int, pixels []byte) error
	// ReadTexture returns the region tightly packed in the texture's own
	// format.
	ReadTexture(t TextureHandle, x, y, width, height int) ([]byte, error)
	// SetTextureSampling replaces the filter, wrap modes and border color.
	SetTextureSampling(t TextureHandle, s Sampling) error
	DestroyTexture(t TextureHandle)
	BindTexture(t TextureHandle, slot int)

	// DrawIndexed draws count indices from the last uploaded buffers.
	DrawIndexed(p ProgramHandle, topology Topology, count int) error

	// DefaultShaders returns the sources of the built-in program: position
	// vec2 at location 0, color vec4 at 1, texcoord vec2 at 2, uniforms
	// u_projection (mat4) and u_texture (int).
	DefaultShaders() (vertex, fragment string)
}

// Surface is a rendering target with its own graphics context, typically
// a window.
type Surface interface {
	IsCurrent() bool
	MakeCurrent() error
	// AutoMakeCurrent reports whether operations may activate the surface
	// on demand.
	AutoMakeCurrent() bool
	Size() (width, height int)
}
