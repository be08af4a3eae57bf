package batch

import "fmt"

// ScalarKind is the component type of a vertex attribute.
type ScalarKind uint8

const (
	ScalarFloat ScalarKind = iota
	ScalarInt
)

// Size returns the size of one component in bytes.
func (k ScalarKind) Size() int { return 4 }

func (k ScalarKind) String() string {
	if k == ScalarInt {
		return "int"
	}
	return "float"
}

// AttribType is the declared type of a vertex attribute.
type AttribType uint8

const (
	Float AttribType = iota + 1
	Vec2
	Vec3
	Vec4
	Int
	IVec2
	IVec3
	IVec4
)

// Components returns the number of scalar components, or 0 for an
// unknown type.
func (t AttribType) Components() int {
	switch t {
	case Float, Int:
		return 1
	case Vec2, IVec2:
		return 2
	case Vec3, IVec3:
		return 3
	case Vec4, IVec4:
		return 4
	default:
		return 0
	}
}

// Scalar returns the component type.
func (t AttribType) Scalar() ScalarKind {
	if t >= Int {
		return ScalarInt
	}
	return ScalarFloat
}

func (t AttribType) String() string {
	names := [...]string{"", "float", "vec2", "vec3", "vec4", "int", "ivec2", "ivec3", "ivec4"}
	if int(t) < len(names) && t != 0 {
		return names[t]
	}
	return fmt.Sprintf("AttribType(%d)", uint8(t))
}

// AttributeDescriptor describes one interleaved vertex attribute.
type AttributeDescriptor struct {
	Location   uint32
	Components int
	Kind       ScalarKind
}

// Size returns the bytes this attribute occupies in one vertex.
func (d AttributeDescriptor) Size() int {
	return d.Components * d.Kind.Size()
}

// VertexAttribute is an attribute placed at its interleaved offset.
type VertexAttribute struct {
	AttributeDescriptor
	Offset int
}

// VertexLayout is the finalized interleaved layout of a program.
type VertexLayout struct {
	Stride     int
	Attributes []VertexAttribute
}

// buildLayout places attributes in registration order. Two attributes may
// not share a location.
func buildLayout(descs []AttributeDescriptor) (VertexLayout, error) {
	if len(descs) == 0 {
		return VertexLayout{}, ErrNoAttributes
	}
	seen := make(map[uint32]int, len(descs))
	layout := VertexLayout{Attributes: make([]VertexAttribute, 0, len(descs))}
	for i, d := range descs {
		if prev, ok := seen[d.Location]; ok {
			return VertexLayout{}, fmt.Errorf("%w: location %d used by attributes %d and %d",
				ErrDuplicateLocation, d.Location, prev, i)
		}
		seen[d.Location] = i
		layout.Attributes = append(layout.Attributes, VertexAttribute{AttributeDescriptor: d, Offset: layout.Stride})
		layout.Stride += d.Size()
	}
	return layout, nil
}
