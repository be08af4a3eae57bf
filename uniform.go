package batch

import "fmt"

// UniformKind is the declared type of a program uniform.
type UniformKind uint8

const (
	UniformInt UniformKind = iota + 1
	UniformIVec2
	UniformIVec3
	UniformIVec4
	UniformIntArray
	UniformFloat
	UniformVec2
	UniformVec3
	UniformVec4
	UniformFloatArray
	UniformMat2
	UniformMat3
	UniformMat4
)

var uniformKindNames = [...]string{
	UniformInt:        "int",
	UniformIVec2:      "ivec2",
	UniformIVec3:      "ivec3",
	UniformIVec4:      "ivec4",
	UniformIntArray:   "int[]",
	UniformFloat:      "float",
	UniformVec2:       "vec2",
	UniformVec3:       "vec3",
	UniformVec4:       "vec4",
	UniformFloatArray: "float[]",
	UniformMat2:       "mat2",
	UniformMat3:       "mat3",
	UniformMat4:       "mat4",
}

func (k UniformKind) String() string {
	if k != 0 && int(k) < len(uniformKindNames) {
		return uniformKindNames[k]
	}
	return fmt.Sprintf("UniformKind(%d)", uint8(k))
}

// IsInt reports whether values of this kind are uploaded as int32.
func (k UniformKind) IsInt() bool {
	return k >= UniformInt && k <= UniformIntArray
}

// IsArray reports whether the kind has a caller-chosen length.
func (k UniformKind) IsArray() bool {
	return k == UniformIntArray || k == UniformFloatArray
}

// IsMatrix reports whether the kind is a square float matrix.
func (k UniformKind) IsMatrix() bool {
	return k >= UniformMat2 && k <= UniformMat4
}

// Components returns the number of scalars a value of this kind holds.
// Arrays return 0.
func (k UniformKind) Components() int {
	switch k {
	case UniformInt, UniformFloat:
		return 1
	case UniformIVec2, UniformVec2:
		return 2
	case UniformIVec3, UniformVec3:
		return 3
	case UniformIVec4, UniformVec4, UniformMat2:
		return 4
	case UniformMat3:
		return 9
	case UniformMat4:
		return 16
	default:
		return 0
	}
}

// MatrixSize returns n for an n×n matrix kind, 0 otherwise.
func (k UniformKind) MatrixSize() int {
	switch k {
	case UniformMat2:
		return 2
	case UniformMat3:
		return 3
	case UniformMat4:
		return 4
	default:
		return 0
	}
}

// uniformFamily groups kinds accepted by one setter.
type uniformFamily uint8

const (
	familyInt uniformFamily = iota
	familyIntVec
	familyIntArray
	familyFloat
	familyFloatVec
	familyFloatArray
	familyMatrix
)

func (k UniformKind) family() uniformFamily {
	switch k {
	case UniformInt:
		return familyInt
	case UniformIVec2, UniformIVec3, UniformIVec4:
		return familyIntVec
	case UniformIntArray:
		return familyIntArray
	case UniformFloat:
		return familyFloat
	case UniformVec2, UniformVec3, UniformVec4:
		return familyFloatVec
	case UniformFloatArray:
		return familyFloatArray
	default:
		return familyMatrix
	}
}

// uniform is a registered uniform. A negative slot means the program does
// not use the name; setting it is accepted and discarded by the backend.
type uniform struct {
	slot int
	kind UniformKind
}
