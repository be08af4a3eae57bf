package batch

import (
	"errors"
	"fmt"
)

// ErrorKind classifies batcher failures. Every error returned by this package
// matches exactly one kind with errors.Is:
//
//	if errors.Is(err, batch.ProtocolViolation) { ... }
type ErrorKind uint8

const (
	// ContextError means the surface was not current and could not be
	// activated automatically.
	ContextError ErrorKind = iota + 1

	// ConfigurationError means a program, uniform or texture was declared
	// or used inconsistently.
	ConfigurationError

	// ProtocolViolation means the shape assembly sequence was misused.
	ProtocolViolation

	// CapacityError means a shape can never fit in the arenas.
	CapacityError
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case ContextError:
		return "context error"
	case ConfigurationError:
		return "configuration error"
	case ProtocolViolation:
		return "protocol violation"
	case CapacityError:
		return "capacity error"
	default:
		return fmt.Sprintf("ErrorKind(%d)", uint8(k))
	}
}

// Error implements the error interface so a kind can be used as an
// errors.Is target.
func (k ErrorKind) Error() string {
	return "batch: " + k.String()
}

// kindError is a sentinel carrying its kind.
type kindError struct {
	kind ErrorKind
	msg  string
}

func (e *kindError) Error() string { return "batch: " + e.msg }

// Is reports whether target is the kind of this error.
func (e *kindError) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.kind
}

func newError(kind ErrorKind, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// KindOf returns the kind of err, or 0 if err was not produced by this package.
func KindOf(err error) ErrorKind {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	var ce *CompileError
	if errors.As(err, &ce) {
		return ConfigurationError
	}
	return 0
}

// Context errors.
var (
	// ErrSurfaceNotCurrent is returned when an operation needs the surface
	// to be current and auto activation is disabled.
	ErrSurfaceNotCurrent = newError(ContextError, "surface is not current")

	// ErrSurfaceMismatch is returned by BeginShape when the active program
	// belongs to another surface than the batcher.
	ErrSurfaceMismatch = newError(ContextError, "active program belongs to a different surface")
)

// Configuration errors.
var (
	ErrTypeMismatch         = newError(ConfigurationError, "uniform kind mismatch")
	ErrValueLength          = newError(ConfigurationError, "uniform value length does not match kind")
	ErrDuplicateLocation    = newError(ConfigurationError, "duplicate attribute location")
	ErrNoAttributes         = newError(ConfigurationError, "no attributes registered")
	ErrAttributesEnabled    = newError(ConfigurationError, "attributes already enabled")
	ErrAttributesNotEnabled = newError(ConfigurationError, "attributes not enabled")
	ErrInvalidFormat        = newError(ConfigurationError, "invalid texture format")
	ErrInvalidAttribute     = newError(ConfigurationError, "invalid attribute type")
	ErrInvalidSlot          = newError(ConfigurationError, "invalid texture slot")
	ErrDestroyed            = newError(ConfigurationError, "resource already destroyed")
	ErrFileNotFound         = newError(ConfigurationError, "file not found")
)

// Protocol violations.
var (
	ErrVertexOverflow    = newError(ProtocolViolation, "vertex overflow")
	ErrVertexUnderflow   = newError(ProtocolViolation, "vertex underflow")
	ErrTooFewVertices    = newError(ProtocolViolation, "too few vertices")
	ErrTooManyVertices   = newError(ProtocolViolation, "too many vertices")
	ErrNoMoreVertices    = newError(ProtocolViolation, "no more vertices")
	ErrNoShape           = newError(ProtocolViolation, "no shape in progress")
	ErrShapeInProgress   = newError(ProtocolViolation, "shape in progress")
	ErrEmptyShape        = newError(ProtocolViolation, "shape has no vertices")
	ErrIndexCount        = newError(ProtocolViolation, "index count mismatch")
	ErrIndexOutOfRange   = newError(ProtocolViolation, "index out of range")
	ErrProgramNotBound   = newError(ProtocolViolation, "program must be bound")
	ErrNoActiveProgram   = newError(ProtocolViolation, "no active program")
	ErrTopologyNone      = newError(ProtocolViolation, "shape topology is none")
	ErrInvalidPointCount = newError(ProtocolViolation, "not enough points for shape")
)

// ErrShapeTooLarge is returned for a shape that cannot fit an empty arena.
// A full arena is flushed rather than reported.
var ErrShapeTooLarge = newError(CapacityError, "shape too large for arena")

// CompileError reports a shader compilation or link failure.
// It is classified as a ConfigurationError.
type CompileError struct {
	// Stage is "vertex", "fragment" or "link".
	Stage string
	// Log is the backend diagnostic.
	Log string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("batch: %s shader compilation failed: %s", e.Stage, e.Log)
}

// Is reports whether target is ConfigurationError.
func (e *CompileError) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == ConfigurationError
}
