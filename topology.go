package batch

import "fmt"

// Topology is the primitive assembly mode of a shape and of the batch it
// is accumulated into.
type Topology uint8

const (
	// TopologyNone is the topology of an empty batch.
	TopologyNone Topology = iota
	Points
	Triangle
	TriangleStrip
	TriangleFan
	Line
	LineStrip
	LineLoop
)

// String returns the topology name.
func (t Topology) String() string {
	switch t {
	case TopologyNone:
		return "None"
	case Points:
		return "Points"
	case Triangle:
		return "Triangle"
	case TriangleStrip:
		return "TriangleStrip"
	case TriangleFan:
		return "TriangleFan"
	case Line:
		return "Line"
	case LineStrip:
		return "LineStrip"
	case LineLoop:
		return "LineLoop"
	default:
		return fmt.Sprintf("Topology(%d)", uint8(t))
	}
}

// ParseTopology returns the topology with the given String name.
func ParseTopology(s string) (Topology, error) {
	for t := Points; t <= LineLoop; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return TopologyNone, fmt.Errorf("batch: unknown topology %q", s)
}

// defaultIndexCount is the index count used when BeginShape receives zero.
// Triangle shapes are fan-triangulated polygons.
func (t Topology) defaultIndexCount(vertexCount int) int {
	if t == Triangle {
		return 3 * (vertexCount - 2)
	}
	return vertexCount
}
