//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/batch"
	"github.com/gogpu/gputypes"
)

// primitiveTopology maps a batch topology to the pipeline topology used to
// draw it. Fans and loops are drawn from rewritten indices.
func primitiveTopology(t batch.Topology) (gputypes.PrimitiveTopology, error) {
	switch t {
	case batch.Points:
		return gputypes.PrimitiveTopologyPointList, nil
	case batch.Line:
		return gputypes.PrimitiveTopologyLineList, nil
	case batch.LineStrip, batch.LineLoop:
		return gputypes.PrimitiveTopologyLineStrip, nil
	case batch.Triangle, batch.TriangleFan:
		return gputypes.PrimitiveTopologyTriangleList, nil
	case batch.TriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip, nil
	default:
		return 0, fmt.Errorf("wgpu: cannot draw topology %s", t)
	}
}

// assembleIndices appends the indices to draw for topology t to dst.
// A fan {a b c d} becomes {a b c, a c d}; a loop is closed by repeating its
// first index.
func assembleIndices(dst []uint32, t batch.Topology, indices []uint32) []uint32 {
	switch t {
	case batch.TriangleFan:
		for i := 1; i+1 < len(indices); i++ {
			dst = append(dst, indices[0], indices[i], indices[i+1])
		}
		return dst
	case batch.LineLoop:
		dst = append(dst, indices...)
		if len(indices) > 1 {
			dst = append(dst, indices[0])
		}
		return dst
	default:
		return append(dst, indices...)
	}
}
