package batch

import "fmt"

// BeginShape starts a shape of vertexCount vertices with the active
// program's layout. indexCount 0 selects the default: 3*(vertexCount-2) for
// Triangle (a fan-triangulated polygon), vertexCount otherwise.
//
// The pending batch is flushed first when its topology differs or when the
// shape would not fit in the remaining arena space.
func (b *Batcher) BeginShape(topology Topology, vertexCount, indexCount int) error {
	if b.shape.active {
		return ErrShapeInProgress
	}
	if topology == TopologyNone || topology > LineLoop {
		return fmt.Errorf("%w: %v", ErrTopologyNone, topology)
	}
	if vertexCount <= 0 {
		return fmt.Errorf("%w: %d vertices", ErrEmptyShape, vertexCount)
	}
	if indexCount < 0 {
		return fmt.Errorf("%w: %d indices", ErrIndexCount, indexCount)
	}

	p := b.ctx.active
	if p == nil {
		return ErrNoActiveProgram
	}
	if p.surface != b.surface {
		return ErrSurfaceMismatch
	}
	if !p.enabled {
		return ErrAttributesNotEnabled
	}
	if err := b.ctx.ensureCurrent(b.surface, "BeginShape"); err != nil {
		return err
	}

	stride := p.Stride()
	size := stride * vertexCount
	if size >= b.vertices.capacity() {
		return fmt.Errorf("%w: %d vertices of %d bytes, arena holds %d bytes",
			ErrShapeTooLarge, vertexCount, stride, b.vertices.capacity())
	}
	if indexCount == 0 {
		if topology == Triangle && vertexCount < 3 {
			return fmt.Errorf("%w: triangle shape needs 3 vertices, got %d", ErrTooFewVertices, vertexCount)
		}
		indexCount = topology.defaultIndexCount(vertexCount)
	}
	if indexCount >= b.indices.capacity() {
		return fmt.Errorf("%w: %d indices, arena holds %d",
			ErrShapeTooLarge, indexCount, b.indices.capacity())
	}

	if topology != b.topology && b.hasPending() {
		if err := b.flushOrDiscard("topology change"); err != nil {
			return err
		}
	}
	if stride != b.stride && b.hasPending() {
		if err := b.flushOrDiscard("layout change"); err != nil {
			return err
		}
	}
	if size >= b.vertices.remaining() || indexCount >= b.indices.remaining() {
		if err := b.flushOrDiscard("arena full"); err != nil {
			return err
		}
	}

	b.topology = topology
	b.stride = stride
	b.shape = shapeState{
		active:            true,
		topology:          topology,
		vertexCount:       vertexCount,
		verticesRemaining: vertexCount,
		bytesRemaining:    stride,
		stride:            stride,
		startVertex:       uint32(b.vertices.cursor / stride),
		startByte:         b.vertices.cursor,
		indexCount:        indexCount,
	}
	return nil
}

func (b *Batcher) hasPending() bool {
	return b.vertices.cursor > 0 || b.indices.cursor > 0
}

// flushOrDiscard draws the pending batch before a shape or a state change
// that cannot join it. A batch that Render leaves pending cannot be drawn
// and is dropped.
func (b *Batcher) flushOrDiscard(reason string) error {
	if err := b.Render(); err != nil {
		return err
	}
	if b.hasPending() {
		Logger().Warn("batch: discarding undrawable batch", "reason", reason,
			"topology", b.topology, "indices", b.indices.cursor)
		b.stats.DiscardedBatches++
		b.vertices.reset()
		b.indices.reset()
	}
	return nil
}

// reserve accounts for n scalars of the vertex in progress.
func (b *Batcher) reserve(op string, n int) error {
	if !b.shape.active {
		return fmt.Errorf("%w: %s outside BeginShape/EndShape", ErrNoShape, op)
	}
	if b.shape.verticesRemaining == 0 {
		return fmt.Errorf("%w: %s after the last of %d vertices", ErrNoMoreVertices, op, b.shape.vertexCount)
	}
	size := n * 4
	if size > b.shape.bytesRemaining {
		return fmt.Errorf("%w: %s writes %d bytes, %d of %d left in vertex",
			ErrVertexOverflow, op, size, b.shape.bytesRemaining, b.shape.stride)
	}
	b.shape.bytesRemaining -= size
	return nil
}

// Vertex1f writes one float field of the current vertex.
func (b *Batcher) Vertex1f(x float32) error {
	if err := b.reserve("Vertex1f", 1); err != nil {
		return err
	}
	b.vertices.putFloat32(x)
	return nil
}

// Vertex2f writes two float fields of the current vertex.
func (b *Batcher) Vertex2f(x, y float32) error {
	if err := b.reserve("Vertex2f", 2); err != nil {
		return err
	}
	b.vertices.putFloat32(x)
	b.vertices.putFloat32(y)
	return nil
}

// Vertex3f writes three float fields of the current vertex.
func (b *Batcher) Vertex3f(x, y, z float32) error {
	if err := b.reserve("Vertex3f", 3); err != nil {
		return err
	}
	b.vertices.putFloat32(x)
	b.vertices.putFloat32(y)
	b.vertices.putFloat32(z)
	return nil
}

// Vertex4f writes four float fields of the current vertex.
func (b *Batcher) Vertex4f(x, y, z, w float32) error {
	if err := b.reserve("Vertex4f", 4); err != nil {
		return err
	}
	b.vertices.putFloat32(x)
	b.vertices.putFloat32(y)
	b.vertices.putFloat32(z)
	b.vertices.putFloat32(w)
	return nil
}

// Vertex1i writes one int field of the current vertex.
func (b *Batcher) Vertex1i(x int32) error {
	if err := b.reserve("Vertex1i", 1); err != nil {
		return err
	}
	b.vertices.putInt32(x)
	return nil
}

// Vertex2i writes two int fields of the current vertex.
func (b *Batcher) Vertex2i(x, y int32) error {
	if err := b.reserve("Vertex2i", 2); err != nil {
		return err
	}
	b.vertices.putInt32(x)
	b.vertices.putInt32(y)
	return nil
}

// Vertex3i writes three int fields of the current vertex.
func (b *Batcher) Vertex3i(x, y, z int32) error {
	if err := b.reserve("Vertex3i", 3); err != nil {
		return err
	}
	b.vertices.putInt32(x)
	b.vertices.putInt32(y)
	b.vertices.putInt32(z)
	return nil
}

// Vertex4i writes four int fields of the current vertex.
func (b *Batcher) Vertex4i(x, y, z, w int32) error {
	if err := b.reserve("Vertex4i", 4); err != nil {
		return err
	}
	b.vertices.putInt32(x)
	b.vertices.putInt32(y)
	b.vertices.putInt32(z)
	b.vertices.putInt32(w)
	return nil
}

// NextVertex completes the current vertex. Every field declared by the
// layout must have been written.
func (b *Batcher) NextVertex() error {
	if !b.shape.active {
		return fmt.Errorf("%w: NextVertex outside BeginShape/EndShape", ErrNoShape)
	}
	if b.shape.bytesRemaining != 0 {
		return fmt.Errorf("%w: %d of %d bytes missing", ErrVertexUnderflow, b.shape.bytesRemaining, b.shape.stride)
	}
	if b.shape.verticesRemaining == 0 {
		return fmt.Errorf("%w: shape has %d vertices", ErrNoMoreVertices, b.shape.vertexCount)
	}
	b.shape.verticesRemaining--
	if b.shape.verticesRemaining > 0 {
		b.shape.bytesRemaining = b.shape.stride
	}
	return nil
}

// checkEnd validates that the last vertex is complete.
func (b *Batcher) checkEnd() error {
	s := &b.shape
	if !s.active {
		return fmt.Errorf("%w: EndShape without BeginShape", ErrNoShape)
	}
	if s.verticesRemaining > 1 {
		return fmt.Errorf("%w: %d of %d vertices not written", ErrTooFewVertices, s.verticesRemaining-1, s.vertexCount)
	}
	if s.verticesRemaining < 1 {
		return fmt.Errorf("%w: NextVertex called after the last vertex", ErrTooManyVertices)
	}
	if s.bytesRemaining != 0 {
		return fmt.Errorf("%w: %d of %d bytes missing in last vertex", ErrVertexUnderflow, s.bytesRemaining, s.stride)
	}
	return nil
}

// EndShape completes the shape with generated indices: a fan from vertex 0
// for Triangle, 0..n-1 otherwise.
func (b *Batcher) EndShape() error {
	if err := b.checkEnd(); err != nil {
		return err
	}
	n := b.shape.indexCount
	if cap(b.scratch) < n {
		b.scratch = make([]uint32, n)
	}
	idx := b.scratch[:n]
	if b.shape.topology == Triangle {
		for k := range idx {
			if corner := k % 3; corner != 0 {
				idx[k] = uint32(k/3 + corner)
			} else {
				idx[k] = 0
			}
		}
	} else {
		for k := range idx {
			idx[k] = uint32(k)
		}
	}
	return b.commit(idx)
}

// EndShapeIndices completes the shape with shape-relative indices. The
// length must equal the index count given to BeginShape and every index
// must name one of the shape's vertices.
func (b *Batcher) EndShapeIndices(indices []uint32) error {
	if err := b.checkEnd(); err != nil {
		return err
	}
	if len(indices) != b.shape.indexCount {
		return fmt.Errorf("%w: got %d indices, shape declared %d", ErrIndexCount, len(indices), b.shape.indexCount)
	}
	return b.commit(indices)
}

func (b *Batcher) commit(indices []uint32) error {
	n := uint32(b.shape.vertexCount)
	for i, idx := range indices {
		if idx >= n {
			return fmt.Errorf("%w: index %d at position %d, shape has %d vertices", ErrIndexOutOfRange, idx, i, n)
		}
	}
	b.indices.appendRebased(indices, b.shape.startVertex)

	b.stats.Shapes++
	b.stats.Vertices += b.shape.vertexCount
	b.stats.Indices += len(indices)
	b.shape = shapeState{}
	return nil
}
