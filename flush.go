package batch

import "fmt"

// Render flushes the pending batch: it uploads the used part of both
// arenas to the active program, issues one indexed draw call and resets the
// arenas.
//
// Render does nothing when the active program belongs to another surface
// or fewer than 3 indices are pending; the pending batch is kept.
func (b *Batcher) Render() error {
	if b.closed {
		return ErrDestroyed
	}
	b.stats.FlushRequests++
	if b.shape.active {
		return fmt.Errorf("%w: Render during shape assembly", ErrShapeInProgress)
	}

	p := b.ctx.active
	if p == nil || p.surface != b.surface {
		if b.hasPending() {
			b.stats.SkippedFlushes++
			Logger().Warn("batch: flush skipped, active program belongs to another surface",
				"indices", b.indices.cursor)
		}
		return nil
	}
	if b.indices.cursor < 3 {
		if b.hasPending() {
			b.stats.SkippedFlushes++
			Logger().Debug("batch: flush skipped, degenerate batch", "indices", b.indices.cursor)
		}
		return nil
	}
	if err := b.ctx.ensureCurrent(b.surface, "Render"); err != nil {
		return err
	}

	if err := p.UploadVertexBytes(b.vertices.used()); err != nil {
		return err
	}
	if err := p.UploadIndexInts(b.indices.used()); err != nil {
		return err
	}
	if err := b.ctx.backend.DrawIndexed(p.handle, b.topology, b.indices.cursor); err != nil {
		return fmt.Errorf("batch: draw: %w", err)
	}
	b.stats.DrawCalls++
	Logger().Debug("batch: flush", "topology", b.topology,
		"indices", b.indices.cursor, "bytes", b.vertices.cursor)

	b.vertices.reset()
	b.indices.reset()
	return nil
}

// BindProgram makes p the active program, nil meaning the default program.
// Pending geometry is drawn with the previous program first. Binding the
// active program does nothing.
func (b *Batcher) BindProgram(p *Program) error {
	if p == nil {
		p = b.program
	}
	if b.ctx.active == p {
		return nil
	}
	if b.shape.active {
		return fmt.Errorf("%w: BindProgram during shape assembly", ErrShapeInProgress)
	}
	return p.Bind()
}

// BindTexture binds t at slot, nil meaning the blank texture. Pending
// geometry is drawn with the previous texture first. Binding the texture
// already at slot does nothing.
func (b *Batcher) BindTexture(t *Texture, slot int) error {
	if t == nil {
		t = b.blank
	}
	if t.IsBound(slot) {
		return nil
	}
	if b.shape.active {
		return fmt.Errorf("%w: BindTexture during shape assembly", ErrShapeInProgress)
	}
	return t.Bind(slot)
}
