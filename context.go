package batch

import "fmt"

// Context is the rendering state shared by every Program, Texture and
// Batcher created from it: the backend, the active program and the texture
// bound at each slot. Only one program and one texture per slot are active
// at a time.
//
// A Context is not safe for concurrent use.
type Context struct {
	backend  Backend
	active   *Program
	textures map[int]*Texture
	batchers []*Batcher
}

// NewContext creates a rendering context over the backend.
func NewContext(b Backend) *Context {
	return &Context{
		backend:  b,
		textures: make(map[int]*Texture),
	}
}

// Backend returns the backend the context drives.
func (c *Context) Backend() Backend { return c.backend }

// ActiveProgram returns the bound program, or nil.
func (c *Context) ActiveProgram() *Program { return c.active }

// BoundTexture returns the texture bound at slot, or nil.
func (c *Context) BoundTexture(slot int) *Texture { return c.textures[slot] }

// ensureCurrent makes s current when allowed. op names the caller for the
// error message.
func (c *Context) ensureCurrent(s Surface, op string) error {
	if s.IsCurrent() {
		return nil
	}
	if !s.AutoMakeCurrent() {
		return fmt.Errorf("%w: call MakeCurrent before %s", ErrSurfaceNotCurrent, op)
	}
	if err := s.MakeCurrent(); err != nil {
		return fmt.Errorf("batch: %s: make surface current: %w", op, err)
	}
	return nil
}

// attach registers a batcher so that it flushes before program or texture
// switches made through any object of this context.
func (c *Context) attach(b *Batcher) {
	c.batchers = append(c.batchers, b)
}

func (c *Context) detach(b *Batcher) {
	for i, x := range c.batchers {
		if x == b {
			c.batchers = append(c.batchers[:i], c.batchers[i+1:]...)
			return
		}
	}
}

// beforeStateChange flushes every attached batcher while the old state is
// still bound. Batches too small to draw are discarded, since their vertices
// were written for the old program and textures.
func (c *Context) beforeStateChange(reason string) error {
	for _, b := range c.batchers {
		if err := b.flushOrDiscard(reason); err != nil {
			return err
		}
	}
	return nil
}
