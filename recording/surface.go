package recording

// Surface is an in-memory batch.Surface. Only one surface of a backend is
// current at a time.
type Surface struct {
	backend       *Backend
	width, height int
	auto          bool
	activations   int
}

// NewSurface creates a surface that activates itself on demand. The first
// surface of a backend starts current.
func (b *Backend) NewSurface(width, height int) *Surface {
	s := &Surface{backend: b, width: width, height: height, auto: true}
	if b.current == nil {
		b.current = s
	}
	return s
}

// IsCurrent implements batch.Surface.
func (s *Surface) IsCurrent() bool { return s.backend.current == s }

// MakeCurrent implements batch.Surface.
func (s *Surface) MakeCurrent() error {
	s.backend.current = s
	s.activations++
	return nil
}

// AutoMakeCurrent implements batch.Surface.
func (s *Surface) AutoMakeCurrent() bool { return s.auto }

// SetAutoMakeCurrent controls on-demand activation.
func (s *Surface) SetAutoMakeCurrent(auto bool) { s.auto = auto }

// Size implements batch.Surface.
func (s *Surface) Size() (width, height int) { return s.width, s.height }

// Resize changes the reported size.
func (s *Surface) Resize(width, height int) {
	s.width, s.height = width, height
}

// Activations returns how many times MakeCurrent was called.
func (s *Surface) Activations() int { return s.activations }
