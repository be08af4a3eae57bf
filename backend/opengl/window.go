//go:build !nogl

package opengl

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/gl/v3.2-core/gl"
	"github.com/gogpu/batch"
	"github.com/veandco/go-sdl2/sdl"
)

// ErrWindowDestroyed is returned by operations on a destroyed window.
var ErrWindowDestroyed = errors.New("opengl: window destroyed")

var (
	glOnce sync.Once
	errGL  error

	// windows counts open windows; SDL is shut down with the last one.
	windows int
	// current is the window whose context is current on this thread.
	current *Window
)

// Window is an SDL2 window with its own OpenGL 3.2 core context. It
// implements batch.Surface.
type Window struct {
	window *sdl.Window
	ctx    sdl.GLContext
	auto   bool
}

var _ batch.Surface = (*Window)(nil)

// OpenWindow creates a window and makes its context current. The first
// call initializes SDL and loads the GL entry points.
func OpenWindow(title string, width, height int) (*Window, error) {
	if windows == 0 {
		if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
			return nil, fmt.Errorf("opengl: initialize SDL2: %w", err)
		}
	}

	_ = sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 3)
	_ = sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 2)
	_ = sdl.GLSetAttribute(sdl.GL_CONTEXT_FLAGS, sdl.GL_CONTEXT_FORWARD_COMPATIBLE_FLAG)
	_ = sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	_ = sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(width), int32(height), sdl.WINDOW_OPENGL)
	if err != nil {
		quitIfIdle()
		return nil, fmt.Errorf("opengl: create window: %w", err)
	}
	ctx, err := window.GLCreateContext()
	if err != nil {
		_ = window.Destroy()
		quitIfIdle()
		return nil, fmt.Errorf("opengl: create context: %w", err)
	}
	w := &Window{window: window, ctx: ctx, auto: true}
	windows++

	if err := w.MakeCurrent(); err != nil {
		w.Destroy()
		return nil, err
	}
	glOnce.Do(func() { errGL = gl.Init() })
	if errGL != nil {
		w.Destroy()
		return nil, fmt.Errorf("opengl: load GL: %w", errGL)
	}

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Viewport(0, 0, int32(width), int32(height))

	batch.Logger().Info("opengl: window opened",
		"title", title, "width", width, "height", height,
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)))
	return w, nil
}

func quitIfIdle() {
	if windows == 0 {
		sdl.Quit()
	}
}

// IsCurrent reports whether the window's context is current.
func (w *Window) IsCurrent() bool { return current == w && w.window != nil }

// MakeCurrent binds the window's context to the calling thread.
func (w *Window) MakeCurrent() error {
	if w.window == nil {
		return ErrWindowDestroyed
	}
	if err := w.window.GLMakeCurrent(w.ctx); err != nil {
		return fmt.Errorf("opengl: make current: %w", err)
	}
	current = w
	return nil
}

// AutoMakeCurrent reports whether the batcher may make the window current
// on demand. It defaults to true.
func (w *Window) AutoMakeCurrent() bool { return w.auto }

// SetAutoMakeCurrent sets the on-demand activation policy.
func (w *Window) SetAutoMakeCurrent(auto bool) { w.auto = auto }

// Size returns the window size in pixels.
func (w *Window) Size() (width, height int) {
	if w.window == nil {
		return 0, 0
	}
	ww, wh := w.window.GetSize()
	return int(ww), int(wh)
}

// Clear fills the framebuffer with c.
func (w *Window) Clear(c batch.RGBA) {
	if !w.IsCurrent() {
		if err := w.MakeCurrent(); err != nil {
			return
		}
	}
	gl.ClearColor(float32(c.R), float32(c.G), float32(c.B), float32(c.A))
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

// Swap presents the back buffer.
func (w *Window) Swap() {
	if w.window != nil {
		w.window.GLSwap()
	}
}

// Destroy deletes the context and closes the window. Resources created in
// the context are released with it.
func (w *Window) Destroy() {
	if w.window == nil {
		return
	}
	if current == w {
		current = nil
	}
	sdl.GLDeleteContext(w.ctx)
	_ = w.window.Destroy()
	w.window = nil
	windows--
	quitIfIdle()
}
