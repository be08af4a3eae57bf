// Package opengl implements batch.Backend with OpenGL 3.2 core through
// go-gl, and batch.Surface with SDL2 windows.
//
// OpenGL contexts are bound to the OS thread. Create windows and issue every
// batch call from the main goroutine, with runtime.LockOSThread held:
//
//	func main() {
//		runtime.LockOSThread()
//		win, err := opengl.OpenWindow("demo", 800, 600)
//		...
//		ctx := batch.NewContext(opengl.New())
//		b, err := batch.New(ctx, win)
//		...
//		win.Clear(batch.Black)
//		b.DrawRect(10, 10, 100, 50)
//		b.Render()
//		win.Swap()
//	}
//
// Each window owns its own GL context. Programs and textures live in the
// context that was current when they were created; the batch package makes
// the owning window current before using them.
//
// Build with the nogl tag to leave the package out of builds without cgo or
// SDL2.
package opengl
