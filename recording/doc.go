// Package recording provides an in-memory batch.Backend that records every
// call it receives.
//
// Nothing is rasterized. Instead each backend call is captured as a typed
// command, and every draw call is stored together with a copy of the vertex
// bytes, the indices and the texture bindings it would have used. Tests
// and tools inspect exactly what a flush produced.
//
// # Example
//
//	be := recording.New()
//	surface := be.NewSurface(800, 600)
//	b, _ := batch.New(batch.NewContext(be), surface)
//	b.DrawRect(0, 0, 10, 10)
//	b.Render()
//
//	for _, d := range be.Draws() {
//	    fmt.Println(d.Topology, len(d.Indices))
//	}
//
// The backend registers itself as "recording".
package recording
