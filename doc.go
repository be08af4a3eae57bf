// Package batch provides an immediate-mode 2D rendering batcher that sits on
// top of a hardware rasterization pipeline.
//
// # Overview
//
// Client code describes shapes vertex by vertex. The batcher packs the raw
// attribute bytes and index topology of every completed shape into two
// CPU-side arenas and hands them to the graphics backend as a single indexed
// draw call. A flush happens only when something forces it: a change of the
// bound program, the bound texture, the primitive topology, or running out of
// arena space.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/batch"
//	    "github.com/gogpu/batch/recording"
//	)
//
//	be := recording.New()
//	surface := be.NewSurface(800, 600)
//	ctx := batch.NewContext(be)
//
//	b, err := batch.New(ctx, surface)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	b.SetColor(batch.RGB(1, 0, 0))
//	b.DrawRect(10, 10, 100, 50)
//	b.DrawRect(200, 10, 100, 50) // coalesced with the first rect
//	b.Render()
//
// # Shape Assembly
//
// Shapes that are not covered by the helpers are assembled by hand:
//
//	b.BeginShape(batch.Triangle, 4, 0)
//	b.Vertex2f(0, 0); b.Vertex4f(1, 1, 1, 1); b.Vertex2f(0, 0); b.NextVertex()
//	...
//	b.EndShape()
//
// Every vertex must receive exactly the number of bytes declared by the bound
// program's attribute layout before NextVertex or EndShape is accepted.
//
// # Architecture
//
//   - Public API: Context, Program, Texture, Batcher, Style, Matrix, RGBA
//   - Backends: recording (in-memory), wgpu (gogpu/wgpu HAL), opengl (go-gl + SDL)
//   - Tools: cmd/batchreplay replays YAML draw scripts headlessly
//
// # Coordinate System
//
//   - Origin (0,0) at top-left of the surface
//   - X increases right, Y increases down
//   - Angles in radians
//
// # Threading
//
// A Context and everything created from it must be used from one goroutine.
// Switching surfaces requires an explicit MakeCurrent hand-off.
package batch
