// Command batchreplay replays a YAML draw script through a Batcher on the
// recording backend and prints the draw calls it produced.
//
// Usage:
//
//	batchreplay -script frame.yaml [-capacity BYTES] [-indices N] [-width W -height H] [-v]
//
// A script is a list of operations (color, align, angle, rect, image,
// polygon, points, line, texture, render):
//
//	ops:
//	  - op: color
//	    color: "#ff8800"
//	  - op: rect
//	    rect: [10, 10, 100, 50]
//	  - op: texture
//	    name: tile
//	    width: 16
//	    height: 16
//	  - op: image
//	    texture: tile
//	    rect: [200, 10, 32, 32]
//	  - op: render
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gogpu/batch"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("batchreplay", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		script   = fs.String("script", "", "YAML draw script")
		capacity = fs.Int("capacity", batch.DefaultVertexCapacity, "vertex arena size in bytes")
		indices  = fs.Int("indices", batch.DefaultIndexCapacity, "index arena size")
		width    = fs.Int("width", 800, "surface width")
		height   = fs.Int("height", 600, "surface height")
		verbose  = fs.Bool("v", false, "log batching decisions")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *script == "" {
		fmt.Fprintln(stderr, "batchreplay: -script is required")
		fs.Usage()
		return 2
	}
	if *verbose {
		batch.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		defer batch.SetLogger(nil)
	}

	f, err := os.Open(*script)
	if err != nil {
		fmt.Fprintf(stderr, "batchreplay: %v\n", err)
		return 1
	}
	defer f.Close()

	s, err := ParseScript(f)
	if err != nil {
		fmt.Fprintf(stderr, "batchreplay: %s: %v\n", *script, err)
		return 1
	}
	res, err := Replay(s, Config{
		Width:          *width,
		Height:         *height,
		VertexCapacity: *capacity,
		IndexCapacity:  *indices,
	})
	if err != nil {
		fmt.Fprintf(stderr, "batchreplay: %s: %v\n", *script, err)
		return 1
	}
	printResult(stdout, res)
	return 0
}

func printResult(w io.Writer, res *Result) {
	for i, d := range res.Draws {
		fmt.Fprintf(w, "draw %d: %s indices=%d vertices=%d textures=%d\n",
			i+1, d.Topology, len(d.Indices), d.VertexCount(), len(d.Textures))
	}
	st := res.Stats
	fmt.Fprintf(w, "draws=%d flushes=%d skipped=%d discarded=%d shapes=%d vertices=%d indices=%d\n",
		st.DrawCalls, st.FlushRequests, st.SkippedFlushes, st.DiscardedBatches,
		st.Shapes, st.Vertices, st.Indices)
}
