package main

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/gogpu/batch"
	"github.com/gogpu/batch/recording"
	"golang.org/x/image/draw"
	"gopkg.in/yaml.v3"
)

// Script is a list of drawing operations replayed in order.
type Script struct {
	Ops []Op `yaml:"ops"`
}

// Op is one script step. Which fields apply depends on Op.
type Op struct {
	Op string `yaml:"op"`

	// color
	Color string `yaml:"color,omitempty"`

	// align
	H      string    `yaml:"h,omitempty"`
	V      string    `yaml:"v,omitempty"`
	Offset []float64 `yaml:"offset,omitempty"`

	// angle
	Degrees float64 `yaml:"degrees,omitempty"`

	// rect, image
	Rect []float64 `yaml:"rect,omitempty"`

	// polygon, points, line
	Points    [][]float64 `yaml:"points,omitempty"`
	Thickness float64     `yaml:"thickness,omitempty"`

	// texture, image
	Name    string `yaml:"name,omitempty"`
	Texture string `yaml:"texture,omitempty"`
	Width   int    `yaml:"width,omitempty"`
	Height  int    `yaml:"height,omitempty"`
	Filter  string `yaml:"filter,omitempty"`
	Wrap    string `yaml:"wrap,omitempty"`
}

// ParseScript decodes a YAML script. Unknown fields are rejected.
func ParseScript(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, fmt.Errorf("parse script: %w", err)
	}
	return &s, nil
}

// Config sizes the replay surface and batcher.
type Config struct {
	Width, Height  int
	VertexCapacity int
	IndexCapacity  int
}

// Result is what a replay produced.
type Result struct {
	Draws []recording.DrawCall
	Stats batch.Stats
}

// Replay runs the script on a recording backend and returns the draw calls.
// Any batching error stops the replay and names the failing step.
func Replay(s *Script, cfg Config) (*Result, error) {
	be := recording.New()
	surface := be.NewSurface(cfg.Width, cfg.Height)
	ctx := batch.NewContext(be)

	var opts []batch.Option
	if cfg.VertexCapacity > 0 {
		opts = append(opts, batch.WithVertexCapacity(cfg.VertexCapacity))
	}
	if cfg.IndexCapacity > 0 {
		opts = append(opts, batch.WithIndexCapacity(cfg.IndexCapacity))
	}
	b, err := batch.New(ctx, surface, opts...)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	r := &replayer{ctx: ctx, surface: surface, b: b, textures: make(map[string]*batch.Texture)}
	for i, op := range s.Ops {
		if err := r.apply(op); err != nil {
			return nil, fmt.Errorf("op %d (%s): %w", i+1, op.Op, err)
		}
	}
	if err := b.Render(); err != nil {
		return nil, fmt.Errorf("final render: %w", err)
	}
	return &Result{Draws: be.Draws(), Stats: b.Stats()}, nil
}

type replayer struct {
	ctx      *batch.Context
	surface  batch.Surface
	b        *batch.Batcher
	textures map[string]*batch.Texture
}

func (r *replayer) apply(op Op) error {
	switch op.Op {
	case "color":
		c, err := batch.ParseHex(op.Color)
		if err != nil {
			return err
		}
		r.b.SetColor(c)
		return nil
	case "align":
		a, err := parseAlign(op)
		if err != nil {
			return err
		}
		r.b.SetAlign(a)
		return nil
	case "angle":
		r.b.SetAngle(op.Degrees * math.Pi / 180)
		return nil
	case "rect":
		x, y, w, h, err := rect(op.Rect)
		if err != nil {
			return err
		}
		return r.b.DrawRect(x, y, w, h)
	case "image":
		t, ok := r.textures[op.Texture]
		if !ok {
			return fmt.Errorf("unknown texture %q", op.Texture)
		}
		x, y, w, h, err := rect(op.Rect)
		if err != nil {
			return err
		}
		return r.b.DrawImage(t, x, y, w, h)
	case "polygon":
		pts, err := points(op.Points)
		if err != nil {
			return err
		}
		return r.b.DrawPolygon(pts)
	case "points":
		pts, err := points(op.Points)
		if err != nil {
			return err
		}
		return r.b.DrawPoints(pts)
	case "line":
		pts, err := points(op.Points)
		if err != nil {
			return err
		}
		if len(pts) != 2 {
			return fmt.Errorf("line needs 2 points, got %d", len(pts))
		}
		thickness := op.Thickness
		if thickness == 0 {
			thickness = 1
		}
		return r.b.DrawLine(pts[0].X, pts[0].Y, pts[1].X, pts[1].Y, thickness)
	case "texture":
		return r.createTexture(op)
	case "render":
		return r.b.Render()
	default:
		return fmt.Errorf("unknown op %q", op.Op)
	}
}

// createTexture makes a solid texture filled with op.Color, white by
// default.
func (r *replayer) createTexture(op Op) error {
	if op.Name == "" {
		return errors.New("texture name is required")
	}
	if _, dup := r.textures[op.Name]; dup {
		return fmt.Errorf("texture %q already defined", op.Name)
	}
	fill := batch.White
	if op.Color != "" {
		c, err := batch.ParseHex(op.Color)
		if err != nil {
			return err
		}
		fill = c
	}
	filter := batch.FilterLinear
	switch op.Filter {
	case "", "linear":
	case "nearest":
		filter = batch.FilterNearest
	default:
		return fmt.Errorf("unknown filter %q", op.Filter)
	}

	wrap, ok := wraps[op.Wrap]
	if !ok {
		return fmt.Errorf("unknown wrap %q", op.Wrap)
	}

	img := image.NewRGBA(image.Rect(0, 0, op.Width, op.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: fill.Color()}, image.Point{}, draw.Src)
	t, err := r.ctx.NewTextureFromImage(r.surface, img, filter)
	if err != nil {
		return err
	}
	if err := t.SetWrap(wrap, wrap); err != nil {
		return err
	}
	r.textures[op.Name] = t
	return nil
}

var wraps = map[string]batch.Wrap{
	"":             batch.WrapClampToEdge,
	"clamp":        batch.WrapClampToEdge,
	"repeat":       batch.WrapRepeat,
	"mirror":       batch.WrapMirroredRepeat,
	"clamp-border": batch.WrapClampToBorder,
}

var (
	hAligns = map[string]batch.HAlign{"": batch.AlignLeft, "left": batch.AlignLeft, "center": batch.AlignCenter, "right": batch.AlignRight}
	vAligns = map[string]batch.VAlign{"": batch.AlignTop, "top": batch.AlignTop, "middle": batch.AlignMiddle, "bottom": batch.AlignBottom}
)

func parseAlign(op Op) (batch.Align, error) {
	if len(op.Offset) > 0 {
		if len(op.Offset) != 2 {
			return batch.Align{}, fmt.Errorf("offset needs 2 values, got %d", len(op.Offset))
		}
		return batch.AlignOffset(op.Offset[0], op.Offset[1]), nil
	}
	h, ok := hAligns[op.H]
	if !ok {
		return batch.Align{}, fmt.Errorf("unknown horizontal align %q", op.H)
	}
	v, ok := vAligns[op.V]
	if !ok {
		return batch.Align{}, fmt.Errorf("unknown vertical align %q", op.V)
	}
	return batch.AlignAt(h, v), nil
}

func rect(v []float64) (x, y, w, h float64, err error) {
	if len(v) != 4 {
		return 0, 0, 0, 0, fmt.Errorf("rect needs 4 values, got %d", len(v))
	}
	return v[0], v[1], v[2], v[3], nil
}

func points(v [][]float64) ([]batch.Point, error) {
	pts := make([]batch.Point, len(v))
	for i, p := range v {
		if len(p) != 2 {
			return nil, fmt.Errorf("point %d needs 2 values, got %d", i, len(p))
		}
		pts[i] = batch.Pt(p[0], p[1])
	}
	return pts, nil
}
