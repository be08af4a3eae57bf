package batch

// Default arena capacities.
const (
	DefaultVertexCapacity = 1 << 20 // bytes
	DefaultIndexCapacity  = 1 << 18 // indices
)

// Option configures a Batcher during creation.
//
// Example:
//
//	b, err := batch.New(ctx, surface,
//	    batch.WithVertexCapacity(64<<10),
//	    batch.WithIndexCapacity(16<<10),
//	)
type Option func(*options)

type options struct {
	vertexCapacity int
	indexCapacity  int
	style          Style
}

func defaultOptions() options {
	return options{
		vertexCapacity: DefaultVertexCapacity,
		indexCapacity:  DefaultIndexCapacity,
		style:          DefaultStyle(),
	}
}

// WithVertexCapacity sets the vertex arena size in bytes.
// Non-positive values are ignored.
func WithVertexCapacity(bytes int) Option {
	return func(o *options) {
		if bytes > 0 {
			o.vertexCapacity = bytes
		}
	}
}

// WithIndexCapacity sets the index arena size in indices.
// Non-positive values are ignored.
func WithIndexCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.indexCapacity = n
		}
	}
}

// WithStyle sets the initial style used by the shape helpers.
func WithStyle(s Style) Option {
	return func(o *options) {
		o.style = s
	}
}
