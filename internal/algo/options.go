package algo

import "github.com/elektrokombinacija/dmapf/internal/core"

// Options configures a search.
type Options struct {
	// Blocks lists the cell states treated as impassable.
	Blocks core.BlockMask
	// Tracer receives search events. Never nil after apply.
	Tracer Tracer
	// MaxSteps bounds the time dimension of a timed search; 0 picks a
	// bound from the grid size and the reservation table.
	MaxSteps int
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithBlocks sets the neighbor exclusion mask.
func WithBlocks(m core.BlockMask) Option {
	return func(o *Options) { o.Blocks = m }
}

// WithTracer attaches a tracer to the search.
func WithTracer(t Tracer) Option {
	return func(o *Options) { o.Tracer = t }
}

// WithMaxSteps bounds the timed search horizon.
func WithMaxSteps(n int) Option {
	return func(o *Options) { o.MaxSteps = n }
}

func applyOptions(opts []Option) Options {
	o := Options{
		Blocks: core.DefaultBlocks,
		Tracer: NopTracer{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Tracer == nil {
		o.Tracer = NopTracer{}
	}
	return o
}
