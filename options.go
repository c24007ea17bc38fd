package cellgrid

import (
	"github.com/gogpu/cellgrid/linecache"
	"github.com/gogpu/cellgrid/shape"
)

// Option configures a Renderer during creation.
//
// Example:
//
//	// Default settings
//	r, err := cellgrid.New(glyphs)
//
//	// Settings loaded from a file, shared row cache
//	r, err := cellgrid.New(glyphs, cellgrid.WithConfig(cfg), cellgrid.WithLineCache(c))
type Option func(*options)

// options holds optional configuration for Renderer creation.
type options struct {
	cfg    Config
	shaper *shape.Shaper
	cache  *linecache.Cache
}

// defaultOptions returns the default renderer options.
func defaultOptions() options {
	return options{
		cfg:    DefaultConfig(),
		shaper: nil, // Created from cfg.Font if nil
		cache:  nil, // Created from cfg.Cache if nil
	}
}

// WithConfig replaces the default configuration. Zero sizes and counts
// in cfg still select their defaults.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithShaper sets the shaper. Use it to share one shaper, and its
// ligature tables, between renderers.
func WithShaper(s *shape.Shaper) Option {
	return func(o *options) {
		o.shaper = s
	}
}

// WithLineCache sets the row cache. The renderer clears it while
// recovering from atlas and buffer exhaustion.
func WithLineCache(c *linecache.Cache) Option {
	return func(o *options) {
		o.cache = c
	}
}
