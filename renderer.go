package cellgrid

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/cellgrid/atlas"
	"github.com/gogpu/cellgrid/command"
	"github.com/gogpu/cellgrid/describe"
	"github.com/gogpu/cellgrid/execute"
	"github.com/gogpu/cellgrid/frame"
	"github.com/gogpu/cellgrid/linecache"
	"github.com/gogpu/cellgrid/shape"
)

// Renderer errors.
var (
	// ErrFatal wraps every error Paint cannot recover from.
	ErrFatal = errors.New("cellgrid: unrecoverable render error")

	// ErrRetryLimit is returned when a frame did not complete within
	// Config.MaxPasses passes. It matches ErrFatal.
	ErrRetryLimit = fmt.Errorf("%w: retry limit reached", ErrFatal)
)

// Resolver is the glyph cache used by a Renderer. *atlas.GlyphCache
// implements it.
type Resolver interface {
	describe.Resolver
	// Atlas returns the current atlas.
	Atlas() *atlas.Atlas
	// FilledBox returns the coordinates of the opaque sprite.
	FilledBox() command.TexCoords
	// Recreate replaces the atlas with one of at least size pixels.
	Recreate(size int) error
	Stats() atlas.Stats
}

// Result is a completed frame.
type Result struct {
	Frame *frame.Frame
	Plan  *execute.Plan
	// Passes is the number of describe and execute passes, at least 1.
	Passes  int
	Prepare describe.PrepareResult
	Stats   Stats
}

// Stats reports cache, atlas and recovery counters.
type Stats struct {
	Cache linecache.Stats
	Atlas atlas.Stats
	Frame execute.Stats

	// Recovery actions taken while painting this frame.
	AtlasRecreations int
	BufferGrowths    int
	ShapeBumps       int
	Allowance        atlas.Allowance
}

// Renderer turns window state into filled vertex buffers, recovering
// from atlas, shape cache and buffer exhaustion by retrying.
//
// Renderer is safe for concurrent use; frames are painted one at a time.
type Renderer struct {
	mu sync.Mutex

	cfg       Config
	res       Resolver
	cache     *linecache.Cache
	describer *describe.Describer
	exec      *execute.Executor
}

// New creates a Renderer drawing glyphs from res.
func New(res Resolver, opts ...Option) (*Renderer, error) {
	if res == nil {
		return nil, errors.New("cellgrid: resolver must not be nil")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	cfg := o.cfg.withDefaults()

	shaper := o.shaper
	if shaper == nil {
		var sopts []shape.Option
		if cfg.Font.Ligatures {
			sopts = append(sopts, shape.WithLigatures())
		}
		var err error
		if shaper, err = shape.NewShaper(sopts...); err != nil {
			return nil, fmt.Errorf("cellgrid: create shaper: %w", err)
		}
	}
	c := o.cache
	if c == nil {
		c = linecache.New(linecache.Config{
			LineCapacity:  cfg.Cache.LineCommandCacheSize,
			ShapeCapacity: cfg.Cache.ShapeCacheSize,
		})
	}

	return &Renderer{
		cfg:       cfg,
		res:       res,
		cache:     c,
		describer: describe.New(cfg.DescribeConfig(), res, shaper, c),
		exec:      execute.New(cfg.Buffers),
	}, nil
}

// Config returns the effective configuration.
func (r *Renderer) Config() Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg
}

// SetConfig applies the describer settings of cfg. Cached rows described
// under the old settings become unreachable. Cache and buffer sizes only
// take effect in a new Renderer.
func (r *Renderer) SetConfig(cfg Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg = cfg.withDefaults()
	r.describer.SetConfig(r.cfg.DescribeConfig())
}

// Executor returns the executor holding the vertex buffers of the last
// painted frame.
func (r *Renderer) Executor() *execute.Executor { return r.exec }

// Paint describes and executes one frame. It runs the per-frame
// maintenance once, then retries describe and execute until a pass
// succeeds. It never returns a partial frame.
func (r *Renderer) Paint(win *describe.Window, now time.Time) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := &Result{Prepare: r.describer.Prepare(win, now)}
	vp := execute.Viewport{Width: win.Width, Height: win.Height}

	for pass := range r.cfg.MaxPasses {
		res.Passes = pass + 1
		f, err := r.describer.Describe(win, now)
		if err == nil {
			r.exec.SetFilledBox(r.res.FilledBox())
			var plan *execute.Plan
			if plan, err = r.exec.Execute(f, vp); err == nil {
				res.Frame, res.Plan = f, plan
				res.Stats.Cache = r.cache.Stats()
				res.Stats.Atlas = r.res.Stats()
				res.Stats.Frame = plan.Stats
				res.Stats.Allowance = r.describer.Allowance()
				return res, nil
			}
		}
		if err := r.recover(pass, err, &res.Stats); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %d passes", ErrRetryLimit, r.cfg.MaxPasses)
}

// recover repairs the state behind err so that the next pass can
// succeed. It returns an ErrFatal error when err cannot be recovered.
func (r *Renderer) recover(pass int, err error, st *Stats) error {
	log := Logger()
	var full *execute.BufferFullError
	switch {
	case errors.Is(err, atlas.ErrAtlasExhausted):
		if aerr := r.recoverAtlas(pass, err); aerr != nil {
			return aerr
		}
		st.AtlasRecreations++
		r.cache.Clear()

	case errors.Is(err, shape.ErrShapeCacheStale):
		log.Debug("cellgrid: shape cache stale", "pass", pass)
		r.describer.BumpShapeGeneration()
		r.cache.Clear()
		st.ShapeBumps++

	case errors.As(err, &full):
		r.exec.Grow()
		for _, n := range full.Needs {
			log.Debug("cellgrid: grow quad buffer",
				"pass", pass, "depth", n.Depth, "sub", n.SubLayer, "need", n.Need, "capacity", n.Capacity)
		}
		r.describer.BumpQuadGeneration()
		r.cache.ClearLines()
		st.BufferGrowths++

	default:
		return fmt.Errorf("%w: %w", ErrFatal, err)
	}
	return nil
}

// recoverAtlas recreates the atlas: at the current size on the first
// pass, and larger on later ones. When the atlas cannot grow, images get
// less room instead.
func (r *Renderer) recoverAtlas(pass int, cause error) error {
	log := Logger()
	current := r.res.Atlas().Size()
	size := current
	if pass > 0 {
		hint := 0
		var ex *atlas.ExhaustedError
		if errors.As(cause, &ex) {
			hint = ex.SizeHint
		}
		size = max(hint, 2*current)
	}
	log.Debug("cellgrid: atlas exhausted", "pass", pass, "size", current, "want", size)

	err := r.res.Recreate(size)
	if err == nil {
		return nil
	}
	next, ok := r.describer.Allowance().Degrade()
	if !ok {
		return fmt.Errorf("%w: atlas exhausted with images disabled: %w", ErrFatal, err)
	}
	log.Warn("cellgrid: atlas cannot grow, degrading images",
		"size", current, "error", err, "allowance", next)
	r.describer.SetAllowance(next)
	if err := r.res.Recreate(current); err != nil {
		return fmt.Errorf("%w: recreate atlas: %w", ErrFatal, err)
	}
	return nil
}
