// Package linecache memoizes row descriptions in two tiers.
//
// The command tier maps everything that influences a row's commands to
// the commands themselves. The shape tier maps row content to its shaped
// line, so a row that only moved or changed cursor state skips shaping.
// Both tiers are bounded LRUs; generation fields in the keys make stale
// entries unreachable without scanning.
package linecache

import (
	"sync"
	"time"

	"github.com/gogpu/cellgrid/command"
	"github.com/gogpu/cellgrid/grid"
	"github.com/gogpu/cellgrid/internal/cache"
	"github.com/gogpu/cellgrid/line"
	"github.com/gogpu/cellgrid/shape"
)

// Default tier capacities.
const (
	DefaultLineCapacity  = 1024
	DefaultShapeCapacity = 1024
)

// LineKey identifies the commands of one row.
type LineKey struct {
	PaneID     uint64
	PaneWidth  int
	PaneLeft   int
	PaneActive bool
	Password   bool

	ConfigGeneration uint64
	ShapeGeneration  uint64
	QuadGeneration   uint64
	AtlasGeneration  uint64
	FontEpoch        uint64
	// Style is line.Style.Hash of the pane colors and cell metrics.
	Style            uint64

	ContentHash uint64
	TopPixelY   float32
	LeftPixelX  float32
	PhysRow     int

	CursorVisible bool
	CursorColumn  int
	CursorWidth   int
	CursorShape   line.CursorShape

	Selection       line.Span
	ComposingColumn int
	Composing       string
	ReverseVideo    bool
	BlinkPhase      int64
}

// LineEntry is a cached row description.
type LineEntry struct {
	// Expires is the zero time for entries that never expire.
	Expires                 time.Time
	Commands                []command.Command
	InvalidateOnHoverChange bool
	// Highlight is the hyperlink hovered when the entry was described.
	Highlight *grid.Hyperlink
}

// ShapeKey identifies a shaped row.
type ShapeKey struct {
	ContentHash     uint64
	ComposingColumn int
	Composing       string
	ShapeGeneration uint64
	// Palette fingerprints the default colors baked into the clusters.
	Palette uint64
}

// ShapeEntry is a cached shaped row. Line is shared and read-only.
type ShapeEntry struct {
	Expires time.Time
	Line    *shape.ShapedLine
}

// Config sizes the tiers.
type Config struct {
	LineCapacity  int `mapstructure:"line_capacity" yaml:"line_capacity"`
	ShapeCapacity int `mapstructure:"shape_capacity" yaml:"shape_capacity"`
}

func (c Config) withDefaults() Config {
	if c.LineCapacity <= 0 {
		c.LineCapacity = DefaultLineCapacity
	}
	if c.ShapeCapacity <= 0 {
		c.ShapeCapacity = DefaultShapeCapacity
	}
	return c
}

// Cache is the two-tier row cache. It is safe for concurrent use.
type Cache struct {
	mu     sync.Mutex
	lines  *cache.LRU[LineKey, LineEntry]
	shapes *cache.LRU[ShapeKey, ShapeEntry]
}

// New creates a Cache. Zero capacities select the defaults.
func New(cfg Config) *Cache {
	cfg = cfg.withDefaults()
	return &Cache{
		lines:  cache.New[LineKey, LineEntry](cfg.LineCapacity),
		shapes: cache.New[ShapeKey, ShapeEntry](cfg.ShapeCapacity),
	}
}

func expired(exp, now time.Time) bool {
	return !exp.IsZero() && !now.Before(exp)
}

func sameLink(a, b *grid.Hyperlink) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// LookupLine returns the cached commands for key. Expired entries and
// hover-sensitive entries described under a different highlight miss.
func (c *Cache) LookupLine(key LineKey, now time.Time, highlight *grid.Hyperlink) (LineEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.lines.Get(key)
	if !ok {
		return LineEntry{}, false
	}
	if expired(e.Expires, now) {
		c.lines.Delete(key)
		return LineEntry{}, false
	}
	if e.InvalidateOnHoverChange && !sameLink(e.Highlight, highlight) {
		return LineEntry{}, false
	}
	return e, true
}

// LookupShape returns the cached shaped line for key.
func (c *Cache) LookupShape(key ShapeKey, now time.Time) (ShapeEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.shapes.Get(key)
	if !ok {
		return ShapeEntry{}, false
	}
	if expired(e.Expires, now) {
		c.shapes.Delete(key)
		return ShapeEntry{}, false
	}
	return e, true
}

// StoreLine caches a row description.
func (c *Cache) StoreLine(key LineKey, e LineEntry) {
	c.mu.Lock()
	c.lines.Set(key, e)
	c.mu.Unlock()
}

// StoreShape caches a shaped row.
func (c *Cache) StoreShape(key ShapeKey, e ShapeEntry) {
	c.mu.Lock()
	c.shapes.Set(key, e)
	c.mu.Unlock()
}

// ClearLines empties the command tier.
func (c *Cache) ClearLines() {
	c.mu.Lock()
	c.lines.Clear()
	c.mu.Unlock()
}

// ClearShapes empties the shape tier.
func (c *Cache) ClearShapes() {
	c.mu.Lock()
	c.shapes.Clear()
	c.mu.Unlock()
}

// Clear empties both tiers.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.lines.Clear()
	c.shapes.Clear()
	c.mu.Unlock()
}

// PruneExpired drops every entry that has expired at now and returns the
// number removed.
func (c *Cache) PruneExpired(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.lines.DeleteFunc(func(_ LineKey, e LineEntry) bool { return expired(e.Expires, now) })
	n += c.shapes.DeleteFunc(func(_ ShapeKey, e ShapeEntry) bool { return expired(e.Expires, now) })
	return n
}

// Stats reports both tiers.
type Stats struct {
	Lines  cache.Stats
	Shapes cache.Stats
}

// Stats returns a snapshot of both tiers.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Lines: c.lines.Stats(), Shapes: c.shapes.Stats()}
}
