// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import (
	"fmt"
	"hash/fnv"
	"image"
	"math"
	"strings"
	"sync"

	"github.com/gogpu/cellgrid/command"
	"github.com/gogpu/cellgrid/internal/cache"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Config controls atlas sizing, font rasterization and memo capacities.
type Config struct {
	// InitialSize is the edge length of the first atlas.
	InitialSize int
	// MaxSize bounds Recreate.
	MaxSize int
	// Padding is the gap between packed sprites.
	Padding int

	// FontSize is the font size in points.
	FontSize float64
	// DPI is the rasterization resolution.
	DPI float64

	// GlyphCacheSize is the total number of memoized glyph sprites.
	GlyphCacheSize int
	// ImageCacheSize is the number of memoized image sprites.
	ImageCacheSize int
}

// DefaultConfig returns the default glyph cache configuration.
func DefaultConfig() Config {
	return Config{
		InitialSize:    DefaultSize,
		MaxSize:        MaxSize,
		Padding:        1,
		FontSize:       12,
		DPI:            96,
		GlyphCacheSize: 1024,
		ImageCacheSize: 256,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.InitialSize <= 0 {
		c.InitialSize = d.InitialSize
	}
	if c.MaxSize <= 0 {
		c.MaxSize = d.MaxSize
	}
	if c.Padding < 0 {
		c.Padding = d.Padding
	}
	if c.FontSize <= 0 {
		c.FontSize = d.FontSize
	}
	if c.DPI <= 0 {
		c.DPI = d.DPI
	}
	if c.GlyphCacheSize <= 0 {
		c.GlyphCacheSize = d.GlyphCacheSize
	}
	if c.ImageCacheSize <= 0 {
		c.ImageCacheSize = d.ImageCacheSize
	}
	return c
}

// Metrics describes the cell grid derived from the font.
type Metrics struct {
	CellWidth  int
	CellHeight int
	// Ascent is the baseline offset from the top of the cell.
	Ascent  int
	Descent int
	// UnderlineThickness is the stroke width of decorations in pixels.
	UnderlineThickness int
	// UnderlinePosition is the distance of the underline below the baseline.
	UnderlinePosition int
	// StrikePosition is the distance of the strikethrough above the baseline.
	StrikePosition int
}

// Sprite is a resolved atlas entry. Glyph and utility sprites are
// rasterized at cell size, so a sprite maps linearly onto the cells it
// covers.
type Sprite struct {
	Tex           command.TexCoords
	Width, Height int
	Mode          command.QuadMode
	// Empty sprites have no pixels; no quad needs to be drawn.
	Empty bool
}

// GlyphKey identifies a rasterized grapheme cluster.
type GlyphKey struct {
	Text   string
	Bold   bool
	Italic bool
	// Cells is the number of columns the cluster spans.
	Cells uint8
}

func (k GlyphKey) face() int {
	i := 0
	if k.Bold {
		i |= 1
	}
	if k.Italic {
		i |= 2
	}
	return i
}

func hashGlyphKey(k GlyphKey) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(k.Text))
	_, _ = h.Write([]byte{byte(k.face()), k.Cells})
	return h.Sum64()
}

// GlyphCache rasterizes glyphs and sprites into an Atlas and memoizes
// their coordinates. It is the resolver capability handed to the shaper
// and describers. Methods are safe for concurrent use, but the renderer
// only calls them from the frame loop.
type GlyphCache struct {
	mu sync.Mutex

	cfg     Config
	atlas   *Atlas
	fonts   [4]*opentype.Font
	faces   [4]font.Face
	metrics Metrics

	glyphs  *cache.Sharded[GlyphKey, Sprite]
	sprites *cache.LRU[SpriteKey, Sprite]
	polys   *cache.LRU[PolyKey, Sprite]
	images  *cache.LRU[imageKey, Sprite]

	generation uint64
	fontEpoch  uint64
}

// NewGlyphCache parses the Go Mono faces and creates the first atlas.
func NewGlyphCache(cfg Config) (*GlyphCache, error) {
	cfg = cfg.withDefaults()
	g := &GlyphCache{
		cfg:     cfg,
		atlas:   New(cfg.InitialSize, cfg.Padding),
		glyphs:  cache.NewSharded[GlyphKey, Sprite](max(cfg.GlyphCacheSize/16, 1), hashGlyphKey),
		sprites: cache.New[SpriteKey, Sprite](64),
		polys:   cache.New[PolyKey, Sprite](64),
		images:  cache.New[imageKey, Sprite](cfg.ImageCacheSize),
	}
	for i, ttf := range [][]byte{gomono.TTF, gomonobold.TTF, gomonoitalic.TTF, gomonobolditalic.TTF} {
		f, err := opentype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("atlas: parse font %d: %w", i, err)
		}
		g.fonts[i] = f
	}
	if err := g.loadFaces(cfg.FontSize); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *GlyphCache) loadFaces(size float64) error {
	for i, f := range g.fonts {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size,
			DPI:     g.cfg.DPI,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return fmt.Errorf("atlas: create face: %w", err)
		}
		if old := g.faces[i]; old != nil {
			_ = old.Close()
		}
		g.faces[i] = face
	}
	g.metrics = computeMetrics(g.faces[0], size*g.cfg.DPI/72)
	return nil
}

func computeMetrics(face font.Face, pixelSize float64) Metrics {
	m := face.Metrics()
	adv, ok := face.GlyphAdvance('M')
	if !ok {
		adv = fixed.I(int(math.Ceil(pixelSize * 0.6)))
	}
	thickness := max(1, int(math.Round(pixelSize/14)))
	ascent := m.Ascent.Ceil()
	descent := m.Descent.Ceil()
	return Metrics{
		CellWidth:          adv.Ceil(),
		CellHeight:         max(m.Height.Ceil(), ascent+descent),
		Ascent:             ascent,
		Descent:            descent,
		UnderlineThickness: thickness,
		UnderlinePosition:  max(descent/2, 1),
		StrikePosition:     m.XHeight.Ceil() / 2,
	}
}

// SetFontSize re-creates the faces at size points. Sprites resolved
// before the change keep valid coordinates but no longer match the
// metrics, so the font epoch advances.
func (g *GlyphCache) SetFontSize(size float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.loadFaces(size); err != nil {
		return err
	}
	g.cfg.FontSize = size
	g.clearMemo()
	g.fontEpoch++
	return nil
}

// Metrics returns the current cell metrics.
func (g *GlyphCache) Metrics() Metrics {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.metrics
}

// Atlas returns the current atlas. Recreate replaces it.
func (g *GlyphCache) Atlas() *Atlas {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.atlas
}

// FilledBox returns the coordinates of the opaque sprite.
func (g *GlyphCache) FilledBox() command.TexCoords {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.atlas.FilledBox()
}

// Generation advances every time the atlas is recreated.
func (g *GlyphCache) Generation() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generation
}

// FontEpoch advances every time the font settings change.
func (g *GlyphCache) FontEpoch() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fontEpoch
}

// Recreate replaces the atlas with one of at least size pixels and drops
// every memoized sprite.
func (g *GlyphCache) Recreate(size int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if size > g.cfg.MaxSize {
		return fmt.Errorf("%w: %d > %d", ErrAtlasTooLarge, size, g.cfg.MaxSize)
	}
	old := g.atlas.Size()
	g.atlas = New(size, g.cfg.Padding)
	g.clearMemo()
	g.generation++
	slogger().Info("atlas: recreated",
		"from", old, "to", g.atlas.Size(), "generation", g.generation)
	return nil
}

func (g *GlyphCache) clearMemo() {
	g.glyphs.Clear()
	g.sprites.Clear()
	g.polys.Clear()
	g.images.Clear()
}

// ResolveGlyph returns the sprite for a grapheme cluster, rasterizing it
// on first use. Whitespace resolves to an empty sprite.
func (g *GlyphCache) ResolveGlyph(key GlyphKey) (Sprite, error) {
	if strings.TrimSpace(key.Text) == "" {
		return Sprite{Empty: true, Mode: command.ModeGlyph}, nil
	}
	if s, ok := g.glyphs.Get(key); ok {
		return s, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	m := g.metrics
	cells := max(int(key.Cells), 1)
	mask := image.NewAlpha(image.Rect(0, 0, cells*m.CellWidth, m.CellHeight))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: g.faces[key.face()],
		Dot:  fixed.P(0, m.Ascent),
	}
	d.DrawString(key.Text)

	s, err := g.putMask(mask, command.ModeGlyph)
	if err != nil {
		return Sprite{}, err
	}
	g.glyphs.Set(key, s)
	return s, nil
}

// putMask uploads mask. Caller must hold g.mu.
func (g *GlyphCache) putMask(mask *image.Alpha, mode command.QuadMode) (Sprite, error) {
	r, err := g.atlas.PutMask(mask)
	if err != nil {
		return Sprite{}, err
	}
	return Sprite{
		Tex:    g.atlas.TexCoords(r),
		Width:  r.Width,
		Height: r.Height,
		Mode:   mode,
	}, nil
}

// Stats reports memo statistics.
type Stats struct {
	Glyphs      cache.Stats
	Images      cache.Stats
	AtlasSize   int
	Utilization float64
}

// Stats returns memo and atlas statistics.
func (g *GlyphCache) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Stats{
		Glyphs:      g.glyphs.Stats(),
		Images:      g.images.Stats(),
		AtlasSize:   g.atlas.Size(),
		Utilization: g.atlas.Utilization(),
	}
}
