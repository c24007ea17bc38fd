// Package shape turns a row of styled cells into clusters of resolved
// glyph sprites.
//
// Adjacent cells with equal style form a cluster. Each grapheme becomes
// one glyph spanning its cell width, unless ligature shaping merges
// several cells into a single glyph. Colors are resolved against the
// palette here, so a shaped line depends only on the line content, the
// composing text and the shape generation.
package shape

import (
	"errors"

	"github.com/gogpu/cellgrid/atlas"
	"github.com/gogpu/cellgrid/command"
	"github.com/gogpu/cellgrid/grid"
	"golang.org/x/text/unicode/norm"
)

// ErrShapeCacheStale reports that font state changed underneath a shaped
// line. Callers clear their shape caches and describe again.
var ErrShapeCacheStale = errors.New("shape: shape cache is stale")

// Resolver is the glyph cache capability used while shaping.
type Resolver interface {
	ResolveGlyph(atlas.GlyphKey) (atlas.Sprite, error)
	ResolveSprite(atlas.SpriteKey) (atlas.Sprite, error)
	ResolveImage(*grid.Image, atlas.Allowance) (atlas.Sprite, error)
	FontEpoch() uint64
}

// Glyph is one drawable unit of a cluster.
type Glyph struct {
	Text   string
	Column int
	Cells  int
	Sprite atlas.Sprite
}

// Cluster is a run of cells sharing one style.
type Cluster struct {
	Column int
	Cells  int
	Style  grid.Style

	Fg             command.Color
	Bg             command.Color
	DefaultBg      bool
	UnderlineColor command.Color
	StrikeColor    command.Color

	// Underline and Strike are one-cell sprites stretched over the
	// cluster; nil when the decoration is absent.
	Underline *atlas.Sprite
	Strike    *atlas.Sprite

	Glyphs []Glyph
}

// Image is an image fragment attached to one cell.
type Image struct {
	Column int
	Cell   grid.ImageCell
	Sprite atlas.Sprite
}

// ShapedLine is the immutable result of shaping one row. It is shared
// between cache entries and must not be modified.
type ShapedLine struct {
	Clusters    []Cluster
	Images      []Image
	Columns     int
	FontEpoch   uint64
	ContentHash uint64
}

// CheckEpoch returns ErrShapeCacheStale when the line was shaped under a
// different font epoch.
func (l *ShapedLine) CheckEpoch(epoch uint64) error {
	if l.FontEpoch != epoch {
		return ErrShapeCacheStale
	}
	return nil
}

// Palette holds the colors used for cells with default colors.
type Palette struct {
	Fg command.Color
	Bg command.Color
}

// Composing is uncommitted input-method text shown at Column.
type Composing struct {
	Column int
	Text   string
}

// Params are the inputs of Shape besides the line itself.
type Params struct {
	Palette   Palette
	Composing *Composing
	Images    atlas.Allowance
}

// Shaper shapes lines. The zero value shapes without ligatures.
type Shaper struct {
	lig *ligatures
}

// Option configures a Shaper.
type Option func(*Shaper) error

// WithLigatures enables HarfBuzz ligature detection on the Go Mono font.
func WithLigatures() Option {
	return func(s *Shaper) error {
		l, err := newLigatures()
		if err != nil {
			return err
		}
		s.lig = l
		return nil
	}
}

// NewShaper creates a Shaper.
func NewShaper(opts ...Option) (*Shaper, error) {
	s := &Shaper{}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Shape resolves every cluster of line. It fails with the resolver's
// exhaustion error when the atlas is full, and with ErrShapeCacheStale
// when the font epoch moves while shaping.
func (s *Shaper) Shape(line grid.Line, res Resolver, p Params) (*ShapedLine, error) {
	epoch := res.FontEpoch()
	hash := line.ContentHash()
	if p.Composing != nil {
		line = overlayComposing(line, *p.Composing)
	}

	out := &ShapedLine{
		Columns:     line.Columns(),
		FontEpoch:   epoch,
		ContentHash: hash,
	}

	cells := line.Cells
	for start := 0; start < len(cells); {
		end := start + 1
		for end < len(cells) && cells[end].Style.Equal(cells[start].Style) {
			end++
		}
		c, err := s.cluster(cells, start, end, res, p.Palette)
		if err != nil {
			return nil, err
		}
		out.Clusters = append(out.Clusters, c)
		start = end
	}

	for col, cell := range cells {
		for _, ic := range cell.Image {
			sp, err := res.ResolveImage(ic.Image, p.Images)
			if err != nil {
				return nil, err
			}
			if sp.Empty {
				continue
			}
			out.Images = append(out.Images, Image{Column: col, Cell: ic, Sprite: sp})
		}
	}

	if res.FontEpoch() != epoch {
		return nil, ErrShapeCacheStale
	}
	return out, nil
}

func (s *Shaper) cluster(cells []grid.Cell, start, end int, res Resolver, pal Palette) (Cluster, error) {
	st := cells[start].Style
	c := Cluster{Column: start, Cells: end - start, Style: st}
	c.Fg, c.Bg, c.DefaultBg = resolveColors(st, pal)
	c.UnderlineColor = grid.Resolve(st.UnderlineColor, c.Fg)
	c.StrikeColor = c.Fg

	switch {
	case st.Attrs.Has(grid.DoubleUnderline):
		sp, err := res.ResolveSprite(atlas.SpriteKey{Kind: atlas.SpriteDoubleUnderline, Cells: 1})
		if err != nil {
			return c, err
		}
		c.Underline = &sp
	case st.Attrs.Has(grid.Underline):
		sp, err := res.ResolveSprite(atlas.SpriteKey{Kind: atlas.SpriteUnderline, Cells: 1})
		if err != nil {
			return c, err
		}
		c.Underline = &sp
	}
	if st.Attrs.Has(grid.Strikethrough) {
		sp, err := res.ResolveSprite(atlas.SpriteKey{Kind: atlas.SpriteStrikethrough, Cells: 1})
		if err != nil {
			return c, err
		}
		c.Strike = &sp
	}

	if st.Attrs.Has(grid.Invisible) {
		return c, nil
	}

	for _, seg := range s.segments(cells, start, end) {
		key := atlas.GlyphKey{
			Text:   norm.NFC.String(seg.text),
			Bold:   st.Attrs.Has(grid.Bold),
			Italic: st.Attrs.Has(grid.Italic),
			Cells:  uint8(min(seg.cells, 255)), //nolint:gosec // clamped
		}
		sp, err := res.ResolveGlyph(key)
		if err != nil {
			return c, err
		}
		c.Glyphs = append(c.Glyphs, Glyph{Text: seg.text, Column: seg.column, Cells: seg.cells, Sprite: sp})
	}
	return c, nil
}

// segment is a glyph candidate: the text of one or more whole cells.
type segment struct {
	text   string
	column int
	cells  int
}

func (s *Shaper) segments(cells []grid.Cell, start, end int) []segment {
	segs := make([]segment, 0, end-start)
	for col := start; col < end; col++ {
		cell := cells[col]
		if cell.IsContinuation() {
			continue
		}
		w := min(max(cell.Width, 1), end-col)
		segs = append(segs, segment{text: cell.Text, column: col, cells: w})
	}
	if s.lig != nil && len(segs) > 1 {
		segs = s.lig.merge(segs)
	}
	return segs
}

// resolveColors applies reverse video, dim and invisible to a style.
func resolveColors(st grid.Style, pal Palette) (fg, bg command.Color, defaultBg bool) {
	fg = grid.Resolve(st.Fg, pal.Fg)
	bg = grid.Resolve(st.Bg, pal.Bg)
	defaultBg = st.Bg == grid.Default
	if st.Attrs.Has(grid.Reverse) {
		fg, bg = bg, fg
		defaultBg = false
	}
	if st.Attrs.Has(grid.Dim) {
		fg = fg.Lerp(bg, 0.4)
	}
	return fg, bg, defaultBg
}

// overlayComposing replaces the cells under the composing text with the
// text itself, underlined.
func overlayComposing(line grid.Line, c Composing) grid.Line {
	if c.Text == "" || c.Column < 0 || c.Column >= line.Columns() {
		return line
	}
	style := line.Cells[c.Column].Style
	style.Attrs |= grid.Underline
	style.Link = nil
	comp := grid.ParseLine(c.Text, style)

	cells := make([]grid.Cell, line.Columns())
	copy(cells, line.Cells)
	for i, cell := range comp.Cells {
		if c.Column+i >= len(cells) {
			break
		}
		cells[c.Column+i] = cell
	}
	return grid.Line{Cells: cells}
}
