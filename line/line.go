// Package line describes one visible terminal row as render commands.
//
// Describe is a pure function of its Params: the same inputs always
// produce a byte-identical command sequence, which is what allows the
// line cache to replay results instead of describing again.
//
// Commands are emitted in this order:
//
//  1. background fills (reverse-video row fill or per-cluster fills)
//     and underline/strikethrough quads
//  2. the selection fill
//  3. exactly one cursor command when the cursor is on the row
//  4. images below the text (negative z-index)
//  5. glyph quads, split into sub-spans at cursor and selection edges
//  6. images above the text
package line

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"slices"
	"time"

	"github.com/gogpu/cellgrid/atlas"
	"github.com/gogpu/cellgrid/command"
	"github.com/gogpu/cellgrid/grid"
	"github.com/gogpu/cellgrid/shape"
)

// Sub-layers used by the line describer.
const (
	SubBackground uint8 = 0
	SubContent    uint8 = 1
	SubOverlay    uint8 = 2
)

// CursorShape selects the cursor geometry.
type CursorShape uint8

const (
	CursorBlock CursorShape = iota
	CursorUnderline
	CursorBar
	CursorHollow
)

var cursorShapeNames = [...]string{
	CursorBlock:     "block",
	CursorUnderline: "underline",
	CursorBar:       "bar",
	CursorHollow:    "hollow",
}

func (s CursorShape) String() string {
	if int(s) < len(cursorShapeNames) {
		return cursorShapeNames[s]
	}
	return "unknown"
}

// ParseCursorShape maps a name to a CursorShape. Unknown names map to
// CursorBlock.
func ParseCursorShape(name string) CursorShape {
	for i, n := range cursorShapeNames {
		if n == name {
			return CursorShape(i)
		}
	}
	return CursorBlock
}

// Cursor is the cursor state of a row.
type Cursor struct {
	Column int
	// Width is the number of columns under the cursor (2 over wide glyphs).
	Width int
	Shape CursorShape
}

// Span returns the columns covered by the cursor.
func (c Cursor) Span() Span {
	return Span{Start: c.Column, End: c.Column + max(c.Width, 1)}
}

// Style holds the colors and metrics of a row.
type Style struct {
	CellWidth  float32
	CellHeight float32

	// Fg and Bg are the default colors, used by reverse video.
	Fg command.Color
	Bg command.Color

	// SelectionFg overrides the glyph color inside the selection unless
	// it is transparent.
	SelectionFg command.Color
	SelectionBg command.Color

	CursorFg     command.Color
	CursorBg     command.Color
	CursorBorder command.Color
	// CursorThickness is the stroke of bar and underline cursors.
	CursorThickness float32

	// LinkHover colors the underline of a hovered hyperlink.
	LinkHover command.Color
}

// Hash fingerprints every field of the style. Rows described with styles
// of different hashes may differ.
func (s Style) Hash() uint64 {
	colors := [...]command.Color{
		s.Fg, s.Bg,
		s.SelectionFg, s.SelectionBg,
		s.CursorFg, s.CursorBg, s.CursorBorder,
		s.LinkHover,
	}
	buf := make([]byte, 0, 4*(3+4*len(colors)))
	for _, f := range [...]float32{s.CellWidth, s.CellHeight, s.CursorThickness} {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	for _, c := range colors {
		for _, f := range [...]float32{c.R, c.G, c.B, c.A} {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
	}
	h := fnv.New64a()
	_, _ = h.Write(buf) // fnv.Write never returns an error
	return h.Sum64()
}

// Sprites are atlas entries resolved once per frame by the caller, so
// that Describe never touches the glyph cache.
type Sprites struct {
	Underline    atlas.Sprite
	HollowCursor atlas.Sprite
	// Masked replaces the cursor while a password is being typed.
	Masked atlas.Sprite
}

// Params are all inputs of Describe.
type Params struct {
	Line *shape.ShapedLine

	// Left and Top are the pixel position of column 0.
	Left, Top float32
	Depth     int8

	// Cursor is nil when the cursor is not on this row or is hidden.
	Cursor       *Cursor
	Selection    Span
	Highlight    *grid.Hyperlink
	ReverseVideo bool
	Password     bool

	Style   Style
	Sprites Sprites

	Now           time.Time
	BlinkInterval time.Duration
}

// Result is the output of Describe.
type Result struct {
	Commands []command.Command
	// InvalidateOnHoverChange is set when the row contains hyperlinks, so
	// a cached copy is only valid for the same hovered link.
	InvalidateOnHoverChange bool
	// Expires is the time the row next changes on its own (blinking
	// text), or the zero time.
	Expires time.Time
}

type describer struct {
	p    Params
	cols int
	out  []command.Command
	res  Result
}

// Describe produces the commands for one row.
func Describe(p Params) Result {
	d := &describer{p: p}
	if p.Line == nil {
		return d.res
	}
	d.cols = p.Line.Columns
	d.out = make([]command.Command, 0, 8+2*d.cols)

	d.backgrounds()
	d.selection()
	d.cursor()

	below, above := d.splitImages()
	d.images(below)
	d.glyphs()
	d.images(above)

	d.res.Commands = d.out
	return d.res
}

func (d *describer) rect(s Span) command.Rect {
	st := d.p.Style
	return command.Rect{
		X: d.p.Left + float32(s.Start)*st.CellWidth,
		Y: d.p.Top,
		W: float32(s.Len()) * st.CellWidth,
		H: st.CellHeight,
	}
}

func (d *describer) fill(s Span, sub uint8, c command.Color) {
	d.out = append(d.out, command.FillRect{
		Depth:    d.p.Depth,
		SubLayer: sub,
		Rect:     d.rect(s),
		Color:    c,
	})
}

func (d *describer) quad(r command.Rect, sp atlas.Sprite, tex command.TexCoords, sub uint8, fg command.Color) {
	d.out = append(d.out, command.DrawQuad{
		Depth:    d.p.Depth,
		SubLayer: sub,
		Rect:     r,
		Tex:      tex,
		Fg:       fg,
		Mode:     sp.Mode,
	})
}

func clusterSpan(c *shape.Cluster) Span {
	return Span{Start: c.Column, End: c.Column + c.Cells}
}

// fg returns the glyph color of a cluster before cursor and selection.
func (d *describer) fg(c *shape.Cluster) command.Color {
	if d.p.ReverseVideo && c.Style.Fg == grid.Default && !c.Style.Attrs.Has(grid.Reverse) {
		return d.p.Style.Bg
	}
	return c.Fg
}

func (d *describer) backgrounds() {
	if d.p.ReverseVideo {
		d.fill(Span{0, d.cols}, SubBackground, d.p.Style.Fg)
	}
	for i := range d.p.Line.Clusters {
		c := &d.p.Line.Clusters[i]
		if !c.DefaultBg {
			d.fill(clusterSpan(c), SubBackground, c.Bg)
		}
	}

	for i := range d.p.Line.Clusters {
		c := &d.p.Line.Clusters[i]
		r := d.rect(clusterSpan(c))
		hovered := false
		if c.Style.Link != nil {
			d.res.InvalidateOnHoverChange = true
			hovered = d.p.Highlight != nil && *d.p.Highlight == *c.Style.Link
		}
		switch {
		case c.Underline != nil:
			d.quad(r, *c.Underline, c.Underline.Tex, SubContent, c.UnderlineColor)
		case hovered && !d.p.Sprites.Underline.Empty:
			color := d.p.Style.LinkHover
			if color.IsTransparent() {
				color = d.fg(c)
			}
			d.quad(r, d.p.Sprites.Underline, d.p.Sprites.Underline.Tex, SubContent, color)
		}
		if c.Strike != nil {
			d.quad(r, *c.Strike, c.Strike.Tex, SubContent, c.StrikeColor)
		}
	}
}

func (d *describer) selectionSpan() Span {
	return d.p.Selection.Clamp(d.cols)
}

func (d *describer) selection() {
	if s := d.selectionSpan(); !s.Empty() {
		d.fill(s, SubBackground, d.p.Style.SelectionBg)
	}
}

// cursorSpan returns the cursor columns clamped to the row, or an empty
// span when the cursor is not drawn.
func (d *describer) cursorSpan() Span {
	if d.p.Cursor == nil {
		return Span{}
	}
	return d.p.Cursor.Span().Clamp(d.cols)
}

func (d *describer) cursor() {
	s := d.cursorSpan()
	if s.Empty() {
		return
	}
	st := d.p.Style
	r := d.rect(s)

	if d.p.Password && !d.p.Sprites.Masked.Empty {
		sp := d.p.Sprites.Masked
		d.quad(r, sp, sp.Tex, SubOverlay, st.CursorBg)
		return
	}

	t := max(st.CursorThickness, 1)
	switch d.p.Cursor.Shape {
	case CursorUnderline:
		r.Y = r.Bottom() - t
		r.H = t
		d.out = append(d.out, command.FillRect{Depth: d.p.Depth, SubLayer: SubOverlay, Rect: r, Color: st.CursorBg})
	case CursorBar:
		r.W = t
		d.out = append(d.out, command.FillRect{Depth: d.p.Depth, SubLayer: SubOverlay, Rect: r, Color: st.CursorBg})
	case CursorHollow:
		sp := d.p.Sprites.HollowCursor
		color := st.CursorBorder
		if color.IsTransparent() {
			color = st.CursorBg
		}
		d.quad(r, sp, sp.Tex, SubOverlay, color)
	default:
		d.out = append(d.out, command.FillRect{Depth: d.p.Depth, SubLayer: SubBackground, Rect: r, Color: st.CursorBg})
	}
}

// recolors returns the ranges whose glyph color differs from the cluster
// color: a block cursor and a selection with its own foreground.
func (d *describer) recolors() (cursor, sel Span) {
	if d.p.Cursor != nil && d.p.Cursor.Shape == CursorBlock && !d.p.Password {
		cursor = d.cursorSpan()
	}
	if !d.p.Style.SelectionFg.IsTransparent() {
		sel = d.selectionSpan()
	}
	return cursor, sel
}

func (d *describer) glyphs() {
	cursor, sel := d.recolors()
	for i := range d.p.Line.Clusters {
		c := &d.p.Line.Clusters[i]
		base := d.fg(c)
		if !d.blinkVisible(c) {
			continue
		}
		for _, g := range c.Glyphs {
			if g.Sprite.Empty || g.Cells <= 0 {
				continue
			}
			span := Span{Start: g.Column, End: g.Column + g.Cells}
			n := float32(g.Cells)
			for _, sub := range SplitSpans(span, cursor, sel) {
				fg := base
				switch {
				case cursor.Contains(sub):
					fg = d.p.Style.CursorFg
				case sel.Contains(sub):
					fg = d.p.Style.SelectionFg
				}
				from := float32(sub.Start-g.Column) / n
				to := float32(sub.End-g.Column) / n
				d.quad(d.rect(sub), g.Sprite, g.Sprite.Tex.Slice(from, to), SubContent, fg)
			}
		}
	}
}

// blinkVisible reports whether a blinking cluster is in its visible phase
// and records when the phase flips.
func (d *describer) blinkVisible(c *shape.Cluster) bool {
	iv := d.p.BlinkInterval
	if !c.Style.Attrs.Has(grid.Blink) || iv <= 0 || len(c.Glyphs) == 0 {
		return true
	}
	now := d.p.Now.UnixNano()
	phase := now / int64(iv)
	next := time.Unix(0, (phase+1)*int64(iv))
	if d.res.Expires.IsZero() || next.Before(d.res.Expires) {
		d.res.Expires = next
	}
	return phase%2 == 0
}

func (d *describer) splitImages() (below, above []shape.Image) {
	imgs := slices.Clone(d.p.Line.Images)
	slices.SortStableFunc(imgs, func(a, b shape.Image) int {
		switch {
		case a.Cell.ZIndex < b.Cell.ZIndex:
			return -1
		case a.Cell.ZIndex > b.Cell.ZIndex:
			return 1
		}
		return 0
	})
	split, _ := slices.BinarySearchFunc(imgs, int32(0), func(img shape.Image, z int32) int {
		if img.Cell.ZIndex < z {
			return -1
		}
		return 1
	})
	return imgs[:split], imgs[split:]
}

func (d *describer) images(imgs []shape.Image) {
	for _, img := range imgs {
		if img.Column >= d.cols {
			continue
		}
		r := d.rect(Span{Start: img.Column, End: img.Column + 1})
		pad := img.Cell.Padding
		r.X += float32(pad[0])
		r.Y += float32(pad[1])
		r.W -= float32(pad[0]) + float32(pad[2])
		r.H -= float32(pad[1]) + float32(pad[3])
		if r.Empty() {
			continue
		}
		d.quad(r, img.Sprite, subTex(img.Sprite.Tex, img.Cell.Tex), SubContent, command.White)
	}
}

// subTex selects the part of an image sprite shown in one cell. A zero
// cell range selects the whole sprite.
func subTex(sprite, cell command.TexCoords) command.TexCoords {
	if cell == (command.TexCoords{}) {
		return sprite
	}
	w, h := sprite.Width(), sprite.Height()
	return command.TexCoords{
		Left:   sprite.Left + cell.Left*w,
		Top:    sprite.Top + cell.Top*h,
		Right:  sprite.Left + cell.Right*w,
		Bottom: sprite.Top + cell.Bottom*h,
	}
}
