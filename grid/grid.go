// Package grid models the read-only cell grid that cellgrid renders.
//
// Colors use the tcell color model: the default color, one of the 256
// palette entries, or a 24-bit RGB value. Resolve maps them to render
// colors using the xterm palette.
package grid

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/gogpu/cellgrid/command"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Color is a terminal color.
type Color = tcell.Color

// Default is the terminal's default color.
const Default = tcell.ColorDefault

// Palette returns palette entry n (0-255).
func Palette(n int) Color { return tcell.PaletteColor(n) }

// RGB returns a 24-bit color.
func RGB(r, g, b uint8) Color { return tcell.NewRGBColor(int32(r), int32(g), int32(b)) }

// Resolve maps c to a render color, returning def for the default color.
func Resolve(c Color, def command.Color) command.Color {
	if c == Default || !c.Valid() {
		return def
	}
	r, g, b := c.RGB()
	if r < 0 {
		return def
	}
	return command.RGB(uint8(r), uint8(g), uint8(b)) //nolint:gosec // RGB returns 0-255
}

// Attrs is a set of cell attribute flags.
type Attrs uint16

const (
	Bold Attrs = 1 << iota
	Dim
	Italic
	Underline
	DoubleUnderline
	Strikethrough
	Reverse
	Invisible
	Blink
)

// Has reports whether all flags in f are set.
func (a Attrs) Has(f Attrs) bool { return a&f == f }

// Hyperlink is an OSC 8 link attached to a run of cells.
type Hyperlink struct {
	ID  string
	URI string
}

// Style is the presentation of one cell.
type Style struct {
	Fg             Color
	Bg             Color
	UnderlineColor Color
	Attrs          Attrs
	Link           *Hyperlink
}

// Equal reports whether two styles render identically. Links compare by
// identity of ID and URI.
func (s Style) Equal(o Style) bool {
	if s.Fg != o.Fg || s.Bg != o.Bg || s.UnderlineColor != o.UnderlineColor || s.Attrs != o.Attrs {
		return false
	}
	switch {
	case s.Link == nil && o.Link == nil:
		return true
	case s.Link == nil || o.Link == nil:
		return false
	}
	return *s.Link == *o.Link
}

// Image is decoded RGBA pixel data shared by the cells it covers.
type Image struct {
	ID            uint64
	Width, Height int
	Pix           []byte
}

// ImageCell attaches the part of an image shown in one cell.
// Negative ZIndex draws below text.
type ImageCell struct {
	Image   *Image
	Tex     command.TexCoords
	ZIndex  int32
	Padding [4]uint16 // left, top, right, bottom in pixels
}

// Cell is one column of a line. Wide characters occupy Width columns; the
// following Width-1 cells are continuation cells with empty Text.
type Cell struct {
	Text  string
	Width int
	Style Style
	Image []ImageCell
}

// IsContinuation reports whether c is the tail of a wide character.
func (c Cell) IsContinuation() bool { return c.Width == 0 }

// Line is one physical row of cells.
type Line struct {
	Cells []Cell
}

// Columns returns the number of cells in the line.
func (l Line) Columns() int { return len(l.Cells) }

// HasHyperlinks reports whether any cell carries a link.
func (l Line) HasHyperlinks() bool {
	for _, c := range l.Cells {
		if c.Style.Link != nil {
			return true
		}
	}
	return false
}

// HasBlink reports whether any visible cell blinks.
func (l Line) HasBlink() bool {
	for _, c := range l.Cells {
		if c.Style.Attrs.Has(Blink) && c.Text != "" && c.Text != " " {
			return true
		}
	}
	return false
}

// Text returns the concatenated text of the line.
func (l Line) Text() string {
	n := 0
	for _, c := range l.Cells {
		n += len(c.Text)
	}
	buf := make([]byte, 0, n)
	for _, c := range l.Cells {
		buf = append(buf, c.Text...)
	}
	return string(buf)
}

// ContentHash fingerprints everything in the line that affects rendering.
func (l Line) ContentHash() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	u64 := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	}
	str := func(s string) {
		u64(uint64(len(s)))
		_, _ = h.Write([]byte(s))
	}
	u64(uint64(len(l.Cells)))
	for _, c := range l.Cells {
		str(c.Text)
		u64(uint64(c.Width)) //nolint:gosec // widths are small
		u64(uint64(c.Style.Fg))
		u64(uint64(c.Style.Bg))
		u64(uint64(c.Style.UnderlineColor))
		u64(uint64(c.Style.Attrs))
		if c.Style.Link != nil {
			str(c.Style.Link.ID)
			str(c.Style.Link.URI)
		} else {
			u64(0)
		}
		u64(uint64(len(c.Image)))
		for _, img := range c.Image {
			if img.Image != nil {
				u64(img.Image.ID)
			}
			u64(uint64(img.ZIndex)) //nolint:gosec // sign is preserved by the bit pattern
			for _, f := range []float32{img.Tex.Left, img.Tex.Top, img.Tex.Right, img.Tex.Bottom} {
				u64(uint64(math.Float32bits(f)))
			}
			for _, p := range img.Padding {
				u64(uint64(p))
			}
		}
	}
	return h.Sum64()
}

// ParseLine splits s into grapheme clusters and lays them out as cells
// with the given style. Wide clusters are followed by continuation cells.
func ParseLine(s string, style Style) Line {
	cells := make([]Cell, 0, len(s))
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		w := ClusterWidth(cluster)
		cells = append(cells, Cell{Text: cluster, Width: w, Style: style})
		for i := 1; i < w; i++ {
			cells = append(cells, Cell{Style: style})
		}
	}
	return Line{Cells: cells}
}

// Blank returns a line of n space cells.
func Blank(n int, style Style) Line {
	cells := make([]Cell, n)
	for i := range cells {
		cells[i] = Cell{Text: " ", Width: 1, Style: style}
	}
	return Line{Cells: cells}
}

// ClusterWidth returns the number of columns a grapheme cluster occupies.
// Zero-width clusters still take one column.
func ClusterWidth(cluster string) int {
	w := runewidth.StringWidth(cluster)
	if w < 1 {
		return 1
	}
	return min(w, 2)
}

// Pad returns l extended with blank cells, or truncated, to n columns.
func (l Line) Pad(n int, style Style) Line {
	if len(l.Cells) >= n {
		return Line{Cells: l.Cells[:n]}
	}
	cells := make([]Cell, n)
	copy(cells, l.Cells)
	for i := len(l.Cells); i < n; i++ {
		cells[i] = Cell{Text: " ", Width: 1, Style: style}
	}
	return Line{Cells: cells}
}
