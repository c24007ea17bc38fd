package describe

import (
	"github.com/gogpu/cellgrid/command"
	"github.com/gogpu/cellgrid/element"
	"github.com/gogpu/cellgrid/grid"
	"github.com/gogpu/cellgrid/line"
)

// Point is a cell position. Row is a stable row index, counted from the
// top of the scrollback.
type Point struct {
	Column, Row int
}

// Selection is a text selection between two points, inclusive of Start
// and exclusive of End on the last row.
type Selection struct {
	Start, End  Point
	Rectangular bool
}

// Columns returns the selected columns on a row of width cols.
func (s Selection) Columns(row, cols int) line.Span {
	start, end := s.Start, s.End
	if end.Row < start.Row || (end.Row == start.Row && end.Column < start.Column) {
		start, end = end, start
	}
	if row < start.Row || row > end.Row {
		return line.Span{}
	}
	if s.Rectangular {
		l, r := min(start.Column, end.Column), max(start.Column, end.Column)
		return line.Span{Start: l, End: r}.Clamp(cols)
	}
	span := line.Span{Start: 0, End: cols}
	if row == start.Row {
		span.Start = start.Column
	}
	if row == end.Row {
		span.End = end.Column
	}
	return span.Clamp(cols)
}

// Dimensions describe the rows of a pane.
type Dimensions struct {
	Cols         int
	ViewportRows int
	// ScrollbackRows is the total number of rows including the viewport.
	ScrollbackRows int
	// PhysicalTop is the stable index of the top row when not scrolled.
	PhysicalTop  int
	ReverseVideo bool
}

// CursorPos is the cursor of a pane.
type CursorPos struct {
	Column, Row int
	Visible     bool
	Shape       line.CursorShape
}

// Palette holds the colors of a pane or the window.
type Palette struct {
	Fg, Bg                   command.Color
	CursorFg, CursorBg       command.Color
	CursorBorder             command.Color
	SelectionFg, SelectionBg command.Color
	Split                    command.Color
	ScrollbarThumb           command.Color
	// VisualBell is the bell flash color; transparent uses Fg.
	VisualBell command.Color
	LinkHover  command.Color

	TabBarBg           command.Color
	ActiveTabBg        command.Color
	ActiveTabFg        command.Color
	InactiveTabBg      command.Color
	InactiveTabFg      command.Color
	InactiveTabHoverBg command.Color
}

// Pane is the read-only view of a terminal pane used while describing.
type Pane interface {
	ID() uint64
	Dimensions() Dimensions
	// Lines returns up to count rows starting at the stable index top.
	Lines(top, count int) []grid.Line
	Cursor() CursorPos
	Palette() Palette
	// PasswordInput reports whether the foreground program is reading a
	// password.
	PasswordInput() bool
	// DirtyRows returns the stable indexes in [top, top+count) that
	// changed since the last call.
	DirtyRows(top, count int) []int
	// Focus advises the pane of a focus change.
	Focus(focused bool)
}

// PositionedPane places a pane in the cell grid of the window.
type PositionedPane struct {
	Pane                     Pane
	Left, Top, Width, Height int
	Active                   bool
	// Viewport is the stable index of the top visible row when the pane
	// is scrolled back, or nil.
	Viewport  *int
	Selection *Selection
	// Bell is the visual bell intensity in [0, 1]; 0 when not ringing.
	Bell float32
}

// viewTop returns the stable index of the first visible row.
func (p *PositionedPane) viewTop(dims Dimensions) int {
	if p.Viewport != nil {
		return *p.Viewport
	}
	return dims.PhysicalTop
}

// SplitDirection is the orientation of a split.
type SplitDirection uint8

const (
	// SplitHorizontal places panes side by side, separated by a vertical line.
	SplitHorizontal SplitDirection = iota
	// SplitVertical stacks panes, separated by a horizontal line.
	SplitVertical
)

// Split is a separator between panes, in cells.
type Split struct {
	Direction SplitDirection
	Left, Top int
	Size      int
}

// Tab is one entry of the tab bar.
type Tab struct {
	Title  string
	Active bool
}

// TabBar is the tab bar state.
type TabBar struct {
	Tabs     []Tab
	AtBottom bool
	// Fancy selects the element tab bar instead of a text row.
	Fancy bool
}

// Edges are per-side sizes in pixels.
type Edges struct {
	Left, Top, Right, Bottom float32
}

// Border is the window frame.
type Border struct {
	Edges
	Color command.Color
}

// Window is the complete input of one frame.
type Window struct {
	Width, Height float32
	// Cols and Rows are the terminal size in cells.
	Cols, Rows int

	Padding Edges
	Border  Border
	Palette Palette

	Panes  []PositionedPane
	Splits []Split
	TabBar *TabBar
	Modal  *element.Element

	// Composing is the uncommitted input-method text shown at the cursor
	// of the active pane.
	Composing string
	Highlight *grid.Hyperlink
	// Pointer is the pointer position, or nil when outside the window.
	Pointer *[2]float32
}

// ActivePane returns the active pane.
func (w *Window) ActivePane() (*PositionedPane, bool) {
	for i := range w.Panes {
		if w.Panes[i].Active {
			return &w.Panes[i], true
		}
	}
	return nil, false
}

// StaticPane is a Pane over a fixed set of rows.
type StaticPane struct {
	PaneID   uint64
	Rows     []grid.Line
	Dims     Dimensions
	CursorAt CursorPos
	Colors   Palette
	Password bool

	dirty   map[int]bool
	focused bool
}

// NewStaticPane creates a pane showing rows with every row dirty.
func NewStaticPane(id uint64, cols int, rows []grid.Line, colors Palette) *StaticPane {
	p := &StaticPane{
		PaneID: id,
		Rows:   rows,
		Dims:   Dimensions{Cols: cols, ViewportRows: len(rows), ScrollbackRows: len(rows)},
		Colors: colors,
		dirty:  make(map[int]bool, len(rows)),
	}
	for i := range rows {
		p.dirty[i] = true
	}
	return p
}

func (p *StaticPane) ID() uint64             { return p.PaneID }
func (p *StaticPane) Dimensions() Dimensions { return p.Dims }
func (p *StaticPane) Cursor() CursorPos      { return p.CursorAt }
func (p *StaticPane) Palette() Palette       { return p.Colors }
func (p *StaticPane) PasswordInput() bool    { return p.Password }
func (p *StaticPane) Focused() bool          { return p.focused }
func (p *StaticPane) Focus(focused bool)     { p.focused = focused }

func (p *StaticPane) Lines(top, count int) []grid.Line {
	top = min(max(top, 0), len(p.Rows))
	end := min(top+max(count, 0), len(p.Rows))
	return p.Rows[top:end]
}

// SetLine replaces a row and marks it dirty.
func (p *StaticPane) SetLine(row int, l grid.Line) {
	if row < 0 || row >= len(p.Rows) {
		return
	}
	p.Rows[row] = l
	if p.dirty == nil {
		p.dirty = make(map[int]bool)
	}
	p.dirty[row] = true
}

func (p *StaticPane) DirtyRows(top, count int) []int {
	var out []int
	for row := top; row < top+count; row++ {
		if p.dirty[row] {
			out = append(out, row)
			delete(p.dirty, row)
		}
	}
	return out
}
