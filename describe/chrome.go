package describe

import (
	"fmt"
	"time"

	"github.com/gogpu/cellgrid/atlas"
	"github.com/gogpu/cellgrid/command"
	"github.com/gogpu/cellgrid/element"
	"github.com/gogpu/cellgrid/frame"
	"github.com/gogpu/cellgrid/grid"
	"github.com/gogpu/cellgrid/line"
	"github.com/gogpu/cellgrid/shape"
)

func (d *Describer) splits(win *Window, m metrics) ([]command.Command, []frame.HitRegion) {
	if len(win.Splits) == 0 {
		return nil, nil
	}
	color := win.Palette.Split
	if p, ok := win.ActivePane(); ok {
		color = p.Pane.Palette().Split
	}
	topBar, _ := d.bars(win, m)
	offset := topBar + win.Border.Top + win.Padding.Top
	left := win.Padding.Left + win.Border.Left

	cmds := make([]command.Command, 0, len(win.Splits))
	hits := make([]frame.HitRegion, 0, len(win.Splits))
	for i, s := range win.Splits {
		x := float32(s.Left)*m.cw + left
		y := float32(s.Top)*m.ch + offset
		size := float32(s.Size)

		var bar, hit command.Rect
		if s.Direction == SplitHorizontal {
			bar = command.R(x+m.cw/2, y-m.ch/2, m.thickness, (1+size)*m.ch)
			hit = command.R(x, y, m.cw, size*m.ch)
		} else {
			bar = command.R(x-m.cw/2, y+m.ch/2, (1+size)*m.cw, m.thickness)
			hit = command.R(x, y, size*m.cw, m.ch)
		}
		cmds = append(cmds, command.FillRect{Depth: DepthChrome, Rect: bar, Color: color})
		hits = append(hits, frame.HitRegion{Rect: hit, Kind: frame.HitSplit, ID: uint64(i)})
	}
	return cmds, hits
}

func (d *Describer) borders(win *Window) []command.Command {
	b := win.Border
	var cmds []command.Command
	add := func(r command.Rect) {
		if !r.Empty() {
			cmds = append(cmds, command.FillRect{Depth: DepthBorder, Rect: r, Color: b.Color})
		}
	}
	add(command.R(0, 0, win.Width, b.Top))
	add(command.R(0, 0, b.Left, win.Height))
	add(command.R(0, win.Height-b.Bottom, win.Width, b.Bottom))
	add(command.R(win.Width-b.Right, 0, b.Right, win.Height))
	return cmds
}

// tabBarY returns the top of the tab bar.
func (d *Describer) tabBarY(win *Window, h float32) float32 {
	if win.TabBar.AtBottom {
		return max(win.Height-(h+win.Border.Bottom), 0)
	}
	return win.Border.Top
}

func (d *Describer) tabBar(win *Window, m metrics, now time.Time) ([]command.Command, []frame.HitRegion, error) {
	if m.cw <= 0 || m.ch <= 0 {
		return nil, nil, nil
	}
	if win.TabBar.Fancy {
		return d.fancyTabBar(win, m, now)
	}
	return d.simpleTabBar(win, m, now)
}

// toGrid converts a resolved color back to a cell color.
func toGrid(c command.Color) grid.Color {
	r, g, b := c.Colorful().Clamped().RGB255()
	return grid.RGB(r, g, b)
}

func tabTitle(i int, t Tab) string {
	return fmt.Sprintf(" %d: %s ", i+1, t.Title)
}

// simpleTabBar renders the tabs as one text row.
func (d *Describer) simpleTabBar(win *Window, m metrics, now time.Time) ([]command.Command, []frame.HitRegion, error) {
	pal := win.Palette
	y := d.tabBarY(win, m.ch)
	cols := int(win.Width / m.cw)

	var cells []grid.Cell
	var hits []frame.HitRegion
	for i, t := range win.TabBar.Tabs {
		st := grid.Style{Fg: toGrid(pal.InactiveTabFg), Bg: toGrid(pal.InactiveTabBg)}
		if t.Active {
			st = grid.Style{Fg: toGrid(pal.ActiveTabFg), Bg: toGrid(pal.ActiveTabBg), Attrs: grid.Bold}
		}
		start := len(cells)
		cells = append(cells, grid.ParseLine(tabTitle(i, t), st).Cells...)
		hits = append(hits, frame.HitRegion{
			Rect: command.R(float32(start)*m.cw, y, float32(len(cells)-start)*m.cw, m.ch),
			Kind: frame.HitTabBar,
			ID:   uint64(i),
		})
	}
	start := len(cells)
	cells = append(cells, grid.ParseLine(" + ", grid.Style{Fg: toGrid(pal.InactiveTabFg), Bg: toGrid(pal.TabBarBg)}).Cells...)
	hits = append(hits, frame.HitRegion{
		Rect: command.R(float32(start)*m.cw, y, 3*m.cw, m.ch),
		Kind: frame.HitNewTab,
	})

	row := grid.Line{Cells: cells}.Pad(cols, grid.Style{Bg: toGrid(pal.TabBarBg)})
	sl, err := d.shaper.Shape(row, d.res, shape.Params{
		Palette: shape.Palette{Fg: pal.InactiveTabFg, Bg: pal.TabBarBg},
		Images:  atlas.AllowanceNo,
	})
	if err != nil {
		return nil, nil, err
	}
	res := line.Describe(line.Params{
		Line:  sl,
		Top:   y,
		Depth: DepthChrome,
		Style: line.Style{CellWidth: m.cw, CellHeight: m.ch, Fg: pal.InactiveTabFg, Bg: pal.TabBarBg},
		Now:   now,
	})
	return res.Commands, hits, nil
}

// fancyTabBar builds the tab bar as an element tree with close buttons.
func (d *Describer) fancyTabBar(win *Window, m metrics, now time.Time) ([]command.Command, []frame.HitRegion, error) {
	pal := win.Palette
	h := d.tabBarHeight(win, m)
	y := d.tabBarY(win, h)
	btn := int(m.ch / 2)
	pad := (h - m.ch) / 2

	root := element.Element{
		ID:     "tab_bar",
		Bounds: command.R(0, y, win.Width, h),
		Colors: element.Colors{Bg: pal.TabBarBg},
	}

	x := float32(0)
	for i, t := range win.TabBar.Tabs {
		fg, bg := pal.InactiveTabFg, pal.InactiveTabBg
		if t.Active {
			fg, bg = pal.ActiveTabFg, pal.ActiveTabBg
		}
		title := grid.ParseLine(tabTitle(i, t), grid.Style{})
		sl, err := d.shaper.Shape(title, d.res, shape.Params{
			Palette: shape.Palette{Fg: fg, Bg: bg},
			Images:  atlas.AllowanceNo,
		})
		if err != nil {
			return nil, nil, err
		}
		textW := float32(title.Columns()) * m.cw
		closeW := m.ch

		tab := element.Element{
			ID:     fmt.Sprintf("tab_%d", i),
			Bounds: command.R(x, y, textW+closeW, h),
			Colors: element.Colors{Bg: bg},
			Hit:    frame.HitTabBar,
			HitID:  uint64(i),
			Children: []element.Element{
				{
					ID:     fmt.Sprintf("tab_%d_title", i),
					Bounds: command.R(x, y, textW, h),
					Text:   sl,
				},
				{
					ID:     fmt.Sprintf("tab_%d_close", i),
					Bounds: command.R(x+textW, y+pad, closeW, m.ch),
					Colors: element.Colors{Fg: fg},
					Poly:   &atlas.PolyKey{Shape: atlas.PolyClose, Width: btn, Height: btn},
					Hit:    frame.HitCloseTab,
					HitID:  uint64(i),
				},
			},
		}
		if !t.Active {
			tab.HoverColors = &element.Colors{Bg: pal.InactiveTabHoverBg}
		}
		root.Children = append(root.Children, tab)
		x += textW + closeW
	}

	root.Children = append(root.Children, element.Element{
		ID:          "new_tab",
		Bounds:      command.R(x, y, h, h),
		Colors:      element.Colors{Fg: pal.InactiveTabFg},
		HoverColors: &element.Colors{Bg: pal.InactiveTabHoverBg, Fg: pal.ActiveTabFg},
		Poly:        &atlas.PolyKey{Shape: atlas.PolyPlus, Width: btn, Height: btn},
		Hit:         frame.HitNewTab,
	})

	return element.Describe(&root, element.Params{
		Resolver: d.res,
		Depth:    DepthChrome,
		Pointer:  win.Pointer,
		Style:    line.Style{CellWidth: m.cw, CellHeight: m.ch},
		Now:      now,
	})
}
