package describe

import (
	"time"

	"github.com/gogpu/cellgrid/command"
	"github.com/gogpu/cellgrid/frame"
	"github.com/gogpu/cellgrid/grid"
	"github.com/gogpu/cellgrid/line"
	"github.com/gogpu/cellgrid/linecache"
	"github.com/gogpu/cellgrid/shape"
)

// paneBackground returns the pane rectangle grown by half a cell towards
// neighbouring panes and to the window edge where the pane touches it.
func paneBackground(win *Window, pos *PositionedPane, m metrics, topY float32) command.Rect {
	left := win.Padding.Left + win.Border.Left
	var x, dw float32
	if pos.Left == 0 {
		x, dw = 0, left+m.cw/2
	} else {
		x, dw = left-m.cw/2+float32(pos.Left)*m.cw, m.cw
	}
	var y, dh float32
	if pos.Top == 0 {
		y, dh = topY-win.Padding.Top, win.Padding.Top+m.ch/2
	} else {
		y, dh = topY+float32(pos.Top)*m.ch-m.ch/2, m.ch
	}

	w := float32(pos.Width)*m.cw + dw
	if pos.Left+pos.Width >= win.Cols {
		w = win.Width - x
	}
	h := float32(pos.Height)*m.ch + dh
	if pos.Top+pos.Height >= win.Rows {
		h = win.Height - y
	}
	return command.R(x, y, w, h)
}

func (d *Describer) pane(win *Window, pos *PositionedPane, m metrics, sprites line.Sprites, now time.Time) (frame.PaneFrame, []frame.HitRegion, error) {
	pal := pos.Pane.Palette()
	topBar, bottomBar := d.bars(win, m)
	topY := topBar + win.Padding.Top + win.Border.Top
	bounds := paneBackground(win, pos, m, topY)

	pf := frame.PaneFrame{
		PaneID: pos.Pane.ID(),
		Active: pos.Active,
		Bounds: bounds,
		Clip:   bounds,
	}
	var hits []frame.HitRegion

	var tone *command.HSBTransform
	if !pos.Active && !d.cfg.InactivePaneHSB.IsIdentity() {
		t := d.cfg.InactivePaneHSB
		tone = &t
	}

	pf.Background = []command.Command{command.FillRect{
		Depth: DepthContent,
		Rect:  bounds,
		Color: pal.Bg.WithAlpha(1),
		Tone:  tone,
	}}

	if pos.Bell > 0 {
		flash := pal.VisualBell
		if flash.IsTransparent() {
			flash = pal.Fg
		}
		pf.Bell = []command.Command{command.FillRect{
			Depth: DepthContent,
			Rect:  bounds,
			Color: pal.Bg.WithAlpha(1).Lerp(flash.WithAlpha(1), min(pos.Bell, 1)),
			Tone:  tone,
		}}
	}

	dims := pos.Pane.Dimensions()
	if pos.Active && d.cfg.ShowScrollbar {
		cmds, h := d.scrollbar(win, pos, dims, pal, topBar, bottomBar)
		pf.Scrollbar = cmds
		hits = append(hits, h...)
	}

	rows, err := d.rows(win, pos, dims, pal, m, sprites, topY, now)
	if err != nil {
		return pf, nil, err
	}
	pf.Rows = rows
	pf.ContentHash = pf.Hash()
	return pf, hits, nil
}

// scrollbar draws the thumb in the right padding and reports the regions
// above, on and below it.
func (d *Describer) scrollbar(win *Window, pos *PositionedPane, dims Dimensions, pal Palette, topBar, bottomBar float32) ([]command.Command, []frame.HitRegion) {
	width := win.Padding.Right
	if width <= 0 {
		return nil, nil
	}
	y0 := topBar + win.Border.Top
	avail := win.Height - y0 - win.Border.Bottom - bottomBar
	if avail <= 0 {
		return nil, nil
	}

	total := max(dims.ScrollbackRows, dims.ViewportRows, 1)
	thumbH := avail * float32(dims.ViewportRows) / float32(total)
	thumbH = min(max(thumbH, d.cfg.ScrollbarMinHeight), avail)

	var thumbTop float32
	if scrollable := total - dims.ViewportRows; scrollable > 0 {
		scrollTop := dims.PhysicalTop + dims.ViewportRows - total
		offset := min(max(pos.viewTop(dims)-scrollTop, 0), scrollable)
		thumbTop = (avail - thumbH) * float32(offset) / float32(scrollable)
	}

	x := win.Width - width - win.Border.Right
	top := y0 + thumbTop
	thumb := command.R(x, top, width, thumbH)
	id := pos.Pane.ID()
	hits := []frame.HitRegion{
		{Rect: command.R(x, y0, width, thumbTop), Kind: frame.HitAboveScrollThumb, ID: id},
		{Rect: thumb, Kind: frame.HitScrollThumb, ID: id},
		{Rect: command.R(x, thumb.Bottom(), width, max(win.Height-thumb.Bottom(), 0)), Kind: frame.HitBelowScrollThumb, ID: id},
	}
	cmds := []command.Command{command.FillRect{
		Depth:    DepthContent,
		SubLayer: line.SubOverlay,
		Rect:     thumb,
		Color:    pal.ScrollbarThumb,
	}}
	return cmds, hits
}

// rowState is everything about a row besides its content.
type rowState struct {
	cursor    *line.Cursor
	selection line.Span
	composing *shape.Composing
	password  bool
	blink     int64
}

func (d *Describer) rowState(win *Window, pos *PositionedPane, cur CursorPos, l grid.Line, stable, cols int, now time.Time) rowState {
	var st rowState
	if pos.Selection != nil {
		st.selection = pos.Selection.Columns(stable, cols)
	}
	if cur.Row != stable {
		return st
	}

	visible := cur.Visible
	if iv := d.cfg.CursorBlinkInterval; iv > 0 && pos.Active {
		st.blink = now.UnixNano() / int64(iv)
		visible = visible && st.blink%2 == 0
	}
	if visible {
		w := 1
		if cur.Column >= 0 && cur.Column < l.Columns() {
			w = max(l.Cells[cur.Column].Width, 1)
		}
		shapeKind := cur.Shape
		if !pos.Active {
			shapeKind = line.CursorHollow
		}
		st.cursor = &line.Cursor{Column: cur.Column, Width: w, Shape: shapeKind}
	}
	if pos.Active && win.Composing != "" {
		st.composing = &shape.Composing{Column: cur.Column, Text: win.Composing}
	}
	st.password = d.cfg.DetectPasswordInput && pos.Pane.PasswordInput()
	return st
}

func (d *Describer) rows(win *Window, pos *PositionedPane, dims Dimensions, pal Palette, m metrics, sprites line.Sprites, topY float32, now time.Time) ([][]command.Command, error) {
	vt := pos.viewTop(dims)
	lines := pos.Pane.Lines(vt, dims.ViewportRows)
	cur := pos.Pane.Cursor()
	leftX := win.Padding.Left + win.Border.Left + float32(pos.Left)*m.cw
	atlasGen := d.res.Generation()

	thickness := d.cfg.CursorThickness
	if thickness <= 0 {
		thickness = m.thickness * 2
	}
	style := line.Style{
		CellWidth:       m.cw,
		CellHeight:      m.ch,
		Fg:              pal.Fg,
		Bg:              pal.Bg,
		SelectionFg:     pal.SelectionFg,
		SelectionBg:     pal.SelectionBg,
		CursorFg:        pal.CursorFg,
		CursorBg:        pal.CursorBg,
		CursorBorder:    pal.CursorBorder,
		CursorThickness: thickness,
		LinkHover:       pal.LinkHover,
	}

	styleHash := style.Hash()
	fontEpoch := d.res.FontEpoch()

	out := make([][]command.Command, 0, len(lines))
	for idx, l := range lines {
		stable := vt + idx
		st := d.rowState(win, pos, cur, l, stable, dims.Cols, now)
		top := topY + float32(idx+pos.Top)*m.ch

		key := linecache.LineKey{
			PaneID:           pos.Pane.ID(),
			PaneWidth:        pos.Width,
			PaneLeft:         pos.Left,
			PaneActive:       pos.Active,
			Password:         st.password,
			ConfigGeneration: d.gens.Config,
			ShapeGeneration:  d.gens.Shape,
			QuadGeneration:   d.gens.Quad,
			AtlasGeneration:  atlasGen,
			FontEpoch:        fontEpoch,
			Style:            styleHash,
			ContentHash:      l.ContentHash(),
			TopPixelY:        top,
			LeftPixelX:       leftX,
			PhysRow:          idx,
			Selection:        st.selection,
			ReverseVideo:     dims.ReverseVideo,
			BlinkPhase:       st.blink,
		}
		if st.cursor != nil {
			key.CursorVisible = true
			key.CursorColumn = st.cursor.Column
			key.CursorWidth = st.cursor.Width
			key.CursorShape = st.cursor.Shape
		}
		if st.composing != nil {
			key.ComposingColumn = st.composing.Column
			key.Composing = st.composing.Text
		}

		if e, ok := d.cache.LookupLine(key, now, win.Highlight); ok {
			out = append(out, e.Commands)
			continue
		}

		sl, err := d.shaped(l, key, st.composing, pal, now)
		if err != nil {
			return nil, err
		}

		res := line.Describe(line.Params{
			Line:          sl,
			Left:          leftX,
			Top:           top,
			Depth:         DepthContent,
			Cursor:        st.cursor,
			Selection:     st.selection,
			Highlight:     win.Highlight,
			ReverseVideo:  dims.ReverseVideo,
			Password:      st.password && st.cursor != nil,
			Style:         style,
			Sprites:       sprites,
			Now:           now,
			BlinkInterval: d.cfg.TextBlinkInterval,
		})
		cmds := res.Commands
		if !pos.Active && !d.cfg.InactivePaneHSB.IsIdentity() {
			cmds = make([]command.Command, len(res.Commands))
			for i, c := range res.Commands {
				cmds[i] = command.WithTone(c, d.cfg.InactivePaneHSB)
			}
		}

		entry := linecache.LineEntry{
			Expires:                 res.Expires,
			Commands:                cmds,
			InvalidateOnHoverChange: res.InvalidateOnHoverChange,
		}
		if res.InvalidateOnHoverChange {
			entry.Highlight = win.Highlight
		}
		d.cache.StoreLine(key, entry)
		out = append(out, cmds)
	}
	return out, nil
}

// shaped returns the shaped line for a row through the shape tier.
func (d *Describer) shaped(l grid.Line, key linecache.LineKey, comp *shape.Composing, pal Palette, now time.Time) (*shape.ShapedLine, error) {
	skey := linecache.ShapeKey{
		ContentHash:     key.ContentHash,
		ComposingColumn: key.ComposingColumn,
		Composing:       key.Composing,
		ShapeGeneration: key.ShapeGeneration,
		Palette:         command.HashAll([]command.Command{command.Clear{Color: pal.Fg}, command.Clear{Color: pal.Bg}}),
	}
	if e, ok := d.cache.LookupShape(skey, now); ok {
		if err := e.Line.CheckEpoch(d.res.FontEpoch()); err != nil {
			return nil, err
		}
		return e.Line, nil
	}
	sl, err := d.shaper.Shape(l, d.res, shape.Params{
		Palette:   shape.Palette{Fg: pal.Fg, Bg: pal.Bg},
		Composing: comp,
		Images:    d.allowance,
	})
	if err != nil {
		return nil, err
	}
	d.cache.StoreShape(skey, linecache.ShapeEntry{Line: sl})
	return sl, nil
}
