package line

import (
	"reflect"
	"testing"
	"time"

	"github.com/gogpu/cellgrid/atlas"
	"github.com/gogpu/cellgrid/command"
	"github.com/gogpu/cellgrid/grid"
	"github.com/gogpu/cellgrid/shape"
)

var glyphTex = command.TexCoords{Left: 0.5, Top: 0, Right: 0.75, Bottom: 0.25}

// plainLine builds a shaped line of n single-cell glyphs in one cluster.
func plainLine(n int) *shape.ShapedLine {
	c := shape.Cluster{Column: 0, Cells: n, Fg: command.White, Bg: command.Black, DefaultBg: true}
	for i := range n {
		c.Glyphs = append(c.Glyphs, shape.Glyph{
			Text:   "x",
			Column: i,
			Cells:  1,
			Sprite: atlas.Sprite{Tex: glyphTex, Width: 8, Height: 16, Mode: command.ModeGlyph},
		})
	}
	return &shape.ShapedLine{Clusters: []shape.Cluster{c}, Columns: n}
}

func testParams(l *shape.ShapedLine) Params {
	return Params{
		Line: l,
		Style: Style{
			CellWidth:   8,
			CellHeight:  16,
			Fg:          command.White,
			Bg:          command.Black,
			SelectionBg: command.RGB(0, 0, 128),
			CursorFg:    command.Black,
			CursorBg:    command.RGB(0, 255, 0),
		},
	}
}

func quads(cmds []command.Command) []command.DrawQuad {
	var out []command.DrawQuad
	for _, c := range cmds {
		if q, ok := c.(command.DrawQuad); ok {
			out = append(out, q)
		}
	}
	return out
}

func TestSplitSpans(t *testing.T) {
	tests := []struct {
		name   string
		span   Span
		ranges []Span
		want   []Span
	}{
		{"none", Span{0, 5}, nil, []Span{{0, 5}}},
		{"middle", Span{0, 5}, []Span{{2, 3}}, []Span{{0, 2}, {2, 3}, {3, 5}}},
		{"covers", Span{1, 3}, []Span{{0, 5}}, []Span{{1, 3}}},
		{"disjoint", Span{0, 2}, []Span{{4, 6}}, []Span{{0, 2}}},
		{"two ranges", Span{0, 6}, []Span{{1, 2}, {4, 9}}, []Span{{0, 1}, {1, 2}, {2, 4}, {4, 6}}},
		{"empty", Span{3, 3}, []Span{{0, 5}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSpans(tt.span, tt.ranges...)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSpans = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDescribePlainRow(t *testing.T) {
	res := Describe(testParams(plainLine(5)))
	if len(res.Commands) != 5 {
		t.Fatalf("got %d commands, want 5", len(res.Commands))
	}
	for i, q := range quads(res.Commands) {
		if q.SubLayer != SubContent || q.Depth != 0 {
			t.Errorf("quad %d on depth %d sub-layer %d", i, q.Depth, q.SubLayer)
		}
		if q.Fg != command.White {
			t.Errorf("quad %d fg = %v", i, q.Fg)
		}
		if q.Rect.X != float32(i*8) || q.Rect.W != 8 {
			t.Errorf("quad %d rect = %+v", i, q.Rect)
		}
		if q.Tex != glyphTex {
			t.Errorf("quad %d tex = %+v", i, q.Tex)
		}
	}
	if res.InvalidateOnHoverChange || !res.Expires.IsZero() {
		t.Error("plain row should be cacheable forever")
	}
}

func TestDescribeDeterministic(t *testing.T) {
	p := testParams(plainLine(6))
	p.Cursor = &Cursor{Column: 2, Width: 1}
	p.Selection = Span{1, 4}
	a := command.HashAll(Describe(p).Commands)
	b := command.HashAll(Describe(p).Commands)
	if a != b {
		t.Error("describe is not deterministic")
	}
}

func TestDescribeCursorMidRow(t *testing.T) {
	p := testParams(plainLine(5))
	p.Cursor = &Cursor{Column: 2, Width: 1, Shape: CursorBlock}
	cmds := Describe(p).Commands

	var fills []command.FillRect
	for _, c := range cmds {
		if f, ok := c.(command.FillRect); ok {
			fills = append(fills, f)
		}
	}
	if len(fills) != 1 {
		t.Fatalf("got %d cursor commands, want 1", len(fills))
	}
	if fills[0].Rect != command.R(16, 0, 8, 16) || fills[0].Color != p.Style.CursorBg {
		t.Errorf("cursor fill = %+v", fills[0])
	}

	// One quad per glyph, so a five-cell row yields five quads; see the
	// quad count decision in DESIGN.md.
	qs := quads(cmds)
	if len(qs) != 5 {
		t.Fatalf("got %d glyph quads, want 5", len(qs))
	}
	for i, q := range qs {
		want := command.White
		if i == 2 {
			want = p.Style.CursorFg
		}
		if q.Fg != want {
			t.Errorf("glyph %d fg = %v, want %v", i, q.Fg, want)
		}
	}
}

func TestDescribeWideGlyphSplit(t *testing.T) {
	l := &shape.ShapedLine{Columns: 3, Clusters: []shape.Cluster{{
		Column: 0, Cells: 3, Fg: command.White, DefaultBg: true,
		Glyphs: []shape.Glyph{{
			Text: "==>", Column: 0, Cells: 3,
			Sprite: atlas.Sprite{Tex: command.TexCoords{Left: 0, Top: 0, Right: 0.3, Bottom: 0.1}, Mode: command.ModeGlyph},
		}},
	}}}
	p := testParams(l)
	p.Cursor = &Cursor{Column: 1, Width: 1}
	qs := quads(Describe(p).Commands)
	if len(qs) != 3 {
		t.Fatalf("got %d quads, want 3", len(qs))
	}
	var width float32
	for i, q := range qs {
		width += q.Rect.W
		if i > 0 && q.Tex.Left != qs[i-1].Tex.Right {
			t.Errorf("texture gap between sub-span %d and %d", i-1, i)
		}
	}
	if width != 24 {
		t.Errorf("sub-spans cover %v px, want 24", width)
	}
	if qs[1].Fg != p.Style.CursorFg || qs[0].Fg != command.White || qs[2].Fg != command.White {
		t.Error("only the middle sub-span should take the cursor color")
	}
}

func TestDescribeCursorShapes(t *testing.T) {
	for _, s := range []CursorShape{CursorUnderline, CursorBar} {
		p := testParams(plainLine(3))
		p.Style.CursorThickness = 2
		p.Cursor = &Cursor{Column: 1, Width: 1, Shape: s}
		cmds := Describe(p).Commands
		var cursor *command.FillRect
		for _, c := range cmds {
			if f, ok := c.(command.FillRect); ok {
				cursor = &f
			}
		}
		if cursor == nil || cursor.SubLayer != SubOverlay {
			t.Fatalf("%v: missing overlay cursor", s)
		}
		if s == CursorBar && cursor.Rect.W != 2 {
			t.Errorf("bar width = %v", cursor.Rect.W)
		}
		if s == CursorUnderline && (cursor.Rect.H != 2 || cursor.Rect.Y != 14) {
			t.Errorf("underline rect = %+v", cursor.Rect)
		}
		for _, q := range quads(cmds) {
			if q.Fg != command.White {
				t.Errorf("%v cursor should not recolor glyphs", s)
			}
		}
	}
}

func TestDescribeCursorOffRow(t *testing.T) {
	p := testParams(plainLine(3))
	p.Cursor = &Cursor{Column: 7, Width: 1}
	if n := len(Describe(p).Commands); n != 3 {
		t.Errorf("got %d commands, want 3", n)
	}
}

func TestDescribeSelection(t *testing.T) {
	p := testParams(plainLine(4))
	p.Selection = Span{-3, 2}
	p.Style.SelectionFg = command.RGB(255, 255, 0)
	cmds := Describe(p).Commands
	f, ok := cmds[0].(command.FillRect)
	if !ok || f.Rect != command.R(0, 0, 16, 16) {
		t.Fatalf("selection fill = %+v", cmds[0])
	}
	qs := quads(cmds)
	if qs[0].Fg != p.Style.SelectionFg || qs[1].Fg != p.Style.SelectionFg || qs[2].Fg != command.White {
		t.Error("selection foreground not applied to selected glyphs only")
	}
}

func TestDescribeBackgrounds(t *testing.T) {
	l := plainLine(2)
	l.Clusters[0].DefaultBg = false
	l.Clusters[0].Bg = command.RGB(40, 40, 40)
	cmds := Describe(testParams(l)).Commands
	f, ok := cmds[0].(command.FillRect)
	if !ok || f.Color != command.RGB(40, 40, 40) || f.SubLayer != SubBackground {
		t.Fatalf("background = %+v", cmds[0])
	}

	p := testParams(plainLine(2))
	p.ReverseVideo = true
	cmds = Describe(p).Commands
	f = cmds[0].(command.FillRect)
	if f.Color != command.White || f.Rect.W != 16 {
		t.Errorf("reverse video row fill = %+v", f)
	}
}

func TestDescribeHyperlinkHover(t *testing.T) {
	link := &grid.Hyperlink{ID: "a", URI: "https://example.com"}
	l := plainLine(3)
	l.Clusters[0].Style.Link = link
	p := testParams(l)
	p.Sprites.Underline = atlas.Sprite{Tex: glyphTex, Mode: command.ModeGlyph}

	res := Describe(p)
	if !res.InvalidateOnHoverChange {
		t.Error("rows with links depend on hover")
	}
	plain := len(res.Commands)

	p.Highlight = &grid.Hyperlink{ID: "a", URI: "https://example.com"}
	if n := len(Describe(p).Commands); n != plain+1 {
		t.Errorf("hovered link: got %d commands, want %d", n, plain+1)
	}
}

func TestDescribeBlink(t *testing.T) {
	l := plainLine(2)
	l.Clusters[0].Style.Attrs = grid.Blink
	p := testParams(l)
	p.BlinkInterval = 500 * time.Millisecond
	p.Now = time.Unix(10, 0)

	on := Describe(p)
	if len(quads(on.Commands)) != 2 {
		t.Fatal("blinking text should be visible in the even phase")
	}
	if want := time.Unix(10, 500*int64(time.Millisecond)); !on.Expires.Equal(want) {
		t.Errorf("expires = %v, want %v", on.Expires, want)
	}

	p.Now = p.Now.Add(600 * time.Millisecond)
	if len(quads(Describe(p).Commands)) != 0 {
		t.Error("blinking text should be hidden in the odd phase")
	}
}

func TestDescribeImageOrder(t *testing.T) {
	l := plainLine(2)
	sp := atlas.Sprite{Tex: command.TexCoords{Right: 0.5, Bottom: 0.5}, Mode: command.ModeColorEmoji}
	l.Images = []shape.Image{
		{Column: 0, Cell: grid.ImageCell{ZIndex: 1}, Sprite: sp},
		{Column: 1, Cell: grid.ImageCell{ZIndex: -1, Padding: [4]uint16{1, 1, 1, 1}}, Sprite: sp},
	}
	qs := quads(Describe(testParams(l)).Commands)
	if len(qs) != 4 {
		t.Fatalf("got %d quads, want 4", len(qs))
	}
	if qs[0].Mode != command.ModeColorEmoji || qs[0].Rect != command.R(9, 1, 6, 14) {
		t.Errorf("below-text image = %+v", qs[0])
	}
	if qs[3].Mode != command.ModeColorEmoji || qs[3].Rect.X != 0 {
		t.Errorf("above-text image = %+v", qs[3])
	}
}

func TestParseCursorShape(t *testing.T) {
	for _, s := range []CursorShape{CursorBlock, CursorUnderline, CursorBar, CursorHollow} {
		if ParseCursorShape(s.String()) != s {
			t.Errorf("round trip of %v failed", s)
		}
	}
	if ParseCursorShape("beam") != CursorBlock {
		t.Error("unknown names should map to block")
	}
}

func TestDescribePasswordCursor(t *testing.T) {
	maskTex := command.TexCoords{Left: 0, Top: 0.5, Right: 0.25, Bottom: 0.75}
	p := testParams(plainLine(5))
	p.Cursor = &Cursor{Column: 2, Width: 1, Shape: CursorBlock}
	p.Password = true
	p.Sprites.Masked = atlas.Sprite{Tex: maskTex, Width: 8, Height: 16, Mode: command.ModeColorEmoji}
	cmds := Describe(p).Commands

	for _, c := range cmds {
		if f, ok := c.(command.FillRect); ok {
			t.Errorf("password cursor emitted fill %+v", f)
		}
	}
	var masked []command.DrawQuad
	for _, q := range quads(cmds) {
		if q.Tex == maskTex {
			masked = append(masked, q)
			continue
		}
		if q.Fg != command.White {
			t.Errorf("glyph at x=%v recolored to %v under a masked cursor", q.Rect.X, q.Fg)
		}
	}
	if len(masked) != 1 {
		t.Fatalf("got %d masked quads, want 1", len(masked))
	}
	if masked[0].Rect != command.R(16, 0, 8, 16) || masked[0].SubLayer != SubOverlay {
		t.Errorf("masked quad = %+v", masked[0])
	}
}

func TestStyleHash(t *testing.T) {
	base := testParams(nil).Style
	if base.Hash() != base.Hash() {
		t.Fatal("hash is not deterministic")
	}
	tests := []struct {
		name   string
		change func(*Style)
	}{
		{"cell width", func(s *Style) { s.CellWidth++ }},
		{"cell height", func(s *Style) { s.CellHeight++ }},
		{"fg", func(s *Style) { s.Fg = command.RGB(255, 0, 0) }},
		{"bg", func(s *Style) { s.Bg = command.RGB(1, 1, 1) }},
		{"selection fg", func(s *Style) { s.SelectionFg = command.White }},
		{"cursor border", func(s *Style) { s.CursorBorder = command.White }},
		{"cursor thickness", func(s *Style) { s.CursorThickness = 3 }},
		{"link hover", func(s *Style) { s.LinkHover = command.White }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			tt.change(&s)
			if s.Hash() == base.Hash() {
				t.Errorf("hash unchanged after %s change", tt.name)
			}
		})
	}
}
