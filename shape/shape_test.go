package shape

import (
	"errors"
	"testing"

	"github.com/gogpu/cellgrid/atlas"
	"github.com/gogpu/cellgrid/command"
	"github.com/gogpu/cellgrid/grid"
)

func newCache(t *testing.T) *atlas.GlyphCache {
	t.Helper()
	g, err := atlas.NewGlyphCache(atlas.Config{})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

var testPalette = Palette{Fg: command.White, Bg: command.Black}

func TestShapePlainRow(t *testing.T) {
	s, _ := NewShaper()
	line := grid.ParseLine("hello", grid.Style{})
	out, err := s.Shape(line, newCache(t), Params{Palette: testPalette})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Clusters) != 1 {
		t.Fatalf("got %d clusters, want 1", len(out.Clusters))
	}
	c := out.Clusters[0]
	if c.Cells != 5 || len(c.Glyphs) != 5 {
		t.Fatalf("cluster cells=%d glyphs=%d, want 5 and 5", c.Cells, len(c.Glyphs))
	}
	for i, g := range c.Glyphs {
		if g.Column != i || g.Cells != 1 {
			t.Errorf("glyph %d at column %d spanning %d", i, g.Column, g.Cells)
		}
	}
	if !c.DefaultBg || c.Fg != command.White {
		t.Errorf("default colors not applied: %+v", c)
	}
	if out.ContentHash != line.ContentHash() {
		t.Error("content hash mismatch")
	}
}

func TestShapeClustersByStyle(t *testing.T) {
	s, _ := NewShaper()
	red := grid.Style{Fg: grid.Palette(1)}
	cells := append(grid.ParseLine("ab", grid.Style{}).Cells, grid.ParseLine("cd", red).Cells...)
	cells = append(cells, grid.ParseLine("世", grid.Style{Attrs: grid.Underline | grid.Strikethrough}).Cells...)
	out, err := s.Shape(grid.Line{Cells: cells}, newCache(t), Params{Palette: testPalette})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Clusters) != 3 {
		t.Fatalf("got %d clusters, want 3", len(out.Clusters))
	}
	if out.Clusters[1].Fg != command.RGB(128, 0, 0) {
		t.Errorf("palette color not resolved: %v", out.Clusters[1].Fg)
	}
	wide := out.Clusters[2]
	if len(wide.Glyphs) != 1 || wide.Glyphs[0].Cells != 2 {
		t.Errorf("wide cluster glyphs = %+v", wide.Glyphs)
	}
	if wide.Underline == nil || wide.Strike == nil {
		t.Error("decorations should be resolved")
	}
}

func TestShapeAttributes(t *testing.T) {
	s, _ := NewShaper()
	res := newCache(t)

	rev, err := s.Shape(grid.ParseLine("x", grid.Style{Attrs: grid.Reverse}), res, Params{Palette: testPalette})
	if err != nil {
		t.Fatal(err)
	}
	c := rev.Clusters[0]
	if c.Fg != command.Black || c.Bg != command.White || c.DefaultBg {
		t.Errorf("reverse video not applied: fg=%v bg=%v default=%v", c.Fg, c.Bg, c.DefaultBg)
	}

	inv, err := s.Shape(grid.ParseLine("secret", grid.Style{Attrs: grid.Invisible}), res, Params{Palette: testPalette})
	if err != nil {
		t.Fatal(err)
	}
	if len(inv.Clusters[0].Glyphs) != 0 {
		t.Error("invisible text should have no glyphs")
	}
}

func TestShapeComposing(t *testing.T) {
	s, _ := NewShaper()
	line := grid.ParseLine("abcd", grid.Style{})
	out, err := s.Shape(line, newCache(t), Params{
		Palette:   testPalette,
		Composing: &Composing{Column: 1, Text: "xy"},
	})
	if err != nil {
		t.Fatal(err)
	}
	var text string
	for _, c := range out.Clusters {
		for _, g := range c.Glyphs {
			text += g.Text
		}
	}
	if text != "axyd" {
		t.Errorf("composed text = %q, want %q", text, "axyd")
	}
	if out.ContentHash != line.ContentHash() {
		t.Error("content hash should describe the underlying line")
	}
}

func TestShapeImages(t *testing.T) {
	s, _ := NewShaper()
	img := &grid.Image{ID: 1, Width: 2, Height: 2, Pix: make([]byte, 16)}
	line := grid.ParseLine("ab", grid.Style{})
	line.Cells[1].Image = []grid.ImageCell{{Image: img, ZIndex: -1}}

	res := newCache(t)
	out, err := s.Shape(line, res, Params{Palette: testPalette})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Images) != 1 || out.Images[0].Column != 1 {
		t.Fatalf("images = %+v", out.Images)
	}
	out, _ = s.Shape(line, res, Params{Palette: testPalette, Images: atlas.AllowanceNo})
	if len(out.Images) != 0 {
		t.Error("AllowanceNo should drop images")
	}
}

// failingResolver reports exhaustion for the first n glyph requests and
// optionally moves the font epoch on every call.
type failingResolver struct {
	*atlas.GlyphCache
	fail       int
	epoch      uint64
	moveEpoch  bool
	glyphCalls int
}

func (f *failingResolver) ResolveGlyph(k atlas.GlyphKey) (atlas.Sprite, error) {
	f.glyphCalls++
	if f.glyphCalls <= f.fail {
		return atlas.Sprite{}, &atlas.ExhaustedError{SizeHint: 2048}
	}
	return f.GlyphCache.ResolveGlyph(k)
}

func (f *failingResolver) FontEpoch() uint64 {
	if f.moveEpoch {
		f.epoch++
	}
	return f.epoch
}

func TestShapeFailures(t *testing.T) {
	s, _ := NewShaper()
	line := grid.ParseLine("hi", grid.Style{})

	_, err := s.Shape(line, &failingResolver{GlyphCache: newCache(t), fail: 1}, Params{})
	if !errors.Is(err, atlas.ErrAtlasExhausted) {
		t.Errorf("expected atlas exhaustion, got %v", err)
	}

	_, err = s.Shape(line, &failingResolver{GlyphCache: newCache(t), moveEpoch: true}, Params{})
	if !errors.Is(err, ErrShapeCacheStale) {
		t.Errorf("expected stale shape cache, got %v", err)
	}
}

func TestCheckEpoch(t *testing.T) {
	l := &ShapedLine{FontEpoch: 3}
	if l.CheckEpoch(3) != nil {
		t.Error("same epoch should pass")
	}
	if !errors.Is(l.CheckEpoch(4), ErrShapeCacheStale) {
		t.Error("different epoch should be stale")
	}
}

func TestLigatureShaperKeepsPlainText(t *testing.T) {
	s, err := NewShaper(WithLigatures())
	if err != nil {
		t.Fatal(err)
	}
	out, err := s.Shape(grid.ParseLine("abc", grid.Style{}), newCache(t), Params{Palette: testPalette})
	if err != nil {
		t.Fatal(err)
	}
	if n := len(out.Clusters[0].Glyphs); n != 3 {
		t.Errorf("got %d glyphs, want 3", n)
	}
}

func TestLigatureMergeSpans(t *testing.T) {
	segs := []segment{{"-", 0, 1}, {">", 1, 1}, {"x", 2, 1}}
	l, err := newLigatures()
	if err != nil {
		t.Fatal(err)
	}
	out := l.merge(segs)
	covered := 0
	for _, s := range out {
		covered += s.cells
	}
	if covered != 3 {
		t.Errorf("merged segments cover %d cells, want 3", covered)
	}
}
