// Package element describes small box trees such as the fancy tab bar
// and modal overlays.
package element

import (
	"fmt"
	"time"

	"github.com/gogpu/cellgrid/atlas"
	"github.com/gogpu/cellgrid/command"
	"github.com/gogpu/cellgrid/frame"
	"github.com/gogpu/cellgrid/line"
	"github.com/gogpu/cellgrid/shape"
)

// Edges are per-side widths in pixels.
type Edges struct {
	Left, Top, Right, Bottom float32
}

// Uniform returns equal edges on all sides.
func Uniform(v float32) Edges { return Edges{v, v, v, v} }

// Colors are the colors of an element. A transparent color draws nothing,
// except Fg, where it keeps the text colors.
type Colors struct {
	Bg     command.Color
	Border command.Color
	Fg     command.Color
}

// Element is one box of a tree. At most one of Text, Children and Poly is
// used, in that order of preference.
type Element struct {
	ID          string
	Bounds      command.Rect
	Border      Edges
	Padding     Edges
	Colors      Colors
	HoverColors *Colors

	// Hit adds a hit region over Bounds unless it is HitNone.
	Hit   frame.HitKind
	HitID uint64

	Text     *shape.ShapedLine
	Children []Element
	Poly     *atlas.PolyKey
}

// Content returns the rectangle inside border and padding.
func (e *Element) Content() command.Rect {
	r := e.Bounds
	l := e.Border.Left + e.Padding.Left
	t := e.Border.Top + e.Padding.Top
	r.X += l
	r.Y += t
	r.W -= l + e.Border.Right + e.Padding.Right
	r.H -= t + e.Border.Bottom + e.Padding.Bottom
	return r
}

// PolygonResolver rasterizes polygon sprites.
type PolygonResolver interface {
	ResolvePolygon(atlas.PolyKey) (atlas.Sprite, error)
}

// Params are the inputs shared by a whole tree.
type Params struct {
	Resolver PolygonResolver
	Depth    int8

	// Pointer is the pointer position, or nil when outside the window.
	Pointer *[2]float32

	// Style provides the cell metrics used for text content.
	Style line.Style
	Now   time.Time
}

// Describe produces the commands and hit regions of the tree rooted at el.
func Describe(el *Element, p Params) ([]command.Command, []frame.HitRegion, error) {
	d := describer{p: p}
	if err := d.element(el); err != nil {
		return nil, nil, err
	}
	return d.out, d.hits, nil
}

type describer struct {
	p    Params
	out  []command.Command
	hits []frame.HitRegion
}

func (d *describer) hovered(el *Element) bool {
	ptr := d.p.Pointer
	return ptr != nil && el.Bounds.Contains(ptr[0], ptr[1])
}

func (d *describer) fill(r command.Rect, c command.Color) {
	if r.Empty() || c.IsTransparent() {
		return
	}
	d.out = append(d.out, command.FillRect{Depth: d.p.Depth, SubLayer: line.SubBackground, Rect: r, Color: c})
}

func (d *describer) element(el *Element) error {
	colors := el.Colors
	if el.HoverColors != nil && d.hovered(el) {
		colors = *el.HoverColors
	}

	b := el.Bounds
	d.fill(b, colors.Bg)
	bd := el.Border
	d.fill(command.R(b.X, b.Y, bd.Left, b.H), colors.Border)
	d.fill(command.R(b.Right()-bd.Right, b.Y, bd.Right, b.H), colors.Border)
	d.fill(command.R(b.X+bd.Left, b.Y, b.W-bd.Left-bd.Right, bd.Top), colors.Border)
	d.fill(command.R(b.X+bd.Left, b.Bottom()-bd.Bottom, b.W-bd.Left-bd.Right, bd.Bottom), colors.Border)

	if el.Hit != frame.HitNone {
		d.hits = append(d.hits, frame.HitRegion{Rect: b, Kind: el.Hit, ID: el.HitID})
	}

	content := el.Content()
	switch {
	case el.Text != nil:
		d.text(el.Text, content, colors.Fg)
	case len(el.Children) > 0:
		for i := range el.Children {
			if err := d.element(&el.Children[i]); err != nil {
				return err
			}
		}
	case el.Poly != nil:
		return d.poly(el, content, colors.Fg)
	}
	return nil
}

// text draws a shaped line vertically centered in r.
func (d *describer) text(sl *shape.ShapedLine, r command.Rect, fg command.Color) {
	st := d.p.Style
	res := line.Describe(line.Params{
		Line:  sl,
		Left:  r.X,
		Top:   r.Y + (r.H-st.CellHeight)/2,
		Depth: d.p.Depth,
		Style: st,
		Now:   d.p.Now,
	})
	recolor := command.PrismTraversal(command.AsDrawQuad)
	clip := r
	for _, c := range res.Commands {
		if !fg.IsTransparent() {
			c = recolor.Modify(c, func(q command.DrawQuad) command.DrawQuad {
				if q.Mode == command.ModeGlyph {
					q.Fg = fg
				}
				return q
			})
		}
		if c = command.ClipTo(c, clip); c.Kind() != command.KindNop {
			d.out = append(d.out, c)
		}
	}
}

func (d *describer) poly(el *Element, r command.Rect, fg command.Color) error {
	if d.p.Resolver == nil {
		return fmt.Errorf("element %q: no polygon resolver", el.ID)
	}
	sp, err := d.p.Resolver.ResolvePolygon(*el.Poly)
	if err != nil {
		return err
	}
	if sp.Empty {
		return nil
	}
	w, h := float32(el.Poly.Width), float32(el.Poly.Height)
	q := command.R(r.X+(r.W-w)/2, r.Y+(r.H-h)/2, w, h)
	d.out = append(d.out, command.DrawQuad{
		Depth:    d.p.Depth,
		SubLayer: line.SubContent,
		Rect:     q,
		Tex:      sp.Tex,
		Fg:       fg,
		Mode:     sp.Mode,
	})
	return nil
}
