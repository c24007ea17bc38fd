// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package command

// Rect is an axis-aligned rectangle in screen pixels.
type Rect struct {
	X, Y, W, H float32
}

// R is shorthand for Rect{x, y, w, h}.
func R(x, y, w, h float32) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float32 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float32 { return r.Y + r.H }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Contains reports whether (x, y) lies inside r. The right and bottom
// edges are exclusive.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Intersect returns the intersection of r and o.
// The result is the zero Rect when they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	x0 := max(r.X, o.X)
	y0 := max(r.Y, o.Y)
	x1 := min(r.Right(), o.Right())
	y1 := min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float32) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Inset returns r shrunk by d on every side. A negative d grows it.
func (r Rect) Inset(d float32) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, W: r.W - 2*d, H: r.H - 2*d}
}

// TexCoords is a normalized texture-space rectangle.
type TexCoords struct {
	Left, Top, Right, Bottom float32
}

// Width returns the horizontal extent in texture space.
func (t TexCoords) Width() float32 { return t.Right - t.Left }

// Height returns the vertical extent in texture space.
func (t TexCoords) Height() float32 { return t.Bottom - t.Top }

// Slice returns the horizontal sub-range between the fractions from and to
// of the width. Slice(0, 1) returns t unchanged.
func (t TexCoords) Slice(from, to float32) TexCoords {
	w := t.Width()
	return TexCoords{
		Left:   t.Left + w*from,
		Top:    t.Top,
		Right:  t.Left + w*to,
		Bottom: t.Bottom,
	}
}

// remap returns the part of t that corresponds to sub inside the
// rectangle full, scaling proportionally on both axes.
func (t TexCoords) remap(full, sub Rect) TexCoords {
	if full.W <= 0 || full.H <= 0 {
		return t
	}
	w, h := t.Width(), t.Height()
	fx0 := (sub.X - full.X) / full.W
	fx1 := (sub.Right() - full.X) / full.W
	fy0 := (sub.Y - full.Y) / full.H
	fy1 := (sub.Bottom() - full.Y) / full.H
	return TexCoords{
		Left:   t.Left + w*fx0,
		Top:    t.Top + h*fy0,
		Right:  t.Left + w*fx1,
		Bottom: t.Top + h*fy1,
	}
}
