// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import (
	"image"

	"github.com/gogpu/cellgrid/command"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// SpriteKind selects a cell-sized utility sprite.
type SpriteKind uint8

const (
	SpriteUnderline SpriteKind = iota
	SpriteDoubleUnderline
	SpriteStrikethrough
	SpriteCursorBlock
	SpriteCursorUnderline
	SpriteCursorBar
	SpriteCursorHollow
)

var spriteKindNames = [...]string{
	SpriteUnderline:       "Underline",
	SpriteDoubleUnderline: "DoubleUnderline",
	SpriteStrikethrough:   "Strikethrough",
	SpriteCursorBlock:     "CursorBlock",
	SpriteCursorUnderline: "CursorUnderline",
	SpriteCursorBar:       "CursorBar",
	SpriteCursorHollow:    "CursorHollow",
}

func (k SpriteKind) String() string {
	if int(k) < len(spriteKindNames) {
		return spriteKindNames[k]
	}
	return "Unknown"
}

// SpriteKey identifies a utility sprite spanning Cells columns.
type SpriteKey struct {
	Kind  SpriteKind
	Cells uint8
}

// ResolveSprite returns a utility sprite, rasterizing it on first use.
func (g *GlyphCache) ResolveSprite(key SpriteKey) (Sprite, error) {
	if s, ok := g.sprites.Get(key); ok {
		return s, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	m := g.metrics
	w := max(int(key.Cells), 1) * m.CellWidth
	h := m.CellHeight
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	t := m.UnderlineThickness
	baseline := m.Ascent

	fill := func(x0, y0, x1, y1 int) {
		r := image.Rect(x0, y0, x1, y1).Intersect(mask.Bounds())
		draw.Draw(mask, r, image.Opaque, image.Point{}, draw.Src)
	}

	switch key.Kind {
	case SpriteUnderline:
		y := baseline + m.UnderlinePosition
		fill(0, y, w, y+t)
	case SpriteDoubleUnderline:
		y := baseline + m.UnderlinePosition
		fill(0, y-t, w, y)
		fill(0, y+t, w, y+2*t)
	case SpriteStrikethrough:
		y := baseline - m.StrikePosition
		fill(0, y, w, y+t)
	case SpriteCursorBlock:
		fill(0, 0, w, h)
	case SpriteCursorUnderline:
		ct := max(2, t)
		fill(0, h-ct, w, h)
	case SpriteCursorBar:
		ct := max(2, t)
		fill(0, 0, ct, h)
	case SpriteCursorHollow:
		fill(0, 0, w, 1)
		fill(0, h-1, w, h)
		fill(0, 0, 1, h)
		fill(w-1, 0, w, h)
	}

	s, err := g.putMask(mask, command.ModeGlyph)
	if err != nil {
		return Sprite{}, err
	}
	g.sprites.Set(key, s)
	return s, nil
}

// PolyShape selects a vector outline used by chrome elements.
type PolyShape uint8

const (
	PolyClose PolyShape = iota // diagonal cross
	PolyPlus                   // plus sign
)

// PolyKey identifies a rasterized outline of Width x Height pixels.
type PolyKey struct {
	Shape         PolyShape
	Width, Height int
}

// outline returns the closed polygons of shape in unit coordinates.
func (s PolyShape) outline() [][][2]float32 {
	const k = 0.09 // half stroke width
	switch s {
	case PolyClose:
		return [][][2]float32{
			{{0.2, 0.2 + k}, {0.2 + k, 0.2}, {0.8, 0.8 - k}, {0.8 - k, 0.8}},
			{{0.8 - k, 0.2}, {0.8, 0.2 + k}, {0.2 + k, 0.8}, {0.2, 0.8 - k}},
		}
	case PolyPlus:
		return [][][2]float32{
			{{0.5 - k, 0.2}, {0.5 + k, 0.2}, {0.5 + k, 0.8}, {0.5 - k, 0.8}},
			{{0.2, 0.5 - k}, {0.8, 0.5 - k}, {0.8, 0.5 + k}, {0.2, 0.5 + k}},
		}
	}
	return nil
}

// ResolvePolygon returns the sprite for a vector outline.
func (g *GlyphCache) ResolvePolygon(key PolyKey) (Sprite, error) {
	if key.Width <= 0 || key.Height <= 0 {
		return Sprite{Empty: true}, nil
	}
	if s, ok := g.polys.Get(key); ok {
		return s, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	w, h := float32(key.Width), float32(key.Height)
	z := vector.NewRasterizer(key.Width, key.Height)
	for _, poly := range key.Shape.outline() {
		z.MoveTo(poly[0][0]*w, poly[0][1]*h)
		for _, p := range poly[1:] {
			z.LineTo(p[0]*w, p[1]*h)
		}
		z.ClosePath()
	}
	mask := image.NewAlpha(image.Rect(0, 0, key.Width, key.Height))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	s, err := g.putMask(mask, command.ModeGlyph)
	if err != nil {
		return Sprite{}, err
	}
	g.polys.Set(key, s)
	return s, nil
}
