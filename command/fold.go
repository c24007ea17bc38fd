// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package command

import "iter"

// Fold reduces the leaves of c in paint order. Batches are flattened and
// never passed to f, so every leaf is visited exactly once.
func Fold[T any](c Command, init T, f func(T, Command) T) T {
	acc := init
	Walk(c, func(leaf Command) bool {
		acc = f(acc, leaf)
		return true
	})
	return acc
}

// FoldAll folds over a command sequence as if it were one Batch.
func FoldAll[T any](cmds []Command, init T, f func(T, Command) T) T {
	return Fold(Batch(cmds), init, f)
}

// Walk calls fn for every leaf of c in paint order.
// Walking stops early when fn returns false; Walk then returns false.
func Walk(c Command, fn func(Command) bool) bool {
	if b, ok := c.(Batch); ok {
		for _, child := range b {
			if !Walk(child, fn) {
				return false
			}
		}
		return true
	}
	if c == nil {
		return true
	}
	return fn(c)
}

// Leaves returns an iterator over the leaves of cmds in paint order.
func Leaves(cmds ...Command) iter.Seq[Command] {
	return func(yield func(Command) bool) {
		for _, c := range cmds {
			if !Walk(c, yield) {
				return
			}
		}
	}
}

// Flatten returns the leaves of cmds as a flat slice.
func Flatten(cmds []Command) []Command {
	out := make([]Command, 0, len(cmds))
	for c := range Leaves(cmds...) {
		out = append(out, c)
	}
	return out
}

// CountLeaves returns the number of leaves in c.
func CountLeaves(c Command) int {
	return Fold(c, 0, func(n int, _ Command) int { return n + 1 })
}

// CountDrawables returns the number of leaves that produce geometry.
func CountDrawables(cmds []Command) int {
	return FoldAll(cmds, 0, func(n int, c Command) int {
		if IsDrawable(c) {
			return n + 1
		}
		return n
	})
}

// MapLeaves rebuilds c with f applied to every leaf. Batch structure is
// preserved.
func MapLeaves(c Command, f func(Command) Command) Command {
	if b, ok := c.(Batch); ok {
		out := make(Batch, len(b))
		for i, child := range b {
			out[i] = MapLeaves(child, f)
		}
		return out
	}
	return f(c)
}

// MapColors rewrites every color carried by c.
func MapColors(c Command, f func(Color) Color) Command {
	return MapLeaves(c, func(leaf Command) Command {
		switch v := leaf.(type) {
		case Clear:
			v.Color = f(v.Color)
			return v
		case FillRect:
			v.Color = f(v.Color)
			return v
		case DrawQuad:
			v.Fg = f(v.Fg)
			if v.Alt != nil {
				alt := *v.Alt
				alt.Color = f(alt.Color)
				v.Alt = &alt
			}
			return v
		}
		return leaf
	})
}

// ClipTo intersects the rectangle of every fill and quad in c with clip.
// Texture coordinates of clipped quads are remapped proportionally. Leaves
// that fall outside clip become Nop.
func ClipTo(c Command, clip Rect) Command {
	return MapLeaves(c, func(leaf Command) Command {
		switch v := leaf.(type) {
		case FillRect:
			r := v.Rect.Intersect(clip)
			if r.Empty() {
				return Nop{}
			}
			v.Rect = r
			return v
		case DrawQuad:
			r := v.Rect.Intersect(clip)
			if r.Empty() {
				return Nop{}
			}
			if r != v.Rect {
				v.Tex = v.Tex.remap(v.Rect, r)
				v.Rect = r
			}
			return v
		}
		return leaf
	})
}

// Translate moves every fill and quad in c by (dx, dy).
func Translate(c Command, dx, dy float32) Command {
	return MapLeaves(c, func(leaf Command) Command {
		switch v := leaf.(type) {
		case FillRect:
			v.Rect = v.Rect.Translate(dx, dy)
			return v
		case DrawQuad:
			v.Rect = v.Rect.Translate(dx, dy)
			return v
		case SetClip:
			if v.Rect != nil {
				r := v.Rect.Translate(dx, dy)
				v.Rect = &r
			}
			return v
		}
		return leaf
	})
}

// WithDepth assigns depth to every fill and quad in c.
func WithDepth(c Command, depth int8) Command {
	return MapLeaves(c, func(leaf Command) Command {
		switch v := leaf.(type) {
		case FillRect:
			v.Depth = depth
			return v
		case DrawQuad:
			v.Depth = depth
			return v
		}
		return leaf
	})
}

// WithTone attaches tone to every fill and quad in c that has none.
// An identity tone leaves c unchanged.
func WithTone(c Command, tone HSBTransform) Command {
	if tone.IsIdentity() {
		return c
	}
	return MapLeaves(c, func(leaf Command) Command {
		switch v := leaf.(type) {
		case FillRect:
			if v.Tone == nil {
				t := tone
				v.Tone = &t
			}
			return v
		case DrawQuad:
			if v.Tone == nil {
				t := tone
				v.Tone = &t
			}
			return v
		}
		return leaf
	})
}

// Compact drops Nop leaves and empty batches, flattening nested batches.
func Compact(cmds []Command) []Command {
	out := make([]Command, 0, len(cmds))
	for c := range Leaves(cmds...) {
		if _, ok := c.(Nop); ok {
			continue
		}
		out = append(out, c)
	}
	return out
}
