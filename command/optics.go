// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package command

// Lens focuses on a part A that every S has.
type Lens[S, A any] struct {
	Get func(S) A
	Set func(S, A) S
}

// Modify applies f to the focused part of s.
func (l Lens[S, A]) Modify(s S, f func(A) A) S {
	return l.Set(s, f(l.Get(s)))
}

// ComposeLens focuses through outer and then inner.
func ComposeLens[S, A, B any](outer Lens[S, A], inner Lens[A, B]) Lens[S, B] {
	return Lens[S, B]{
		Get: func(s S) B { return inner.Get(outer.Get(s)) },
		Set: func(s S, b B) S {
			return outer.Set(s, inner.Set(outer.Get(s), b))
		},
	}
}

// Prism focuses on one variant A of a sum type S.
type Prism[S, A any] struct {
	Preview func(S) (A, bool)
	Review  func(A) S
}

// Over applies f when s is the focused variant and returns s unchanged
// otherwise.
func (p Prism[S, A]) Over(s S, f func(A) A) S {
	a, ok := p.Preview(s)
	if !ok {
		return s
	}
	return p.Review(f(a))
}

// Traversal focuses on zero or more parts A of S.
type Traversal[S, A any] struct {
	Each   func(S, func(A) bool)
	Modify func(S, func(A) A) S
}

// ToSlice collects every focus of s.
func (t Traversal[S, A]) ToSlice(s S) []A {
	var out []A
	t.Each(s, func(a A) bool {
		out = append(out, a)
		return true
	})
	return out
}

// AsFillRect focuses on FillRect leaves.
var AsFillRect = Prism[Command, FillRect]{
	Preview: func(c Command) (FillRect, bool) {
		f, ok := c.(FillRect)
		return f, ok
	},
	Review: func(f FillRect) Command { return f },
}

// AsDrawQuad focuses on DrawQuad leaves.
var AsDrawQuad = Prism[Command, DrawQuad]{
	Preview: func(c Command) (DrawQuad, bool) {
		q, ok := c.(DrawQuad)
		return q, ok
	},
	Review: func(q DrawQuad) Command { return q },
}

// DeepLeaves focuses on every leaf of a command tree.
var DeepLeaves = Traversal[Command, Command]{
	Each: func(c Command, fn func(Command) bool) {
		Walk(c, fn)
	},
	Modify: MapLeaves,
}

// PrismTraversal narrows DeepLeaves to the variant focused by p.
func PrismTraversal[A any](p Prism[Command, A]) Traversal[Command, A] {
	return Traversal[Command, A]{
		Each: func(c Command, fn func(A) bool) {
			Walk(c, func(leaf Command) bool {
				if a, ok := p.Preview(leaf); ok {
					return fn(a)
				}
				return true
			})
		},
		Modify: func(c Command, f func(A) A) Command {
			return MapLeaves(c, func(leaf Command) Command {
				return p.Over(leaf, f)
			})
		},
	}
}
