// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import "fmt"

// Region is a rectangle of atlas pixels.
type Region struct {
	X, Y, Width, Height int
}

// IsValid reports whether the region has a positive area.
func (r Region) IsValid() bool {
	return r.Width > 0 && r.Height > 0
}

// String returns a string representation of the region.
func (r Region) String() string {
	return fmt.Sprintf("Region(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// shelf is a horizontal strip of the atlas. Items are placed left to right.
type shelf struct {
	y      int
	height int
	nextX  int
}

// Allocator packs rectangles into a square area using shelves.
// Only the last shelf may grow taller, so shelves never overlap.
// Allocator is not safe for concurrent use.
type Allocator struct {
	size    int
	padding int
	shelves []shelf

	allocCount int
	usedArea   int
}

// NewAllocator creates an allocator for a size x size area.
func NewAllocator(size, padding int) *Allocator {
	return &Allocator{
		size:    size,
		padding: max(padding, 0),
		shelves: make([]shelf, 0, 16),
	}
}

// Size returns the edge length of the area.
func (a *Allocator) Size() int { return a.size }

// Allocate reserves a width x height rectangle. It reports false when
// the rectangle does not fit.
func (a *Allocator) Allocate(width, height int) (Region, bool) {
	if width <= 0 || height <= 0 {
		return Region{}, false
	}
	pw, ph := width+a.padding, height+a.padding
	if pw > a.size || ph > a.size {
		return Region{}, false
	}

	last := len(a.shelves) - 1
	for i := range a.shelves {
		s := &a.shelves[i]
		if s.nextX+pw > a.size {
			continue
		}
		if ph <= s.height || (i == last && s.y+ph <= a.size) {
			return a.place(s, width, height, pw, ph), true
		}
	}

	y := 0
	if last >= 0 {
		y = a.shelves[last].y + a.shelves[last].height
	}
	if y+ph > a.size {
		return Region{}, false
	}
	a.shelves = append(a.shelves, shelf{y: y})
	return a.place(&a.shelves[len(a.shelves)-1], width, height, pw, ph), true
}

func (a *Allocator) place(s *shelf, width, height, pw, ph int) Region {
	r := Region{X: s.nextX, Y: s.y, Width: width, Height: height}
	s.nextX += pw
	s.height = max(s.height, ph)
	a.allocCount++
	a.usedArea += width * height
	return r
}

// Reset releases every allocation.
func (a *Allocator) Reset() {
	a.shelves = a.shelves[:0]
	a.allocCount = 0
	a.usedArea = 0
}

// AllocCount returns the number of live allocations.
func (a *Allocator) AllocCount() int { return a.allocCount }

// Utilization returns the fraction of the area covered by allocations.
func (a *Allocator) Utilization() float64 {
	total := a.size * a.size
	if total == 0 {
		return 0
	}
	return float64(a.usedArea) / float64(total)
}
