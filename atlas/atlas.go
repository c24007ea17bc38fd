// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/cellgrid/command"
	"golang.org/x/image/draw"
)

// Atlas errors.
var (
	// ErrAtlasExhausted is matched by *ExhaustedError.
	ErrAtlasExhausted = errors.New("atlas: texture atlas is exhausted")

	// ErrAtlasTooLarge is returned by Recreate when the requested size
	// exceeds the configured maximum.
	ErrAtlasTooLarge = errors.New("atlas: requested size exceeds the maximum")
)

// ExhaustedError reports that an allocation did not fit. SizeHint is the
// smallest atlas size that would fit the failed request.
type ExhaustedError struct {
	SizeHint int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("atlas: texture atlas is exhausted (size hint %d)", e.SizeHint)
}

// Is makes errors.Is(err, ErrAtlasExhausted) match.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrAtlasExhausted
}

// Size limits.
const (
	MinSize     = 256
	DefaultSize = 1024
	MaxSize     = 8192

	// filledBoxSize is the edge of the reserved opaque sprite.
	filledBoxSize = 4
)

// Atlas is a square RGBA texture with a shelf allocator. The top-left
// corner holds an opaque white box used by solid fills.
type Atlas struct {
	size   int
	img    *image.RGBA
	alloc  *Allocator
	filled Region
}

// New creates an atlas of at least MinSize, rounded up to a power of two.
func New(size, padding int) *Atlas {
	size = roundPow2(max(size, MinSize))
	a := &Atlas{
		size:  size,
		img:   image.NewRGBA(image.Rect(0, 0, size, size)),
		alloc: NewAllocator(size, padding),
	}
	a.filled, _ = a.alloc.Allocate(filledBoxSize, filledBoxSize)
	draw.Draw(a.img, rect(a.filled), image.White, image.Point{}, draw.Src)
	return a
}

// Size returns the edge length in pixels.
func (a *Atlas) Size() int { return a.size }

// Image returns the backing texture.
func (a *Atlas) Image() *image.RGBA { return a.img }

// Utilization returns the fraction of the atlas in use.
func (a *Atlas) Utilization() float64 { return a.alloc.Utilization() }

// Allocate reserves a region or returns *ExhaustedError.
func (a *Atlas) Allocate(width, height int) (Region, error) {
	if r, ok := a.alloc.Allocate(width, height); ok {
		return r, nil
	}
	hint := a.size * 2
	for hint < width+a.alloc.padding || hint < height+a.alloc.padding {
		hint *= 2
	}
	return Region{}, &ExhaustedError{SizeHint: hint}
}

// Put allocates a region for src and copies it in.
func (a *Atlas) Put(src image.Image) (Region, error) {
	b := src.Bounds()
	r, err := a.Allocate(b.Dx(), b.Dy())
	if err != nil {
		return Region{}, err
	}
	draw.Draw(a.img, rect(r), src, b.Min, draw.Src)
	return r, nil
}

// PutMask allocates a region for mask and writes white with the mask's
// alpha, which is what glyph quads sample.
func (a *Atlas) PutMask(mask *image.Alpha) (Region, error) {
	b := mask.Bounds()
	r, err := a.Allocate(b.Dx(), b.Dy())
	if err != nil {
		return Region{}, err
	}
	draw.DrawMask(a.img, rect(r), image.White, image.Point{}, mask, b.Min, draw.Src)
	return r, nil
}

// TexCoords converts a region to normalized texture coordinates.
func (a *Atlas) TexCoords(r Region) command.TexCoords {
	s := float32(a.size)
	return command.TexCoords{
		Left:   float32(r.X) / s,
		Top:    float32(r.Y) / s,
		Right:  float32(r.X+r.Width) / s,
		Bottom: float32(r.Y+r.Height) / s,
	}
}

// FilledBox returns coordinates inside the opaque box, inset by one
// pixel so that linear filtering never samples its edge.
func (a *Atlas) FilledBox() command.TexCoords {
	r := a.filled
	return a.TexCoords(Region{X: r.X + 1, Y: r.Y + 1, Width: r.Width - 2, Height: r.Height - 2})
}

func rect(r Region) image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

func roundPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
