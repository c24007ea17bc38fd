// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import (
	"errors"
	"image"

	"github.com/gogpu/cellgrid/command"
	"github.com/gogpu/cellgrid/grid"
	"golang.org/x/image/draw"
)

// ErrInvalidImage is returned for images whose pixel data does not match
// their dimensions.
var ErrInvalidImage = errors.New("atlas: invalid image data")

// Allowance limits how much atlas space images may use. The renderer
// degrades it step by step when the atlas cannot grow any further.
type Allowance uint8

const (
	AllowanceYes Allowance = iota
	AllowanceScale2
	AllowanceScale4
	AllowanceScale8
	AllowanceNo
)

var allowanceNames = [...]string{
	AllowanceYes:    "Yes",
	AllowanceScale2: "Scale(2)",
	AllowanceScale4: "Scale(4)",
	AllowanceScale8: "Scale(8)",
	AllowanceNo:     "No",
}

func (a Allowance) String() string {
	if int(a) < len(allowanceNames) {
		return allowanceNames[a]
	}
	return "Unknown"
}

// Scale returns the downscale divisor, or 0 when images are not drawn.
func (a Allowance) Scale() int {
	switch a {
	case AllowanceYes:
		return 1
	case AllowanceScale2:
		return 2
	case AllowanceScale4:
		return 4
	case AllowanceScale8:
		return 8
	}
	return 0
}

// Degrade returns the next stricter allowance. It reports false when a is
// already AllowanceNo.
func (a Allowance) Degrade() (Allowance, bool) {
	if a >= AllowanceNo {
		return AllowanceNo, false
	}
	return a + 1, true
}

type imageKey struct {
	id        uint64
	allowance Allowance
}

// ResolveImage uploads img, downscaled according to allowance. Images are
// memoized by ID. AllowanceNo resolves to an empty sprite.
func (g *GlyphCache) ResolveImage(img *grid.Image, allowance Allowance) (Sprite, error) {
	scale := allowance.Scale()
	if img == nil || scale == 0 {
		return Sprite{Empty: true, Mode: command.ModeColorEmoji}, nil
	}
	key := imageKey{id: img.ID, allowance: allowance}
	if s, ok := g.images.Get(key); ok {
		return s, nil
	}
	if img.Width <= 0 || img.Height <= 0 || len(img.Pix) < 4*img.Width*img.Height {
		return Sprite{}, ErrInvalidImage
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var src image.Image = &image.RGBA{
		Pix:    img.Pix,
		Stride: 4 * img.Width,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}
	if scale > 1 {
		dst := image.NewRGBA(image.Rect(0, 0, max(img.Width/scale, 1), max(img.Height/scale, 1)))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
		src = dst
	}

	r, err := g.atlas.Put(src)
	if err != nil {
		return Sprite{}, err
	}
	s := Sprite{
		Tex:    g.atlas.TexCoords(r),
		Width:  r.Width,
		Height: r.Height,
		Mode:   command.ModeColorEmoji,
	}
	g.images.Set(key, s)
	return s, nil
}
