// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package command

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a straight-alpha sRGB color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Common colors.
var (
	Transparent = Color{}
	Black       = Color{0, 0, 0, 1}
	White       = Color{1, 1, 1, 1}
)

// RGB returns an opaque color from 8-bit components.
func RGB(r, g, b uint8) Color {
	return Color{R: float32(r) / 255, G: float32(g) / 255, B: float32(b) / 255, A: 1}
}

// ParseHex parses "#rgb" or "#rrggbb" into an opaque color.
func ParseHex(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("command: invalid color %q: %w", s, err)
	}
	return FromColorful(c, 1), nil
}

// FromColorful converts a go-colorful color with the given alpha.
func FromColorful(c colorful.Color, alpha float32) Color {
	c = c.Clamped()
	return Color{R: float32(c.R), G: float32(c.G), B: float32(c.B), A: alpha}
}

// Colorful returns the RGB part of c as a go-colorful color.
func (c Color) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B)}
}

// Hex formats the RGB part of c as "#rrggbb".
func (c Color) Hex() string {
	return c.Colorful().Clamped().Hex()
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float32) Color {
	c.A = a
	return c
}

// Lerp interpolates between c and o in RGB space. t is clamped to [0, 1].
func (c Color) Lerp(o Color, t float32) Color {
	t = clamp01(t)
	out := FromColorful(c.Colorful().BlendRgb(o.Colorful(), float64(t)), 0)
	out.A = c.A + (o.A-c.A)*t
	return out
}

// Linear converts the RGB components to linear light for upload.
func (c Color) Linear() Color {
	r, g, b := c.Colorful().LinearRgb()
	return Color{R: float32(r), G: float32(g), B: float32(b), A: c.A}
}

// Premultiplied returns c with RGB multiplied by alpha.
func (c Color) Premultiplied() Color {
	return Color{R: c.R * c.A, G: c.G * c.A, B: c.B * c.A, A: c.A}
}

// IsTransparent reports whether c has zero alpha.
func (c Color) IsTransparent() bool { return c.A == 0 }

// String returns "#rrggbb@a".
func (c Color) String() string {
	return fmt.Sprintf("%s@%.3g", c.Hex(), c.A)
}

// HSBTransform scales hue, saturation and brightness multiplicatively.
// The identity transform is {1, 1, 1}.
type HSBTransform struct {
	Hue        float32 `mapstructure:"hue" yaml:"hue"`
	Saturation float32 `mapstructure:"saturation" yaml:"saturation"`
	Brightness float32 `mapstructure:"brightness" yaml:"brightness"`
}

// IdentityHSB leaves colors unchanged.
var IdentityHSB = HSBTransform{Hue: 1, Saturation: 1, Brightness: 1}

// IsIdentity reports whether t leaves colors unchanged.
func (t HSBTransform) IsIdentity() bool { return t == IdentityHSB }

// Apply transforms c in HSV space. Alpha is preserved.
func (t HSBTransform) Apply(c Color) Color {
	if t.IsIdentity() {
		return c
	}
	h, s, v := c.Colorful().Hsv()
	h = math.Mod(h*float64(t.Hue), 360)
	if h < 0 {
		h += 360
	}
	s = min(max(s*float64(t.Saturation), 0), 1)
	v = min(max(v*float64(t.Brightness), 0), 1)
	return FromColorful(colorful.Hsv(h, s, v), c.A)
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}
