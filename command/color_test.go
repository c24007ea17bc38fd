// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package command

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-3
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#ff8000")
	if err != nil {
		t.Fatal(err)
	}
	if !near(c.R, 1) || !near(c.G, 128.0/255) || !near(c.B, 0) || c.A != 1 {
		t.Errorf("ParseHex = %+v", c)
	}
	if c.Hex() != "#ff8000" {
		t.Errorf("Hex() = %q", c.Hex())
	}
	if _, err := ParseHex("nope"); err == nil {
		t.Error("expected error for invalid color")
	}
}

func TestLerp(t *testing.T) {
	got := Black.Lerp(White, 0.5)
	if !near(got.R, 0.5) || !near(got.G, 0.5) || !near(got.B, 0.5) || got.A != 1 {
		t.Errorf("Lerp(0.5) = %+v", got)
	}
	if Black.Lerp(White, 2) != White {
		t.Error("t should be clamped to 1")
	}
	if Black.Lerp(White, -1) != Black {
		t.Error("t should be clamped to 0")
	}
}

func TestHSBTransform(t *testing.T) {
	c := RGB(200, 100, 50)
	if IdentityHSB.Apply(c) != c {
		t.Error("identity transform changed the color")
	}

	dim := HSBTransform{Hue: 1, Saturation: 1, Brightness: 0.5}.Apply(c)
	if !near(dim.R, c.R*0.5) {
		t.Errorf("brightness 0.5: R = %v, want %v", dim.R, c.R*0.5)
	}

	gray := HSBTransform{Hue: 1, Saturation: 0, Brightness: 1}.Apply(c)
	if !near(gray.R, gray.G) || !near(gray.G, gray.B) {
		t.Errorf("saturation 0 should produce gray, got %+v", gray)
	}
	if gray.A != c.A {
		t.Error("alpha not preserved")
	}
}
