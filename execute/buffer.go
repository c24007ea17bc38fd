// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package execute

import (
	"errors"
	"fmt"
	"strings"
)

// SubLayers is the number of sub-layers per depth.
const SubLayers = 3

// growQuantum is the granularity of buffer growth, in quads.
const growQuantum = 128

// ErrBufferFull is matched by *BufferFullError.
var ErrBufferFull = errors.New("execute: quad buffer is full")

// BufferNeed is the shortfall of one sub-layer buffer.
type BufferNeed struct {
	Depth    int8
	SubLayer uint8
	Need     int
	Capacity int
}

// BufferFullError reports the sub-layers that overflowed during a pass.
type BufferFullError struct {
	Needs []BufferNeed
}

func (e *BufferFullError) Error() string {
	var sb strings.Builder
	sb.WriteString("execute: quad buffer is full:")
	for _, n := range e.Needs {
		fmt.Fprintf(&sb, " depth %d sub %d needs %d (capacity %d);", n.Depth, n.SubLayer, n.Need, n.Capacity)
	}
	return strings.TrimSuffix(sb.String(), ";")
}

// Is makes errors.Is(err, ErrBufferFull) match.
func (e *BufferFullError) Is(target error) bool {
	return target == ErrBufferFull
}

// Vertex is one corner of a quad. Colors are linear with straight alpha;
// the fragment stage applies Tone and premultiplies.
type Vertex struct {
	Position [2]float32
	Tex      [2]float32
	Fg       [4]float32
	Alt      [4]float32
	// Tone is the hue, saturation and brightness scale.
	Tone [3]float32
	Mix  float32
	Mode float32
}

// QuadBuffer is a fixed-capacity run of quads, four vertices each.
type QuadBuffer struct {
	verts []Vertex
	used  int
	need  int
}

// NewQuadBuffer returns a buffer holding capacity quads. The capacity is
// at least one.
func NewQuadBuffer(capacity int) *QuadBuffer {
	return &QuadBuffer{verts: make([]Vertex, max(capacity, 1)*4)}
}

// Capacity returns the number of quads the buffer holds.
func (b *QuadBuffer) Capacity() int { return len(b.verts) / 4 }

// Len returns the number of quads written this pass.
func (b *QuadBuffer) Len() int { return b.used }

// Need returns the number of quads requested this pass, including those
// that did not fit.
func (b *QuadBuffer) Need() int { return b.need }

// Overflowed reports whether more quads were requested than fit.
func (b *QuadBuffer) Overflowed() bool { return b.need > b.Capacity() }

// Reset starts a new pass.
func (b *QuadBuffer) Reset() {
	b.used = 0
	b.need = 0
}

// Allocate returns the four vertices of the next quad. When the buffer is
// full it returns slot 0 again and only records the need.
func (b *QuadBuffer) Allocate() []Vertex {
	b.need++
	i := b.used
	if i >= b.Capacity() {
		i = 0
	} else {
		b.used++
	}
	return b.verts[i*4 : i*4+4 : i*4+4]
}

// Vertices returns the vertices written this pass.
func (b *QuadBuffer) Vertices() []Vertex { return b.verts[:b.used*4] }

// Grow reallocates an overflowed buffer to its need rounded up to a
// multiple of 128 quads. Contents are discarded. It reports whether the
// buffer changed.
func (b *QuadBuffer) Grow() bool {
	if !b.Overflowed() {
		return false
	}
	b.verts = make([]Vertex, roundUp(b.need, growQuantum)*4)
	b.Reset()
	return true
}

func roundUp(n, q int) int {
	return (n + q - 1) / q * q
}

// Layer holds the sub-layer buffers of one depth.
type Layer struct {
	Depth int8
	Subs  [SubLayers]*QuadBuffer
}

func newLayer(depth int8, cfg Config) *Layer {
	l := &Layer{Depth: depth}
	for i := range l.Subs {
		n := cfg.LayerQuads
		if depth == 0 {
			n = cfg.ContentQuads
		}
		if i != 1 {
			n = cfg.SubLayerQuads
		}
		l.Subs[i] = NewQuadBuffer(n)
	}
	return l
}

func (l *Layer) reset() {
	for _, b := range l.Subs {
		b.Reset()
	}
}

// Quads returns the number of quads written to every sub-layer.
func (l *Layer) Quads() int {
	n := 0
	for _, b := range l.Subs {
		n += b.Len()
	}
	return n
}
