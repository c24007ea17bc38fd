// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package execute

import (
	"slices"

	"github.com/gogpu/cellgrid/command"
	"github.com/gogpu/cellgrid/frame"
)

// SectionKind identifies a part of the frame.
type SectionKind uint8

const (
	SectionBackground SectionKind = iota // Window background
	SectionPane                          // One pane
	SectionChrome                        // Splits, borders, tab bar and modal
)

var sectionKindNames = [...]string{
	SectionBackground: "Background",
	SectionPane:       "Pane",
	SectionChrome:     "Chrome",
}

// String returns the string representation of a SectionKind.
func (k SectionKind) String() string {
	if int(k) < len(sectionKindNames) {
		return sectionKindNames[k]
	}
	return "Unknown"
}

// Range is a run of quads in one sub-layer buffer, [Start, End).
type Range struct {
	Depth    int8
	SubLayer uint8
	Start    int
	End      int
}

// Len returns the number of quads in the range.
func (r Range) Len() int { return r.End - r.Start }

// Section is the part of the buffers written by one part of the frame.
type Section struct {
	Kind   SectionKind
	PaneID uint64
	// Scissor is the pane clip in screen pixels; nil outside panes.
	Scissor *command.Rect
	Hash    uint64
	Ranges  []Range
	// Skippable is set when the pane produced the same quads at the same
	// buffer offsets as in the previous plan, so its vertices need not be
	// uploaded again.
	Skippable bool
}

// LayerCounts is the number of quads per sub-layer of one depth.
type LayerCounts struct {
	Depth int8
	Quads [SubLayers]int
}

// Plan describes how to draw the buffers written by one Execute call.
type Plan struct {
	Viewport    Viewport
	Sections    []Section
	Layers      []LayerCounts
	PostProcess *frame.PostProcess
	Hash        uint64
	Stats       Stats
}

// Section returns the section of a pane.
func (p *Plan) Section(paneID uint64) (*Section, bool) {
	for i := range p.Sections {
		if s := &p.Sections[i]; s.Kind == SectionPane && s.PaneID == paneID {
			return s, true
		}
	}
	return nil, false
}

// Quads returns the total number of quads.
func (p *Plan) Quads() int {
	n := 0
	for _, l := range p.Layers {
		for _, q := range l.Quads {
			n += q
		}
	}
	return n
}

func (p *Plan) markSkippable(prev *Plan) {
	if prev == nil || prev.Viewport != p.Viewport {
		return
	}
	for i := range p.Sections {
		s := &p.Sections[i]
		if s.Kind != SectionPane {
			continue
		}
		old, ok := prev.Section(s.PaneID)
		if !ok || old.Hash != s.Hash {
			continue
		}
		s.Skippable = slices.Equal(old.Ranges, s.Ranges)
	}
}

// MaxQuadsPerDraw bounds a draw call so that 16-bit indices can address
// every vertex.
const MaxQuadsPerDraw = 16384

// Draw is one indexed draw call.
type Draw struct {
	Depth    int8
	SubLayer uint8
	// BaseVertex is the first vertex of the call.
	BaseVertex int
	Quads      int
}

// Draws returns the draw calls in order: ascending depth, then sub-layer.
func (p *Plan) Draws() []Draw {
	var out []Draw
	for _, l := range p.Layers {
		for sub, n := range l.Quads {
			for start := 0; start < n; start += MaxQuadsPerDraw {
				out = append(out, Draw{
					Depth:      l.Depth,
					SubLayer:   uint8(sub), //nolint:gosec // sub < SubLayers
					BaseVertex: start * 4,
					Quads:      min(n-start, MaxQuadsPerDraw),
				})
			}
		}
	}
	return out
}
