// Package frame holds the immutable description of one window frame.
//
// A Frame is produced by the describer and consumed by the executor.
// It groups commands by origin so that the executor can plan per-pane
// sections, and it carries the hit regions for pointer input.
package frame

import (
	"encoding/binary"
	"hash/fnv"
	"iter"
	"time"

	"github.com/gogpu/cellgrid/command"
)

// HitKind is the meaning of a hit region.
type HitKind uint8

const (
	HitNone HitKind = iota
	HitTabBar
	HitCloseTab
	HitNewTab
	HitAboveScrollThumb
	HitScrollThumb
	HitBelowScrollThumb
	HitSplit
	HitModal
)

var hitKindNames = [...]string{
	HitNone:             "None",
	HitTabBar:           "TabBar",
	HitCloseTab:         "CloseTab",
	HitNewTab:           "NewTab",
	HitAboveScrollThumb: "AboveScrollThumb",
	HitScrollThumb:      "ScrollThumb",
	HitBelowScrollThumb: "BelowScrollThumb",
	HitSplit:            "Split",
	HitModal:            "Modal",
}

func (k HitKind) String() string {
	if int(k) < len(hitKindNames) {
		return hitKindNames[k]
	}
	return "Unknown"
}

// HitRegion is a rectangle that reacts to the pointer.
type HitRegion struct {
	Rect command.Rect
	Kind HitKind
	// ID identifies the tab, pane or split the region belongs to.
	ID uint64
}

// PaneFrame is the description of one pane.
type PaneFrame struct {
	PaneID uint64
	Active bool
	Bounds command.Rect
	// Clip bounds the rows and the scrollbar.
	Clip command.Rect

	Background []command.Command
	Bell       []command.Command
	Rows       [][]command.Command
	Scrollbar  []command.Command

	ContentHash uint64
}

// Leaves iterates the pane commands in paint order. Rows and scrollbar
// are wrapped in a clip to the pane.
func (p *PaneFrame) Leaves() iter.Seq[command.Command] {
	return func(yield func(command.Command) bool) {
		for c := range command.Leaves(p.Background...) {
			if !yield(c) {
				return
			}
		}
		for c := range command.Leaves(p.Bell...) {
			if !yield(c) {
				return
			}
		}
		clip := p.Clip
		if !yield(command.SetClip{Rect: &clip}) {
			return
		}
		for _, row := range p.Rows {
			for c := range command.Leaves(row...) {
				if !yield(c) {
					return
				}
			}
		}
		for c := range command.Leaves(p.Scrollbar...) {
			if !yield(c) {
				return
			}
		}
		yield(command.SetClip{})
	}
}

// Hash returns the content hash of the pane commands.
func (p *PaneFrame) Hash() uint64 {
	return hashSeq(p.Leaves())
}

// ChromeFrame holds the window decorations drawn above the panes.
type ChromeFrame struct {
	Splits  []command.Command
	Borders []command.Command
	TabBar  []command.Command
	Modal   []command.Command
}

// Leaves iterates the chrome commands in paint order.
func (c *ChromeFrame) Leaves() iter.Seq[command.Command] {
	return command.Leaves(
		command.Batch(c.Splits),
		command.Batch(c.Borders),
		command.Batch(c.TabBar),
		command.Batch(c.Modal),
	)
}

// PostProcess are the parameters of the post-process pass.
type PostProcess struct {
	Width, Height float32
	// Time is the elapsed time since the renderer started.
	Time time.Duration
}

// Frame is a complete window description. It must not be modified after
// description; use the lenses to derive changed copies.
type Frame struct {
	Background  []command.Command
	Panes       []PaneFrame
	Chrome      ChromeFrame
	PostProcess *PostProcess
	HitRegions  []HitRegion
}

// Leaves iterates every leaf in paint order: background, panes, chrome,
// then the post-process marker.
func (f *Frame) Leaves() iter.Seq[command.Command] {
	return func(yield func(command.Command) bool) {
		for c := range command.Leaves(f.Background...) {
			if !yield(c) {
				return
			}
		}
		for i := range f.Panes {
			for c := range f.Panes[i].Leaves() {
				if !yield(c) {
					return
				}
			}
		}
		for c := range f.Chrome.Leaves() {
			if !yield(c) {
				return
			}
		}
		if f.PostProcess != nil {
			yield(command.BeginPostProcess{})
		}
	}
}

// Count returns the number of drawable leaves.
func (f *Frame) Count() int {
	n := 0
	for c := range f.Leaves() {
		if command.IsDrawable(c) {
			n++
		}
	}
	return n
}

// ContentHash hashes every leaf of the frame.
func (f *Frame) ContentHash() uint64 {
	return hashSeq(f.Leaves())
}

// HitTest returns the topmost hit region containing (x, y).
func (f *Frame) HitTest(x, y float32) (HitRegion, bool) {
	for i := len(f.HitRegions) - 1; i >= 0; i-- {
		if f.HitRegions[i].Rect.Contains(x, y) {
			return f.HitRegions[i], true
		}
	}
	return HitRegion{}, false
}

// Pane returns the pane with the given ID.
func (f *Frame) Pane(id uint64) (*PaneFrame, bool) {
	for i := range f.Panes {
		if f.Panes[i].PaneID == id {
			return &f.Panes[i], true
		}
	}
	return nil, false
}

// PaneLens focuses on the i-th pane of a frame. Set returns a copy with a
// fresh pane slice.
func PaneLens(i int) command.Lens[Frame, PaneFrame] {
	return command.Lens[Frame, PaneFrame]{
		Get: func(f Frame) PaneFrame { return f.Panes[i] },
		Set: func(f Frame, p PaneFrame) Frame {
			panes := make([]PaneFrame, len(f.Panes))
			copy(panes, f.Panes)
			panes[i] = p
			f.Panes = panes
			return f
		},
	}
}

// AllPanes focuses on every pane of a frame.
var AllPanes = command.Traversal[Frame, PaneFrame]{
	Each: func(f Frame, fn func(PaneFrame) bool) {
		for _, p := range f.Panes {
			if !fn(p) {
				return
			}
		}
	},
	Modify: func(f Frame, fn func(PaneFrame) PaneFrame) Frame {
		panes := make([]PaneFrame, len(f.Panes))
		for i, p := range f.Panes {
			panes[i] = fn(p)
		}
		f.Panes = panes
		return f
	},
}

func hashSeq(seq iter.Seq[command.Command]) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for c := range seq {
		binary.LittleEndian.PutUint64(buf[:], command.Hash(c))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}
