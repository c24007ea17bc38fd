// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package execute

// Stats are the counters of one executed frame.
type Stats struct {
	Quads int
	Fills int
	Draws int
	// Overdraw is the area covered by all quads divided by the viewport
	// area.
	Overdraw float64
	Panes    int
	Skipped  int
}

// SkipRate returns the fraction of panes that were skippable.
func (s Stats) SkipRate() float64 {
	if s.Panes == 0 {
		return 0
	}
	return float64(s.Skipped) / float64(s.Panes)
}

// History keeps the stats of the most recent frames in a ring.
type History struct {
	ring []Stats
	next int
	full bool
}

// NewHistory returns a history of size frames.
func NewHistory(size int) *History {
	return &History{ring: make([]Stats, max(size, 1))}
}

// Record appends the stats of a frame, dropping the oldest when full.
func (h *History) Record(s Stats) {
	h.ring[h.next] = s
	h.next++
	if h.next == len(h.ring) {
		h.next = 0
		h.full = true
	}
}

// Len returns the number of recorded frames.
func (h *History) Len() int {
	if h.full {
		return len(h.ring)
	}
	return h.next
}

// Last returns the most recent frame.
func (h *History) Last() (Stats, bool) {
	if h.Len() == 0 {
		return Stats{}, false
	}
	i := h.next - 1
	if i < 0 {
		i = len(h.ring) - 1
	}
	return h.ring[i], true
}

// Frames returns the recorded frames, oldest first.
func (h *History) Frames() []Stats {
	if !h.full {
		return append([]Stats(nil), h.ring[:h.next]...)
	}
	out := make([]Stats, 0, len(h.ring))
	out = append(out, h.ring[h.next:]...)
	return append(out, h.ring[:h.next]...)
}

// Summary returns the mean counters over the recorded frames.
func (h *History) Summary() Summary {
	frames := h.Frames()
	var s Summary
	if len(frames) == 0 {
		return s
	}
	var panes, skipped int
	for _, f := range frames {
		s.Quads += float64(f.Quads)
		s.Fills += float64(f.Fills)
		s.Draws += float64(f.Draws)
		s.Overdraw += f.Overdraw
		panes += f.Panes
		skipped += f.Skipped
	}
	n := float64(len(frames))
	s.Frames = len(frames)
	s.Quads /= n
	s.Fills /= n
	s.Draws /= n
	s.Overdraw /= n
	if panes > 0 {
		s.SkipRate = float64(skipped) / float64(panes)
	}
	return s
}

// Summary holds per-frame means.
type Summary struct {
	Frames   int
	Quads    float64
	Fills    float64
	Draws    float64
	Overdraw float64
	SkipRate float64
}
