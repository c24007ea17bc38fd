// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package execute

import (
	"iter"
	"slices"

	"github.com/gogpu/cellgrid/command"
	"github.com/gogpu/cellgrid/frame"
)

// Config holds the initial buffer capacities, in quads.
type Config struct {
	// ContentQuads sizes the glyph sub-layer at depth 0.
	ContentQuads int `mapstructure:"content_quads" yaml:"content_quads"`
	// LayerQuads sizes the glyph sub-layer at other depths.
	LayerQuads int `mapstructure:"layer_quads" yaml:"layer_quads"`
	// SubLayerQuads sizes the background and overlay sub-layers.
	SubLayerQuads int `mapstructure:"sub_layer_quads" yaml:"sub_layer_quads"`
	// HistorySize is the number of frames kept in the history.
	HistorySize int `mapstructure:"history_size" yaml:"history_size"`
}

// DefaultConfig returns the default capacities.
func DefaultConfig() Config {
	return Config{
		ContentQuads:  1024,
		LayerQuads:    128,
		SubLayerQuads: 32,
		HistorySize:   120,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ContentQuads <= 0 {
		c.ContentQuads = d.ContentQuads
	}
	if c.LayerQuads <= 0 {
		c.LayerQuads = d.LayerQuads
	}
	if c.SubLayerQuads <= 0 {
		c.SubLayerQuads = d.SubLayerQuads
	}
	if c.HistorySize <= 0 {
		c.HistorySize = d.HistorySize
	}
	return c
}

// Viewport is the size of the render target in pixels.
type Viewport struct {
	Width, Height float32
}

// Executor owns the layered quad buffers. It is not safe for concurrent
// use.
type Executor struct {
	cfg     Config
	layers  []*Layer // sorted by depth
	filled  command.TexCoords
	prev    *Plan
	history *History
}

// New creates an Executor. Zero capacities select the defaults.
func New(cfg Config) *Executor {
	cfg = cfg.withDefaults()
	e := &Executor{cfg: cfg, history: NewHistory(cfg.HistorySize)}
	e.layer(0)
	return e
}

// SetFilledBox sets the atlas coordinates sampled by solid fills. It must
// be refreshed whenever the atlas is recreated.
func (e *Executor) SetFilledBox(t command.TexCoords) { e.filled = t }

// Layers returns the layers in draw order.
func (e *Executor) Layers() []*Layer { return e.layers }

// History returns the per-frame statistics.
func (e *Executor) History() *History { return e.history }

// layer returns the layer for depth, creating it on first use.
func (e *Executor) layer(depth int8) *Layer {
	i, ok := slices.BinarySearchFunc(e.layers, depth, func(l *Layer, d int8) int {
		return int(l.Depth) - int(d)
	})
	if ok {
		return e.layers[i]
	}
	l := newLayer(depth, e.cfg)
	e.layers = slices.Insert(e.layers, i, l)
	return l
}

// Grow reallocates every buffer that overflowed during the last pass and
// reports whether any did.
func (e *Executor) Grow() bool {
	grown := false
	for _, l := range e.layers {
		for _, b := range l.Subs {
			if b.Grow() {
				grown = true
			}
		}
	}
	// Ranges of the previous plan no longer match the new buffers.
	if grown {
		e.prev = nil
	}
	return grown
}

// Execute writes f into the buffers and returns its draw plan. If a
// buffer overflowed it returns a *BufferFullError instead.
func (e *Executor) Execute(f *frame.Frame, vp Viewport) (*Plan, error) {
	for _, l := range e.layers {
		l.reset()
	}

	w := &writer{e: e, vp: vp, dx: vp.Width / 2, dy: vp.Height / 2}
	plan := &Plan{Viewport: vp, PostProcess: f.PostProcess}

	w.section(plan, Section{Kind: SectionBackground}, command.Leaves(f.Background...))
	for i := range f.Panes {
		p := &f.Panes[i]
		hash := p.ContentHash
		if hash == 0 {
			hash = p.Hash()
		}
		scissor := p.Clip
		w.section(plan, Section{
			Kind:    SectionPane,
			PaneID:  p.PaneID,
			Scissor: &scissor,
			Hash:    hash,
		}, p.Leaves())
	}
	w.section(plan, Section{Kind: SectionChrome}, f.Chrome.Leaves())

	if err := e.overflow(); err != nil {
		return nil, err
	}

	plan.Hash = f.ContentHash()
	plan.markSkippable(e.prev)
	for _, l := range e.layers {
		var counts [SubLayers]int
		for i, b := range l.Subs {
			counts[i] = b.Len()
		}
		plan.Layers = append(plan.Layers, LayerCounts{Depth: l.Depth, Quads: counts})
	}
	plan.Stats = w.stats(plan)

	e.prev = plan
	e.history.Record(plan.Stats)
	return plan, nil
}

func (e *Executor) overflow() error {
	var needs []BufferNeed
	for _, l := range e.layers {
		for i, b := range l.Subs {
			if b.Overflowed() {
				needs = append(needs, BufferNeed{
					Depth:    l.Depth,
					SubLayer: uint8(i), //nolint:gosec // i < SubLayers
					Need:     b.Need(),
					Capacity: b.Capacity(),
				})
			}
		}
	}
	if len(needs) == 0 {
		return nil
	}
	return &BufferFullError{Needs: needs}
}

// writer carries the state of one pass.
type writer struct {
	e      *Executor
	vp     Viewport
	dx, dy float32
	clip   *command.Rect

	fills, draws int
	area         float64
}

type bufferKey struct {
	depth int8
	sub   int
}

func (w *writer) lens() map[bufferKey]int {
	m := make(map[bufferKey]int, len(w.e.layers)*SubLayers)
	for _, l := range w.e.layers {
		for i, b := range l.Subs {
			m[bufferKey{l.Depth, i}] = b.Len()
		}
	}
	return m
}

// section writes leaves and records the quad ranges they produced.
func (w *writer) section(plan *Plan, s Section, leaves iter.Seq[command.Command]) {
	before := w.lens()
	w.clip = nil
	for c := range leaves {
		w.leaf(c)
	}
	w.clip = nil
	for _, l := range w.e.layers {
		for i, b := range l.Subs {
			start := before[bufferKey{l.Depth, i}]
			if b.Len() > start {
				s.Ranges = append(s.Ranges, Range{
					Depth:    l.Depth,
					SubLayer: uint8(i), //nolint:gosec // i < SubLayers
					Start:    start,
					End:      b.Len(),
				})
			}
		}
	}
	plan.Sections = append(plan.Sections, s)
}

func (w *writer) leaf(c command.Command) {
	switch v := c.(type) {
	case command.SetClip:
		if v.Rect == nil {
			w.clip = nil
		} else {
			r := *v.Rect
			w.clip = &r
		}
		return
	case command.Nop, command.BeginPostProcess:
		return
	}

	if w.clip != nil {
		c = command.ClipTo(c, *w.clip)
	}
	switch v := c.(type) {
	case command.Clear:
		w.fill(0, 0, command.R(0, 0, w.vp.Width, w.vp.Height), v.Color, nil)
	case command.FillRect:
		w.fill(v.Depth, v.SubLayer, v.Rect, v.Color, v.Tone)
	case command.DrawQuad:
		w.quad(v)
	}
}

func (w *writer) fill(depth int8, sub uint8, r command.Rect, color command.Color, tone *command.HSBTransform) {
	w.fills++
	w.write(depth, sub, r, w.e.filled, color, nil, tone, command.ModeSolidColor)
}

func (w *writer) quad(q command.DrawQuad) {
	w.draws++
	w.write(q.Depth, q.SubLayer, q.Rect, q.Tex, q.Fg, q.Alt, q.Tone, q.Mode)
}

// write emits one quad as bottom-left, bottom-right, top-right, top-left.
func (w *writer) write(depth int8, sub uint8, r command.Rect, tex command.TexCoords, fg command.Color, alt *command.AltColor, tone *command.HSBTransform, mode command.QuadMode) {
	if r.Empty() {
		return
	}
	w.area += float64(r.W) * float64(r.H)

	buf := w.e.layer(depth).Subs[min(int(sub), SubLayers-1)]
	v := buf.Allocate()

	x0, y0 := r.X-w.dx, r.Y-w.dy
	x1, y1 := r.Right()-w.dx, r.Bottom()-w.dy
	corners := [4][4]float32{
		{x0, y1, tex.Left, tex.Bottom},
		{x1, y1, tex.Right, tex.Bottom},
		{x1, y0, tex.Right, tex.Top},
		{x0, y0, tex.Left, tex.Top},
	}

	base := Vertex{
		Fg:   rgba(fg.Linear()),
		Tone: [3]float32{1, 1, 1},
		Mode: float32(mode),
	}
	if alt != nil {
		base.Alt = rgba(alt.Color.Linear())
		base.Mix = alt.Mix
	}
	if tone != nil {
		base.Tone = [3]float32{tone.Hue, tone.Saturation, tone.Brightness}
	}
	for i, c := range corners {
		v[i] = base
		v[i].Position = [2]float32{c[0], c[1]}
		v[i].Tex = [2]float32{c[2], c[3]}
	}
}

func rgba(c command.Color) [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

func (w *writer) stats(plan *Plan) Stats {
	s := Stats{Fills: w.fills, Draws: w.draws}
	for _, l := range plan.Layers {
		for _, n := range l.Quads {
			s.Quads += n
		}
	}
	if a := float64(w.vp.Width) * float64(w.vp.Height); a > 0 {
		s.Overdraw = w.area / a
	}
	for _, sec := range plan.Sections {
		if sec.Kind != SectionPane {
			continue
		}
		s.Panes++
		if sec.Skippable {
			s.Skipped++
		}
	}
	return s
}
