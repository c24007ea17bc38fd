// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package execute

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/gogpu/cellgrid/command"
	"github.com/gogpu/cellgrid/frame"
)

var box = command.TexCoords{Left: 0.1, Top: 0.1, Right: 0.2, Bottom: 0.2}

func newTestExecutor(cfg Config) *Executor {
	e := New(cfg)
	e.SetFilledBox(box)
	return e
}

func fillAt(x, y, w, h float32) command.FillRect {
	return command.FillRect{Rect: command.R(x, y, w, h), Color: command.White}
}

func TestExecuteAppliesOffsetOnce(t *testing.T) {
	e := newTestExecutor(Config{})
	f := &frame.Frame{Background: []command.Command{fillAt(0, 0, 10, 10)}}

	plan, err := e.Execute(f, Viewport{Width: 100, Height: 50})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if plan.Quads() != 1 {
		t.Fatalf("Quads = %d, want 1", plan.Quads())
	}
	v := e.Layers()[0].Subs[0].Vertices()
	if len(v) != 4 {
		t.Fatalf("got %d vertices, want 4", len(v))
	}
	want := [4][2]float32{{-50, -15}, {-40, -15}, {-40, -25}, {-50, -25}}
	for i := range want {
		if v[i].Position != want[i] {
			t.Errorf("vertex %d position = %v, want %v", i, v[i].Position, want[i])
		}
	}
	if v[0].Tex != [2]float32{box.Left, box.Bottom} || v[2].Tex != [2]float32{box.Right, box.Top} {
		t.Errorf("fill should sample the filled box, got %v and %v", v[0].Tex, v[2].Tex)
	}
	if v[0].Mode != float32(command.ModeSolidColor) {
		t.Errorf("Mode = %v, want %v", v[0].Mode, float32(command.ModeSolidColor))
	}
	if v[0].Tone != [3]float32{1, 1, 1} {
		t.Errorf("Tone = %v, want identity", v[0].Tone)
	}
}

func TestExecuteClearCoversViewport(t *testing.T) {
	e := newTestExecutor(Config{})
	f := &frame.Frame{Background: []command.Command{command.Clear{Color: command.Black}}}
	if _, err := e.Execute(f, Viewport{Width: 20, Height: 10}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	v := e.Layers()[0].Subs[0].Vertices()
	if v[0].Position != [2]float32{-10, 5} || v[2].Position != [2]float32{10, -5} {
		t.Errorf("clear corners = %v, %v", v[0].Position, v[2].Position)
	}
}

func TestExecuteClipsPaneRows(t *testing.T) {
	e := newTestExecutor(Config{})
	f := &frame.Frame{
		Panes: []frame.PaneFrame{{
			PaneID:     7,
			Clip:       command.R(0, 0, 10, 10),
			Background: []command.Command{fillAt(0, 0, 20, 20)},
			Rows:       [][]command.Command{{fillAt(5, 5, 10, 10)}, {fillAt(30, 30, 1, 1)}},
		}},
		Chrome: frame.ChromeFrame{Borders: []command.Command{fillAt(15, 15, 1, 1)}},
	}
	plan, err := e.Execute(f, Viewport{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	// Background unclipped, first row clipped, second row dropped, then
	// the border outside any clip.
	if got := e.Layers()[0].Subs[0].Len(); got != 3 {
		t.Fatalf("quads = %d, want 3", got)
	}
	v := e.Layers()[0].Subs[0].Vertices()
	if got := v[4+2].Position; got != [2]float32{10, 5} {
		t.Errorf("clipped top-right = %v, want [10 5]", got)
	}
	if got := v[8+2].Position; got != [2]float32{16, 15} {
		t.Errorf("border top-right = %v, want [16 15]", got)
	}

	sec, ok := plan.Section(7)
	if !ok {
		t.Fatal("missing pane section")
	}
	if sec.Scissor == nil || *sec.Scissor != command.R(0, 0, 10, 10) {
		t.Errorf("Scissor = %v", sec.Scissor)
	}
	if len(sec.Ranges) != 1 || sec.Ranges[0] != (Range{Start: 0, End: 2}) {
		t.Errorf("pane ranges = %v", sec.Ranges)
	}
	if len(plan.Sections) != 3 || plan.Sections[0].Kind != SectionBackground || plan.Sections[2].Kind != SectionChrome {
		t.Errorf("sections = %+v", plan.Sections)
	}
}

func TestExecuteOrdering(t *testing.T) {
	e := newTestExecutor(Config{})
	f := &frame.Frame{Background: []command.Command{
		command.FillRect{Depth: 2, Rect: command.R(0, 0, 1, 1)},
		fillAt(1, 0, 1, 1),
		command.DrawQuad{Rect: command.R(2, 0, 1, 1), SubLayer: 1, Mode: command.ModeGlyph},
		fillAt(3, 0, 1, 1),
		command.FillRect{Depth: -1, Rect: command.R(4, 0, 1, 1)},
	}}
	plan, err := e.Execute(f, Viewport{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	var depths []int8
	for _, l := range plan.Layers {
		depths = append(depths, l.Depth)
	}
	if len(depths) != 3 || depths[0] != -1 || depths[1] != 0 || depths[2] != 2 {
		t.Fatalf("layer depths = %v, want [-1 0 2]", depths)
	}
	v := e.Layers()[1].Subs[0].Vertices()
	if len(v) != 8 || v[0].Position[0] != 1 || v[4].Position[0] != 3 {
		t.Errorf("sub-layer order not preserved: %v", v)
	}
	if n := e.Layers()[1].Subs[1].Len(); n != 1 {
		t.Errorf("glyph sub-layer = %d quads, want 1", n)
	}
	if plan.Stats.Fills != 4 || plan.Stats.Draws != 1 || plan.Stats.Quads != 5 {
		t.Errorf("stats = %+v", plan.Stats)
	}
}

func TestExecuteToneAndAlt(t *testing.T) {
	e := newTestExecutor(Config{})
	tone := command.HSBTransform{Hue: 1, Saturation: 0.5, Brightness: 0.25}
	f := &frame.Frame{Background: []command.Command{command.DrawQuad{
		Rect: command.R(0, 0, 1, 1),
		Fg:   command.White,
		Alt:  &command.AltColor{Color: command.Black, Mix: 0.5},
		Tone: &tone,
		Mode: command.ModeGrayScale,
	}}}
	if _, err := e.Execute(f, Viewport{}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	v := e.Layers()[0].Subs[0].Vertices()[0]
	if v.Tone != [3]float32{1, 0.5, 0.25} || v.Mix != 0.5 {
		t.Errorf("tone/mix = %v/%v", v.Tone, v.Mix)
	}
	if v.Alt[3] != 1 || v.Fg[0] < 0.99 {
		t.Errorf("colors fg=%v alt=%v", v.Fg, v.Alt)
	}
	if v.Mode != float32(command.ModeGrayScale) {
		t.Errorf("Mode = %v", v.Mode)
	}
}

func TestExecuteOverflowAndGrow(t *testing.T) {
	e := newTestExecutor(Config{SubLayerQuads: 2})
	var bg []command.Command
	for i := range 5 {
		bg = append(bg, fillAt(float32(i), 0, 1, 1))
	}
	f := &frame.Frame{Background: bg}

	_, err := e.Execute(f, Viewport{})
	if !errors.Is(err, ErrBufferFull) {
		t.Fatalf("err = %v, want ErrBufferFull", err)
	}
	var full *BufferFullError
	if !errors.As(err, &full) {
		t.Fatalf("err is %T, want *BufferFullError", err)
	}
	want := BufferNeed{Depth: 0, SubLayer: 0, Need: 5, Capacity: 2}
	if len(full.Needs) != 1 || full.Needs[0] != want {
		t.Errorf("Needs = %v, want [%v]", full.Needs, want)
	}
	if n := e.Layers()[0].Subs[0].Len(); n != 2 {
		t.Errorf("written quads = %d, want 2", n)
	}
	// Overflowing quads reuse slot 0, so it holds the last one.
	if x := e.Layers()[0].Subs[0].verts[0].Position[0]; x != 4 {
		t.Errorf("slot 0 x = %v, want 4", x)
	}

	if !e.Grow() {
		t.Fatal("Grow reported no change")
	}
	if c := e.Layers()[0].Subs[0].Capacity(); c != 128 {
		t.Errorf("capacity after Grow = %d, want 128", c)
	}
	if e.Grow() {
		t.Error("second Grow should be a no-op")
	}
	plan, err := e.Execute(f, Viewport{})
	if err != nil {
		t.Fatalf("Execute after Grow: %v", err)
	}
	if plan.Quads() != 5 {
		t.Errorf("Quads = %d, want 5", plan.Quads())
	}
}

func TestRoundUp(t *testing.T) {
	tests := []struct{ n, want int }{{1, 128}, {128, 128}, {129, 256}, {1000, 1024}}
	for _, tt := range tests {
		if got := roundUp(tt.n, growQuantum); got != tt.want {
			t.Errorf("roundUp(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func twoPanes(color command.Color, extra bool) *frame.Frame {
	rows := [][]command.Command{{command.FillRect{Rect: command.R(0, 0, 1, 1), Color: color}}}
	if extra {
		rows = append(rows, []command.Command{fillAt(0, 1, 1, 1)})
	}
	return &frame.Frame{Panes: []frame.PaneFrame{
		{PaneID: 1, Clip: command.R(0, 0, 10, 10), Rows: rows},
		{PaneID: 2, Clip: command.R(10, 0, 10, 10), Rows: [][]command.Command{{fillAt(10, 0, 1, 1)}}},
	}}
}

func TestPlanSkippable(t *testing.T) {
	e := newTestExecutor(Config{})
	vp := Viewport{Width: 20, Height: 10}

	first, err := e.Execute(twoPanes(command.White, false), vp)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range first.Sections {
		if s.Skippable {
			t.Errorf("first plan: section %v pane %d skippable", s.Kind, s.PaneID)
		}
	}

	same, err := e.Execute(twoPanes(command.White, false), vp)
	if err != nil {
		t.Fatal(err)
	}
	if same.Stats.Skipped != 2 || same.Stats.SkipRate() != 1 {
		t.Errorf("unchanged frame: skipped %d of %d", same.Stats.Skipped, same.Stats.Panes)
	}
	if same.Hash != first.Hash {
		t.Error("unchanged frame should keep its hash")
	}

	recolored, err := e.Execute(twoPanes(command.Black, false), vp)
	if err != nil {
		t.Fatal(err)
	}
	p1, _ := recolored.Section(1)
	p2, _ := recolored.Section(2)
	if p1.Skippable || !p2.Skippable {
		t.Errorf("recolored pane 1: skippable = %v, %v; want false, true", p1.Skippable, p2.Skippable)
	}

	// An extra quad in pane 1 shifts pane 2 in the buffer.
	shifted, err := e.Execute(twoPanes(command.Black, true), vp)
	if err != nil {
		t.Fatal(err)
	}
	p2, _ = shifted.Section(2)
	if p2.Skippable {
		t.Error("pane 2 moved in the buffer and must not be skippable")
	}

	resized, err := e.Execute(twoPanes(command.Black, true), Viewport{Width: 30, Height: 10})
	if err != nil {
		t.Fatal(err)
	}
	if resized.Stats.Skipped != 0 {
		t.Errorf("resized viewport: skipped = %d, want 0", resized.Stats.Skipped)
	}
}

func TestPlanDraws(t *testing.T) {
	p := &Plan{Layers: []LayerCounts{
		{Depth: 0, Quads: [SubLayers]int{3, 40000, 0}},
		{Depth: 1, Quads: [SubLayers]int{0, 0, 1}},
	}}
	want := []Draw{
		{Depth: 0, SubLayer: 0, BaseVertex: 0, Quads: 3},
		{Depth: 0, SubLayer: 1, BaseVertex: 0, Quads: MaxQuadsPerDraw},
		{Depth: 0, SubLayer: 1, BaseVertex: MaxQuadsPerDraw * 4, Quads: MaxQuadsPerDraw},
		{Depth: 0, SubLayer: 1, BaseVertex: 2 * MaxQuadsPerDraw * 4, Quads: 40000 - 2*MaxQuadsPerDraw},
		{Depth: 1, SubLayer: 2, BaseVertex: 0, Quads: 1},
	}
	got := p.Draws()
	if len(got) != len(want) {
		t.Fatalf("got %d draws, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("draw %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestIndices(t *testing.T) {
	data := Indices(2)
	want := []uint16{0, 1, 2, 2, 3, 0, 4, 5, 6, 6, 7, 4}
	if len(data) != len(want)*2 {
		t.Fatalf("got %d bytes, want %d", len(data), len(want)*2)
	}
	for i, w := range want {
		if got := binary.LittleEndian.Uint16(data[i*2:]); got != w {
			t.Errorf("index %d = %d, want %d", i, got, w)
		}
	}
	if n := len(Indices(MaxQuadsPerDraw + 10)); n != MaxQuadsPerDraw*12 {
		t.Errorf("Indices should cap at MaxQuadsPerDraw, got %d bytes", n)
	}
}

func TestVertexEncoding(t *testing.T) {
	layout := VertexLayout()
	if len(layout) != 1 || layout[0].ArrayStride != VertexStride {
		t.Fatalf("layout = %+v", layout)
	}
	attrs := layout[0].Attributes
	if last := attrs[len(attrs)-1]; last.Offset+4 != VertexStride {
		t.Errorf("last attribute ends at %d, want %d", last.Offset+4, VertexStride)
	}

	v := Vertex{Position: [2]float32{1.5, -2}, Mix: 0.25, Mode: 3}
	data := EncodeVertices([]Vertex{v, v})
	if len(data) != 2*VertexStride {
		t.Fatalf("encoded %d bytes, want %d", len(data), 2*VertexStride)
	}
	read := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(data[off:])) }
	if read(0) != 1.5 || read(4) != -2 || read(60) != 0.25 || read(64) != 3 {
		t.Errorf("decoded %v %v %v %v", read(0), read(4), read(60), read(64))
	}
	if read(VertexStride) != 1.5 {
		t.Error("second vertex misaligned")
	}
}

func TestExecutorVertices(t *testing.T) {
	e := newTestExecutor(Config{})
	f := &frame.Frame{Background: []command.Command{fillAt(0, 0, 1, 1)}}
	if _, err := e.Execute(f, Viewport{}); err != nil {
		t.Fatal(err)
	}
	if n := len(e.Vertices(0, 0)); n != 4*VertexStride {
		t.Errorf("Vertices(0, 0) = %d bytes, want %d", n, 4*VertexStride)
	}
	if e.Vertices(5, 0) != nil {
		t.Error("unknown depth should have no vertices")
	}
}

func TestHistory(t *testing.T) {
	h := NewHistory(3)
	if _, ok := h.Last(); ok {
		t.Error("empty history has no last frame")
	}
	for i := range 5 {
		h.Record(Stats{Quads: i, Panes: 2, Skipped: i % 2})
	}
	if h.Len() != 3 {
		t.Fatalf("Len = %d, want 3", h.Len())
	}
	frames := h.Frames()
	for i, want := range []int{2, 3, 4} {
		if frames[i].Quads != want {
			t.Errorf("frame %d quads = %d, want %d", i, frames[i].Quads, want)
		}
	}
	if last, _ := h.Last(); last.Quads != 4 {
		t.Errorf("Last = %d, want 4", last.Quads)
	}
	s := h.Summary()
	if s.Frames != 3 || s.Quads != 3 {
		t.Errorf("Summary = %+v", s)
	}
	if got, want := s.SkipRate, 1.0/6; math.Abs(got-want) > 1e-9 {
		t.Errorf("SkipRate = %v, want %v", got, want)
	}
}

func TestBufferFullErrorMessage(t *testing.T) {
	err := &BufferFullError{Needs: []BufferNeed{{Depth: 1, SubLayer: 2, Need: 40, Capacity: 32}}}
	want := "execute: quad buffer is full: depth 1 sub 2 needs 40 (capacity 32)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
