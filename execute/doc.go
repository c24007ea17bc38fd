// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package execute writes a described frame into CPU-side vertex buffers.
//
// Buffers are grouped into layers keyed by depth and drawn in ascending
// depth order. Each layer has three sub-layers, drawn in order:
//
//	0  backgrounds and block cursors
//	1  glyphs and images
//	2  underline, bar and hollow cursors, scrollbar thumb
//
// Quads are written in the order their commands are visited; nothing is
// reordered within a sub-layer. Screen coordinates are translated to
// device coordinates here and nowhere else.
//
// # Overflow
//
// Buffers never grow during a pass. When a sub-layer runs out of room the
// extra quads overwrite slot 0 and the executor records how many it
// needed. Execute then returns a *BufferFullError; the caller calls Grow
// and describes the frame again.
package execute
