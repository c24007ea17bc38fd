// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package command provides the render command algebra used by cellgrid.
//
// A frame is described as a tree of Command values before any vertex data is
// written. Leaves are fills and textured quads; Batch groups an ordered
// sequence of commands and is flattened by every traversal, so a Batch is
// never itself a drawable unit.
//
// # Coordinates
//
// Every leaf rectangle is expressed in pre-offset screen pixels with the
// origin at the top-left corner of the window. Translation to device space
// happens exactly once, in package execute.
//
// # Depth and sub-layers
//
// Depth buckets commands into independent draw groups. SubLayer separates
// blend behavior within one depth:
//
//	0  backgrounds, selection, block cursor
//	1  glyphs, decorations, images
//	2  overlays (bar and underline cursors, scrollbar thumbs)
//
// # Hashing
//
// AppendBinary produces a deterministic encoding of a command tree and Hash
// folds it through FNV-1a. Equal encodings imply identical executed geometry,
// which is what the line cache relies on.
package command
