// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package atlas owns the glyph texture atlas and the glyph cache that
// populates it.
//
// GlyphCache is the resolver capability used while describing a frame.
// It rasterizes grapheme clusters with the Go Mono faces, cell-sized
// utility sprites (underlines, strikethrough, cursor shapes), vector
// outlines for chrome buttons, and inline images. Results are memoized,
// so resolving the same key twice returns the same texture coordinates
// until the atlas is recreated.
//
// When the atlas runs out of space every resolve method returns an
// *ExhaustedError carrying a size hint. The caller abandons the frame,
// calls Recreate and describes again.
package atlas
