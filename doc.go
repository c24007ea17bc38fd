// Package cellgrid is the rendering core of a GPU terminal emulator.
//
// # Overview
//
// cellgrid turns the state of a terminal window (panes of styled cells,
// a cursor, a selection, splits, a tab bar and modal overlays) into
// filled vertex buffers ready for upload. It does not open a device or
// run shaders; a backend draws the buffers described by the returned
// plan.
//
// # Quick Start
//
//	glyphs, err := cellgrid.DefaultConfig().NewGlyphCache()
//	if err != nil {
//	    return err
//	}
//	r, err := cellgrid.New(glyphs)
//	if err != nil {
//	    return err
//	}
//	res, err := r.Paint(win, time.Now())
//	if err != nil {
//	    return err // always wraps cellgrid.ErrFatal
//	}
//	for _, d := range res.Plan.Draws() {
//	    // upload r.Executor().Vertices(d.Depth, d.SubLayer) and draw
//	}
//
// # Architecture
//
// A frame flows through the packages in order:
//   - grid: the cell model shared with the terminal
//   - atlas: glyph, sprite, polygon and image rasterization into one texture
//   - shape: clusters a row and resolves its glyphs
//   - line: describes one shaped row as render commands
//   - element: describes boxed UI element trees such as the fancy tab bar
//   - describe: describes a whole window, caching rows in linecache
//   - frame: the described window, with hit regions
//   - execute: writes the frame into layered quad buffers
//
// Render commands (package command) are plain values; describing a frame
// never touches the vertex buffers.
//
// # Retries
//
// Three conditions abort a pass and are repaired before the next one:
// the atlas is full, the font changed underneath a shaped row, or a quad
// buffer is too small. Paint repairs them and retries up to
// Config.MaxPasses times. Any other error is returned immediately,
// wrapped in ErrFatal.
//
// # Logging
//
// cellgrid is silent by default. See SetLogger.
package cellgrid
