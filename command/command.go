// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package command

// Kind identifies the variant of a Command.
type Kind uint8

const (
	KindNop              Kind = iota // No operation
	KindClear                        // Solid fill of the whole target
	KindFillRect                     // Solid rectangle
	KindDrawQuad                     // Textured quad
	KindSetClip                      // Set or clear the clip rectangle
	KindBeginPostProcess             // Start of the post-process pass
	KindBatch                        // Ordered group of commands
)

// kindNames maps Kind values to their string representation.
var kindNames = [...]string{
	KindNop:              "Nop",
	KindClear:            "Clear",
	KindFillRect:         "FillRect",
	KindDrawQuad:         "DrawQuad",
	KindSetClip:          "SetClip",
	KindBeginPostProcess: "BeginPostProcess",
	KindBatch:            "Batch",
}

// String returns the string representation of a Kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// QuadMode selects how the fragment stage treats a quad's texture sample.
type QuadMode uint8

const (
	// ModeGlyph tints an alpha-only glyph with the foreground color.
	ModeGlyph QuadMode = iota
	// ModeColorEmoji uses the texture colors as-is.
	ModeColorEmoji
	// ModeBackgroundImage uses the texture colors, blended as a background.
	ModeBackgroundImage
	// ModeSolidColor ignores the texture and fills with the foreground color.
	ModeSolidColor
	// ModeGrayScale tints a grayscale texture with the foreground color.
	ModeGrayScale
)

var quadModeNames = [...]string{
	ModeGlyph:           "Glyph",
	ModeColorEmoji:      "ColorEmoji",
	ModeBackgroundImage: "BackgroundImage",
	ModeSolidColor:      "SolidColor",
	ModeGrayScale:       "GrayScale",
}

// String returns the string representation of a QuadMode.
func (m QuadMode) String() string {
	if int(m) < len(quadModeNames) {
		return quadModeNames[m]
	}
	return "Unknown"
}

// Command is the interface implemented by all render commands.
type Command interface {
	// Kind returns the variant of this command.
	Kind() Kind
}

// Nop is a command that draws nothing. ClipTo produces it for commands
// that fall entirely outside the clip.
type Nop struct{}

// Clear fills the whole target with a solid color.
type Clear struct {
	Color Color
}

// FillRect fills a rectangle with a solid color.
type FillRect struct {
	Depth    int8
	SubLayer uint8
	Rect     Rect
	Color    Color
	Tone     *HSBTransform
}

// AltColor is a secondary color mixed into a quad's foreground.
// Mix is the blend weight in [0, 1]; 0 keeps the foreground.
type AltColor struct {
	Color Color
	Mix   float32
}

// DrawQuad draws a textured quad from the glyph atlas.
type DrawQuad struct {
	Depth    int8
	SubLayer uint8
	Rect     Rect
	Tex      TexCoords
	Fg       Color
	Alt      *AltColor
	Tone     *HSBTransform
	Mode     QuadMode
}

// SetClip restricts subsequent leaves to Rect. A nil Rect clears the clip.
type SetClip struct {
	Rect *Rect
}

// BeginPostProcess marks the start of the post-process pass.
type BeginPostProcess struct{}

// Batch is an ordered sequence of commands. Traversals flatten it.
type Batch []Command

func (Nop) Kind() Kind              { return KindNop }
func (Clear) Kind() Kind            { return KindClear }
func (FillRect) Kind() Kind         { return KindFillRect }
func (DrawQuad) Kind() Kind         { return KindDrawQuad }
func (SetClip) Kind() Kind          { return KindSetClip }
func (BeginPostProcess) Kind() Kind { return KindBeginPostProcess }
func (Batch) Kind() Kind            { return KindBatch }

// IsDrawable reports whether c produces geometry when executed.
func IsDrawable(c Command) bool {
	switch c.(type) {
	case Clear, FillRect, DrawQuad:
		return true
	}
	return false
}
