package shape

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"
)

// ligatures finds cell runs that HarfBuzz shapes into a single cluster.
// Cluster boundaries do not depend on the size, so shaping runs at a
// fixed nominal size.
type ligatures struct {
	font *font.Font
	pool sync.Pool
}

func newLigatures() (*ligatures, error) {
	face, err := font.ParseTTF(bytes.NewReader(gomono.TTF))
	if err != nil {
		return nil, fmt.Errorf("shape: parse ligature font: %w", err)
	}
	return &ligatures{
		font: face.Font,
		pool: sync.Pool{New: func() any { return &shaping.HarfbuzzShaper{} }},
	}, nil
}

// merge combines consecutive segments whose runes land in the same
// HarfBuzz cluster.
func (l *ligatures) merge(segs []segment) []segment {
	var runes []rune
	owner := make([]int, 0, len(segs)) // rune index -> segment index
	for i, s := range segs {
		for _, r := range s.text {
			runes = append(runes, r)
			owner = append(owner, i)
		}
	}
	if len(runes) == 0 {
		return segs
	}

	script := language.Latin
	for _, r := range runes {
		if r != ' ' {
			script = language.LookupScript(r)
			break
		}
	}
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      font.NewFace(l.font),
		Size:      fixed.I(16),
		Script:    script,
		Language:  language.NewLanguage("en"),
	}
	hb := l.pool.Get().(*shaping.HarfbuzzShaper)
	out := hb.Shape(input)
	l.pool.Put(hb)

	// A segment starts a new glyph only if some cluster begins in it.
	starts := make(map[int]bool, len(out.Glyphs))
	for _, g := range out.Glyphs {
		idx := g.TextIndex()
		if idx >= 0 && idx < len(owner) {
			starts[owner[idx]] = true
		}
	}
	starts[0] = true
	if len(starts) == len(segs) {
		return segs
	}

	keys := make([]int, 0, len(starts))
	for k := range starts {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	merged := make([]segment, 0, len(keys))
	for i, from := range keys {
		to := len(segs)
		if i+1 < len(keys) {
			to = keys[i+1]
		}
		var text strings.Builder
		for _, s := range segs[from:to] {
			text.WriteString(s.text)
		}
		last := segs[to-1]
		merged = append(merged, segment{
			text:   text.String(),
			column: segs[from].column,
			cells:  last.column + last.cells - segs[from].column,
		})
	}
	return merged
}
