// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package command

import (
	"encoding/binary"
	"hash/fnv"
	"math"
)

// AppendBinary appends a deterministic encoding of c to dst.
// Floats are encoded by their IEEE-754 bits, so -0 and +0 differ and two
// commands encode equally only if they execute identically.
func AppendBinary(dst []byte, c Command) []byte {
	if c == nil {
		return append(dst, byte(KindNop))
	}
	dst = append(dst, byte(c.Kind()))
	switch v := c.(type) {
	case Clear:
		dst = appendColor(dst, v.Color)
	case FillRect:
		dst = append(dst, byte(v.Depth), v.SubLayer)
		dst = appendRect(dst, v.Rect)
		dst = appendColor(dst, v.Color)
		dst = appendTone(dst, v.Tone)
	case DrawQuad:
		dst = append(dst, byte(v.Depth), v.SubLayer, byte(v.Mode))
		dst = appendRect(dst, v.Rect)
		dst = appendFloats(dst, v.Tex.Left, v.Tex.Top, v.Tex.Right, v.Tex.Bottom)
		dst = appendColor(dst, v.Fg)
		if v.Alt != nil {
			dst = append(dst, 1)
			dst = appendColor(dst, v.Alt.Color)
			dst = appendFloats(dst, v.Alt.Mix)
		} else {
			dst = append(dst, 0)
		}
		dst = appendTone(dst, v.Tone)
	case SetClip:
		if v.Rect != nil {
			dst = append(dst, 1)
			dst = appendRect(dst, *v.Rect)
		} else {
			dst = append(dst, 0)
		}
	case Batch:
		dst = binary.LittleEndian.AppendUint32(dst, uint32(len(v))) //nolint:gosec // batch sizes are far below 2^32
		for _, child := range v {
			dst = AppendBinary(dst, child)
		}
	}
	return dst
}

// Hash returns the FNV-1a hash of the encoding of c.
func Hash(c Command) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(AppendBinary(nil, c)) // fnv.Write never returns an error
	return h.Sum64()
}

// HashAll hashes a command sequence as if it were one Batch.
func HashAll(cmds []Command) uint64 {
	return Hash(Batch(cmds))
}

func appendRect(dst []byte, r Rect) []byte {
	return appendFloats(dst, r.X, r.Y, r.W, r.H)
}

func appendColor(dst []byte, c Color) []byte {
	return appendFloats(dst, c.R, c.G, c.B, c.A)
}

func appendTone(dst []byte, t *HSBTransform) []byte {
	if t == nil {
		return append(dst, 0)
	}
	dst = append(dst, 1)
	return appendFloats(dst, t.Hue, t.Saturation, t.Brightness)
}

func appendFloats(dst []byte, fs ...float32) []byte {
	for _, f := range fs {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
	}
	return dst
}
