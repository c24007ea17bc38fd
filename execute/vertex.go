// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package execute

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
)

// VertexStride is the size of one encoded Vertex in bytes.
//
// Layout:
//
//	offset  0: position   (vec2<f32>)
//	offset  8: tex_coord  (vec2<f32>)
//	offset 16: fg         (vec4<f32>)
//	offset 32: alt        (vec4<f32>)
//	offset 48: tone, mix  (vec4<f32>)
//	offset 64: mode       (f32)
const VertexStride = 68

// VertexBufferUsage is the usage of the vertex buffers the encoded
// vertices are uploaded to.
const VertexBufferUsage = gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst

// VertexLayout returns the vertex buffer layout matching Vertices.
func VertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: VertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},  // tex_coord
				{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2}, // fg
				{Format: gputypes.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 3}, // alt
				{Format: gputypes.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 4}, // tone, mix
				{Format: gputypes.VertexFormatFloat32, Offset: 64, ShaderLocation: 5},   // mode
			},
		},
	}
}

// BlendStates returns the blend state of each sub-layer. The fragment
// stage outputs premultiplied alpha in every sub-layer.
func BlendStates() [SubLayers]gputypes.BlendState {
	premulBlend := gputypes.BlendStatePremultiplied()
	return [SubLayers]gputypes.BlendState{premulBlend, premulBlend, premulBlend}
}

// Vertices encodes the vertices of one sub-layer for upload.
func (e *Executor) Vertices(depth int8, sub uint8) []byte {
	for _, l := range e.layers {
		if l.Depth == depth && int(sub) < SubLayers {
			return EncodeVertices(l.Subs[sub].Vertices())
		}
	}
	return nil
}

// EncodeVertices serializes vertices in little-endian order.
func EncodeVertices(verts []Vertex) []byte {
	data := make([]byte, len(verts)*VertexStride)
	for i := range verts {
		writeVertex(data[i*VertexStride:], &verts[i])
	}
	return data
}

func writeVertex(buf []byte, v *Vertex) {
	fs := [17]float32{
		v.Position[0], v.Position[1],
		v.Tex[0], v.Tex[1],
		v.Fg[0], v.Fg[1], v.Fg[2], v.Fg[3],
		v.Alt[0], v.Alt[1], v.Alt[2], v.Alt[3],
		v.Tone[0], v.Tone[1], v.Tone[2], v.Mix,
		v.Mode,
	}
	for i, f := range fs {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(f))
	}
}

// generateQuadIndices returns two triangles per quad: 0, 1, 2 and 2, 3, 0.
func generateQuadIndices(numQuads int) []uint16 {
	indices := make([]uint16, numQuads*6)
	for i := 0; i < numQuads; i++ {
		base := i * 6
		vertex := uint16(i * 4) //nolint:gosec // numQuads is bounded by MaxQuadsPerDraw

		indices[base+0] = vertex + 0
		indices[base+1] = vertex + 1
		indices[base+2] = vertex + 2

		indices[base+3] = vertex + 2
		indices[base+4] = vertex + 3
		indices[base+5] = vertex + 0
	}
	return indices
}

// Indices serializes the index data for numQuads quads, at most
// MaxQuadsPerDraw. One index buffer serves every draw with a base vertex.
func Indices(numQuads int) []byte {
	indices := generateQuadIndices(min(max(numQuads, 0), MaxQuadsPerDraw))
	data := make([]byte, len(indices)*2)
	for i, idx := range indices {
		binary.LittleEndian.PutUint16(data[i*2:], idx)
	}
	return data
}
