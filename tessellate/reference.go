package tessellate

import (
	"encoding/binary"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/gogpu/geocache/model"
)

// uvScale converts model-local units into texture coordinates.
// One texture repeat spans a 128 unit tile.
const uvScale = 1.0 / 128

// upAxis is the axis orientations rotate about.
var upAxis = r3.Vec{Y: 1}

// Reference is the in-tree CPU tessellator.
//
// It emits three vertices per face with a flat face normal, applies color
// swaps and tile blending per corner and bakes the normalized orientation
// into positions and normals. World position is never applied.
//
// Reference is stateless and safe for concurrent use.
type Reference struct{}

// Tessellate implements Tessellator.
func (Reference) Tessellate(inst *model.Instance) (*Buffer, error) {
	if inst == nil || inst.Shape == nil {
		return nil, ErrNilShape
	}
	shape := inst.Shape
	if len(shape.Faces) == 0 {
		return nil, ErrEmptyShape
	}

	verts, err := deformedVertices(inst)
	if err != nil {
		return nil, err
	}

	rot := r3.NewRotation(inst.Orientation.Radians(), upAxis)
	mods := &inst.Modifiers

	vertexCount := len(shape.Faces) * 3
	data := make([]byte, vertexCount*VertexStride)
	off := 0

	for i := range shape.Faces {
		f := &shape.Faces[i]
		idx := [3]int32{f.A, f.B, f.C}
		var local, pos [3]r3.Vec
		for c, vi := range idx {
			if vi < 0 || int(vi) >= len(verts) {
				return nil, &FaceError{ShapeID: shape.ID, Face: i, Index: vi}
			}
			v := verts[vi]
			local[c] = r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
			pos[c] = rot.Rotate(local[c])
		}

		normal := r3.Cross(r3.Sub(pos[1], pos[0]), r3.Sub(pos[2], pos[0]))
		if n := r3.Norm(normal); n > 0 {
			normal = r3.Scale(1/n, normal)
		}

		tex := f.Texture
		if tex != model.NoTexture && mods.TextureSet != model.NoTexture {
			tex = mods.TextureSet
		}

		colors := [3]model.HSL{f.ColorA, f.ColorB, f.ColorC}
		for c := range idx {
			color := applyModifiers(colors[c], mods)
			r, g, b := color.RGB()

			off = putVec4(data, off, pos[c], 1)
			off = putVec4(data, off, normal, float32(tex))
			off = putFloat(data, off, float32(local[c].X*uvScale))
			off = putFloat(data, off, float32(local[c].Z*uvScale))
			off = putFloat(data, off, r)
			off = putFloat(data, off, g)
			off = putFloat(data, off, b)
			off = putFloat(data, off, 1)
		}
	}

	return &Buffer{Data: data, VertexCount: vertexCount}, nil
}

// deformedVertices returns the vertex positions the instance is drawn with.
func deformedVertices(inst *model.Instance) ([]model.Vertex, error) {
	shape := inst.Shape
	def := &inst.Deformation
	switch def.Mode {
	case model.DeformPose:
		if def.Frame < 0 || int(def.Frame) >= len(shape.Poses) {
			return nil, ErrPoseOutOfRange
		}
		pose := shape.Poses[def.Frame]
		if len(pose) == 0 {
			return shape.Vertices, nil
		}
		if len(pose) != len(shape.Vertices) {
			return nil, ErrPoseOutOfRange
		}
		out := make([]model.Vertex, len(pose))
		for i := range pose {
			out[i] = shape.Vertices[i].Add(pose[i])
		}
		return out, nil
	case model.DeformSkeletal:
		if len(def.Vertices) != len(shape.Vertices) {
			return nil, ErrVertexCountMismatch
		}
		return def.Vertices, nil
	default:
		return shape.Vertices, nil
	}
}

// applyModifiers returns the corner color after color swaps and tile blending.
func applyModifiers(c model.HSL, mods *model.Modifiers) model.HSL {
	for _, swap := range mods.Recolor {
		if swap.From == c {
			c = swap.To
			break
		}
	}
	return model.BlendHSL(c, mods.TileBlend.Color, mods.TileBlend.Weight)
}

func putVec4(dst []byte, off int, v r3.Vec, w float32) int {
	off = putFloat(dst, off, float32(v.X))
	off = putFloat(dst, off, float32(v.Y))
	off = putFloat(dst, off, float32(v.Z))
	return putFloat(dst, off, w)
}

func putFloat(dst []byte, off int, f float32) int {
	binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(f))
	return off + 4
}

// ReadVertex decodes the position, normal, uv and color of vertex i.
// It is intended for tests and debugging tools.
func ReadVertex(b *Buffer, i int) (pos, normal [4]float32, uv [2]float32, color [4]float32) {
	off := i * VertexStride
	read := func() float32 {
		f := math.Float32frombits(binary.LittleEndian.Uint32(b.Data[off:]))
		off += 4
		return f
	}
	for c := range pos {
		pos[c] = read()
	}
	for c := range normal {
		normal[c] = read()
	}
	for c := range uv {
		uv[c] = read()
	}
	for c := range color {
		color[c] = read()
	}
	return pos, normal, uv, color
}
