package model

// NoTexture marks a face or modifier without a texture assignment.
const NoTexture int16 = -1

// Vertex is a model-local vertex position (or a pose offset).
type Vertex struct {
	X, Y, Z int32
}

// Add returns the component-wise sum of v and o.
func (v Vertex) Add(o Vertex) Vertex {
	return Vertex{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Face is a triangle referencing three vertices of its shape.
// Each corner carries its own packed HSL color so that smooth shading
// survives recoloring.
type Face struct {
	A, B, C                int32
	ColorA, ColorB, ColorC HSL
	Texture                int16
}

// Shape is the raw geometry of a model as loaded by the scene layer.
//
// ID identifies the shape within the current scene. IDs are only stable
// for the lifetime of one scene: after a reload the same ID may describe
// different geometry.
type Shape struct {
	ID       uint64
	Vertices []Vertex
	Faces    []Face

	// Poses holds per-frame vertex offsets for statically posed models.
	// Poses[f] must be empty or have exactly len(Vertices) entries.
	Poses [][]Vertex
}

// VertexCount returns the number of vertices in the shape.
func (s *Shape) VertexCount() int {
	if s == nil {
		return 0
	}
	return len(s.Vertices)
}

// FaceCount returns the number of faces in the shape.
func (s *Shape) FaceCount() int {
	if s == nil {
		return 0
	}
	return len(s.Faces)
}
