// Package tessellate defines the contract between the geometry cache and
// the CPU routine that turns a model instance into a vertex attribute
// buffer, and provides the reference implementation of that routine.
//
// A Tessellator must be a deterministic, side-effect free function of the
// instance's shape, orientation, modifiers and deformation. The cache relies
// on this: two instances with equal identity keys are assumed to tessellate
// to byte-identical buffers, and only the first one is ever tessellated.
//
// # Vertex layout
//
// Buffers are interleaved, one vertex per triangle corner (no index buffer),
// 56 bytes per vertex:
//
//	offset  0  float32x4  position (x, y, z, 1), model-local, rotation baked in
//	offset 16  float32x4  face normal (x, y, z), w = texture id (-1 untextured)
//	offset 32  float32x2  planar texture coordinates
//	offset 40  float32x4  sRGB color (r, g, b, a)
//
// See VertexLayout for the matching gputypes description and ShaderSource
// for the WGSL program that consumes it.
package tessellate
