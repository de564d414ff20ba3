// Package identity derives content keys for model instances.
//
// A Key is a 128-bit hash over a versioned binary encoding of every input
// that influences tessellated output: the shape reference, the normalized
// orientation, the normalized visual modifiers and the deformation state.
// Equal keys mean the instances tessellate to identical buffers, which is
// the invariant the frame batcher and cross-frame cache rely on.
//
// World position is deliberately not part of the key. Tessellated buffers
// are model-local and positioned by a per-draw translation, so instances of
// the same prop at different places share one cache entry.
//
// Instances whose geometry changes every frame (skeletal animation) resolve
// to NotCacheable and bypass both cache layers.
package identity
