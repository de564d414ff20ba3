// Package model defines the read-only scene inputs consumed by the geometry
// cache: shapes, placed instances and their visual modifiers.
//
// Values in this package are owned by the scene layer and must not be
// mutated while a frame is being processed. The cache never retains a
// pointer to an Instance beyond the frame that supplied it.
//
// # Coordinate spaces
//
// Shape vertices are in model-local units. An Instance's Orientation is baked
// into tessellated geometry, while its Position is a pure translation applied
// at draw time. Two instances that differ only in Position therefore share
// tessellated output.
package model
