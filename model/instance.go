package model

// DeformMode describes how an instance's vertices differ from its shape.
type DeformMode uint8

const (
	// DeformNone renders the shape's rest geometry.
	DeformNone DeformMode = iota
	// DeformPose applies a fixed pose from Shape.Poses. The pose is part of
	// the instance's identity, so posed instances remain cacheable.
	DeformPose
	// DeformSkeletal replaces vertices with a per-frame skinned result.
	// Skeletal instances are never cached.
	DeformSkeletal
)

// String returns the mode name.
func (m DeformMode) String() string {
	switch m {
	case DeformNone:
		return "none"
	case DeformPose:
		return "pose"
	case DeformSkeletal:
		return "skeletal"
	default:
		return "unknown"
	}
}

// Deformation is the animation state of an instance.
type Deformation struct {
	Mode DeformMode

	// Frame indexes Shape.Poses when Mode is DeformPose.
	Frame int32

	// Vertices replaces Shape.Vertices when Mode is DeformSkeletal.
	Vertices []Vertex
}

// ColorSwap replaces every corner color equal to From with To.
type ColorSwap struct {
	From, To HSL
}

// TileBlend blends every corner color towards the color of the tile the
// instance stands on. A zero Weight disables blending.
type TileBlend struct {
	Color  HSL
	Weight uint8
}

// Modifiers are the per-instance visual overrides applied during
// tessellation.
type Modifiers struct {
	Recolor    []ColorSwap
	TileBlend  TileBlend
	TextureSet int16
}

// DefaultModifiers returns modifiers that leave the shape unchanged.
func DefaultModifiers() Modifiers {
	return Modifiers{TextureSet: NoTexture}
}

// Instance is one placed occurrence of a shape in the scene.
type Instance struct {
	Shape       *Shape
	Position    Vertex
	Orientation Orientation
	Modifiers   Modifiers
	Deformation Deformation
}

// NewInstance returns an undeformed, unmodified instance of shape.
func NewInstance(shape *Shape, position Vertex, orientation Orientation) Instance {
	return Instance{
		Shape:       shape,
		Position:    position,
		Orientation: orientation,
		Modifiers:   DefaultModifiers(),
	}
}
