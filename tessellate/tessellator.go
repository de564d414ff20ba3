package tessellate

import (
	"errors"
	"fmt"

	"github.com/gogpu/geocache/model"
)

// Tessellation errors.
var (
	// ErrNilShape is returned for an instance without a shape.
	ErrNilShape = errors.New("tessellate: instance has no shape")

	// ErrEmptyShape is returned for a shape without faces.
	ErrEmptyShape = errors.New("tessellate: shape has no faces")

	// ErrPoseOutOfRange is returned when a posed instance selects a frame
	// the shape does not have, or the pose has the wrong vertex count.
	ErrPoseOutOfRange = errors.New("tessellate: pose frame out of range")

	// ErrVertexCountMismatch is returned when skeletal vertices do not
	// match the shape's vertex count.
	ErrVertexCountMismatch = errors.New("tessellate: deformed vertex count mismatch")
)

// FaceError reports a face that references a vertex outside its shape.
type FaceError struct {
	ShapeID uint64
	Face    int
	Index   int32
}

func (e *FaceError) Error() string {
	return fmt.Sprintf("tessellate: shape %d face %d references vertex %d out of range", e.ShapeID, e.Face, e.Index)
}

// Tessellator converts a model instance into a vertex attribute buffer.
//
// Implementations must be deterministic and free of side effects, and must
// be safe for concurrent use when the frame batcher runs with more than one
// worker.
type Tessellator interface {
	Tessellate(inst *model.Instance) (*Buffer, error)
}

// Func adapts an ordinary function to the Tessellator interface.
type Func func(inst *model.Instance) (*Buffer, error)

// Tessellate calls f(inst).
func (f Func) Tessellate(inst *model.Instance) (*Buffer, error) {
	return f(inst)
}
