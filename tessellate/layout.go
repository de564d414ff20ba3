package tessellate

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
)

// ShaderSource is the WGSL program that consumes tessellated buffers.
//
//go:embed shaders/model.wgsl
var ShaderSource string

// Shader entry points.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// Attribute byte offsets within one vertex.
const (
	positionOffset = 0
	normalOffset   = 16
	uvOffset       = 32
	colorOffset    = 40
)

// VertexLayout returns the vertex buffer layout of tessellated buffers.
func VertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: VertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x4, Offset: positionOffset, ShaderLocation: 0}, // position
				{Format: gputypes.VertexFormatFloat32x4, Offset: normalOffset, ShaderLocation: 1},   // normal + texture
				{Format: gputypes.VertexFormatFloat32x2, Offset: uvOffset, ShaderLocation: 2},       // uv
				{Format: gputypes.VertexFormatFloat32x4, Offset: colorOffset, ShaderLocation: 3},    // color
			},
		},
	}
}

// CompileShader compiles ShaderSource to SPIR-V.
func CompileShader() ([]byte, error) {
	spirv, err := naga.Compile(ShaderSource)
	if err != nil {
		return nil, fmt.Errorf("tessellate: compile model shader: %w", err)
	}
	return spirv, nil
}
