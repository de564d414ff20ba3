package main

import (
	"math/rand/v2"

	"github.com/gogpu/geocache/model"
)

const poseFrames = 8

// makeShapes builds n height-field patches of varying resolution. Every
// fourth shape carries walk-cycle poses.
func makeShapes(rng *rand.Rand, n int) []*model.Shape {
	shapes := make([]*model.Shape, n)
	for i := range shapes {
		res := 2 + rng.IntN(14)
		s := patch(uint64(i)+1, res, rng)
		if i%4 == 3 {
			s.Poses = make([][]model.Vertex, poseFrames)
			for f := range s.Poses {
				pose := make([]model.Vertex, len(s.Vertices))
				for v := range pose {
					pose[v].Y = int32((f*7 + v) % 9)
				}
				s.Poses[f] = pose
			}
		}
		shapes[i] = s
	}
	return shapes
}

func patch(id uint64, res int, rng *rand.Rand) *model.Shape {
	const cell = 32
	s := &model.Shape{ID: id}
	for z := 0; z <= res; z++ {
		for x := 0; x <= res; x++ {
			s.Vertices = append(s.Vertices, model.Vertex{
				X: int32(x * cell),
				Y: int32(rng.IntN(24)),
				Z: int32(z * cell),
			})
		}
	}
	base := model.PackHSL(rng.IntN(64), rng.IntN(8), 40+rng.IntN(60))
	stride := int32(res + 1)
	for z := range int32(res) {
		for x := range int32(res) {
			a := z*stride + x
			b, c, d := a+1, a+stride, a+stride+1
			tex := model.NoTexture
			if (x+z)%5 == 0 {
				tex = int16(id % 32)
			}
			s.Faces = append(s.Faces,
				model.Face{A: a, B: c, C: b, ColorA: base, ColorB: base, ColorC: base, Texture: tex},
				model.Face{A: b, B: c, C: d, ColorA: base, ColorB: base, ColorC: base, Texture: tex},
			)
		}
	}
	return s
}

// makeScene scatters n instances over the shapes with a skewed popularity
// so that most frames reuse a small working set.
func makeScene(rng *rand.Rand, shapes []*model.Shape, n int) []model.Instance {
	out := make([]model.Instance, n)
	for i := range out {
		// Squaring the sample favours low shape indices.
		u := rng.Float64()
		shape := shapes[int(u*u*float64(len(shapes)))]
		pos := model.Vertex{X: int32(rng.IntN(104)) * 128, Z: int32(rng.IntN(104)) * 128}
		orient := model.WallOrientation(1 << rng.IntN(4))
		inst := model.NewInstance(shape, pos, orient)

		switch {
		case len(shape.Poses) > 0:
			inst.Deformation = model.Deformation{Mode: model.DeformPose}
		case rng.IntN(10) == 0:
			inst.Modifiers.Recolor = []model.ColorSwap{{From: shape.Faces[0].ColorA, To: model.PackHSL(30, 6, 60)}}
		case rng.IntN(20) == 0:
			inst.Modifiers.TileBlend = model.TileBlend{Color: model.PackHSL(10, 3, 50), Weight: 128}
		}
		out[i] = inst
	}
	return out
}

// animate advances the pose frame of posed instances.
func animate(instances []model.Instance, frame int) {
	for i := range instances {
		inst := &instances[i]
		if inst.Deformation.Mode == model.DeformPose {
			inst.Deformation.Frame = int32((frame + i) % poseFrames)
		}
	}
}
