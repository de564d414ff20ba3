package identity

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/geocache/model"
	"github.com/gogpu/geocache/tessellate"
)

func testShape(id uint64) *model.Shape {
	c := model.PackHSL(20, 3, 70)
	return &model.Shape{
		ID:       id,
		Vertices: []model.Vertex{{X: 0}, {X: 64}, {Z: 64}, {X: 64, Z: 64}},
		Faces: []model.Face{
			{A: 0, B: 1, C: 2, ColorA: c, ColorB: c, ColorC: c, Texture: model.NoTexture},
			{A: 1, B: 3, C: 2, ColorA: c, ColorB: c, ColorC: c, Texture: 4},
		},
		Poses: [][]model.Vertex{{{Y: 4}, {Y: 4}, {Y: 4}, {Y: 4}}, {{Y: 8}, {Y: 8}, {Y: 8}, {Y: 8}}},
	}
}

func mustKey(t *testing.T, r *Resolver, inst model.Instance) Key {
	t.Helper()
	k, ok := r.Resolve(&inst).Key()
	require.True(t, ok, "expected cacheable identity")
	return k
}

// =============================================================================
// Stability
// =============================================================================

func TestResolve_Stable(t *testing.T) {
	r := NewResolver()
	shape := testShape(1)

	a := model.NewInstance(shape, model.Vertex{}, 512)
	b := model.NewInstance(shape, model.Vertex{}, 512)
	assert.Equal(t, mustKey(t, r, a), mustKey(t, r, b))

	// A different resolver yields the same key.
	assert.Equal(t, mustKey(t, r, a), mustKey(t, NewResolver(), a))

	// Same content behind a different shape pointer.
	c := model.NewInstance(testShape(1), model.Vertex{}, 512)
	assert.Equal(t, mustKey(t, r, a), mustKey(t, r, c))
}

func TestResolve_PositionExcluded(t *testing.T) {
	r := NewResolver()
	shape := testShape(1)
	a := model.NewInstance(shape, model.Vertex{X: 10}, 0)
	b := model.NewInstance(shape, model.Vertex{X: 9000, Y: 3, Z: -40}, 0)
	assert.Equal(t, mustKey(t, r, a), mustKey(t, r, b))
}

func TestResolve_OrientationNormalized(t *testing.T) {
	r := NewResolver()
	shape := testShape(1)
	assert.Equal(t,
		mustKey(t, r, model.NewInstance(shape, model.Vertex{}, 100)),
		mustKey(t, r, model.NewInstance(shape, model.Vertex{}, 100+model.OrientationSteps)))
	assert.Equal(t,
		mustKey(t, r, model.NewInstance(shape, model.Vertex{}, -1)),
		mustKey(t, r, model.NewInstance(shape, model.Vertex{}, 2047)))
}

func TestResolve_ModifiersNormalized(t *testing.T) {
	r := NewResolver()
	shape := testShape(1)
	c := model.PackHSL(20, 3, 70)
	base := mustKey(t, r, model.NewInstance(shape, model.Vertex{}, 0))

	noopSwap := model.NewInstance(shape, model.Vertex{}, 0)
	noopSwap.Modifiers.Recolor = []model.ColorSwap{{From: c, To: c}}
	assert.Equal(t, base, mustKey(t, r, noopSwap))

	zeroBlend := model.NewInstance(shape, model.Vertex{}, 0)
	zeroBlend.Modifiers.TileBlend = model.TileBlend{Color: model.PackHSL(1, 1, 1), Weight: 0}
	assert.Equal(t, base, mustKey(t, r, zeroBlend))

	shadowed := model.NewInstance(shape, model.Vertex{}, 0)
	shadowed.Modifiers.Recolor = []model.ColorSwap{{From: c, To: 5}, {From: c, To: 9}}
	single := model.NewInstance(shape, model.Vertex{}, 0)
	single.Modifiers.Recolor = []model.ColorSwap{{From: c, To: 5}}
	assert.Equal(t, mustKey(t, r, single), mustKey(t, r, shadowed))
}

// =============================================================================
// Discrimination
// =============================================================================

func TestResolve_Distinguishes(t *testing.T) {
	r := NewResolver()
	shape := testShape(1)
	base := model.NewInstance(shape, model.Vertex{}, 0)

	variants := map[string]func(*model.Instance){
		"shape id":    func(i *model.Instance) { i.Shape = testShape(2) },
		"orientation": func(i *model.Instance) { i.Orientation = 1 },
		"recolor": func(i *model.Instance) {
			i.Modifiers.Recolor = []model.ColorSwap{{From: model.PackHSL(20, 3, 70), To: 7}}
		},
		"tile blend":  func(i *model.Instance) { i.Modifiers.TileBlend = model.TileBlend{Color: 3, Weight: 10} },
		"blend color": func(i *model.Instance) { i.Modifiers.TileBlend = model.TileBlend{Color: 4, Weight: 10} },
		"texture":     func(i *model.Instance) { i.Modifiers.TextureSet = 12 },
		"pose 0":      func(i *model.Instance) { i.Deformation = model.Deformation{Mode: model.DeformPose, Frame: 0} },
		"pose 1":      func(i *model.Instance) { i.Deformation = model.Deformation{Mode: model.DeformPose, Frame: 1} },
	}

	seen := map[Key]string{mustKey(t, r, base): "base"}
	for name, mutate := range variants {
		inst := base
		mutate(&inst)
		k := mustKey(t, r, inst)
		if prev, dup := seen[k]; dup {
			t.Errorf("variant %q collides with %q", name, prev)
		}
		seen[k] = name
	}
}

func TestResolve_NotCacheable(t *testing.T) {
	r := NewResolver()
	assert.False(t, r.Resolve(nil).Cacheable())
	assert.False(t, r.Resolve(&model.Instance{}).Cacheable())

	skel := model.NewInstance(testShape(1), model.Vertex{}, 0)
	skel.Deformation = model.Deformation{Mode: model.DeformSkeletal, Vertices: testShape(1).Vertices}
	id := r.Resolve(&skel)
	assert.False(t, id.Cacheable())
	assert.Equal(t, NotCacheable, id)
	assert.Equal(t, "not-cacheable", id.String())
}

func TestResolve_ShapeContent(t *testing.T) {
	a := model.NewInstance(testShape(1), model.Vertex{}, 0)
	moved := testShape(1)
	moved.Vertices[3].Y = 30
	b := model.NewInstance(moved, model.Vertex{}, 0)

	byID := NewResolver()
	assert.Equal(t, mustKey(t, byID, a), mustKey(t, byID, b), "ID-only hashing trusts the shape ID")

	byContent := NewResolver(WithShapeContent(true))
	assert.NotEqual(t, mustKey(t, byContent, a), mustKey(t, byContent, b))
	assert.NotEqual(t, mustKey(t, byID, a), mustKey(t, byContent, a), "content hashing changes the key space")
}

func TestResolve_LargeShapeContent(t *testing.T) {
	shape := &model.Shape{ID: 9}
	for i := 0; i < 500; i++ {
		shape.Vertices = append(shape.Vertices, model.Vertex{X: int32(i), Y: int32(i * 2), Z: int32(-i)})
		if i >= 2 {
			shape.Faces = append(shape.Faces, model.Face{A: int32(i - 2), B: int32(i - 1), C: int32(i), Texture: model.NoTexture})
		}
	}
	r := NewResolver(WithShapeContent(true))
	k1 := mustKey(t, r, model.NewInstance(shape, model.Vertex{}, 0))
	k2 := mustKey(t, r, model.NewInstance(shape, model.Vertex{}, 0))
	assert.Equal(t, k1, k2)

	shape.Vertices[499].Z++
	assert.NotEqual(t, k1, mustKey(t, r, model.NewInstance(shape, model.Vertex{}, 0)))
}

// TestResolve_EqualKeysTessellateIdentically checks the central invariant
// against the reference tessellator: any two instances with equal keys
// produce byte-identical buffers.
func TestResolve_EqualKeysTessellateIdentically(t *testing.T) {
	shape := testShape(1)
	c := model.PackHSL(20, 3, 70)
	var instances []model.Instance
	for _, o := range []model.Orientation{0, 512, 2048, -1536} {
		for _, pos := range []model.Vertex{{}, {X: 640, Z: 128}} {
			for _, blend := range []uint8{0, 40} {
				inst := model.NewInstance(shape, pos, o)
				inst.Modifiers.TileBlend = model.TileBlend{Color: model.PackHSL(40, 2, 30), Weight: blend}
				instances = append(instances, inst)

				swapped := inst
				swapped.Modifiers.Recolor = []model.ColorSwap{{From: c, To: c}, {From: c, To: 11}}
				instances = append(instances, swapped)
			}
		}
	}

	r := NewResolver()
	byKey := map[Key][]byte{}
	for i := range instances {
		k := mustKey(t, r, instances[i])
		buf, err := tessellate.Reference{}.Tessellate(&instances[i])
		require.NoError(t, err)
		if prev, ok := byKey[k]; ok {
			assert.True(t, bytes.Equal(prev, buf.Data), "instance %d shares key %s but tessellates differently", i, k)
			continue
		}
		byKey[k] = buf.Data
	}
	assert.Less(t, len(byKey), len(instances), "expected some instances to share keys")
}

func TestKey(t *testing.T) {
	var zero Key
	assert.True(t, zero.IsZero())
	assert.Equal(t, "00000000000000000000000000000000", zero.String())

	k := keyFromSum([]byte{0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 2})
	assert.False(t, k.IsZero())
	assert.Equal(t, uint64(3), k.Uint64())
	assert.Equal(t, "00000000000000010000000000000002", k.String())

	id := Of(k)
	got, ok := id.Key()
	assert.True(t, ok)
	assert.Equal(t, k, got)
	assert.Equal(t, k.String(), id.String())
}
