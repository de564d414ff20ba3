package gpu

import (
	"context"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/geocache/config"
	"github.com/gogpu/geocache/identity"
	"github.com/gogpu/geocache/model"
	"github.com/gogpu/geocache/session"
	"github.com/gogpu/geocache/tessellate"
)

// createNoopDevice creates a noop device and queue for testing.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	require.NoError(t, err)
	adapters := instance.EnumerateAdapters(nil)
	require.NotEmpty(t, adapters)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

func quad(id uint64) *model.Shape {
	return &model.Shape{
		ID:       id,
		Vertices: []model.Vertex{{}, {X: 128}, {X: 128, Z: 128}, {Z: 128}},
		Faces: []model.Face{
			{A: 0, B: 1, C: 2, ColorA: 1000, ColorB: 1000, ColorC: 1000, Texture: model.NoTexture},
			{A: 0, B: 2, C: 3, ColorA: 1000, ColorB: 1000, ColorC: 1000, Texture: model.NoTexture},
		},
	}
}

func item(t *testing.T, index int, buf *tessellate.Buffer, pos model.Vertex) session.DrawItem {
	t.Helper()
	return session.DrawItem{Index: index, ID: identity.NotCacheable, Buffer: buf, Position: pos}
}

func TestUploader_SharesDeviceBuffers(t *testing.T) {
	device, queue := createNoopDevice(t)
	u := NewUploader(device, queue)
	defer u.Release()

	a, err := tessellate.Reference{}.Tessellate(&model.Instance{Shape: quad(1), Modifiers: model.DefaultModifiers()})
	require.NoError(t, err)
	b, err := tessellate.Reference{}.Tessellate(&model.Instance{Shape: quad(2), Orientation: 512, Modifiers: model.DefaultModifiers()})
	require.NoError(t, err)

	require.NoError(t, u.Submit(item(t, 0, a, model.Vertex{X: 10})))
	require.NoError(t, u.Submit(item(t, 1, b, model.Vertex{Y: 20})))
	require.NoError(t, u.Submit(item(t, 2, a, model.Vertex{Z: 30})))
	require.NoError(t, u.EndFrame())

	draws := u.LastFrame()
	require.Len(t, draws, 3)
	assert.Equal(t, draws[0].Buffer, draws[2].Buffer)
	assert.Equal(t, uint32(6), draws[0].VertexCount)
	assert.Equal(t, [3]float32{0, 0, 30}, draws[2].Translation)
	assert.Equal(t, 1, draws[1].Index)

	st := u.Stats()
	assert.Equal(t, uint64(2), st.BuffersCreated)
	assert.Equal(t, uint64(a.Size()+b.Size()), st.BytesUploaded)
	assert.Equal(t, uint64(3), st.Draws)
	assert.Equal(t, uint64(1), st.Frames)
}

func TestUploader_OneFrameLatency(t *testing.T) {
	device, queue := createNoopDevice(t)
	u := NewUploader(device, queue)

	buf, err := tessellate.Reference{}.Tessellate(&model.Instance{Shape: quad(1), Modifiers: model.DefaultModifiers()})
	require.NoError(t, err)

	require.NoError(t, u.Submit(item(t, 0, buf, model.Vertex{})))
	require.NoError(t, u.EndFrame())
	assert.Equal(t, 1, u.Live(), "frame buffers survive their EndFrame")

	// Same host buffer in the next frame is uploaded again.
	require.NoError(t, u.Submit(item(t, 0, buf, model.Vertex{})))
	assert.Equal(t, 2, u.Live())
	require.NoError(t, u.EndFrame())
	assert.Equal(t, 1, u.Live(), "previous frame destroyed")

	require.NoError(t, u.EndFrame())
	assert.Zero(t, u.Live())

	u.Release()
	assert.ErrorIs(t, u.Submit(item(t, 0, buf, model.Vertex{})), ErrReleased)
	assert.ErrorIs(t, u.EndFrame(), ErrReleased)
	u.Release()
}

func TestUploader_SkipsEmptyBuffers(t *testing.T) {
	device, queue := createNoopDevice(t)
	u := NewUploader(device, queue)
	defer u.Release()

	require.NoError(t, u.Submit(item(t, 0, &tessellate.Buffer{}, model.Vertex{})))
	require.NoError(t, u.Submit(item(t, 1, nil, model.Vertex{})))
	require.NoError(t, u.EndFrame())
	assert.Empty(t, u.LastFrame())
	assert.Zero(t, u.Stats().BuffersCreated)
}

func TestUploader_WithSession(t *testing.T) {
	device, queue := createNoopDevice(t)

	var order []int
	u := NewUploader(device, queue, WithLabel("test_vertices"), WithDrawFunc(func(d Draw) {
		order = append(order, d.Index)
	}))
	defer u.Release()

	s := session.New(config.Default())
	defer s.Close()

	instances := []model.Instance{
		model.NewInstance(quad(1), model.Vertex{X: 0}, 0),
		model.NewInstance(quad(1), model.Vertex{X: 256}, 0),
		model.NewInstance(quad(2), model.Vertex{X: 512}, 1024),
		model.NewInstance(quad(1), model.Vertex{X: 768}, 0),
	}
	for range 2 {
		report, err := s.RenderFrame(context.Background(), instances, u)
		require.NoError(t, err)
		assert.Equal(t, len(instances), report.Drawn)
	}

	assert.Equal(t, []int{0, 1, 2, 3, 0, 1, 2, 3}, order)
	assert.Equal(t, uint64(4), u.Stats().BuffersCreated, "two distinct buffers per frame")
	assert.Equal(t, 2, s.Stats().Entries)
	assert.Equal(t, 2, u.Live(), "only the last frame is alive")
}
