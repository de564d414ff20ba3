package gpu

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/geocache"
	"github.com/gogpu/geocache/session"
	"github.com/gogpu/geocache/tessellate"
)

// ErrReleased is returned by Submit and EndFrame after Release.
var ErrReleased = errors.New("gpu: uploader released")

// Draw is one recorded draw call.
type Draw struct {
	// Index is the instance's traversal index within the frame.
	Index int
	// Buffer is the device vertex buffer, laid out as tessellate.VertexLayout.
	Buffer hal.Buffer
	// VertexCount is the number of vertices to draw.
	VertexCount uint32
	// Translation is the world position applied by the vertex shader.
	Translation [3]float32
}

// DrawFunc is called for every recorded draw, in submission order.
type DrawFunc func(d Draw)

// UploadStats counts device work done by an Uploader.
type UploadStats struct {
	Frames         uint64
	Draws          uint64
	BuffersCreated uint64
	BytesUploaded  uint64
}

// Option configures an Uploader.
type Option func(*Uploader)

// WithDrawFunc sets a callback invoked for each draw.
func WithDrawFunc(fn DrawFunc) Option {
	return func(u *Uploader) {
		u.onDraw = fn
	}
}

// WithLabel sets the label prefix for created device buffers.
func WithLabel(label string) Option {
	return func(u *Uploader) {
		u.label = label
	}
}

// Uploader turns session draw items into device buffers and draw records.
// It is not safe for concurrent use.
type Uploader struct {
	device hal.Device
	queue  hal.Queue
	onDraw DrawFunc
	label  string

	// uploaded maps host buffers to their device buffer for the current frame.
	uploaded map[*tessellate.Buffer]hal.Buffer
	current  []hal.Buffer
	retired  []hal.Buffer
	draws    []Draw
	last     []Draw

	stats    UploadStats
	released bool
}

var _ session.Submitter = (*Uploader)(nil)

// NewUploader creates an uploader on device and queue.
func NewUploader(device hal.Device, queue hal.Queue, opts ...Option) *Uploader {
	u := &Uploader{
		device:   device,
		queue:    queue,
		label:    "geocache_vertices",
		uploaded: make(map[*tessellate.Buffer]hal.Buffer),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Submit records a draw for item, uploading its buffer on first use in the
// current frame.
func (u *Uploader) Submit(item session.DrawItem) error {
	if u.released {
		return ErrReleased
	}
	if item.Buffer == nil || item.Buffer.VertexCount == 0 {
		return nil
	}

	dev, ok := u.uploaded[item.Buffer]
	if !ok {
		var err error
		dev, err = u.upload(item.Buffer.Data)
		if err != nil {
			return fmt.Errorf("gpu: upload instance %d (%s): %w", item.Index, item.ID, err)
		}
		u.uploaded[item.Buffer] = dev
		u.current = append(u.current, dev)
	}

	d := Draw{
		Index:       item.Index,
		Buffer:      dev,
		VertexCount: uint32(item.Buffer.VertexCount), //nolint:gosec // vertex counts fit uint32
		Translation: [3]float32{
			float32(item.Position.X),
			float32(item.Position.Y),
			float32(item.Position.Z),
		},
	}
	u.draws = append(u.draws, d)
	u.stats.Draws++
	if u.onDraw != nil {
		u.onDraw(d)
	}
	return nil
}

// EndFrame finishes the frame. Device buffers from the previous frame are
// destroyed; this frame's buffers stay alive until the next EndFrame.
func (u *Uploader) EndFrame() error {
	if u.released {
		return ErrReleased
	}
	u.destroy(u.retired)
	u.retired, u.current = u.current, u.retired[:0]
	clear(u.uploaded)

	u.last, u.draws = u.draws, nil
	u.stats.Frames++

	geocache.ComponentLogger("gpu").Debug("frame uploaded",
		slog.Uint64("frame", u.stats.Frames),
		slog.Int("draws", len(u.last)),
		slog.Int("buffers", len(u.retired)))
	return nil
}

// LastFrame returns the draws recorded for the most recently ended frame.
func (u *Uploader) LastFrame() []Draw {
	return u.last
}

// Live reports the number of device buffers not yet destroyed.
func (u *Uploader) Live() int {
	return len(u.current) + len(u.retired)
}

// Stats returns the uploader's counters.
func (u *Uploader) Stats() UploadStats {
	return u.stats
}

// Release destroys every device buffer the uploader still owns. The
// uploader cannot be used afterwards.
func (u *Uploader) Release() {
	if u.released {
		return
	}
	u.released = true
	u.destroy(u.retired)
	u.destroy(u.current)
	u.retired, u.current = nil, nil
	u.uploaded = nil
	u.draws, u.last = nil, nil
}

func (u *Uploader) upload(data []byte) (hal.Buffer, error) {
	buf, err := u.device.CreateBuffer(&hal.BufferDescriptor{
		Label: u.label,
		Size:  uint64(len(data)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", u.label, err)
	}
	u.queue.WriteBuffer(buf, 0, data)
	u.stats.BuffersCreated++
	u.stats.BytesUploaded += uint64(len(data))
	return buf, nil
}

func (u *Uploader) destroy(bufs []hal.Buffer) {
	for i, b := range bufs {
		u.device.DestroyBuffer(b)
		bufs[i] = nil
	}
}
