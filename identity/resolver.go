package identity

import (
	"encoding/binary"
	"hash"
	"hash/fnv"

	"github.com/gogpu/geocache/model"
)

// keyVersion is written first into every encoding. Bump it whenever the
// encoded field set or the tessellator's output format changes.
const keyVersion = 1

// Field tags separate variable-length sections of the encoding so that
// different field combinations can never produce the same byte stream.
const (
	tagShape byte = iota + 1
	tagShapeContent
	tagOrientation
	tagRecolor
	tagTileBlend
	tagTexture
	tagPose
)

// Option configures a Resolver.
type Option func(*Resolver)

// WithShapeContent makes the resolver hash every vertex and face of the
// shape in addition to its ID. Use it when shape IDs are not unique within
// a scene; it costs time proportional to the shape size on every resolve.
func WithShapeContent(enabled bool) Option {
	return func(r *Resolver) {
		r.shapeContent = enabled
	}
}

// Resolver computes identities for model instances.
//
// A Resolver reuses internal scratch space and is not safe for concurrent
// use; give each goroutine its own.
type Resolver struct {
	shapeContent bool
	h            hash.Hash
	buf          []byte
	sum          []byte
}

// NewResolver creates a resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		h:   fnv.New128a(),
		buf: make([]byte, 0, 256),
		sum: make([]byte, 0, 16),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the identity of inst.
//
// Instances without a shape and skeletal instances are NotCacheable.
func (r *Resolver) Resolve(inst *model.Instance) Identity {
	if inst == nil || inst.Shape == nil {
		return NotCacheable
	}
	if inst.Deformation.Mode == model.DeformSkeletal {
		return NotCacheable
	}

	r.h.Reset()
	b := r.buf[:0]
	b = append(b, keyVersion)

	shape := inst.Shape
	b = append(b, tagShape)
	b = binary.LittleEndian.AppendUint64(b, shape.ID)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(shape.Vertices)))
	b = binary.LittleEndian.AppendUint32(b, uint32(len(shape.Faces)))

	if r.shapeContent {
		b = append(b, tagShapeContent)
		b = r.flush(b)
		b = r.appendShape(b, shape)
	}

	b = append(b, tagOrientation)
	b = binary.LittleEndian.AppendUint16(b, uint16(inst.Orientation.Normalize()))

	b = appendModifiers(b, &inst.Modifiers)

	if inst.Deformation.Mode == model.DeformPose {
		b = append(b, tagPose)
		b = binary.LittleEndian.AppendUint32(b, uint32(inst.Deformation.Frame))
	}

	r.flush(b)
	r.sum = r.h.Sum(r.sum[:0])
	return Of(keyFromSum(r.sum))
}

// flush writes b to the hash and returns b truncated for reuse.
func (r *Resolver) flush(b []byte) []byte {
	_, _ = r.h.Write(b) // hash.Hash.Write never returns an error
	r.buf = b[:0]
	return r.buf
}

// appendShape encodes the full geometry of shape, flushing to the hash
// whenever the scratch buffer fills up.
func (r *Resolver) appendShape(b []byte, shape *model.Shape) []byte {
	const flushAt = 240
	for _, v := range shape.Vertices {
		if len(b) >= flushAt {
			b = r.flush(b)
		}
		b = binary.LittleEndian.AppendUint32(b, uint32(v.X))
		b = binary.LittleEndian.AppendUint32(b, uint32(v.Y))
		b = binary.LittleEndian.AppendUint32(b, uint32(v.Z))
	}
	for i := range shape.Faces {
		if len(b) >= flushAt {
			b = r.flush(b)
		}
		f := &shape.Faces[i]
		b = binary.LittleEndian.AppendUint32(b, uint32(f.A))
		b = binary.LittleEndian.AppendUint32(b, uint32(f.B))
		b = binary.LittleEndian.AppendUint32(b, uint32(f.C))
		b = binary.LittleEndian.AppendUint16(b, uint16(f.ColorA))
		b = binary.LittleEndian.AppendUint16(b, uint16(f.ColorB))
		b = binary.LittleEndian.AppendUint16(b, uint16(f.ColorC))
		b = binary.LittleEndian.AppendUint16(b, uint16(f.Texture))
	}
	b = binary.LittleEndian.AppendUint32(b, uint32(len(shape.Poses)))
	for _, pose := range shape.Poses {
		b = binary.LittleEndian.AppendUint32(b, uint32(len(pose)))
		for _, v := range pose {
			if len(b) >= flushAt {
				b = r.flush(b)
			}
			b = binary.LittleEndian.AppendUint32(b, uint32(v.X))
			b = binary.LittleEndian.AppendUint32(b, uint32(v.Y))
			b = binary.LittleEndian.AppendUint32(b, uint32(v.Z))
		}
	}
	return b
}

// appendModifiers encodes the modifiers in normalized form: swaps that do
// nothing are dropped and a zero-weight tile blend is omitted, so modifier
// sets that tessellate identically encode identically.
func appendModifiers(b []byte, m *model.Modifiers) []byte {
	n := 0
	for i := range m.Recolor {
		if effectiveSwap(m.Recolor, i) {
			n++
		}
	}
	if n > 0 {
		b = append(b, tagRecolor)
		b = binary.LittleEndian.AppendUint16(b, uint16(n))
		for i, s := range m.Recolor {
			if !effectiveSwap(m.Recolor, i) {
				continue
			}
			b = binary.LittleEndian.AppendUint16(b, uint16(s.From))
			b = binary.LittleEndian.AppendUint16(b, uint16(s.To))
		}
	}

	if m.TileBlend.Weight > 0 {
		b = append(b, tagTileBlend)
		b = binary.LittleEndian.AppendUint16(b, uint16(m.TileBlend.Color))
		b = append(b, m.TileBlend.Weight)
	}

	if m.TextureSet != model.NoTexture {
		b = append(b, tagTexture)
		b = binary.LittleEndian.AppendUint16(b, uint16(m.TextureSet))
	}
	return b
}

// effectiveSwap reports whether swaps[i] changes any color. The
// tessellator applies only the first swap matching a color, so a swap is
// dead when it maps a color to itself or an earlier swap has the same From.
func effectiveSwap(swaps []model.ColorSwap, i int) bool {
	s := swaps[i]
	if s.From == s.To {
		return false
	}
	for _, earlier := range swaps[:i] {
		if earlier.From == s.From {
			return false
		}
	}
	return true
}
