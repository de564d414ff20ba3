package tessellate

// VertexStride is the size of one interleaved vertex in bytes.
const VertexStride = 56

// Buffer is a finished, host-side vertex attribute buffer.
//
// A Buffer is immutable once returned by a Tessellator. It may be shared by
// any number of draws across frames; nobody may write to Data.
type Buffer struct {
	Data        []byte
	VertexCount int
}

// Size returns the number of bytes owned by the buffer.
func (b *Buffer) Size() int64 {
	if b == nil {
		return 0
	}
	return int64(len(b.Data))
}

// TriangleCount returns the number of triangles in the buffer.
func (b *Buffer) TriangleCount() int {
	if b == nil {
		return 0
	}
	return b.VertexCount / 3
}
