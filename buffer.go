package tess

import (
	"sync"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/tess/internal/task"
)

// Vertex is a single tessellated vertex: device-space position plus
// coverage alpha for anti-aliased edges.
type Vertex struct {
	Pos   f32.Vec2
	Alpha float32
}

// vertexBytes is the wire size of one Vertex (two position floats plus
// the alpha float).
const vertexBytes = 12

// VertexBuffer is the opaque output of tessellation: a sized blob of
// renderable geometry. The cache core only looks at its size; content
// is consumed downstream.
type VertexBuffer struct {
	vertices []Vertex
}

// NewVertexBuffer wraps tessellated vertices in a buffer. The buffer
// takes ownership of the slice. An empty (or nil) slice is a valid
// buffer: degenerate shapes tessellate to empty geometry, not errors.
func NewVertexBuffer(vertices []Vertex) *VertexBuffer {
	return &VertexBuffer{vertices: vertices}
}

// Size returns the buffer size in bytes, used for budget accounting.
func (b *VertexBuffer) Size() int {
	return len(b.vertices) * vertexBytes
}

// Len returns the number of vertices in the buffer.
func (b *VertexBuffer) Len() int {
	return len(b.vertices)
}

// Vertices returns the tessellated vertices. Callers must not mutate
// the returned slice; buffers are shared between cache consumers.
func (b *VertexBuffer) Vertices() []Vertex {
	return b.vertices
}

// VertexBufferPair couples the two shadow geometries of one caster.
type VertexBufferPair struct {
	// Ambient is the diffuse penumbra geometry.
	Ambient *VertexBuffer
	// Spot is the point-light penumbra geometry.
	Spot *VertexBuffer
}

// Buffer is a cache entry handle for a tessellation result. It owns
// either a pending task producing a VertexBuffer or the materialized
// buffer, never both. The transition happens exactly once, the first
// time anyone asks for the size or content; afterwards the task
// reference is released.
//
// Buffer is safe for concurrent use: materialization is guarded so
// that concurrent size accounting and content access agree.
type Buffer struct {
	once   sync.Once
	task   *task.Task[*VertexBuffer]
	buffer *VertexBuffer
}

// newBuffer creates a pending handle backed by a queued task.
func newBuffer(t *task.Task[*VertexBuffer]) *Buffer {
	return &Buffer{task: t}
}

// materializedBuffer creates an already-resolved handle. Used in tests
// and by callers that tessellate synchronously.
func materializedBuffer(vb *VertexBuffer) *Buffer {
	return &Buffer{buffer: vb}
}

// materialize blocks until the backing task resolves, then drops the
// task reference. A nil result means the tessellator broke its
// contract; that is a fatal invariant violation, not a runtime error.
func (b *Buffer) materialize() {
	b.once.Do(func() {
		if b.task == nil {
			return
		}
		buf := b.task.Result()
		if buf == nil {
			panic("tess: tessellation task produced no buffer")
		}
		b.buffer = buf
		b.task = nil
	})
}

// Size returns the materialized buffer size in bytes, blocking until
// the backing tessellation task has resolved.
func (b *Buffer) Size() int {
	b.materialize()
	return b.buffer.Size()
}

// VertexBuffer returns the materialized buffer, blocking until the
// backing tessellation task has resolved.
func (b *Buffer) VertexBuffer() *VertexBuffer {
	b.materialize()
	return b.buffer
}
