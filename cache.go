package tess

import (
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/tess/internal/lru"
	"github.com/gogpu/tess/internal/task"
)

// shadowTask is the value cached per shadow description: the future of
// an ambient/spot buffer pair.
type shadowTask = task.Task[*VertexBufferPair]

// Cache memoizes tessellation results and schedules misses as
// background work. It holds two recency-ordered caches — one for shape
// vertex buffers, one for shadow pairs — plus the byte budget of the
// former, all guarded by one mutex because Trim touches both.
//
// Cache is safe for concurrent use.
type Cache struct {
	mu          sync.Mutex
	cache       *lru.Cache[Description, *Buffer]
	shadowCache *lru.Cache[ShadowDescription, *shadowTask]
	maxSize     int

	processor  *task.Processor
	shadowTess ShadowTessellator
}

// Option configures a Cache.
type Option func(*Cache)

// WithMaxSize sets the vertex buffer byte budget, overriding both the
// default and the environment variable.
func WithMaxSize(bytes int) Option {
	return func(c *Cache) {
		if bytes > 0 {
			c.maxSize = bytes
		}
	}
}

// WithProcessor injects the worker pool that executes tessellation
// tasks. By default all caches share one lazily created process-wide
// processor. The caller keeps ownership and is responsible for closing
// an injected processor.
func WithProcessor(p *task.Processor) Option {
	return func(c *Cache) {
		c.processor = p
	}
}

// WithShadowTessellator replaces the built-in penumbra construction
// with a caller-supplied one.
func WithShadowTessellator(st ShadowTessellator) Option {
	return func(c *Cache) {
		if st != nil {
			c.shadowTess = st
		}
	}
}

// New creates a tessellation cache. The byte budget defaults to
// DefaultMaxSizeMB, overridable once here via the TESS_VERTEX_CACHE_MB
// environment variable or the WithMaxSize option.
func New(opts ...Option) *Cache {
	c := &Cache{
		maxSize:    maxSizeFromEnv(),
		shadowTess: BasicShadowTessellator{},
	}
	c.cache = lru.New[Description, *Buffer](c.onBufferRemoved)
	c.shadowCache = lru.New[ShadowDescription, *shadowTask](c.onShadowRemoved)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// sharedProcessor is the process-wide worker pool, created lazily on
// first use and never torn down: its lifetime equals the caches it
// serves.
var (
	sharedProcOnce sync.Once
	sharedProc     *task.Processor
)

func (c *Cache) proc() *task.Processor {
	if c.processor != nil {
		return c.processor
	}
	sharedProcOnce.Do(func() {
		sharedProc = task.NewProcessor(0)
	})
	return sharedProc
}

// onBufferRemoved is the vertex cache removal callback. The evicted
// handle's buffer is released to the collector; a still-pending task
// keeps running to completion (wasted work, not a correctness bug).
func (c *Cache) onBufferRemoved(desc Description, _ *Buffer) {
	Logger().Debug("evicting tessellation buffer", "kind", desc.Kind)
}

// onShadowRemoved is the shadow cache removal callback.
func (c *Cache) onShadowRemoved(desc ShadowDescription, _ *shadowTask) {
	Logger().Debug("evicting shadow buffers", "caster", desc.Caster)
}

// GetOrCreateBuffer looks up the descriptor and returns the existing
// handle on a hit, promoting its recency. On a miss it enqueues a task
// that will run tessellator on a worker goroutine, caches a pending
// handle, and returns it.
//
// Lookup-miss-then-insert is one critical section, so at most one task
// is ever created per distinct descriptor while its entry lives in the
// cache — concurrent misses on the same key collapse to one
// tessellation.
func (c *Cache) GetOrCreateBuffer(desc Description, tessellator Tessellator, paint *Paint) *Buffer {
	c.mu.Lock()
	defer c.mu.Unlock()

	if buf, ok := c.cache.Get(desc); ok {
		return buf
	}

	// The paint is copied because the caller may mutate it after we
	// return; the worker must see a stable snapshot.
	p := NewPaint()
	if paint != nil {
		p = paint.Clone()
	}

	t := task.New[*VertexBuffer]()
	c.proc().Add(func() {
		t.SetResult(tessellator(desc, p))
	})

	buf := newBuffer(t)
	c.cache.Put(desc, buf)
	return buf
}

// RoundRectBuffer returns the cached handle for a rounded rectangle,
// scheduling tessellation on first request. The transform contributes
// only its X/Y scale factors to the cache key, so translated instances
// of the same rounded rectangle share one buffer.
func (c *Cache) RoundRectBuffer(transform Matrix4, width, height, rx, ry float64, paint *Paint) *Buffer {
	desc := NewDescription(ShapeRoundRect, paint)
	desc.Shape[slotWidth] = width
	desc.Shape[slotHeight] = height
	desc.Shape[slotRx] = rx
	desc.Shape[slotRy] = ry
	desc.Shape[slotScaleX], desc.Shape[slotScaleY] = transform.ScaleFactors()
	return c.GetOrCreateBuffer(desc, tessellateRoundRect, paint)
}

// RoundRect returns the tessellated rounded rectangle, blocking until
// the backing task has resolved.
func (c *Cache) RoundRect(transform Matrix4, width, height, rx, ry float64, paint *Paint) *VertexBuffer {
	return c.RoundRectBuffer(transform, width, height, rx, ry, paint).VertexBuffer()
}

// CircleBuffer returns the cached handle for a circle, scheduling
// tessellation on first request.
func (c *Cache) CircleBuffer(transform Matrix4, radius float64, paint *Paint) *Buffer {
	desc := NewDescription(ShapeCircle, paint)
	desc.Shape[slotRadius] = radius
	desc.Shape[slotScaleX], desc.Shape[slotScaleY] = transform.ScaleFactors()
	return c.GetOrCreateBuffer(desc, tessellateCircle, paint)
}

// Circle returns the tessellated circle, blocking until the backing
// task has resolved.
func (c *Cache) Circle(transform Matrix4, radius float64, paint *Paint) *VertexBuffer {
	return c.CircleBuffer(transform, radius, paint).VertexBuffer()
}

// PrecacheShadows unconditionally enqueues a shadow tessellation for
// the caster under the given draw transform, replacing any existing
// entry. Use it to warm the cache ahead of a draw that will need the
// buffers.
func (c *Cache) PrecacheShadows(drawTransform Matrix4, clip Rect, caster ShadowCaster, light ShadowLight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.precacheShadowsLocked(drawTransform, clip, caster, light)
}

// precacheShadowsLocked enqueues and caches a shadow task. Inputs are
// deep copied at enqueue: the perimeter may live in caller-owned
// per-frame memory that is released before the worker runs, and owned
// copies remove any need for a cancellation protocol.
func (c *Cache) precacheShadowsLocked(drawTransform Matrix4, clip Rect, caster ShadowCaster, light ShadowLight) {
	snapshot := caster
	snapshot.Perimeter = caster.Perimeter.Clone()
	st := c.shadowTess

	t := task.New[*VertexBufferPair]()
	c.proc().Add(func() {
		t.SetResult(tessellateShadows(drawTransform, clip, snapshot, light, st))
	})
	c.shadowCache.Put(NewShadowDescription(caster.ID, drawTransform), t)
}

// ShadowBuffers returns the ambient and spot shadow buffers for the
// caster, blocking until tessellation completes. A missing entry is
// precached lazily first; if the entry is still absent after that
// fallback the scheduling logic is broken and ShadowBuffers panics.
func (c *Cache) ShadowBuffers(drawTransform Matrix4, clip Rect, caster ShadowCaster, light ShadowLight) (ambient, spot *VertexBuffer) {
	key := NewShadowDescription(caster.ID, drawTransform)

	c.mu.Lock()
	t, ok := c.shadowCache.Get(key)
	if !ok {
		c.precacheShadowsLocked(drawTransform, clip, caster, light)
		t, ok = c.shadowCache.Get(key)
	}
	c.mu.Unlock()
	if !ok {
		panic("tess: shadow not precached")
	}

	pair := t.Result()
	return pair.Ambient, pair.Spot
}

// Size returns the total byte size of all cached vertex buffers. It
// forces materialization — blocking on every still-pending entry — as
// the accepted cost of accounting accuracy. Pending entries resolve in
// parallel.
func (c *Cache) Size() int {
	c.mu.Lock()
	buffers := c.cache.Values()
	c.mu.Unlock()
	return materializedSize(buffers)
}

// materializedSize sums buffer sizes, resolving pending handles
// concurrently.
func materializedSize(buffers []*Buffer) int {
	var total atomic.Int64
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, buf := range buffers {
		buf := buf
		g.Go(func() error {
			total.Add(int64(buf.Size()))
			return nil
		})
	}
	_ = g.Wait() // join only; size accounting cannot fail
	return int(total.Load())
}

// MaxSize returns the vertex buffer byte budget.
func (c *Cache) MaxSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxSize
}

// SetMaxSize adjusts the byte budget. Shrinking evicts oldest entries
// synchronously until the cache fits the new budget.
func (c *Cache) SetMaxSize(bytes int) {
	c.mu.Lock()
	c.maxSize = bytes
	c.mu.Unlock()
	c.evictToBudget()
}

// Trim evicts least-recently-used vertex buffers until the total size
// fits the budget, and discards the entire shadow cache. Shadow pairs
// are frame-scoped: clearing them wholesale is cheaper than accounting
// them precisely.
func (c *Cache) Trim() {
	c.evictToBudget()

	c.mu.Lock()
	dropped := c.shadowCache.Len()
	c.shadowCache.Clear()
	c.mu.Unlock()

	Logger().Debug("trimmed tessellation cache", "shadowEntriesDropped", dropped)
}

// evictToBudget removes oldest vertex buffer entries until the total
// materialized size fits the budget.
func (c *Cache) evictToBudget() {
	// Materialize outside the lock so workers can make progress.
	total := c.Size()

	c.mu.Lock()
	defer c.mu.Unlock()
	for total > c.maxSize {
		buf, ok := c.cache.PeekOldestValue()
		if !ok {
			break
		}
		total -= buf.Size()
		c.cache.RemoveOldest()
	}
}

// Clear evicts everything from both caches unconditionally. Used on
// context loss and teardown.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Clear()
	c.shadowCache.Clear()
}

// EntryCount returns the number of vertex buffer entries in the cache.
func (c *Cache) EntryCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}

// ShadowEntryCount returns the number of cached shadow pairs.
func (c *Cache) ShadowEntryCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shadowCache.Len()
}
