package tess

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gogpu/tess/internal/task"
)

func newTestCache(t *testing.T, opts ...Option) *Cache {
	t.Helper()
	p := task.NewProcessor(2)
	t.Cleanup(p.Close)
	return New(append([]Option{WithProcessor(p)}, opts...)...)
}

// countingTessellator returns a tessellator that counts invocations and
// emits a buffer with the given vertex count.
func countingTessellator(calls *atomic.Int32, vertices int) Tessellator {
	return func(Description, *Paint) *VertexBuffer {
		calls.Add(1)
		return NewVertexBuffer(make([]Vertex, vertices))
	}
}

func shapeDesc(slot0 float64) Description {
	desc := NewDescription(ShapeConvexPath, nil)
	desc.Shape[0] = slot0
	return desc
}

// Buffer cache -----------------------------------------------------------

func TestCache_HitReturnsSameHandle(t *testing.T) {
	c := newTestCache(t)
	var calls atomic.Int32
	tess := countingTessellator(&calls, 4)

	desc := shapeDesc(1)
	first := c.GetOrCreateBuffer(desc, tess, nil)
	second := c.GetOrCreateBuffer(desc, tess, nil)

	if first != second {
		t.Error("repeated request should return the identical handle")
	}
	first.VertexBuffer()
	if got := calls.Load(); got != 1 {
		t.Errorf("tessellator ran %d times, want 1", got)
	}
	if c.EntryCount() != 1 {
		t.Errorf("EntryCount = %d, want 1", c.EntryCount())
	}
}

func TestCache_ConcurrentMissesCollapse(t *testing.T) {
	c := newTestCache(t)
	var calls atomic.Int32
	tess := countingTessellator(&calls, 4)
	desc := shapeDesc(7)

	const goroutines = 16
	handles := make([]*Buffer, goroutines)
	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		i := i
		go func() {
			defer done.Done()
			start.Wait()
			handles[i] = c.GetOrCreateBuffer(desc, tess, nil)
			handles[i].VertexBuffer()
		}()
	}
	start.Done()
	done.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("tessellator ran %d times, want 1", got)
	}
	for i := 1; i < goroutines; i++ {
		if handles[i] != handles[0] {
			t.Fatal("all goroutines should see the same handle")
		}
	}
}

func TestCache_DistinctDescriptorsDistinctBuffers(t *testing.T) {
	c := newTestCache(t)
	var calls atomic.Int32
	tess := countingTessellator(&calls, 4)

	a := c.GetOrCreateBuffer(shapeDesc(1), tess, nil)
	b := c.GetOrCreateBuffer(shapeDesc(2), tess, nil)

	if a == b {
		t.Error("distinct descriptors should get distinct handles")
	}
	a.VertexBuffer()
	b.VertexBuffer()
	if got := calls.Load(); got != 2 {
		t.Errorf("tessellator ran %d times, want 2", got)
	}
}

func TestCache_RoundRect(t *testing.T) {
	c := newTestCache(t)

	vb := c.RoundRect(Identity4(), 100, 50, 10, 10, nil)

	if vb.Len() == 0 {
		t.Fatal("round rect tessellation produced no vertices")
	}
	if vb.Size() != vb.Len()*12 {
		t.Errorf("Size = %d, want %d", vb.Size(), vb.Len()*12)
	}

	// Same geometry again is a cache hit, translated instances included.
	again := c.RoundRectBuffer(Translate3D(30, 40, 0), 100, 50, 10, 10, nil)
	if again.VertexBuffer() != vb {
		t.Error("translated round rect should share the cached buffer")
	}
	if c.EntryCount() != 1 {
		t.Errorf("EntryCount = %d, want 1", c.EntryCount())
	}
}

func TestCache_Circle(t *testing.T) {
	c := newTestCache(t)

	vb := c.Circle(Identity4(), 25, nil)
	if vb.Len() == 0 {
		t.Fatal("circle tessellation produced no vertices")
	}

	// A different radius is a distinct entry.
	c.Circle(Identity4(), 50, nil)
	if c.EntryCount() != 2 {
		t.Errorf("EntryCount = %d, want 2", c.EntryCount())
	}
}

func TestCache_ScaleContributesToKey(t *testing.T) {
	c := newTestCache(t)

	c.Circle(Identity4(), 25, nil)
	c.Circle(Scale3D(2, 2, 1), 25, nil)

	if c.EntryCount() != 2 {
		t.Errorf("EntryCount = %d, want 2 (scale changes the key)", c.EntryCount())
	}
}

// Budget and trimming ----------------------------------------------------

func TestCache_TrimEvictsOldestToBudget(t *testing.T) {
	// Budget fits five 10-vertex buffers (120 bytes each).
	c := newTestCache(t, WithMaxSize(5*120))
	var calls atomic.Int32
	tess := countingTessellator(&calls, 10)

	for i := 0; i < 6; i++ {
		c.GetOrCreateBuffer(shapeDesc(float64(i)), tess, nil)
	}
	// Insertion never evicts on its own.
	if c.EntryCount() != 6 {
		t.Fatalf("EntryCount before trim = %d, want 6", c.EntryCount())
	}

	c.Trim()

	if c.EntryCount() != 5 {
		t.Fatalf("EntryCount after trim = %d, want 5", c.EntryCount())
	}
	if got := c.Size(); got != 5*120 {
		t.Errorf("Size after trim = %d, want %d", got, 5*120)
	}

	// The oldest entry went; re-requesting it runs the tessellator
	// again while the newest remains a hit.
	calls.Store(0)
	c.GetOrCreateBuffer(shapeDesc(5), tess, nil)
	if got := calls.Load(); got != 0 {
		t.Error("newest entry should have survived the trim")
	}
	c.GetOrCreateBuffer(shapeDesc(0), tess, nil).VertexBuffer()
	if got := calls.Load(); got != 1 {
		t.Error("oldest entry should have been evicted by the trim")
	}
}

func TestCache_TrimRespectsRecency(t *testing.T) {
	c := newTestCache(t, WithMaxSize(2*120))
	var calls atomic.Int32
	tess := countingTessellator(&calls, 10)

	c.GetOrCreateBuffer(shapeDesc(1), tess, nil)
	c.GetOrCreateBuffer(shapeDesc(2), tess, nil)
	c.GetOrCreateBuffer(shapeDesc(3), tess, nil)

	// Touch 1 so 2 becomes least recently used.
	c.GetOrCreateBuffer(shapeDesc(1), tess, nil)

	c.Trim()

	calls.Store(0)
	c.GetOrCreateBuffer(shapeDesc(1), tess, nil)
	c.GetOrCreateBuffer(shapeDesc(3), tess, nil)
	if got := calls.Load(); got != 0 {
		t.Error("recently used entries should survive the trim")
	}
	c.GetOrCreateBuffer(shapeDesc(2), tess, nil).VertexBuffer()
	if got := calls.Load(); got != 1 {
		t.Error("least recently used entry should have been evicted")
	}
}

func TestCache_SetMaxSizeShrinkEvicts(t *testing.T) {
	c := newTestCache(t, WithMaxSize(10*120))
	var calls atomic.Int32
	tess := countingTessellator(&calls, 10)

	for i := 0; i < 4; i++ {
		c.GetOrCreateBuffer(shapeDesc(float64(i)), tess, nil)
	}

	c.SetMaxSize(2 * 120)

	if c.MaxSize() != 2*120 {
		t.Errorf("MaxSize = %d, want %d", c.MaxSize(), 2*120)
	}
	if c.EntryCount() != 2 {
		t.Errorf("EntryCount = %d, want 2 after shrink", c.EntryCount())
	}
}

func TestCache_Clear(t *testing.T) {
	c := newTestCache(t)
	var calls atomic.Int32
	tess := countingTessellator(&calls, 4)

	c.GetOrCreateBuffer(shapeDesc(1), tess, nil)
	c.PrecacheShadows(Identity4(), testClip(), ShadowCaster{
		ID:          1,
		Perimeter:   squarePath(0, 0, 10),
		TransformXY: Identity4(),
		TransformZ:  Translate3D(0, 0, 5),
	}, testLight())

	c.Clear()

	if c.EntryCount() != 0 {
		t.Errorf("EntryCount = %d, want 0", c.EntryCount())
	}
	if c.ShadowEntryCount() != 0 {
		t.Errorf("ShadowEntryCount = %d, want 0", c.ShadowEntryCount())
	}
}

// Shadow cache -----------------------------------------------------------

func TestCache_ShadowBuffersLazyPrecache(t *testing.T) {
	c := newTestCache(t)
	caster := ShadowCaster{
		ID:          42,
		Perimeter:   squarePath(0, 0, 20),
		TransformXY: Identity4(),
		TransformZ:  Translate3D(0, 0, 10),
		Opaque:      true,
	}

	if c.ShadowEntryCount() != 0 {
		t.Fatal("shadow cache should start empty")
	}

	ambient, spot := c.ShadowBuffers(Identity4(), testClip(), caster, testLight())

	if ambient == nil || spot == nil {
		t.Fatal("shadow buffers must be non-nil")
	}
	if ambient.Len() == 0 || spot.Len() == 0 {
		t.Error("in-clip opaque caster should cast both shadows")
	}
	if c.ShadowEntryCount() != 1 {
		t.Errorf("ShadowEntryCount = %d, want 1", c.ShadowEntryCount())
	}

	// Second request hits the cached pair.
	a2, s2 := c.ShadowBuffers(Identity4(), testClip(), caster, testLight())
	if a2 != ambient || s2 != spot {
		t.Error("repeated request should return the cached buffers")
	}
}

func TestCache_ShadowKeyIncludesTransform(t *testing.T) {
	c := newTestCache(t)
	caster := ShadowCaster{
		ID:          7,
		Perimeter:   squarePath(0, 0, 20),
		TransformXY: Identity4(),
		TransformZ:  Translate3D(0, 0, 10),
	}

	c.PrecacheShadows(Identity4(), testClip(), caster, testLight())
	c.PrecacheShadows(Translate3D(50, 0, 0), testClip(), caster, testLight())

	if c.ShadowEntryCount() != 2 {
		t.Errorf("ShadowEntryCount = %d, want 2 (transform is part of the key)", c.ShadowEntryCount())
	}
}

func TestCache_PrecacheDeepCopiesPerimeter(t *testing.T) {
	rec := &recordingShadowTessellator{}
	c := newTestCache(t, WithShadowTessellator(rec))
	perimeter := squarePath(0, 0, 10)
	caster := ShadowCaster{
		ID:          1,
		Perimeter:   perimeter,
		TransformXY: Identity4(),
		TransformZ:  Translate3D(0, 0, 5),
	}

	c.PrecacheShadows(Identity4(), testClip(), caster, testLight())

	// Mutating the caller's path after enqueue must not leak into the
	// worker, whenever it happens to run.
	perimeter.Clear()
	perimeter.Rectangle(500, 500, 1, 1)

	c.ShadowBuffers(Identity4(), testClip(), caster, testLight())

	want := NewRect(Pt(0, 0), Pt(10, 10))
	if rec.bounds != want {
		t.Errorf("worker saw bounds %+v, want %+v (snapshot of the original path)", rec.bounds, want)
	}
}

func TestCache_TrimDropsShadowCache(t *testing.T) {
	c := newTestCache(t)
	caster := ShadowCaster{
		ID:          1,
		Perimeter:   squarePath(0, 0, 20),
		TransformXY: Identity4(),
		TransformZ:  Translate3D(0, 0, 10),
	}
	c.ShadowBuffers(Identity4(), testClip(), caster, testLight())

	c.Trim()

	if c.ShadowEntryCount() != 0 {
		t.Errorf("ShadowEntryCount after trim = %d, want 0", c.ShadowEntryCount())
	}
}

// Configuration ----------------------------------------------------------

func TestCache_MaxSizeFromEnv(t *testing.T) {
	t.Setenv(EnvVertexCacheMB, "2")
	c := newTestCache(t)
	if got := c.MaxSize(); got != 2*bytesPerMB {
		t.Errorf("MaxSize = %d, want %d", got, 2*bytesPerMB)
	}
}

func TestCache_MaxSizeEnvMalformed(t *testing.T) {
	for _, value := range []string{"lots", "-3", "0"} {
		t.Setenv(EnvVertexCacheMB, value)
		c := newTestCache(t)
		if got := c.MaxSize(); got != DefaultMaxSizeMB*bytesPerMB {
			t.Errorf("MaxSize with %q = %d, want default %d", value, got, DefaultMaxSizeMB*bytesPerMB)
		}
	}
}
