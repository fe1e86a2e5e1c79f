// Package tess provides an asynchronous, byte-budgeted tessellation cache.
//
// # Overview
//
// tess sits between a rendering front end and a geometry engine. The front
// end asks for the vertex buffer of a shape (or the shadow geometry of a
// caster) every frame; tess answers from an LRU cache and schedules the
// actual tessellation math on a pool of background workers so that repeated
// requests never recompute.
//
// # Quick Start
//
//	import "github.com/gogpu/tess"
//
//	cache := tess.New()
//
//	// First call enqueues a background tessellation task and returns a
//	// handle; the handle blocks on first access to the result.
//	buf := cache.RoundRect(tess.Identity4(), 100, 50, 10, 10, nil)
//
//	// Second identical call is answered from the cache.
//	buf = cache.RoundRect(tess.Identity4(), 100, 50, 10, 10, nil)
//
// # Architecture
//
// The library is organized into:
//   - Public API: Cache, Description, Buffer, VertexBuffer, Path, Paint
//   - internal/lru: recency-ordered map backing both caches
//   - internal/task: one-shot futures and the worker pool resolving them
//
// Shape tessellation requests are keyed by a Description (shape kind, a few
// paint fields, and the shape parameters); shadow requests are keyed by an
// opaque caster identity plus the draw transform. Creation and lookup are a
// single critical section, so at most one task is ever in flight per key.
//
// The vertex buffer cache is bounded by a byte budget (default 16 MB,
// overridable via the TESS_VERTEX_CACHE_MB environment variable); Trim
// evicts least-recently-used buffers until the budget holds. Shadow entries
// are frame-scoped and discarded wholesale on every Trim.
package tess
