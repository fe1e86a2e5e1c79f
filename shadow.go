package tess

import (
	"math"

	"golang.org/x/image/math/f32"
)

const (
	// casterRefinementThresholdSquared bounds the squared chord
	// deviation when a caster outline is approximated as a polygon.
	casterRefinementThresholdSquared = 20.0

	// minCasterZ is the minimum height of a caster above the receiving
	// plane. Casters at or below it are lifted so the shadow math never
	// sees a coplanar or inverted caster.
	minCasterZ = 0.1
)

// ShadowLight describes the point light used for spot shadows.
type ShadowLight struct {
	// Center is the light position in draw space.
	Center Vector3
	// Radius is the light's physical radius, controlling penumbra width.
	Radius float64
}

// ShadowCaster describes a shadow-casting shape. All fields are deep
// copied at enqueue time, so the caller may reuse or release the
// perimeter path once PrecacheShadows or ShadowBuffers returns.
type ShadowCaster struct {
	// ID is the opaque caster identity used for cache keying. It is
	// never dereferenced; callers must keep it stable across frames for
	// caching to pay off.
	ID CasterID
	// Perimeter is the closed 2D outline of the caster.
	Perimeter *Path
	// TransformXY maps caster X/Y into draw space. This is the 2D draw
	// transform, which is not generally a valid 3D mapping.
	TransformXY Matrix4
	// TransformZ is a true 3D mapping used only for the Z coordinate.
	TransformZ Matrix4
	// Opaque reports whether the caster fully occludes light.
	Opaque bool
}

// ShadowTessellator produces penumbra geometry from a prepared 3D
// caster polygon. The two routines are independent geometry algorithms
// treated as collaborators of the cache core; only their inputs and
// outputs are contractual. Implementations must return non-nil buffers
// and must not retain or mutate the polygon slice.
type ShadowTessellator interface {
	// AmbientShadow builds the diffuse penumbra.
	AmbientShadow(opaque bool, polygon []Vector3, centroid Vector3,
		casterBounds, clip Rect, maxZ float64) *VertexBuffer

	// SpotShadow builds the point-light penumbra.
	SpotShadow(opaque bool, polygon []Vector3, drawTransform Matrix4,
		light ShadowLight, casterBounds, clip Rect) *VertexBuffer
}

// mapPointFakeZ maps a 2D caster vertex into 3D: Z comes from the
// dedicated Z transform (a true 3D mapping), X/Y from the draw-space
// transform. The two are computed independently because the 2D draw
// transform may carry perspective or skew that is meaningless in 3D.
func mapPointFakeZ(pt Point, transformXY, transformZ Matrix4) Vector3 {
	v := Vector3{X: pt.X, Y: pt.Y, Z: 0}
	v.Z = transformZ.MapZ(v)
	mapped := transformXY.MapPoint(pt)
	v.X = mapped.X
	v.Y = mapped.Y
	return v
}

// tessellateShadows runs the shadow construction pipeline on a worker
// goroutine and returns the ambient and spot penumbra buffers. A
// degenerate caster (empty or zero-area outline) casts nothing: both
// buffers come back empty.
func tessellateShadows(drawTransform Matrix4, clip Rect, caster ShadowCaster,
	light ShadowLight, st ShadowTessellator) *VertexBufferPair {

	empty := func() *VertexBufferPair {
		return &VertexBufferPair{Ambient: NewVertexBuffer(nil), Spot: NewVertexBuffer(nil)}
	}

	// Approximate the caster outline as a 2D polygon.
	outline := caster.Perimeter.OutlineVertices(casterRefinementThresholdSquared)
	if len(outline) == 0 {
		return empty()
	}

	// Downstream shadow math assumes clockwise orientation.
	if !isClockwise(outline) {
		reverseVertices(outline)
	}

	// Map the 2D polygon into 3D, tracking the Z extent.
	polygon := make([]Vector3, len(outline))
	minZ := math.MaxFloat64
	maxZ := -math.MaxFloat64
	for i, pt := range outline {
		polygon[i] = mapPointFakeZ(pt, caster.TransformXY, caster.TransformZ)
		minZ = math.Min(minZ, polygon[i].Z)
		maxZ = math.Max(maxZ, polygon[i].Z)
	}

	// Map the caster centroid the same way; it anchors the shadow.
	centroid := mapPointFakeZ(centroid2d(outline), caster.TransformXY, caster.TransformZ)

	// If the caster touches or crosses the receiving plane, lift it
	// uniformly so the shadow doesn't invert.
	if minZ < minCasterZ {
		lift := minCasterZ - minZ
		for i := range polygon {
			polygon[i].Z += lift
		}
		centroid.Z += lift
		maxZ += lift
	}

	// Caster bounds in draw space, for cheap clip rejection. The
	// projection is orthographic, so Z can be ignored here.
	casterBounds := caster.TransformXY.MapRect(caster.Perimeter.Bounds())

	ambient := st.AmbientShadow(caster.Opaque, polygon, centroid, casterBounds, clip, maxZ)
	spot := st.SpotShadow(caster.Opaque, polygon, drawTransform, light, casterBounds, clip)
	if ambient == nil || spot == nil {
		panic("tess: shadow tessellator produced no buffer")
	}
	return &VertexBufferPair{Ambient: ambient, Spot: spot}
}

// Basic shadow tessellator ---------------------------------------------------

// Tuning constants for the built-in penumbra construction.
const (
	// ambientSpreadPerZ is how far the ambient penumbra extends per
	// unit of caster height.
	ambientSpreadPerZ = 0.5
	// ambientBaseAlpha is the umbra strength of an opaque caster
	// resting just above the plane.
	ambientBaseAlpha = 0.28
	// ambientHeightFalloff attenuates umbra strength with height.
	ambientHeightFalloff = 0.05
	// spotBaseAlpha is the spot umbra strength of an opaque caster.
	spotBaseAlpha = 0.35
	// minLightGap keeps the light-to-caster projection well defined
	// when a caster approaches the light plane.
	minLightGap = 1e-3
)

// BasicShadowTessellator is the built-in ShadowTessellator. It emits a
// triangle strip ring per shadow: a ground-projected umbra loop joined
// to a zero-alpha penumbra loop pushed outward from the shadow anchor.
// Rendering pipelines with higher-fidelity penumbra math plug in their
// own ShadowTessellator via WithShadowTessellator.
type BasicShadowTessellator struct{}

// AmbientShadow builds the diffuse penumbra ring.
func (BasicShadowTessellator) AmbientShadow(opaque bool, polygon []Vector3,
	centroid Vector3, casterBounds, clip Rect, maxZ float64) *VertexBuffer {

	spread := maxZ * ambientSpreadPerZ
	if !casterBounds.Expand(spread).Intersects(clip) {
		return NewVertexBuffer(nil)
	}

	alpha := ambientBaseAlpha / (1 + ambientHeightFalloff*maxZ)
	if !opaque {
		alpha *= 0.5
	}

	anchor := centroid.XY()
	inner := make([]Point, len(polygon))
	outer := make([]Point, len(polygon))
	for i, v := range polygon {
		p := v.XY()
		inner[i] = p
		outer[i] = p.Add(p.Sub(anchor).Normalize().Mul(v.Z * ambientSpreadPerZ))
	}
	return penumbraRing(inner, outer, float32(alpha))
}

// SpotShadow builds the point-light penumbra ring. Each caster vertex
// is projected onto the receiving plane along the ray from the light
// center; the penumbra width grows with the light radius and caster
// height.
func (BasicShadowTessellator) SpotShadow(opaque bool, polygon []Vector3,
	drawTransform Matrix4, light ShadowLight, casterBounds, clip Rect) *VertexBuffer {

	lz := light.Center.Z
	if lz <= minCasterZ {
		// Light at or below the plane casts no meaningful spot shadow.
		return NewVertexBuffer(nil)
	}
	lightGround := light.Center.XY()

	inner := make([]Point, len(polygon))
	outer := make([]Point, len(polygon))
	maxReach := 0.0
	for i, v := range polygon {
		gap := math.Max(lz-v.Z, minLightGap)
		t := lz / gap
		p := v.XY()
		shadow := lightGround.Add(p.Sub(lightGround).Mul(t))
		inner[i] = shadow

		penumbra := light.Radius * v.Z / gap
		outer[i] = shadow.Add(shadow.Sub(lightGround).Normalize().Mul(penumbra))
		maxReach = math.Max(maxReach, shadow.Distance(p)+penumbra)
	}

	if !casterBounds.Expand(maxReach).Intersects(clip) {
		return NewVertexBuffer(nil)
	}

	alpha := spotBaseAlpha
	if !opaque {
		alpha *= 0.5
	}
	return penumbraRing(inner, outer, float32(alpha))
}

// penumbraRing joins an umbra loop and a zero-alpha penumbra loop into
// a closed triangle strip.
func penumbraRing(inner, outer []Point, alpha float32) *VertexBuffer {
	n := len(inner)
	if n == 0 {
		return NewVertexBuffer(nil)
	}

	vertices := make([]Vertex, 0, 2*n+2)
	for i := 0; i <= n; i++ {
		in := inner[i%n]
		out := outer[i%n]
		vertices = append(vertices,
			Vertex{Pos: f32.Vec2{float32(in.X), float32(in.Y)}, Alpha: alpha},
			Vertex{Pos: f32.Vec2{float32(out.X), float32(out.Y)}, Alpha: 0},
		)
	}
	return NewVertexBuffer(vertices)
}
