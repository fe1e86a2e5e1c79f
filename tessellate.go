package tess

import "golang.org/x/image/math/f32"

// outlineThresholdSquared is the squared chord deviation bound for
// shape outline approximation (a quarter pixel).
const outlineThresholdSquared = 0.25

// Tessellator converts a Description into renderable geometry. It runs
// on a processor worker goroutine, so it must not touch caller-owned
// mutable state; the description and paint it receives are private
// copies. It must return a non-nil buffer — degenerate shapes
// tessellate to an empty buffer, not nil.
//
// The concrete triangle-producing algorithms are collaborators outside
// this core; the built-in tessellators approximate shape outlines as
// vertex loops, which is enough for caching semantics and tests.
type Tessellator func(desc Description, paint *Paint) *VertexBuffer

// Slot meanings of the ShapeData payload for the built-in kinds.
const (
	slotWidth  = 0
	slotHeight = 1
	slotRx     = 2
	slotRy     = 3
	slotRadius = 0
	// slotScaleX and slotScaleY hold the X/Y tessellation scale
	// factors extracted from the draw transform. Scale changes detail,
	// so it is part of the cache key for every shape kind.
	slotScaleX = 4
	slotScaleY = 5
)

// tessellateRoundRect is the built-in tessellator for ShapeRoundRect.
// For stroke-and-fill paints the rectangle and corner radii are outset
// by half the stroke width so the outline covers the stroked extent.
func tessellateRoundRect(desc Description, paint *Paint) *VertexBuffer {
	x, y := 0.0, 0.0
	w := desc.Shape[slotWidth]
	h := desc.Shape[slotHeight]
	rx := desc.Shape[slotRx]
	ry := desc.Shape[slotRy]
	if paint.Style == StyleStrokeAndFill {
		outset := paint.StrokeWidth / 2
		x -= outset
		y -= outset
		w += 2 * outset
		h += 2 * outset
		rx += outset
		ry += outset
	}

	path := NewPath()
	path.RoundedRectangleXY(x, y, w, h, rx, ry)
	return tessellateOutline(path, desc.Shape[slotScaleX], desc.Shape[slotScaleY])
}

// tessellateCircle is the built-in tessellator for ShapeCircle.
func tessellateCircle(desc Description, paint *Paint) *VertexBuffer {
	r := desc.Shape[slotRadius]
	if paint.Style == StyleStrokeAndFill {
		r += paint.StrokeWidth / 2
	}
	if r <= 0 {
		return NewVertexBuffer(nil)
	}

	path := NewPath()
	path.Circle(0, 0, r)
	return tessellateOutline(path, desc.Shape[slotScaleX], desc.Shape[slotScaleY])
}

// tessellateOutline flattens the path outline at the device scale and
// emits the vertices in path coordinates. Flattening the scaled path
// picks subdivision detail appropriate for the final on-screen size;
// mapping back keeps the buffer reusable under translation.
func tessellateOutline(path *Path, sx, sy float64) *VertexBuffer {
	if sx <= 0 {
		sx = 1
	}
	if sy <= 0 {
		sy = 1
	}

	points := path.Transform(Scale(sx, sy)).OutlineVertices(outlineThresholdSquared)
	if len(points) == 0 {
		return NewVertexBuffer(nil)
	}

	vertices := make([]Vertex, len(points))
	for i, pt := range points {
		vertices[i] = Vertex{
			Pos:   f32.Vec2{float32(pt.X / sx), float32(pt.Y / sy)},
			Alpha: 1,
		}
	}
	return NewVertexBuffer(vertices)
}
