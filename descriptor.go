package tess

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// ShapeKind discriminates the shape variant stored in a Description.
type ShapeKind uint8

const (
	// ShapeNone is the zero kind of a default-constructed Description.
	ShapeNone ShapeKind = iota
	// ShapeRoundRect is a rounded rectangle.
	ShapeRoundRect
	// ShapeCircle is a circle.
	ShapeCircle
	// ShapeArc is a circular arc.
	ShapeArc
	// ShapeLines is a set of line segments.
	ShapeLines
	// ShapePoints is a set of points.
	ShapePoints
	// ShapeConvexPath is an arbitrary convex path.
	ShapeConvexPath
)

// String returns a human-readable name for the shape kind.
func (k ShapeKind) String() string {
	switch k {
	case ShapeNone:
		return "None"
	case ShapeRoundRect:
		return "RoundRect"
	case ShapeCircle:
		return "Circle"
	case ShapeArc:
		return "Arc"
	case ShapeLines:
		return "Lines"
	case ShapePoints:
		return "Points"
	case ShapeConvexPath:
		return "ConvexPath"
	default:
		return "Unknown"
	}
}

// shapeSlots is the number of parameter slots in the shape payload.
// Six slots cover the largest variant (round rect: width, height, rx,
// ry, scaleX, scaleY).
const shapeSlots = 6

// ShapeData is the fixed-size shape parameter payload of a Description.
// Each kind assigns its own meaning to the slots; unused slots stay
// zero. Keeping the payload a flat array lets hashing treat it as an
// opaque byte range with no per-kind branching, and makes a
// default-constructed Description bitwise identical to an explicitly
// zeroed one.
type ShapeData [shapeSlots]float64

// Description identifies a cacheable tessellation request. It is an
// immutable value type: two descriptions are equal iff every field is
// equal, and equal descriptions produce equal hashes.
type Description struct {
	// Kind discriminates the shape payload.
	Kind ShapeKind
	// Cap is the paint's line cap.
	Cap LineCap
	// Style is the paint's draw style.
	Style Style
	// StrokeWidth is the paint's stroke width.
	StrokeWidth float64
	// Shape is the kind-specific parameter payload.
	Shape ShapeData
}

// NewDescription creates a Description for the given shape kind,
// capturing the paint fields that influence tessellated geometry.
// A nil paint yields the default paint fields.
func NewDescription(kind ShapeKind, paint *Paint) Description {
	d := Description{Kind: kind, StrokeWidth: 1.0}
	if paint != nil {
		d.Cap = paint.Cap
		d.Style = paint.Style
		d.StrokeWidth = paint.StrokeWidth
	}
	return d
}

// Hash returns a 64-bit digest of the description. The mix is
// order-sensitive over the discriminant, the paint fields, and the raw
// bytes of the shape payload.
func (d Description) Hash() uint64 {
	var buf [3 + 8 + shapeSlots*8]byte
	buf[0] = byte(d.Kind)
	buf[1] = byte(d.Cap)
	buf[2] = byte(d.Style)
	binary.LittleEndian.PutUint64(buf[3:], math.Float64bits(d.StrokeWidth))
	for i, v := range d.Shape {
		binary.LittleEndian.PutUint64(buf[11+i*8:], math.Float64bits(v))
	}
	return xxhash.Sum64(buf[:])
}

// CasterID is an opaque identity token for a shadow-casting shape.
// The cache only compares and hashes it; it is never dereferenced or
// interpreted. Callers typically derive it from a stable scene-node
// identity.
type CasterID uint64

// ShadowDescription identifies a cached shadow tessellation: the
// caster identity plus the 16 entries of the draw transform. Two
// shadow requests collapse to one cache entry iff both match exactly.
type ShadowDescription struct {
	// Caster is the opaque identity of the casting shape.
	Caster CasterID
	// Transform is the draw transform under which the shadow was cast.
	Transform Matrix4
}

// NewShadowDescription creates a ShadowDescription key.
func NewShadowDescription(caster CasterID, drawTransform Matrix4) ShadowDescription {
	return ShadowDescription{Caster: caster, Transform: drawTransform}
}

// Hash returns a 64-bit digest of the shadow description.
func (d ShadowDescription) Hash() uint64 {
	var buf [8 + 16*8]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(d.Caster))
	for i, v := range d.Transform {
		binary.LittleEndian.PutUint64(buf[8+i*8:], math.Float64bits(v))
	}
	return xxhash.Sum64(buf[:])
}
