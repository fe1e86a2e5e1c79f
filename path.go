package tess

import "math"

// PathElement represents a single element in a path.
type PathElement interface {
	isPathElement()
}

// MoveTo moves to a point without drawing.
type MoveTo struct {
	Point Point
}

func (MoveTo) isPathElement() {}

// LineTo draws a line to a point.
type LineTo struct {
	Point Point
}

func (LineTo) isPathElement() {}

// QuadTo draws a quadratic Bezier curve.
type QuadTo struct {
	Control Point
	Point   Point
}

func (QuadTo) isPathElement() {}

// CubicTo draws a cubic Bezier curve.
type CubicTo struct {
	Control1 Point
	Control2 Point
	Point    Point
}

func (CubicTo) isPathElement() {}

// Close closes the current subpath.
type Close struct{}

func (Close) isPathElement() {}

// Path represents a vector path. Caster outlines and shape perimeters
// are described as paths before tessellation.
type Path struct {
	elements []PathElement
	start    Point // Starting point of current subpath
	current  Point // Current point
}

// NewPath creates a new empty path.
func NewPath() *Path {
	return &Path{
		elements: make([]PathElement, 0, 16),
	}
}

// MoveTo moves to a point without drawing.
func (p *Path) MoveTo(x, y float64) {
	pt := Point{X: x, Y: y}
	p.elements = append(p.elements, MoveTo{Point: pt})
	p.start = pt
	p.current = pt
}

// LineTo draws a line to a point.
func (p *Path) LineTo(x, y float64) {
	pt := Point{X: x, Y: y}
	p.elements = append(p.elements, LineTo{Point: pt})
	p.current = pt
}

// QuadraticTo draws a quadratic Bezier curve.
func (p *Path) QuadraticTo(cx, cy, x, y float64) {
	ctrl := Point{X: cx, Y: cy}
	pt := Point{X: x, Y: y}
	p.elements = append(p.elements, QuadTo{Control: ctrl, Point: pt})
	p.current = pt
}

// CubicTo draws a cubic Bezier curve.
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	ctrl1 := Point{X: c1x, Y: c1y}
	ctrl2 := Point{X: c2x, Y: c2y}
	pt := Point{X: x, Y: y}
	p.elements = append(p.elements, CubicTo{Control1: ctrl1, Control2: ctrl2, Point: pt})
	p.current = pt
}

// Close closes the current subpath.
func (p *Path) Close() {
	p.elements = append(p.elements, Close{})
	p.current = p.start
}

// Clear removes all elements from the path.
func (p *Path) Clear() {
	p.elements = p.elements[:0]
	p.start = Point{}
	p.current = Point{}
}

// Elements returns the path elements.
func (p *Path) Elements() []PathElement {
	return p.elements
}

// IsEmpty returns true if the path has no elements.
func (p *Path) IsEmpty() bool {
	return len(p.elements) == 0
}

// Transform returns a new path with the transformation applied.
func (p *Path) Transform(m Matrix) *Path {
	result := NewPath()
	for _, elem := range p.elements {
		switch e := elem.(type) {
		case MoveTo:
			pt := m.TransformPoint(e.Point)
			result.MoveTo(pt.X, pt.Y)
		case LineTo:
			pt := m.TransformPoint(e.Point)
			result.LineTo(pt.X, pt.Y)
		case QuadTo:
			ctrl := m.TransformPoint(e.Control)
			pt := m.TransformPoint(e.Point)
			result.QuadraticTo(ctrl.X, ctrl.Y, pt.X, pt.Y)
		case CubicTo:
			ctrl1 := m.TransformPoint(e.Control1)
			ctrl2 := m.TransformPoint(e.Control2)
			pt := m.TransformPoint(e.Point)
			result.CubicTo(ctrl1.X, ctrl1.Y, ctrl2.X, ctrl2.Y, pt.X, pt.Y)
		case Close:
			result.Close()
		}
	}
	return result
}

// Bounds returns the axis-aligned bounds of the path's points,
// including curve control points (a cheap conservative bound, in the
// manner of Skia's getBounds). Returns the zero Rect for an empty path.
func (p *Path) Bounds() Rect {
	first := true
	var bounds Rect
	grow := func(pt Point) {
		if first {
			bounds = Rect{Min: pt, Max: pt}
			first = false
			return
		}
		bounds.Min.X = math.Min(bounds.Min.X, pt.X)
		bounds.Min.Y = math.Min(bounds.Min.Y, pt.Y)
		bounds.Max.X = math.Max(bounds.Max.X, pt.X)
		bounds.Max.Y = math.Max(bounds.Max.Y, pt.Y)
	}
	for _, elem := range p.elements {
		switch e := elem.(type) {
		case MoveTo:
			grow(e.Point)
		case LineTo:
			grow(e.Point)
		case QuadTo:
			grow(e.Control)
			grow(e.Point)
		case CubicTo:
			grow(e.Control1)
			grow(e.Control2)
			grow(e.Point)
		}
	}
	return bounds
}

// Rectangle adds a rectangle to the path.
func (p *Path) Rectangle(x, y, w, h float64) {
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.Close()
}

// Circle adds a circle to the path using cubic Bezier curves.
func (p *Path) Circle(cx, cy, r float64) {
	// Magic constant for circle approximation with cubic Beziers
	const k = 0.5522847498307936 // 4/3 * (sqrt(2) - 1)
	offset := r * k

	p.MoveTo(cx+r, cy)
	p.CubicTo(cx+r, cy+offset, cx+offset, cy+r, cx, cy+r)
	p.CubicTo(cx-offset, cy+r, cx-r, cy+offset, cx-r, cy)
	p.CubicTo(cx-r, cy-offset, cx-offset, cy-r, cx, cy-r)
	p.CubicTo(cx+offset, cy-r, cx+r, cy-offset, cx+r, cy)
	p.Close()
}

// RoundedRectangle adds a rectangle with rounded corners of radius r.
func (p *Path) RoundedRectangle(x, y, w, h, r float64) {
	p.RoundedRectangleXY(x, y, w, h, r, r)
}

// RoundedRectangleXY adds a rectangle with elliptical corners of radii
// rx and ry. The radii are clamped to half the rectangle dimensions.
func (p *Path) RoundedRectangleXY(x, y, w, h, rx, ry float64) {
	rx = math.Min(math.Max(rx, 0), w/2)
	ry = math.Min(math.Max(ry, 0), h/2)

	const k = 0.5522847498307936
	ox := rx * k
	oy := ry * k

	p.MoveTo(x+rx, y)
	p.LineTo(x+w-rx, y)
	p.CubicTo(x+w-rx+ox, y, x+w, y+ry-oy, x+w, y+ry)
	p.LineTo(x+w, y+h-ry)
	p.CubicTo(x+w, y+h-ry+oy, x+w-rx+ox, y+h, x+w-rx, y+h)
	p.LineTo(x+rx, y+h)
	p.CubicTo(x+rx-ox, y+h, x, y+h-ry+oy, x, y+h-ry)
	p.LineTo(x, y+ry)
	p.CubicTo(x, y+ry-oy, x+rx-ox, y, x+rx, y)
	p.Close()
}

// Clone creates a deep copy of the path.
func (p *Path) Clone() *Path {
	result := NewPath()
	result.elements = make([]PathElement, len(p.elements))
	copy(result.elements, p.elements)
	result.start = p.start
	result.current = p.current
	return result
}
