package tess

import "math"

// OutlineVertices approximates the path outline as a polygon of 2D
// vertices. Curves are subdivided until the squared chord deviation
// falls below thresholdSquared. A trailing vertex that duplicates the
// first (from a closed subpath) is dropped so the result is a proper
// polygon. Returns nil for an empty path.
func (p *Path) OutlineVertices(thresholdSquared float64) []Point {
	if thresholdSquared <= 0 {
		thresholdSquared = outlineThresholdSquared
	}

	var points []Point
	var current Point

	for _, elem := range p.elements {
		switch e := elem.(type) {
		case MoveTo:
			current = e.Point
			points = append(points, current)

		case LineTo:
			current = e.Point
			points = append(points, current)

		case QuadTo:
			flattenQuadratic(current, e.Control, e.Point, thresholdSquared, &points)
			current = e.Point

		case CubicTo:
			flattenCubic(current, e.Control1, e.Control2, e.Point, thresholdSquared, &points)
			current = e.Point

		case Close:
			if len(points) > 0 {
				points = append(points, points[0])
				current = points[0]
			}
		}
	}

	// Drop a closing vertex that duplicates the start.
	if len(points) > 1 && points[0] == points[len(points)-1] {
		points = points[:len(points)-1]
	}
	return points
}

// flattenQuadratic recursively subdivides a quadratic Bezier curve.
func flattenQuadratic(p0, p1, p2 Point, thresholdSquared float64, points *[]Point) {
	if distanceToLineSquared(p1, p0, p2) < thresholdSquared {
		// Curve is flat enough, add the endpoint
		*points = append(*points, p2)
		return
	}

	// Subdivide the curve
	q0 := p0.Lerp(p1, 0.5)
	q1 := p1.Lerp(p2, 0.5)
	q2 := q0.Lerp(q1, 0.5)

	flattenQuadratic(p0, q0, q2, thresholdSquared, points)
	flattenQuadratic(q2, q1, p2, thresholdSquared, points)
}

// flattenCubic recursively subdivides a cubic Bezier curve using
// de Casteljau's algorithm.
func flattenCubic(p0, p1, p2, p3 Point, thresholdSquared float64, points *[]Point) {
	d1 := distanceToLineSquared(p1, p0, p3)
	d2 := distanceToLineSquared(p2, p0, p3)

	if math.Max(d1, d2) < thresholdSquared {
		// Curve is flat enough, add the endpoint
		*points = append(*points, p3)
		return
	}

	q0 := p0.Lerp(p1, 0.5)
	q1 := p1.Lerp(p2, 0.5)
	q2 := p2.Lerp(p3, 0.5)
	r0 := q0.Lerp(q1, 0.5)
	r1 := q1.Lerp(q2, 0.5)
	s := r0.Lerp(r1, 0.5)

	flattenCubic(p0, q0, r0, s, thresholdSquared, points)
	flattenCubic(s, r1, q2, p3, thresholdSquared, points)
}

// distanceToLineSquared calculates the squared perpendicular distance
// from point p to line segment (a, b).
func distanceToLineSquared(p, a, b Point) float64 {
	ab := b.Sub(a)
	abLenSq := ab.LengthSquared()

	if abLenSq < 1e-20 {
		// Line segment is a point
		return p.DistanceSquared(a)
	}

	// Project p onto the line
	t := p.Sub(a).Dot(ab) / abLenSq
	if t < 0 {
		return p.DistanceSquared(a)
	}
	if t > 1 {
		return p.DistanceSquared(b)
	}

	closest := a.Add(ab.Mul(t))
	return p.DistanceSquared(closest)
}

// polygonArea2 returns twice the signed area of a polygon. With y-down
// device coordinates a positive value means the polygon winds
// clockwise on screen.
func polygonArea2(points []Point) float64 {
	var area2 float64
	for i := range points {
		j := (i + 1) % len(points)
		area2 += points[i].Cross(points[j])
	}
	return area2
}

// isClockwise reports whether the polygon winds clockwise in y-down
// device coordinates.
func isClockwise(points []Point) bool {
	return polygonArea2(points) > 0
}

// IsClockwise reports whether the path's outline winds clockwise in
// y-down device coordinates.
func (p *Path) IsClockwise() bool {
	return isClockwise(p.OutlineVertices(outlineThresholdSquared))
}

// reverseVertices reverses the polygon vertex order in place.
func reverseVertices(points []Point) {
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
}

// centroid2d returns the area-weighted centroid of a polygon. For a
// degenerate polygon with near-zero area it falls back to the vertex
// average.
func centroid2d(points []Point) Point {
	var sumX, sumY, area2 float64
	for i := range points {
		j := (i + 1) % len(points)
		cross := points[i].Cross(points[j])
		area2 += cross
		sumX += (points[i].X + points[j].X) * cross
		sumY += (points[i].Y + points[j].Y) * cross
	}

	if math.Abs(area2) < 1e-9 {
		var avg Point
		for _, pt := range points {
			avg = avg.Add(pt)
		}
		return avg.Mul(1 / float64(len(points)))
	}
	return Point{X: sumX / (3 * area2), Y: sumY / (3 * area2)}
}
