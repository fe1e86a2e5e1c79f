package tess

import "math"

// Matrix represents a 2D affine transformation matrix.
// It uses a 2x3 matrix in row-major order:
//
//	| a  b  c |
//	| d  e  f |
//
// This represents the transformation:
//
//	x' = a*x + b*y + c
//	y' = d*x + e*y + f
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transformation matrix.
func Identity() Matrix {
	return Matrix{
		A: 1, B: 0, C: 0,
		D: 0, E: 1, F: 0,
	}
}

// Translate creates a translation matrix.
func Translate(x, y float64) Matrix {
	return Matrix{
		A: 1, B: 0, C: x,
		D: 0, E: 1, F: y,
	}
}

// Scale creates a scaling matrix.
func Scale(x, y float64) Matrix {
	return Matrix{
		A: x, B: 0, C: 0,
		D: 0, E: y, F: 0,
	}
}

// Rotate creates a rotation matrix (angle in radians).
func Rotate(angle float64) Matrix {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Matrix{
		A: cos, B: -sin, C: 0,
		D: sin, E: cos, F: 0,
	}
}

// Multiply multiplies two matrices (m * other).
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// TransformPoint applies the transformation to a point.
func (m Matrix) TransformPoint(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}

// Matrix4 represents a 3D transformation matrix as 16 values in
// row-major order:
//
//	| m0  m1  m2  m3  |
//	| m4  m5  m6  m7  |
//	| m8  m9  m10 m11 |
//	| m12 m13 m14 m15 |
//
// Matrix4 is a comparable value type, so it can be embedded directly in
// cache keys.
type Matrix4 [16]float64

// Identity4 returns the 3D identity transformation matrix.
func Identity4() Matrix4 {
	return Matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate3D creates a 3D translation matrix.
func Translate3D(x, y, z float64) Matrix4 {
	m := Identity4()
	m[3] = x
	m[7] = y
	m[11] = z
	return m
}

// Scale3D creates a 3D scaling matrix.
func Scale3D(x, y, z float64) Matrix4 {
	m := Identity4()
	m[0] = x
	m[5] = y
	m[10] = z
	return m
}

// Multiply multiplies two matrices (m * other).
func (m Matrix4) Multiply(other Matrix4) Matrix4 {
	var out Matrix4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[row*4+k] * other[k*4+col]
			}
			out[row*4+col] = sum
		}
	}
	return out
}

// MapPoint applies the transformation to a 2D point at z=0,
// ignoring perspective. This is the draw-space mapping used for the
// X/Y coordinates of shadow casters.
func (m Matrix4) MapPoint(p Point) Point {
	return Point{
		X: m[0]*p.X + m[1]*p.Y + m[3],
		Y: m[4]*p.X + m[5]*p.Y + m[7],
	}
}

// MapZ maps a 3D point through the matrix and returns only the
// resulting Z coordinate.
func (m Matrix4) MapZ(v Vector3) float64 {
	return m[8]*v.X + m[9]*v.Y + m[10]*v.Z + m[11]
}

// MapRect transforms an axis-aligned rectangle and returns the
// axis-aligned bounds of the result.
func (m Matrix4) MapRect(r Rect) Rect {
	corners := [4]Point{
		r.Min,
		{X: r.Max.X, Y: r.Min.Y},
		r.Max,
		{X: r.Min.X, Y: r.Max.Y},
	}
	out := NewRect(m.MapPoint(corners[0]), m.MapPoint(corners[1]))
	out = out.Union(NewRect(m.MapPoint(corners[2]), m.MapPoint(corners[3])))
	return out
}

// ScaleFactors returns the approximate X and Y scale factors of the
// draw-space mapping, used to pick tessellation detail. Degenerate
// factors (zero, NaN, Inf) fall back to 1.
func (m Matrix4) ScaleFactors() (sx, sy float64) {
	sx = math.Hypot(m[0], m[4])
	sy = math.Hypot(m[1], m[5])
	if sx == 0 || math.IsNaN(sx) || math.IsInf(sx, 0) {
		sx = 1
	}
	if sy == 0 || math.IsNaN(sy) || math.IsInf(sy, 0) {
		sy = 1
	}
	return sx, sy
}
