package tess

import (
	"math"
	"testing"
)

func TestOutlineVertices_Empty(t *testing.T) {
	p := NewPath()

	if pts := p.OutlineVertices(1); pts != nil {
		t.Errorf("empty path should produce no vertices, got %d", len(pts))
	}
}

func TestOutlineVertices_Rectangle(t *testing.T) {
	p := NewPath()
	p.Rectangle(0, 0, 10, 20)

	pts := p.OutlineVertices(1)
	if len(pts) != 4 {
		t.Fatalf("rectangle outline has %d vertices, want 4", len(pts))
	}
	// The closing vertex duplicating the start must be dropped.
	if pts[0] == pts[len(pts)-1] {
		t.Error("outline should not repeat the starting vertex")
	}
}

func TestOutlineVertices_RefinementThreshold(t *testing.T) {
	coarse := NewPath()
	coarse.Circle(0, 0, 100)
	fine := coarse.Clone()

	nCoarse := len(coarse.OutlineVertices(20))
	nFine := len(fine.OutlineVertices(0.01))

	if nCoarse < 4 {
		t.Errorf("coarse circle outline has %d vertices, want >= 4", nCoarse)
	}
	if nFine <= nCoarse {
		t.Errorf("tighter threshold should refine more: fine=%d coarse=%d", nFine, nCoarse)
	}
}

func TestIsClockwise(t *testing.T) {
	// Rectangle() winds clockwise in y-down device coordinates.
	cw := NewPath()
	cw.Rectangle(0, 0, 10, 10)
	if !cw.IsClockwise() {
		t.Error("Rectangle should wind clockwise")
	}

	ccw := NewPath()
	ccw.MoveTo(0, 0)
	ccw.LineTo(0, 10)
	ccw.LineTo(10, 10)
	ccw.LineTo(10, 0)
	ccw.Close()
	if ccw.IsClockwise() {
		t.Error("reversed rectangle should wind counter-clockwise")
	}
}

func TestReverseVertices(t *testing.T) {
	pts := []Point{{X: 1}, {X: 2}, {X: 3}}
	reverseVertices(pts)

	if pts[0].X != 3 || pts[1].X != 2 || pts[2].X != 1 {
		t.Errorf("reverseVertices = %v", pts)
	}
}

func TestCentroid2d_Square(t *testing.T) {
	square := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}

	c := centroid2d(square)
	if math.Abs(c.X-5) > 1e-9 || math.Abs(c.Y-5) > 1e-9 {
		t.Errorf("centroid = %v, want (5, 5)", c)
	}
}

func TestCentroid2d_DegenerateFallsBackToAverage(t *testing.T) {
	// A zero-area polygon (collinear points) uses the vertex average.
	line := []Point{{0, 0}, {4, 0}, {8, 0}}

	c := centroid2d(line)
	if math.Abs(c.X-4) > 1e-9 || math.Abs(c.Y) > 1e-9 {
		t.Errorf("centroid = %v, want (4, 0)", c)
	}
}

func TestPath_Bounds(t *testing.T) {
	p := NewPath()
	p.MoveTo(1, 2)
	p.LineTo(5, -3)
	p.QuadraticTo(10, 4, 6, 6)

	b := p.Bounds()
	want := Rect{Min: Point{X: 1, Y: -3}, Max: Point{X: 10, Y: 6}}
	if b != want {
		t.Errorf("Bounds() = %+v, want %+v", b, want)
	}
}

func TestPath_BoundsEmpty(t *testing.T) {
	p := NewPath()

	if b := p.Bounds(); b != (Rect{}) {
		t.Errorf("empty path bounds = %+v, want zero", b)
	}
}

func TestPath_RoundedRectangleXYClampsRadii(t *testing.T) {
	p := NewPath()
	p.RoundedRectangleXY(0, 0, 10, 10, 50, 50)

	b := p.Bounds()
	if b.Min.X < -1e-9 || b.Min.Y < -1e-9 || b.Max.X > 10+1e-9 || b.Max.Y > 10+1e-9 {
		t.Errorf("over-large radii should clamp to the rectangle, bounds = %+v", b)
	}
}
