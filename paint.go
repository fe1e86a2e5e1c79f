package tess

// LineCap specifies the shape of line endpoints.
type LineCap uint8

const (
	// LineCapButt specifies a flat line cap.
	LineCapButt LineCap = iota
	// LineCapRound specifies a rounded line cap.
	LineCapRound
	// LineCapSquare specifies a square line cap.
	LineCapSquare
)

// Style specifies whether a shape is filled, stroked, or both.
type Style uint8

const (
	// StyleFill fills the shape interior.
	StyleFill Style = iota
	// StyleStroke strokes the shape outline.
	StyleStroke
	// StyleStrokeAndFill strokes the outline and fills the interior.
	StyleStrokeAndFill
)

// Paint carries the stroke styling that influences tessellated
// geometry. Only these three fields participate in cache keys; color
// and blending do not change geometry and are out of scope here.
type Paint struct {
	// Cap is the shape of line endpoints. Default: LineCapButt
	Cap LineCap

	// Style selects fill, stroke, or both. Default: StyleFill
	Style Style

	// StrokeWidth is the stroke width in pixels. Default: 1.0
	StrokeWidth float64
}

// NewPaint creates a new Paint with default values.
func NewPaint() *Paint {
	return &Paint{
		Cap:         LineCapButt,
		Style:       StyleFill,
		StrokeWidth: 1.0,
	}
}

// Clone creates a copy of the Paint.
func (p *Paint) Clone() *Paint {
	clone := *p
	return &clone
}
