package tracker

import (
	"math"
)

// Rect represents a bounding box in (x1, y1, x2, y2) corner format with
// x1 < x2 and y1 < y2
type Rect struct {
	X1, Y1, X2, Y2 float32
}

// NewRect creates a new Rect with the given corner coordinates
func NewRect(x1, y1, x2, y2 float32) Rect {
	return Rect{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Width returns the width of the rectangle
func (r Rect) Width() float32 {
	return r.X2 - r.X1
}

// Height returns the height of the rectangle
func (r Rect) Height() float32 {
	return r.Y2 - r.Y1
}

// Area returns the area of the rectangle
func (r Rect) Area() float32 {
	return r.Width() * r.Height()
}

// CenterX returns the x coordinate of the rectangle center
func (r Rect) CenterX() float32 {
	return (r.X1 + r.X2) / 2
}

// CenterY returns the y coordinate of the rectangle center
func (r Rect) CenterY() float32 {
	return (r.Y1 + r.Y2) / 2
}

// Intersection returns the overlap area with another rectangle
func (r Rect) Intersection(other Rect) float32 {

	iw := float32(math.Min(float64(r.X2), float64(other.X2)) -
		math.Max(float64(r.X1), float64(other.X1)))

	if iw <= 0 {
		return 0
	}

	ih := float32(math.Min(float64(r.Y2), float64(other.Y2)) -
		math.Max(float64(r.Y1), float64(other.Y1)))

	if ih <= 0 {
		return 0
	}

	return iw * ih
}

// OverlapFraction returns the overlap area as a fraction of the smaller
// of the two rectangles' areas.  Used for the same-subject collision test
// when two boxes cross.
func (r Rect) OverlapFraction(other Rect) float32 {

	overlap := r.Intersection(other)

	if overlap <= 0 {
		return 0
	}

	smaller := r.Area()

	if a := other.Area(); a < smaller {
		smaller = a
	}

	if smaller <= 0 {
		return 0
	}

	return overlap / smaller
}

// CalcIoU calculates the Intersection over Union with another rectangle
func (r Rect) CalcIoU(other Rect) float32 {

	overlap := r.Intersection(other)

	if overlap <= 0 {
		return 0
	}

	union := r.Area() + other.Area() - overlap

	if union <= 0 {
		return 0
	}

	return overlap / union
}
