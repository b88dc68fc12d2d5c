package model

import "math"

// Point represents a 2D point in page coordinates.
type Point struct {
	X, Y float64
}

// BBox represents a bounding box. Coordinates follow the PDF convention:
// X is the left edge and Y is the bottom edge.
type BBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// NewBBox creates a bounding box from coordinates.
func NewBBox(x, y, width, height float64) BBox {
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// Left returns the left edge X coordinate.
func (b BBox) Left() float64 { return b.X }

// Right returns the right edge X coordinate.
func (b BBox) Right() float64 { return b.X + b.Width }

// Bottom returns the bottom edge Y coordinate.
func (b BBox) Bottom() float64 { return b.Y }

// Top returns the top edge Y coordinate.
func (b BBox) Top() float64 { return b.Y + b.Height }

// Area returns the area of the box.
func (b BBox) Area() float64 { return b.Width * b.Height }

// IsEmpty reports whether the box has non-positive dimensions.
func (b BBox) IsEmpty() bool { return b.Width <= 0 || b.Height <= 0 }

// Intersects reports whether two bounding boxes overlap.
func (b BBox) Intersects(other BBox) bool {
	return !(b.Right() < other.Left() ||
		b.Left() > other.Right() ||
		b.Top() < other.Bottom() ||
		b.Bottom() > other.Top())
}

// Union returns the smallest box containing both boxes.
func (b BBox) Union(other BBox) BBox {
	if b.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return b
	}
	left := math.Min(b.Left(), other.Left())
	bottom := math.Min(b.Bottom(), other.Bottom())
	right := math.Max(b.Right(), other.Right())
	top := math.Max(b.Top(), other.Top())
	return BBox{X: left, Y: bottom, Width: right - left, Height: top - bottom}
}

// OverlapX returns the horizontal overlap between two boxes in points,
// or a negative value when they do not overlap.
func (b BBox) OverlapX(other BBox) float64 {
	return math.Min(b.Right(), other.Right()) - math.Max(b.Left(), other.Left())
}

// OverlapY returns the vertical overlap between two boxes in points,
// or a negative value when they do not overlap.
func (b BBox) OverlapY(other BBox) float64 {
	return math.Min(b.Top(), other.Top()) - math.Max(b.Bottom(), other.Bottom())
}
