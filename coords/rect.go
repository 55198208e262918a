package coords

import "math"

// Rect is an axis-aligned rectangle in page space with the origin at the
// top-left corner and y growing downward. Left <= Right and Top <= Bottom
// hold for every Rect produced by this package.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// NewRect builds a rectangle from two opposite corners in any order.
func NewRect(left, top, right, bottom float64) Rect {
	return Rect{
		Left:   math.Min(left, right),
		Top:    math.Min(top, bottom),
		Right:  math.Max(left, right),
		Bottom: math.Max(top, bottom),
	}
}

// FromPDF converts a PDF rectangle [llx lly urx ury] (origin bottom-left)
// into top-left page space for a page of the given height.
func FromPDF(llx, lly, urx, ury, pageHeight float64) Rect {
	return NewRect(llx, pageHeight-ury, urx, pageHeight-lly)
}

// Normalize swaps inverted edges.
func (r Rect) Normalize() Rect { return NewRect(r.Left, r.Top, r.Right, r.Bottom) }

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Empty reports whether r has zero area.
func (r Rect) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Contains reports whether p lies in r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// ContainsRect reports whether o lies entirely inside r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.Left >= r.Left && o.Right <= r.Right && o.Top >= r.Top && o.Bottom <= r.Bottom
}

// Intersects reports whether r and o share at least one point.
func (r Rect) Intersects(o Rect) bool {
	return !(o.Left > r.Right || o.Right < r.Left || o.Top > r.Bottom || o.Bottom < r.Top)
}

func (r Rect) Union(o Rect) Rect {
	return Rect{
		Left:   math.Min(r.Left, o.Left),
		Top:    math.Min(r.Top, o.Top),
		Right:  math.Max(r.Right, o.Right),
		Bottom: math.Max(r.Bottom, o.Bottom),
	}
}

func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}
