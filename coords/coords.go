// Package coords holds the page-space geometry shared by links, pages and
// the layout engine: affine matrices, points and rectangles.
package coords

import (
	"errors"
	"math"
)

// ErrSingular is returned when a matrix has no inverse.
var ErrSingular = errors.New("matrix singular")

// Matrix is an affine transform [a b c d e f] mapping (x, y) to
// (a*x + c*y + e, b*x + d*y + f).
type Matrix [6]float64

func Identity() Matrix { return Matrix{1, 0, 0, 1, 0, 0} }

// Multiply returns the transform that applies m first and then o.
func (m Matrix) Multiply(o Matrix) Matrix {
	a, b, c, d, e, f := m[0], m[1], m[2], m[3], m[4], m[5]
	return Matrix{
		a*o[0] + b*o[2], a*o[1] + b*o[3],
		c*o[0] + d*o[2], c*o[1] + d*o[3],
		e*o[0] + f*o[2] + o[4], e*o[1] + f*o[3] + o[5],
	}
}

type Point struct{ X, Y float64 }

func (m Matrix) Transform(p Point) Point {
	x := m[0]*p.X + m[2]*p.Y + m[4]
	y := m[1]*p.X + m[3]*p.Y + m[5]
	return Point{X: x, Y: y}
}

// Inverse fails with ErrSingular for transforms that collapse an axis, such
// as a zero scale.
func (m Matrix) Inverse() (Matrix, error) {
	a, b, c, d, e, f := m[0], m[1], m[2], m[3], m[4], m[5]
	det := a*d - b*c
	if math.Abs(det) < 1e-10 {
		return Matrix{}, ErrSingular
	}
	inv := 1 / det
	return Matrix{
		d * inv, -b * inv,
		-c * inv, a * inv,
		(c*f - d*e) * inv, (b*e - a*f) * inv,
	}, nil
}

// TransformRect maps r through m and returns the axis-aligned box around
// the four transformed corners.
func (m Matrix) TransformRect(r Rect) Rect {
	corners := [4]Point{
		m.Transform(Point{r.Left, r.Top}),
		m.Transform(Point{r.Right, r.Top}),
		m.Transform(Point{r.Left, r.Bottom}),
		m.Transform(Point{r.Right, r.Bottom}),
	}
	out := Rect{Left: corners[0].X, Top: corners[0].Y, Right: corners[0].X, Bottom: corners[0].Y}
	for _, c := range corners[1:] {
		out.Left = math.Min(out.Left, c.X)
		out.Right = math.Max(out.Right, c.X)
		out.Top = math.Min(out.Top, c.Y)
		out.Bottom = math.Max(out.Bottom, c.Y)
	}
	return out
}

func Translate(tx, ty float64) Matrix { return Matrix{1, 0, 0, 1, tx, ty} }

func Scale(sx, sy float64) Matrix { return Matrix{sx, 0, 0, sy, 0, 0} }

// Rotate turns by angle radians, clockwise on screen because y grows
// downward in page space.
func Rotate(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	return Matrix{cos, sin, -sin, cos, 0, 0}
}

// QuarterTurn rotates a w by h page clockwise by q quarter turns and shifts
// the result back so its top-left corner sits at the origin. Negative q
// turns counter-clockwise.
func QuarterTurn(q int, w, h float64) Matrix {
	m := Rotate(float64(q) * math.Pi / 2)
	// Sincos leaves residue like 6e-17 where the exact value is 0.
	for i := 0; i < 4; i++ {
		m[i] = math.Round(m[i])
	}
	box := m.TransformRect(Rect{Right: w, Bottom: h})
	return m.Multiply(Translate(-box.Left, -box.Top))
}
