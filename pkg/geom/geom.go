// Package geom provides the small set of 2D primitives shared by the
// overlay core: points, axis-aligned rectangles, and the viewport
// transform (pan + uniform zoom) every surface applies.
package geom

import "fmt"

// Point is a position in graph (model) coordinates.
type Point struct {
	X, Y float64
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p translated by -q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p with both coordinates multiplied by f.
func (p Point) Scale(f float64) Point { return Point{p.X * f, p.Y * f} }

// Rect is an axis-aligned rectangle with origin at the top-left corner.
// The zero value is the empty rectangle at the origin.
type Rect struct {
	X, Y, W, H float64
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point { return Point{r.X + r.W/2, r.Y + r.H/2} }

// TopLeft returns the origin corner of the rectangle.
func (r Rect) TopLeft() Point { return Point{r.X, r.Y} }

// Intersects reports whether r and s overlap. Rectangles that merely
// touch at an edge do not intersect.
func (r Rect) Intersects(s Rect) bool {
	if r.Empty() || s.Empty() {
		return false
	}
	return r.X < s.X+s.W && s.X < r.X+r.W &&
		r.Y < s.Y+s.H && s.Y < r.Y+r.H
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Union returns the smallest rectangle covering both r and s.
// The union with an empty rectangle is the other rectangle.
func (r Rect) Union(s Rect) Rect {
	if r.Empty() {
		return s
	}
	if s.Empty() {
		return r
	}
	x0 := min(r.X, s.X)
	y0 := min(r.Y, s.Y)
	x1 := max(r.X+r.W, s.X+s.W)
	y1 := max(r.Y+r.H, s.Y+s.H)
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// Transform is the shared viewport transform: a pan followed by a
// uniform zoom about the origin. It is pushed into every surface by the
// bridge; only the host mutates the values it is built from.
type Transform struct {
	Pan  Point
	Zoom float64
}

// Identity returns the transform that maps every point to itself.
func Identity() Transform {
	return Transform{Zoom: 1}
}

// Apply maps a point from graph coordinates to surface coordinates.
func (t Transform) Apply(p Point) Point {
	return Point{p.X*t.Zoom + t.Pan.X, p.Y*t.Zoom + t.Pan.Y}
}

// Invert maps a point from surface coordinates back to graph coordinates.
// Inverting with zero zoom returns the point unchanged.
func (t Transform) Invert(p Point) Point {
	if t.Zoom == 0 {
		return p
	}
	return Point{(p.X - t.Pan.X) / t.Zoom, (p.Y - t.Pan.Y) / t.Zoom}
}

// ApplyRect maps a rectangle from graph coordinates to surface coordinates.
func (t Transform) ApplyRect(r Rect) Rect {
	tl := t.Apply(Point{r.X, r.Y})
	return Rect{tl.X, tl.Y, r.W * t.Zoom, r.H * t.Zoom}
}

// VisibleRect returns the region of graph coordinates covered by a
// surface of the given size under this transform.
func (t Transform) VisibleRect(w, h float64) Rect {
	tl := t.Invert(Point{0, 0})
	br := t.Invert(Point{w, h})
	return Rect{tl.X, tl.Y, br.X - tl.X, br.Y - tl.Y}
}

// Eq reports whether two transforms are identical.
func (t Transform) Eq(u Transform) bool {
	return t.Pan == u.Pan && t.Zoom == u.Zoom
}

// CSS returns the transform in the 2D affine form applied to DOM and
// vector surface roots: "translate(x,y) scale(z)".
func (t Transform) CSS() string {
	return fmt.Sprintf("translate(%g,%g) scale(%g)", t.Pan.X, t.Pan.Y, t.Zoom)
}
