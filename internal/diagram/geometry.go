package diagram

import "fmt"

// Point is a position on the canvas grid.
type Point struct {
	X, Y int
}

// Add returns p translated by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Neg returns -p.
func (p Point) Neg() Point {
	return Point{X: -p.X, Y: -p.Y}
}

// IsZero reports whether p is the origin.
func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

// String returns "(x,y)".
func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Bounds is an axis-aligned rectangle.
type Bounds struct {
	X, Y          int
	Width, Height int
}

// Origin returns the top-left corner.
func (b Bounds) Origin() Point {
	return Point{X: b.X, Y: b.Y}
}

// Center returns the center point, rounded down.
func (b Bounds) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Translate returns b moved by d.
func (b Bounds) Translate(d Point) Bounds {
	b.X += d.X
	b.Y += d.Y
	return b
}

// Contains reports whether p lies inside b.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.X && p.X < b.X+b.Width && p.Y >= b.Y && p.Y < b.Y+b.Height
}

// Empty reports whether b has no area.
func (b Bounds) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// String returns "x,y wxh".
func (b Bounds) String() string {
	return fmt.Sprintf("%d,%d %dx%d", b.X, b.Y, b.Width, b.Height)
}

// Route returns the waypoints of a connection from src to tgt: a straight
// segment between the centers when they are aligned, otherwise one elbow.
func Route(src, tgt Bounds) []Point {
	a, b := src.Center(), tgt.Center()
	if a.X == b.X || a.Y == b.Y {
		return []Point{a, b}
	}
	return []Point{a, {X: b.X, Y: a.Y}, b}
}

// Midpoint returns the point halfway along the first and last waypoint.
func Midpoint(waypoints []Point) Point {
	if len(waypoints) == 0 {
		return Point{}
	}
	first, last := waypoints[0], waypoints[len(waypoints)-1]
	return Point{X: (first.X + last.X) / 2, Y: (first.Y + last.Y) / 2}
}
