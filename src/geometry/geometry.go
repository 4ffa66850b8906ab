// Package geometry holds the pure rectangle math behind a drag selection.
//
// All coordinates are float64. Points are surface-local: the origin is the
// top-left corner of the interactive surface, x grows right and y grows down.
package geometry

// Point is a surface-local coordinate pair.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds is the absolute position and size of the surface in viewport
// (or screen) coordinates.
type Bounds struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether the raw viewport point lies on the surface,
// edges included.
func (b Bounds) Contains(raw Point) bool {
	return raw.X >= b.Left && raw.X <= b.Left+b.Width &&
		raw.Y >= b.Top && raw.Y <= b.Top+b.Height
}

// Rect is a normalized rectangle: Width and Height are never negative.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Right() float64  { return r.Left + r.Width }
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width == 0 || r.Height == 0 }

// Offset returns r translated by (dx, dy).
func (r Rect) Offset(dx, dy float64) Rect {
	r.Left += dx
	r.Top += dy
	return r
}

// ToSurfaceLocal converts a raw viewport coordinate into surface space.
func ToSurfaceLocal(raw Point, b Bounds) Point {
	return Point{X: raw.X - b.Left, Y: raw.Y - b.Top}
}

// Clamp pins p into [0, b.Width] x [0, b.Height].
func Clamp(p Point, b Bounds) Point {
	return Point{X: clamp(p.X, 0, b.Width), Y: clamp(p.Y, 0, b.Height)}
}

// NormalizedRect returns the rectangle spanned by origin and current,
// regardless of drag direction.
func NormalizedRect(origin, current Point) Rect {
	left := origin.X
	if current.X < origin.X {
		left = current.X
	}
	top := origin.Y
	if current.Y < origin.Y {
		top = current.Y
	}
	return Rect{
		Left:   left,
		Top:    top,
		Width:  abs(current.X - origin.X),
		Height: abs(current.Y - origin.Y),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
