package geometry

import (
	"encoding/json"
	"fmt"
)

// DirectionX is the horizontal drag direction.
type DirectionX int

const (
	LeftToRight DirectionX = iota
	RightToLeft
)

func (d DirectionX) String() string {
	if d == LeftToRight {
		return "leftToRight"
	}
	return "rightToLeft"
}

func (d DirectionX) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *DirectionX) UnmarshalText(b []byte) error {
	switch string(b) {
	case "leftToRight":
		*d = LeftToRight
	case "rightToLeft":
		*d = RightToLeft
	default:
		return fmt.Errorf("unknown x direction %q", b)
	}
	return nil
}

// DirectionY is the vertical drag direction.
type DirectionY int

const (
	TopToBottom DirectionY = iota
	BottomToTop
)

func (d DirectionY) String() string {
	if d == TopToBottom {
		return "topToBottom"
	}
	return "bottomToTop"
}

func (d DirectionY) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *DirectionY) UnmarshalText(b []byte) error {
	switch string(b) {
	case "topToBottom":
		*d = TopToBottom
	case "bottomToTop":
		*d = BottomToTop
	default:
		return fmt.Errorf("unknown y direction %q", b)
	}
	return nil
}

// Result is the geometry of one completed drag. It is a value type; holders
// get their own copy.
type Result struct {
	Left        float64    `json:"left"`
	Top         float64    `json:"top"`
	Width       float64    `json:"width"`
	Height      float64    `json:"height"`
	CenterX     float64    `json:"centerX"`
	CenterY     float64    `json:"centerY"`
	TopLeft     Point      `json:"topLeft"`
	TopRight    Point      `json:"topRight"`
	BottomLeft  Point      `json:"bottomLeft"`
	BottomRight Point      `json:"bottomRight"`
	DirectionX  DirectionX `json:"directionX"`
	DirectionY  DirectionY `json:"directionY"`
}

// DeriveResult builds the selection result for a drag that started at origin
// and was released at release. r is the selected rectangle, normally
// NormalizedRect(origin, release) or its clamped counterpart; directions
// come from origin and release alone.
//
// Directions use a strict comparison: a zero-length axis reports
// RightToLeft / BottomToTop.
func DeriveResult(origin, release Point, r Rect) Result {
	dx := RightToLeft
	if origin.X < release.X {
		dx = LeftToRight
	}
	dy := BottomToTop
	if origin.Y < release.Y {
		dy = TopToBottom
	}
	return Result{
		Left:        r.Left,
		Top:         r.Top,
		Width:       r.Width,
		Height:      r.Height,
		CenterX:     r.Left + r.Width/2,
		CenterY:     r.Top + r.Height/2,
		TopLeft:     Point{X: r.Left, Y: r.Top},
		TopRight:    Point{X: r.Right(), Y: r.Top},
		BottomLeft:  Point{X: r.Left, Y: r.Bottom()},
		BottomRight: Point{X: r.Right(), Y: r.Bottom()},
		DirectionX:  dx,
		DirectionY:  dy,
	}
}

// Rect returns the result's rectangle.
func (r Result) Rect() Rect {
	return Rect{Left: r.Left, Top: r.Top, Width: r.Width, Height: r.Height}
}

// String is a compact one-line form used in logs and the status line.
func (r Result) String() string {
	return fmt.Sprintf("%gx%g at (%g,%g) %s/%s", r.Width, r.Height, r.Left, r.Top, r.DirectionX, r.DirectionY)
}

// JSON renders the result as indented JSON.
func (r Result) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
