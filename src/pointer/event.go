package pointer

import (
	"fmt"

	"selectbox/src/geometry"
)

// Kind identifies a raw pointer notification.
type Kind int

const (
	KindDown Kind = iota
	KindMove
	KindUp
)

func (k Kind) String() string {
	switch k {
	case KindDown:
		return "down"
	case KindMove:
		return "move"
	case KindUp:
		return "up"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is a raw pointer notification in viewport coordinates, as hosts
// queue it between goroutines. Bounds is only meaningful for KindDown.
type Event struct {
	Kind   Kind
	Point  geometry.Point
	Bounds geometry.Bounds
}

// Dispatch routes ev to the matching Bus method.
func (b *Bus) Dispatch(ev Event) {
	switch ev.Kind {
	case KindDown:
		b.Down(ev.Point, ev.Bounds)
	case KindMove:
		b.Move(ev.Point)
	case KindUp:
		b.Up(ev.Point)
	}
}
