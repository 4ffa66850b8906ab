package pointer

import (
	"maps"
	"slices"

	"selectbox/src/geometry"
)

// Bus is an in-process Source. It is not safe for concurrent use: all calls
// must come from the host's event goroutine (see eventloop.Loop).
type Bus struct {
	nextID int
	downs  map[int]DownFunc
	drags  map[int]dragHandlers
}

type dragHandlers struct {
	move MoveFunc
	up   UpFunc
}

func NewBus() *Bus {
	return &Bus{
		downs: make(map[int]DownFunc),
		drags: make(map[int]dragHandlers),
	}
}

func (b *Bus) SubscribeDown(fn DownFunc) *Subscription {
	id := b.id()
	b.downs[id] = fn
	return NewSubscription(func() { delete(b.downs, id) })
}

func (b *Bus) SubscribeDrag(onMove MoveFunc, onUp UpFunc) *Subscription {
	id := b.id()
	b.drags[id] = dragHandlers{move: onMove, up: onUp}
	return NewSubscription(func() { delete(b.drags, id) })
}

// Down delivers a surface press.
func (b *Bus) Down(raw geometry.Point, bounds geometry.Bounds) {
	for _, id := range sortedKeys(b.downs) {
		if fn, ok := b.downs[id]; ok {
			fn(raw, bounds)
		}
	}
}

// Move delivers global pointer motion.
func (b *Bus) Move(raw geometry.Point) {
	for _, id := range sortedKeys(b.drags) {
		if h, ok := b.drags[id]; ok && h.move != nil {
			h.move(raw)
		}
	}
}

// Up delivers a global pointer release.
func (b *Bus) Up(raw geometry.Point) {
	for _, id := range sortedKeys(b.drags) {
		if h, ok := b.drags[id]; ok && h.up != nil {
			h.up(raw)
		}
	}
}

// DownListeners and DragListeners report live registrations.
func (b *Bus) DownListeners() int { return len(b.downs) }
func (b *Bus) DragListeners() int { return len(b.drags) }

func (b *Bus) id() int {
	b.nextID++
	return b.nextID
}

// sortedKeys snapshots the registration order so handlers may subscribe or
// cancel while being dispatched.
func sortedKeys[V any](m map[int]V) []int {
	return slices.Sorted(maps.Keys(m))
}
