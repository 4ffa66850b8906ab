package selection

import (
	"maps"
	"slices"

	"selectbox/src/geometry"
	"selectbox/src/pointer"
)

// Listener receives the result of a completed drag (the selectionComplete
// event).
type Listener func(geometry.Result)

// Emitter fans a result out to its listeners in registration order.
// The zero value is ready to use.
type Emitter struct {
	nextID    int
	listeners map[int]Listener
}

// Subscribe registers l until the returned handle is cancelled.
func (e *Emitter) Subscribe(l Listener) *pointer.Subscription {
	if e.listeners == nil {
		e.listeners = make(map[int]Listener)
	}
	e.nextID++
	id := e.nextID
	e.listeners[id] = l
	return pointer.NewSubscription(func() { delete(e.listeners, id) })
}

// Emit delivers r to every listener registered at the time of the call.
func (e *Emitter) Emit(r geometry.Result) {
	for _, id := range slices.Sorted(maps.Keys(e.listeners)) {
		if l, ok := e.listeners[id]; ok {
			l(r)
		}
	}
}

// Len reports the number of registered listeners.
func (e *Emitter) Len() int { return len(e.listeners) }
