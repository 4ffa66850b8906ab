package eventloop

import (
	"context"
	"log"
	"sync/atomic"

	"selectbox/src/pointer"
)

// Loop is the single-threaded coordinator for hosts that receive input on
// several goroutines (the gohook listener, the tcell poller, tray menus).
// Everything that touches a selection.Controller runs on the Run goroutine.
type Loop struct {
	bus      *pointer.Bus
	events   chan pointer.Event
	calls    chan func()
	hotkeyCh chan struct{}
	onHotkey func()
	dropped  atomic.Int64
}

// New creates a loop dispatching pointer events into bus.
func New(bus *pointer.Bus) *Loop {
	return &Loop{
		bus:      bus,
		events:   make(chan pointer.Event, 64),
		calls:    make(chan func(), 8),
		hotkeyCh: make(chan struct{}, 4),
	}
}

// Bus returns the pointer bus the loop feeds.
func (l *Loop) Bus() *pointer.Bus { return l.bus }

// Post queues a pointer event. Moves are dropped when the queue is full;
// presses and releases always wait for room so a gesture is never cut.
// Returns false if the event was dropped.
func (l *Loop) Post(ev pointer.Event) bool {
	select {
	case l.events <- ev:
		return true
	default:
	}
	if ev.Kind == pointer.KindMove {
		l.dropped.Add(1)
		return false
	}
	l.events <- ev
	return true
}

// Do queues fn to run on the loop goroutine.
func (l *Loop) Do(fn func()) {
	l.calls <- fn
}

// OnHotkey sets the handler run on the loop goroutine when Hotkey fires.
// It must be set before Run.
func (l *Loop) OnHotkey(fn func()) { l.onHotkey = fn }

// Hotkey posts a hotkey press; extra presses are coalesced.
func (l *Loop) Hotkey() {
	select {
	case l.hotkeyCh <- struct{}{}:
	default:
	}
}

// Run processes queued work until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			if n := l.dropped.Load(); n > 0 {
				log.Printf("EVENTLOOP: dropped %d pointer moves under load", n)
			}
			return ctx.Err()
		case ev := <-l.events:
			l.bus.Dispatch(ev)
		case fn := <-l.calls:
			fn()
		case <-l.hotkeyCh:
			log.Printf("EVENTLOOP: hotkey")
			if l.onHotkey != nil {
				l.onHotkey()
			}
		}
	}
}
