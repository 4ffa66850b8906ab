package hotkey

import (
	"log"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"

	"selectbox/src/geometry"
	"selectbox/src/pointer"
)

// leftButton is the libuiohook button number of the primary button.
const leftButton = 1

// Listener owns the single global gohook event stream. It turns key events
// into hotkey callbacks and, when pointer forwarding is on, mouse events into
// pointer.Events for a screen-wide surface.
type Listener struct {
	combo     string
	keys      []keyState
	onHotkey  func()
	onPointer func(pointer.Event)
	bounds    geometry.Bounds

	mu      sync.Mutex
	stopped bool
}

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

// New prepares a listener for combo (e.g. "Ctrl+Alt+S"). onHotkey may be
// nil to listen for pointer events only.
func New(combo string, onHotkey func()) *Listener {
	l := &Listener{combo: combo, onHotkey: onHotkey}
	for _, name := range parseHotkey(combo) {
		rawcodes := keyNameToRawcodes(name)
		if len(rawcodes) == 0 {
			log.Printf("ERROR: Cannot map key '%s' to rawcodes, hotkey may not work correctly", name)
			continue
		}
		l.keys = append(l.keys, keyState{name: name, rawcodes: rawcodes})
	}
	if combo != "" && len(l.keys) == 0 {
		log.Printf("ERROR: No valid keys in hotkey configuration '%s'", combo)
	}
	return l
}

// ForwardPointer sends global mouse events to fn. Presses outside bounds
// are ignored; moves and releases are always forwarded so a drag can leave
// the surface.
func (l *Listener) ForwardPointer(bounds geometry.Bounds, fn func(pointer.Event)) {
	l.bounds = bounds
	l.onPointer = fn
}

// Start runs the gohook loop in a goroutine until Stop.
func (l *Listener) Start() {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in hotkey goroutine: %v", r)
			}
		}()

		log.Printf("HOTKEY: starting gohook event loop for %q", l.combo)
		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("ERROR: gohook.Start() returned nil channel")
			return
		}
		for ev := range evChan {
			l.handle(ev)
		}
		log.Printf("HOTKEY: gohook event loop finished")
	}()
}

// Stop ends the gohook loop.
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.stopped = true
	gohook.End()
}

func (l *Listener) handle(ev gohook.Event) {
	switch ev.Kind {
	case gohook.KeyDown, gohook.KeyHold:
		if l.keyChanged(ev.Rawcode, true) && l.onHotkey != nil {
			log.Printf("HOTKEY: combination detected: %s", l.combo)
			l.onHotkey()
		}
	case gohook.KeyUp:
		l.keyChanged(ev.Rawcode, false)
	default:
		if l.onPointer == nil {
			return
		}
		if pe, ok := pointerEvent(ev, l.bounds); ok {
			l.onPointer(pe)
		}
	}
}

// keyChanged records a key transition and reports whether the whole combo
// just became pressed. States reset after a match.
func (l *Listener) keyChanged(rawcode uint16, down bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.keys) == 0 {
		return false
	}
	for i := range l.keys {
		for _, rc := range l.keys[i].rawcodes {
			if rc == rawcode {
				l.keys[i].pressed = down
				break
			}
		}
	}
	if !down {
		return false
	}
	for i := range l.keys {
		if !l.keys[i].pressed {
			return false
		}
	}
	for i := range l.keys {
		l.keys[i].pressed = false
	}
	return true
}

// pointerEvent maps a gohook mouse event. gohook follows libuiohook's
// numbering, in which MouseHold is the button press and MouseDown the
// release.
func pointerEvent(ev gohook.Event, bounds geometry.Bounds) (pointer.Event, bool) {
	p := geometry.Point{X: float64(ev.X), Y: float64(ev.Y)}
	switch ev.Kind {
	case gohook.MouseHold:
		if ev.Button != leftButton || !bounds.Contains(p) {
			return pointer.Event{}, false
		}
		return pointer.Event{Kind: pointer.KindDown, Point: p, Bounds: bounds}, true
	case gohook.MouseMove, gohook.MouseDrag:
		return pointer.Event{Kind: pointer.KindMove, Point: p}, true
	case gohook.MouseDown:
		if ev.Button != leftButton {
			return pointer.Event{}, false
		}
		return pointer.Event{Kind: pointer.KindUp, Point: p}, true
	default:
		return pointer.Event{}, false
	}
}

func parseHotkey(hotkeyConfig string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(hotkeyConfig), "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "control":
			keys = append(keys, "ctrl")
		case "option":
			keys = append(keys, "alt")
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		default:
			keys = append(keys, part)
		}
	}
	return keys
}
