package overlay

import (
	"log"

	"selectbox/src/geometry"
)

// LogRenderer records the overlay in the debug log. Hosts without a drawable
// surface (the global tray selector) use it.
type LogRenderer struct {
	Name    string
	visible bool
	last    geometry.Rect
	updates int
}

func (r *LogRenderer) ShowOverlay(rect geometry.Rect) {
	r.visible = true
	r.last = rect
	r.updates = 0
	log.Printf("OVERLAY[%s]: show at (%g,%g)", r.Name, rect.Left, rect.Top)
}

func (r *LogRenderer) UpdateOverlay(rect geometry.Rect) {
	r.last = rect
	r.updates++
}

func (r *LogRenderer) HideOverlay() {
	if !r.visible {
		return
	}
	r.visible = false
	log.Printf("OVERLAY[%s]: hide after %d updates, last %gx%g at (%g,%g)",
		r.Name, r.updates, r.last.Width, r.last.Height, r.last.Left, r.last.Top)
}

// Visible reports whether the overlay is currently shown.
func (r *LogRenderer) Visible() bool { return r.visible }

// Last returns the most recent rectangle.
func (r *LogRenderer) Last() geometry.Rect { return r.last }
