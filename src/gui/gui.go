package gui

import (
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"selectbox/src/config"
	"selectbox/src/geometry"
	"selectbox/src/overlay"
	"selectbox/src/pointer"
	"selectbox/src/selection"
)

const historySize = 10

// View is the desktop window content: a selection surface, an enable
// toggle and a status line showing the last result.
type View struct {
	Surface    *Surface
	Controller *selection.Controller
	Status     *widget.Label
	Toggle     *widget.Check

	history []geometry.Result
	sub     *pointer.Subscription
}

// NewView builds the surface and its controller from cfg. The controller
// starts enabled unless cfg says otherwise.
func NewView(cfg *config.Config) *View {
	bus := pointer.NewBus()
	surface := NewSurface(bus)
	style := cfg.Style
	ctrl := selection.New(bus, surface, func() selection.Renderer {
		return overlay.NewFyneRenderer(surface.Layer(), style)
	}, cfg.SelectionOptions())

	v := &View{
		Surface:    surface,
		Controller: ctrl,
		Status:     widget.NewLabel("Drag on the surface to select"),
	}
	v.sub = ctrl.OnSelectionComplete(v.onResult)
	v.Toggle = widget.NewCheck("Selection enabled", v.SetEnabled)
	v.Toggle.SetChecked(cfg.StartEnabled)
	return v
}

// Content lays out the view for a window.
func (v *View) Content() fyne.CanvasObject {
	return container.NewBorder(v.Toggle, v.Status, nil, nil, v.Surface)
}

func (v *View) SetEnabled(enabled bool) {
	if enabled {
		v.Controller.Enable()
	} else {
		v.Controller.Disable()
	}
	if v.Toggle.Checked != enabled {
		v.Toggle.SetChecked(enabled)
	}
}

// History returns completed selections, newest last.
func (v *View) History() []geometry.Result {
	return append([]geometry.Result(nil), v.history...)
}

// Close detaches the view from its controller.
func (v *View) Close() {
	v.sub.Cancel()
	v.Controller.Close()
}

func (v *View) onResult(r geometry.Result) {
	v.history = append(v.history, r)
	if len(v.history) > historySize {
		v.history = v.history[len(v.history)-historySize:]
	}
	log.Printf("GUI: selection complete: %s", r)
	if r.Rect().Empty() {
		v.Status.SetText(fmt.Sprintf("Empty selection at (%g,%g)", r.Left, r.Top))
		return
	}
	v.Status.SetText(fmt.Sprintf("Selected %s, centre (%g,%g)", r, r.CenterX, r.CenterY))
}
