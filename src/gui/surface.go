package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"selectbox/src/geometry"
	"selectbox/src/overlay"
	"selectbox/src/pointer"
)

var (
	_ desktop.Mouseable = (*Surface)(nil)
	_ fyne.Draggable    = (*Surface)(nil)
)

// Surface is a fyne widget that turns primary-button gestures into pointer
// bus events. Raw points are absolute canvas positions; Bounds reports the
// widget's own rectangle in the same space. Overlays are drawn on Layer,
// which covers the widget exactly.
type Surface struct {
	widget.BaseWidget

	bus        *pointer.Bus
	layer      *fyne.Container
	background *canvas.Rectangle

	origin  fyne.Position
	last    fyne.Position
	pressed bool
}

func NewSurface(bus *pointer.Bus) *Surface {
	s := &Surface{
		bus:        bus,
		layer:      overlay.NewLayer(),
		background: canvas.NewRectangle(color.NRGBA{R: 0x20, G: 0x20, B: 0x24, A: 0xff}),
	}
	s.ExtendBaseWidget(s)
	return s
}

func (s *Surface) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(s.background, s.layer))
}

func (s *Surface) MinSize() fyne.Size {
	return fyne.NewSize(320, 240)
}

// Layer is the container overlays are added to.
func (s *Surface) Layer() *fyne.Container { return s.layer }

// Bounds is the widget rectangle in absolute canvas coordinates. The origin
// is taken from the last press, which carries both the local and absolute
// position.
func (s *Surface) Bounds() geometry.Bounds {
	size := s.Size()
	return geometry.Bounds{
		Left:   float64(s.origin.X),
		Top:    float64(s.origin.Y),
		Width:  float64(size.Width),
		Height: float64(size.Height),
	}
}

func (s *Surface) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	s.origin = ev.AbsolutePosition.Subtract(ev.Position)
	s.last = ev.AbsolutePosition
	s.pressed = true
	s.bus.Down(rawPoint(ev.AbsolutePosition), s.Bounds())
}

func (s *Surface) MouseUp(ev *desktop.MouseEvent) {
	if !s.pressed || ev.Button != desktop.MouseButtonPrimary {
		return
	}
	s.pressed = false
	s.bus.Up(rawPoint(ev.AbsolutePosition))
}

func (s *Surface) Dragged(ev *fyne.DragEvent) {
	if !s.pressed {
		return
	}
	s.last = ev.AbsolutePosition
	s.bus.Move(rawPoint(ev.AbsolutePosition))
}

// DragEnd releases at the last dragged position. fyne may also deliver
// MouseUp; whichever comes first ends the gesture.
func (s *Surface) DragEnd() {
	if !s.pressed {
		return
	}
	s.pressed = false
	s.bus.Up(rawPoint(s.last))
}

func rawPoint(p fyne.Position) geometry.Point {
	return geometry.Point{X: float64(p.X), Y: float64(p.Y)}
}
