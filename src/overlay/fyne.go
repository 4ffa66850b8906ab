package overlay

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"

	"selectbox/src/config"
	"selectbox/src/geometry"
)

// FyneRenderer draws the selection as a stroked, tinted rectangle inside a
// layout-free fyne container stacked over the surface. Coordinates are
// surface-local, which is the container's own coordinate space.
type FyneRenderer struct {
	layer *fyne.Container
	rect  *canvas.Rectangle
}

// NewFyneRenderer adds a hidden rectangle to layer.
func NewFyneRenderer(layer *fyne.Container, style config.Style) *FyneRenderer {
	stroke := colorOrDefault(style.Color)
	fill := color.NRGBA{R: stroke.R, G: stroke.G, B: stroke.B, A: style.FillAlpha}

	rect := canvas.NewRectangle(fill)
	rect.StrokeColor = stroke
	rect.StrokeWidth = style.StrokeWidth
	rect.Hide()

	layer.Add(rect)
	return &FyneRenderer{layer: layer, rect: rect}
}

func (r *FyneRenderer) ShowOverlay(rect geometry.Rect) {
	r.place(rect)
	r.rect.Show()
	r.layer.Refresh()
}

func (r *FyneRenderer) UpdateOverlay(rect geometry.Rect) {
	r.place(rect)
	r.rect.Refresh()
}

func (r *FyneRenderer) HideOverlay() {
	r.rect.Hide()
	r.layer.Refresh()
}

// Destroy removes the rectangle from the layer.
func (r *FyneRenderer) Destroy() {
	r.layer.Remove(r.rect)
}

// Object exposes the canvas object, mainly for tests.
func (r *FyneRenderer) Object() *canvas.Rectangle { return r.rect }

func (r *FyneRenderer) place(rect geometry.Rect) {
	r.rect.Move(fyne.NewPos(float32(rect.Left), float32(rect.Top)))
	r.rect.Resize(fyne.NewSize(float32(rect.Width), float32(rect.Height)))
}

// NewLayer returns an empty container without layout, suitable for stacking
// over a surface with container.NewStack.
func NewLayer() *fyne.Container {
	return container.NewWithoutLayout()
}
