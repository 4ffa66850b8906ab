package overlay

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"selectbox/src/config"
	"selectbox/src/geometry"
)

// CellRenderer draws the selection outline into a tcell screen. The surface
// is the screen itself, offset by (OffsetX, OffsetY) cells; one cell is one
// unit of geometry.
type CellRenderer struct {
	screen  tcell.Screen
	style   tcell.Style
	offsetX int
	offsetY int
	drawn   []cellPos
}

type cellPos struct{ x, y int }

// NewCellRenderer draws on screen with the configured overlay color.
func NewCellRenderer(screen tcell.Screen, style config.Style, offsetX, offsetY int) *CellRenderer {
	c := colorOrDefault(style.Color)
	return &CellRenderer{
		screen:  screen,
		style:   tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))),
		offsetX: offsetX,
		offsetY: offsetY,
	}
}

func (r *CellRenderer) ShowOverlay(rect geometry.Rect) { r.draw(rect) }

func (r *CellRenderer) UpdateOverlay(rect geometry.Rect) { r.draw(rect) }

func (r *CellRenderer) HideOverlay() {
	r.clear()
	r.screen.Show()
}

func (r *CellRenderer) draw(rect geometry.Rect) {
	r.clear()

	x0 := r.offsetX + int(math.Floor(rect.Left))
	y0 := r.offsetY + int(math.Floor(rect.Top))
	x1 := r.offsetX + int(math.Floor(rect.Right()))
	y1 := r.offsetY + int(math.Floor(rect.Bottom()))

	switch {
	case x0 == x1 && y0 == y1:
		r.set(x0, y0, '+')
	case y0 == y1:
		for x := x0; x <= x1; x++ {
			r.set(x, y0, tcell.RuneHLine)
		}
	case x0 == x1:
		for y := y0; y <= y1; y++ {
			r.set(x0, y, tcell.RuneVLine)
		}
	default:
		for x := x0 + 1; x < x1; x++ {
			r.set(x, y0, tcell.RuneHLine)
			r.set(x, y1, tcell.RuneHLine)
		}
		for y := y0 + 1; y < y1; y++ {
			r.set(x0, y, tcell.RuneVLine)
			r.set(x1, y, tcell.RuneVLine)
		}
		r.set(x0, y0, tcell.RuneULCorner)
		r.set(x1, y0, tcell.RuneURCorner)
		r.set(x0, y1, tcell.RuneLLCorner)
		r.set(x1, y1, tcell.RuneLRCorner)
	}
	r.screen.Show()
}

func (r *CellRenderer) set(x, y int, ch rune) {
	r.screen.SetContent(x, y, ch, nil, r.style)
	r.drawn = append(r.drawn, cellPos{x, y})
}

func (r *CellRenderer) clear() {
	for _, p := range r.drawn {
		r.screen.SetContent(p.x, p.y, ' ', nil, tcell.StyleDefault)
	}
	r.drawn = r.drawn[:0]
}
