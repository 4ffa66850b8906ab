package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selectbox/src/geometry"
	"selectbox/src/pointer"
)

type recordingRenderer struct {
	calls     []string
	last      geometry.Rect
	destroyed bool
}

func (r *recordingRenderer) ShowOverlay(rect geometry.Rect) {
	r.calls = append(r.calls, "show")
	r.last = rect
}

func (r *recordingRenderer) UpdateOverlay(rect geometry.Rect) {
	r.calls = append(r.calls, "update")
	r.last = rect
}

func (r *recordingRenderer) HideOverlay() { r.calls = append(r.calls, "hide") }

func (r *recordingRenderer) Destroy() { r.destroyed = true }

type fixedSurface struct{ b geometry.Bounds }

func (s *fixedSurface) Bounds() geometry.Bounds { return s.b }

type harness struct {
	bus       *pointer.Bus
	ctrl      *Controller
	renderers []*recordingRenderer
	results   []geometry.Result
	bounds    geometry.Bounds
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{
		bus:    pointer.NewBus(),
		bounds: geometry.Bounds{Left: 100, Top: 200, Width: 200, Height: 100},
	}
	surface := &fixedSurface{b: h.bounds}
	h.ctrl = New(h.bus, surface, func() Renderer {
		r := &recordingRenderer{}
		h.renderers = append(h.renderers, r)
		return r
	}, opts)
	h.ctrl.OnSelectionComplete(func(r geometry.Result) { h.results = append(h.results, r) })
	return h
}

// drag feeds a full gesture in surface-local coordinates.
func (h *harness) drag(from, to geometry.Point) {
	h.bus.Down(h.raw(from), h.bounds)
	h.bus.Move(h.raw(to))
	h.bus.Up(h.raw(to))
}

func (h *harness) raw(p geometry.Point) geometry.Point {
	return geometry.Point{X: p.X + h.bounds.Left, Y: p.Y + h.bounds.Top}
}

func TestScenarioForwardDrag(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	h.ctrl.Enable()

	h.drag(geometry.Point{X: 10, Y: 10}, geometry.Point{X: 110, Y: 60})

	require.Len(t, h.results, 1)
	r := h.results[0]
	assert.Equal(t, geometry.Rect{Left: 10, Top: 10, Width: 100, Height: 50}, r.Rect())
	assert.Equal(t, 60.0, r.CenterX)
	assert.Equal(t, 35.0, r.CenterY)
	assert.Equal(t, geometry.LeftToRight, r.DirectionX)
	assert.Equal(t, geometry.TopToBottom, r.DirectionY)
}

func TestScenarioReverseDrag(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	h.ctrl.Enable()

	h.drag(geometry.Point{X: 110, Y: 60}, geometry.Point{X: 10, Y: 10})

	require.Len(t, h.results, 1)
	r := h.results[0]
	assert.Equal(t, geometry.Rect{Left: 10, Top: 10, Width: 100, Height: 50}, r.Rect())
	assert.Equal(t, geometry.RightToLeft, r.DirectionX)
	assert.Equal(t, geometry.BottomToTop, r.DirectionY)
}

func TestScenarioDisabledIgnoresGesture(t *testing.T) {
	for _, attach := range []AttachPolicy{AttachWhileEnabled, AttachAlways} {
		opts := DefaultOptions()
		opts.Attach = attach
		h := newHarness(t, opts)
		h.ctrl.Enable()
		h.ctrl.Disable()

		h.bus.Down(h.raw(geometry.Point{X: 1, Y: 1}), h.bounds)
		assert.False(t, h.ctrl.Dragging(), "attach=%d", attach)
		h.bus.Move(h.raw(geometry.Point{X: 50, Y: 50}))
		h.bus.Up(h.raw(geometry.Point{X: 50, Y: 50}))

		assert.Empty(t, h.results, "attach=%d", attach)
	}
}

func TestScenarioClampedMove(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	h.ctrl.Enable()

	h.bus.Down(h.raw(geometry.Point{X: 50, Y: 20}), h.bounds)
	h.bus.Move(h.raw(geometry.Point{X: 250, Y: -40}))

	rect, ok := h.ctrl.Selection()
	require.True(t, ok)
	assert.Equal(t, 200.0, rect.Right())
	assert.Equal(t, 0.0, rect.Top)
	assert.Equal(t, geometry.Rect{Left: 50, Top: 0, Width: 150, Height: 20}, h.renderers[0].last)

	h.bus.Up(h.raw(geometry.Point{X: 250, Y: -40}))
	require.Len(t, h.results, 1)
	assert.Equal(t, geometry.Point{X: 200, Y: 0}, h.results[0].TopRight)
}

func TestUnclampedMoveFollowsPointer(t *testing.T) {
	opts := DefaultOptions()
	opts.Clamp = false
	h := newHarness(t, opts)
	h.ctrl.Enable()

	h.drag(geometry.Point{X: 50, Y: 20}, geometry.Point{X: 250, Y: 40})

	require.Len(t, h.results, 1)
	assert.Equal(t, 200.0, h.results[0].Width)
}

func TestSessionLifecycle(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	assert.False(t, h.ctrl.Dragging())

	h.ctrl.Enable()
	assert.False(t, h.ctrl.Dragging())
	assert.Equal(t, 0, h.bus.DragListeners())

	h.bus.Down(h.raw(geometry.Point{X: 5, Y: 5}), h.bounds)
	assert.True(t, h.ctrl.Dragging())
	assert.Equal(t, 1, h.bus.DragListeners())

	h.bus.Up(h.raw(geometry.Point{X: 30, Y: 30}))
	assert.False(t, h.ctrl.Dragging())
	assert.Equal(t, 0, h.bus.DragListeners())

	_, ok := h.ctrl.Selection()
	assert.False(t, ok)
}

func TestRendererSequence(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	h.ctrl.Enable()

	h.bus.Down(h.raw(geometry.Point{X: 5, Y: 6}), h.bounds)
	require.Len(t, h.renderers, 1)
	assert.Equal(t, geometry.Rect{Left: 5, Top: 6}, h.renderers[0].last)

	h.bus.Move(h.raw(geometry.Point{X: 15, Y: 16}))
	h.bus.Move(h.raw(geometry.Point{X: 25, Y: 26}))
	h.bus.Up(h.raw(geometry.Point{X: 25, Y: 26}))

	assert.Equal(t, []string{"show", "update", "update", "hide"}, h.renderers[0].calls)
	assert.False(t, h.renderers[0].destroyed)
	assert.Len(t, h.results, 1, "moves never emit")
}

func TestPressWhileDraggingIsIgnored(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	h.ctrl.Enable()

	h.bus.Down(h.raw(geometry.Point{X: 10, Y: 10}), h.bounds)
	h.bus.Down(h.raw(geometry.Point{X: 90, Y: 90}), h.bounds)
	h.bus.Up(h.raw(geometry.Point{X: 20, Y: 30}))

	require.Len(t, h.results, 1)
	assert.Equal(t, geometry.Point{X: 10, Y: 10}, h.results[0].TopLeft)
	assert.Equal(t, 1, h.bus.DownListeners())
}

func TestUpWithoutSessionIsNoop(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	h.ctrl.Enable()

	h.bus.Up(h.raw(geometry.Point{X: 1, Y: 1}))
	h.bus.Move(h.raw(geometry.Point{X: 1, Y: 1}))

	assert.Empty(t, h.results)
	assert.Equal(t, []string(nil), h.renderers[0].calls)
}

func TestEnableDisableIdempotent(t *testing.T) {
	h := newHarness(t, DefaultOptions())

	h.ctrl.Enable()
	h.ctrl.Enable()
	assert.True(t, h.ctrl.Enabled())
	assert.Equal(t, 1, h.bus.DownListeners())
	assert.Len(t, h.renderers, 1)

	h.ctrl.Disable()
	h.ctrl.Disable()
	assert.False(t, h.ctrl.Enabled())
	assert.Equal(t, 0, h.bus.DownListeners())
	assert.True(t, h.renderers[0].destroyed)
}

func TestAttachAlwaysKeepsPressListener(t *testing.T) {
	opts := DefaultOptions()
	opts.Attach = AttachAlways
	h := newHarness(t, opts)
	assert.Equal(t, 1, h.bus.DownListeners())

	h.ctrl.Enable()
	h.ctrl.Disable()
	assert.Equal(t, 1, h.bus.DownListeners())

	h.ctrl.Close()
	assert.Equal(t, 0, h.bus.DownListeners())
}

func TestDisableMidDragCompletesSession(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	h.ctrl.Enable()

	h.bus.Down(h.raw(geometry.Point{X: 10, Y: 10}), h.bounds)
	h.ctrl.Disable()
	assert.True(t, h.ctrl.Dragging())
	assert.False(t, h.renderers[0].destroyed)

	h.bus.Move(h.raw(geometry.Point{X: 40, Y: 40}))
	h.bus.Up(h.raw(geometry.Point{X: 40, Y: 40}))

	require.Len(t, h.results, 1)
	assert.Equal(t, 30.0, h.results[0].Width)
	assert.True(t, h.renderers[0].destroyed)
	assert.Equal(t, 0, h.bus.DragListeners())
}

func TestOverlayPerDragCreatesFreshRenderer(t *testing.T) {
	opts := DefaultOptions()
	opts.Overlay = OverlayPerDrag
	h := newHarness(t, opts)
	h.ctrl.Enable()
	assert.Empty(t, h.renderers)

	h.drag(geometry.Point{X: 1, Y: 1}, geometry.Point{X: 2, Y: 2})
	h.drag(geometry.Point{X: 3, Y: 3}, geometry.Point{X: 4, Y: 4})

	require.Len(t, h.renderers, 2)
	for _, r := range h.renderers {
		assert.True(t, r.destroyed)
		assert.Equal(t, []string{"show", "update", "hide"}, r.calls)
	}
}

func TestCloseAbandonsDragWithoutEmitting(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	h.ctrl.Enable()

	h.bus.Down(h.raw(geometry.Point{X: 10, Y: 10}), h.bounds)
	h.ctrl.Close()

	h.bus.Up(h.raw(geometry.Point{X: 40, Y: 40}))
	assert.Empty(t, h.results)
	assert.False(t, h.ctrl.Dragging())
	assert.Equal(t, 0, h.bus.DragListeners())
	assert.Equal(t, 0, h.bus.DownListeners())
	assert.Equal(t, []string{"show", "hide"}, h.renderers[0].calls)

	h.ctrl.Enable()
	assert.False(t, h.ctrl.Enabled())
}

func TestHeadlessControllerWithoutSurfaceOrRenderer(t *testing.T) {
	bus := pointer.NewBus()
	ctrl := New(bus, nil, nil, DefaultOptions())
	var got []geometry.Result
	sub := ctrl.OnSelectionComplete(func(r geometry.Result) { got = append(got, r) })
	ctrl.Enable()

	b := geometry.Bounds{Width: 50, Height: 50}
	bus.Down(geometry.Point{X: 40, Y: 40}, b)
	bus.Move(geometry.Point{X: 80, Y: 10})
	bus.Up(geometry.Point{X: 80, Y: 10})

	require.Len(t, got, 1)
	assert.Equal(t, geometry.Rect{Left: 40, Top: 10, Width: 10, Height: 30}, got[0].Rect())

	sub.Cancel()
	bus.Down(geometry.Point{X: 1, Y: 1}, b)
	bus.Up(geometry.Point{X: 9, Y: 9})
	assert.Len(t, got, 1)
}

func TestEmitterOrderAndCancelDuringEmit(t *testing.T) {
	var e Emitter
	var order []string

	var first *pointer.Subscription
	first = e.Subscribe(func(geometry.Result) {
		order = append(order, "first")
		first.Cancel()
	})
	e.Subscribe(func(geometry.Result) { order = append(order, "second") })
	require.Equal(t, 2, e.Len())

	e.Emit(geometry.Result{})
	e.Emit(geometry.Result{})

	assert.Equal(t, []string{"first", "second", "second"}, order)
	assert.Equal(t, 1, e.Len())
}

func TestClampedReleaseKeepsPointerDirection(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	h.ctrl.Enable()

	// Press on the right edge, release past it.
	h.bus.Down(h.raw(geometry.Point{X: 200, Y: 50}), h.bounds)
	h.bus.Move(h.raw(geometry.Point{X: 250, Y: 60}))
	h.bus.Up(h.raw(geometry.Point{X: 250, Y: 60}))

	require.Len(t, h.results, 1)
	r := h.results[0]
	assert.Equal(t, geometry.Rect{Left: 200, Top: 50, Width: 0, Height: 10}, r.Rect())
	assert.Equal(t, geometry.LeftToRight, r.DirectionX)
	assert.Equal(t, geometry.TopToBottom, r.DirectionY)

	// Press on the top edge, release above it.
	h.bus.Down(h.raw(geometry.Point{X: 50, Y: 0}), h.bounds)
	h.bus.Up(h.raw(geometry.Point{X: 40, Y: -30}))

	require.Len(t, h.results, 2)
	r = h.results[1]
	assert.Equal(t, 0.0, r.Height)
	assert.Equal(t, geometry.RightToLeft, r.DirectionX)
	assert.Equal(t, geometry.BottomToTop, r.DirectionY)
}

func TestListenerDisablingDuringEmitSkipsHide(t *testing.T) {
	for _, stop := range []string{"disable", "close"} {
		h := newHarness(t, DefaultOptions())
		h.ctrl.OnSelectionComplete(func(geometry.Result) {
			if stop == "disable" {
				h.ctrl.Disable()
			} else {
				h.ctrl.Close()
			}
		})
		h.ctrl.Enable()

		h.drag(geometry.Point{X: 10, Y: 10}, geometry.Point{X: 30, Y: 30})

		require.Len(t, h.results, 1, stop)
		require.Len(t, h.renderers, 1, stop)
		assert.True(t, h.renderers[0].destroyed, stop)
		assert.Equal(t, []string{"show", "update"}, h.renderers[0].calls, stop)
		assert.False(t, h.ctrl.Enabled(), stop)
	}
}

func TestPerDragListenerDisablingStillHides(t *testing.T) {
	opts := DefaultOptions()
	opts.Overlay = OverlayPerDrag
	h := newHarness(t, opts)
	h.ctrl.OnSelectionComplete(func(geometry.Result) { h.ctrl.Disable() })
	h.ctrl.Enable()

	h.drag(geometry.Point{X: 10, Y: 10}, geometry.Point{X: 30, Y: 30})

	require.Len(t, h.renderers, 1)
	assert.Equal(t, []string{"show", "update", "hide"}, h.renderers[0].calls)
	assert.True(t, h.renderers[0].destroyed)
}

func TestPressOutsideSurfaceIsPinnedToEdge(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	h.ctrl.Enable()

	// One row above the surface, as a terminal header press would be.
	h.bus.Down(h.raw(geometry.Point{X: 30, Y: -1}), h.bounds)
	rect, ok := h.ctrl.Selection()
	require.True(t, ok)
	assert.Equal(t, geometry.Rect{Left: 30, Top: 0}, rect)

	h.bus.Up(h.raw(geometry.Point{X: 60, Y: 20}))
	require.Len(t, h.results, 1)
	assert.Equal(t, geometry.Rect{Left: 30, Top: 0, Width: 30, Height: 20}, h.results[0].Rect())
}
