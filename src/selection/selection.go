// Package selection implements the drag-selection gesture controller.
//
// A Controller listens for a surface press, tracks the drag globally, keeps a
// Renderer in sync with the live rectangle and, on release, emits exactly one
// geometry.Result to its listeners. All methods must be called from the
// host's single event goroutine.
package selection

import (
	"log"

	"selectbox/src/geometry"
	"selectbox/src/pointer"
)

// Renderer visually reflects the live rectangle. It must accept zero-size
// rectangles and must never change the geometry it is given.
type Renderer interface {
	ShowOverlay(r geometry.Rect)
	UpdateOverlay(r geometry.Rect)
	HideOverlay()
}

// Destroyer is implemented by renderers that hold resources (a canvas
// object, a window) which must be released when the controller drops them.
type Destroyer interface {
	Destroy()
}

// RendererFactory creates a renderer when the overlay policy needs one.
type RendererFactory func() Renderer

// Surface reports the current bounds of the interactive surface. When set,
// the clamped variant re-reads it on every move since layout may change.
type Surface interface {
	Bounds() geometry.Bounds
}

// OverlayPolicy decides the renderer lifetime.
type OverlayPolicy int

const (
	// OverlayReuse creates one renderer on Enable and drops it on Disable.
	OverlayReuse OverlayPolicy = iota
	// OverlayPerDrag creates a renderer at every press and drops it at release.
	OverlayPerDrag
)

// AttachPolicy decides when the press listener is registered.
type AttachPolicy int

const (
	// AttachWhileEnabled holds the press subscription only while enabled.
	AttachWhileEnabled AttachPolicy = iota
	// AttachAlways holds it for the controller's lifetime and ignores presses
	// while disabled.
	AttachAlways
)

// Options configures a Controller.
type Options struct {
	Clamp   bool
	Overlay OverlayPolicy
	Attach  AttachPolicy
}

// DefaultOptions clamps, reuses the overlay and attaches while enabled.
func DefaultOptions() Options {
	return Options{Clamp: true}
}

// dragSession exists only while the controller is dragging.
type dragSession struct {
	origin   geometry.Point
	current  geometry.Point
	bounds   geometry.Bounds
	renderer Renderer
	drag     *pointer.Subscription
}

// Controller owns the enabled flag and the idle/dragging state machine.
// A nil session is the Idle state.
type Controller struct {
	source      pointer.Source
	surface     Surface
	newRenderer RendererFactory
	opts        Options
	emitter     Emitter

	enabled  bool
	closed   bool
	downSub  *pointer.Subscription
	renderer Renderer
	session  *dragSession
}

// New wires a controller to a pointer source. surface may be nil, in which
// case the bounds delivered with the press are used for the whole drag.
// newRenderer may be nil for a headless controller.
func New(source pointer.Source, surface Surface, newRenderer RendererFactory, opts Options) *Controller {
	c := &Controller{
		source:      source,
		surface:     surface,
		newRenderer: newRenderer,
		opts:        opts,
	}
	if opts.Attach == AttachAlways {
		c.downSub = source.SubscribeDown(c.pointerDown)
	}
	return c
}

// OnSelectionComplete registers l for every completed drag.
func (c *Controller) OnSelectionComplete(l Listener) *pointer.Subscription {
	return c.emitter.Subscribe(l)
}

// Enable starts accepting presses. Calling it again has no effect.
func (c *Controller) Enable() {
	if c.closed || c.enabled {
		return
	}
	c.enabled = true
	if c.opts.Attach == AttachWhileEnabled {
		c.downSub = c.source.SubscribeDown(c.pointerDown)
	}
	if c.opts.Overlay == OverlayReuse && c.renderer == nil {
		c.renderer = c.createRenderer()
	}
	log.Printf("SELECTION: enabled (clamp=%v)", c.opts.Clamp)
}

// Disable stops accepting presses. A drag already in progress still
// completes and emits its result.
func (c *Controller) Disable() {
	if c.closed || !c.enabled {
		return
	}
	c.enabled = false
	if c.opts.Attach == AttachWhileEnabled {
		c.downSub.Cancel()
		c.downSub = nil
	}
	if c.session == nil {
		c.dropReusedRenderer()
	}
	log.Printf("SELECTION: disabled (dragging=%v)", c.session != nil)
}

// Close releases every subscription and abandons an in-flight drag without
// emitting. The controller cannot be enabled again.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.enabled = false
	c.downSub.Cancel()
	c.downSub = nil
	if s := c.session; s != nil {
		c.session = nil
		s.drag.Cancel()
		c.finishOverlay(s)
	}
	c.dropReusedRenderer()
}

func (c *Controller) Enabled() bool  { return c.enabled }
func (c *Controller) Dragging() bool { return c.session != nil }

// Selection returns the live normalized rectangle while dragging.
func (c *Controller) Selection() (geometry.Rect, bool) {
	if c.session == nil {
		return geometry.Rect{}, false
	}
	return geometry.NormalizedRect(c.session.origin, c.session.current), true
}

func (c *Controller) pointerDown(raw geometry.Point, bounds geometry.Bounds) {
	if !c.enabled || c.session != nil {
		return
	}
	origin := c.local(raw, bounds)
	s := &dragSession{
		origin:   origin,
		current:  origin,
		bounds:   bounds,
		renderer: c.renderer,
	}
	if c.opts.Overlay == OverlayPerDrag {
		s.renderer = c.createRenderer()
	}
	c.session = s
	if s.renderer != nil {
		s.renderer.ShowOverlay(geometry.Rect{Left: origin.X, Top: origin.Y})
	}
	s.drag = c.source.SubscribeDrag(c.pointerMove, c.pointerUp)
	log.Printf("SELECTION: drag started at (%g, %g)", origin.X, origin.Y)
}

func (c *Controller) pointerMove(raw geometry.Point) {
	s := c.session
	if s == nil {
		return
	}
	if c.opts.Clamp && c.surface != nil {
		s.bounds = c.surface.Bounds()
	}
	s.current = c.local(raw, s.bounds)
	if s.renderer != nil {
		s.renderer.UpdateOverlay(geometry.NormalizedRect(s.origin, s.current))
	}
}

func (c *Controller) pointerUp(raw geometry.Point) {
	s := c.session
	if s == nil {
		return
	}
	if c.opts.Clamp && c.surface != nil {
		s.bounds = c.surface.Bounds()
	}
	final := c.local(raw, s.bounds)
	// Direction follows the pointer even when the rectangle is clamped.
	release := geometry.ToSurfaceLocal(raw, s.bounds)
	result := geometry.DeriveResult(s.origin, release, geometry.NormalizedRect(s.origin, final))

	c.session = nil
	s.drag.Cancel()
	log.Printf("SELECTION: drag completed: %s (listeners=%d)", result, c.emitter.Len())
	c.emitter.Emit(result)
	if c.opts.Overlay == OverlayReuse && c.renderer != s.renderer {
		// A listener disabled or closed the controller, which destroyed it.
		s.renderer = nil
	}
	c.finishOverlay(s)
	if !c.enabled {
		c.dropReusedRenderer()
	}
}

func (c *Controller) local(raw geometry.Point, bounds geometry.Bounds) geometry.Point {
	p := geometry.ToSurfaceLocal(raw, bounds)
	if c.opts.Clamp {
		p = geometry.Clamp(p, bounds)
	}
	return p
}

func (c *Controller) createRenderer() Renderer {
	if c.newRenderer == nil {
		return nil
	}
	return c.newRenderer()
}

func (c *Controller) finishOverlay(s *dragSession) {
	if s.renderer == nil {
		return
	}
	s.renderer.HideOverlay()
	if c.opts.Overlay == OverlayPerDrag {
		destroy(s.renderer)
	}
}

func (c *Controller) dropReusedRenderer() {
	if c.renderer == nil {
		return
	}
	destroy(c.renderer)
	c.renderer = nil
}

func destroy(r Renderer) {
	if d, ok := r.(Destroyer); ok {
		d.Destroy()
	}
}
