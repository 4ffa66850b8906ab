package overlay

import (
	"context"
	"log"

	"selectbox/src/eventloop"
	"selectbox/src/geometry"
	"selectbox/src/pointer"
	"selectbox/src/selection"
)

// Selector defines a synchronous one-shot selection API on top of an event
// loop. Select blocks until one drag completes or ctx ends.
// Returns (result, cancelled, error). If cancelled is true, result is the
// zero value and err is nil.
type Selector interface {
	Select(ctx context.Context) (geometry.Result, bool, error)
}

// NewSelector arms ctrl on loop for each Select call. The controller is
// enabled for the duration of the call and disabled afterwards.
func NewSelector(loop *eventloop.Loop, ctrl *selection.Controller) Selector {
	return &loopSelector{loop: loop, ctrl: ctrl}
}

type loopSelector struct {
	loop *eventloop.Loop
	ctrl *selection.Controller
}

func (s *loopSelector) Select(ctx context.Context) (geometry.Result, bool, error) {
	results := make(chan geometry.Result, 1)
	var sub *pointer.Subscription

	s.loop.Do(func() {
		sub = s.ctrl.OnSelectionComplete(func(r geometry.Result) {
			select {
			case results <- r:
			default:
			}
		})
		s.ctrl.Enable()
	})
	defer s.loop.Do(func() {
		sub.Cancel()
		s.ctrl.Disable()
	})

	log.Printf("OVERLAY: waiting for selection")
	select {
	case r := <-results:
		return r, false, nil
	case <-ctx.Done():
		log.Printf("OVERLAY: selection cancelled: %v", ctx.Err())
		return geometry.Result{}, true, nil
	}
}
