// Package pointer delivers raw pointer notifications to subscribers.
//
// Hosts (a fyne widget, a tcell screen, a global gohook listener) feed a Bus
// with Down/Move/Up in viewport coordinates. Down is scoped to the surface;
// Move and Up are global so a drag keeps tracking outside the surface.
package pointer

import (
	"sync"

	"selectbox/src/geometry"
)

// DownFunc receives a pointer press on the surface together with the
// surface bounds at that moment.
type DownFunc func(raw geometry.Point, bounds geometry.Bounds)

// MoveFunc receives pointer motion; UpFunc receives the release.
type (
	MoveFunc func(raw geometry.Point)
	UpFunc   func(raw geometry.Point)
)

// Source is what the selection controller consumes.
type Source interface {
	SubscribeDown(fn DownFunc) *Subscription
	SubscribeDrag(onMove MoveFunc, onUp UpFunc) *Subscription
}

// Subscription is a cancelable registration handle. Cancel is idempotent and
// safe on a nil handle.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// NewSubscription wraps cancel in a handle.
func NewSubscription(cancel func()) *Subscription {
	return &Subscription{cancel: cancel}
}

// Cancel releases the registration.
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}
