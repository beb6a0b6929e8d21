package reconcile

import (
	"context"
	"log/slog"
	"sync"

	"github.com/example/rideshare/internal/models"
	"github.com/example/rideshare/internal/observability"
	"github.com/example/rideshare/internal/realtime"
	"github.com/example/rideshare/internal/ride"
)

// RideSnapshot is an immutable view of the rider's current ride state.
type RideSnapshot struct {
	Ride   *models.Ride
	Status ride.Status
	Paid   bool
	Loaded bool
}

// RatingEligible reports whether the rating flow may open. Policy: a ride
// is ratable once it is completed and its fare settled.
func (s RideSnapshot) RatingEligible() bool {
	return s.Ride != nil && s.Status == ride.StatusCompleted && s.Paid
}

// RideState holds the rider's single current ride and folds events into
// it. One RideState belongs to one view; Start on mount, Stop on unmount.
type RideState struct {
	api    RiderAPI
	source EventSource
	logger *slog.Logger

	mu       sync.Mutex
	ride     *models.Ride
	paid     bool
	loaded   bool
	subs     []realtime.Subscription
	onChange func(RideSnapshot)
}

func NewRideState(api RiderAPI, source EventSource, logger *slog.Logger) *RideState {
	if logger == nil {
		logger = slog.Default()
	}
	return &RideState{api: api, source: source, logger: logger}
}

// OnChange registers a single listener notified after every applied
// update. Must be called before Start.
func (s *RideState) OnChange(fn func(RideSnapshot)) { s.onChange = fn }

// Start seeds the state from the current-ride fetch and subscribes to the
// rider-facing events. A fetch failure is returned to the caller and not
// retried; subscriptions are still installed so later events apply.
func (s *RideState) Start(ctx context.Context) error {
	s.subscribe()
	current, err := s.api.CurrentRide(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	// A push event may have raced ahead of the fetch; never let the
	// fetch result move status backward.
	switch {
	case s.ride == nil:
		s.ride = current
	case current == nil:
		// keep the event-derived state the fetch does not know about
	default:
		if next, ok := ride.Transition(ride.Status(s.ride.Status), ride.Status(current.Status)); ok {
			merged := *current
			merged.Status = string(next)
			if merged.Driver == nil {
				merged.Driver = s.ride.Driver
			}
			if merged.FinalFare == nil {
				merged.FinalFare = s.ride.FinalFare
			}
			s.ride = &merged
		}
	}
	s.loaded = true
	s.mu.Unlock()
	s.notify()
	return nil
}

// Stop closes the subscriptions opened by Start.
func (s *RideState) Stop() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()
	for _, sub := range subs {
		sub.Close()
	}
}

func (s *RideState) subscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs,
		s.source.Subscribe(realtime.EventRideAccepted, s.apply),
		s.source.Subscribe(realtime.EventRideCompleted, s.apply),
		s.source.Subscribe(realtime.EventPaymentCompleted, s.apply),
	)
}

// SetRide installs a ride from a direct action response (booking). Direct
// responses are applied immediately and win over a later event echo.
func (s *RideState) SetRide(r models.Ride) {
	s.mu.Lock()
	s.ride = &r
	s.loaded = true
	s.paid = false
	s.mu.Unlock()
	s.notify()
}

func (s *RideState) Snapshot() RideSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := RideSnapshot{Paid: s.paid, Loaded: s.loaded}
	if s.ride != nil {
		cp := *s.ride
		snap.Ride = &cp
		snap.Status = ride.Status(cp.Status)
	}
	return snap
}

func (s *RideState) apply(ev realtime.Event) {
	s.mu.Lock()
	changed := s.applyLocked(ev)
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

func (s *RideState) applyLocked(ev realtime.Event) bool {
	switch e := ev.(type) {
	case realtime.RideAcceptedEvent:
		if s.ride == nil || !matches(s.ride.ID, e.RideID) {
			return false
		}
		next, ok := ride.Transition(ride.Status(s.ride.Status), ride.StatusAccepted)
		if !ok {
			observability.EventsStaleTotal.Inc()
			return false
		}
		// idempotent: re-applying the same acceptance changes nothing
		already := s.ride.Status == string(next) && s.ride.Driver != nil
		s.ride.Status = string(next)
		driver := e.Driver
		s.ride.Driver = &driver
		return !already
	case realtime.RideCompletedEvent:
		if s.ride == nil || !matches(s.ride.ID, e.RideID) {
			return false
		}
		next, ok := ride.Transition(ride.Status(s.ride.Status), ride.StatusCompleted)
		if !ok {
			observability.EventsStaleTotal.Inc()
			return false
		}
		s.ride.Status = string(next)
		fare := e.FinalFare
		s.ride.FinalFare = &fare
		return true
	case realtime.PaymentCompletedEvent:
		if s.ride == nil || !matches(s.ride.ID, e.RideID) {
			return false
		}
		if s.paid {
			return false
		}
		s.paid = true
		return true
	default:
		return false
	}
}

func (s *RideState) notify() {
	if s.onChange != nil {
		s.onChange(s.Snapshot())
	}
}

// matches treats an absent event ride id as addressed to the current
// ride, mirroring payloads that omit it.
func matches(current, incoming string) bool {
	return incoming == "" || incoming == current
}
