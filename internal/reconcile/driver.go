package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/example/rideshare/internal/models"
	"github.com/example/rideshare/internal/realtime"
	"github.com/example/rideshare/internal/ride"
)

// ErrAcceptInFlight means an accept call for that request has not
// settled yet; the triggering control stays disabled until it does.
var ErrAcceptInFlight = errors.New("accept already in progress")

// Board is the driver dashboard state: the ordered open-requests
// collection (newest first), driver stats, and at most one active ride.
// The online flag scopes the push subscriptions exactly: offline means no
// handlers registered and no push population.
type Board struct {
	api    DriverAPI
	source EventSource
	logger *slog.Logger

	mu        sync.Mutex
	requests  []models.RideRequest
	stats     models.DriverStats
	active    *models.Ride
	online    bool
	subs      []realtime.Subscription
	accepting map[string]bool
	onChange  func()
}

func NewBoard(api DriverAPI, source EventSource, logger *slog.Logger) *Board {
	if logger == nil {
		logger = slog.Default()
	}
	return &Board{api: api, source: source, logger: logger, accepting: make(map[string]bool)}
}

// OnChange registers a single listener notified after every applied
// update. Must be called before going online.
func (b *Board) OnChange(fn func()) { b.onChange = fn }

// Refresh seeds the board from the available-rides and stats fetches.
// Errors are surfaced to the caller; state already applied from events
// is kept.
func (b *Board) Refresh(ctx context.Context) error {
	rides, err := b.api.AvailableRides(ctx)
	if err != nil {
		return err
	}
	stats, err := b.api.DriverStats(ctx)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.requests = rides
	b.stats = stats
	b.mu.Unlock()
	b.notify()
	return nil
}

// SetOnline toggles the driver's availability. Going online subscribes
// the request events; going offline closes those exact subscriptions.
// Toggling is idempotent with respect to handler counts.
func (b *Board) SetOnline(online bool) {
	b.mu.Lock()
	if b.online == online {
		b.mu.Unlock()
		return
	}
	b.online = online
	if online {
		b.subs = append(b.subs,
			b.source.Subscribe(realtime.EventNewRideRequest, b.apply),
			b.source.Subscribe(realtime.EventRideTaken, b.apply),
		)
		b.mu.Unlock()
		b.notify()
		return
	}
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()
	for _, s := range subs {
		s.Close()
	}
	b.notify()
}

func (b *Board) Online() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.online
}

// Accept claims an open request. The direct response is applied
// immediately: the request leaves the collection and the returned ride
// becomes the active ride. A later ride-taken echo for the same id is a
// no-op. No rollback on failure; the request stays listed.
func (b *Board) Accept(ctx context.Context, rideID string) (models.Ride, error) {
	b.mu.Lock()
	if b.accepting[rideID] {
		b.mu.Unlock()
		return models.Ride{}, ErrAcceptInFlight
	}
	b.accepting[rideID] = true
	b.mu.Unlock()

	accepted, err := b.api.AcceptRide(ctx, rideID)

	b.mu.Lock()
	delete(b.accepting, rideID)
	if err != nil {
		b.mu.Unlock()
		return models.Ride{}, err
	}
	b.removeRequestLocked(rideID)
	if accepted.Status == "" {
		accepted.Status = string(ride.StatusAccepted)
	}
	b.active = &accepted
	b.mu.Unlock()
	b.notify()
	return accepted, nil
}

func (b *Board) Requests() []models.RideRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.RideRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

func (b *Board) Stats() models.DriverStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

func (b *Board) ActiveRide() *models.Ride {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active == nil {
		return nil
	}
	cp := *b.active
	return &cp
}

func (b *Board) apply(ev realtime.Event) {
	b.mu.Lock()
	changed := false
	switch e := ev.(type) {
	case realtime.NewRideRequestEvent:
		if !b.hasRequestLocked(e.Request.ID) {
			b.requests = append([]models.RideRequest{e.Request}, b.requests...)
			changed = true
		}
	case realtime.RideTakenEvent:
		changed = b.removeRequestLocked(e.RideID)
	}
	b.mu.Unlock()
	if changed {
		b.notify()
	}
}

func (b *Board) hasRequestLocked(id string) bool {
	for _, r := range b.requests {
		if r.ID == id {
			return true
		}
	}
	return false
}

// removeRequestLocked removes exactly one entry by id; absent ids are a
// no-op.
func (b *Board) removeRequestLocked(id string) bool {
	for i, r := range b.requests {
		if r.ID == id {
			b.requests = append(b.requests[:i], b.requests[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Board) notify() {
	if b.onChange != nil {
		b.onChange()
	}
}
