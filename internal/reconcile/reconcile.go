// Package reconcile merges fetch results, direct action responses, and
// asynchronous push events into coherent client-side ride state. It is
// the only place ordering between those sources is resolved; the
// monotonic-status rule in internal/ride is the sole safeguard against
// stale events.
package reconcile

import (
	"context"

	"github.com/example/rideshare/internal/models"
	"github.com/example/rideshare/internal/realtime"
)

// EventSource is the slice of the realtime channel the reconcilers use.
// Subscriptions returned here must be closed by the reconciler that
// opened them.
type EventSource interface {
	Subscribe(event string, fn realtime.Handler) realtime.Subscription
}

// RiderAPI is the backend surface the rider-side reconciler fetches from.
type RiderAPI interface {
	CurrentRide(ctx context.Context) (*models.Ride, error)
}

// DriverAPI is the backend surface the driver board fetches from and
// acts through.
type DriverAPI interface {
	AvailableRides(ctx context.Context) ([]models.RideRequest, error)
	DriverStats(ctx context.Context) (models.DriverStats, error)
	AcceptRide(ctx context.Context, rideID string) (models.Ride, error)
}
