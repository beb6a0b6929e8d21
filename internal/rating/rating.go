// Package rating drives the post-ride driver rating prompt. The prompt
// opens only for a completed, settled ride; submission is fire-and-forget
// and skipping is always allowed.
package rating

import (
	"context"
	"errors"

	"github.com/example/rideshare/internal/models"
	"github.com/example/rideshare/internal/observability"
)

var ErrClosed = errors.New("rating prompt already closed")

// Backend is the slice of the REST client the flow needs.
type Backend interface {
	SubmitRating(ctx context.Context, r models.Rating) error
}

// Flow collects one rating for one completed ride. Stars default to 5;
// the five-button control keeps them in range, SetStars clamps anyway.
type Flow struct {
	backend  Backend
	rideID   string
	driverID string

	stars   int
	comment string
	closed  bool
}

func NewFlow(backend Backend, rideID, driverID string) *Flow {
	return &Flow{backend: backend, rideID: rideID, driverID: driverID, stars: 5}
}

func (f *Flow) SetStars(n int) {
	if n < 1 {
		n = 1
	}
	if n > 5 {
		n = 5
	}
	f.stars = n
}

func (f *Flow) Stars() int { return f.stars }

func (f *Flow) SetComment(c string) { f.comment = c }

func (f *Flow) Open() bool { return !f.closed }

// Submit posts the rating once. Success and failure both dismiss the
// prompt; there is no retry.
func (f *Flow) Submit(ctx context.Context) error {
	if f.closed {
		return ErrClosed
	}
	f.closed = true
	err := f.backend.SubmitRating(ctx, models.Rating{
		RideID:   f.rideID,
		DriverID: f.driverID,
		Stars:    f.stars,
		Comment:  f.comment,
	})
	if err != nil {
		return err
	}
	observability.RatingsSubmittedTotal.Inc()
	return nil
}

// Skip dismisses the prompt without submitting.
func (f *Flow) Skip() { f.closed = true }
