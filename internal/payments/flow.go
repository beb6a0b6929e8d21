// Package payments drives the post-trip payment sequence: method
// selection, optional provider confirmation for cards, then backend
// confirmation. All methods converge on the same success contract.
package payments

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/example/rideshare/internal/api"
	"github.com/example/rideshare/internal/models"
	"github.com/example/rideshare/internal/observability"
)

var (
	ErrAlreadyPaid       = errors.New("payment already completed")
	ErrConfirmInFlight   = errors.New("payment confirmation in progress")
	ErrUnsupportedMethod = errors.New("unsupported payment method")
)

// Backend is the slice of the REST client the flow needs.
type Backend interface {
	CreatePaymentIntent(ctx context.Context, rideID string, amount float64) (string, error)
	ConfirmPayment(ctx context.Context, req api.ConfirmPaymentRequest) (models.Payment, error)
}

// Provider confirms a previously created payment intent from its client
// secret. Card details never pass through this package; the provider is
// handed an opaque payment method token collected out of process.
type Provider interface {
	ConfirmIntent(ctx context.Context, clientSecret, paymentMethod string) (string, error)
}

// Flow settles exactly one ride's fare. A failed confirmation leaves the
// flow resubmittable; a successful one makes it terminal and fires the
// success callback exactly once.
type Flow struct {
	backend  Backend
	provider Provider
	rideID   string
	amount   float64

	mu        sync.Mutex
	inFlight  bool
	done      bool
	onSuccess func(models.Payment)
}

func NewFlow(backend Backend, provider Provider, rideID string, amount float64) *Flow {
	return &Flow{backend: backend, provider: provider, rideID: rideID, amount: amount}
}

// OnSuccess registers the callback dependent state (rating eligibility)
// advances through. Must be set before Confirm.
func (f *Flow) OnSuccess(fn func(models.Payment)) { f.onSuccess = fn }

func (f *Flow) Amount() float64 { return f.amount }

// Confirm executes one settlement attempt. paymentMethod is the provider
// token for card payments and ignored otherwise.
func (f *Flow) Confirm(ctx context.Context, method models.PaymentMethod, paymentMethod string) (models.Payment, error) {
	f.mu.Lock()
	if f.done {
		f.mu.Unlock()
		return models.Payment{}, ErrAlreadyPaid
	}
	if f.inFlight {
		f.mu.Unlock()
		return models.Payment{}, ErrConfirmInFlight
	}
	f.inFlight = true
	f.mu.Unlock()

	payment, err := f.confirm(ctx, method, paymentMethod)

	f.mu.Lock()
	f.inFlight = false
	if err != nil {
		f.mu.Unlock()
		return models.Payment{}, err
	}
	f.done = true
	cb := f.onSuccess
	f.mu.Unlock()

	observability.PaymentsTotal.WithLabelValues(string(method)).Inc()
	if cb != nil {
		cb(payment)
	}
	return payment, nil
}

func (f *Flow) confirm(ctx context.Context, method models.PaymentMethod, paymentMethod string) (models.Payment, error) {
	switch method {
	case models.PaymentCard:
		return f.confirmCard(ctx, paymentMethod)
	case models.PaymentQR, models.PaymentCash:
		return f.confirmDirect(ctx, method)
	default:
		return models.Payment{}, fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}
}

// confirmCard runs the three-step card path: intent from the backend,
// confirmation with the provider, confirmation with the backend using
// the provider's reference. The payment is settled only when both the
// provider and the backend succeed.
func (f *Flow) confirmCard(ctx context.Context, paymentMethod string) (models.Payment, error) {
	clientSecret, err := f.backend.CreatePaymentIntent(ctx, f.rideID, f.amount)
	if err != nil {
		return models.Payment{}, err
	}
	ref, err := f.provider.ConfirmIntent(ctx, clientSecret, paymentMethod)
	if err != nil {
		return models.Payment{}, err
	}
	payment, err := f.backend.ConfirmPayment(ctx, api.ConfirmPaymentRequest{
		RideID:          f.rideID,
		PaymentIntentID: ref,
	})
	if err != nil {
		return models.Payment{}, err
	}
	return f.finalize(payment, models.PaymentCard, ref), nil
}

// confirmDirect settles qr and cash with a single backend call; no
// provider step.
func (f *Flow) confirmDirect(ctx context.Context, method models.PaymentMethod) (models.Payment, error) {
	payment, err := f.backend.ConfirmPayment(ctx, api.ConfirmPaymentRequest{
		RideID: f.rideID,
		Method: method,
		Amount: f.amount,
	})
	if err != nil {
		return models.Payment{}, err
	}
	return f.finalize(payment, method, ""), nil
}

// finalize fills fields a terse backend response may omit.
func (f *Flow) finalize(p models.Payment, method models.PaymentMethod, ref string) models.Payment {
	if p.RideID == "" {
		p.RideID = f.rideID
	}
	if p.Amount == 0 {
		p.Amount = f.amount
	}
	if p.Method == "" {
		p.Method = method
	}
	if p.ProviderReference == "" {
		p.ProviderReference = ref
	}
	if p.Status == "" {
		p.Status = models.PaymentSucceeded
	}
	return p
}
