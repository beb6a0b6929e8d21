package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/example/rideshare/internal/api"
	"github.com/example/rideshare/internal/models"
)

type fakeBackend struct {
	clientSecret string
	intentErr    error
	confirmErr   error

	intentCalls  int
	confirmCalls int
	lastConfirm  api.ConfirmPaymentRequest
}

func (f *fakeBackend) CreatePaymentIntent(ctx context.Context, rideID string, amount float64) (string, error) {
	f.intentCalls++
	return f.clientSecret, f.intentErr
}

func (f *fakeBackend) ConfirmPayment(ctx context.Context, req api.ConfirmPaymentRequest) (models.Payment, error) {
	f.confirmCalls++
	f.lastConfirm = req
	if f.confirmErr != nil {
		return models.Payment{}, f.confirmErr
	}
	return models.Payment{ID: "pay1", RideID: req.RideID, Status: models.PaymentSucceeded}, nil
}

type fakeProvider struct {
	ref   string
	err   error
	calls int
}

func (f *fakeProvider) ConfirmIntent(ctx context.Context, clientSecret, paymentMethod string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.ref, nil
}

func TestCashPaymentSkipsProvider(t *testing.T) {
	backend := &fakeBackend{}
	provider := &fakeProvider{}
	flow := NewFlow(backend, provider, "r1", 23.50)

	var successes int
	flow.OnSuccess(func(models.Payment) { successes++ })

	p, err := flow.Confirm(context.Background(), models.PaymentCash, "")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if p.Status != models.PaymentSucceeded || p.Amount != 23.50 || p.Method != models.PaymentCash {
		t.Fatalf("unexpected payment: %+v", p)
	}
	if provider.calls != 0 {
		t.Fatalf("provider called %d times for cash", provider.calls)
	}
	if backend.lastConfirm.Method != models.PaymentCash || backend.lastConfirm.Amount != 23.50 {
		t.Fatalf("unexpected backend confirm: %+v", backend.lastConfirm)
	}
	if successes != 1 {
		t.Fatalf("success callback fired %d times", successes)
	}

	// the flow is terminal after success
	if _, err := flow.Confirm(context.Background(), models.PaymentCash, ""); err != ErrAlreadyPaid {
		t.Fatalf("resubmit after success: err = %v", err)
	}
	if successes != 1 {
		t.Fatalf("success callback fired again: %d", successes)
	}
}

func TestCardPaymentThreeStepPath(t *testing.T) {
	backend := &fakeBackend{clientSecret: "pi_123_secret_abc"}
	provider := &fakeProvider{ref: "pi_123"}
	flow := NewFlow(backend, provider, "r1", 18.75)

	p, err := flow.Confirm(context.Background(), models.PaymentCard, "pm_card_visa")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if backend.intentCalls != 1 || provider.calls != 1 || backend.confirmCalls != 1 {
		t.Fatalf("calls = intent %d / provider %d / confirm %d",
			backend.intentCalls, provider.calls, backend.confirmCalls)
	}
	if backend.lastConfirm.PaymentIntentID != "pi_123" {
		t.Fatalf("backend confirm missing provider reference: %+v", backend.lastConfirm)
	}
	if p.ProviderReference != "pi_123" || p.Method != models.PaymentCard {
		t.Fatalf("unexpected payment: %+v", p)
	}
}

func TestProviderErrorLeavesFlowResubmittable(t *testing.T) {
	backend := &fakeBackend{clientSecret: "pi_123_secret_abc"}
	provider := &fakeProvider{err: errors.New("Your card was declined.")}
	flow := NewFlow(backend, provider, "r1", 18.75)

	var successes int
	flow.OnSuccess(func(models.Payment) { successes++ })

	_, err := flow.Confirm(context.Background(), models.PaymentCard, "pm_bad")
	if err == nil || err.Error() != "Your card was declined." {
		t.Fatalf("provider error not surfaced verbatim: %v", err)
	}
	if backend.confirmCalls != 0 {
		t.Fatal("backend confirm called despite provider failure")
	}
	if successes != 0 {
		t.Fatal("success callback fired on failure")
	}

	// a retry is allowed and succeeds once the provider recovers
	provider.err = nil
	provider.ref = "pi_123"
	if _, err := flow.Confirm(context.Background(), models.PaymentCard, "pm_card_visa"); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if successes != 1 {
		t.Fatalf("success callback fired %d times", successes)
	}
}

func TestBackendErrorSurfaced(t *testing.T) {
	backend := &fakeBackend{confirmErr: &api.Error{StatusCode: 500, Message: "payment record failed"}}
	flow := NewFlow(backend, &fakeProvider{}, "r1", 9.99)

	_, err := flow.Confirm(context.Background(), models.PaymentQR, "")
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Message != "payment record failed" {
		t.Fatalf("backend error not surfaced: %v", err)
	}
}

func TestUnknownMethodRejected(t *testing.T) {
	flow := NewFlow(&fakeBackend{}, &fakeProvider{}, "r1", 5)
	if _, err := flow.Confirm(context.Background(), models.PaymentMethod("barter"), ""); !errors.Is(err, ErrUnsupportedMethod) {
		t.Fatalf("err = %v, want ErrUnsupportedMethod", err)
	}
}

func TestIntentIDFromSecret(t *testing.T) {
	id, err := intentIDFromSecret("pi_3Abc_secret_xyz")
	if err != nil || id != "pi_3Abc" {
		t.Fatalf("got %q err=%v", id, err)
	}
	if _, err := intentIDFromSecret("garbage"); err == nil {
		t.Fatal("expected error for malformed secret")
	}
}
