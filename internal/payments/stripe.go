package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

// StripeProvider confirms PaymentIntents created by the backend. The
// client secret identifies the intent; the card itself is represented by
// a payment method token so raw card data never reaches this process.
type StripeProvider struct{}

// NewStripeProvider initializes the stripe client with the given API key.
func NewStripeProvider(apiKey string) *StripeProvider {
	stripe.Key = apiKey
	return &StripeProvider{}
}

func (s *StripeProvider) ConfirmIntent(ctx context.Context, clientSecret, paymentMethod string) (string, error) {
	intentID, err := intentIDFromSecret(clientSecret)
	if err != nil {
		return "", err
	}
	params := &stripe.PaymentIntentConfirmParams{}
	// stripe-go does not model client_secret on confirm params; send it
	// as an extra form field so the wire payload is unchanged.
	params.AddExtra("client_secret", clientSecret)
	if paymentMethod != "" {
		params.PaymentMethod = stripe.String(paymentMethod)
	}
	params.Context = ctx
	pi, err := paymentintent.Confirm(intentID, params)
	if err != nil {
		var sErr *stripe.Error
		if errors.As(err, &sErr) && sErr.Msg != "" {
			// surface the provider's own message verbatim
			return "", errors.New(sErr.Msg)
		}
		return "", err
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return "", fmt.Errorf("payment intent status %s", pi.Status)
	}
	return pi.ID, nil
}

// intentIDFromSecret extracts the intent id from a client secret of the
// form pi_XXX_secret_YYY.
func intentIDFromSecret(clientSecret string) (string, error) {
	id, _, found := strings.Cut(clientSecret, "_secret")
	if !found || !strings.HasPrefix(id, "pi_") {
		return "", fmt.Errorf("malformed client secret")
	}
	return id, nil
}
