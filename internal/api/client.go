package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/example/rideshare/internal/models"
	"github.com/example/rideshare/internal/observability"
)

// Error is a failed backend call. Message carries the backend's error
// envelope verbatim so the caller can show it to the user as-is.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "request failed with status " + strconv.Itoa(e.StatusCode)
}

// Client is a typed client for the rideshare REST backend. All
// authenticated calls carry the bearer token set via SetToken.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	token string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// SetToken installs (or clears, with "") the bearer credential used for
// authenticated calls.
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) Token() string { return c.token }

type authResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Role      models.Role `json:"userType"`
	Phone     string      `json:"phone,omitempty"`
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (models.User, string, error) {
	var out authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &out); err != nil {
		return models.User{}, "", err
	}
	return out.User, out.Token, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (models.User, string, error) {
	var out authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &out); err != nil {
		return models.User{}, "", err
	}
	return out.User, out.Token, nil
}

func (c *Client) Profile(ctx context.Context) (models.User, error) {
	var out struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/profile", nil, &out); err != nil {
		return models.User{}, err
	}
	return out.User, nil
}

// CurrentRide returns the rider's current ride, or nil when none is active.
func (c *Client) CurrentRide(ctx context.Context) (*models.Ride, error) {
	var out struct {
		Ride *models.Ride `json:"ride"`
	}
	if err := c.do(ctx, http.MethodGet, "/rides/current", nil, &out); err != nil {
		return nil, err
	}
	return out.Ride, nil
}

func (c *Client) RideHistory(ctx context.Context) ([]models.Ride, error) {
	var out struct {
		Rides []models.Ride `json:"rides"`
	}
	if err := c.do(ctx, http.MethodGet, "/rides/history", nil, &out); err != nil {
		return nil, err
	}
	return out.Rides, nil
}

type RideBookingRequest struct {
	PickupAddress      string             `json:"pickupAddress"`
	DropoffAddress     string             `json:"dropoffAddress"`
	PickupCoordinates  models.Coordinates `json:"pickupCoordinates"`
	DropoffCoordinates models.Coordinates `json:"dropoffCoordinates"`
	RideType           string             `json:"rideType"`
}

// RequestRide books a new ride. The returned ride is in requested status.
func (c *Client) RequestRide(ctx context.Context, req RideBookingRequest) (models.Ride, error) {
	var out struct {
		Ride models.Ride `json:"ride"`
	}
	if err := c.do(ctx, http.MethodPost, "/rides/request", req, &out); err != nil {
		return models.Ride{}, err
	}
	return out.Ride, nil
}

func (c *Client) AvailableRides(ctx context.Context) ([]models.RideRequest, error) {
	var out struct {
		Rides []models.RideRequest `json:"rides"`
	}
	if err := c.do(ctx, http.MethodGet, "/drivers/available-rides", nil, &out); err != nil {
		return nil, err
	}
	return out.Rides, nil
}

func (c *Client) DriverStats(ctx context.Context) (models.DriverStats, error) {
	var out models.DriverStats
	if err := c.do(ctx, http.MethodGet, "/drivers/stats", nil, &out); err != nil {
		return models.DriverStats{}, err
	}
	return out, nil
}

// AcceptRide claims an open request for the authenticated driver.
func (c *Client) AcceptRide(ctx context.Context, rideID string) (models.Ride, error) {
	var out struct {
		Ride models.Ride `json:"ride"`
	}
	if err := c.doRoute(ctx, http.MethodPost, "/rides/{id}/accept", "/rides/"+rideID+"/accept", struct{}{}, &out); err != nil {
		return models.Ride{}, err
	}
	return out.Ride, nil
}

// CompleteRide marks the driver's active ride finished with its final fare.
func (c *Client) CompleteRide(ctx context.Context, rideID string, finalFare float64) (models.Ride, error) {
	body := map[string]float64{"finalFare": finalFare}
	var out struct {
		Ride models.Ride `json:"ride"`
	}
	if err := c.doRoute(ctx, http.MethodPost, "/rides/{id}/complete", "/rides/"+rideID+"/complete", body, &out); err != nil {
		return models.Ride{}, err
	}
	return out.Ride, nil
}

// CreatePaymentIntent asks the backend for a provider client secret scoped
// to the exact ride and amount.
func (c *Client) CreatePaymentIntent(ctx context.Context, rideID string, amount float64) (string, error) {
	body := map[string]any{"rideId": rideID, "amount": amount}
	var out struct {
		ClientSecret string `json:"clientSecret"`
	}
	if err := c.do(ctx, http.MethodPost, "/payments/create-payment-intent", body, &out); err != nil {
		return "", err
	}
	return out.ClientSecret, nil
}

type ConfirmPaymentRequest struct {
	RideID          string               `json:"rideId"`
	PaymentIntentID string               `json:"paymentIntentId,omitempty"`
	Method          models.PaymentMethod `json:"paymentMethod,omitempty"`
	Amount          float64              `json:"amount,omitempty"`
}

func (c *Client) ConfirmPayment(ctx context.Context, req ConfirmPaymentRequest) (models.Payment, error) {
	var out struct {
		Payment models.Payment `json:"payment"`
	}
	if err := c.do(ctx, http.MethodPost, "/payments/confirm-payment", req, &out); err != nil {
		return models.Payment{}, err
	}
	return out.Payment, nil
}

// PaymentHistory lists the rider's settled rides with their finalized
// fares, newest first.
func (c *Client) PaymentHistory(ctx context.Context) ([]models.PaymentRecord, error) {
	var out struct {
		Payments []models.PaymentRecord `json:"payments"`
	}
	if err := c.do(ctx, http.MethodGet, "/payments/history", nil, &out); err != nil {
		return nil, err
	}
	return out.Payments, nil
}

func (c *Client) SubmitRating(ctx context.Context, r models.Rating) error {
	return c.do(ctx, http.MethodPost, "/users/rate", r, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.doRoute(ctx, method, path, path, body, out)
}

// doRoute issues one request. route is the path template used as the
// metrics label so endpoints with ids in the path keep a bounded label
// set; path is the expanded URL path actually requested.
func (c *Client) doRoute(ctx context.Context, method, route, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	observability.APIRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.APIRequestsTotal.WithLabelValues(route, "error").Inc()
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	observability.APIRequestsTotal.WithLabelValues(route, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}
	var envelope struct {
		Error string `json:"error"`
	}
	if b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16)); err == nil {
		if json.Unmarshal(b, &envelope) == nil {
			apiErr.Message = envelope.Error
		}
	}
	return apiErr
}
