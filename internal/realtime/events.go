package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/example/rideshare/internal/models"
)

// Names of the push events the backend emits.
const (
	EventNewRideRequest   = "new-ride-request"
	EventRideTaken        = "ride-taken"
	EventRideAccepted     = "ride-accepted"
	EventRideCompleted    = "ride-completed"
	EventPaymentCompleted = "payment-completed"
)

// Event is the closed set of typed push notifications. Each variant
// carries the payload shape the backend sends for that event name.
type Event interface {
	EventName() string
}

// NewRideRequestEvent announces an open request to online drivers.
type NewRideRequestEvent struct {
	Request models.RideRequest
}

func (NewRideRequestEvent) EventName() string { return EventNewRideRequest }

// RideTakenEvent means some driver (possibly this one) claimed a request.
type RideTakenEvent struct {
	RideID string `json:"rideId"`
}

func (RideTakenEvent) EventName() string { return EventRideTaken }

// RideAcceptedEvent carries the assigned driver's summary to the rider.
type RideAcceptedEvent struct {
	RideID string               `json:"rideId"`
	Driver models.PersonSummary `json:"driver"`
}

func (RideAcceptedEvent) EventName() string { return EventRideAccepted }

// RideCompletedEvent closes the trip and fixes the final fare.
type RideCompletedEvent struct {
	RideID    string  `json:"rideId"`
	FinalFare float64 `json:"finalFare"`
}

func (RideCompletedEvent) EventName() string { return EventRideCompleted }

// PaymentCompletedEvent tells the rider view the fare has been settled.
type PaymentCompletedEvent struct {
	RideID string  `json:"rideId"`
	Amount float64 `json:"amount,omitempty"`
}

func (PaymentCompletedEvent) EventName() string { return EventPaymentCompleted }

// frame is the wire envelope: {"event": "...", "data": {...}}.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func decodeEvent(f frame) (Event, error) {
	switch f.Event {
	case EventNewRideRequest:
		var req models.RideRequest
		if err := json.Unmarshal(f.Data, &req); err != nil {
			return nil, err
		}
		return NewRideRequestEvent{Request: req}, nil
	case EventRideTaken:
		var ev RideTakenEvent
		if err := json.Unmarshal(f.Data, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case EventRideAccepted:
		var ev RideAcceptedEvent
		if err := json.Unmarshal(f.Data, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case EventRideCompleted:
		var ev RideCompletedEvent
		if err := json.Unmarshal(f.Data, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case EventPaymentCompleted:
		var ev PaymentCompletedEvent
		if err := json.Unmarshal(f.Data, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	default:
		return nil, fmt.Errorf("unknown event %q", f.Event)
	}
}
