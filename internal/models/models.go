package models

import "time"

// Role distinguishes the two account types the backend knows about.
type Role string

const (
	RoleRider  Role = "rider"
	RoleDriver Role = "driver"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"userType"`
	Phone     string `json:"phone,omitempty"`
}

func (u User) DisplayName() string { return u.FirstName + " " + u.LastName }

// PersonSummary is the trimmed driver/rider shape embedded in ride payloads.
type PersonSummary struct {
	ID        string `json:"id,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
}

func (p PersonSummary) Name() string { return p.FirstName + " " + p.LastName }

// Ride is the single current (rider) or active (driver) trip.
type Ride struct {
	ID             string         `json:"id"`
	Status         string         `json:"status"`
	PickupAddress  string         `json:"pickup_address"`
	DropoffAddress string         `json:"dropoff_address"`
	EstimatedFare  float64        `json:"estimated_fare"`
	FinalFare      *float64       `json:"final_fare,omitempty"`
	Distance       float64        `json:"distance"`
	RideType       string         `json:"ride_type"`
	Driver         *PersonSummary `json:"driver,omitempty"`
	Rider          *PersonSummary `json:"rider,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// PayableFare is the amount a completed ride settles for.
func (r Ride) PayableFare() float64 {
	if r.FinalFare != nil {
		return *r.FinalFare
	}
	return r.EstimatedFare
}

// RideRequest is an unaccepted ride visible to online drivers.
type RideRequest struct {
	ID             string        `json:"id"`
	CreatedAt      time.Time     `json:"created_at"`
	PickupAddress  string        `json:"pickup_address"`
	DropoffAddress string        `json:"dropoff_address"`
	EstimatedFare  float64       `json:"estimated_fare"`
	Distance       float64       `json:"distance"`
	RideType       string        `json:"ride_type"`
	Rider          PersonSummary `json:"rider"`
}

type DriverStats struct {
	CompletedRides int     `json:"completedRides"`
	TotalEarnings  float64 `json:"totalEarnings"`
	AverageRating  float64 `json:"averageRating"`
	TotalRatings   int     `json:"totalRatings"`
}

type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentQR   PaymentMethod = "qr"
	PaymentCash PaymentMethod = "cash"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
)

// Payment finalizes one ride's fare.
type Payment struct {
	ID                string        `json:"id"`
	RideID            string        `json:"ride_id"`
	Amount            float64       `json:"amount"`
	Method            PaymentMethod `json:"payment_method"`
	ProviderReference string        `json:"provider_reference,omitempty"`
	Status            PaymentStatus `json:"status"`
	CreatedAt         time.Time     `json:"created_at"`
}

// PaymentRecord is one settled ride as the payment history endpoint
// reports it: trip details plus the finalized fare and payment status.
type PaymentRecord struct {
	ID             string         `json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	CompletedAt    time.Time      `json:"completed_at"`
	PickupAddress  string         `json:"pickup_address"`
	DropoffAddress string         `json:"dropoff_address"`
	FinalFare      float64        `json:"final_fare"`
	PaymentStatus  PaymentStatus  `json:"payment_status"`
	Distance       float64        `json:"distance"`
	RideType       string         `json:"ride_type"`
	Driver         *PersonSummary `json:"driver,omitempty"`
}

type Rating struct {
	RideID   string `json:"rideId"`
	DriverID string `json:"driverId"`
	Stars    int    `json:"rating"`
	Comment  string `json:"comment,omitempty"`
}
