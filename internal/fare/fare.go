// Package fare computes pre-trip fare estimates shown before a booking
// is confirmed. Rates mirror the backend's; the estimate is display-only
// and the backend's figure is authoritative once the ride is created.
package fare

import (
	"fmt"
	"math"
)

const BaseFare = 2.50

// RideType describes one bookable service tier.
type RideType struct {
	ID          string
	Name        string
	Description string
	PerMile     float64
}

var rideTypes = []RideType{
	{ID: "economy", Name: "Economy", Description: "Affordable rides", PerMile: 1.20},
	{ID: "standard", Name: "Standard", Description: "Comfortable rides", PerMile: 1.50},
	{ID: "premium", Name: "Premium", Description: "Premium vehicles", PerMile: 2.00},
	{ID: "xl", Name: "RideShare XL", Description: "6+ passengers", PerMile: 2.50},
}

// Types lists the bookable tiers in display order.
func Types() []RideType {
	out := make([]RideType, len(rideTypes))
	copy(out, rideTypes)
	return out
}

// Lookup resolves a ride type by id.
func Lookup(id string) (RideType, bool) {
	for _, t := range rideTypes {
		if t.ID == id {
			return t, true
		}
	}
	return RideType{}, false
}

// Estimate returns base fare plus distance charge, rounded to cents.
func Estimate(distanceMiles float64, rideType string) (float64, error) {
	t, ok := Lookup(rideType)
	if !ok {
		return 0, fmt.Errorf("unknown ride type %q", rideType)
	}
	if distanceMiles < 0 {
		return 0, fmt.Errorf("negative distance %.2f", distanceMiles)
	}
	total := BaseFare + distanceMiles*t.PerMile
	return math.Round(total*100) / 100, nil
}
