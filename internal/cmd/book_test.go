package cmd

import (
	"testing"

	"github.com/example/rideshare/internal/models"
	"github.com/example/rideshare/internal/realtime"
)

func TestAcceptanceForFiltersOtherRides(t *testing.T) {
	driver := models.PersonSummary{FirstName: "Sam", LastName: "Ode"}
	cases := []struct {
		name string
		ev   realtime.RideAcceptedEvent
		want bool
	}{
		{"booked ride", realtime.RideAcceptedEvent{RideID: "r1", Driver: driver}, true},
		{"someone else's ride", realtime.RideAcceptedEvent{RideID: "r2", Driver: driver}, false},
		{"no ride id", realtime.RideAcceptedEvent{Driver: driver}, true},
	}
	for _, tc := range cases {
		if got := acceptanceFor(tc.ev, "r1"); got != tc.want {
			t.Errorf("%s: acceptanceFor = %v, want %v", tc.name, got, tc.want)
		}
	}
}
