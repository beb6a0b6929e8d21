package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/rideshare/internal/api"
	"github.com/example/rideshare/internal/fare"
	"github.com/example/rideshare/internal/realtime"
)

var (
	bookFrom     string
	bookTo       string
	bookType     string
	bookDistance float64
	bookWait     time.Duration
)

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Book a ride and wait for a driver",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		sess, err := a.requireSession(ctx)
		if err != nil {
			return err
		}

		estimate, err := fare.Estimate(bookDistance, bookType)
		if err != nil {
			return err
		}
		fmt.Printf("Fare estimate: $%.2f (base $%.2f + %.1f mi, %s)\n",
			estimate, fare.BaseFare, bookDistance, bookType)

		booked, err := a.client.RequestRide(ctx, api.RideBookingRequest{
			PickupAddress:  bookFrom,
			DropoffAddress: bookTo,
			RideType:       bookType,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Ride %s booked: %s -> %s, status %s\n",
			booked.ID, booked.PickupAddress, booked.DropoffAddress, booked.Status)

		if bookWait <= 0 {
			fmt.Println("Run `rideshare track` to follow your ride.")
			return nil
		}

		ch, err := a.openChannel(ctx, sess)
		if err != nil {
			return err
		}
		defer ch.Close()

		accepted := make(chan realtime.RideAcceptedEvent, 1)
		sub := ch.Subscribe(realtime.EventRideAccepted, func(ev realtime.Event) {
			e, ok := ev.(realtime.RideAcceptedEvent)
			if !ok || !acceptanceFor(e, booked.ID) {
				return
			}
			select {
			case accepted <- e:
			default:
			}
		})
		defer sub.Close()

		fmt.Println("Waiting for a driver...")
		select {
		case e := <-accepted:
			fmt.Printf("Driver %s accepted your ride!\n", e.Driver.Name())
		case <-time.After(bookWait):
			fmt.Println("No driver yet. Run `rideshare track` to keep following.")
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	},
}

// acceptanceFor reports whether an acceptance event addresses the booked
// ride. Events with no ride id are treated as addressed to it.
func acceptanceFor(e realtime.RideAcceptedEvent, rideID string) bool {
	return e.RideID == "" || e.RideID == rideID
}

func init() {
	bookCmd.Flags().StringVar(&bookFrom, "from", "", "pickup address")
	bookCmd.Flags().StringVar(&bookTo, "to", "", "destination address")
	bookCmd.Flags().StringVar(&bookType, "type", "standard", "ride type (economy, standard, premium, xl)")
	bookCmd.Flags().Float64Var(&bookDistance, "distance", 5, "trip distance in miles, used for the estimate")
	bookCmd.Flags().DurationVar(&bookWait, "wait", 2*time.Minute, "how long to wait for a driver (0 to return immediately)")
	bookCmd.MarkFlagRequired("from")
	bookCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(bookCmd)
}
