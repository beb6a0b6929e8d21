package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/rideshare/internal/reconcile"
	"github.com/example/rideshare/internal/ride"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Follow your current ride until it is completed and paid",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sess, err := a.requireSession(ctx)
		if err != nil {
			return err
		}
		ch, err := a.openChannel(ctx, sess)
		if err != nil {
			return err
		}
		defer ch.Close()

		updates := make(chan reconcile.RideSnapshot, 16)
		state := reconcile.NewRideState(a.client, ch, a.logger)
		state.OnChange(func(s reconcile.RideSnapshot) {
			select {
			case updates <- s:
			default:
			}
		})
		defer state.Stop()

		if err := state.Start(ctx); err != nil {
			return err
		}

		snap := state.Snapshot()
		if snap.Ride == nil {
			fmt.Println("No active ride. Run `rideshare book` to request one.")
			return nil
		}
		printSnapshot(snap)

		for {
			select {
			case snap = <-updates:
				printSnapshot(snap)
				if snap.RatingEligible() {
					fmt.Println("Ride settled. Run `rideshare rate` to rate your driver.")
					return nil
				}
				if snap.Status == ride.StatusCancelled {
					return nil
				}
			case <-ch.Done():
				return fmt.Errorf("connection lost")
			case <-ctx.Done():
				return nil
			}
		}
	},
}

func printSnapshot(s reconcile.RideSnapshot) {
	if s.Ride == nil {
		return
	}
	fmt.Printf("[%s] %s\n", s.Status, ride.Describe(s.Status))
	if s.Ride.Driver != nil {
		fmt.Printf("  Driver: %s", s.Ride.Driver.Name())
		if s.Ride.Driver.Phone != "" {
			fmt.Printf(" (call %s)", s.Ride.Driver.Phone)
		}
		fmt.Println()
	}
	if s.Status == ride.StatusCompleted {
		fmt.Printf("  Fare due: $%.2f", s.Ride.PayableFare())
		if s.Paid {
			fmt.Print(" (paid)")
		} else {
			fmt.Print(" - run `rideshare pay`")
		}
		fmt.Println()
	}
}

func init() {
	rootCmd.AddCommand(trackCmd)
}
