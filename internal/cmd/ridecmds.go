package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var acceptCmd = &cobra.Command{
	Use:   "accept <ride-id>",
	Short: "Accept an open ride request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if _, err := a.requireSession(ctx); err != nil {
			return err
		}
		accepted, err := a.client.AcceptRide(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Accepted ride %s: %s -> %s ($%.2f estimated)\n",
			accepted.ID, accepted.PickupAddress, accepted.DropoffAddress, accepted.EstimatedFare)
		return nil
	},
}

var completeFare float64

var completeCmd = &cobra.Command{
	Use:   "complete <ride-id>",
	Short: "Mark your active ride finished with its final fare",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if _, err := a.requireSession(ctx); err != nil {
			return err
		}
		done, err := a.client.CompleteRide(ctx, args[0], completeFare)
		if err != nil {
			return err
		}
		fmt.Printf("Ride %s completed, final fare $%.2f\n", done.ID, done.PayableFare())
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List your past rides",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if _, err := a.requireSession(ctx); err != nil {
			return err
		}
		rides, err := a.client.RideHistory(ctx)
		if err != nil {
			return err
		}
		if len(rides) == 0 {
			fmt.Println("No rides yet.")
			return nil
		}
		var total float64
		for _, r := range rides {
			fmt.Printf("%s  %-10s  $%7.2f  %s -> %s\n",
				r.CreatedAt.Format("2006-01-02 15:04"), r.Status, r.PayableFare(),
				r.PickupAddress, r.DropoffAddress)
			total += r.PayableFare()
		}
		fmt.Printf("%d rides, $%.2f total\n", len(rides), total)
		return nil
	},
}

var paymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "List your settled rides and what you paid",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if _, err := a.requireSession(ctx); err != nil {
			return err
		}
		payments, err := a.client.PaymentHistory(ctx)
		if err != nil {
			return err
		}
		if len(payments) == 0 {
			fmt.Println("No payments yet.")
			return nil
		}
		var total float64
		for _, p := range payments {
			driver := "-"
			if p.Driver != nil {
				driver = p.Driver.Name()
			}
			fmt.Printf("%s  $%7.2f  %-9s  %s -> %s  (%s)\n",
				p.CompletedAt.Format("2006-01-02 15:04"), p.FinalFare, p.PaymentStatus,
				p.PickupAddress, p.DropoffAddress, driver)
			total += p.FinalFare
		}
		fmt.Printf("%d payments, $%.2f total, $%.2f average\n",
			len(payments), total, total/float64(len(payments)))
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show your driver stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if _, err := a.requireSession(ctx); err != nil {
			return err
		}
		stats, err := a.client.DriverStats(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Completed rides: %d\n", stats.CompletedRides)
		fmt.Printf("Total earnings:  $%.2f\n", stats.TotalEarnings)
		if stats.TotalRatings > 0 {
			fmt.Printf("Average rating:  %.1f (%d ratings)\n", stats.AverageRating, stats.TotalRatings)
		} else {
			fmt.Println("Average rating:  N/A")
		}
		return nil
	},
}

func init() {
	completeCmd.Flags().Float64Var(&completeFare, "fare", 0, "final fare in dollars")
	completeCmd.MarkFlagRequired("fare")
	rootCmd.AddCommand(acceptCmd, completeCmd, historyCmd, paymentsCmd, statsCmd)
}
