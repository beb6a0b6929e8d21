package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/rideshare/internal/models"
	"github.com/example/rideshare/internal/payments"
	"github.com/example/rideshare/internal/rating"
	"github.com/example/rideshare/internal/ride"
)

var (
	payMethod string
	payToken  string
)

var payCmd = &cobra.Command{
	Use:   "pay",
	Short: "Settle the fare for your completed ride",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if _, err := a.requireSession(ctx); err != nil {
			return err
		}

		current, err := a.client.CurrentRide(ctx)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("no ride to pay for")
		}
		if ride.Status(current.Status) != ride.StatusCompleted {
			return fmt.Errorf("ride %s is %s; only completed rides can be paid", current.ID, current.Status)
		}

		method := models.PaymentMethod(payMethod)
		flow := payments.NewFlow(a.client, payments.NewStripeProvider(a.cfg.StripeKey), current.ID, current.PayableFare())
		flow.OnSuccess(func(p models.Payment) {
			fmt.Printf("Payment successful! $%.2f by %s\n", p.Amount, p.Method)
		})

		if _, err := flow.Confirm(ctx, method, payToken); err != nil {
			return err
		}
		fmt.Println("You can now rate your driver with `rideshare rate`.")
		return nil
	},
}

var (
	rateStars   int
	rateComment string
)

var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Rate the driver of your completed ride",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if _, err := a.requireSession(ctx); err != nil {
			return err
		}

		current, err := a.client.CurrentRide(ctx)
		if err != nil {
			return err
		}
		if current == nil || ride.Status(current.Status) != ride.StatusCompleted {
			return fmt.Errorf("only a completed ride can be rated")
		}
		driverID := ""
		if current.Driver != nil {
			driverID = current.Driver.ID
		}

		flow := rating.NewFlow(a.client, current.ID, driverID)
		flow.SetStars(rateStars)
		flow.SetComment(rateComment)
		if err := flow.Submit(ctx); err != nil {
			return err
		}
		fmt.Printf("Thanks! Rated %d star(s).\n", flow.Stars())
		return nil
	},
}

func init() {
	payCmd.Flags().StringVar(&payMethod, "method", "card", "payment method: card, qr, or cash")
	payCmd.Flags().StringVar(&payToken, "payment-method", "", "provider payment method token (card only)")
	rateCmd.Flags().IntVar(&rateStars, "stars", 5, "stars, 1-5")
	rateCmd.Flags().StringVar(&rateComment, "comment", "", "optional comment")
	rootCmd.AddCommand(payCmd, rateCmd)
}
