package cmd

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/example/rideshare/internal/models"
	"github.com/example/rideshare/internal/reconcile"
)

var driveCmd = &cobra.Command{
	Use:   "drive",
	Short: "Go online and watch for ride requests",
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
		if sess.Role != models.RoleDriver {
			return fmt.Errorf("drive requires a driver account")
		}
		ch, err := a.openChannel(ctx, sess)
		if err != nil {
			return err
		}
		defer ch.Close()

		// metrics and health, same shape the backend services expose
		go func() {
			r := mux.NewRouter()
			r.Handle("/metrics", promhttp.Handler())
			r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			}).Methods("GET")
			a.logger.Info("metrics listening", "addr", a.cfg.MetricsAddr)
			if err := http.ListenAndServe(a.cfg.MetricsAddr, r); err != nil {
				a.logger.Error("metrics server stopped", "error", err)
			}
		}()

		board := reconcile.NewBoard(a.client, ch, a.logger)
		changed := make(chan struct{}, 1)
		board.OnChange(func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})

		if err := board.Refresh(ctx); err != nil {
			return err
		}
		board.SetOnline(true)
		defer board.SetOnline(false)

		stats := board.Stats()
		fmt.Printf("Online as %s | %d completed rides, $%.2f earned, %.1f avg rating\n",
			sess.DisplayName, stats.CompletedRides, stats.TotalEarnings, stats.AverageRating)
		printBoard(board.Requests())

		for {
			select {
			case <-changed:
				printBoard(board.Requests())
			case <-ch.Done():
				return fmt.Errorf("connection lost")
			case <-ctx.Done():
				fmt.Println("\nGoing offline.")
				return nil
			}
		}
	},
}

func printBoard(requests []models.RideRequest) {
	if len(requests) == 0 {
		fmt.Println("No open requests. New ones will appear here.")
		return
	}
	fmt.Printf("%d open request(s):\n", len(requests))
	for _, r := range requests {
		fmt.Printf("  %s  $%.2f  %.1f mi  %-8s  %s -> %s  (%s)\n",
			r.ID, r.EstimatedFare, r.Distance, r.RideType,
			r.PickupAddress, r.DropoffAddress, r.Rider.Name())
	}
	fmt.Println("Accept one with `rideshare accept <ride-id>`.")
}

func init() {
	rootCmd.AddCommand(driveCmd)
}
