package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/rideshare/internal/api"
	"github.com/example/rideshare/internal/auth"
	"github.com/example/rideshare/internal/config"
	"github.com/example/rideshare/internal/logging"
	"github.com/example/rideshare/internal/realtime"
)

var rootCmd = &cobra.Command{
	Use:           "rideshare",
	Short:         "Ride-hailing client for riders and drivers",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app bundles the wiring every command needs: config, logger, REST
// client, and the session manager that owns the persisted token.
type app struct {
	cfg    config.ClientConfig
	logger *slog.Logger
	client *api.Client
	auth   *auth.Manager
}

func newApp() (*app, error) {
	cfg, err := config.LoadClientConfig()
	if err != nil {
		return nil, err
	}
	logger := logging.NewLogger(os.Stderr, cfg.LogLevel)
	client := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout)
	return &app{
		cfg:    cfg,
		logger: logger,
		client: client,
		auth:   auth.NewManager(client, cfg.TokenPath),
	}, nil
}

// requireSession resumes the persisted session or tells the user to log in.
func (a *app) requireSession(ctx context.Context) (auth.Session, error) {
	sess, ok, err := a.auth.Resume(ctx)
	if err != nil {
		return auth.Session{}, fmt.Errorf("session expired, please log in again: %w", err)
	}
	if !ok {
		return auth.Session{}, fmt.Errorf("not logged in; run `rideshare login` first")
	}
	return sess, nil
}

// openChannel dials the session-scoped push connection. The caller owns
// the returned channel and must Close it.
func (a *app) openChannel(ctx context.Context, sess auth.Session) (*realtime.Channel, error) {
	return realtime.Dial(ctx, a.cfg.WSBaseURL+"/ws", sess.Token, a.logger)
}
