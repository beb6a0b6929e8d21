package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ClientConfig captures all tunable parameters for the client process.
// Values are primarily loaded from environment variables with sane defaults
// so the binary can run locally without excessive setup.
type ClientConfig struct {
	APIBaseURL  string
	WSBaseURL   string
	HTTPTimeout time.Duration

	TokenPath string

	MetricsAddr string

	StripeKey string

	LogLevel string
}

func defaultClientConfig() ClientConfig {
	home, _ := os.UserHomeDir()
	return ClientConfig{
		APIBaseURL:  "http://localhost:5000/api",
		WSBaseURL:   "ws://localhost:5000",
		HTTPTimeout: 10 * time.Second,
		TokenPath:   filepath.Join(home, ".rideshare", "token"),
		MetricsAddr: ":2112",
		LogLevel:    "info",
	}
}

func LoadClientConfig() (ClientConfig, error) {
	cfg := defaultClientConfig()
	var errs []error

	setStringFromEnv(&cfg.APIBaseURL, "RIDESHARE_API_URL")
	setStringFromEnv(&cfg.WSBaseURL, "RIDESHARE_WS_URL")
	setDurationFromEnv(&cfg.HTTPTimeout, "RIDESHARE_HTTP_TIMEOUT", &errs)
	setStringFromEnv(&cfg.TokenPath, "RIDESHARE_TOKEN_PATH")
	setStringFromEnv(&cfg.MetricsAddr, "RIDESHARE_METRICS_ADDR")

	cfg.StripeKey = os.Getenv("STRIPE_API_KEY")

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if cfg.APIBaseURL == "" {
		errs = append(errs, fmt.Errorf("RIDESHARE_API_URL must not be empty"))
	}
	if cfg.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("RIDESHARE_HTTP_TIMEOUT must be > 0"))
	}

	return cfg, errors.Join(errs...)
}

func setDurationFromEnv(target *time.Duration, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = d
	}
}

func setStringFromEnv(target *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}
