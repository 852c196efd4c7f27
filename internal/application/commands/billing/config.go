package billing

import (
	"log/slog"
	"os"
)

type Config struct {
	webhookSecret string
}

func NewConfig() Config {
	cfg := Config{
		webhookSecret: os.Getenv("STRIPE_WEBHOOK"),
	}
	if cfg.webhookSecret == "" {
		slog.Error("STRIPE_WEBHOOK is not set, billing webhook endpoint will reject all deliveries")
	}
	return cfg
}
