package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/frankcoz86/printora-backend/internal/config"
	"github.com/frankcoz86/printora-backend/internal/drive"
	"github.com/frankcoz86/printora-backend/internal/relay"
	"github.com/frankcoz86/printora-backend/internal/stripe"
	"github.com/frankcoz86/printora-backend/internal/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the relay HTTP server",
	Long: `Start the relay HTTP server.

Configuration comes from the environment (or a local .env file); run
"printora-backend config" to inspect what was resolved.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to :$PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg)
	relayClient := relay.NewClient(logger)
	stripeClient := stripe.NewClient(cfg.StripeSecretKey, relayClient, logger)

	var driveClient web.DriveClient
	if cfg.ServiceAccountKeyPath != "" {
		dc, err := drive.NewClient(cfg.ServiceAccountKeyPath, relayClient, logger)
		if err != nil {
			// Uploads will fail with a configuration error; everything else works.
			logger.Error("drive client unavailable", "error", err)
		} else {
			driveClient = dc
		}
	}

	server := web.NewServer(cfg, logger, relayClient, stripeClient, driveClient)

	addr := serveAddr
	if addr == "" {
		addr = ":" + cfg.Port
	}
	logger.Info("starting relay server",
		"addr", addr,
		"env", cfg.AppEnv,
		"stripe_configured", cfg.StripeConfigured(),
		"drive_configured", cfg.DriveConfigured(),
		"forms_webhook_configured", cfg.FormsConfigured(),
		"order_webhook_configured", cfg.OrderWebhookConfigured(),
	)
	return server.Run(addr)
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
