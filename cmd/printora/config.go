package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frankcoz86/printora-backend/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration (secrets redacted)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		fmt.Printf("PORT                        %s\n", cfg.Port)
		fmt.Printf("APP_ENV                     %s\n", cfg.AppEnv)
		fmt.Printf("FORMS_WEBHOOK_URL           %s\n", orUnset(cfg.FormsWebhookURL))
		fmt.Printf("ORDER_WEBHOOK_URL           %s\n", orUnset(cfg.OrderWebhookURL))
		fmt.Printf("RELAY_SHARED_SECRET         %s\n", redact(cfg.RelaySecret))
		fmt.Printf("STRIPE_SECRET_KEY           %s\n", redact(cfg.StripeSecretKey))
		fmt.Printf("STRIPE_WEBHOOK_SECRET       %s\n", redact(cfg.StripeWebhookSecret))
		fmt.Printf("GOOGLE_SERVICE_ACCOUNT_KEY  %s\n", orUnset(cfg.ServiceAccountKeyPath))
		fmt.Printf("DRIVE_UPLOADS_FOLDER_ID     %s\n", orUnset(cfg.DriveUploadsFolderID))
		fmt.Printf("MAX_UPLOAD_SIZE_MB          %d\n", cfg.MaxUploadSizeMB)
		fmt.Printf("ALLOWED_UPLOAD_EXTENSIONS   %s\n", cfg.UploadExtensions)
		fmt.Printf("ALLOWED_ORIGINS             %s\n", cfg.AllowedOriginsCSV)
		fmt.Printf("FRONTEND_URL                %s\n", cfg.FrontendURL)
		return nil
	},
}

func redact(value string) string {
	if value == "" {
		return "(unset)"
	}
	return "(set)"
}

func orUnset(value string) string {
	if value == "" {
		return "(unset)"
	}
	return value
}
