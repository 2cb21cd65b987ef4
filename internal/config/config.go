// Package config resolves the process configuration from the environment,
// once, at startup. The resulting struct is passed by pointer and never
// mutated afterwards.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds every recognized environment option.
type Config struct {
	Port string `mapstructure:"PORT"`

	FormsWebhookURL string `mapstructure:"FORMS_WEBHOOK_URL"`
	OrderWebhookURL string `mapstructure:"ORDER_WEBHOOK_URL"`
	RelaySecret     string `mapstructure:"RELAY_SHARED_SECRET"`

	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`

	ServiceAccountKeyPath string `mapstructure:"GOOGLE_SERVICE_ACCOUNT_KEY"`
	DriveUploadsFolderID  string `mapstructure:"DRIVE_UPLOADS_FOLDER_ID"`

	MaxUploadSizeMB   int    `mapstructure:"MAX_UPLOAD_SIZE_MB"`
	UploadExtensions  string `mapstructure:"ALLOWED_UPLOAD_EXTENSIONS"`
	AllowedOriginsCSV string `mapstructure:"ALLOWED_ORIGINS"`

	FrontendURL string `mapstructure:"FRONTEND_URL"`
	AppEnv      string `mapstructure:"APP_ENV"`
}

// Load reads configuration from a local .env file when present, with real
// environment variables taking precedence.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "3001")
	v.SetDefault("FORMS_WEBHOOK_URL", "")
	v.SetDefault("ORDER_WEBHOOK_URL", "")
	v.SetDefault("RELAY_SHARED_SECRET", "")
	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	v.SetDefault("GOOGLE_SERVICE_ACCOUNT_KEY", "")
	v.SetDefault("DRIVE_UPLOADS_FOLDER_ID", "")
	v.SetDefault("MAX_UPLOAD_SIZE_MB", 25)
	v.SetDefault("ALLOWED_UPLOAD_EXTENSIONS", "pdf,png,jpg,jpeg,svg,ai,eps,zip,tif,tiff")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("APP_ENV", "development")

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// A missing .env file is fine; the environment alone is a valid source.
	_ = v.ReadInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// AllowedExtensions returns the upload allow-list as a slice.
func (c *Config) AllowedExtensions() []string {
	return splitCSV(c.UploadExtensions)
}

// AllowedOrigins returns the CORS origin list as a slice.
func (c *Config) AllowedOrigins() []string {
	return splitCSV(c.AllowedOriginsCSV)
}

// IsProduction reports whether error detail should be withheld from replies.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// StripeConfigured reports whether checkout routes can reach Stripe.
func (c *Config) StripeConfigured() bool { return c.StripeSecretKey != "" }

// DriveConfigured reports whether the upload route can reach Drive.
func (c *Config) DriveConfigured() bool {
	return c.ServiceAccountKeyPath != "" && c.DriveUploadsFolderID != ""
}

// FormsConfigured reports whether the contact relay has an endpoint.
func (c *Config) FormsConfigured() bool { return c.FormsWebhookURL != "" }

// OrderWebhookConfigured reports whether the order relay has an endpoint.
func (c *Config) OrderWebhookConfigured() bool { return c.OrderWebhookURL != "" }

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
