package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "3001", cfg.Port)
	require.Equal(t, 25, cfg.MaxUploadSizeMB)
	require.Contains(t, cfg.AllowedExtensions(), "pdf")
	require.False(t, cfg.IsProduction())
	require.False(t, cfg.StripeConfigured())
	require.False(t, cfg.DriveConfigured())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FORMS_WEBHOOK_URL", "https://hook.example.com/forms")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("APP_ENV", "production")
	t.Setenv("ALLOWED_ORIGINS", "https://printora.it, https://www.printora.it")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.True(t, cfg.FormsConfigured())
	require.True(t, cfg.StripeConfigured())
	require.True(t, cfg.IsProduction())
	require.Equal(t, []string{"https://printora.it", "https://www.printora.it"}, cfg.AllowedOrigins())
}

func TestDriveConfiguredNeedsBothValues(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_KEY", "/keys/sa.json")
	cfg, err := Load()
	require.NoError(t, err)
	require.False(t, cfg.DriveConfigured())

	t.Setenv("DRIVE_UPLOADS_FOLDER_ID", "folder123")
	cfg, err = Load()
	require.NoError(t, err)
	require.True(t, cfg.DriveConfigured())
}
