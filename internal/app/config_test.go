package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join("testdata")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)

	require.Equal(t, "mysql", cfg.Database.Driver)
	require.Equal(t, "db.example.com", cfg.Database.Host)
	require.Equal(t, 3307, cfg.Database.Port)
	require.Equal(t, "ecm", cfg.Database.Name)
	require.Equal(t, "ecm", cfg.Database.User)
	require.Equal(t, "db-pass", cfg.Database.Password)

	require.Equal(t, "jwt-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, "ecm-test", cfg.Auth.JWT.Issuer)
	require.Equal(t, 12*time.Hour, cfg.Auth.JWT.TTL)
	require.Equal(t, 5*time.Minute, cfg.Auth.OTP.TTL)

	require.True(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, "smtp.example.com", cfg.Email.SMTP.Host)
	require.Equal(t, 2525, cfg.Email.SMTP.Port)
	require.Equal(t, "smtp-user", cfg.Email.SMTP.Username)
	require.Equal(t, "smtp-pass", cfg.Email.SMTP.Password)
	require.Equal(t, "no-reply@ecm.edu.vn", cfg.Email.SMTP.From)
	require.True(t, cfg.Email.SMTP.UseTLS)
	require.Equal(t, 15*time.Second, cfg.Email.SMTP.Timeout)

	require.Equal(t, "school.example.vn", cfg.School.EmailDomain)
	require.Equal(t, "start123", cfg.School.DefaultPassword)
	require.Equal(t, "root@school.example.vn", cfg.School.Admin.Email)
	require.Equal(t, "root-pass", cfg.School.Admin.Password)
	require.Equal(t, "Root", cfg.School.Admin.FirstName)
	require.Equal(t, "Admin", cfg.School.Admin.LastName)

	require.True(t, cfg.Cleanup.Enabled)
	require.Equal(t, "@every 30m", cfg.Cleanup.Schedule)
	require.Equal(t, "retain", cfg.Cleanup.Policy)
	require.Equal(t, 48*time.Hour, cfg.Cleanup.Retention)

	require.False(t, cfg.Metrics.Enabled)
	require.Equal(t, "/metrics", cfg.Metrics.Endpoint)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, 24*time.Hour, cfg.Auth.JWT.TTL)
	require.Equal(t, 10*time.Minute, cfg.Auth.OTP.TTL)
	require.Equal(t, "ecm.edu.vn", cfg.School.EmailDomain)
	require.Equal(t, "ecm123", cfg.School.DefaultPassword)
	require.Equal(t, "delete", cfg.Cleanup.Policy)
	require.Equal(t, 24*time.Hour, cfg.Cleanup.Retention)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("ECM_AUTH_JWT_SECRET", "env-secret")
	t.Setenv("ECM_SERVER_PORT", "9191")
	t.Setenv("ECM_DATABASE_PASSWORD", "env-db-pass")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, "env-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, 9191, cfg.Server.Port)
	require.Equal(t, "env-db-pass", cfg.Database.Password)
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{
		Auth:    AuthConfig{JWT: JWTSettings{Secret: "secret"}},
		Cleanup: CleanupConfig{Policy: "delete"},
	}
	require.NoError(t, cfg.Validate())

	cfg.Auth.JWT.Secret = "  "
	require.Error(t, cfg.Validate())

	cfg.Auth.JWT.Secret = "secret"
	cfg.Cleanup.Policy = "purge-everything"
	require.Error(t, cfg.Validate())
}
