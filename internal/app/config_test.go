package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/betagate/internal/services"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.True(t, cfg.Beta.Enabled)
	require.Equal(t, "/sign-up/email", cfg.Beta.SignupPath)
	require.Equal(t, 32, cfg.Beta.CodeLength)
	require.False(t, cfg.Email.SMTP.Enabled)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
}

func TestLoadConfigReadsFile(t *testing.T) {
	dir := t.TempDir()
	content := `
server:
  port: 9001
  base_url: https://beta.example.com
beta:
  signup_secret: topsecret
  trusted_origins:
    - https://www.example.com
  fields:
    referral:
      type: string
    seats:
      type: number
      required: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 9001, cfg.Server.Port)
	require.Equal(t, "https://beta.example.com", cfg.Server.BaseURL)
	require.Equal(t, "topsecret", cfg.Beta.SignupSecret)
	require.Equal(t, []string{"https://www.example.com"}, cfg.Beta.TrustedOrigins)

	schema, err := cfg.FieldSchema()
	require.NoError(t, err)
	require.Equal(t, services.FieldSpec{Type: services.FieldString}, schema["referral"])
	require.Equal(t, services.FieldSpec{Type: services.FieldNumber, Required: true}, schema["seats"])
}

func TestValidateRejectsEnabledGateWithoutSecret(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	cfg.Beta.Enabled = true
	cfg.Beta.SignupSecret = ""
	require.ErrorContains(t, cfg.Validate(), "signup_secret")

	cfg.Beta.SignupSecret = "secret"
	require.NoError(t, cfg.Validate())

	cfg.Beta.Enabled = false
	cfg.Beta.SignupSecret = ""
	require.NoError(t, cfg.Validate())
}

func TestFieldSchemaRejectsUnknownType(t *testing.T) {
	cfg := &Config{Beta: BetaConfig{Fields: map[string]FieldConfig{
		"bad": {Type: "uuid"},
	}}}

	_, err := cfg.FieldSchema()
	require.ErrorContains(t, err, "unknown type")
}

func TestSignUpURLDefaultsToBasePlusPath(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{BaseURL: "https://beta.example.com/"},
		Beta:   BetaConfig{SignupPath: "/sign-up/email"},
	}
	require.Equal(t, "https://beta.example.com/sign-up/email", cfg.SignUpURL())

	cfg.Beta.SignUpURL = "https://auth.example.com/sign-up/email"
	require.Equal(t, "https://auth.example.com/sign-up/email", cfg.SignUpURL())
}

func TestDatabaseSettingsSelectsDriverBlock(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Driver:   "postgres",
		Postgres: DBAuthConfig{Host: "db", Port: 5432, Database: "beta", Username: "svc", Password: "pw"},
	}}

	settings := cfg.DatabaseSettings()
	require.Equal(t, "postgres", settings.Driver)
	require.Equal(t, "db", settings.Host)
	require.Equal(t, "beta", settings.Name)
	require.Equal(t, "svc", settings.User)
}
