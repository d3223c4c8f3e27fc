package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/charlesng35/betagate/internal/services"
)

// Config represents the runtime configuration for the beta gate service.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Beta       BetaConfig       `mapstructure:"beta"`
	Email      EmailConfig      `mapstructure:"email"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
	// BaseURL is the externally visible URL of this service, used to build
	// invite links and resolve redirect targets.
	BaseURL string `mapstructure:"base_url"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// BetaConfig captures the invite and gating settings.
type BetaConfig struct {
	// Enabled toggles the registration gate in front of the sign-up path.
	Enabled bool `mapstructure:"enabled"`
	// SignupSecret is the shared credential required on gated requests.
	SignupSecret string `mapstructure:"signup_secret"`
	// SignupPath is the account-creation path prefix the gate protects.
	SignupPath string `mapstructure:"signup_path"`
	// SignUpURL is the external registration endpoint redeemed signups are
	// forwarded to. Defaults to BaseURL + SignupPath.
	SignUpURL string `mapstructure:"sign_up_url"`
	// CodeLength sets the generated invite code length.
	CodeLength int `mapstructure:"code_length"`
	// TrustedOrigins lists redirect origins allowed in the browser flow,
	// in addition to the service's own origin.
	TrustedOrigins []string `mapstructure:"trusted_origins"`
	// Fields declares caller-extensible invite fields and their types.
	Fields map[string]FieldConfig `mapstructure:"fields"`
}

// FieldConfig declares one caller-extensible invite field.
type FieldConfig struct {
	Type     string `mapstructure:"type"`
	Required bool   `mapstructure:"required"`
}

// EmailConfig captures outbound email settings.
type EmailConfig struct {
	SMTP SMTPConfig `mapstructure:"smtp"`
}

// SMTPConfig defines SMTP dialer settings for sending invite links.
type SMTPConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from"`
	UseTLS   bool          `mapstructure:"use_tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// MonitoringConfig enables metrics endpoints.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig toggles the metrics endpoint.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("BETAGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

// Validate rejects configurations the service must not start with.
func (c *Config) Validate() error {
	if c.Beta.Enabled && strings.TrimSpace(c.Beta.SignupSecret) == "" {
		return errors.New("config: beta gating is enabled but beta.signup_secret is empty")
	}
	if strings.TrimSpace(c.Server.BaseURL) == "" {
		return errors.New("config: server.base_url is required")
	}
	if _, err := c.FieldSchema(); err != nil {
		return err
	}
	return nil
}

// FieldSchema converts the configured extension fields into the service
// schema, validating the declared types.
func (c *Config) FieldSchema() (services.FieldSchema, error) {
	if len(c.Beta.Fields) == 0 {
		return nil, nil
	}

	schema := make(services.FieldSchema, len(c.Beta.Fields))
	for name, field := range c.Beta.Fields {
		ft := services.FieldType(field.Type)
		switch ft {
		case services.FieldString, services.FieldNumber, services.FieldBoolean,
			services.FieldDate, services.FieldStringArray, services.FieldNumberArray:
		default:
			return nil, fmt.Errorf("config: beta field %q has unknown type %q", name, field.Type)
		}
		schema[name] = services.FieldSpec{Type: ft, Required: field.Required}
	}
	return schema, nil
}

// SignUpURL resolves the forwarding target, defaulting to the service's own
// base URL plus the gated path.
func (c *Config) SignUpURL() string {
	if c.Beta.SignUpURL != "" {
		return c.Beta.SignUpURL
	}
	return strings.TrimRight(c.Server.BaseURL, "/") + c.Beta.SignupPath
}

// DatabaseSettings maps the configuration onto the database package config.
func (c *Config) DatabaseSettings() DatabaseSettings {
	driver := strings.ToLower(strings.TrimSpace(c.Database.Driver))
	settings := DatabaseSettings{
		Driver: driver,
		Path:   c.Database.Path,
		DSN:    c.Database.DSN,
	}

	switch driver {
	case "postgres":
		settings.Host = c.Database.Postgres.Host
		settings.Port = c.Database.Postgres.Port
		settings.Name = c.Database.Postgres.Database
		settings.User = c.Database.Postgres.Username
		settings.Password = c.Database.Postgres.Password
	case "mysql":
		settings.Host = c.Database.MySQL.Host
		settings.Port = c.Database.MySQL.Port
		settings.Name = c.Database.MySQL.Database
		settings.User = c.Database.MySQL.Username
		settings.Password = c.Database.MySQL.Password
	}

	return settings
}

// DatabaseSettings mirrors database.Config without importing it, keeping the
// dependency direction from cmd/server.
type DatabaseSettings struct {
	Driver   string
	Path     string
	DSN      string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
}

// SMTPSettings exposes the mail configuration in pkg/mail's shape.
func (c *Config) SMTPSettings() SMTPConfig {
	return c.Email.SMTP
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.base_url", "http://localhost:8000")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/betagate.sqlite")

	v.SetDefault("beta.enabled", true)
	v.SetDefault("beta.signup_path", "/sign-up/email")
	v.SetDefault("beta.code_length", 32)

	v.SetDefault("email.smtp.enabled", false)
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.timeout", "10s")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
