package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/jera/internal/models"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
	Trash  TrashConfig       `yaml:"trash"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Trash.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// TokenUser maps one bearer token to a user identity.
type TokenUser struct {
	Token string `yaml:"token"`
	User  string `yaml:"user"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how identities are resolved:
//   - "disabled" (default): every request runs as LocalUser, suitable for
//     a single-user local deployment.
//   - "token": Bearer tokens from Tokens map to user identities; requests
//     without a known token stay anonymous.
type AuthConfig struct {
	Mode      string      `yaml:"mode"`
	LocalUser string      `yaml:"local_user"`
	Tokens    []TokenUser `yaml:"tokens"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	switch c.Mode {
	case AuthModeToken:
		if len(c.Tokens) == 0 {
			return fmt.Errorf("auth: mode is %q but no tokens configured", AuthModeToken)
		}
		for _, tu := range c.Tokens {
			if tu.Token == "" || tu.User == "" {
				return fmt.Errorf("auth: every token entry needs both token and user")
			}
		}
	case AuthModeDisabled:
		if c.LocalUser == "" {
			return fmt.Errorf("auth: mode is %q but local_user is empty", AuthModeDisabled)
		}
	}
	return nil
}

// AuthEnabled returns true when token authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// TokenMap returns the token lookup table for the auth middleware.
func (c *AuthConfig) TokenMap() map[string]models.UserID {
	if len(c.Tokens) == 0 {
		return nil
	}
	m := make(map[string]models.UserID, len(c.Tokens))
	for _, tu := range c.Tokens {
		m[tu.Token] = models.UserID(tu.User)
	}
	return m
}

// TrashConfig controls automatic cleanup of archived goals.
// RetentionDays of zero disables the purge job.
type TrashConfig struct {
	RetentionDays int `yaml:"retention_days"`
}

// Validate validates the trash configuration.
func (c *TrashConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RetentionDays, validation.Min(0)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./jera.db",
		},
		Auth: AuthConfig{
			Mode:      AuthModeDisabled,
			LocalUser: "local",
		},
		Trash: TrashConfig{
			RetentionDays: 30,
		},
	}
}
