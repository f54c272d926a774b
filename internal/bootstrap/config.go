package bootstrap

import (
	"errors"
	"time"
)

// Config selects and configures the stores and notifier. It is embedded into
// kong commands, so every field is also a flag.
type Config struct {
	IdentityStore string `help:"identity store (memory, postgres or authapi)" default:"memory" env:"BACKOFFICE_IDENTITY_STORE" enum:"memory,postgres,authapi"`
	ProfileStore  string `help:"profile store (memory or postgres)" default:"memory" env:"BACKOFFICE_PROFILE_STORE" enum:"memory,postgres"`
	Notifier      string `help:"welcome email notifier (log or http)" default:"log" env:"BACKOFFICE_NOTIFIER" enum:"log,http"`

	Postgres PostgresFlags `embed:"" prefix:"postgres-"`
	AuthAPI  AuthAPIFlags  `embed:"" prefix:"authapi-"`
	Mail     MailFlags     `embed:"" prefix:"mail-"`
}

// Validate checks that each selected backend has what it needs.
func (c *Config) Validate() error {
	if c.usesPostgres() && c.Postgres.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	if c.IdentityStore == "authapi" {
		if c.AuthAPI.BaseURL == "" {
			return errors.New("auth API base URL is required (--authapi-base-url or BACKOFFICE_AUTHAPI_BASE_URL)")
		}
		if c.AuthAPI.ServiceKey == "" {
			return errors.New("auth API service key is required (--authapi-service-key or BACKOFFICE_AUTHAPI_SERVICE_KEY)")
		}
	}
	if c.Notifier == "http" && c.Mail.Endpoint == "" {
		return errors.New("mail endpoint is required (--mail-endpoint or BACKOFFICE_MAIL_ENDPOINT)")
	}
	return nil
}

func (c *Config) usesPostgres() bool {
	return c.IdentityStore == "postgres" || c.ProfileStore == "postgres"
}

type PostgresFlags struct {
	// Connection Configuration
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32         `help:"maximum number of connections in pool" default:"10"`
	MinConns        int32         `help:"minimum number of connections in pool" default:"2"`
	MaxConnLifetime time.Duration `help:"maximum connection lifetime" default:"1h"`
	MaxConnIdleTime time.Duration `help:"maximum connection idle time" default:"30m"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"BACKOFFICE_POSTGRES_AUTO_MIGRATE"`
}

type AuthAPIFlags struct {
	BaseURL    string        `help:"hosted auth admin API base URL" env:"BACKOFFICE_AUTHAPI_BASE_URL"`
	ServiceKey string        `help:"service role key for the auth admin API" env:"BACKOFFICE_AUTHAPI_SERVICE_KEY"`
	PageSize   int           `help:"users fetched per page when listing" default:"200"`
	Timeout    time.Duration `help:"auth admin API request timeout" default:"10s"`
}

type MailFlags struct {
	Endpoint string        `help:"transactional email API endpoint" env:"BACKOFFICE_MAIL_ENDPOINT"`
	APIKey   string        `help:"transactional email API key" env:"BACKOFFICE_MAIL_API_KEY"`
	From     string        `help:"sender address for welcome emails" default:"no-reply@sitecrew.io" env:"BACKOFFICE_MAIL_FROM"`
	LoginURL string        `help:"login link included in welcome emails" default:"https://app.sitecrew.io/login" env:"BACKOFFICE_MAIL_LOGIN_URL"`
	MaxTries uint          `help:"delivery attempts per email" default:"4"`
	Timeout  time.Duration `help:"email API request timeout" default:"10s"`
}
