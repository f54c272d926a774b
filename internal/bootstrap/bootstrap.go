// Package bootstrap builds the stores and notifier selected by configuration.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/sitecrew/backoffice/internal/notify"
	"github.com/sitecrew/backoffice/internal/registration"
	"github.com/sitecrew/backoffice/internal/store"
	"github.com/sitecrew/backoffice/internal/store/authapi"
	memorystore "github.com/sitecrew/backoffice/internal/store/memory"
	postgresstore "github.com/sitecrew/backoffice/internal/store/postgres"
)

// Resources holds the collaborators built from a Config.
type Resources struct {
	Identities store.IdentityStore
	Profiles   registration.Store
	Notifier   notify.Notifier

	pool *pgxpool.Pool
}

// Close releases the database pool, if one was opened.
func (r *Resources) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// Bootstrap opens the configured stores and notifier.
func Bootstrap(ctx context.Context, cfg Config) (*Resources, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res := &Resources{}

	if cfg.usesPostgres() {
		pool, err := postgresstore.NewPool(ctx, &postgresstore.PoolConfig{
			ConnString:      cfg.Postgres.ConnString,
			MaxConns:        cfg.Postgres.MaxConns,
			MinConns:        cfg.Postgres.MinConns,
			MaxConnLifetime: cfg.Postgres.MaxConnLifetime,
			MaxConnIdleTime: cfg.Postgres.MaxConnIdleTime,
			AutoMigrate:     cfg.Postgres.AutoMigrate,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		res.pool = pool
	}

	switch cfg.IdentityStore {
	case "postgres":
		res.Identities = postgresstore.NewIdentityStore(res.pool)
		log.Info().Msg("Using PostgreSQL identity store")
	case "authapi":
		identities, err := authapi.NewIdentityStore(&authapi.Config{
			BaseURL:    cfg.AuthAPI.BaseURL,
			ServiceKey: cfg.AuthAPI.ServiceKey,
			PageSize:   cfg.AuthAPI.PageSize,
			Timeout:    cfg.AuthAPI.Timeout,
		})
		if err != nil {
			res.Close()
			return nil, fmt.Errorf("failed to create auth API identity store: %w", err)
		}
		res.Identities = identities
		log.Info().Str("base_url", cfg.AuthAPI.BaseURL).Msg("Using auth API identity store")
	default:
		res.Identities = memorystore.NewIdentityStore()
		log.Info().Msg("Using in-memory identity store")
	}

	switch cfg.ProfileStore {
	case "postgres":
		res.Profiles = postgresstore.NewProfileStore(res.pool)
		log.Info().Msg("Using PostgreSQL profile store")
	default:
		res.Profiles = memorystore.NewProfileStore()
		log.Info().Msg("Using in-memory profile store")
	}

	switch cfg.Notifier {
	case "http":
		sender, err := notify.NewHTTPSender(notify.HTTPSenderConfig{
			Endpoint: cfg.Mail.Endpoint,
			APIKey:   cfg.Mail.APIKey,
			From:     cfg.Mail.From,
			LoginURL: cfg.Mail.LoginURL,
			MaxTries: cfg.Mail.MaxTries,
			Timeout:  cfg.Mail.Timeout,
		})
		if err != nil {
			res.Close()
			return nil, fmt.Errorf("failed to create email sender: %w", err)
		}
		res.Notifier = sender
	default:
		res.Notifier = notify.LogSender{}
	}

	return res, nil
}
