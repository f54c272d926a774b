package commands

import (
	"context"
	"fmt"

	"github.com/sitecrew/backoffice/internal/logger"
	postgresstore "github.com/sitecrew/backoffice/internal/store/postgres"
)

type MigrateCmd struct {
	ConnString string `help:"PostgreSQL connection string" required:"" env:"POSTGRES_CONNECTION_STRING"`
}

func (m *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Dev, "backoffice-cli")

	pool, err := postgresstore.NewPool(ctx, &postgresstore.PoolConfig{
		ConnString: m.ConnString,
		MaxConns:   2,
		MinConns:   1,
	})
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer pool.Close()

	if err := postgresstore.RunMigrations(ctx, pool); err != nil {
		return err
	}

	log.Info().Msg("Database migrations completed")
	return nil
}
