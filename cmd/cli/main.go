package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/sitecrew/backoffice/cmd/cli/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Provision     commands.ProvisionCmd     `cmd:"" help:"Provision one admin or a batch of admins"`
		Registrations commands.RegistrationsCmd `cmd:"" help:"Manage company registrations"`
		Migrate       commands.MigrateCmd       `cmd:"" help:"Apply database migrations"`
		Token         commands.TokenCmd         `cmd:"" help:"Generate a JWT token"`
		Dev           bool                      `help:"Enable development mode."`
		Version       kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Dev: cli.Dev, Version: version})
	cmd.FatalIfErrorf(err)
}
