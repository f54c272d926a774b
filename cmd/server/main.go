package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/sitecrew/backoffice/cmd/server/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Dev     bool `help:"Enable development mode (console logging, debug level)." env:"BACKOFFICE_DEV"`
		Version kong.VersionFlag
		Server  commands.ServerCmd `cmd:"" default:"withargs" help:"Start the back office API server"`
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
