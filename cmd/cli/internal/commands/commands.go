package commands

import (
	"context"
	"time"

	"github.com/sitecrew/backoffice/internal/client"
	"github.com/sitecrew/backoffice/internal/provision"
)

type Globals struct {
	Dev     bool
	Version string
}

// provisioner is satisfied by both the local engine and the API client.
type provisioner interface {
	Provision(ctx context.Context, req provision.Request) (*provision.Result, error)
}

// APIFlags configures access to a running back office server.
type APIFlags struct {
	Server  string        `help:"Server URL" default:"http://localhost:8080" env:"BACKOFFICE_SERVER"`
	Token   string        `help:"bearer token for the API" env:"BACKOFFICE_TOKEN"`
	Timeout time.Duration `help:"request timeout" default:"30s"`
}

func (f APIFlags) client() *client.Client {
	return client.New(client.Config{
		ServerURL: f.Server,
		Token:     f.Token,
		Timeout:   f.Timeout,
	})
}
