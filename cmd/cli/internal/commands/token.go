package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/sitecrew/backoffice/internal/auth"
)

type TokenCmd struct {
	Subject    string        `help:"Subject identifier" required:""`
	Role       string        `help:"Token role" default:"service_role" enum:"service_role,super_admin,anon"`
	TTL        time.Duration `help:"Token lifetime" default:"1h"`
	SigningKey string        `help:"JWT signing key" required:"" env:"BACKOFFICE_JWT_SECRET"`
}

func (t *TokenCmd) Run(ctx context.Context) error {
	token, err := auth.IssueToken([]byte(t.SigningKey), t.Subject, t.Role, t.TTL)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
