package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sitecrew/backoffice/internal/bootstrap"
	"github.com/sitecrew/backoffice/internal/logger"
	"github.com/sitecrew/backoffice/internal/provision"
	"gopkg.in/yaml.v3"
)

// BatchFile lists admins to provision in one run.
type BatchFile struct {
	Admins []provision.Request `yaml:"admins" json:"admins"`
}

type ProvisionCmd struct {
	Email       string `help:"admin email address"`
	Password    string `help:"initial password" env:"BACKOFFICE_ADMIN_PASSWORD"`
	FirstName   string `help:"first name"`
	LastName    string `help:"last name"`
	CompanyID   string `help:"company to bind the admin to; omit for the super admin bootstrap path"`
	CompanyName string `help:"company name used in the welcome email"`
	File        string `help:"YAML/JSON batch file of admins to provision" type:"existingfile"`

	Local            bool   `help:"provision directly against the configured stores instead of the API" default:"false"`
	SuperAdminMarker string `help:"email substring that grants super_admin on the bootstrap path (local mode)" default:"superadmin" env:"BACKOFFICE_SUPER_ADMIN_MARKER"`

	API    APIFlags         `embed:""`
	Stores bootstrap.Config `embed:""`
}

func (p *ProvisionCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Dev, "backoffice-cli")
	ctx = log.WithContext(ctx)

	reqs, err := p.requests()
	if err != nil {
		return err
	}

	var target provisioner
	if p.Local {
		res, err := bootstrap.Bootstrap(ctx, p.Stores)
		if err != nil {
			return err
		}
		defer res.Close()

		target = provision.NewEngine(res.Identities, res.Profiles, res.Notifier,
			provision.WithSuperAdminMatcher(provision.MatchEmailContaining(p.SuperAdminMarker)))
	} else {
		target = p.API.client()
	}

	return runBatch(ctx, target, reqs, os.Stdout)
}

func (p *ProvisionCmd) requests() ([]provision.Request, error) {
	if p.File != "" {
		batch, err := loadBatchFile(p.File)
		if err != nil {
			return nil, fmt.Errorf("failed to load batch file: %w", err)
		}
		return batch.Admins, nil
	}

	if p.Email == "" {
		return nil, errors.New("email is required (use --email or --file)")
	}

	return []provision.Request{{
		Email:       p.Email,
		Password:    p.Password,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		CompanyID:   p.CompanyID,
		CompanyName: p.CompanyName,
	}}, nil
}

func loadBatchFile(path string) (*BatchFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var batch BatchFile

	// Determine file format by extension
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if len(batch.Admins) == 0 {
		return nil, errors.New("no admins listed")
	}

	return &batch, nil
}

// runBatch provisions each request in order, reporting one line per admin.
// Every request is attempted; the returned error counts the failures.
func runBatch(ctx context.Context, target provisioner, reqs []provision.Request, w io.Writer) error {
	failed := 0
	for _, req := range reqs {
		res, err := target.Provision(ctx, req)
		if err != nil {
			failed++
			fmt.Fprintf(w, "FAIL  %s: %v\n", req.Email, err)
			continue
		}
		fmt.Fprintf(w, "%d   %s: %s (role=%s, user=%s)\n",
			res.Status, req.Email, res.Message, res.Profile.Role, res.User.ID)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d admins failed to provision", failed, len(reqs))
	}
	return nil
}
