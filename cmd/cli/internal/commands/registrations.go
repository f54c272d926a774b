package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/sitecrew/backoffice/internal/models"
	"github.com/sitecrew/backoffice/internal/registration"
)

type RegistrationsCmd struct {
	List   RegistrationsListCmd   `cmd:"" help:"List registration requests"`
	Submit RegistrationsSubmitCmd `cmd:"" help:"Submit a company registration"`
	Reject RegistrationsRejectCmd `cmd:"" help:"Reject a pending registration"`
}

type RegistrationsListCmd struct {
	Status string   `help:"status to filter by (pending, approved, rejected)" default:""`
	API    APIFlags `embed:""`
}

func (l *RegistrationsListCmd) Run(ctx context.Context) error {
	requests, err := l.API.client().ListRegistrations(ctx, models.RegistrationStatus(l.Status))
	if err != nil {
		return fmt.Errorf("failed to list registrations: %w", err)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPANY ID\tSTATUS\tCONTACT\tCREATED")
	for _, req := range requests {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", req.CompanyID, req.Status, req.ContactEmail, req.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

type RegistrationsSubmitCmd struct {
	CompanyName  string   `arg:"" help:"company name"`
	ContactEmail string   `help:"contact email" required:""`
	ContactName  string   `help:"contact name"`
	API          APIFlags `embed:""`
}

func (s *RegistrationsSubmitCmd) Run(ctx context.Context) error {
	submitted, err := s.API.client().SubmitRegistration(ctx, registration.Submission{
		CompanyName:  s.CompanyName,
		ContactEmail: s.ContactEmail,
		ContactName:  s.ContactName,
	})
	if err != nil {
		return fmt.Errorf("failed to submit registration: %w", err)
	}

	fmt.Printf("Registration submitted for %s (company ID: %s)\n", submitted.Company.Name, submitted.Company.ID)
	return nil
}

type RegistrationsRejectCmd struct {
	CompanyID string   `arg:"" help:"company ID"`
	API       APIFlags `embed:""`
}

func (r *RegistrationsRejectCmd) Run(ctx context.Context) error {
	companyID, err := uuid.Parse(r.CompanyID)
	if err != nil {
		return fmt.Errorf("invalid company ID: %w", err)
	}

	req, err := r.API.client().RejectRegistration(ctx, companyID)
	if err != nil {
		return fmt.Errorf("failed to reject registration: %w", err)
	}

	fmt.Printf("Registration for company %s is now %s\n", req.CompanyID, req.Status)
	return nil
}
