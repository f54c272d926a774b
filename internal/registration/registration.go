// Package registration implements company self-registration: the upstream flow
// that creates pending companies for provisioning to approve.
package registration

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sitecrew/backoffice/internal/models"
	"github.com/sitecrew/backoffice/internal/store"
	"github.com/sitecrew/backoffice/internal/telemetry"
)

var (
	// ErrInvalidRegistration is returned for submissions failing validation.
	ErrInvalidRegistration = errors.New("invalid registration")
	// ErrNotPending is returned when rejecting a request that was already decided.
	ErrNotPending = errors.New("registration request is not pending")
)

// Store is the storage needed by the registration workflow.
type Store interface {
	store.ProfileStore
	store.RegistrationStore
}

// Submission is a company's request to join the platform.
type Submission struct {
	CompanyName  string `json:"companyName"`
	ContactEmail string `json:"contactEmail"`
	ContactName  string `json:"contactName,omitempty"`
}

// Validate checks the submission, returning an error wrapping ErrInvalidRegistration.
func (s Submission) Validate() error {
	if strings.TrimSpace(s.CompanyName) == "" {
		return fmt.Errorf("%w: company name is required", ErrInvalidRegistration)
	}
	if strings.EqualFold(strings.TrimSpace(s.CompanyName), models.SuperAdminCompanyName) {
		return fmt.Errorf("%w: company name is reserved", ErrInvalidRegistration)
	}
	if strings.TrimSpace(s.ContactEmail) == "" {
		return fmt.Errorf("%w: contact email is required", ErrInvalidRegistration)
	}
	if _, err := mail.ParseAddress(s.ContactEmail); err != nil {
		return fmt.Errorf("%w: contact email is invalid", ErrInvalidRegistration)
	}
	return nil
}

// Submitted is the result of a successful submission.
type Submitted struct {
	Company      *models.Company             `json:"company"`
	Registration *models.RegistrationRequest `json:"registration"`
}

// Service runs the registration workflow.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a registration service.
func NewService(st Store) *Service {
	return &Service{
		store: st,
		now:   time.Now,
	}
}

// Submit creates a pending company and its pending registration request
// in a single write.
// A taken company name yields store.ErrCompanyAlreadyExists.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Submitted, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	company := &models.Company{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      strings.TrimSpace(sub.CompanyName),
		Status:    models.CompanyStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	req := &models.RegistrationRequest{
		ID:           uuid.Must(uuid.NewV7()),
		CompanyID:    company.ID,
		Status:       models.RegistrationStatusPending,
		ContactEmail: strings.TrimSpace(sub.ContactEmail),
		ContactName:  strings.TrimSpace(sub.ContactName),
		CreatedAt:    now,
	}

	if err := s.store.SubmitRegistration(ctx, company, req); err != nil {
		return nil, fmt.Errorf("failed to submit registration: %w", err)
	}

	telemetry.GetMetrics().RegistrationsSubmittedTotal.Add(ctx, 1)

	zerolog.Ctx(ctx).Info().
		Str("company_id", company.ID.String()).
		Str("company", company.Name).
		Msg("Registration submitted")

	return &Submitted{Company: company, Registration: req}, nil
}

// List returns registration requests in status, newest first. An empty status lists all.
func (s *Service) List(ctx context.Context, status models.RegistrationStatus) ([]*models.RegistrationRequest, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidRegistration, status)
	}

	requests, err := s.store.ListRegistrationRequests(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list registration requests: %w", err)
	}

	return requests, nil
}

// Reject marks a pending registration and its company as rejected.
func (s *Service) Reject(ctx context.Context, companyID uuid.UUID) (*models.RegistrationRequest, error) {
	req, err := s.store.GetRegistrationRequest(ctx, companyID)
	if err != nil {
		return nil, err
	}

	if req.Status != models.RegistrationStatusPending {
		return nil, fmt.Errorf("%w: status is %s", ErrNotPending, req.Status)
	}

	now := s.now()
	if err := s.store.UpdateRegistrationRequest(ctx, companyID, models.RegistrationPatch{
		Status:     models.RegistrationStatusRejected,
		RejectedAt: &now,
	}); err != nil {
		return nil, fmt.Errorf("failed to reject registration request: %w", err)
	}

	if err := s.store.UpdateCompanyStatus(ctx, companyID, models.CompanyStatusRejected); err != nil {
		return nil, fmt.Errorf("failed to reject company: %w", err)
	}

	telemetry.GetMetrics().RegistrationsRejectedTotal.Add(ctx, 1)

	zerolog.Ctx(ctx).Info().
		Str("company_id", companyID.String()).
		Msg("Registration rejected")

	req.Status = models.RegistrationStatusRejected
	req.RejectedAt = &now

	return req, nil
}
