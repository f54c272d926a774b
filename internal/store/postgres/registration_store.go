package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"github.com/sitecrew/backoffice/internal/models"
	"github.com/sitecrew/backoffice/internal/store"
)

// execer is satisfied by both the pool and a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// SubmitRegistration inserts a company and its registration request in one transaction.
func (s *ProfileStore) SubmitRegistration(ctx context.Context, company *models.Company, req *models.RegistrationRequest) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback is safe to call after commit

	if err := insertCompany(ctx, tx, company); err != nil {
		return err
	}

	if err := insertRegistrationRequest(ctx, tx, req); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit registration: %w", err)
	}

	log.Debug().
		Str("company_id", company.ID.String()).
		Str("request_id", req.ID.String()).
		Msg("Submitted registration")

	return nil
}

// CreateRegistrationRequest records a registration request for a company.
func (s *ProfileStore) CreateRegistrationRequest(ctx context.Context, req *models.RegistrationRequest) error {
	if err := insertRegistrationRequest(ctx, s.pool, req); err != nil {
		return err
	}

	log.Debug().
		Str("request_id", req.ID.String()).
		Str("company_id", req.CompanyID.String()).
		Msg("Created registration request")

	return nil
}

func insertRegistrationRequest(ctx context.Context, db execer, req *models.RegistrationRequest) error {
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO registration_requests (
			request_id, company_id, status, contact_email, contact_name,
			approved_at, rejected_at, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	_, err := db.Exec(ctx, query,
		req.ID,
		req.CompanyID,
		req.Status,
		req.ContactEmail,
		req.ContactName,
		req.ApprovedAt,
		req.RejectedAt,
		req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create registration request: %w", mapPostgresError(err))
	}

	return nil
}

// GetRegistrationRequest retrieves the registration request of a company.
func (s *ProfileStore) GetRegistrationRequest(ctx context.Context, companyID uuid.UUID) (*models.RegistrationRequest, error) {
	query := `
		SELECT request_id, company_id, status, contact_email, contact_name,
		       approved_at, rejected_at, created_at
		FROM registration_requests
		WHERE company_id = $1
	`

	req, err := scanRegistrationRequest(s.pool.QueryRow(ctx, query, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrRegistrationRequestNotFound
		}
		return nil, fmt.Errorf("failed to get registration request: %w", err)
	}

	return req, nil
}

// ListRegistrationRequests returns requests in the given status, newest first.
// An empty status returns all requests.
func (s *ProfileStore) ListRegistrationRequests(ctx context.Context, status models.RegistrationStatus) ([]*models.RegistrationRequest, error) {
	query := `
		SELECT request_id, company_id, status, contact_email, contact_name,
		       approved_at, rejected_at, created_at
		FROM registration_requests
		WHERE ($1::text = '' OR status = $1::text)
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list registration requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.RegistrationRequest
	for rows.Next() {
		req, err := scanRegistrationRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registration request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate registration requests: %w", err)
	}

	return requests, nil
}

// UpdateCompanyStatus moves a company to a new lifecycle status.
func (s *ProfileStore) UpdateCompanyStatus(ctx context.Context, companyID uuid.UUID, status models.CompanyStatus) error {
	query := `
		UPDATE companies SET
			status = $2,
			updated_at = $3
		WHERE company_id = $1
	`

	result, err := s.pool.Exec(ctx, query, companyID, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update company status: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrCompanyNotFound
	}

	log.Debug().
		Str("company_id", companyID.String()).
		Str("status", string(status)).
		Msg("Updated company status")

	return nil
}

func scanRegistrationRequest(row pgx.Row) (*models.RegistrationRequest, error) {
	var req models.RegistrationRequest
	err := row.Scan(
		&req.ID,
		&req.CompanyID,
		&req.Status,
		&req.ContactEmail,
		&req.ContactName,
		&req.ApprovedAt,
		&req.RejectedAt,
		&req.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}
