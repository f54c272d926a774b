package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/sitecrew/backoffice/internal/models"
	"github.com/sitecrew/backoffice/internal/store"
)

// ProfileStore implements store.ProfileStore and store.RegistrationStore using PostgreSQL.
type ProfileStore struct {
	pool *pgxpool.Pool
}

var (
	_ store.ProfileStore      = (*ProfileStore)(nil)
	_ store.RegistrationStore = (*ProfileStore)(nil)
)

// NewProfileStore creates a new PostgreSQL-backed profile store.
// It shares the connection pool with other stores.
func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{
		pool: pool,
	}
}

// GetProfile retrieves the profile bound to an identity.
func (s *ProfileStore) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	query := `
		SELECT user_id, company_id, role, first_name, last_name,
		       pending_approval, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`

	var profile models.Profile
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.CompanyID,
		&profile.Role,
		&profile.FirstName,
		&profile.LastName,
		&profile.PendingApproval,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

// CreateProfile inserts a new profile.
func (s *ProfileStore) CreateProfile(ctx context.Context, profile *models.Profile) error {
	now := time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = now
	}

	query := `
		INSERT INTO profiles (
			user_id, company_id, role, first_name, last_name,
			pending_approval, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	_, err := s.pool.Exec(ctx, query,
		profile.UserID,
		profile.CompanyID,
		profile.Role,
		profile.FirstName,
		profile.LastName,
		profile.PendingApproval,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrProfileAlreadyExists
		}
		return fmt.Errorf("failed to create profile: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("user_id", profile.UserID.String()).
		Str("role", string(profile.Role)).
		Msg("Created profile")

	return nil
}

// UpdateProfile overwrites the reconciled fields of an existing profile.
func (s *ProfileStore) UpdateProfile(ctx context.Context, userID uuid.UUID, patch models.ProfilePatch) (*models.Profile, error) {
	if patch.UpdatedAt.IsZero() {
		patch.UpdatedAt = time.Now()
	}

	query := `
		UPDATE profiles SET
			company_id = $2,
			role = $3,
			first_name = $4,
			last_name = $5,
			pending_approval = $6,
			updated_at = $7
		WHERE user_id = $1
		RETURNING user_id, company_id, role, first_name, last_name,
		          pending_approval, created_at, updated_at
	`

	var profile models.Profile
	err := s.pool.QueryRow(ctx, query,
		userID,
		patch.CompanyID,
		patch.Role,
		patch.FirstName,
		patch.LastName,
		patch.PendingApproval,
		patch.UpdatedAt,
	).Scan(
		&profile.UserID,
		&profile.CompanyID,
		&profile.Role,
		&profile.FirstName,
		&profile.LastName,
		&profile.PendingApproval,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("user_id", userID.String()).
		Str("company_id", patch.CompanyID.String()).
		Str("role", string(patch.Role)).
		Msg("Updated profile")

	return &profile, nil
}

// GetCompany retrieves a company by ID.
func (s *ProfileStore) GetCompany(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	query := `
		SELECT company_id, name, status, created_at, updated_at
		FROM companies
		WHERE company_id = $1
	`

	return s.getCompany(ctx, query, companyID)
}

// GetCompanyByName retrieves a company by its exact name.
func (s *ProfileStore) GetCompanyByName(ctx context.Context, name string) (*models.Company, error) {
	query := `
		SELECT company_id, name, status, created_at, updated_at
		FROM companies
		WHERE name = $1
	`

	return s.getCompany(ctx, query, name)
}

func (s *ProfileStore) getCompany(ctx context.Context, query string, arg any) (*models.Company, error) {
	var company models.Company
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&company.ID,
		&company.Name,
		&company.Status,
		&company.CreatedAt,
		&company.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	return &company, nil
}

// CreateCompany inserts a new company. Company names are unique.
func (s *ProfileStore) CreateCompany(ctx context.Context, company *models.Company) error {
	if err := insertCompany(ctx, s.pool, company); err != nil {
		return err
	}

	log.Debug().
		Str("company_id", company.ID.String()).
		Str("name", company.Name).
		Msg("Created company")

	return nil
}

func insertCompany(ctx context.Context, db execer, company *models.Company) error {
	now := time.Now()
	if company.CreatedAt.IsZero() {
		company.CreatedAt = now
	}
	if company.UpdatedAt.IsZero() {
		company.UpdatedAt = now
	}

	query := `
		INSERT INTO companies (
			company_id, name, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5
		)
	`

	_, err := db.Exec(ctx, query,
		company.ID,
		company.Name,
		company.Status,
		company.CreatedAt,
		company.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrCompanyAlreadyExists
		}
		return fmt.Errorf("failed to create company: %w", mapPostgresError(err))
	}

	return nil
}

// UpdateRegistrationRequest updates the registration request of a company.
func (s *ProfileStore) UpdateRegistrationRequest(ctx context.Context, companyID uuid.UUID, patch models.RegistrationPatch) error {
	query := `
		UPDATE registration_requests SET
			status = $2,
			approved_at = COALESCE($3, approved_at),
			rejected_at = COALESCE($4, rejected_at)
		WHERE company_id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		companyID,
		patch.Status,
		patch.ApprovedAt,
		patch.RejectedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update registration request: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrRegistrationRequestNotFound
	}

	log.Debug().
		Str("company_id", companyID.String()).
		Str("status", string(patch.Status)).
		Msg("Updated registration request")

	return nil
}
