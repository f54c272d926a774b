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
	"golang.org/x/crypto/bcrypt"
)

// IdentityStore implements store.IdentityStore using PostgreSQL.
// Passwords are stored as bcrypt hashes and never read back.
type IdentityStore struct {
	pool       *pgxpool.Pool
	bcryptCost int
}

var _ store.IdentityStore = (*IdentityStore)(nil)

// NewIdentityStore creates a new PostgreSQL-backed identity store.
// It shares the connection pool with other stores.
func NewIdentityStore(pool *pgxpool.Pool) *IdentityStore {
	return &IdentityStore{
		pool:       pool,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// List returns every identity ordered by creation time.
func (s *IdentityStore) List(ctx context.Context) ([]*models.Identity, error) {
	query := `
		SELECT identity_id, email, user_metadata, created_at
		FROM identities
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list identities: %w", err)
	}
	defer rows.Close()

	var identities []*models.Identity
	for rows.Next() {
		var identity models.Identity
		if err := rows.Scan(
			&identity.ID,
			&identity.Email,
			&identity.Metadata,
			&identity.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan identity: %w", err)
		}
		identities = append(identities, &identity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate identities: %w", err)
	}

	return identities, nil
}

// Create inserts a new identity. A duplicate email yields store.ErrIdentityAlreadyExists.
func (s *IdentityStore) Create(ctx context.Context, email, password string, metadata models.UserMetadata) (*models.Identity, error) {
	if err := metadata.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	identity := &models.Identity{
		ID:        uuid.Must(uuid.NewV7()),
		Email:     email,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}

	query := `
		INSERT INTO identities (
			identity_id, email, password_hash, user_metadata, created_at
		) VALUES (
			$1, $2, $3, $4, $5
		)
	`

	_, err = s.pool.Exec(ctx, query,
		identity.ID,
		identity.Email,
		string(hash),
		identity.Metadata,
		identity.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrIdentityAlreadyExists
		}
		return nil, fmt.Errorf("failed to create identity: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("identity_id", identity.ID.String()).
		Str("role", string(identity.Metadata.Role)).
		Msg("Created identity")

	return identity, nil
}

// Get retrieves an identity by ID.
func (s *IdentityStore) Get(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	query := `
		SELECT identity_id, email, user_metadata, created_at
		FROM identities
		WHERE identity_id = $1
	`

	var identity models.Identity
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&identity.ID,
		&identity.Email,
		&identity.Metadata,
		&identity.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}

	return &identity, nil
}
