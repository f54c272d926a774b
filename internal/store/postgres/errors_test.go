package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sitecrew/backoffice/internal/store"
	"github.com/stretchr/testify/require"
)

func TestMapPostgresError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{
			name:   "duplicate email",
			err:    &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "identities_email_key"},
			target: store.ErrIdentityAlreadyExists,
		},
		{
			name:   "duplicate profile",
			err:    &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "profiles_pkey"},
			target: store.ErrProfileAlreadyExists,
		},
		{
			name:   "duplicate company name",
			err:    &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "companies_name_key"},
			target: store.ErrCompanyAlreadyExists,
		},
		{
			name:   "unknown company",
			err:    &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "profiles_company_id_fkey"},
			target: store.ErrCompanyNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, mapPostgresError(tt.err), tt.target)
		})
	}
}

func TestMapPostgresError_Passthrough(t *testing.T) {
	require.NoError(t, mapPostgresError(nil))

	plain := errors.New("boom")
	require.Equal(t, plain, mapPostgresError(plain))

	unknown := &pgconn.PgError{Code: pgerrcode.UndefinedTable, Message: "relation does not exist"}
	mapped := mapPostgresError(unknown)
	require.ErrorContains(t, mapped, "42P01")
	require.ErrorIs(t, mapped, unknown)
}

func TestIsUniqueViolation(t *testing.T) {
	require.True(t, isUniqueViolation(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	require.False(t, isUniqueViolation(&pgconn.PgError{Code: pgerrcode.CheckViolation}))
	require.False(t, isUniqueViolation(errors.New("boom")))
}
