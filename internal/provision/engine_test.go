package provision

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sitecrew/backoffice/internal/models"
	"github.com/sitecrew/backoffice/internal/store"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	identities *countingIdentityStore
	profiles   *countingProfileStore
	notifier   *recordingNotifier
	engine     *Engine
	now        time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		identities: newCountingIdentityStore(),
		profiles:   newCountingProfileStore(),
		notifier:   &recordingNotifier{},
		now:        time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	f.engine = NewEngine(f.identities, f.profiles, f.notifier, WithClock(func() time.Time { return f.now }))
	return f
}

// seedCompany creates a pending company with a pending registration request,
// as the self-registration flow does.
func (f *fixture) seedCompany(t *testing.T, name string) *models.Company {
	t.Helper()
	ctx := context.Background()

	company := &models.Company{
		ID:     uuid.Must(uuid.NewV7()),
		Name:   name,
		Status: models.CompanyStatusPending,
	}
	require.NoError(t, f.profiles.ProfileStore.CreateCompany(ctx, company))
	require.NoError(t, f.profiles.ProfileStore.CreateRegistrationRequest(ctx, &models.RegistrationRequest{
		ID:        uuid.Must(uuid.NewV7()),
		CompanyID: company.ID,
		Status:    models.RegistrationStatusPending,
	}))
	return company
}

func (f *fixture) seedIdentity(t *testing.T, email string) *models.Identity {
	t.Helper()

	identity, err := f.identities.IdentityStore.Create(context.Background(), email, "original-password", models.UserMetadata{Role: models.RoleAdmin})
	require.NoError(t, err)
	return identity
}

func adminRequest(email string, company *models.Company) Request {
	return Request{
		Email:       email,
		Password:    "s3cret!",
		FirstName:   "Olive",
		LastName:    "Owner",
		CompanyID:   company.ID.String(),
		CompanyName: company.Name,
	}
}

func TestProvision_CreatesAdminForCompany(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	company := f.seedCompany(t, "Acme Builders")

	res, err := f.engine.Provision(ctx, adminRequest("owner@acme.test", company))
	require.NoError(t, err)

	require.True(t, res.Success)
	require.Equal(t, http.StatusCreated, res.Status)
	require.True(t, res.IdentityCreated)
	require.Equal(t, OutcomeCreated, res.Outcome)
	require.Equal(t, "Admin user created successfully", res.Message)

	require.Equal(t, "owner@acme.test", res.User.Email)
	require.Equal(t, models.RoleAdmin, res.User.Metadata.Role)

	require.True(t, res.Profile.Matches(company.ID, models.RoleAdmin))
	require.False(t, res.Profile.PendingApproval)
	require.Equal(t, "Olive", res.Profile.FirstName)
	require.Equal(t, "Owner", res.Profile.LastName)

	reg, err := f.profiles.GetRegistrationRequest(ctx, company.ID)
	require.NoError(t, err)
	require.Equal(t, models.RegistrationStatusApproved, reg.Status)
	require.NotNil(t, reg.ApprovedAt)
	require.True(t, reg.ApprovedAt.Equal(f.now))

	require.Equal(t, 1, f.notifier.calls())
	require.Equal(t, "owner@acme.test", f.notifier.sent[0].To)
	require.Equal(t, "Acme Builders", f.notifier.sent[0].CompanyName)
}

func TestProvision_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	company := f.seedCompany(t, "Acme Builders")
	req := adminRequest("owner@acme.test", company)

	first, err := f.engine.Provision(ctx, req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, first.Status)

	second, err := f.engine.Provision(ctx, req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, second.Status)
	require.False(t, second.IdentityCreated)
	require.Equal(t, OutcomeUnchanged, second.Outcome)

	require.Equal(t, first.User.ID, second.User.ID)
	require.Equal(t, first.Profile.UserID, second.Profile.UserID)
	require.Equal(t, *first.Profile.CompanyID, *second.Profile.CompanyID)
	require.Equal(t, first.Profile.Role, second.Profile.Role)

	all, err := f.identities.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.Equal(t, 1, f.profiles.count("CreateProfile"))
	require.Equal(t, 0, f.profiles.count("UpdateProfile"))
}

func TestProvision_SelfHealsMissingProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	company := f.seedCompany(t, "Acme Builders")
	identity := f.seedIdentity(t, "owner@acme.test")

	res, err := f.engine.Provision(ctx, adminRequest("owner@acme.test", company))
	require.NoError(t, err)

	require.Equal(t, identity.ID, res.User.ID)
	require.False(t, res.IdentityCreated)
	require.Equal(t, OutcomeCreated, res.Outcome)
	require.Equal(t, http.StatusCreated, res.Status)
	require.Equal(t, 0, f.identities.createCalls)
	require.Equal(t, 1, f.profiles.count("CreateProfile"))

	profile, err := f.profiles.ProfileStore.GetProfile(ctx, identity.ID)
	require.NoError(t, err)
	require.True(t, profile.Matches(company.ID, models.RoleAdmin))
}

func TestProvision_ReconcilesMismatchedProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	oldCompany := f.seedCompany(t, "Old Co")
	newCompany := f.seedCompany(t, "New Co")
	identity := f.seedIdentity(t, "foreman@acme.test")

	require.NoError(t, f.profiles.ProfileStore.CreateProfile(ctx, &models.Profile{
		UserID:          identity.ID,
		CompanyID:       &oldCompany.ID,
		Role:            models.RoleForeman,
		FirstName:       "Fred",
		LastName:        "Foreman",
		PendingApproval: true,
	}))

	res, err := f.engine.Provision(ctx, Request{
		Email:     "foreman@acme.test",
		Password:  "ignored",
		FirstName: "Frederick",
		LastName:  "Admin",
		CompanyID: newCompany.ID.String(),
	})
	require.NoError(t, err)

	require.Equal(t, OutcomeUpdated, res.Outcome)
	require.Equal(t, http.StatusOK, res.Status)
	require.Equal(t, "User profile updated successfully", res.Message)

	profile, err := f.profiles.ProfileStore.GetProfile(ctx, identity.ID)
	require.NoError(t, err)
	require.Equal(t, newCompany.ID, *profile.CompanyID)
	require.Equal(t, models.RoleAdmin, profile.Role)
	require.Equal(t, "Frederick", profile.FirstName)
	require.Equal(t, "Admin", profile.LastName)
	require.False(t, profile.PendingApproval)
	require.True(t, profile.UpdatedAt.Equal(f.now))

	require.Equal(t, 1, f.profiles.count("UpdateProfile"))
	require.Equal(t, 0, f.profiles.count("CreateProfile"))

	// Company name falls back to the stored company when the request omits it.
	require.Equal(t, 1, f.notifier.calls())
	require.Equal(t, "New Co", f.notifier.sent[0].CompanyName)
}

func TestProvision_NoOpIssuesNoWrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	company := f.seedCompany(t, "Acme Builders")
	identity := f.seedIdentity(t, "owner@acme.test")

	require.NoError(t, f.profiles.ProfileStore.CreateProfile(ctx, &models.Profile{
		UserID:    identity.ID,
		CompanyID: &company.ID,
		Role:      models.RoleAdmin,
	}))

	res, err := f.engine.Provision(ctx, adminRequest("owner@acme.test", company))
	require.NoError(t, err)

	require.True(t, res.Success)
	require.Equal(t, http.StatusOK, res.Status)
	require.Equal(t, OutcomeUnchanged, res.Outcome)
	require.Equal(t, 0, f.profiles.count("UpdateProfile"))
	require.Equal(t, 0, f.profiles.count("CreateProfile"))
	require.Equal(t, 0, f.identities.createCalls)
}

func TestProvision_NotificationGating(t *testing.T) {
	ctx := context.Background()

	t.Run("super admin is never notified", func(t *testing.T) {
		f := newFixture(t)
		req := Request{Email: "ops+superadmin@sitecrew.test", Password: "x"}

		for range 2 {
			res, err := f.engine.Provision(ctx, req)
			require.NoError(t, err)
			require.Equal(t, models.RoleSuperAdmin, res.Profile.Role)
		}

		require.Equal(t, 0, f.notifier.calls())
	})

	t.Run("admin without company is not notified", func(t *testing.T) {
		f := newFixture(t)

		res, err := f.engine.Provision(ctx, Request{Email: "someone@sitecrew.test", Password: "x"})
		require.NoError(t, err)
		require.Equal(t, models.RoleAdmin, res.Profile.Role)
		require.Equal(t, 0, f.notifier.calls())
	})

	t.Run("company admin is notified once per call", func(t *testing.T) {
		f := newFixture(t)
		company := f.seedCompany(t, "Acme Builders")
		req := adminRequest("owner@acme.test", company)

		_, err := f.engine.Provision(ctx, req)
		require.NoError(t, err)
		require.Equal(t, 1, f.notifier.calls())

		_, err = f.engine.Provision(ctx, req)
		require.NoError(t, err)
		require.Equal(t, 2, f.notifier.calls())
	})

	t.Run("notification failure does not fail provisioning", func(t *testing.T) {
		f := newFixture(t)
		f.notifier.err = errors.New("smtp down")
		company := f.seedCompany(t, "Acme Builders")

		res, err := f.engine.Provision(ctx, adminRequest("owner@acme.test", company))
		require.NoError(t, err)
		require.True(t, res.Success)
		require.Equal(t, http.StatusCreated, res.Status)
	})
}

func TestProvision_ValidationShortCircuits(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		req     Request
		message string
	}{
		{name: "missing email", req: Request{Password: "x"}, message: "Email is required"},
		{name: "missing everything", req: Request{}, message: "Email is required"},
		{name: "blank email", req: Request{Email: "   ", Password: "x"}, message: "Email is required"},
		{name: "missing password", req: Request{Email: "a@b.test"}, message: "Password is required"},
		{name: "malformed company", req: Request{Email: "a@b.test", Password: "x", CompanyID: "not-a-uuid"}, message: "Company ID must be a valid UUID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			res, err := f.engine.Provision(ctx, tt.req)
			require.Nil(t, res)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Contains(t, verr.Error(), tt.message)

			require.Equal(t, 0, f.identities.calls())
			require.Equal(t, 0, f.profiles.total())
			require.Equal(t, 0, f.notifier.calls())
		})
	}
}

func TestProvision_IdentityConflict(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves to concurrently created identity", func(t *testing.T) {
		f := newFixture(t)
		company := f.seedCompany(t, "Acme Builders")

		var winner *models.Identity
		f.identities.beforeCreate = func(email string) {
			winner = f.seedIdentity(t, email)
		}

		res, err := f.engine.Provision(ctx, adminRequest("owner@acme.test", company))
		require.NoError(t, err)
		require.True(t, res.Success)
		require.Equal(t, winner.ID, res.User.ID)
		require.False(t, res.IdentityCreated)

		all, err := f.identities.IdentityStore.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
	})

	t.Run("unresolvable conflict surfaces as store error", func(t *testing.T) {
		f := newFixture(t)
		f.identities.createErr = store.ErrIdentityAlreadyExists

		_, err := f.engine.Provision(ctx, Request{Email: "ghost@acme.test", Password: "x"})

		var serr *StoreError
		require.ErrorAs(t, err, &serr)
		require.Equal(t, "create identity", serr.Op)
		require.ErrorIs(t, err, store.ErrIdentityAlreadyExists)
	})
}

func TestProvision_RegistrationUpdateIsolated(t *testing.T) {
	ctx := context.Background()

	t.Run("update failure", func(t *testing.T) {
		f := newFixture(t)
		f.profiles.updateRegistrationErr = errors.New("registration table locked")
		company := f.seedCompany(t, "Acme Builders")

		res, err := f.engine.Provision(ctx, adminRequest("owner@acme.test", company))
		require.NoError(t, err)
		require.True(t, res.Success)
		require.Equal(t, 1, f.profiles.count("UpdateRegistrationRequest"))
		require.Equal(t, 1, f.notifier.calls())
	})

	t.Run("missing registration request", func(t *testing.T) {
		f := newFixture(t)
		company := &models.Company{ID: uuid.Must(uuid.NewV7()), Name: "Walk-in Co", Status: models.CompanyStatusActive}
		require.NoError(t, f.profiles.ProfileStore.CreateCompany(ctx, company))

		res, err := f.engine.Provision(ctx, adminRequest("owner@walkin.test", company))
		require.NoError(t, err)
		require.True(t, res.Success)
	})

	t.Run("not touched on the bootstrap path", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.engine.Provision(ctx, Request{Email: "root+superadmin@sitecrew.test", Password: "x"})
		require.NoError(t, err)
		require.Equal(t, 0, f.profiles.count("UpdateRegistrationRequest"))
	})
}

func TestProvision_UnknownCompany(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Provision(context.Background(), Request{
		Email:     "owner@acme.test",
		Password:  "x",
		CompanyID: uuid.NewString(),
	})
	require.ErrorIs(t, err, ErrCompanyNotFound)
	require.Equal(t, 0, f.identities.calls())
}

func TestProvision_SuperAdminCompanyBootstrap(t *testing.T) {
	ctx := context.Background()

	t.Run("created once and reused", func(t *testing.T) {
		f := newFixture(t)

		first, err := f.engine.Provision(ctx, Request{Email: "a+superadmin@sitecrew.test", Password: "x"})
		require.NoError(t, err)
		require.Equal(t, "Super admin created successfully", first.Message)
		require.Equal(t, "Super", first.Profile.FirstName)
		require.Equal(t, "Admin", first.Profile.LastName)

		second, err := f.engine.Provision(ctx, Request{Email: "b+superadmin@sitecrew.test", Password: "x"})
		require.NoError(t, err)

		require.Equal(t, *first.Profile.CompanyID, *second.Profile.CompanyID)
		require.Equal(t, 1, f.profiles.count("CreateCompany"))

		company, err := f.profiles.ProfileStore.GetCompanyByName(ctx, models.SuperAdminCompanyName)
		require.NoError(t, err)
		require.Equal(t, models.CompanyStatusActive, company.Status)
	})

	t.Run("concurrent creator wins", func(t *testing.T) {
		f := newFixture(t)

		winner := &models.Company{ID: uuid.Must(uuid.NewV7()), Name: models.SuperAdminCompanyName, Status: models.CompanyStatusActive}
		f.profiles.beforeCreateCompany = func(*models.Company) {
			require.NoError(t, f.profiles.ProfileStore.CreateCompany(ctx, winner))
		}

		res, err := f.engine.Provision(ctx, Request{Email: "a+superadmin@sitecrew.test", Password: "x"})
		require.NoError(t, err)
		require.Equal(t, winner.ID, *res.Profile.CompanyID)
	})
}

func TestProvision_StubProfileRace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	company := f.seedCompany(t, "Acme Builders")

	// A trigger-style stub row appears after the profile read.
	f.profiles.beforeCreateProfile = func(p *models.Profile) {
		require.NoError(t, f.profiles.ProfileStore.CreateProfile(ctx, &models.Profile{
			UserID:          p.UserID,
			Role:            models.RoleEmployee,
			PendingApproval: true,
		}))
	}

	res, err := f.engine.Provision(ctx, adminRequest("owner@acme.test", company))
	require.NoError(t, err)
	require.Equal(t, OutcomeUpdated, res.Outcome)
	require.Equal(t, http.StatusCreated, res.Status)
	require.True(t, res.Profile.Matches(company.ID, models.RoleAdmin))
	require.False(t, res.Profile.PendingApproval)
}

func TestProvision_StoreErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("profile read failure", func(t *testing.T) {
		f := newFixture(t)
		f.profiles.getProfileErr = errors.New("connection reset")
		company := f.seedCompany(t, "Acme Builders")

		_, err := f.engine.Provision(ctx, adminRequest("owner@acme.test", company))

		var serr *StoreError
		require.ErrorAs(t, err, &serr)
		require.Equal(t, "lookup profile", serr.Op)
		require.Contains(t, err.Error(), "connection reset")
		require.Equal(t, 0, f.notifier.calls())
	})

	t.Run("profile write failure keeps identity for next call", func(t *testing.T) {
		f := newFixture(t)
		f.profiles.createProfileErr = errors.New("disk full")
		company := f.seedCompany(t, "Acme Builders")
		req := adminRequest("owner@acme.test", company)

		_, err := f.engine.Provision(ctx, req)
		require.Error(t, err)

		all, err := f.identities.IdentityStore.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)

		f.profiles.createProfileErr = nil
		res, err := f.engine.Provision(ctx, req)
		require.NoError(t, err)
		require.Equal(t, OutcomeCreated, res.Outcome)
		require.Equal(t, all[0].ID, res.User.ID)
	})

	t.Run("panic is recovered", func(t *testing.T) {
		f := newFixture(t)
		f.profiles.panicOnUpdate = true
		company := f.seedCompany(t, "Acme Builders")
		identity := f.seedIdentity(t, "owner@acme.test")
		require.NoError(t, f.profiles.ProfileStore.CreateProfile(ctx, &models.Profile{UserID: identity.ID, Role: models.RoleEmployee}))

		res, err := f.engine.Provision(ctx, adminRequest("owner@acme.test", company))
		require.Nil(t, res)
		require.ErrorIs(t, err, ErrInternal)

		var serr *StoreError
		require.ErrorAs(t, err, &serr)
		require.Equal(t, "provision", serr.Op)
	})
}

func TestProvision_ExistingPasswordNotReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	company := f.seedCompany(t, "Acme Builders")
	f.seedIdentity(t, "owner@acme.test")

	req := adminRequest("owner@acme.test", company)
	req.Password = "a-new-password"

	_, err := f.engine.Provision(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 0, f.identities.createCalls)
}
