// Package provision ensures an admin identity and its profile exist and match
// the requested company and role. Every call is safe to repeat: each step reads
// current state first and applies only the write needed to converge.
package provision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sitecrew/backoffice/internal/models"
	"github.com/sitecrew/backoffice/internal/notify"
	"github.com/sitecrew/backoffice/internal/store"
	"github.com/sitecrew/backoffice/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Engine runs provisioning against the identity and profile stores.
type Engine struct {
	identities store.IdentityStore
	profiles   store.ProfileStore
	notifier   notify.Notifier
	matcher    SuperAdminMatcher
	now        func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithSuperAdminMatcher replaces the default marker-based matcher.
func WithSuperAdminMatcher(m SuperAdminMatcher) Option {
	return func(e *Engine) {
		e.matcher = m
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine. A nil notifier logs emails instead of sending them.
func NewEngine(identities store.IdentityStore, profiles store.ProfileStore, notifier notify.Notifier, opts ...Option) *Engine {
	if notifier == nil {
		notifier = notify.LogSender{}
	}

	e := &Engine{
		identities: identities,
		profiles:   profiles,
		notifier:   notifier,
		matcher:    MatchEmailContaining(DefaultSuperAdminMarker),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Provision validates req and converges identity, company and profile onto it.
//
// Only *ValidationError and *StoreError are returned. Registration-request
// updates and the welcome email run after the profile write and never fail
// the call. A panic anywhere in the chain is returned as a StoreError
// wrapping ErrInternal.
func (e *Engine) Provision(ctx context.Context, req Request) (res *Result, err error) {
	start := time.Now()
	logger := zerolog.Ctx(ctx).With().Str("email", req.Email).Logger()
	ctx = logger.WithContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Provisioning panicked")
			res, err = nil, storeError("provision", fmt.Errorf("%w: %v", ErrInternal, r))
		}
		e.record(ctx, start, res, err)
	}()

	p, err := req.params()
	if err != nil {
		return nil, err
	}

	role := ResolveRole(p.email, p.companyID, e.matcher)

	// An unknown company is rejected before any identity is written.
	var company *models.Company
	if p.companyID != nil {
		company, err = e.lookupCompany(ctx, *p.companyID)
		if err != nil {
			return nil, err
		}
	}

	identity, identityCreated, err := e.ensureIdentity(ctx, p, role)
	if err != nil {
		return nil, err
	}

	if company == nil {
		company, err = e.ensureSuperAdminCompany(ctx)
		if err != nil {
			return nil, err
		}
	}

	profile, outcome, err := e.ensureProfile(ctx, identity, desiredProfile{
		companyID: company.ID,
		role:      role,
		firstName: p.firstName,
		lastName:  p.lastName,
	})
	if err != nil {
		return nil, err
	}

	if p.companyID != nil {
		e.markApproved(ctx, company.ID)
	}

	if role == models.RoleAdmin && p.companyID != nil {
		companyName := p.companyName
		if companyName == "" {
			companyName = company.Name
		}
		e.sendWelcome(ctx, notify.WelcomeEmail{
			To:          p.email,
			FirstName:   p.firstName,
			LastName:    p.lastName,
			CompanyName: companyName,
		})
	}

	res = newResult(identity, identityCreated, profile, outcome, role)

	logger.Info().
		Str("user_id", identity.ID.String()).
		Str("company_id", company.ID.String()).
		Str("role", string(role)).
		Str("outcome", string(outcome)).
		Int("status", res.Status).
		Msg("Provisioned admin")

	return res, nil
}

func (e *Engine) record(ctx context.Context, start time.Time, res *Result, err error) {
	m := telemetry.GetMetrics()
	m.ProvisionDuration.Record(ctx, float64(time.Since(start).Milliseconds()))

	if err != nil {
		kind := "store"
		var verr *ValidationError
		if errors.As(err, &verr) {
			kind = "validation"
		}
		m.ProvisionErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
		return
	}

	m.ProvisionTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", string(res.Outcome)),
		attribute.Int("status", res.Status),
	))
}
