package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sitecrew/backoffice/internal/auth"
	"github.com/sitecrew/backoffice/internal/bootstrap"
	httpmiddleware "github.com/sitecrew/backoffice/internal/http"
	"github.com/sitecrew/backoffice/internal/logger"
	"github.com/sitecrew/backoffice/internal/provision"
	"github.com/sitecrew/backoffice/internal/registration"
	"github.com/sitecrew/backoffice/internal/server"
	"github.com/sitecrew/backoffice/internal/telemetry"
)

const serviceName = "backoffice-server"

type ServerCmd struct {
	// Server configuration
	Listen string `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"BACKOFFICE_LISTEN"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"*" env:"BACKOFFICE_CORS_ORIGINS"`

	// Authentication
	JWTSecret string `help:"HS256 secret for bearer tokens; empty disables authentication" env:"BACKOFFICE_JWT_SECRET"`

	// Provisioning
	SuperAdminMarker string `help:"email substring that grants super_admin on the bootstrap path" default:"superadmin" env:"BACKOFFICE_SUPER_ADMIN_MARKER"`

	// Telemetry
	Tracing     bool    `help:"enable tracing and metrics export" default:"false" env:"BACKOFFICE_TRACING"`
	SampleRatio float64 `help:"trace sample ratio" default:"1.0" env:"BACKOFFICE_TRACE_SAMPLE_RATIO"`
	Environment string  `help:"deployment environment reported with traces and metrics" default:"production" env:"BACKOFFICE_ENVIRONMENT"`

	Stores bootstrap.Config `embed:""`
}

func (c *ServerCmd) Validate() error {
	if c.JWTSecret != "" && len(c.JWTSecret) < 32 {
		return errors.New("JWT secret must be at least 32 bytes (256 bits) for HMAC-SHA256")
	}
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return errors.New("trace sample ratio must be between 0 and 1")
	}
	return nil
}

func (c *ServerCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Dev, serviceName)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", globals.Version).Bool("dev", globals.Dev).Msg("Starting server")

	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, telemetry.Config{
			ServiceName:   serviceName,
			Version:       globals.Version,
			Environment:   c.Environment,
			SampleRatio:   c.SampleRatio,
			IdentityStore: c.Stores.IdentityStore,
			ProfileStore:  c.Stores.ProfileStore,
			Notifier:      c.Stores.Notifier,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	res, err := bootstrap.Bootstrap(ctx, c.Stores)
	if err != nil {
		return err
	}
	defer res.Close()

	engine := provision.NewEngine(res.Identities, res.Profiles, res.Notifier,
		provision.WithSuperAdminMatcher(provision.MatchEmailContaining(c.SuperAdminMarker)))

	var opts []server.Option
	if c.JWTSecret != "" {
		verifier, err := auth.NewJWTVerifier([]byte(c.JWTSecret))
		if err != nil {
			return fmt.Errorf("failed to create JWT verifier: %w", err)
		}
		opts = append(opts, server.WithAuth(verifier))
	} else {
		log.Warn().Msg("Authentication is disabled (no --jwt-secret). This should only be used in development!")
	}

	srv := server.NewServer(engine, registration.NewService(res.Profiles), opts...)

	handler := httpmiddleware.Chain(srv.Handler(),
		httpmiddleware.ClientIPMiddleware(),
		logger.RequestLogger(log),
		httpmiddleware.CORSMiddleware(c.CORSOrigins),
	)
	if c.Tracing {
		handler = telemetry.InstrumentHandler(handler, serviceName)
	}

	httpServer := configureHTTPServer(c.Listen, handler)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", c.Listen).Bool("auth", c.JWTSecret != "").Msg("Starting HTTP server")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
