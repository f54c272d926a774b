package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sitecrew/backoffice/internal/auth"
	httpmiddleware "github.com/sitecrew/backoffice/internal/http"
	"github.com/sitecrew/backoffice/internal/provision"
	"github.com/sitecrew/backoffice/internal/registration"
)

const maxBodyBytes = 1 << 20

// Server exposes provisioning and registration over HTTP.
type Server struct {
	engine        *provision.Engine
	registrations *registration.Service
	verifier      *auth.JWTVerifier
}

// Option configures a Server.
type Option func(*Server)

// WithAuth requires a bearer token on every API route.
func WithAuth(verifier *auth.JWTVerifier) Option {
	return func(s *Server) {
		s.verifier = verifier
	}
}

// NewServer creates a new server.
func NewServer(engine *provision.Engine, registrations *registration.Service, opts ...Option) *Server {
	s := &Server{
		engine:        engine,
		registrations: registrations,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler for the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint for load balancer
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("OPTIONS /create-super-admin", s.handlePreflight)
	mux.Handle("POST /create-super-admin", s.protect(auth.PermProvisionAdmins, s.handleCreateSuperAdmin))

	mux.Handle("POST /registrations", s.protect(auth.PermSubmitRegistrations, s.handleSubmitRegistration))
	mux.Handle("GET /registrations", s.protect(auth.PermReviewRegistrations, s.handleListRegistrations))
	mux.Handle("POST /registrations/{companyId}/reject", s.protect(auth.PermReviewRegistrations, s.handleRejectRegistration))

	return mux
}

func (s *Server) protect(perm auth.Permission, h http.HandlerFunc) http.Handler {
	if s.verifier == nil {
		return h
	}
	return httpmiddleware.Chain(h, s.verifier.Middleware(), auth.RequirePermission(perm))
}

// handlePreflight answers OPTIONS requests that reach the mux without CORS
// request headers.
func (s *Server) handlePreflight(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", strings.Join(httpmiddleware.AllowedHeaders, ", "))
	w.WriteHeader(http.StatusOK)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Failed to decode request body")
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
		return false
	}
	return true
}
