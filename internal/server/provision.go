package server

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/sitecrew/backoffice/internal/provision"
)

func (s *Server) handleCreateSuperAdmin(w http.ResponseWriter, r *http.Request) {
	var req provision.Request
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := s.engine.Provision(r.Context(), req)
	if err != nil {
		writeProvisionError(w, r, err)
		return
	}

	writeJSON(w, res.Status, res)
}

func writeProvisionError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *provision.ValidationError
		serr *provision.StoreError
	)

	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message, "")
	case errors.Is(err, provision.ErrCompanyNotFound):
		writeError(w, http.StatusNotFound, "Company not found", "")
	case errors.As(err, &serr):
		zerolog.Ctx(r.Context()).Error().Err(err).Str("op", serr.Op).Msg("Provisioning failed")
		writeError(w, http.StatusInternalServerError, "Failed to create admin user", serr.Err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Provisioning failed")
		writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
	}
}
