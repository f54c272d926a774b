package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sitecrew/backoffice/internal/models"
	"github.com/sitecrew/backoffice/internal/registration"
	"github.com/sitecrew/backoffice/internal/store"
)

func (s *Server) handleSubmitRegistration(w http.ResponseWriter, r *http.Request) {
	var sub registration.Submission
	if !decodeJSON(w, r, &sub) {
		return
	}

	submitted, err := s.registrations.Submit(r.Context(), sub)
	if err != nil {
		writeRegistrationError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, submitted)
}

func (s *Server) handleListRegistrations(w http.ResponseWriter, r *http.Request) {
	status := models.RegistrationStatus(r.URL.Query().Get("status"))

	requests, err := s.registrations.List(r.Context(), status)
	if err != nil {
		writeRegistrationError(w, r, err)
		return
	}

	if requests == nil {
		requests = []*models.RegistrationRequest{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"registrations": requests})
}

func (s *Server) handleRejectRegistration(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(r.PathValue("companyId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Company ID must be a valid UUID", "")
		return
	}

	req, err := s.registrations.Reject(r.Context(), companyID)
	if err != nil {
		writeRegistrationError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, req)
}

func writeRegistrationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, registration.ErrInvalidRegistration):
		writeError(w, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, store.ErrCompanyAlreadyExists):
		writeError(w, http.StatusConflict, "Company already exists", "")
	case errors.Is(err, registration.ErrNotPending):
		writeError(w, http.StatusConflict, err.Error(), "")
	case errors.Is(err, store.ErrRegistrationRequestNotFound):
		writeError(w, http.StatusNotFound, "Registration request not found", "")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Registration request failed")
		writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
	}
}
