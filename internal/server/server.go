// Package server wires the HTTP API: routing, JSON encoding, and the mapping
// from domain errors to status codes.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/splitpal/splitpal/internal/auth"
	"github.com/splitpal/splitpal/internal/directory"
	"github.com/splitpal/splitpal/internal/models"
	"github.com/splitpal/splitpal/internal/service"
	"github.com/splitpal/splitpal/internal/storage"
)

// Server holds the handler dependencies.
type Server struct {
	authn      auth.Authenticator
	jwtManager *auth.JWTManager
	ledger     *service.LedgerService
	reports    *service.ReportService
	directory  directory.Directory
}

// New creates a server with all handler dependencies.
func New(authn auth.Authenticator, jwtManager *auth.JWTManager, ledger *service.LedgerService, reports *service.ReportService, dir directory.Directory) *Server {
	return &Server{
		authn:      authn,
		jwtManager: jwtManager,
		ledger:     ledger,
		reports:    reports,
		directory:  dir,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps domain errors to HTTP statuses: validation 400, missing
// references 404, authorization 403. Anything unexpected is a 500 with a
// generic body; details stay in the logs.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *models.ValidationError
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validation.Reason})
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotAllowed):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrEmailExists):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.Invalidf("invalid request body: %v", err)
	}
	return nil
}
