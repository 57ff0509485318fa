// Package http exposes the platform's REST surface: authentication flows,
// account self-service, administration and the tenancy CRUD endpoints.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/metagate-hq/platform/internal/platform/service"
	"github.com/metagate-hq/platform/pkg/httpx"
	"github.com/metagate-hq/platform/pkg/slogx"
)

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Infrastructure faults are logged with their cause but never leak details
// to the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, service.ErrConflict):
		httpx.WriteError(w, http.StatusConflict, "conflict", "email or username already taken")
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	case errors.Is(err, service.ErrAccountInactive):
		httpx.WriteError(w, http.StatusForbidden, "account_inactive", "account is not active")
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, service.ErrTokenExpired):
		httpx.WriteError(w, http.StatusUnauthorized, "token_expired", "token has expired")
	case errors.Is(err, service.ErrTokenInvalid):
		httpx.WriteError(w, http.StatusUnauthorized, "token_invalid", "token is invalid")
	case errors.Is(err, service.ErrNoPasswordSet):
		httpx.WriteError(w, http.StatusConflict, "no_password", "account has no password set")
	case errors.Is(err, service.ErrIllegalTransition):
		httpx.WriteError(w, http.StatusConflict, "illegal_transition", "operation not allowed in the current account status")
	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}

// decodeJSON reads the request body into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return false
	}
	return true
}
