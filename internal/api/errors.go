// Package api implements the HTTP handlers and router for the directory engine.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"dirgate/internal/domain"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// writeError maps domain errors to HTTP status codes and writes the envelope.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	var (
		notFound   *domain.NotFoundError
		denied     *domain.AccessDeniedError
		validation *domain.ValidationError
		conflict   *domain.ConflictError
		hierarchy  *domain.InvalidHierarchyError
		notEmpty   *domain.NotEmptyError
		transition *domain.InvalidTransitionError
		policy     *domain.PolicyViolationError
		badCred    *domain.BadCredentialError
		locked     *domain.LockedError
	)

	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Code: http.StatusNotFound, Message: notFound.Message})
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: http.StatusBadRequest, Message: validation.Message})
	case errors.As(err, &policy):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Message: "password does not satisfy the policy",
			Details: policy.Violations,
		})
	case errors.As(err, &badCred):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Code: http.StatusUnauthorized, Message: badCred.Error()})
	case errors.As(err, &denied):
		writeJSON(w, http.StatusForbidden, errorResponse{Code: http.StatusForbidden, Message: denied.Message})
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errorResponse{Code: http.StatusConflict, Message: conflict.Message})
	case errors.As(err, &notEmpty):
		writeJSON(w, http.StatusConflict, errorResponse{Code: http.StatusConflict, Message: notEmpty.Message})
	case errors.As(err, &hierarchy):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Code: http.StatusUnprocessableEntity, Message: hierarchy.Message})
	case errors.As(err, &transition):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Code: http.StatusUnprocessableEntity, Message: transition.Error()})
	case errors.As(err, &locked):
		w.Header().Set("Retry-After", locked.Until.UTC().Format(time.RFC1123))
		writeJSON(w, http.StatusLocked, errorResponse{Code: http.StatusLocked, Message: locked.Error()})
	default:
		log.Error("internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: http.StatusInternalServerError, Message: "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Code: http.StatusBadRequest, Message: msg})
}
