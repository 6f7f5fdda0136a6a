package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"roboteamup/internal/service"
	"roboteamup/internal/store"
)

// statusForError maps service sentinel errors onto HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrNoIdentity),
		errors.Is(err, service.ErrUnregisteredUser):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrNotEnrolled):
		return http.StatusForbidden
	case errors.Is(err, service.ErrBadPayload),
		errors.Is(err, service.ErrUnknownValue),
		errors.Is(err, service.ErrDuplicateValue),
		errors.Is(err, service.ErrTooManySelections),
		errors.Is(err, service.ErrCoinBudgetExceeded),
		errors.Is(err, service.ErrMissionNotAllowed),
		errors.Is(err, service.ErrCodeInvalid):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateUser),
		errors.Is(err, service.ErrAlreadyEnrolled):
		return http.StatusConflict
	case errors.Is(err, service.ErrUpstream):
		return http.StatusBadGateway
	}

	var confErr *store.ConfigError
	if errors.As(err, &confErr) || errors.Is(err, store.ErrLockTimeout) {
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// respondWithServiceError writes a JSON error body with the mapped
// status. Internal errors are logged with detail but reported
// generically.
func respondWithServiceError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// decodeJSON reads a request body into dst, rejecting unknown syntax
// with ErrBadPayload semantics.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return service.ErrBadPayload
	}
	return nil
}
