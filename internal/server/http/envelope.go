// Package httpserver exposes the REST API over chi.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clipstream/clipstream/internal/errs"
)

// envelope is the uniform response shape: {statusCode, data|message, success}.
type envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data,omitempty"`
	Message    string `json:"message,omitempty"`
	Success    bool   `json:"success"`
}

func writeData(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{StatusCode: status, Data: data, Message: message, Success: true})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{StatusCode: status, Message: message, Success: false})
}

// writeFailure maps sentinel errors to statuses; anything unexpected becomes
// an opaque 500 so no store-native error or stack ever reaches a client.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrValidation),
		errors.Is(err, errs.ErrInvalidReference),
		errors.Is(err, errs.ErrAlreadyExists),
		errors.Is(err, errs.ErrUpstream):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, errs.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "too many attempts, try again later")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
