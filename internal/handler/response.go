// Package handler contains the HTTP layer: request parsing, response
// encoding, and the translation of domain errors into status codes.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/script-shelf/internal/apperror"
)

// ErrorResponse is the error shape every endpoint returns.
//
// The field is "msg" (not "error"/"message") because that is the wire
// contract the web client, Chrome extension, and VS Code extension already
// parse. Changing it would break all three.
type ErrorResponse struct {
	Msg string `json:"msg"`
}

// MessageResponse is the success shape for endpoints that return only an
// acknowledgement, e.g. {"msg": "Snippet deleted"}.
type MessageResponse struct {
	Msg string `json:"msg"`
}

// writeJSON sends a JSON response with the given status code.
// Headers and status must be written before the body — once Encode starts
// writing, header changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already gone; logging is all that's left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its HTTP status code.
//
// Taxonomy → status:
//
//	validation, conflict → 400 (the original API used 400 for duplicate
//	                            emails and bad credentials, not 409)
//	unauthenticated      → 401
//	not found / not owned → 404 (deliberately indistinguishable)
//	anything else        → 500 with a generic message — raw errors can leak
//	                       SQL or file paths and never reach the client
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError

		switch {
		case errors.Is(err, apperror.ErrValidation),
			errors.Is(err, apperror.ErrConflict):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrUnauthenticated):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		}

		writeJSON(w, status, ErrorResponse{Msg: appErr.Message})
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Msg: "Server error"})
}
