// Package endpoints implements the HTTP API. Each endpoint is both a
// route on the server mux and a cobra command that calls the route over
// HTTP, so the CLI and the HTTP surface never drift apart.
package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alonmar/books-gen/internal/book"
	"github.com/alonmar/books-gen/internal/jobs"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeDomainError maps domain errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, book.ErrNotFound),
		errors.Is(err, book.ErrChapterNotFound),
		errors.Is(err, jobs.ErrJobNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, book.ErrExists),
		errors.Is(err, book.ErrBookBusy):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, book.ErrValidation),
		errors.Is(err, book.ErrNoIndex):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
