package handlers

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/healingsoulutions/intake-api/internal/usecase"
)

type errorResponse struct {
	Error string `json:"error"`
	Debug any    `json:"debug,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// statusFor maps the usecase error taxonomy onto HTTP.
func statusFor(err error) int {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func messageFor(err error) string {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		return te.Message
	}
	return "Internal server error"
}

func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "Not found")
}
