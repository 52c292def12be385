package main

import (
	"encoding/json"
	"errors"
	"net/http"
)

// APIError represents a structured error response.
type APIError struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIError{Error: msg, Code: status})
}

// writeAccessError maps an access layer error onto an HTTP response.
// Caller-correctable failures are 400s; store failures are 500s.
func writeAccessError(w http.ResponseWriter, err error, storeMsg string) {
	switch {
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusBadRequest, "invalid credential")
	case errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, storeMsg)
	}
}
