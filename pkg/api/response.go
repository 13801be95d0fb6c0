// Package api provides standardized helper functions for HTTP API responses.
package api

import (
	"encoding/json"
	"net/http"

	apperrors "sitewise-backend/pkg/errors"
)

// Success sends a standardized successful HTTP response with optional JSON data.
func Success(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Error sends a standardized error response with consistent JSON format.
func Error(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// FromError maps an application error to the matching HTTP error response.
func FromError(w http.ResponseWriter, err error) {
	switch {
	case apperrors.IsValidation(err):
		Error(w, http.StatusBadRequest, err.Error())
	case apperrors.IsNotFound(err):
		Error(w, http.StatusNotFound, err.Error())
	case apperrors.IsUnauthorized(err):
		Error(w, http.StatusUnauthorized, "Authentication required")
	default:
		Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
