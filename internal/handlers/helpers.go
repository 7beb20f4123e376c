package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

var validate = validator.New()

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a standard success JSON response.
func WriteSuccess(w http.ResponseWriter, message string) error {
	return WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": message,
	})
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// WriteServiceError maps service-layer errors onto HTTP status codes.
func WriteServiceError(w http.ResponseWriter, err error) error {
	var validationErr *models.ValidationError
	var upstreamErr *models.UpstreamError
	switch {
	case errors.Is(err, models.ErrNotFound):
		return WriteError(w, http.StatusNotFound, "Not found")
	case errors.As(err, &validationErr):
		return WriteError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &upstreamErr):
		return WriteError(w, http.StatusBadGateway, upstreamErr.Error())
	default:
		return WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// DecodeAndValidate decodes the request body into dst and runs the
// validator tags on it.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// UserID extracts the caller identity. Auth is a stub seam: requests
// carry X-User-ID and the gateway in front is trusted to have set it.
func UserID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return "anonymous"
}

// RequireUserID is UserID for endpoints that refuse anonymous callers.
func RequireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get("X-User-ID")
	if id == "" {
		WriteError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return "", false
	}
	return id, true
}
