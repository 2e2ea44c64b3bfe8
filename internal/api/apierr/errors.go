package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lostbeltno7/GameGuardian/internal/metrics"
	"github.com/lostbeltno7/GameGuardian/internal/model"
	"github.com/lostbeltno7/GameGuardian/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeSuspended        = "ACCOUNT_SUSPENDED"
	CodePlayerNotFound   = "PLAYER_NOT_FOUND"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeInternalError    = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	if he.apiError.Code == CodeStoreUnavailable {
		metrics.StoreErrorsTotal.Inc()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrPlayerSuspended):
		return &httpError{http.StatusForbidden, APIError{CodeSuspended, "Account suspended"}}
	case errors.Is(err, model.ErrStoreUnavailable),
		errors.Is(err, model.ErrUpdateConflict):
		// The store cannot answer: refuse to guess a verdict either way
		return &httpError{http.StatusServiceUnavailable, APIError{CodeStoreUnavailable, "Player record store unavailable"}}

	case errors.Is(err, auth.ErrInvalidAPIKey),
		errors.Is(err, auth.ErrInvalidAdminKey):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Missing or invalid API key"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error.
// Validation failures never touch the player record or the violation counter.
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
