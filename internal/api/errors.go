package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/wellally/healthaudit/internal/httputil"
	"github.com/wellally/healthaudit/internal/metrics"
	"github.com/wellally/healthaudit/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest  = "invalid_request"
	ErrCodeNotFound        = "not_found"
	ErrCodeInternalError   = "internal_error"
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeRateLimited     = "rate_limited"
	ErrCodeValidationError = "validation_error"
)

// respondError writes a standardized JSON error response, pulling the request
// ID from the Gin context (set by the request ID middleware).
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}

// isValidationErr reports whether err is one of the candidate field errors.
func isValidationErr(err error) bool {
	return errors.Is(err, models.ErrMissingActor) ||
		errors.Is(err, models.ErrMissingAction) ||
		errors.Is(err, models.ErrMissingResourceType) ||
		errors.Is(err, models.ErrMissingResourceID)
}

// respondAppendError maps ledger append failures onto HTTP statuses.
// Serialization and validation problems are the caller's fault; a clock
// regression is transient and worth retrying after the clock settles.
func respondAppendError(c *gin.Context, err error) {
	switch {
	case isValidationErr(err):
		respondError(c, 400, ErrCodeValidationError, err.Error())
	case errors.Is(err, models.ErrSerialization):
		respondError(c, 400, ErrCodeInvalidRequest, err.Error())
	case errors.Is(err, models.ErrClockRegression):
		respondError(c, 503, ErrCodeInternalError, "system clock moved backwards, retry shortly")
	default:
		respondError(c, 500, ErrCodeInternalError, "failed to append entry")
	}
}
