package core

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	errCodeValidation   = "VALIDATION_ERROR"
	errCodeUnauthorized = "UNAUTHORIZED"
	errCodeNotFound     = "NOT_FOUND"
	errCodeInternal     = "INTERNAL_SERVER_ERROR"
)

// respondError sends unified error payload {"error": {"code", "message"}}.
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}

// respondValidation sends {"errors": [{"field", "message"}, ...]}.
func respondValidation(c *gin.Context, errs []FieldError) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
}

// respondServiceError maps a service error onto the response taxonomy.
// Internal details are logged, never returned.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		respondValidation(c, verr.Errors)
	case errors.Is(err, ErrNotFound):
		respondError(c, http.StatusNotFound, errCodeNotFound, "resource not found")
	default:
		LogError(logger, "request failed", err, "path", c.FullPath(), "request_id", requestID(c))
		respondError(c, http.StatusInternalServerError, errCodeInternal, "internal server error")
	}
}
