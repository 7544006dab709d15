package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/digitalrehman/secure-todo-flow/internal/domain"
)

// respondError maps domain error kinds to HTTP statuses. This is the only
// place the taxonomy meets status codes; services never touch HTTP.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": err.Error()})
	case errors.Is(err, domain.ErrDuplicateAccount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "duplicate_account", "error_description": "Email already registered."})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials", "error_description": "Invalid email or password."})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user_not_found", "error_description": "User not found."})
	case errors.Is(err, domain.ErrEmailAlreadyVerified):
		c.JSON(http.StatusBadRequest, gin.H{"error": "already_verified", "error_description": "Email already verified."})
	case errors.Is(err, domain.ErrInvalidOrExpiredSecret):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_or_expired_secret", "error_description": "Invalid or expired verification secret."})
	case errors.Is(err, domain.ErrUnverifiedProviderEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unverified_provider_email", "error_description": "Google email not verified."})
	case errors.Is(err, domain.ErrUpstreamVerification):
		c.JSON(http.StatusBadRequest, gin.H{"error": "upstream_verification_failed", "error_description": "Provider assertion could not be verified."})
	case errors.Is(err, domain.ErrTodoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "error_description": "Todo not found."})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "error_description": "Not authorized to access this todo."})
	default:
		zap.L().Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Internal server error."})
	}
}
