package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/digitalrehman/secure-todo-flow/internal/repository"
	"github.com/digitalrehman/secure-todo-flow/internal/token"
)

const currentUserIDKey = "currentUserID"

// Auth validates the Authorization header and resolves the caller's identity.
type Auth struct {
	Tokens *token.Issuer
	Users  repository.UserRepository
}

// RequireUser aborts with 401 unless the request carries a valid bearer
// token bound to an existing user. The user id is stored on the context.
func (m *Auth) RequireUser(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		abortUnauthenticated(c, "Authorization header required.")
		return
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		abortUnauthenticated(c, "Bearer token required.")
		return
	}

	userID, err := m.Tokens.Validate(strings.TrimSpace(parts[1]))
	if err != nil {
		abortUnauthenticated(c, "Invalid or expired session token.")
		return
	}

	if _, err := m.Users.GetByID(c.Request.Context(), userID); err != nil {
		abortUnauthenticated(c, "Invalid or expired session token.")
		return
	}

	c.Set(currentUserIDKey, userID)
	c.Next()
}

// CurrentUserID returns the authenticated user id stored by RequireUser.
func CurrentUserID(c *gin.Context) (string, bool) {
	value, ok := c.Get(currentUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := value.(string)
	return id, ok && id != ""
}

func abortUnauthenticated(c *gin.Context, description string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "error_description": description})
}
