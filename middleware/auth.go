package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"kinship/apperrors"
	"kinship/auth"
	"kinship/utils"
)

const (
	userIDKey = "user_id"
	emailKey  = "email"
)

// TokenVerifier checks a bearer token of a given kind.
type TokenVerifier interface {
	Verify(token string, kind auth.Kind) (*auth.Claims, error)
}

// AuthMiddleware admits requests carrying a valid bearer token of kind and
// stores the caller's id for handlers.
func AuthMiddleware(tokens TokenVerifier, kind auth.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, apperrors.CodeTokenMalformed, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			utils.Unauthorized(c, apperrors.CodeTokenMalformed, "invalid authorization header format")
			return
		}

		claims, err := tokens.Verify(strings.TrimSpace(parts[1]), kind)
		if err != nil {
			utils.Error(c, err)
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(emailKey, claims.Email)
		c.Next()
	}
}

func GetUserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}
