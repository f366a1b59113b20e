package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const userIDKey = "user_id"

// AuthMiddleware resolves the caller from a Bearer token or, failing that,
// the session cookie. Requests without a valid identity never reach handlers.
func AuthMiddleware(cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" && cookieName != "" {
			tokenString, _ = c.Cookie(cookieName)
		}

		if tokenString == "" {
			abortUnauthorized(c, "Unauthorized")
			return
		}

		claims, err := ValidateToken(tokenString)
		if err != nil {
			log.WithError(err).Debug("Token validation failed")
			abortUnauthorized(c, "Unauthorized")
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			log.WithError(err).Debug("Token subject rejected")
			abortUnauthorized(c, "Unauthorized")
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{"message": message},
	})
}

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(userIDKey)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := userID.(uuid.UUID)
	return id, ok
}
