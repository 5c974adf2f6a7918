package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/murtaza309/streemza/account"
)

const (
	// Keys the JWT middleware stores the verified identity under.
	ActorIdKey       = "actor_id"
	ActorUsernameKey = "actor_username"
)

// TokenVerifier checks a token and returns who it was issued to.
type TokenVerifier interface {
	Parse(token string) (*account.Claims, error)
}

// bearerToken reads "Authorization: Bearer <token>", falling back to the
// "token" query parameter, which is the only option for browser websockets.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return c.Query("token")
}

// JWT middleware verifies the request's token and stores the user id in the
// gin context under ActorIdKey. It aborts with 401 on a missing, invalid or
// expired token.
func JWT(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "empty jwt token"})
			return
		}

		claims, err := verifier.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid jwt token"})
			return
		}

		c.Set(ActorIdKey, claims.Subject)
		c.Set(ActorUsernameKey, claims.Username)

		// before request
		c.Next()
	}
}

// GetActorId returns the verified user id, empty when no JWT middleware ran.
func GetActorId(c *gin.Context) string {
	return c.GetString(ActorIdKey)
}
