package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library-backend/internal/shared/authz"
	"library-backend/internal/shared/response"
	"library-backend/pkg/jwt"
)

const actorKey = "actor"

// AuthMiddleware validates the identity provider's bearer token and stores the
// authenticated acting user in the request context. The role is taken from the
// verified token only - never from request payloads.
func AuthMiddleware(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := manager.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			response.Unauthorized(c, "invalid user ID in token")
			c.Abort()
			return
		}

		role, ok := authz.ParseRole(claims.Role)
		if !ok {
			response.Unauthorized(c, "invalid role in token")
			c.Abort()
			return
		}

		c.Set(actorKey, authz.Actor{UserID: userID, Role: role})
		c.Next()
	}
}

// ActorFrom retrieves the authenticated actor set by AuthMiddleware.
func ActorFrom(c *gin.Context) (authz.Actor, bool) {
	v, exists := c.Get(actorKey)
	if !exists {
		return authz.Actor{}, false
	}
	actor, ok := v.(authz.Actor)
	return actor, ok
}

// RequireRole rejects requests below the given role before the handler runs.
// Services still authorize every command through the gate; this only fails
// fast at the router edge.
func RequireRole(min authz.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			response.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}

		if !actor.Role.Subsumes(min) {
			response.Forbidden(c, "insufficient role for this operation")
			c.Abort()
			return
		}

		c.Next()
	}
}
