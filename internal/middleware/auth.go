package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nadi-health/core/internal/pkg/jwt"
	"github.com/nadi-health/core/internal/pkg/response"
)

const (
	ContextKeyUserID   = "user_id"
	ContextKeyUserName = "user_name"
	ContextKeyRole     = "user_role"

	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Auth returns a middleware that enforces JWT authentication.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := ValidateToken(extractToken(c))
		if err != nil {
			response.Unauthorized(c)
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth sets the user if a valid token is present, but does not block the request.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := ValidateToken(extractToken(c)); err == nil && claims.UserID != "" {
			setClaims(c, claims)
		}
		c.Next()
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentRole(c) != RoleAdmin {
			response.Forbidden(c)
			return
		}
		c.Next()
	}
}

// Admin is Auth followed by RequireAdmin.
func Admin() []gin.HandlerFunc {
	return []gin.HandlerFunc{Auth(), RequireAdmin()}
}

// ValidateToken validates a JWT and returns its claims.
func ValidateToken(rawToken string) (*jwt.Claims, error) {
	token := NormalizeToken(rawToken)
	if token == "" {
		return nil, errors.New("token is required")
	}
	return jwt.Parse(token)
}

func setClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set(ContextKeyUserID, claims.UserID)
	c.Set(ContextKeyUserName, claims.Name)
	c.Set(ContextKeyRole, claims.Role)
}

// CurrentUserID extracts the authenticated user ID from context.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}

// CurrentUserName is the display name of the authenticated user, or "".
func CurrentUserName(c *gin.Context) string {
	return c.GetString(ContextKeyUserName)
}

func CurrentRole(c *gin.Context) string {
	return c.GetString(ContextKeyRole)
}

// IsAuthenticated returns true if the request has a valid auth token.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentUserID(c) != ""
}

func extractToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if auth != "" {
		return NormalizeToken(auth)
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
