// Package middleware provides gin middleware for authentication, rate
// limiting and request logging.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sebasr/device-timeseries/internal/auth"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ClaimsKey is the context key for the authenticated client's token claims
	ClaimsKey ContextKey = "claims"

	// SubjectKey is the context key for the authenticated client's subject
	SubjectKey ContextKey = "subject"
)

// AuthMiddleware provides authentication middleware
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

// Required returns a middleware that requires a valid JWT token
// Returns 401 Unauthorized if the token is missing or invalid
func (m *AuthMiddleware) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := m.extractAndValidateToken(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": err.Error(),
			})
			c.Abort()
			return
		}

		c.Set(string(ClaimsKey), claims)
		c.Set(string(SubjectKey), claims.Subject)

		c.Next()
	}
}

// RequireScope returns a middleware that requires a valid JWT token
// carrying scope (or the admin scope).
// Returns 401 for a missing or invalid token and 403 for a missing scope.
func (m *AuthMiddleware) RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := m.extractAndValidateToken(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": err.Error(),
			})
			c.Abort()
			return
		}

		if !claims.HasScope(scope) {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "token lacks the " + scope + " scope",
			})
			c.Abort()
			return
		}

		c.Set(string(ClaimsKey), claims)
		c.Set(string(SubjectKey), claims.Subject)

		c.Next()
	}
}

// extractAndValidateToken extracts the JWT token from the request and validates it
func (m *AuthMiddleware) extractAndValidateToken(c *gin.Context) (*auth.Claims, error) {
	// Extract token from Authorization header
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, errors.New("missing authorization header")
	}

	// Check for Bearer token format
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errors.New("invalid authorization header format")
	}

	tokenString := parts[1]
	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	// Validate token
	claims, err := m.jwtService.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	return claims, nil
}

// GetSubject retrieves the authenticated client's subject from the context
func GetSubject(c *gin.Context) (string, error) {
	subject, exists := c.Get(string(SubjectKey))
	if !exists {
		return "", errors.New("client not authenticated")
	}

	s, ok := subject.(string)
	if !ok {
		return "", errors.New("invalid subject format")
	}

	return s, nil
}

// GetClaims retrieves the authenticated client's claims from the context
func GetClaims(c *gin.Context) (*auth.Claims, error) {
	claims, exists := c.Get(string(ClaimsKey))
	if !exists {
		return nil, errors.New("client not authenticated")
	}

	cl, ok := claims.(*auth.Claims)
	if !ok {
		return nil, errors.New("invalid claims format")
	}

	return cl, nil
}
