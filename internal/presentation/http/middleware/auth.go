package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/posprint/internal/presentation/http/dto/response"
	"github.com/sangkips/posprint/pkg/utils"
)

// AuthMiddleware creates a JWT authentication middleware
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("client_id", claims.ClientID)
		c.Set("client_scopes", claims.Scopes)

		c.Next()
	}
}

// RequireScope creates a middleware that requires a token scope
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		scopes, exists := c.Get("client_scopes")
		if !exists {
			response.Forbidden(c, "Access denied")
			c.Abort()
			return
		}

		granted, ok := scopes.([]string)
		if !ok {
			response.Forbidden(c, "Access denied")
			c.Abort()
			return
		}

		claims := utils.JWTClaims{Scopes: granted}
		if !claims.HasScope(scope) {
			response.Forbidden(c, "Token does not grant the "+scope+" scope")
			c.Abort()
			return
		}

		c.Next()
	}
}
