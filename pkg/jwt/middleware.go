package jwt

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yourorg/pdf-combine-kit/pkg/logging"
)

const (
	// Context keys for storing JWT claims
	ContextKeyUserID = "user_id"
	ContextKeyScopes = "scopes"
	ContextKeyClaims = "jwt_claims"
)

// JWTMiddleware creates a middleware that validates JWT tokens
func JWTMiddleware(jwtService *JWTService, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Extract token from Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		// Security: Validate header format
		if !strings.HasPrefix(authHeader, "Bearer ") {
			logger.Warn("Invalid authorization header format",
				logging.NewField("header_length", len(authHeader)),
				logging.NewField("ip", c.ClientIP()),
			)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format. Expected: Bearer <token>"})
			c.Abort()
			return
		}

		// Extract token
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		tokenString = strings.TrimSpace(tokenString)

		// Security: Validate token is not empty
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
			c.Abort()
			return
		}

		// Security: Check for potential token manipulation
		if containsMultipleTokens(tokenString) {
			logger.Warn("Multiple tokens detected in request",
				logging.NewField("ip", c.ClientIP()),
				logging.NewField("user_agent", c.GetHeader("User-Agent")),
			)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			c.Abort()
			return
		}

		// Validate token
		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			// Log security events
			logger.Warn("Token validation failed",
				logging.NewField("error", err),
				logging.NewField("ip", c.ClientIP()),
				logging.NewField("path", c.Request.URL.Path),
				logging.NewField("method", c.Request.Method),
			)

			// Return appropriate error based on validation failure
			statusCode := http.StatusUnauthorized
			errorMsg := "Token validation failed"

			switch err {
			case ErrExpiredToken:
				errorMsg = "Token has expired"
			case ErrInvalidToken, ErrInvalidSignature:
				errorMsg = "Invalid token"
			case ErrTokenPoisoned:
				errorMsg = "Token validation failed"
				statusCode = http.StatusForbidden // More severe error
			case ErrTokenTooLarge:
				errorMsg = "Token size exceeds maximum allowed"
				statusCode = http.StatusRequestEntityTooLarge
			}

			c.JSON(statusCode, gin.H{"error": errorMsg})
			c.Abort()
			return
		}

		// Security: Additional validation - check if user_id is present
		if claims.UserID == "" {
			logger.Error("Token missing user_id claim",
				logging.NewField("ip", c.ClientIP()),
				logging.NewField("path", c.Request.URL.Path),
			)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		// Store claims in context for use in handlers
		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyScopes, claims.Scopes)
		c.Set(ContextKeyClaims, claims)

		// Continue to next handler
		c.Next()
	}
}

// RequireScope creates a middleware that checks whether the validated token
// grants the given scope. It must run after JWTMiddleware.
func RequireScope(scope string, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "Scope information not found in token"})
			c.Abort()
			return
		}

		if !claims.HasScope(scope) {
			logger.Warn("Access denied: missing scope",
				logging.NewField("required_scope", scope),
				logging.NewField("token_scopes", claims.Scopes),
				logging.NewField("ip", c.ClientIP()),
				logging.NewField("path", c.Request.URL.Path),
			)
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(ContextKeyUserID)
	if !exists {
		return "", false
	}
	userIDStr, ok := userID.(string)
	return userIDStr, ok
}

// GetScopes extracts token scopes from context
func GetScopes(c *gin.Context) ([]string, bool) {
	scopes, exists := c.Get(ContextKeyScopes)
	if !exists {
		return nil, false
	}
	scopeList, ok := scopes.([]string)
	return scopeList, ok
}

// GetClaims extracts full JWT claims from context
func GetClaims(c *gin.Context) (*Claims, bool) {
	claims, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil, false
	}
	jwtClaims, ok := claims.(*Claims)
	return jwtClaims, ok
}

// containsMultipleTokens checks if the token string contains multiple tokens
// This is a security check to prevent token manipulation attacks
func containsMultipleTokens(tokenString string) bool {
	// Count dots (JWT tokens have exactly 2 dots)
	dotCount := strings.Count(tokenString, ".")
	if dotCount > 2 {
		return true
	}

	// Check for suspicious patterns like multiple base64-like segments
	parts := strings.Split(tokenString, ".")
	if len(parts) > 3 {
		return true
	}

	return false
}
