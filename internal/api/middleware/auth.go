package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Marga-Ghale/backpackers-backend/internal/logger"
	"github.com/Marga-Ghale/backpackers-backend/internal/models"
)

const userIDKey = "userID"

var log = logger.Component("http")

// TokenAuthenticator turns a bearer token into the caller's raw identifier.
type TokenAuthenticator interface {
	Authenticate(tokenString string) (string, error)
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthenticated", Message: message})
}

// AuthMiddleware validates JWT tokens and sets user context
func AuthMiddleware(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			log.WithField("path", c.Request.URL.Path).Debug("missing authorization header")
			abortUnauthorized(c, "Authorization header required")
			return
		}

		tokenString, ok := bearerToken(c)
		if !ok {
			log.WithField("path", c.Request.URL.Path).Debug("invalid authorization header format")
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		userID, err := auth.Authenticate(tokenString)
		if err != nil {
			log.WithError(err).WithField("path", c.Request.URL.Path).Info("rejected token")
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// OptionalAuthMiddleware sets user context when a valid token is present
// and lets the request through either way.
func OptionalAuthMiddleware(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			if userID, err := auth.Authenticate(tokenString); err == nil {
				c.Set(userIDKey, userID)
			}
		}
		c.Next()
	}
}

// RequestLogger logs all incoming requests with details
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		entry := log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   status,
			"duration": time.Since(start).String(),
			"user":     GetUserID(c),
		})
		for _, e := range c.Errors {
			entry = entry.WithError(e.Err)
		}

		switch {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request")
		}
	}
}

// GetUserID extracts user ID from gin context
func GetUserID(c *gin.Context) string {
	userID, exists := c.Get(userIDKey)
	if !exists {
		return ""
	}
	id, _ := userID.(string)
	return id
}

// RequireUserID writes a 401 when no caller is attached to the request.
func RequireUserID(c *gin.Context) (string, bool) {
	userID := GetUserID(c)
	if userID == "" {
		abortUnauthorized(c, "User not authenticated")
		return "", false
	}
	return userID, true
}
