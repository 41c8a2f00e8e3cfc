// Package middleware holds the gin middleware shared by every route: request
// logging and the session gate.
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"chitfund-service/internal/core/auth"
)

const (
	// SessionCookie carries the session token.
	SessionCookie = "session"
	// RequestIDHeader echoes the request id to the client.
	RequestIDHeader = "X-Request-ID"

	userKey = "user"
)

// RequestLogger tags each request with an id and logs it once finished.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Header(RequestIDHeader, id)
		c.Next()

		logger.Info("request",
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// Session validates the session cookie and stores the claims for later handlers.
// Requests without a valid session pass through anonymous.
func Session(svc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
			if claims, err := svc.Validate(token); err == nil {
				c.Set(userKey, claims)
			}
		}
		c.Next()
	}
}

// User returns the signed-in user, if any.
func User(c *gin.Context) (auth.Claims, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return auth.Claims{}, false
	}
	claims, ok := v.(auth.Claims)
	return claims, ok
}

// RequirePage sends anonymous visitors to the login page.
func RequirePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := User(c); !ok {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAPI rejects anonymous API calls with 401.
func RequireAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := User(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
