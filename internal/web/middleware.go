package web

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// requireAuth checks the bearer token. Browsers cannot set headers on a
// WebSocket handshake, so a "token" query parameter is accepted too.
func (s *Server) requireAuth() gin.HandlerFunc {
	want := []byte(s.opts.Config.AuthToken)
	return func(c *gin.Context) {
		if len(want) == 0 {
			c.Next()
			return
		}

		token := c.Query("token")
		if auth := c.GetHeader("Authorization"); auth != "" {
			var ok bool
			token, ok = strings.CutPrefix(auth, "Bearer ")
			if !ok {
				token = ""
			}
		}
		if subtle.ConstantTimeCompare([]byte(token), want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
