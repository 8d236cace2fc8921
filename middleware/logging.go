package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/navbryce/next-social-be/util"
	"go.uber.org/zap"
)

var sensitiveHeaders = map[string]bool{
	"authorization": true,
	"cookie":        true,
	"set-cookie":    true,
	"x-api-key":     true,
}

func redactHeaderValue(key, value string) string {
	if sensitiveHeaders[strings.ToLower(key)] {
		return "[REDACTED]"
	}
	return value
}

// SafeHeaders renders request headers for logging with credentials redacted.
func SafeHeaders(c *gin.Context) string {
	parts := make([]string, 0, len(c.Request.Header))
	for k, v := range c.Request.Header {
		if len(v) == 0 {
			continue
		}
		parts = append(parts, k+"="+redactHeaderValue(k, v[0]))
	}
	return strings.Join(parts, "; ")
}

// RequestLogger replaces gin.Logger with structured zap output. The access_token
// query parameter is never logged.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		util.Log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("remote", c.ClientIP()),
			zap.String("headers", SafeHeaders(c)),
		)
	}
}
