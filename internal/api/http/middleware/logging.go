package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/bookworm-server/internal/logger"
)

// Logging logs every request with its status and duration.
type Logging struct {
	logger *logger.Logger
}

func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

func (l *Logging) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}

		switch {
		case status >= 500:
			if len(c.Errors) > 0 {
				attrs = append(attrs, "error", c.Errors.String())
			}
			l.logger.Error("HTTP request failed", attrs...)
		default:
			l.logger.Info("HTTP request completed", attrs...)
		}
	}
}
