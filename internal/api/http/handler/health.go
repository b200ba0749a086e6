package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/bookworm-server/internal/logger"
)

const pingTimeout = 2 * time.Second

// Pinger checks that a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health serves the root route.
type Health struct {
	store  Pinger
	logger *logger.Logger
}

func NewHealth(store Pinger, logger *logger.Logger) *Health {
	return &Health{store: store, logger: logger}
}

// Root reports that the API is up and its store answers.
func (h *Health) Root(c *gin.Context) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()

		if err := h.store.Ping(ctx); err != nil {
			h.logger.Error("HTTP handler: store ping failed", "error", err.Error())
			c.JSON(http.StatusServiceUnavailable, gin.H{"msg": "Bookworm Api is unavailable"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Bookworm Api is running"})
}
