// Package handler implements the JSON endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/bookworm-server/internal/apierrors"
	"github.com/dtroode/bookworm-server/internal/logger"
	"github.com/dtroode/bookworm-server/internal/model"
)

const internalErrorMessage = "Internal server error"

// handleError renders client-visible errors with their status. Dependency
// failures and errors of any other type are hidden behind a generic 500.
func handleError(c *gin.Context, logger *logger.Logger, err error) {
	if apiErr, ok := apierrors.As(err); ok && apiErr.Kind != apierrors.KindDependency {
		c.JSON(apiErr.Status, gin.H{"msg": apiErr.Message})
		return
	}

	_ = c.Error(err)
	logger.Error("HTTP handler: request failed",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"error", err.Error())
	c.JSON(http.StatusInternalServerError, gin.H{"msg": internalErrorMessage})
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid request body"})
}

// caller returns the user attached by the access guard.
func caller(c *gin.Context, contextManager model.ContextManager) (model.PublicUser, bool) {
	user, ok := contextManager.GetUserFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Unauthorized"})
	}
	return user, ok
}
