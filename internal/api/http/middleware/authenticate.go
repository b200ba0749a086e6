// Package middleware contains the gin middleware chain.
package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/bookworm-server/internal/apierrors"
	"github.com/dtroode/bookworm-server/internal/logger"
	"github.com/dtroode/bookworm-server/internal/metrics"
	"github.com/dtroode/bookworm-server/internal/model"
	"github.com/dtroode/bookworm-server/internal/service"
)

// Guard rejection reasons beyond the token verification ones.
const (
	ReasonNoToken     = "no_token"
	ReasonUnknownUser = "unknown_user"
	ReasonStore       = "store_error"
)

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// IdentityResolver loads the public projection of a user.
type IdentityResolver interface {
	FindByID(ctx context.Context, id string) (model.PublicUser, error)
}

// Authenticate validates bearer tokens and attaches the caller to the request.
type Authenticate struct {
	tokens         TokenVerifier
	identities     IdentityResolver
	contextManager model.ContextManager
	metrics        *metrics.Metrics
	logger         *logger.Logger
}

func NewAuthenticate(
	tokens TokenVerifier,
	identities IdentityResolver,
	contextManager model.ContextManager,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Authenticate {
	return &Authenticate{
		tokens:         tokens,
		identities:     identities,
		contextManager: contextManager,
		metrics:        metrics,
		logger:         logger,
	}
}

// Handle aborts the chain unless the request carries a valid token for an
// existing user.
func (m *Authenticate) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			m.reject(c, ReasonNoToken, apierrors.NewErrMissingAuthorizationToken())
			return
		}

		userID, err := m.tokens.Verify(tokenString)
		if err != nil {
			m.reject(c, service.RejectionReason(err), apierrors.NewErrUnauthorized(err))
			return
		}

		user, err := m.identities.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				m.reject(c, ReasonUnknownUser, apierrors.NewErrUnauthorized(err))
				return
			}
			m.logger.Error("Authenticate middleware: failed to resolve user",
				"user_id", userID,
				"error", err.Error())
			m.reject(c, ReasonStore, apierrors.NewErrInternalServerError(err))
			return
		}

		c.Request = c.Request.WithContext(m.contextManager.SetUserToContext(c.Request.Context(), user))
		c.Next()
	}
}

func (m *Authenticate) reject(c *gin.Context, reason string, apiErr *apierrors.APIError) {
	m.metrics.GuardRejection(reason)
	m.logger.Debug("Authenticate middleware: request rejected",
		"path", c.Request.URL.Path,
		"reason", reason)
	c.AbortWithStatusJSON(apiErr.Status, gin.H{"msg": apiErr.Message})
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
