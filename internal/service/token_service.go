package service

import (
	"errors"
	"fmt"

	"github.com/dtroode/bookworm-server/internal/logger"
	"github.com/dtroode/bookworm-server/internal/model"
	"github.com/dtroode/bookworm-server/internal/token"
)

// Reasons a bearer token is rejected. Used as log attributes and metric labels.
const (
	ReasonExpired          = "expired"
	ReasonInvalidSignature = "invalid_signature"
	ReasonMalformed        = "malformed"
)

// TokenService issues tokens for authenticated users and resolves presented
// tokens back to user ids.
type TokenService struct {
	manager model.TokenManager
	logger  *logger.Logger
}

func NewTokenService(manager model.TokenManager, logger *logger.Logger) *TokenService {
	return &TokenService{manager: manager, logger: logger}
}

func (s *TokenService) Issue(userID string) (string, error) {
	t, err := s.manager.Issue(userID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return t, nil
}

// Verify returns the user id carried by a valid token. Errors are the token
// package sentinels.
func (s *TokenService) Verify(presented string) (string, error) {
	userID, err := s.manager.Verify(presented)
	if err != nil {
		s.logger.Debug("Token service: token rejected",
			"reason", RejectionReason(err))
		return "", err
	}
	return userID, nil
}

// RejectionReason classifies a verification error.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, token.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, token.ErrTokenMalformed):
		return ReasonMalformed
	default:
		return ReasonInvalidSignature
	}
}
