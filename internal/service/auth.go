package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/dtroode/bookworm-server/internal/apierrors"
	"github.com/dtroode/bookworm-server/internal/logger"
	"github.com/dtroode/bookworm-server/internal/metrics"
	"github.com/dtroode/bookworm-server/internal/model"
	"github.com/dtroode/bookworm-server/internal/password"
)

const (
	minPasswordLength = 6
	minUsernameLength = 3

	// dummyPassword is hashed once and compared against when a login email is
	// unknown, so both failure paths spend a bcrypt comparison.
	dummyPassword = "bookworm-dummy-password"
)

type Auth struct {
	credentials   *CredentialStore
	hasher        model.PasswordHasher
	tokens        *TokenService
	avatarBaseURL string
	metrics       *metrics.Metrics
	logger        *logger.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuth(
	credentials *CredentialStore,
	hasher model.PasswordHasher,
	tokens *TokenService,
	avatarBaseURL string,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		credentials:   credentials,
		hasher:        hasher,
		tokens:        tokens,
		avatarBaseURL: avatarBaseURL,
		metrics:       metrics,
		logger:        logger,
	}
}

func (a *Auth) Register(ctx context.Context, username, email, plaintext string) (model.AuthResult, error) {
	result, err := a.register(ctx, username, email, plaintext)
	a.record("register", err)
	return result, err
}

func (a *Auth) register(ctx context.Context, username, email, plaintext string) (model.AuthResult, error) {
	a.logger.Debug("Auth service: registering user",
		"email", email)

	if username == "" || email == "" || plaintext == "" {
		return model.AuthResult{}, apierrors.NewErrMissingFields()
	}
	if utf8.RuneCountInString(plaintext) < minPasswordLength {
		return model.AuthResult{}, apierrors.NewErrWeakPassword()
	}
	if utf8.RuneCountInString(username) < minUsernameLength {
		return model.AuthResult{}, apierrors.NewErrInvalidUsername()
	}

	_, err := a.credentials.FindByEmail(ctx, email)
	switch {
	case err == nil:
		a.logger.Info("Auth service: email already registered",
			"email", email)
		return model.AuthResult{}, apierrors.NewErrEmailIsTaken(email)
	case !errors.Is(err, model.ErrNotFound):
		a.logger.Error("Auth service: failed to check existing user",
			"email", email,
			"error", err.Error())
		return model.AuthResult{}, err
	}

	user, err := a.credentials.CreateUser(ctx, model.NewUser{
		Username:     username,
		Email:        email,
		Password:     plaintext,
		ProfileImage: AvatarURL(a.avatarBaseURL, username),
	})
	if err != nil {
		switch {
		case errors.Is(err, model.ErrDuplicate):
			a.logger.Info("Auth service: email registered concurrently",
				"email", email)
			return model.AuthResult{}, apierrors.NewErrEmailIsTaken(email)
		case errors.Is(err, password.ErrPasswordTooLong):
			return model.AuthResult{}, apierrors.NewErrPasswordTooLong()
		}
		a.logger.Error("Auth service: failed to create user",
			"email", email,
			"error", err.Error())
		return model.AuthResult{}, err
	}

	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		a.logger.Error("Auth service: failed to issue token",
			"user_id", user.ID,
			"error", err.Error())
		return model.AuthResult{}, err
	}

	a.logger.Info("Auth service: user registered",
		"user_id", user.ID)

	return model.AuthResult{User: user, Token: token}, nil
}

func (a *Auth) Login(ctx context.Context, email, plaintext string) (model.AuthResult, error) {
	result, err := a.login(ctx, email, plaintext)
	a.record("login", err)
	return result, err
}

func (a *Auth) login(ctx context.Context, email, plaintext string) (model.AuthResult, error) {
	if email == "" || plaintext == "" {
		return model.AuthResult{}, apierrors.NewErrMissingFields()
	}

	user, err := a.credentials.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			a.compareDummy(plaintext)
			a.logger.Info("Auth service: login for unknown email",
				"email", email)
			return model.AuthResult{}, apierrors.NewErrUserNotFound()
		}
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return model.AuthResult{}, err
	}

	ok, err := a.hasher.Verify(plaintext, user.PasswordHash)
	if err != nil {
		a.logger.Error("Auth service: stored hash unusable",
			"user_id", user.ID,
			"error", err.Error())
		return model.AuthResult{}, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		a.logger.Info("Auth service: wrong password",
			"user_id", user.ID)
		return model.AuthResult{}, apierrors.NewErrInvalidCredentials()
	}

	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		a.logger.Error("Auth service: failed to issue token",
			"user_id", user.ID,
			"error", err.Error())
		return model.AuthResult{}, err
	}

	return model.AuthResult{User: user.Public(), Token: token}, nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (a *Auth) ChangePassword(ctx context.Context, callerID, current, next string) error {
	err := a.changePassword(ctx, callerID, current, next)
	a.record("change_password", err)
	return err
}

func (a *Auth) changePassword(ctx context.Context, callerID, current, next string) error {
	if current == "" || next == "" {
		return apierrors.NewErrMissingFields()
	}
	if utf8.RuneCountInString(next) < minPasswordLength {
		return apierrors.NewErrWeakPassword()
	}

	user, err := a.credentials.findUser(ctx, callerID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apierrors.NewErrUnauthorized(err)
		}
		return err
	}

	ok, err := a.hasher.Verify(current, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return apierrors.NewErrInvalidCredentials()
	}

	if err := a.credentials.ChangePassword(ctx, callerID, next); err != nil {
		if errors.Is(err, password.ErrPasswordTooLong) {
			return apierrors.NewErrPasswordTooLong()
		}
		a.logger.Error("Auth service: failed to change password",
			"user_id", callerID,
			"error", err.Error())
		return err
	}

	a.logger.Info("Auth service: password changed",
		"user_id", callerID)
	return nil
}

func (a *Auth) compareDummy(plaintext string) {
	a.dummyOnce.Do(func() {
		hash, err := a.hasher.Hash(dummyPassword)
		if err != nil {
			a.logger.Warn("Auth service: failed to prepare dummy hash",
				"error", err.Error())
			return
		}
		a.dummyHash = hash
	})
	if a.dummyHash != "" {
		_, _ = a.hasher.Verify(plaintext, a.dummyHash)
	}
}

func (a *Auth) record(operation string, err error) {
	if err == nil {
		a.metrics.AuthAttempt(operation, metrics.OutcomeSuccess, "")
		return
	}
	if apiErr, ok := apierrors.As(err); ok {
		a.metrics.AuthAttempt(operation, metrics.OutcomeFailure, apiErr.Code)
		return
	}
	a.metrics.AuthAttempt(operation, metrics.OutcomeError, apierrors.CodeInternal)
}
