package apierrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors_StatusAndKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        *APIError
		wantKind   Kind
		wantStatus int
		wantCode   string
	}{
		{"missing fields", NewErrMissingFields(), KindValidation, http.StatusBadRequest, CodeMissingFields},
		{"weak password", NewErrWeakPassword(), KindValidation, http.StatusBadRequest, CodeWeakPassword},
		{"invalid username", NewErrInvalidUsername(), KindValidation, http.StatusBadRequest, CodeInvalidUsername},
		{"email taken", NewErrEmailIsTaken("a@example.com"), KindConflict, http.StatusBadRequest, CodeEmailTaken},
		{"user not found", NewErrUserNotFound(), KindAuthentication, http.StatusBadRequest, CodeUserNotFound},
		{"invalid credentials", NewErrInvalidCredentials(), KindAuthentication, http.StatusBadRequest, CodeInvalidCredentials},
		{"no token", NewErrMissingAuthorizationToken(), KindAuthentication, http.StatusUnauthorized, CodeNoToken},
		{"unauthorized", NewErrUnauthorized(nil), KindAuthentication, http.StatusUnauthorized, CodeUnauthorized},
		{"forbidden", NewErrForbidden(), KindAuthorization, http.StatusForbidden, CodeForbidden},
		{"book not found", NewErrBookNotFound(), KindNotFound, http.StatusNotFound, CodeBookNotFound},
		{"internal", NewErrInternalServerError(errors.New("boom")), KindDependency, http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantKind, tt.err.Kind)
			assert.Equal(t, tt.wantStatus, tt.err.Status)
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestLoginFailures_ShareClientMessage(t *testing.T) {
	assert.Equal(t, NewErrUserNotFound().Message, NewErrInvalidCredentials().Message)
	assert.NotEqual(t, NewErrUserNotFound().Code, NewErrInvalidCredentials().Code)
}

func TestAs_WrappedError(t *testing.T) {
	wrapped := fmt.Errorf("register: %w", NewErrEmailIsTaken("a@example.com"))

	apiErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeEmailTaken, apiErr.Code)
	assert.True(t, HasCode(wrapped, CodeEmailTaken))
	assert.True(t, errors.Is(wrapped, NewErrEmailIsTaken("")))
	assert.False(t, errors.Is(wrapped, NewErrForbidden()))
}

func TestAs_PlainError(t *testing.T) {
	_, ok := As(errors.New("plain"))
	assert.False(t, ok)
	assert.False(t, HasCode(nil, CodeForbidden))
}

func TestUnauthorized_KeepsReasonOutOfMessage(t *testing.T) {
	reason := errors.New("token is expired")
	err := NewErrUnauthorized(reason)

	assert.Equal(t, "Unauthorized", err.Message)
	assert.ErrorIs(t, err, reason)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "conflict", KindConflict.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
