package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/bookworm-server/internal/apierrors"
	"github.com/dtroode/bookworm-server/internal/metrics"
)

func TestAuth_Register_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantCode string
	}{
		{name: "missing username", email: "a@b.c", password: "secret1", wantCode: apierrors.CodeMissingFields},
		{name: "missing email", username: "alice", password: "secret1", wantCode: apierrors.CodeMissingFields},
		{name: "missing password", username: "alice", email: "a@b.c", wantCode: apierrors.CodeMissingFields},
		{name: "short password", username: "alice", email: "a@b.c", password: "12345", wantCode: apierrors.CodeWeakPassword},
		{name: "short username", username: "al", email: "a@b.c", password: "secret1", wantCode: apierrors.CodeInvalidUsername},
		{name: "password over 72 bytes", username: "alice", email: "a@b.c", password: strings.Repeat("p", 73), wantCode: apierrors.CodeWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			_, err := f.auth.Register(context.Background(), tt.username, tt.email, tt.password)
			require.Error(t, err)
			assert.True(t, apierrors.HasCode(err, tt.wantCode), "got %v", err)

			apiErr, ok := apierrors.As(err)
			require.True(t, ok)
			assert.Equal(t, 400, apiErr.Status)
		})
	}
}

func TestAuth_Register_Alice(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	res, err := f.auth.Register(ctx, "alice", "a@x.io", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.User.ID)
	assert.Equal(t, "alice", res.User.Username)
	assert.Equal(t, "a@x.io", res.User.Email)
	assert.Equal(t, "https://api.dicebear.com/7.x/avataaars/svg?seed=alice", res.User.ProfileImage)

	userID, err := f.jwt.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, userID)

	stored, err := f.credentials.FindByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$2a$"))

	_, err = f.auth.Register(ctx, "alice2", "a@x.io", "secret2")
	require.Error(t, err)
	assert.True(t, apierrors.HasCode(err, apierrors.CodeEmailTaken))
	apiErr, _ := apierrors.As(err)
	assert.Equal(t, "User already exists with this email", apiErr.Message)
	assert.Equal(t, 400, apiErr.Status)
}

func TestAuth_Register_ThenGuardResolvesSameUser(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	res, err := f.auth.Register(ctx, "bob", "bob@x.io", "hunter22")
	require.NoError(t, err)

	userID, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)

	caller, err := f.credentials.FindByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "bob@x.io", caller.Email)
}

func TestAuth_Register_ConcurrentDuplicate(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	const workers = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		taken   int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.auth.Register(ctx, "racer", "race@x.io", "secret1")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case apierrors.HasCode(err, apierrors.CodeEmailTaken):
				taken++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Equal(t, workers-1, taken)
}

func TestAuth_Login(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	reg, err := f.auth.Register(ctx, "alice", "a@x.io", "secret1")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		res, err := f.auth.Login(ctx, "a@x.io", "secret1")
		require.NoError(t, err)
		assert.Equal(t, reg.User, res.User)

		userID, err := f.jwt.Verify(res.Token)
		require.NoError(t, err)
		assert.Equal(t, reg.User.ID, userID)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := f.auth.Login(ctx, "", "secret1")
		assert.True(t, apierrors.HasCode(err, apierrors.CodeMissingFields))
	})

	t.Run("unknown and wrong password look the same", func(t *testing.T) {
		_, wrongErr := f.auth.Login(ctx, "a@x.io", "wrong-password")
		_, unknownErr := f.auth.Login(ctx, "nobody@x.io", "secret1")

		assert.True(t, apierrors.HasCode(wrongErr, apierrors.CodeInvalidCredentials))
		assert.True(t, apierrors.HasCode(unknownErr, apierrors.CodeUserNotFound))

		wrong, _ := apierrors.As(wrongErr)
		unknown, _ := apierrors.As(unknownErr)
		assert.Equal(t, wrong.Status, unknown.Status)
		assert.Equal(t, wrong.Message, unknown.Message)
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AuthAttemptsTotal.WithLabelValues("login", metrics.OutcomeSuccess, "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AuthAttemptsTotal.WithLabelValues("login", metrics.OutcomeFailure, apierrors.CodeInvalidCredentials)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AuthAttemptsTotal.WithLabelValues("login", metrics.OutcomeFailure, apierrors.CodeUserNotFound)))
}

func TestAuth_ChangePassword(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	reg, err := f.auth.Register(ctx, "alice", "a@x.io", "secret1")
	require.NoError(t, err)
	before, err := f.credentials.FindByEmail(ctx, "a@x.io")
	require.NoError(t, err)

	err = f.auth.ChangePassword(ctx, reg.User.ID, "not-it", "secret2")
	assert.True(t, apierrors.HasCode(err, apierrors.CodeInvalidCredentials))

	err = f.auth.ChangePassword(ctx, reg.User.ID, "secret1", "123")
	assert.True(t, apierrors.HasCode(err, apierrors.CodeWeakPassword))

	require.NoError(t, f.auth.ChangePassword(ctx, reg.User.ID, "secret1", "secret2"))

	after, err := f.credentials.FindByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.NotEqual(t, before.PasswordHash, after.PasswordHash)

	_, err = f.auth.Login(ctx, "a@x.io", "secret1")
	assert.True(t, apierrors.HasCode(err, apierrors.CodeInvalidCredentials))
	_, err = f.auth.Login(ctx, "a@x.io", "secret2")
	assert.NoError(t, err)
}
