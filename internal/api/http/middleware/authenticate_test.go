package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	httpcontext "github.com/dtroode/bookworm-server/internal/api/http/context"
	"github.com/dtroode/bookworm-server/internal/metrics"
	"github.com/dtroode/bookworm-server/internal/mocks"
	"github.com/dtroode/bookworm-server/internal/model"
	"github.com/dtroode/bookworm-server/internal/testutil"
	"github.com/dtroode/bookworm-server/internal/token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthenticate_Handle(t *testing.T) {
	t.Parallel()

	alice := model.PublicUser{ID: "8a0b1c2d-0000-4000-8000-000000000001", Username: "alice", Email: "a@x.io"}

	tests := []struct {
		name        string
		header      string
		verifyID    string
		verifyErr   error
		findUser    model.PublicUser
		findErr     error
		wantStatus  int
		wantBody    string
		wantReason  string
		expectFind  bool
		expectCalls bool
	}{
		{
			name:       "missing header",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"msg":"No token found"}`,
			wantReason: ReasonNoToken,
		},
		{
			name:       "wrong scheme",
			header:     "Basic abc",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"msg":"No token found"}`,
			wantReason: ReasonNoToken,
		},
		{
			name:       "empty bearer",
			header:     "Bearer ",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"msg":"No token found"}`,
			wantReason: ReasonNoToken,
		},
		{
			name:        "expired token",
			header:      "Bearer tok",
			verifyErr:   token.ErrTokenExpired,
			wantStatus:  http.StatusUnauthorized,
			wantBody:    `{"msg":"Unauthorized"}`,
			wantReason:  "expired",
			expectCalls: true,
		},
		{
			name:        "bad signature",
			header:      "Bearer tok",
			verifyErr:   token.ErrTokenInvalidSignature,
			wantStatus:  http.StatusUnauthorized,
			wantBody:    `{"msg":"Unauthorized"}`,
			wantReason:  "invalid_signature",
			expectCalls: true,
		},
		{
			name:        "unknown user",
			header:      "Bearer tok",
			verifyID:    alice.ID,
			findErr:     model.ErrNotFound,
			wantStatus:  http.StatusUnauthorized,
			wantBody:    `{"msg":"Unauthorized"}`,
			wantReason:  ReasonUnknownUser,
			expectCalls: true,
			expectFind:  true,
		},
		{
			name:        "store failure",
			header:      "Bearer tok",
			verifyID:    alice.ID,
			findErr:     errors.New("connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantBody:    `{"msg":"Internal server error"}`,
			wantReason:  ReasonStore,
			expectCalls: true,
			expectFind:  true,
		},
		{
			name:        "valid token",
			header:      "Bearer tok",
			verifyID:    alice.ID,
			findUser:    alice,
			wantStatus:  http.StatusOK,
			wantBody:    `{"id":"` + alice.ID + `"}`,
			expectCalls: true,
			expectFind:  true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tokens := &mocks.TokenManager{}
			identities := &mocks.IdentityResolver{}
			m := metrics.New()
			cm := httpcontext.NewManager()

			if tt.expectCalls {
				tokens.On("Verify", "tok").Return(tt.verifyID, tt.verifyErr)
			}
			if tt.expectFind {
				identities.On("FindByID", mock.Anything, tt.verifyID).Return(tt.findUser, tt.findErr)
			}

			downstream := false
			r := gin.New()
			r.GET("/private", NewAuthenticate(tokens, identities, cm, m, testutil.MakeNoopLogger()).Handle(), func(c *gin.Context) {
				downstream = true
				user, _ := cm.GetUserFromContext(c.Request.Context())
				c.JSON(http.StatusOK, gin.H{"id": user.ID})
			})

			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			assert.Equal(t, tt.wantStatus == http.StatusOK, downstream)
			if tt.wantReason != "" {
				assert.Equal(t, 1.0, promtestutil.ToFloat64(m.GuardRejectionTotal.WithLabelValues(tt.wantReason)))
			}
			tokens.AssertExpectations(t)
			identities.AssertExpectations(t)
		})
	}
}

func TestBearerToken(t *testing.T) {
	tok, ok := bearerToken("Bearer abc.def.ghi")
	assert.True(t, ok)
	assert.Equal(t, "abc.def.ghi", tok)

	_, ok = bearerToken("bearer abc")
	assert.False(t, ok)
	_, ok = bearerToken("abc")
	assert.False(t, ok)
}
