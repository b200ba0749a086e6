package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/bookworm-server/internal/metrics"
	"github.com/dtroode/bookworm-server/internal/password"
	"github.com/dtroode/bookworm-server/internal/repository/memory"
	"github.com/dtroode/bookworm-server/internal/testutil"
	"github.com/dtroode/bookworm-server/internal/token"
)

const testSecret = "test-secret"

type authFixture struct {
	auth        *Auth
	credentials *CredentialStore
	tokens      *TokenService
	jwt         *token.JWT
	db          *memory.DB
	metrics     *metrics.Metrics
}

func newAuthFixture(t *testing.T, opts ...CredentialOption) authFixture {
	t.Helper()

	log := testutil.MakeNoopLogger()
	db := memory.New()
	hasher := password.NewBcrypt(bcrypt.MinCost)
	m := metrics.New()

	jwt, err := token.NewJWT(testSecret)
	require.NoError(t, err)

	credentials := NewCredentialStore(db.Users(), hasher, log, append([]CredentialOption{WithMetrics(m)}, opts...)...)
	tokens := NewTokenService(jwt, log)

	return authFixture{
		auth:        NewAuth(credentials, hasher, tokens, DefaultAvatarBaseURL, m, log),
		credentials: credentials,
		tokens:      tokens,
		jwt:         jwt,
		db:          db,
		metrics:     m,
	}
}
