package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/bookworm-server/internal/model"
)

// TTL is the fixed lifetime of issued tokens. Claims carry whole seconds, so
// exp is truncated and a token can expire up to one second before issue time
// plus TTL.
const TTL = 24 * time.Hour

const userIDClaim = "userId"

var (
	// ErrEmptySecret is returned when the signing secret is not configured.
	ErrEmptySecret = errors.New("jwt signing secret is empty")
	// ErrTokenExpired is returned for tokens past their expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalidSignature is returned for tokens whose signature does not
	// verify, that use another algorithm, or that are not structurally JWTs.
	ErrTokenInvalidSignature = errors.New("token signature invalid")
	// ErrTokenMalformed is returned when the claims do not carry a valid user id.
	ErrTokenMalformed = errors.New("token claims malformed")
)

// Claims represents JWT claims issued by the service.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// Option configures a JWT manager.
type Option func(*JWT)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(j *JWT) {
		j.now = now
	}
}

var _ model.TokenManager = (*JWT)(nil)

// JWT implements TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey []byte
	now       func() time.Time
}

// NewJWT creates a new JWT token manager with the provided secret key.
func NewJWT(secretKey string, opts ...Option) (*JWT, error) {
	if secretKey == "" {
		return nil, ErrEmptySecret
	}
	j := &JWT{secretKey: []byte(secretKey), now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Issue creates a token for userID that expires after TTL.
func (j *JWT) Issue(userID string) (string, error) {
	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Verify validates tokenString and returns the embedded user id.
func (j *JWT) Verify(tokenString string) (string, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return "", classify(err)
	}

	raw, ok := claims[userIDClaim]
	if !ok {
		return "", fmt.Errorf("%w: missing %s", ErrTokenMalformed, userIDClaim)
	}
	userID, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T", ErrTokenMalformed, userIDClaim, raw)
	}
	if _, err := uuid.Parse(userID); err != nil {
		return "", fmt.Errorf("%w: %s is not a uuid", ErrTokenMalformed, userIDClaim)
	}

	return userID, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenInvalidClaims):
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenInvalidSignature, err)
	}
}
