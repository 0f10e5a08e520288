package shared

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// PrincipalKind distinguishes the two credential stores a token can originate from.
type PrincipalKind string

const (
	// KindUser marks tokens issued to end-user accounts.
	KindUser PrincipalKind = "user"
	// KindAdmin marks tokens issued to admin accounts.
	KindAdmin PrincipalKind = "admin"
)

// Principal describes the authenticated actor resolved from a verified token.
type Principal struct {
	ID    int64
	Kind  PrincipalKind
	Roles []string
}

type tokenClaims struct {
	Kind  string   `json:"kind"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies signed session tokens. Verification is a
// pure function of the secret and the token, so any process holding the same
// secret can validate tokens issued elsewhere.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager constructs a TokenManager. The secret is injected once at
// construction and an empty secret is rejected so the process fails at startup
// rather than on the first login.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}, nil
}

// TTL exposes the configured token lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Issue signs a token carrying the principal identity and role set.
func (tm *TokenManager) Issue(p Principal) (string, error) {
	now := time.Now().UTC()
	claims := tokenClaims{
		Kind:  string(p.Kind),
		Roles: p.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(p.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("shared: sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the encoded principal.
// The credential store is not consulted, so role or status changes after
// issuance are not reflected until the token expires.
func (tm *TokenManager) Verify(raw string) (Principal, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return tm.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Principal{}, ErrTokenInvalid
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return Principal{}, ErrTokenInvalid
	}
	return Principal{
		ID:    id,
		Kind:  PrincipalKind(claims.Kind),
		Roles: claims.Roles,
	}, nil
}
