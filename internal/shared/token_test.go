package shared

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	if _, err := NewTokenManager("", time.Hour); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
	if _, err := NewTokenManager("   ", time.Hour); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret for blank secret, got %v", err)
	}
}

func TestIssueVerifyRoundtrip(t *testing.T) {
	tm, err := NewTokenManager("sekrit", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := tm.Issue(Principal{ID: 42, Kind: KindAdmin, Roles: []string{"Admin", "Super Admin"}})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	p, err := tm.Verify(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if p.ID != 42 || p.Kind != KindAdmin {
		t.Fatalf("unexpected principal: %+v", p)
	}
	if len(p.Roles) != 2 || p.Roles[0] != "Admin" || p.Roles[1] != "Super Admin" {
		t.Fatalf("unexpected roles: %v", p.Roles)
	}
}

func TestVerifyUserTokenHasNoRoles(t *testing.T) {
	tm, _ := NewTokenManager("sekrit", time.Hour)
	raw, err := tm.Issue(Principal{ID: 7, Kind: KindUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	p, err := tm.Verify(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if len(p.Roles) != 0 {
		t.Fatalf("user token must carry no roles, got %v", p.Roles)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer, _ := NewTokenManager("one", time.Hour)
	verifier, _ := NewTokenManager("two", time.Hour)

	raw, err := issuer.Issue(Principal{ID: 1, Kind: KindUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Verify(raw); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	tm, _ := NewTokenManager("sekrit", time.Hour)

	now := time.Now().UTC()
	claims := tokenClaims{
		Kind: string(KindUser),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(9, 10),
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("sekrit"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := tm.Verify(raw); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyRejectsMalformed(t *testing.T) {
	tm, _ := NewTokenManager("sekrit", time.Hour)
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := tm.Verify(raw); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("expected ErrTokenInvalid for %q, got %v", raw, err)
		}
	}
}

func TestVerifyRejectsUnsignedAlg(t *testing.T) {
	tm, _ := NewTokenManager("sekrit", time.Hour)

	claims := tokenClaims{
		Kind: string(KindAdmin),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := tm.Verify(raw); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for alg=none, got %v", err)
	}
}
