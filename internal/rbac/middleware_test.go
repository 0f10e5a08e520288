package rbac_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mercato-app/mercato/internal/rbac"
	"github.com/mercato-app/mercato/internal/shared"
	_ "github.com/mercato-app/mercato/testing"
)

func newGuard(t *testing.T) (rbac.Middleware, *shared.TokenManager) {
	t.Helper()
	tokens, err := shared.NewTokenManager("sekrit", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	return rbac.Middleware{Tokens: tokens}, tokens
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func do(t *testing.T, h http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRequireKindMissingHeader(t *testing.T) {
	guard, _ := newGuard(t)
	h := guard.RequireKind(shared.KindUser)(okHandler())

	rr := do(t, h, "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success || body.Message != "Missing or malformed authorization header" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestRequireKindMalformedHeader(t *testing.T) {
	guard, tokens := newGuard(t)
	h := guard.RequireKind(shared.KindUser)(okHandler())

	raw, err := tokens.Issue(shared.Principal{ID: 1, Kind: shared.KindUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", raw) // missing scheme
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestRequireKindBadToken(t *testing.T) {
	guard, _ := newGuard(t)
	h := guard.RequireKind(shared.KindUser)(okHandler())

	rr := do(t, h, "garbage")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestRequireKindMismatch(t *testing.T) {
	guard, tokens := newGuard(t)
	h := guard.RequireKind(shared.KindAdmin)(okHandler())

	raw, err := tokens.Issue(shared.Principal{ID: 1, Kind: shared.KindUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rr := do(t, h, raw)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("user token on admin route: expected 401, got %d", rr.Code)
	}
}

func TestRequireKindAttachesPrincipal(t *testing.T) {
	guard, tokens := newGuard(t)

	var got *shared.Principal
	h := guard.RequireKind(shared.KindUser)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = shared.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	raw, err := tokens.Issue(shared.Principal{ID: 99, Kind: shared.KindUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rr := do(t, h, raw)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got == nil || got.ID != 99 || got.Kind != shared.KindUser {
		t.Fatalf("unexpected principal: %+v", got)
	}
}

func TestRequireRolesForbidsMissingRole(t *testing.T) {
	guard, tokens := newGuard(t)
	h := guard.RequireKind(shared.KindAdmin)(
		guard.RequireRoles(rbac.RoleAdmin)(okHandler()))

	raw, err := tokens.Issue(shared.Principal{ID: 1, Kind: shared.KindAdmin, Roles: []string{rbac.RoleUser}})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rr := do(t, h, raw)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestRequireRolesAllowsIntersection(t *testing.T) {
	guard, tokens := newGuard(t)
	h := guard.RequireKind(shared.KindAdmin)(
		guard.RequireRoles(rbac.RoleAdmin)(okHandler()))

	for _, roles := range [][]string{
		{rbac.RoleAdmin},
		{rbac.RoleAdmin, rbac.RoleSuperAdmin},
		{"admin"}, // case-insensitive match
	} {
		raw, err := tokens.Issue(shared.Principal{ID: 1, Kind: shared.KindAdmin, Roles: roles})
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		rr := do(t, h, raw)
		if rr.Code != http.StatusOK {
			t.Fatalf("roles %v: expected 200, got %d", roles, rr.Code)
		}
	}
}

func TestRequireRolesEmptyPolicyMeansAuthenticated(t *testing.T) {
	guard, tokens := newGuard(t)
	h := guard.RequireKind(shared.KindAdmin)(
		guard.RequireRoles()(okHandler()))

	raw, err := tokens.Issue(shared.Principal{ID: 1, Kind: shared.KindAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rr := do(t, h, raw)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRequireRolesWithoutPrincipal(t *testing.T) {
	guard, _ := newGuard(t)
	h := guard.RequireRoles(rbac.RoleAdmin)(okHandler())

	rr := do(t, h, "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestHasAnyRole(t *testing.T) {
	if !rbac.HasAnyRole([]string{"Super Admin"}, []string{"Super Admin", "Admin"}) {
		t.Fatal("expected intersection to match")
	}
	if rbac.HasAnyRole([]string{"User"}, []string{"Admin"}) {
		t.Fatal("disjoint sets must not match")
	}
	if !rbac.HasAnyRole(nil, nil) {
		t.Fatal("empty required set admits everyone")
	}
}
