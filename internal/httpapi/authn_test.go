package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"kimlik.org/internal/authz"
	"kimlik.org/internal/directory"
)

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc", "abc", false},
		{"bearer abc", "abc", false},
		{"Bearer   abc  ", "abc", false},
		{"", "", true},
		{"Basic abc", "", true},
		{"Bearer ", "", true},
	}
	for _, tc := range cases {
		got, err := extractBearerToken(tc.header)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("extractBearerToken(%q): expected error", tc.header)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("extractBearerToken(%q)=%q,%v, want %q", tc.header, got, err, tc.want)
		}
	}
}

func TestRequireScopeAllowsMatchingScope(t *testing.T) {
	handler := RequireScope("account.read")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	principal := authz.NewPrincipal(directory.Person{ID: 1, Username: "alice"}, []directory.Permission{{Scope: "account.read"}})
	req := httptest.NewRequest(http.MethodGet, "/internal", nil)
	req = req.WithContext(authz.ContextWithPrincipal(req.Context(), principal))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRequireScopeRejectsMissingScope(t *testing.T) {
	handler := RequireScope("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	principal := authz.NewPrincipal(directory.Person{ID: 1, Username: "alice"}, []directory.Permission{{Scope: "account.read"}})
	req := httptest.NewRequest(http.MethodGet, "/internal", nil)
	req = req.WithContext(authz.ContextWithPrincipal(req.Context(), principal))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if got := rr.Header().Get("WWW-Authenticate"); got == "" {
		t.Fatalf("expected WWW-Authenticate header set")
	}
}

func TestRequireScopeRejectsMissingPrincipal(t *testing.T) {
	handler := RequireScope("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/internal", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if got := rr.Header().Get("WWW-Authenticate"); got == "" {
		t.Fatalf("expected WWW-Authenticate header set")
	}
}

func TestIsPublicPath(t *testing.T) {
	for _, path := range []string{"/healthz", "/readyz", "/metrics", "/v1/info", "/v1/auth/token", "/"} {
		if !isPublicPath(path) {
			t.Fatalf("expected %s to be public", path)
		}
	}
	for _, path := range []string{"/v1/people", "/v1/groups/10", "/v1/stream"} {
		if isPublicPath(path) {
			t.Fatalf("expected %s to be protected", path)
		}
	}
}
