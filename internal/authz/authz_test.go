package authz

import (
	"context"
	"errors"
	"testing"
	"time"

	"kimlik.org/internal/directory"
)

func newAuthzService(t *testing.T) (*Service, *directory.InMemory) {
	t.Helper()
	t.Setenv("KIMLIK_AUTH_SECRET", "test-secret")
	ResetSecretForTests()
	t.Cleanup(ResetSecretForTests)

	store := directory.NewInMemory()
	dir, err := directory.NewService(store)
	if err != nil {
		t.Fatalf("directory.NewService: %v", err)
	}
	svc, err := NewService(dir)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store
}

func TestIdentityTokenRoundTrip(t *testing.T) {
	t.Setenv("KIMLIK_AUTH_SECRET", "test-secret")
	ResetSecretForTests()
	t.Cleanup(ResetSecretForTests)

	token, err := GenerateIdentityToken("alice", 30*time.Minute)
	if err != nil {
		t.Fatalf("GenerateIdentityToken: %v", err)
	}
	identity, err := ParseIdentity(token)
	if err != nil {
		t.Fatalf("ParseIdentity: %v", err)
	}
	if identity != "alice" {
		t.Fatalf("unexpected identity: %s", identity)
	}

	if _, err := ParseIdentity("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthenticateIdentityToken(t *testing.T) {
	svc, store := newAuthzService(t)
	ctx := context.Background()

	store.AddPerson(directory.Person{ID: 1, Username: "alice", StatusID: 1})
	store.AddPermission(directory.Permission{ID: 1, PersonID: 1, Scope: "account.read", Token: "opaque-1"})
	store.AddPermission(directory.Permission{ID: 2, PersonID: 1, Scope: "group.read", Token: "opaque-2"})

	token, err := GenerateIdentityToken("alice", time.Hour)
	if err != nil {
		t.Fatalf("GenerateIdentityToken: %v", err)
	}
	principal, err := svc.AuthenticateToken(ctx, token)
	if err != nil {
		t.Fatalf("AuthenticateToken: %v", err)
	}
	if principal.Person.Username != "alice" {
		t.Fatalf("unexpected person: %+v", principal.Person)
	}
	if !principal.HasScope("account.read") || !principal.HasScope("group.read") {
		t.Fatalf("identity principal must carry all grants: %+v", principal.Scopes)
	}
	if principal.HasScope("admin") {
		t.Fatal("unexpected scope")
	}
}

func TestAuthenticateOpaqueToken(t *testing.T) {
	svc, store := newAuthzService(t)
	ctx := context.Background()

	store.AddPerson(directory.Person{ID: 1, Username: "alice", StatusID: 1})
	store.AddPermission(directory.Permission{ID: 1, PersonID: 1, Scope: "account.read", Token: "opaque-1"})
	store.AddPermission(directory.Permission{ID: 2, PersonID: 1, Scope: "group.read", Token: "opaque-2"})

	principal, err := svc.AuthenticateToken(ctx, "opaque-1")
	if err != nil {
		t.Fatalf("AuthenticateToken: %v", err)
	}
	if principal.Person.ID != 1 {
		t.Fatalf("unexpected person: %+v", principal.Person)
	}
	// An opaque token grants exactly its own scope.
	if !principal.HasScope("account.read") {
		t.Fatal("expected scope of the presented grant")
	}
	if principal.HasScope("group.read") {
		t.Fatal("opaque token must not inherit sibling grants")
	}

	if _, err := svc.AuthenticateToken(ctx, "OPAQUE-1"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token match must be exact, got %v", err)
	}
	if _, err := svc.AuthenticateToken(ctx, "unknown"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, store := newAuthzService(t)
	ctx := context.Background()

	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	store.AddPerson(directory.Person{ID: 1, Username: "alice", StatusID: 1, PasswordHash: hash})

	person, err := svc.Login(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if person.ID != 1 {
		t.Fatalf("unexpected person: %+v", person)
	}

	if _, err := svc.Login(ctx, "alice", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "s3cret"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials for unknown user, got %v", err)
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	principal := NewPrincipal(directory.Person{ID: 7, Username: "mizmo"}, []directory.Permission{{Scope: "account.read"}})

	ctx = ContextWithPrincipal(ctx, principal)
	got, ok := PrincipalFromContext(ctx)
	if !ok || got.Person.ID != 7 {
		t.Fatalf("unexpected principal: %+v ok=%v", got, ok)
	}

	ctx = ContextWithToken(ctx, "tok")
	tok, ok := TokenFromContext(ctx)
	if !ok || tok != "tok" {
		t.Fatalf("unexpected token: %s ok=%v", tok, ok)
	}

	if _, ok := PrincipalFromContext(context.Background()); ok {
		t.Fatal("empty context must not contain a principal")
	}
}
