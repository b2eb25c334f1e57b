package authz

import (
	"context"
	"errors"
	"strings"

	"kimlik.org/internal/directory"
)

// Service resolves bearer credentials to principals using the directory's
// authorization lookup. It is stateless; every call is a read against the
// injected directory service.
type Service struct {
	dir *directory.Service
}

func NewService(dir *directory.Service) (*Service, error) {
	if dir == nil {
		return nil, errors.New("directory service is required")
	}
	return &Service{dir: dir}, nil
}

// AuthenticateToken resolves a bearer credential. Two forms are accepted:
// a signed identity assertion (subject = username) or an opaque
// account-permission token matched byte-for-byte against the store.
func (s *Service) AuthenticateToken(ctx context.Context, token string) (Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Principal{}, ErrInvalidToken
	}

	if identity, err := ParseIdentity(token); err == nil {
		return s.principalForIdentity(ctx, identity)
	}

	perm, err := s.dir.PermissionByToken(ctx, token)
	if errors.Is(err, directory.ErrNotFound) {
		return Principal{}, ErrInvalidToken
	}
	if err != nil {
		return Principal{}, err
	}
	person, err := s.dir.PersonByID(ctx, perm.PersonID)
	if errors.Is(err, directory.ErrNotFound) {
		// A grant pointing at a missing person is as invalid as no grant.
		return Principal{}, ErrInvalidToken
	}
	if err != nil {
		return Principal{}, err
	}
	return NewPrincipal(person, []directory.Permission{perm}), nil
}

func (s *Service) principalForIdentity(ctx context.Context, identity string) (Principal, error) {
	person, err := s.dir.AuthenticatedPerson(ctx, identity)
	if errors.Is(err, directory.ErrNotFound) {
		return Principal{}, ErrInvalidToken
	}
	if err != nil {
		return Principal{}, err
	}
	perms, err := s.dir.PermissionsForPerson(ctx, person.ID)
	if err != nil {
		return Principal{}, err
	}
	return NewPrincipal(person, perms), nil
}

// Login verifies a username/password pair and returns the person. It backs
// the identity token endpoint; the directory core itself performs no
// authentication.
func (s *Service) Login(ctx context.Context, username, password string) (directory.Person, error) {
	person, err := s.dir.PersonByUsername(ctx, username)
	if errors.Is(err, directory.ErrNotFound) {
		return directory.Person{}, ErrBadCredentials
	}
	if err != nil {
		return directory.Person{}, err
	}
	if err := VerifyPassword(person.PasswordHash, password); err != nil {
		return directory.Person{}, ErrBadCredentials
	}
	return person, nil
}
