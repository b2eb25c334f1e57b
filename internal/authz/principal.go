package authz

import "kimlik.org/internal/directory"

// Principal is a resolved caller: the person plus the permission scopes they
// hold at lookup time.
type Principal struct {
	Person directory.Person
	Scopes map[string]struct{}
}

// NewPrincipal builds a principal from permission rows.
func NewPrincipal(person directory.Person, perms []directory.Permission) Principal {
	set := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		set[p.Scope] = struct{}{}
	}
	return Principal{Person: person, Scopes: set}
}

// HasScope reports whether the principal holds the named permission scope.
func (p Principal) HasScope(scope string) bool {
	_, ok := p.Scopes[scope]
	return ok
}
