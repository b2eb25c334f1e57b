package authz

import "errors"

var (
	// ErrInvalidToken indicates the credential failed validation or resolved to nothing.
	ErrInvalidToken = errors.New("authz: invalid token")
	// ErrUnauthorized indicates the caller lacks the required scope.
	ErrUnauthorized = errors.New("authz: unauthorized")
	// ErrBadCredentials indicates a username/password pair that does not verify.
	ErrBadCredentials = errors.New("authz: bad credentials")
)
