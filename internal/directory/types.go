package directory

import (
	"errors"
	"time"
)

// NoParentGroup is the sentinel parent reference marking a top-level group.
// It is distinct from an unset reference: only groups carrying the sentinel
// are eligible to become parents of other groups.
const NoParentGroup int64 = -1

// Person is an account holder identified by a unique username.
type Person struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	IRCNick      string    `json:"ircnick,omitempty"`
	StatusID     int64     `json:"status_id"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AccountStatus is immutable reference data; the name is unique
// case-insensitively (e.g. active, pending, disabled).
type AccountStatus struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// GroupType is an immutable named category of group.
type GroupType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RoleLevel is the privilege tier a person can hold within a group
// (e.g. member, sponsor, administrator).
type RoleLevel struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Group is a named collection of people, optionally nested under a parent.
// ParentID holds NoParentGroup for top-level groups.
type Group struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	TypeID    int64     `json:"type_id"`
	ParentID  int64     `json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Membership links one person to one group with one role level.
// At most one row exists per (person, group) pair.
type Membership struct {
	ID       int64     `json:"id"`
	GroupID  int64     `json:"group_id"`
	PersonID int64     `json:"person_id"`
	RoleID   int64     `json:"role_id"`
	JoinedAt time.Time `json:"joined_at"`
}

// MemberRow is the joined view returned when listing a group's membership.
type MemberRow struct {
	Group      Group      `json:"group"`
	Membership Membership `json:"membership"`
	Person     Person     `json:"person"`
	Role       RoleLevel  `json:"role"`
}

// License is a license agreement people can sign.
type License struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Signature records that a person signed a license. Signing is idempotent:
// at most one row exists per (person, license) pair.
type Signature struct {
	PersonID  int64     `json:"person_id"`
	LicenseID int64     `json:"license_id"`
	SignedAt  time.Time `json:"signed_at"`
}

// Permission grants a person a scoped capability, addressable by an opaque
// bearer token. A person may hold many grants; a token identifies at most one.
type Permission struct {
	ID        int64     `json:"id"`
	PersonID  int64     `json:"person_id"`
	Scope     string    `json:"scope"`
	Token     string    `json:"-"`
	GrantedAt time.Time `json:"granted_at"`
}

// UsernameEntry is the (id, username) projection used by pickers.
type UsernameEntry struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Activity is an append-only account activity record (logins, signatures).
type Activity struct {
	ID         string    `json:"id"`
	PersonID   int64     `json:"person_id"`
	Event      string    `json:"event"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

var (
	// ErrNotFound marks a zero-row lookup; callers decide whether that is fatal.
	ErrNotFound = errors.New("directory: not found")
	// ErrConflict marks a uniqueness constraint violation on a write.
	ErrConflict = errors.New("directory: already exists")
	// ErrInvalidInput marks blank or malformed arguments rejected at the service edge.
	ErrInvalidInput = errors.New("directory: invalid input")
	// ErrHierarchyCycle is returned when a group turns out to be its own ancestor.
	ErrHierarchyCycle = errors.New("directory: group hierarchy cycle")
)
