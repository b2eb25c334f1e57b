package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Service fronts a Store with input validation. It holds no state of its
// own, so a single instance is safe for arbitrarily many concurrent callers.
type Service struct {
	store Store
}

func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("directory store is required")
	}
	return &Service{store: store}, nil
}

// Directory queries ---------------------------------------------------------

func (s *Service) CountPeople(ctx context.Context) (int, error) {
	return s.store.CountPeople(ctx)
}

func (s *Service) CountGroups(ctx context.Context) (int, error) {
	return s.store.CountGroups(ctx)
}

// ListPeople returns people ordered by username ascending, optionally
// constrained to one page.
func (s *Service) ListPeople(ctx context.Context, page ListPage) ([]Person, error) {
	return s.store.ListPeople(ctx, page)
}

// ListGroups returns groups; when a page is supplied the listing is ordered
// by id ascending so pagination stays stable.
func (s *Service) ListGroups(ctx context.Context, page ListPage) ([]Group, error) {
	return s.store.ListGroups(ctx, page)
}

func (s *Service) PeopleUsernames(ctx context.Context) ([]UsernameEntry, error) {
	return s.store.PeopleUsernames(ctx)
}

func (s *Service) PersonByID(ctx context.Context, id int64) (Person, error) {
	if id <= 0 {
		return Person{}, fmt.Errorf("%w: person id must be positive", ErrInvalidInput)
	}
	return s.store.PersonByID(ctx, id)
}

func (s *Service) PersonByUsername(ctx context.Context, username string) (Person, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Person{}, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	return s.store.PersonByUsername(ctx, username)
}

func (s *Service) PersonByEmail(ctx context.Context, email string) (Person, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return Person{}, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	return s.store.PersonByEmail(ctx, email)
}

func (s *Service) PersonByIRCNick(ctx context.Context, nick string) (Person, error) {
	nick = strings.TrimSpace(nick)
	if nick == "" {
		return Person{}, fmt.Errorf("%w: ircnick is required", ErrInvalidInput)
	}
	return s.store.PersonByIRCNick(ctx, nick)
}

func (s *Service) GroupByID(ctx context.Context, id int64) (Group, error) {
	if id <= 0 {
		return Group{}, fmt.Errorf("%w: group id must be positive", ErrInvalidInput)
	}
	return s.store.GroupByID(ctx, id)
}

func (s *Service) GroupByName(ctx context.Context, name string) (Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Group{}, fmt.Errorf("%w: group name is required", ErrInvalidInput)
	}
	return s.store.GroupByName(ctx, name)
}

// CandidateParentGroups lists top-level groups, the only ones eligible to
// become a parent when a group is created.
func (s *Service) CandidateParentGroups(ctx context.Context) ([]Group, error) {
	return s.store.CandidateParentGroups(ctx)
}

func (s *Service) ChildGroups(ctx context.Context, parentID int64) ([]Group, error) {
	if parentID <= 0 {
		return nil, fmt.Errorf("%w: parent group id must be positive", ErrInvalidInput)
	}
	return s.store.ChildGroups(ctx, parentID)
}

// Reference data -------------------------------------------------------------

func (s *Service) AccountStatuses(ctx context.Context) ([]AccountStatus, error) {
	return s.store.AccountStatuses(ctx)
}

// AccountStatusByName matches the status name case-insensitively.
func (s *Service) AccountStatusByName(ctx context.Context, name string) (AccountStatus, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return AccountStatus{}, fmt.Errorf("%w: status name is required", ErrInvalidInput)
	}
	return s.store.AccountStatusByName(ctx, name)
}

func (s *Service) RoleLevels(ctx context.Context) ([]RoleLevel, error) {
	return s.store.RoleLevels(ctx)
}

func (s *Service) GroupTypes(ctx context.Context) ([]GroupType, error) {
	return s.store.GroupTypes(ctx)
}

func (s *Service) GroupTypeByID(ctx context.Context, id int64) (GroupType, error) {
	if id <= 0 {
		return GroupType{}, fmt.Errorf("%w: group type id must be positive", ErrInvalidInput)
	}
	return s.store.GroupTypeByID(ctx, id)
}

// Membership -----------------------------------------------------------------

// GroupMembers returns the joined membership rows of a group. An empty slice
// is a valid result for an empty or unknown group id.
func (s *Service) GroupMembers(ctx context.Context, groupID int64) ([]MemberRow, error) {
	if groupID <= 0 {
		return nil, fmt.Errorf("%w: group id must be positive", ErrInvalidInput)
	}
	return s.store.GroupMembers(ctx, groupID)
}

// GroupsForPerson returns every group the named person belongs to. An
// unknown username yields an empty slice, not an error; callers that treat
// absence as fatal should resolve the person first.
func (s *Service) GroupsForPerson(ctx context.Context, username string) ([]Group, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	return s.store.GroupsForPerson(ctx, username)
}

// Membership is the canonical "is X a member of Y" primitive.
func (s *Service) Membership(ctx context.Context, username, groupName string) (Membership, error) {
	username = strings.TrimSpace(username)
	groupName = strings.TrimSpace(groupName)
	if username == "" || groupName == "" {
		return Membership{}, fmt.Errorf("%w: username and group name are required", ErrInvalidInput)
	}
	return s.store.Membership(ctx, username, groupName)
}

// Authorization lookup -------------------------------------------------------

// AuthenticatedPerson resolves an externally-authenticated identity string
// (a username) to a Person. It has no side effects.
func (s *Service) AuthenticatedPerson(ctx context.Context, identity string) (Person, error) {
	return s.PersonByUsername(ctx, identity)
}

func (s *Service) PermissionsForPerson(ctx context.Context, personID int64) ([]Permission, error) {
	if personID <= 0 {
		return nil, fmt.Errorf("%w: person id must be positive", ErrInvalidInput)
	}
	return s.store.PermissionsForPerson(ctx, personID)
}

// PermissionByToken validates a bearer credential. The match is exact: a
// token differing by case or whitespace does not resolve.
func (s *Service) PermissionByToken(ctx context.Context, token string) (Permission, error) {
	if token == "" {
		return Permission{}, fmt.Errorf("%w: token is required", ErrInvalidInput)
	}
	return s.store.PermissionByToken(ctx, token)
}

// Licenses -------------------------------------------------------------------

func (s *Service) Licenses(ctx context.Context) ([]License, error) {
	return s.store.Licenses(ctx)
}

func (s *Service) LicenseByID(ctx context.Context, id int64) (License, error) {
	if id <= 0 {
		return License{}, fmt.Errorf("%w: license id must be positive", ErrInvalidInput)
	}
	return s.store.LicenseByID(ctx, id)
}

// IsLicenseSigned reports whether a signature row exists for the exact
// (person, license) pair. Signing v1 never satisfies a check against v2.
func (s *Service) IsLicenseSigned(ctx context.Context, licenseID, personID int64) (bool, error) {
	if licenseID <= 0 || personID <= 0 {
		return false, fmt.Errorf("%w: license id and person id must be positive", ErrInvalidInput)
	}
	return s.store.IsLicenseSigned(ctx, licenseID, personID)
}

// SignLicense records a signature. Re-signing is a no-op under the
// (person, license) uniqueness invariant.
func (s *Service) SignLicense(ctx context.Context, licenseID, personID int64) error {
	if licenseID <= 0 || personID <= 0 {
		return fmt.Errorf("%w: license id and person id must be positive", ErrInvalidInput)
	}
	return s.store.SignLicense(ctx, licenseID, personID)
}

// Activity log ---------------------------------------------------------------

func (s *Service) AccountActivities(ctx context.Context, personID int64) ([]Activity, error) {
	if personID <= 0 {
		return nil, fmt.Errorf("%w: person id must be positive", ErrInvalidInput)
	}
	return s.store.AccountActivities(ctx, personID)
}

func (s *Service) RecordActivity(ctx context.Context, entry Activity) error {
	if entry.PersonID <= 0 {
		return fmt.Errorf("%w: person id must be positive", ErrInvalidInput)
	}
	if strings.TrimSpace(entry.Event) == "" {
		return fmt.Errorf("%w: event is required", ErrInvalidInput)
	}
	return s.store.RecordActivity(ctx, entry)
}
