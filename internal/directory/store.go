package directory

import "context"

// Store describes the relational queries the directory is built on. All
// methods are single round-trip reads except SignLicense and RecordActivity,
// which are idempotent writes guarded by the store's uniqueness constraints.
//
// Zero-row single lookups return ErrNotFound; list lookups return an empty
// slice. Anything else is a store failure and surfaces unchanged.
type Store interface {
	// Directory queries.
	CountPeople(ctx context.Context) (int, error)
	CountGroups(ctx context.Context) (int, error)
	ListPeople(ctx context.Context, page ListPage) ([]Person, error)
	ListGroups(ctx context.Context, page ListPage) ([]Group, error)
	PeopleUsernames(ctx context.Context) ([]UsernameEntry, error)
	PersonByID(ctx context.Context, id int64) (Person, error)
	PersonByUsername(ctx context.Context, username string) (Person, error)
	PersonByEmail(ctx context.Context, email string) (Person, error)
	PersonByIRCNick(ctx context.Context, nick string) (Person, error)
	GroupByID(ctx context.Context, id int64) (Group, error)
	GroupByName(ctx context.Context, name string) (Group, error)
	CandidateParentGroups(ctx context.Context) ([]Group, error)
	ChildGroups(ctx context.Context, parentID int64) ([]Group, error)

	// Reference data.
	AccountStatuses(ctx context.Context) ([]AccountStatus, error)
	AccountStatusByName(ctx context.Context, name string) (AccountStatus, error)
	RoleLevels(ctx context.Context) ([]RoleLevel, error)
	GroupTypes(ctx context.Context) ([]GroupType, error)
	GroupTypeByID(ctx context.Context, id int64) (GroupType, error)

	// Membership.
	GroupMembers(ctx context.Context, groupID int64) ([]MemberRow, error)
	GroupsForPerson(ctx context.Context, username string) ([]Group, error)
	Membership(ctx context.Context, username, groupName string) (Membership, error)

	// Licenses.
	Licenses(ctx context.Context) ([]License, error)
	LicenseByID(ctx context.Context, id int64) (License, error)
	IsLicenseSigned(ctx context.Context, licenseID, personID int64) (bool, error)
	SignLicense(ctx context.Context, licenseID, personID int64) error

	// Permissions.
	PermissionsForPerson(ctx context.Context, personID int64) ([]Permission, error)
	PermissionByToken(ctx context.Context, token string) (Permission, error)

	// Activity log.
	AccountActivities(ctx context.Context, personID int64) ([]Activity, error)
	RecordActivity(ctx context.Context, entry Activity) error
}
