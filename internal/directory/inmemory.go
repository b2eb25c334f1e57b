package directory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"kimlik.org/internal/ids"
)

// InMemory implements Store with in-process concurrency safety. It backs the
// HTTP layer's tests and the dev mode of cmd/api; production deployments use
// the PostgreSQL store.
type InMemory struct {
	mu          sync.RWMutex
	people      map[int64]Person
	groups      map[int64]Group
	groupOrder  []int64
	statuses    []AccountStatus
	roles       []RoleLevel
	types       []GroupType
	memberships []Membership
	licenses    map[int64]License
	signatures  map[[2]int64]Signature // (personID, licenseID)
	permissions []Permission
	activities  []Activity
}

// NewInMemory creates an empty directory.
func NewInMemory() *InMemory {
	return &InMemory{
		people:     make(map[int64]Person),
		groups:     make(map[int64]Group),
		licenses:   make(map[int64]License),
		signatures: make(map[[2]int64]Signature),
	}
}

var _ Store = (*InMemory)(nil)

// Seeding helpers ------------------------------------------------------------

func (s *InMemory) AddPerson(p Person) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.people[p.ID] = p
}

func (s *InMemory) AddGroup(g Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[g.ID]; !ok {
		s.groupOrder = append(s.groupOrder, g.ID)
	}
	s.groups[g.ID] = g
}

func (s *InMemory) AddMembership(m Membership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.memberships {
		if existing.PersonID == m.PersonID && existing.GroupID == m.GroupID {
			return
		}
	}
	s.memberships = append(s.memberships, m)
}

func (s *InMemory) AddLicense(l License) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.licenses[l.ID] = l
}

func (s *InMemory) AddPermission(p Permission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permissions = append(s.permissions, p)
}

func (s *InMemory) SetReferenceData(statuses []AccountStatus, roles []RoleLevel, types []GroupType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append([]AccountStatus(nil), statuses...)
	s.roles = append([]RoleLevel(nil), roles...)
	s.types = append([]GroupType(nil), types...)
}

// Directory queries ----------------------------------------------------------

func (s *InMemory) CountPeople(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.people), nil
}

func (s *InMemory) CountGroups(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.groups), nil
}

func (s *InMemory) ListPeople(ctx context.Context, page ListPage) ([]Person, error) {
	s.mu.RLock()
	people := make([]Person, 0, len(s.people))
	for _, p := range s.people {
		people = append(people, p)
	}
	s.mu.RUnlock()

	sort.Slice(people, func(i, j int) bool { return people[i].Username < people[j].Username })
	return paginate(people, page), nil
}

func (s *InMemory) ListGroups(ctx context.Context, page ListPage) ([]Group, error) {
	s.mu.RLock()
	groups := make([]Group, 0, len(s.groupOrder))
	for _, id := range s.groupOrder {
		groups = append(groups, s.groups[id])
	}
	s.mu.RUnlock()

	if !page.Enabled() {
		return groups, nil
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return paginate(groups, page), nil
}

func (s *InMemory) PeopleUsernames(ctx context.Context) ([]UsernameEntry, error) {
	s.mu.RLock()
	entries := make([]UsernameEntry, 0, len(s.people))
	for _, p := range s.people {
		entries = append(entries, UsernameEntry{ID: p.ID, Username: p.Username})
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].Username < entries[j].Username })
	return entries, nil
}

func (s *InMemory) PersonByID(ctx context.Context, id int64) (Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.people[id]
	if !ok {
		return Person{}, ErrNotFound
	}
	return p, nil
}

func (s *InMemory) PersonByUsername(ctx context.Context, username string) (Person, error) {
	return s.findPerson(func(p Person) bool { return p.Username == username })
}

func (s *InMemory) PersonByEmail(ctx context.Context, email string) (Person, error) {
	return s.findPerson(func(p Person) bool { return p.Email == email })
}

func (s *InMemory) PersonByIRCNick(ctx context.Context, nick string) (Person, error) {
	return s.findPerson(func(p Person) bool { return p.IRCNick == nick })
}

func (s *InMemory) findPerson(match func(Person) bool) (Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.people {
		if match(p) {
			return p, nil
		}
	}
	return Person{}, ErrNotFound
}

func (s *InMemory) GroupByID(ctx context.Context, id int64) (Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[id]
	if !ok {
		return Group{}, ErrNotFound
	}
	return g, nil
}

func (s *InMemory) GroupByName(ctx context.Context, name string) (Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.groups {
		if g.Name == name {
			return g, nil
		}
	}
	return Group{}, ErrNotFound
}

func (s *InMemory) CandidateParentGroups(ctx context.Context) ([]Group, error) {
	s.mu.RLock()
	var res []Group
	for _, g := range s.groups {
		if g.ParentID == NoParentGroup {
			res = append(res, g)
		}
	}
	s.mu.RUnlock()

	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (s *InMemory) ChildGroups(ctx context.Context, parentID int64) ([]Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []Group
	for _, id := range s.groupOrder {
		if g := s.groups[id]; g.ParentID == parentID {
			res = append(res, g)
		}
	}
	return res, nil
}

// Reference data -------------------------------------------------------------

func (s *InMemory) AccountStatuses(ctx context.Context) ([]AccountStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]AccountStatus(nil), s.statuses...), nil
}

func (s *InMemory) AccountStatusByName(ctx context.Context, name string) (AccountStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.statuses {
		if strings.EqualFold(st.Status, name) {
			return st, nil
		}
	}
	return AccountStatus{}, ErrNotFound
}

func (s *InMemory) RoleLevels(ctx context.Context) ([]RoleLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]RoleLevel(nil), s.roles...), nil
}

func (s *InMemory) GroupTypes(ctx context.Context) ([]GroupType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]GroupType(nil), s.types...), nil
}

func (s *InMemory) GroupTypeByID(ctx context.Context, id int64) (GroupType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, gt := range s.types {
		if gt.ID == id {
			return gt, nil
		}
	}
	return GroupType{}, ErrNotFound
}

// Membership -----------------------------------------------------------------

func (s *InMemory) GroupMembers(ctx context.Context, groupID int64) ([]MemberRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	group, ok := s.groups[groupID]
	if !ok {
		return nil, nil
	}
	var rows []MemberRow
	for _, m := range s.memberships {
		if m.GroupID != groupID {
			continue
		}
		person, ok := s.people[m.PersonID]
		if !ok {
			continue
		}
		rows = append(rows, MemberRow{
			Group:      group,
			Membership: m,
			Person:     person,
			Role:       s.roleByID(m.RoleID),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Person.Username < rows[j].Person.Username })
	return rows, nil
}

func (s *InMemory) roleByID(id int64) RoleLevel {
	for _, r := range s.roles {
		if r.ID == id {
			return r
		}
	}
	return RoleLevel{ID: id}
}

func (s *InMemory) GroupsForPerson(ctx context.Context, username string) ([]Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var person *Person
	for _, p := range s.people {
		if p.Username == username {
			pp := p
			person = &pp
			break
		}
	}
	if person == nil {
		return nil, nil
	}
	var res []Group
	for _, m := range s.memberships {
		if m.PersonID != person.ID {
			continue
		}
		if g, ok := s.groups[m.GroupID]; ok {
			res = append(res, g)
		}
	}
	return res, nil
}

func (s *InMemory) Membership(ctx context.Context, username, groupName string) (Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var personID, groupID int64
	for _, p := range s.people {
		if p.Username == username {
			personID = p.ID
			break
		}
	}
	for _, g := range s.groups {
		if g.Name == groupName {
			groupID = g.ID
			break
		}
	}
	for _, m := range s.memberships {
		if m.PersonID == personID && m.GroupID == groupID {
			return m, nil
		}
	}
	return Membership{}, ErrNotFound
}

// Licenses -------------------------------------------------------------------

func (s *InMemory) Licenses(ctx context.Context) ([]License, error) {
	s.mu.RLock()
	licenses := make([]License, 0, len(s.licenses))
	for _, l := range s.licenses {
		licenses = append(licenses, l)
	}
	s.mu.RUnlock()

	sort.Slice(licenses, func(i, j int) bool { return licenses[i].ID < licenses[j].ID })
	return licenses, nil
}

func (s *InMemory) LicenseByID(ctx context.Context, id int64) (License, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.licenses[id]
	if !ok {
		return License{}, ErrNotFound
	}
	return l, nil
}

func (s *InMemory) IsLicenseSigned(ctx context.Context, licenseID, personID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.signatures[[2]int64{personID, licenseID}]
	return ok, nil
}

func (s *InMemory) SignLicense(ctx context.Context, licenseID, personID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.licenses[licenseID]; !ok {
		return ErrNotFound
	}
	if _, ok := s.people[personID]; !ok {
		return ErrNotFound
	}
	key := [2]int64{personID, licenseID}
	if _, ok := s.signatures[key]; ok {
		// Signed is terminal; re-signing is a no-op.
		return nil
	}
	s.signatures[key] = Signature{PersonID: personID, LicenseID: licenseID, SignedAt: time.Now().UTC()}
	return nil
}

// Permissions ----------------------------------------------------------------

func (s *InMemory) PermissionsForPerson(ctx context.Context, personID int64) ([]Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []Permission
	for _, p := range s.permissions {
		if p.PersonID == personID {
			res = append(res, p)
		}
	}
	return res, nil
}

func (s *InMemory) PermissionByToken(ctx context.Context, token string) (Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.permissions {
		if p.Token == token {
			return p, nil
		}
	}
	return Permission{}, ErrNotFound
}

// Activity log ---------------------------------------------------------------

// AccountActivities returns entries newest-first, matching the SQL store.
func (s *InMemory) AccountActivities(ctx context.Context, personID int64) ([]Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []Activity
	for i := len(s.activities) - 1; i >= 0; i-- {
		if s.activities[i].PersonID == personID {
			res = append(res, s.activities[i])
		}
	}
	return res, nil
}

func (s *InMemory) RecordActivity(ctx context.Context, entry Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.ID == "" {
		entry.ID = ids.New()
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}
	s.activities = append(s.activities, entry)
	return nil
}

func paginate[T any](items []T, page ListPage) []T {
	if !page.Enabled() {
		return items
	}
	off := page.Offset()
	if off >= len(items) {
		return nil
	}
	end := off + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[off:end]
}
