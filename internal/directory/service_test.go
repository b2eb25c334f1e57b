package directory

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func seedService(t *testing.T) (*Service, *InMemory) {
	t.Helper()
	store := NewInMemory()
	store.SetReferenceData(
		[]AccountStatus{{ID: 1, Status: "active"}, {ID: 2, Status: "pending"}, {ID: 3, Status: "disabled"}},
		[]RoleLevel{{ID: 1, Name: "member"}, {ID: 2, Name: "sponsor"}, {ID: 3, Name: "administrator"}},
		[]GroupType{{ID: 1, Name: "tracking"}, {ID: 2, Name: "shell"}},
	)
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store
}

func TestMembershipScenario(t *testing.T) {
	svc, store := seedService(t)
	ctx := context.Background()

	store.AddPerson(Person{ID: 1, Username: "alice", Email: "alice@example.com", StatusID: 1})
	store.AddGroup(Group{ID: 10, Name: "packagers", TypeID: 1, ParentID: NoParentGroup})
	store.AddMembership(Membership{ID: 100, GroupID: 10, PersonID: 1, RoleID: 2})

	m, err := svc.Membership(ctx, "alice", "packagers")
	if err != nil {
		t.Fatalf("Membership: %v", err)
	}
	if m.RoleID != 2 {
		t.Fatalf("expected sponsor role id 2, got %d", m.RoleID)
	}

	groups, err := svc.GroupsForPerson(ctx, "alice")
	if err != nil {
		t.Fatalf("GroupsForPerson: %v", err)
	}
	if len(groups) != 1 || groups[0].Name != "packagers" {
		t.Fatalf("unexpected groups: %+v", groups)
	}

	rows, err := svc.GroupMembers(ctx, 10)
	if err != nil {
		t.Fatalf("GroupMembers: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one member row, got %d", len(rows))
	}
	row := rows[0]
	if row.Person.Username != "alice" || row.Group.ID != 10 || row.Role.Name != "sponsor" {
		t.Fatalf("unexpected member row: %+v", row)
	}
}

func TestMembershipMatchesGroupMembers(t *testing.T) {
	svc, store := seedService(t)
	ctx := context.Background()

	store.AddPerson(Person{ID: 1, Username: "alice", StatusID: 1})
	store.AddPerson(Person{ID: 2, Username: "bob", StatusID: 1})
	store.AddGroup(Group{ID: 10, Name: "packagers", TypeID: 1, ParentID: NoParentGroup})
	store.AddMembership(Membership{ID: 100, GroupID: 10, PersonID: 1, RoleID: 1})

	// Membership(u, g) is non-nil iff (u, g) appears in GroupMembers.
	if _, err := svc.Membership(ctx, "alice", "packagers"); err != nil {
		t.Fatalf("expected membership for alice: %v", err)
	}
	if _, err := svc.Membership(ctx, "bob", "packagers"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for bob, got %v", err)
	}
	rows, err := svc.GroupMembers(ctx, 10)
	if err != nil {
		t.Fatalf("GroupMembers: %v", err)
	}
	for _, row := range rows {
		if row.Person.Username == "bob" {
			t.Fatalf("bob must not appear in group members")
		}
	}
}

func TestGroupMembersEmptyForUnknownGroup(t *testing.T) {
	svc, _ := seedService(t)
	rows, err := svc.GroupMembers(context.Background(), 999)
	if err != nil {
		t.Fatalf("GroupMembers: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty result, got %d rows", len(rows))
	}
}

func TestListPeoplePrefixConsistency(t *testing.T) {
	svc, store := seedService(t)
	ctx := context.Background()

	for i := 1; i <= 25; i++ {
		store.AddPerson(Person{ID: int64(i), Username: fmt.Sprintf("user%02d", i), StatusID: 1})
	}

	full, err := svc.ListPeople(ctx, ListPage{})
	if err != nil {
		t.Fatalf("ListPeople: %v", err)
	}
	if len(full) != 25 {
		t.Fatalf("expected 25 people, got %d", len(full))
	}

	const limit = 7
	var paged []Person
	for page := 1; ; page++ {
		chunk, err := svc.ListPeople(ctx, ListPage{Page: page, Limit: limit})
		if err != nil {
			t.Fatalf("ListPeople page %d: %v", page, err)
		}
		if len(chunk) > limit {
			t.Fatalf("page %d exceeds limit: %d", page, len(chunk))
		}
		if len(chunk) == 0 {
			break
		}
		paged = append(paged, chunk...)
	}
	if len(paged) != len(full) {
		t.Fatalf("pages do not reassemble the sequence: %d vs %d", len(paged), len(full))
	}
	for i := range full {
		if paged[i].Username != full[i].Username {
			t.Fatalf("order mismatch at %d: %s vs %s", i, paged[i].Username, full[i].Username)
		}
	}
}

func TestListGroupsDegenerateOffset(t *testing.T) {
	svc, store := seedService(t)
	ctx := context.Background()

	for i := 1; i <= 20; i++ {
		store.AddGroup(Group{ID: int64(i), Name: fmt.Sprintf("group%02d", i), TypeID: 1, ParentID: NoParentGroup})
	}

	page1, err := svc.ListGroups(ctx, ListPage{Page: 1, Limit: 20})
	if err != nil {
		t.Fatalf("ListGroups page 1: %v", err)
	}
	if len(page1) != 20 {
		t.Fatalf("page 1 should return all 20 groups, got %d", len(page1))
	}

	page2, err := svc.ListGroups(ctx, ListPage{Page: 2, Limit: 20})
	if err != nil {
		t.Fatalf("ListGroups page 2: %v", err)
	}
	if len(page2) != 0 {
		t.Fatalf("page 2 should be empty, got %d", len(page2))
	}

	// A limit without a page reads the first page.
	first, err := svc.ListGroups(ctx, ListPage{Limit: 5})
	if err != nil {
		t.Fatalf("ListGroups limit only: %v", err)
	}
	if len(first) != 5 || first[0].ID != 1 {
		t.Fatalf("limit without page must return the first page, got %d rows", len(first))
	}

	// Without a limit the full sequence comes back.
	all, err := svc.ListGroups(ctx, ListPage{})
	if err != nil {
		t.Fatalf("ListGroups unpaginated: %v", err)
	}
	if len(all) != 20 {
		t.Fatalf("zero value must return full sequence, got %d", len(all))
	}
}

func TestListPeopleLowPageReadsFirstPage(t *testing.T) {
	svc, store := seedService(t)
	ctx := context.Background()

	for i := 1; i <= 25; i++ {
		store.AddPerson(Person{ID: int64(i), Username: fmt.Sprintf("user%02d", i), StatusID: 1})
	}

	firstPage, err := svc.ListPeople(ctx, ListPage{Page: 1, Limit: 7})
	if err != nil {
		t.Fatalf("ListPeople page 1: %v", err)
	}
	if len(firstPage) != 7 {
		t.Fatalf("expected 7 rows, got %d", len(firstPage))
	}

	for _, page := range []int{0, -1} {
		rows, err := svc.ListPeople(ctx, ListPage{Page: page, Limit: 7})
		if err != nil {
			t.Fatalf("ListPeople page %d: %v", page, err)
		}
		if len(rows) != 7 {
			t.Fatalf("page=%d limit=7 returned %d rows, want 7 (first page)", page, len(rows))
		}
		for i := range rows {
			if rows[i].Username != firstPage[i].Username {
				t.Fatalf("page=%d row %d: %s, want %s", page, i, rows[i].Username, firstPage[i].Username)
			}
		}
	}
}

func TestCandidateParentGroups(t *testing.T) {
	svc, store := seedService(t)
	ctx := context.Background()

	store.AddGroup(Group{ID: 1, Name: "infra", TypeID: 1, ParentID: NoParentGroup})
	store.AddGroup(Group{ID: 2, Name: "apps", TypeID: 1, ParentID: NoParentGroup})
	store.AddGroup(Group{ID: 3, Name: "infra-sre", TypeID: 1, ParentID: 1})

	parents, err := svc.CandidateParentGroups(ctx)
	if err != nil {
		t.Fatalf("CandidateParentGroups: %v", err)
	}
	if len(parents) != 2 {
		t.Fatalf("expected 2 candidate parents, got %d", len(parents))
	}
	// Ordered by name ascending; no group with a real parent included.
	if parents[0].Name != "apps" || parents[1].Name != "infra" {
		t.Fatalf("unexpected order: %s, %s", parents[0].Name, parents[1].Name)
	}
	for _, g := range parents {
		if g.ParentID != NoParentGroup {
			t.Fatalf("group %s has a parent and must not be a candidate", g.Name)
		}
	}

	children, err := svc.ChildGroups(ctx, 1)
	if err != nil {
		t.Fatalf("ChildGroups: %v", err)
	}
	if len(children) != 1 || children[0].Name != "infra-sre" {
		t.Fatalf("unexpected children: %+v", children)
	}
}

func TestAccountStatusByNameIsCaseInsensitive(t *testing.T) {
	svc, _ := seedService(t)
	ctx := context.Background()

	upper, err := svc.AccountStatusByName(ctx, "ACTIVE")
	if err != nil {
		t.Fatalf("AccountStatusByName upper: %v", err)
	}
	lower, err := svc.AccountStatusByName(ctx, "active")
	if err != nil {
		t.Fatalf("AccountStatusByName lower: %v", err)
	}
	if upper.ID != lower.ID {
		t.Fatalf("case-insensitive lookup returned different rows: %d vs %d", upper.ID, lower.ID)
	}
}

func TestLicenseSigningIsIdempotent(t *testing.T) {
	svc, store := seedService(t)
	ctx := context.Background()

	store.AddPerson(Person{ID: 1, Username: "alice", StatusID: 1})
	store.AddLicense(License{ID: 1, Name: "FPCA"})
	store.AddLicense(License{ID: 2, Name: "FPCA v2"})

	signed, err := svc.IsLicenseSigned(ctx, 1, 1)
	if err != nil {
		t.Fatalf("IsLicenseSigned: %v", err)
	}
	if signed {
		t.Fatal("license must be unsigned before any signature exists")
	}

	if err := svc.SignLicense(ctx, 1, 1); err != nil {
		t.Fatalf("SignLicense: %v", err)
	}
	signed, err = svc.IsLicenseSigned(ctx, 1, 1)
	if err != nil || !signed {
		t.Fatalf("expected signed=true, got %v err=%v", signed, err)
	}

	// Duplicate attempt is a no-op, not an error or a new state.
	if err := svc.SignLicense(ctx, 1, 1); err != nil {
		t.Fatalf("duplicate SignLicense: %v", err)
	}
	signed, _ = svc.IsLicenseSigned(ctx, 1, 1)
	if !signed {
		t.Fatal("signature lost after duplicate attempt")
	}

	// No version fallback: signing v1 does not satisfy v2.
	signed, err = svc.IsLicenseSigned(ctx, 2, 1)
	if err != nil {
		t.Fatalf("IsLicenseSigned v2: %v", err)
	}
	if signed {
		t.Fatal("signing license 1 must not satisfy license 2")
	}
}

func TestPermissionByTokenExactMatch(t *testing.T) {
	svc, store := seedService(t)
	ctx := context.Background()

	store.AddPerson(Person{ID: 1, Username: "alice", StatusID: 1})
	store.AddPermission(Permission{ID: 1, PersonID: 1, Scope: "account.read", Token: "Tok3n-A"})

	perm, err := svc.PermissionByToken(ctx, "Tok3n-A")
	if err != nil {
		t.Fatalf("PermissionByToken: %v", err)
	}
	if perm.ID != 1 {
		t.Fatalf("unexpected permission: %+v", perm)
	}

	for _, bad := range []string{"tok3n-a", "TOK3N-A", " Tok3n-A", "Tok3n-A "} {
		if _, err := svc.PermissionByToken(ctx, bad); !errors.Is(err, ErrNotFound) {
			t.Fatalf("token %q must not match, got %v", bad, err)
		}
	}
}

func TestAuthenticatedPerson(t *testing.T) {
	svc, store := seedService(t)
	ctx := context.Background()

	store.AddPerson(Person{ID: 7, Username: "mizmo", Email: "mizmo@example.com", StatusID: 1})

	p, err := svc.AuthenticatedPerson(ctx, "mizmo")
	if err != nil {
		t.Fatalf("AuthenticatedPerson: %v", err)
	}
	if p.ID != 7 {
		t.Fatalf("unexpected person: %+v", p)
	}
	if _, err := svc.AuthenticatedPerson(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceRejectsBlankInput(t *testing.T) {
	svc, _ := seedService(t)
	ctx := context.Background()

	if _, err := svc.PersonByUsername(ctx, "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Membership(ctx, "alice", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.PermissionByToken(ctx, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.PersonByID(ctx, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
