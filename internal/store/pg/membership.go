package pg

import (
	"context"
	"database/sql"
	"errors"

	"kimlik.org/internal/directory"
)

// GroupMembers returns the four-way join (group, membership, person, role)
// for every membership row of the group. Zero rows is a valid result for an
// empty or unknown group id.
func (s *Store) GroupMembers(ctx context.Context, groupID int64) ([]directory.MemberRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		select g.id, g.name, g.group_type_id, g.parent_group_id, g.created_at,
		       m.id, m.group_id, m.people_id, m.role_level_id, m.joined_at,
		       p.id, p.username, p.email, coalesce(p.ircnick,''), p.status_id, p.created_at, p.updated_at,
		       r.id, r.name
		from groups g
		join group_membership m on m.group_id = g.id
		join people p on p.id = m.people_id
		join role_level r on r.id = m.role_level_id
		where g.id = $1
		order by p.username
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []directory.MemberRow
	for rows.Next() {
		var row directory.MemberRow
		if err := rows.Scan(
			&row.Group.ID, &row.Group.Name, &row.Group.TypeID, &row.Group.ParentID, &row.Group.CreatedAt,
			&row.Membership.ID, &row.Membership.GroupID, &row.Membership.PersonID, &row.Membership.RoleID, &row.Membership.JoinedAt,
			&row.Person.ID, &row.Person.Username, &row.Person.Email, &row.Person.IRCNick, &row.Person.StatusID, &row.Person.CreatedAt, &row.Person.UpdatedAt,
			&row.Role.ID, &row.Role.Name,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// GroupsForPerson resolves groups through the membership relation. An
// unknown username joins to nothing and yields an empty slice.
func (s *Store) GroupsForPerson(ctx context.Context, username string) ([]directory.Group, error) {
	rows, err := s.db.QueryContext(ctx, `
		select g.id, g.name, g.group_type_id, g.parent_group_id, g.created_at
		from groups g
		join group_membership m on m.group_id = g.id
		join people p on p.id = m.people_id
		where p.username = $1
	`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectGroups(rows)
}

// Membership fetches the single row matching both the username and the
// group name; the uniqueness constraint on (people_id, group_id) guarantees
// at most one.
func (s *Store) Membership(ctx context.Context, username, groupName string) (directory.Membership, error) {
	var m directory.Membership
	err := s.db.QueryRowContext(ctx, `
		select m.id, m.group_id, m.people_id, m.role_level_id, m.joined_at
		from group_membership m
		join people p on p.id = m.people_id
		join groups g on g.id = m.group_id
		where p.username = $1 and g.name = $2
	`, username, groupName).Scan(&m.ID, &m.GroupID, &m.PersonID, &m.RoleID, &m.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return directory.Membership{}, directory.ErrNotFound
	}
	if err != nil {
		return directory.Membership{}, err
	}
	return m, nil
}
