package pg

import (
	"context"
	"database/sql"
	"errors"

	"kimlik.org/internal/directory"
)

func (s *Store) AccountStatuses(ctx context.Context) ([]directory.AccountStatus, error) {
	rows, err := s.db.QueryContext(ctx, `select id, status from account_status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []directory.AccountStatus
	for rows.Next() {
		var st directory.AccountStatus
		if err := rows.Scan(&st.ID, &st.Status); err != nil {
			return nil, err
		}
		statuses = append(statuses, st)
	}
	return statuses, rows.Err()
}

// AccountStatusByName matches case-insensitively; account_status carries a
// unique index on lower(status).
func (s *Store) AccountStatusByName(ctx context.Context, name string) (directory.AccountStatus, error) {
	var st directory.AccountStatus
	err := s.db.QueryRowContext(ctx,
		`select id, status from account_status where lower(status) = lower($1)`, name,
	).Scan(&st.ID, &st.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return directory.AccountStatus{}, directory.ErrNotFound
	}
	if err != nil {
		return directory.AccountStatus{}, err
	}
	return st, nil
}

func (s *Store) RoleLevels(ctx context.Context) ([]directory.RoleLevel, error) {
	rows, err := s.db.QueryContext(ctx, `select id, name from role_level`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []directory.RoleLevel
	for rows.Next() {
		var r directory.RoleLevel
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

func (s *Store) GroupTypes(ctx context.Context) ([]directory.GroupType, error) {
	rows, err := s.db.QueryContext(ctx, `select id, name from group_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []directory.GroupType
	for rows.Next() {
		var gt directory.GroupType
		if err := rows.Scan(&gt.ID, &gt.Name); err != nil {
			return nil, err
		}
		types = append(types, gt)
	}
	return types, rows.Err()
}

func (s *Store) GroupTypeByID(ctx context.Context, id int64) (directory.GroupType, error) {
	var gt directory.GroupType
	err := s.db.QueryRowContext(ctx,
		`select id, name from group_type where id=$1`, id,
	).Scan(&gt.ID, &gt.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return directory.GroupType{}, directory.ErrNotFound
	}
	if err != nil {
		return directory.GroupType{}, err
	}
	return gt, nil
}
