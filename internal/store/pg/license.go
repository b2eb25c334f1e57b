package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"kimlik.org/internal/directory"
	"kimlik.org/internal/ids"
)

func (s *Store) Licenses(ctx context.Context) ([]directory.License, error) {
	rows, err := s.db.QueryContext(ctx, `select id, name, content from license_agreement order by id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var licenses []directory.License
	for rows.Next() {
		var l directory.License
		if err := rows.Scan(&l.ID, &l.Name, &l.Content); err != nil {
			return nil, err
		}
		licenses = append(licenses, l)
	}
	return licenses, rows.Err()
}

func (s *Store) LicenseByID(ctx context.Context, id int64) (directory.License, error) {
	var l directory.License
	err := s.db.QueryRowContext(ctx,
		`select id, name, content from license_agreement where id=$1`, id,
	).Scan(&l.ID, &l.Name, &l.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return directory.License{}, directory.ErrNotFound
	}
	if err != nil {
		return directory.License{}, err
	}
	return l, nil
}

// IsLicenseSigned is a pure existence predicate on the exact (person,
// license) pair; no version fallback.
func (s *Store) IsLicenseSigned(ctx context.Context, licenseID, personID int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		select 1 from signed_license_agreement
		where people_id = $1 and license_id = $2
	`, personID, licenseID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SignLicense inserts the signature row. The primary key on
// (people_id, license_id) makes re-signing a no-op rather than an error.
func (s *Store) SignLicense(ctx context.Context, licenseID, personID int64) error {
	_, err := s.db.ExecContext(ctx, `
		insert into signed_license_agreement (people_id, license_id, signed_at)
		values ($1, $2, now())
		on conflict (people_id, license_id) do nothing
	`, personID, licenseID)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return directory.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Store) PermissionsForPerson(ctx context.Context, personID int64) ([]directory.Permission, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, people_id, scope, token, granted_at
		from account_permissions
		where people_id = $1
		order by granted_at
	`, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []directory.Permission
	for rows.Next() {
		var p directory.Permission
		if err := rows.Scan(&p.ID, &p.PersonID, &p.Scope, &p.Token, &p.GrantedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// PermissionByToken performs an exact equality match; the token column
// carries a unique constraint so at most one row resolves.
func (s *Store) PermissionByToken(ctx context.Context, token string) (directory.Permission, error) {
	var p directory.Permission
	err := s.db.QueryRowContext(ctx, `
		select id, people_id, scope, token, granted_at
		from account_permissions
		where token = $1
	`, token).Scan(&p.ID, &p.PersonID, &p.Scope, &p.Token, &p.GrantedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return directory.Permission{}, directory.ErrNotFound
	}
	if err != nil {
		return directory.Permission{}, err
	}
	return p, nil
}

func (s *Store) AccountActivities(ctx context.Context, personID int64) ([]directory.Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, people_id, event, coalesce(detail,''), occurred_at
		from account_activity
		where people_id = $1
		order by occurred_at desc
	`, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []directory.Activity
	for rows.Next() {
		var a directory.Activity
		if err := rows.Scan(&a.ID, &a.PersonID, &a.Event, &a.Detail, &a.OccurredAt); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func (s *Store) RecordActivity(ctx context.Context, entry directory.Activity) error {
	if entry.ID == "" {
		entry.ID = ids.New()
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		insert into account_activity (id, people_id, event, detail, occurred_at)
		values ($1, $2, $3, nullif($4,''), $5)
	`, entry.ID, entry.PersonID, entry.Event, entry.Detail, entry.OccurredAt)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return directory.ErrConflict
			case pgErrForeignKeyViolation:
				return directory.ErrNotFound
			}
		}
		return err
	}
	return nil
}
