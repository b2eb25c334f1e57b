package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"kimlik.org/internal/directory"
)

const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
)

// Store implements directory.Store on PostgreSQL. Pagination is pushed down
// as limit/offset so the result set never has to fit in memory.
type Store struct {
	db *sql.DB
}

var _ directory.Store = (*Store)(nil)

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewStore wraps an existing handle; the caller owns its lifecycle.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

const personColumns = `id, username, email, coalesce(ircnick,''), status_id, password_hash, created_at, updated_at`

func scanPerson(row interface{ Scan(...any) error }) (directory.Person, error) {
	var p directory.Person
	err := row.Scan(&p.ID, &p.Username, &p.Email, &p.IRCNick, &p.StatusID, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return directory.Person{}, directory.ErrNotFound
	}
	if err != nil {
		return directory.Person{}, err
	}
	return p, nil
}

func (s *Store) CountPeople(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `select count(id) from people`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) CountGroups(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `select count(id) from groups`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) ListPeople(ctx context.Context, page directory.ListPage) ([]directory.Person, error) {
	query := `select ` + personColumns + ` from people order by username`
	var args []any
	if page.Enabled() {
		query += ` limit $1 offset $2`
		args = append(args, page.Limit, page.Offset())
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var people []directory.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

func (s *Store) ListGroups(ctx context.Context, page directory.ListPage) ([]directory.Group, error) {
	query := `select id, name, group_type_id, parent_group_id, created_at from groups`
	var args []any
	if page.Enabled() {
		// Stable pagination needs a defined order; ids are as good as any.
		query += ` order by id limit $1 offset $2`
		args = append(args, page.Limit, page.Offset())
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectGroups(rows)
}

func collectGroups(rows *sql.Rows) ([]directory.Group, error) {
	var groups []directory.Group
	for rows.Next() {
		var g directory.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.TypeID, &g.ParentID, &g.CreatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (s *Store) PeopleUsernames(ctx context.Context) ([]directory.UsernameEntry, error) {
	rows, err := s.db.QueryContext(ctx, `select id, username from people order by username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []directory.UsernameEntry
	for rows.Next() {
		var e directory.UsernameEntry
		if err := rows.Scan(&e.ID, &e.Username); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) PersonByID(ctx context.Context, id int64) (directory.Person, error) {
	return scanPerson(s.db.QueryRowContext(ctx,
		`select `+personColumns+` from people where id=$1`, id))
}

func (s *Store) PersonByUsername(ctx context.Context, username string) (directory.Person, error) {
	return scanPerson(s.db.QueryRowContext(ctx,
		`select `+personColumns+` from people where username=$1`, username))
}

func (s *Store) PersonByEmail(ctx context.Context, email string) (directory.Person, error) {
	return scanPerson(s.db.QueryRowContext(ctx,
		`select `+personColumns+` from people where email=$1`, email))
}

func (s *Store) PersonByIRCNick(ctx context.Context, nick string) (directory.Person, error) {
	return scanPerson(s.db.QueryRowContext(ctx,
		`select `+personColumns+` from people where ircnick=$1`, nick))
}

func (s *Store) GroupByID(ctx context.Context, id int64) (directory.Group, error) {
	return s.groupBy(ctx, `id=$1`, id)
}

func (s *Store) GroupByName(ctx context.Context, name string) (directory.Group, error) {
	return s.groupBy(ctx, `name=$1`, name)
}

func (s *Store) groupBy(ctx context.Context, predicate string, arg any) (directory.Group, error) {
	var g directory.Group
	err := s.db.QueryRowContext(ctx,
		`select id, name, group_type_id, parent_group_id, created_at from groups where `+predicate, arg,
	).Scan(&g.ID, &g.Name, &g.TypeID, &g.ParentID, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return directory.Group{}, directory.ErrNotFound
	}
	if err != nil {
		return directory.Group{}, err
	}
	return g, nil
}

func (s *Store) CandidateParentGroups(ctx context.Context) ([]directory.Group, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, name, group_type_id, parent_group_id, created_at
		from groups
		where parent_group_id = $1
		order by name
	`, directory.NoParentGroup)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectGroups(rows)
}

func (s *Store) ChildGroups(ctx context.Context, parentID int64) ([]directory.Group, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, name, group_type_id, parent_group_id, created_at
		from groups
		where parent_group_id = $1
		order by name
	`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectGroups(rows)
}

// --- helpers ---

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}
