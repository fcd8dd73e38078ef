package devserver

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/propdesk/internal/log"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Resource names used as the records.resource discriminator.
const (
	ResLocations  = "locations"
	ResBuilders   = "builders"
	ResProjects   = "projects"
	ResProperties = "properties"
	ResUsers      = "users"
	ResLeads      = "leads"
	ResAmenities  = "amenities"
)

// Store keeps every resource as JSON documents in one SQLite table.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies
// migrations. ":memory:" gives a private in-memory database.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		dsn = "file:" + path
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening playground db: %w", err)
	}
	// One connection keeps an in-memory database shared and serialises
	// writers.
	db.SetMaxOpenConns(1)

	if err := migrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Debug(log.CatServer, "Playground database ready", "path", path)
	return &Store{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("preparing migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("preparing migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Insert stores a new document.
func (s *Store) Insert(ctx context.Context, resource, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding %s %s: %w", resource, id, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (resource, id, body) VALUES (?, ?, ?)`, resource, id, string(body))
	if err != nil {
		return fmt.Errorf("inserting %s %s: %w", resource, id, err)
	}
	return nil
}

// Replace overwrites an existing document. It reports false when no
// document has that id.
func (s *Store) Replace(ctx context.Context, resource, id string, doc any) (bool, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("encoding %s %s: %w", resource, id, err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE records SET body = ? WHERE resource = ? AND id = ?`, string(body), resource, id)
	if err != nil {
		return false, fmt.Errorf("updating %s %s: %w", resource, id, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Get decodes one document into dst. It reports false when absent.
func (s *Store) Get(ctx context.Context, resource, id string, dst any) (bool, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM records WHERE resource = ? AND id = ?`, resource, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s %s: %w", resource, id, err)
	}
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		return false, fmt.Errorf("decoding %s %s: %w", resource, id, err)
	}
	return true, nil
}

// Delete removes a document. It reports false when absent.
func (s *Store) Delete(ctx context.Context, resource, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE resource = ? AND id = ?`, resource, id)
	if err != nil {
		return false, fmt.Errorf("deleting %s %s: %w", resource, id, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Count returns the number of documents of a resource.
func (s *Store) Count(ctx context.Context, resource string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE resource = ?`, resource).Scan(&n)
	return n, err
}

// Cond is one SQL predicate over the JSON body, e.g.
// "json_extract(body, '$.bhk') = ?".
type Cond struct {
	Expr string
	Arg  any
}

// Query returns documents in insertion order matching every cond, along
// with the total match count. limit <= 0 returns everything.
func (s *Store) Query(ctx context.Context, resource string, conds []Cond, offset, limit int) ([]json.RawMessage, int, error) {
	where := []string{"resource = ?"}
	args := []any{resource}
	for _, c := range conds {
		where = append(where, c.Expr)
		args = append(args, c.Arg)
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE `+clause, args...).Scan(&total); err != nil { //nolint:gosec // G202: predicates are fixed strings
		return nil, 0, fmt.Errorf("counting %s: %w", resource, err)
	}

	query := `SELECT body FROM records WHERE ` + clause + ` ORDER BY seq` //nolint:gosec // G202: predicates are fixed strings
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing %s: %w", resource, err)
	}
	defer func() { _ = rows.Close() }()

	var out []json.RawMessage
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, 0, fmt.Errorf("scanning %s: %w", resource, err)
		}
		out = append(out, json.RawMessage(body))
	}
	return out, total, rows.Err()
}

// All returns every document of a resource decoded as T.
func All[T any](ctx context.Context, s *Store, resource string) ([]T, error) {
	raw, _, err := s.Query(ctx, resource, nil, 0, 0)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](raw)
}

func decodeAll[T any](raw []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			return nil, fmt.Errorf("decoding record: %w", err)
		}
		out = append(out, item)
	}
	return out, nil
}
