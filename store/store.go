// Package store is the client for the site's relational data store. It owns
// the connection, the schema and one repository per table.
//
// A single *Store is opened at startup and passed explicitly to every
// repository constructor; nothing in this package keeps global client state.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/bimaakbar/bimasite/schema"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// timeLayout is fixed width so stored timestamps sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DateLayout is the storage and form format of calendar dates.
const DateLayout = "2006-01-02"

// Options configures Open.
type Options struct {
	Driver string // DriverSQLite (default) or DriverPostgres
	DSN    string // file path for SQLite, connection URL for Postgres

	// Now overrides the clock used for created_at values.
	Now func() time.Time
}

// Store wraps the database handle and the dialect-specific SQL details.
type Store struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

// Open connects to the data store described by opts and applies the schema.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Driver == "" {
		opts.Driver = DriverSQLite
	}
	d, ok := dialects[opts.Driver]
	if !ok {
		return nil, fmt.Errorf("store: unsupported driver %q", opts.Driver)
	}
	if opts.DSN == "" {
		return nil, errors.New("store: DSN is required")
	}

	if d.name == DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(opts.DSN), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open(d.sqlDriver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if d.name == DriverSQLite {
		// WAL lets readers proceed during writes; busy_timeout makes writers
		// wait instead of failing with SQLITE_BUSY.
		if _, err := db.ExecContext(ctx, `
			PRAGMA journal_mode=WAL;
			PRAGMA busy_timeout=5000;
			PRAGMA synchronous=NORMAL;
		`); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: pragmas: %w", err)
		}
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	s := &Store{db: db, dialect: d, now: opts.Now}
	if s.now == nil {
		s.now = time.Now
	}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver reports the dialect the store was opened with.
func (s *Store) Driver() string {
	return s.dialect.name
}

func (s *Store) ensureSchema(ctx context.Context) error {
	stmts, err := schema.Statements(s.dialect.name)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) query(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.dialect.rebind(q), args...)
}

func (s *Store) queryRow(ctx context.Context, q string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.dialect.rebind(q), args...)
}

func (s *Store) exec(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.dialect.rebind(q), args...)
}

// timestamp returns the current time in storage form.
func (s *Store) timestamp() string {
	return formatTime(s.now())
}

// classify maps a driver error onto the package's error taxonomy. field
// names the unique column reported on a constraint violation.
func (s *Store) classify(op, entity, field string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s %w", entity, ErrNotFound)
	case s.dialect.isUniqueViolation(err):
		return &ConflictError{Entity: entity, Field: field}
	default:
		return &StoreError{Op: op, Entity: entity, Err: err}
	}
}

// requireRow reports ErrNotFound when res touched no rows.
func (s *Store) requireRow(res sql.Result, op, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return &StoreError{Op: op, Entity: entity, Err: err}
	}
	if n == 0 {
		return fmt.Errorf("%s %w", entity, ErrNotFound)
	}
	return nil
}

func (s *Store) count(ctx context.Context, table, entity string) (int, error) {
	var n int
	if err := s.queryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, s.classify("count", entity, "", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) time.Time {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, v)
	}
	return t
}

// escapeLike escapes LIKE wildcards in a user-supplied term.
func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}

type dialect struct {
	name      string
	sqlDriver string
	numbered  bool
	// lower is the SQL function that case-folds a column, Unicode included.
	lower string
}

var dialects = map[string]dialect{
	DriverSQLite:   {name: DriverSQLite, sqlDriver: "sqlite", lower: "unicode_lower"},
	DriverPostgres: {name: DriverPostgres, sqlDriver: "pgx", numbered: true, lower: "lower"},
}

// SQLite's built-in lower() only folds ASCII.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("unicode_lower", 1, func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		switch v := args[0].(type) {
		case string:
			return strings.ToLower(v), nil
		case []byte:
			return strings.ToLower(string(v)), nil
		default:
			return v, nil
		}
	})
}

// rebind rewrites ? placeholders as $1, $2, ... for numbered dialects.
func (d dialect) rebind(q string) string {
	if !d.numbered {
		return q
	}
	var b strings.Builder
	n := 0
	inString := false
	for _, r := range q {
		switch {
		case r == '\'':
			inString = !inString
			b.WriteRune(r)
		case r == '?' && !inString:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (d dialect) isUniqueViolation(err error) bool {
	switch d.name {
	case DriverPostgres:
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr) && pgErr.Code == "23505"
	default:
		var sqErr *sqlite.Error
		if errors.As(err, &sqErr) {
			code := sqErr.Code()
			return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
		}
		return strings.Contains(err.Error(), "UNIQUE constraint failed")
	}
}
