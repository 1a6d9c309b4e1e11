// Package sqldb implements the relational repositories on database/sql. The
// same queries run on Postgres (lib/pq) in production and on SQLite
// (modernc.org/sqlite) for local development and tests.
package sqldb

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultTimeout = 5 * time.Second
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Config captures the settings for opening the relational database.
type Config struct {
	Driver  string
	URL     string
	Timeout time.Duration
}

// Dialect holds the few SQL fragments that differ between drivers.
type Dialect struct {
	Name string
	// ForUpdate is appended to row reads that must lock inside a transaction.
	ForUpdate string
	// Day formats a timestamp column as YYYY-MM-DD (UTC).
	Day func(column string) string
}

var (
	postgresDialect = Dialect{
		Name:      DriverPostgres,
		ForUpdate: " FOR UPDATE",
		Day: func(col string) string {
			return fmt.Sprintf("TO_CHAR(%s AT TIME ZONE 'UTC', 'YYYY-MM-DD')", col)
		},
	}
	sqliteDialect = Dialect{
		Name: DriverSQLite,
		Day: func(col string) string {
			return fmt.Sprintf("substr(%s, 1, 10)", col)
		},
	}
)

// DB is an open relational database together with its dialect.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open connects to the configured driver and validates connectivity with a
// ping. SQLite is limited to a single connection so that transactions are
// serialised, which is what gives checkout its isolation there.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var (
		db      *sql.DB
		dialect Dialect
		err     error
	)
	switch cfg.Driver {
	case DriverPostgres:
		db, err = sql.Open("postgres", cfg.URL)
		dialect = postgresDialect
	case DriverSQLite:
		db, err = sql.Open("sqlite", sqliteDSN(cfg.URL))
		dialect = sqliteDialect
	default:
		return nil, fmt.Errorf("sqldb: unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("sqldb open: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqldb ping: %w", err)
	}

	return &DB{DB: db, Dialect: dialect}, nil
}

// sqliteDSN enables foreign keys, a busy timeout and a sortable time format
// unless the caller configured them explicitly.
func sqliteDSN(dsn string) string {
	params := []string{}
	if !strings.Contains(dsn, "foreign_keys") {
		params = append(params, "_pragma=foreign_keys(1)")
	}
	if !strings.Contains(dsn, "busy_timeout") {
		params = append(params, "_pragma=busy_timeout(5000)")
	}
	if !strings.Contains(dsn, "_time_format") {
		params = append(params, "_time_format=sqlite")
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// Migrate applies the embedded migrations for the database's dialect.
func Migrate(db *DB) error {
	src, err := iofs.New(migrationsFS, "migrations/"+db.Dialect.Name)
	if err != nil {
		return fmt.Errorf("could not open migrations: %w", err)
	}

	var driver database.Driver
	switch db.Dialect.Name {
	case DriverPostgres:
		driver, err = postgres.WithInstance(db.DB, &postgres.Config{})
	default:
		driver, err = sqlite.WithInstance(db.DB, &sqlite.Config{})
	}
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, db.Dialect.Name, driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *moderncsqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	var liteErr *moderncsqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return false
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
