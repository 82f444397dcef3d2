package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type Options struct {
	Driver          string
	DataSource      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	RetryAttempts   int
	RetryDelay      time.Duration
	PingTimeout     time.Duration
}

type Option func(*Options)

func WithDriver(driver string) Option {
	return func(o *Options) { o.Driver = driver }
}

func WithDataSource(dsn string) Option {
	return func(o *Options) { o.DataSource = dsn }
}

func WithMaxOpenConns(count int) Option {
	return func(o *Options) { o.MaxOpenConns = count }
}

func WithMaxIdleConns(count int) Option {
	return func(o *Options) { o.MaxIdleConns = count }
}

func WithConnMaxLifetime(duration time.Duration) Option {
	return func(o *Options) { o.ConnMaxLifetime = duration }
}

func WithRetry(attempts int, delay time.Duration) Option {
	return func(o *Options) {
		o.RetryAttempts = attempts
		o.RetryDelay = delay
	}
}

func WithPingTimeout(timeout time.Duration) Option {
	return func(o *Options) { o.PingTimeout = timeout }
}

// New opens a connection pool and verifies it with a ping, retrying with a
// linear backoff. An in-memory sqlite DSN is pinned to a single connection
// because every new connection would otherwise see an empty database.
func New(ctx context.Context, opts ...Option) (*sql.DB, error) {
	options := &Options{
		Driver:          DriverSQLite,
		DataSource:      ":memory:",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 2 * time.Minute,
		RetryAttempts:   3,
		RetryDelay:      time.Second,
		PingTimeout:     5 * time.Second,
	}

	for _, opt := range opts {
		opt(options)
	}

	if options.Driver == "" {
		return nil, fmt.Errorf("database driver cannot be empty")
	}
	if options.DataSource == "" {
		return nil, fmt.Errorf("database data source cannot be empty")
	}
	if options.RetryAttempts < 1 {
		options.RetryAttempts = 1
	}
	if options.Driver == DriverSQLite && isMemoryDSN(options.DataSource) {
		options.MaxOpenConns = 1
		options.MaxIdleConns = 1
		options.ConnMaxLifetime = 0
		options.ConnMaxIdleTime = 0
	}

	if options.Driver == DriverSQLite {
		if err := ensureSQLiteDir(options.DataSource); err != nil {
			return nil, err
		}
	}

	var db *sql.DB
	var err error

	for i := 0; i < options.RetryAttempts; i++ {
		db, err = sql.Open(options.Driver, options.DataSource)
		if err == nil {
			db.SetMaxOpenConns(options.MaxOpenConns)
			db.SetMaxIdleConns(options.MaxIdleConns)
			db.SetConnMaxLifetime(options.ConnMaxLifetime)
			db.SetConnMaxIdleTime(options.ConnMaxIdleTime)

			pingCtx, cancel := context.WithTimeout(ctx, options.PingTimeout)
			err = db.PingContext(pingCtx)
			cancel()
			if err == nil {
				return db, nil
			}
			db.Close()
		}

		if i < options.RetryAttempts-1 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("database connect canceled: %w", ctx.Err())
			case <-time.After(time.Duration(i+1) * options.RetryDelay):
			}
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", options.RetryAttempts, err)
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.HasPrefix(dsn, "file::memory:") || strings.Contains(dsn, "mode=memory")
}

// sqlitePath returns the file a sqlite DSN points at, or "" for in-memory
// databases.
func sqlitePath(dsn string) string {
	if isMemoryDSN(dsn) {
		return ""
	}
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return path
}

// ensureSQLiteDir creates the parent directory of a file-backed sqlite
// database; the driver creates the file but not its directory.
func ensureSQLiteDir(dsn string) error {
	path := sqlitePath(dsn)
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create database directory %q: %w", dir, err)
	}
	return nil
}

// Rebind rewrites '?' placeholders into the positional form the driver
// expects. Placeholders inside single-quoted literals are left alone.
func Rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	out := make([]byte, 0, len(query)+8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			out = append(out, c)
		case c == '?' && !inQuote:
			n++
			out = append(out, '$')
			out = append(out, fmt.Sprint(n)...)
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

// Migrate executes each statement in order inside one transaction.
func Migrate(ctx context.Context, db *sql.DB, statements ...string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration statement %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}
