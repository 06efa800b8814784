package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

// Supported database/sql driver names
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// QueryObserver is notified after every query issued through the Database
type QueryObserver func(name string, elapsed time.Duration, err error)

// Options configures the connection pool
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	Observer        QueryObserver
}

// Database is the read handle to the season statistics store
type Database struct {
	conn     *sql.DB
	driver   string
	dsn      string
	observer QueryObserver
	schema   SchemaInfo
}

// NewDatabase opens a connection pool for the given driver and DSN
func NewDatabase(driver, dsn string, opts Options) (*Database, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	openDSN := dsn
	if driver == DriverSQLite {
		openDSN = readOnlyDSN(dsn)
	}

	db, err := sql.Open(driver, openDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory SQLite database lives and dies with its connection
	if driver == DriverSQLite && isMemoryDSN(dsn) {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	} else {
		db.SetMaxOpenConns(orDefault(opts.MaxOpenConns, 20))
		db.SetMaxIdleConns(orDefault(opts.MaxIdleConns, 5))
		db.SetConnMaxLifetime(orDefaultDuration(opts.ConnMaxLifetime, time.Hour))
		db.SetConnMaxIdleTime(orDefaultDuration(opts.ConnMaxIdleTime, 10*time.Minute))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{
		conn:     db,
		driver:   driver,
		dsn:      dsn,
		observer: opts.Observer,
	}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// DB returns the underlying *sql.DB
func (db *Database) DB() *sql.DB {
	return db.conn
}

// Driver returns the driver name the pool was opened with
func (db *Database) Driver() string {
	return db.driver
}

// Schema returns what VerifySchema discovered about the store
func (db *Database) Schema() SchemaInfo {
	return db.schema
}

// QueryContext rebinds the query for the active driver and runs it
func (db *Database) QueryContext(ctx context.Context, name, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, db.Rebind(query), args...)
	db.observe(name, start, err)
	return rows, err
}

// QueryRowContext rebinds the query for the active driver and runs it.
// Errors surface from Scan, so only latency is observed here.
func (db *Database) QueryRowContext(ctx context.Context, name, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx, db.Rebind(query), args...)
	db.observe(name, start, row.Err())
	return row
}

func (db *Database) observe(name string, start time.Time, err error) {
	if db.observer != nil {
		db.observer(name, time.Since(start), err)
	}
}

// Rebind converts ? placeholders to $n for Postgres. Question marks inside
// single-quoted literals are left alone.
func (db *Database) Rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// HealthCheck performs a health check on the database
func (db *Database) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return db.conn.PingContext(ctx)
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory") || strings.HasPrefix(dsn, "file::memory:")
}

// readOnlyDSN opens file-backed SQLite stores with mode=ro so a missing path
// fails instead of being created empty. In-memory DSNs are left alone.
func readOnlyDSN(dsn string) string {
	if isMemoryDSN(dsn) {
		return dsn
	}
	if strings.HasPrefix(dsn, "file:") {
		if strings.Contains(dsn, "mode=") {
			return dsn
		}
		if strings.Contains(dsn, "?") {
			return dsn + "&mode=ro"
		}
		return dsn + "?mode=ro"
	}
	return "file:" + uriPathEscaper.Replace(dsn) + "?mode=ro"
}

var uriPathEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func orDefaultDuration(v, def time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return def
}
