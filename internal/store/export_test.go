package store

// NewTestDatabase returns an unconnected handle for exercising driver-specific helpers
func NewTestDatabase(driver string) *Database {
	return &Database{driver: driver}
}

// ReadOnlyDSN exposes the SQLite DSN rewrite
var ReadOnlyDSN = readOnlyDSN
