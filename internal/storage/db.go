// Package storage persists built session tables so a restart does not have
// to recompute decades of schedule before serving queries.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Profile selects the durability/speed trade-off for a database.
type Profile string

const (
	// ProfileCache favors speed. The session cache is derived data and can
	// always be rebuilt from the definitions.
	ProfileCache Profile = "cache"
	// ProfileStandard is the balanced configuration.
	ProfileStandard Profile = "standard"
)

// DB wraps a SQLite connection with the pool and PRAGMA configuration used
// throughout the service.
type DB struct {
	conn    *sql.DB
	path    string
	profile Profile
}

// Config holds database configuration.
type Config struct {
	Path    string
	Profile Profile
}

// Open opens (creating if necessary) the database at cfg.Path.
func Open(cfg Config) (*DB, error) {
	absPath, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	if cfg.Profile == "" {
		cfg.Profile = ProfileStandard
	}

	conn, err := sql.Open("sqlite", connectionString(absPath, cfg.Profile))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	configurePool(conn, cfg.Profile)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{conn: conn, path: absPath, profile: cfg.Profile}, nil
}

// connectionString builds the SQLite DSN with profile-specific PRAGMAs.
func connectionString(path string, profile Profile) string {
	connStr := path + "?_pragma=journal_mode(WAL)"

	switch profile {
	case ProfileCache:
		connStr += "&_pragma=synchronous(OFF)"   // Derived data, rebuildable
		connStr += "&_pragma=auto_vacuum(FULL)"  // Auto-reclaim space
		connStr += "&_pragma=temp_store(MEMORY)" // Temp tables in RAM
	case ProfileStandard:
		connStr += "&_pragma=synchronous(NORMAL)"      // Fsync at checkpoints
		connStr += "&_pragma=auto_vacuum(INCREMENTAL)" // Gradual space reclamation
		connStr += "&_pragma=temp_store(MEMORY)"
	}

	connStr += "&_pragma=foreign_keys(1)"
	connStr += "&_pragma=wal_autocheckpoint(1000)" // Checkpoint every 1000 pages
	connStr += "&_pragma=cache_size(-64000)"       // 64MB cache (negative = KB)

	return connStr
}

func configurePool(conn *sql.DB, profile Profile) {
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(1 * time.Hour)
	conn.SetConnMaxIdleTime(10 * time.Minute)

	// Cache traffic is bursty around rebuilds, not sustained.
	if profile == ProfileCache {
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(2)
	}
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Migrate applies the schema. Statements are idempotent so Migrate is safe
// to run on every startup.
func (db *DB) Migrate() error {
	schema := `
CREATE TABLE IF NOT EXISTS schedules (
	exchange     TEXT NOT NULL,
	fingerprint  TEXT NOT NULL,
	build_id     TEXT NOT NULL,
	range_start  TEXT NOT NULL,
	range_end    TEXT NOT NULL,
	built_at     TEXT NOT NULL,
	PRIMARY KEY (exchange)
);

CREATE TABLE IF NOT EXISTS sessions (
	exchange      TEXT NOT NULL,
	label         TEXT NOT NULL,
	market_open   TEXT NOT NULL,
	market_close  TEXT NOT NULL,
	break_start   TEXT,
	break_end     TEXT,
	early_close   INTEGER NOT NULL DEFAULT 0,
	late_open     INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (exchange, label),
	FOREIGN KEY (exchange) REFERENCES schedules(exchange) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_sessions_exchange_label ON sessions(exchange, label);
`
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	if _, err := tx.Exec(schema); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema: %w", err)
	}
	return nil
}

// HealthCheck pings the database and runs an integrity check.
func (db *DB) HealthCheck(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	var result string
	if err := db.conn.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check query failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

// QuickCheck performs a quick health check (just ping).
func (db *DB) QuickCheck(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// WALCheckpoint forces a WAL checkpoint to prevent bloat. Mode is one of
// PASSIVE, FULL, RESTART, TRUNCATE; empty defaults to TRUNCATE.
func (db *DB) WALCheckpoint(mode string) error {
	if mode == "" {
		mode = "TRUNCATE"
	}
	if _, err := db.conn.Exec(fmt.Sprintf("PRAGMA wal_checkpoint(%s)", mode)); err != nil {
		return fmt.Errorf("WAL checkpoint failed: %w", err)
	}
	return nil
}
