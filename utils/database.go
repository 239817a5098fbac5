package utils

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Supported database drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// DB is an open database holding the key-value slots.
type DB struct {
	db     *sql.DB
	driver string
}

// OpenDB opens the database and creates the slot table if it is missing.
func OpenDB(ctx context.Context, driver, dsn string) (*DB, error) {
	if driver != DriverSQLite && driver != DriverMySQL {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		// One writer at a time keeps SQLite from returning SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}

	d := &DB{db: db, driver: driver}
	if err := d.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) migrate(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS kv_slots (
		slot_key TEXT PRIMARY KEY,
		slot_value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	)`
	if d.driver == DriverMySQL {
		query = `
	CREATE TABLE IF NOT EXISTS kv_slots (
		slot_key VARCHAR(191) PRIMARY KEY,
		slot_value LONGTEXT NOT NULL,
		updated_at DATETIME NOT NULL
	)`
	}

	if _, err := d.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create kv_slots table: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Driver returns the driver name the database was opened with.
func (d *DB) Driver() string {
	return d.driver
}

func (d *DB) upsertQuery() string {
	if d.driver == DriverMySQL {
		return `
	INSERT INTO kv_slots (slot_key, slot_value, updated_at)
	VALUES (?, ?, ?)
	ON DUPLICATE KEY UPDATE slot_value = VALUES(slot_value), updated_at = VALUES(updated_at)
	`
	}
	return `
	INSERT INTO kv_slots (slot_key, slot_value, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(slot_key) DO UPDATE SET slot_value = excluded.slot_value, updated_at = excluded.updated_at
	`
}
