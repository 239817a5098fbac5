package utils

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"done/models"
)

// DefaultKey is the slot name the task list is stored under.
const DefaultKey = "toDoList"

var (
	// ErrNotFound is returned by Load when nothing is stored under the key.
	ErrNotFound = errors.New("no stored task list")

	// ErrCorrupt is returned by Load when the stored value is not a task list.
	ErrCorrupt = errors.New("stored task list is corrupt")
)

// Slot stores exactly one serialized task list.
type Slot interface {
	Load(ctx context.Context) (models.TaskList, error)
	Save(ctx context.Context, list models.TaskList) error
}

// SQLSlot keeps the task list in a row of the kv_slots table.
type SQLSlot struct {
	db  *DB
	key string
}

// NewSQLSlot returns a slot for key. An empty key uses DefaultKey.
func NewSQLSlot(db *DB, key string) *SQLSlot {
	if key == "" {
		key = DefaultKey
	}
	return &SQLSlot{db: db, key: key}
}

// Key returns the slot name.
func (s *SQLSlot) Key() string {
	return s.key
}

// Load reads and decodes the stored task list.
func (s *SQLSlot) Load(ctx context.Context) (models.TaskList, error) {
	data, err := s.Raw(ctx)
	if err != nil {
		return models.TaskList{}, err
	}
	return Decode(data)
}

// Save encodes list and overwrites the stored value.
func (s *SQLSlot) Save(ctx context.Context, list models.TaskList) error {
	data, err := Encode(list)
	if err != nil {
		return err
	}
	return s.PutRaw(ctx, data)
}

// Raw returns the stored bytes without decoding them.
func (s *SQLSlot) Raw(ctx context.Context) ([]byte, error) {
	var value string
	query := "SELECT slot_value FROM kv_slots WHERE slot_key = ?"
	err := s.db.db.QueryRowContext(ctx, query, s.key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %s: %w", s.key, err)
	}
	return []byte(value), nil
}

// PutRaw stores value as-is, bypassing encoding.
func (s *SQLSlot) PutRaw(ctx context.Context, value []byte) error {
	if _, err := s.db.db.ExecContext(ctx, s.db.upsertQuery(), s.key, string(value), time.Now().UTC()); err != nil {
		return fmt.Errorf("write slot %s: %w", s.key, err)
	}
	return nil
}
