package storage

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	postgresObjectsDDL = `CREATE TABLE IF NOT EXISTS stored_objects (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	content_type TEXT NOT NULL,
	size_bytes BIGINT NOT NULL,
	data BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`
	sqliteObjectsDDL = `CREATE TABLE IF NOT EXISTS stored_objects (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	content_type TEXT NOT NULL,
	size_bytes INTEGER NOT NULL,
	data BLOB NOT NULL,
	created_at TIMESTAMP NOT NULL
)`
)

// DatabaseStorage keeps blobs inside a SQL table. It works against PostgreSQL and
// SQLite; placeholders are rebound for the connected driver.
type DatabaseStorage struct {
	db  *sqlx.DB
	now func() time.Time
}

type storedObject struct {
	Name        string `db:"name"`
	ContentType string `db:"content_type"`
	SizeBytes   int64  `db:"size_bytes"`
	Data        []byte `db:"data"`
}

// NewDatabaseStorage wraps an open connection.
func NewDatabaseStorage(db *sqlx.DB) *DatabaseStorage {
	return &DatabaseStorage{db: db, now: time.Now}
}

// EnsureSchema creates the backing table when missing.
func (s *DatabaseStorage) EnsureSchema(ctx context.Context) error {
	ddl := postgresObjectsDDL
	if sqlx.BindType(s.db.DriverName()) != sqlx.DOLLAR {
		ddl = sqliteObjectsDDL
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure stored_objects table: %w", err)
	}
	return nil
}

// Put buffers r and inserts it as one row. The row id is the locator.
func (s *DatabaseStorage) Put(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read blob: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	id := uuid.NewString()
	query := s.db.Rebind(`INSERT INTO stored_objects (id, name, content_type, size_bytes, data, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query, id, name, contentType, int64(len(data)), data, s.now().UTC()); err != nil {
		return "", fmt.Errorf("insert stored object: %w", err)
	}
	return id, nil
}

// Get loads the blob into memory and returns a reader over it.
func (s *DatabaseStorage) Get(ctx context.Context, locator string) (*Object, error) {
	query := s.db.Rebind(`SELECT name, content_type, size_bytes, data FROM stored_objects WHERE id = ?`)
	var row storedObject
	if err := s.db.GetContext(ctx, &row, query, locator); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("get stored object: %w", err)
	}
	return &Object{
		Body:        io.NopCloser(bytes.NewReader(row.Data)),
		Name:        row.Name,
		ContentType: row.ContentType,
		Size:        row.SizeBytes,
	}, nil
}

// Delete removes the row; a missing row is not an error.
func (s *DatabaseStorage) Delete(ctx context.Context, locator string) error {
	query := s.db.Rebind(`DELETE FROM stored_objects WHERE id = ?`)
	if _, err := s.db.ExecContext(ctx, query, locator); err != nil {
		return fmt.Errorf("delete stored object: %w", err)
	}
	return nil
}
