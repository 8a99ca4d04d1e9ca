package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"callbreak/internal/domain"
	"callbreak/internal/ports"

	_ "modernc.org/sqlite"
)

// SnapshotStore persists the session aggregate in a local SQLite file.
// It backs the standalone simulator, where no Nakama storage exists.
type SnapshotStore struct {
	db *sql.DB
}

// Open opens (or creates) the snapshot database at path.
func Open(path string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot db: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS snapshots (
		id         INTEGER PRIMARY KEY CHECK (id = 1),
		session    TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create snapshot schema: %w", err)
	}

	return &SnapshotStore{db: db}, nil
}

// Load returns the saved session, or a fresh idle session when the
// store is empty.
func (s *SnapshotStore) Load(ctx context.Context) (*domain.Session, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT session FROM snapshots WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewSession(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &sess, nil
}

// Save replaces the stored snapshot with the current session.
func (s *SnapshotStore) Save(ctx context.Context, sess *domain.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, session, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET session = excluded.session, updated_at = CURRENT_TIMESTAMP`,
		string(raw))
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

var _ ports.SnapshotStore = (*SnapshotStore)(nil)
