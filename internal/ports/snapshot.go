package ports

import (
	"context"

	"callbreak/internal/domain"
)

// SnapshotStore persists the full session aggregate so a table can be
// rehydrated after a restart.
type SnapshotStore interface {
	// Load returns the last saved session, or a fresh idle session when
	// nothing has been saved yet.
	Load(ctx context.Context) (*domain.Session, error)

	// Save persists the session. Implementations replace the previous
	// snapshot wholesale.
	Save(ctx context.Context, sess *domain.Session) error
}
