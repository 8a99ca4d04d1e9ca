package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"callbreak/internal/domain"
	"callbreak/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	snapshotCollection = "callbreak"
	snapshotKey        = "session"
)

// NakamaSnapshotAdapter implements ports.SnapshotStore on Nakama's
// storage engine. The session is kept as a single system-owned object.
type NakamaSnapshotAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaSnapshotAdapter creates a new snapshot adapter.
func NewNakamaSnapshotAdapter(nk runtime.NakamaModule) *NakamaSnapshotAdapter {
	return &NakamaSnapshotAdapter{nk: nk}
}

// Load returns the last saved session, or a fresh idle session when no
// snapshot exists yet.
func (a *NakamaSnapshotAdapter) Load(ctx context.Context) (*domain.Session, error) {
	objects, err := a.nk.StorageRead(ctx, []*runtime.StorageRead{
		{
			Collection: snapshotCollection,
			Key:        snapshotKey,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read session snapshot: %w", err)
	}
	if len(objects) == 0 {
		return domain.NewSession(), nil
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(objects[0].Value), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session snapshot: %w", err)
	}
	return &sess, nil
}

// Save replaces the stored snapshot with the current session.
func (a *NakamaSnapshotAdapter) Save(ctx context.Context, sess *domain.Session) error {
	value, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session snapshot: %w", err)
	}

	_, err = a.nk.StorageWrite(ctx, []*runtime.StorageWrite{
		{
			Collection:      snapshotCollection,
			Key:             snapshotKey,
			Value:           string(value),
			PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write session snapshot: %w", err)
	}
	return nil
}

var _ ports.SnapshotStore = (*NakamaSnapshotAdapter)(nil)
