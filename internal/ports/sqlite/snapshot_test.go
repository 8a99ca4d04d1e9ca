package sqlite

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"callbreak/internal/domain"
)

func TestSnapshotRoundTrip(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	// Empty store yields a fresh idle session.
	sess, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if sess.Phase != domain.PhaseIdle || len(sess.Roster) != 0 {
		t.Fatalf("unexpected fresh session: %+v", sess)
	}

	sess.Roster = []string{"u1", "u2"}
	sess.OwnerID = "u1"
	sess.Phase = domain.PhaseBidding
	sess.Bids["u1"] = 3
	sess.Hands["u1"] = []domain.Card{{Suit: domain.Spades, Rank: domain.RankAce}}
	sess.Scores["u1"] = 2.1
	sess.Round = 3

	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(sess, loaded) {
		t.Fatalf("round trip mismatch:\nsaved  %+v\nloaded %+v", sess, loaded)
	}
}

func TestSnapshotOverwrite(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	first := domain.NewSession()
	first.Roster = []string{"u1"}
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}

	second := domain.NewSession()
	second.Roster = []string{"u1", "u2", "u3"}
	second.Round = 5
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Roster) != 3 || loaded.Round != 5 {
		t.Fatalf("older snapshot survived: %+v", loaded)
	}
}
