package main

import (
	"math/rand"
	"testing"

	"callbreak/internal/app"
	"callbreak/internal/domain"
)

func TestSeatAgentsJoinsRequestedCount(t *testing.T) {
	svc := app.NewService(rand.New(rand.NewSource(1)))
	sess := domain.NewSession()

	agents, names, err := seatAgents(svc, sess, 3, 1)
	if err != nil {
		t.Fatalf("seatAgents: %v", err)
	}
	if len(sess.Roster) != 3 {
		t.Fatalf("roster has %d seats, want 3", len(sess.Roster))
	}
	for _, id := range sess.Roster {
		if agents[id] == nil {
			t.Fatalf("no agent seated for %s", id)
		}
		if names[id] == "" {
			t.Fatalf("no display name for %s", id)
		}
	}
}

func TestSeatAgentsCoversResumedRoster(t *testing.T) {
	svc := app.NewService(rand.New(rand.NewSource(1)))

	// A resumed snapshot can carry more seats than the run requests.
	sess := domain.NewSession()
	for _, id := range []string{"sim-1", "sim-2", "sim-3"} {
		if _, err := svc.Join(sess, id); err != nil {
			t.Fatalf("Join(%s): %v", id, err)
		}
	}

	agents, _, err := seatAgents(svc, sess, 2, 1)
	if err != nil {
		t.Fatalf("seatAgents: %v", err)
	}
	if len(sess.Roster) != 3 {
		t.Fatalf("roster has %d seats, want the resumed 3", len(sess.Roster))
	}
	for _, id := range sess.Roster {
		if agents[id] == nil {
			t.Fatalf("resumed seat %s has no agent", id)
		}
	}
}
