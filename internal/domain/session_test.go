package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestSessionSnapshotRoundTrip(t *testing.T) {
	s := NewSession()
	s.Phase = PhasePlaying
	s.Roster = []string{"u1", "u2", "u3"}
	s.OwnerID = "u1"
	s.Hands = map[string][]Card{
		"u1": {{Suit: Spades, Rank: 5}},
		"u2": {{Suit: Hearts, Rank: RankAce}},
		"u3": {},
	}
	s.Bids = map[string]int{"u1": 3, "u2": 2, "u3": 1}
	s.TricksWon = map[string]int{"u1": 1, "u2": 0, "u3": 0}
	s.Scores = map[string]float64{"u1": 3.1, "u2": -2}
	s.CurrentTrick = []PlayedCard{
		{PlayerID: "u2", Card: Card{Suit: Hearts, Rank: 7}},
	}
	s.TurnIndex = 2
	s.Round = 4

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	restored := &Session{}
	if err := json.Unmarshal(data, restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(s, restored) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", restored, s)
	}
}

func TestLeadSuit(t *testing.T) {
	s := NewSession()
	if _, ok := s.LeadSuit(); ok {
		t.Fatalf("empty trick should have no lead suit")
	}
	s.CurrentTrick = []PlayedCard{
		{PlayerID: "u1", Card: Card{Suit: Diamonds, Rank: 8}},
		{PlayerID: "u2", Card: Card{Suit: Spades, Rank: 2}},
	}
	suit, ok := s.LeadSuit()
	if !ok || suit != Diamonds {
		t.Fatalf("lead suit = %v ok=%t, want Diamonds", suit, ok)
	}
}

func TestResetRoundKeepsRosterAndScores(t *testing.T) {
	s := NewSession()
	s.Roster = []string{"u1", "u2"}
	s.Phase = PhaseFinished
	s.Scores = map[string]float64{"u1": 2, "u2": -1}
	s.Bids = map[string]int{"u1": 2, "u2": 1}
	s.Hands = map[string][]Card{"u1": {{Suit: Clubs, Rank: 3}}}
	s.Round = 2

	s.ResetRound()

	if s.Phase != PhaseIdle {
		t.Fatalf("phase = %s, want idle", s.Phase)
	}
	if len(s.Roster) != 2 {
		t.Fatalf("roster should survive a round reset")
	}
	if s.Scores["u1"] != 2 {
		t.Fatalf("scores should survive a round reset")
	}
	if len(s.Bids) != 0 || len(s.Hands) != 0 {
		t.Fatalf("bids/hands should be cleared")
	}
	if s.Round != 3 {
		t.Fatalf("round = %d, want 3", s.Round)
	}
}

func TestResetAllIsIdempotent(t *testing.T) {
	s := NewSession()
	s.Roster = []string{"u1"}
	s.OwnerID = "u1"
	s.Scores = map[string]float64{"u1": 5}
	s.Round = 7

	s.ResetAll()
	first, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	s.ResetAll()
	second, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if string(first) != string(second) {
		t.Fatalf("reset twice differs:\n%s\n%s", first, second)
	}
	if s.Phase != PhaseIdle || s.Round != 1 || len(s.Roster) != 0 {
		t.Fatalf("unexpected state after reset: %+v", s)
	}
}
