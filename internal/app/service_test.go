package app

import (
	"errors"
	"math/rand"
	"testing"

	"callbreak/internal/domain"
)

func newTestService() *Service {
	return NewService(rand.New(rand.NewSource(42)))
}

func mustJoin(t *testing.T, svc *Service, sess *domain.Session, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if _, err := svc.Join(sess, id); err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
	}
}

func TestJoinRosterAndCapacity(t *testing.T) {
	svc := newTestService()
	sess := domain.NewSession()

	mustJoin(t, svc, sess, "u1", "u2", "u3", "u4")

	if _, err := svc.Join(sess, "u5"); !errors.Is(err, ErrTableFull) {
		t.Fatalf("join u5 err = %v, want ErrTableFull", err)
	}
	if _, err := svc.Join(sess, "u2"); !errors.Is(err, ErrAlreadyJoined) {
		t.Fatalf("rejoin err = %v, want ErrAlreadyJoined", err)
	}
	if sess.OwnerID != "u1" {
		t.Fatalf("owner = %s, want u1", sess.OwnerID)
	}
	if sess.SeatOf("u3") != 2 {
		t.Fatalf("seat of u3 = %d, want 2", sess.SeatOf("u3"))
	}
}

func TestJoinRejectedOnceDealt(t *testing.T) {
	svc := newTestService()
	sess := domain.NewSession()
	mustJoin(t, svc, sess, "u1", "u2")

	if _, err := svc.Start(sess, "u1", 100); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Join(sess, "u3"); !errors.Is(err, ErrAlreadyInProgress) {
		t.Fatalf("join err = %v, want ErrAlreadyInProgress", err)
	}
}

func TestStartDealsAndConservesDeck(t *testing.T) {
	svc := newTestService()
	sess := domain.NewSession()
	mustJoin(t, svc, sess, "u1", "u2", "u3")

	events, err := svc.Start(sess, "u1", 100)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if sess.Phase != domain.PhaseBidding {
		t.Fatalf("phase = %s, want bidding", sess.Phase)
	}

	seen := make(map[domain.Card]bool)
	for _, id := range sess.Roster {
		hand := sess.Hands[id]
		if len(hand) != 17 {
			t.Fatalf("hand size for %s = %d, want 17", id, len(hand))
		}
		for _, c := range hand {
			if seen[c] {
				t.Fatalf("card %s dealt twice", c)
			}
			seen[c] = true
		}
		if sess.TricksWon[id] != 0 {
			t.Fatalf("tricksWon not zeroed for %s", id)
		}
	}
	if len(seen) != 51 {
		t.Fatalf("dealt %d distinct cards, want 51", len(seen))
	}

	handEvents := 0
	for _, ev := range events {
		switch ev.Kind {
		case EventHandDealt:
			handEvents++
			payload := ev.Payload.(HandDealtPayload)
			if len(ev.Recipients) != 1 || ev.Recipients[0] != payload.PlayerID {
				t.Fatalf("hand for %s not private: recipients %v", payload.PlayerID, ev.Recipients)
			}
		case EventBiddingStarted:
			payload := ev.Payload.(BiddingStartedPayload)
			if payload.Undealt != 1 {
				t.Fatalf("undealt = %d, want 1", payload.Undealt)
			}
			if payload.HandSize != 17 {
				t.Fatalf("hand size = %d, want 17", payload.HandSize)
			}
		}
	}
	if handEvents != 3 {
		t.Fatalf("hand events = %d, want 3", handEvents)
	}
}

func TestStartValidation(t *testing.T) {
	svc := newTestService()
	sess := domain.NewSession()
	mustJoin(t, svc, sess, "u1")

	if _, err := svc.Start(sess, "u1", 100); !errors.Is(err, ErrInsufficientPlayers) {
		t.Fatalf("solo start err = %v, want ErrInsufficientPlayers", err)
	}

	mustJoin(t, svc, sess, "u2")
	if _, err := svc.Start(sess, "u2", 100); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("non-owner start err = %v, want ErrNotOwner", err)
	}
	if _, err := svc.Start(sess, "ghost", 100); !errors.Is(err, ErrNotInRoster) {
		t.Fatalf("outsider start err = %v, want ErrNotInRoster", err)
	}
}

func TestBiddingCompletionTransitions(t *testing.T) {
	svc := newTestService()
	sess := domain.NewSession()
	mustJoin(t, svc, sess, "a", "b", "c")

	if _, err := svc.Bid(sess, "a", 3); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("bid before deal err = %v, want ErrWrongPhase", err)
	}
	if _, err := svc.Start(sess, "a", 0); err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := svc.Bid(sess, "ghost", 1); !errors.Is(err, ErrNotInGame) {
		t.Fatalf("outsider bid err = %v, want ErrNotInGame", err)
	}
	if _, err := svc.Bid(sess, "a", -1); !errors.Is(err, ErrInvalidBid) {
		t.Fatalf("negative bid err = %v, want ErrInvalidBid", err)
	}

	if _, err := svc.Bid(sess, "a", 3); err != nil {
		t.Fatalf("bid a: %v", err)
	}
	if _, err := svc.Bid(sess, "a", 2); !errors.Is(err, ErrDuplicateBid) {
		t.Fatalf("duplicate bid err = %v, want ErrDuplicateBid", err)
	}
	if _, err := svc.Bid(sess, "b", 2); err != nil {
		t.Fatalf("bid b: %v", err)
	}
	if sess.Phase != domain.PhaseBidding {
		t.Fatalf("phase advanced before all bids placed")
	}

	events, err := svc.Bid(sess, "c", 1)
	if err != nil {
		t.Fatalf("bid c: %v", err)
	}
	if sess.Phase != domain.PhasePlaying {
		t.Fatalf("phase = %s, want playing", sess.Phase)
	}
	if sess.TurnIndex < 0 || sess.TurnIndex >= len(sess.Roster) {
		t.Fatalf("turn index %d out of range", sess.TurnIndex)
	}

	started := false
	for _, ev := range events {
		if ev.Kind == EventPlayingStarted {
			started = true
			payload := ev.Payload.(PlayingStartedPayload)
			if payload.FirstPlayerID != sess.Roster[sess.TurnIndex] {
				t.Fatalf("first player %s does not match turn index", payload.FirstPlayerID)
			}
		}
	}
	if !started {
		t.Fatalf("expected playing started event")
	}
}

func TestPlayValidation(t *testing.T) {
	svc := newTestService()
	sess := domain.NewSession()
	sess.Roster = []string{"u1", "u2"}
	sess.OwnerID = "u1"
	sess.Phase = domain.PhasePlaying
	sess.TurnIndex = 0
	sess.Hands = map[string][]domain.Card{
		"u1": {{Suit: domain.Hearts, Rank: 7}},
		"u2": {{Suit: domain.Spades, Rank: 5}, {Suit: domain.Clubs, Rank: 3}},
	}
	sess.TricksWon = map[string]int{"u1": 0, "u2": 0}

	if _, err := svc.Play(sess, "u2", domain.Card{Suit: domain.Clubs, Rank: 3}); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("out-of-turn err = %v, want ErrNotYourTurn", err)
	}
	if _, err := svc.Play(sess, "u1", domain.Card{Suit: domain.Diamonds, Rank: 9}); !errors.Is(err, ErrCardNotHeld) {
		t.Fatalf("unheld card err = %v, want ErrCardNotHeld", err)
	}

	// u1 leads a heart. u2 has no hearts but holds a spade: clubs are illegal.
	if _, err := svc.Play(sess, "u1", domain.Card{Suit: domain.Hearts, Rank: 7}); err != nil {
		t.Fatalf("lead: %v", err)
	}
	if _, err := svc.Play(sess, "u2", domain.Card{Suit: domain.Clubs, Rank: 3}); !errors.Is(err, ErrMustThrowTrump) {
		t.Fatalf("club err = %v, want ErrMustThrowTrump", err)
	}
	if len(sess.Hands["u2"]) != 2 {
		t.Fatalf("rejected play mutated the hand")
	}
	if _, err := svc.Play(sess, "u2", domain.Card{Suit: domain.Spades, Rank: 5}); err != nil {
		t.Fatalf("spade play: %v", err)
	}
}

func TestMustBeatLeadSuit(t *testing.T) {
	svc := newTestService()
	sess := domain.NewSession()
	sess.Roster = []string{"u1", "u2", "u3"}
	sess.OwnerID = "u1"
	sess.Phase = domain.PhasePlaying
	sess.TurnIndex = 0
	sess.Hands = map[string][]domain.Card{
		"u1": {{Suit: domain.Hearts, Rank: 7}, {Suit: domain.Clubs, Rank: 2}},
		"u2": {{Suit: domain.Hearts, Rank: 9}, {Suit: domain.Hearts, Rank: 4}},
		"u3": {{Suit: domain.Diamonds, Rank: 2}, {Suit: domain.Diamonds, Rank: 3}},
	}
	sess.TricksWon = map[string]int{"u1": 0, "u2": 0, "u3": 0}

	if _, err := svc.Play(sess, "u1", domain.Card{Suit: domain.Hearts, Rank: 7}); err != nil {
		t.Fatalf("lead: %v", err)
	}
	if _, err := svc.Play(sess, "u2", domain.Card{Suit: domain.Hearts, Rank: 4}); !errors.Is(err, ErrMustBeatLeadSuit) {
		t.Fatalf("low heart err = %v, want ErrMustBeatLeadSuit", err)
	}
	if _, err := svc.Play(sess, "u2", domain.Card{Suit: domain.Hearts, Rank: 9}); err != nil {
		t.Fatalf("high heart: %v", err)
	}
}

func TestTrickResolutionAndTurnInvariant(t *testing.T) {
	svc := newTestService()
	sess := domain.NewSession()
	sess.Roster = []string{"u1", "u2"}
	sess.OwnerID = "u1"
	sess.Phase = domain.PhasePlaying
	sess.TurnIndex = 0
	sess.Hands = map[string][]domain.Card{
		"u1": {{Suit: domain.Hearts, Rank: 5}, {Suit: domain.Clubs, Rank: 2}},
		"u2": {{Suit: domain.Hearts, Rank: 3}, {Suit: domain.Diamonds, Rank: 7}},
	}
	sess.TricksWon = map[string]int{"u1": 0, "u2": 0}
	sess.Bids = map[string]int{"u1": 2, "u2": 0}

	if _, err := svc.Play(sess, "u1", domain.Card{Suit: domain.Hearts, Rank: 5}); err != nil {
		t.Fatalf("play 1: %v", err)
	}
	if got := sess.CurrentPlayerID(); got != "u2" {
		t.Fatalf("next turn = %s, want u2", got)
	}

	events, err := svc.Play(sess, "u2", domain.Card{Suit: domain.Hearts, Rank: 3})
	if err != nil {
		t.Fatalf("play 2: %v", err)
	}
	if sess.TricksWon["u1"] != 1 {
		t.Fatalf("u1 tricks = %d, want 1", sess.TricksWon["u1"])
	}
	if len(sess.CurrentTrick) != 0 {
		t.Fatalf("trick not cleared after resolution")
	}
	// Winner leads the next trick.
	if got := sess.CurrentPlayerID(); got != "u1" {
		t.Fatalf("leader = %s, want trick winner u1", got)
	}

	resolved := false
	for _, ev := range events {
		if ev.Kind == EventTrickResolved {
			resolved = true
			payload := ev.Payload.(TrickResolvedPayload)
			if payload.WinnerID != "u1" || payload.WinningCard != (domain.Card{Suit: domain.Hearts, Rank: 5}) {
				t.Fatalf("unexpected trick result: %+v", payload)
			}
		}
	}
	if !resolved {
		t.Fatalf("expected trick resolved event")
	}

	// Second trick empties both hands and ends the round.
	if _, err := svc.Play(sess, "u1", domain.Card{Suit: domain.Clubs, Rank: 2}); err != nil {
		t.Fatalf("play 3: %v", err)
	}
	events, err = svc.Play(sess, "u2", domain.Card{Suit: domain.Diamonds, Rank: 7})
	if err != nil {
		t.Fatalf("play 4: %v", err)
	}

	var ended *GameEndedPayload
	for _, ev := range events {
		if ev.Kind == EventGameEnded {
			payload := ev.Payload.(GameEndedPayload)
			ended = &payload
		}
	}
	if ended == nil {
		t.Fatalf("expected game ended event")
	}
	if len(ended.Report.Winners) != 2 {
		t.Fatalf("winners = %v, want both (u1 bid 2 won 2, u2 bid 0 won 0)", ended.Report.Winners)
	}
	if sess.Phase != domain.PhaseIdle {
		t.Fatalf("phase after round = %s, want idle", sess.Phase)
	}
	if sess.Round != 2 {
		t.Fatalf("round = %d, want 2", sess.Round)
	}
}

func TestTwoPlayerFullRoundPlaysOutAllTricks(t *testing.T) {
	svc := newTestService()
	sess := domain.NewSession()
	mustJoin(t, svc, sess, "u1", "u2")

	if _, err := svc.Start(sess, "u1", 0); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Bid(sess, "u1", 13); err != nil {
		t.Fatalf("bid u1: %v", err)
	}
	if _, err := svc.Bid(sess, "u2", 13); err != nil {
		t.Fatalf("bid u2: %v", err)
	}

	tricks := 0
	var ended *GameEndedPayload
	for sess.Phase == domain.PhasePlaying {
		current := sess.CurrentPlayerID()
		hand := sess.Hands[current]
		legal := domain.LegalPlays(hand, sess.CurrentTrick)
		card := domain.Card{}
		for i, ok := range legal {
			if ok {
				card = hand[i]
				break
			}
		}
		if card.IsZero() {
			t.Fatalf("no legal play for %s with hand %v", current, hand)
		}
		events, err := svc.Play(sess, current, card)
		if err != nil {
			t.Fatalf("play %s %s: %v", current, card, err)
		}
		for _, ev := range events {
			switch ev.Kind {
			case EventTrickResolved:
				tricks++
			case EventGameEnded:
				payload := ev.Payload.(GameEndedPayload)
				ended = &payload
			}
		}
	}

	if tricks != 26 {
		t.Fatalf("resolved %d tricks, want 26", tricks)
	}
	if ended == nil {
		t.Fatalf("round never ended")
	}
	total := 0
	for _, r := range ended.Report.Results {
		total += r.TricksWon
	}
	if total != 26 {
		t.Fatalf("tricks won sum to %d, want 26", total)
	}
}

func TestLeave(t *testing.T) {
	svc := newTestService()
	sess := domain.NewSession()
	mustJoin(t, svc, sess, "u1", "u2", "u3")

	if _, err := svc.Leave(sess, "ghost"); !errors.Is(err, ErrNotInRoster) {
		t.Fatalf("leave err = %v, want ErrNotInRoster", err)
	}

	// Owner departure hands the table to the next seat.
	events, err := svc.Leave(sess, "u1")
	if err != nil {
		t.Fatalf("leave u1: %v", err)
	}
	if sess.OwnerID != "u2" {
		t.Fatalf("owner = %s, want u2", sess.OwnerID)
	}
	payload := events[0].Payload.(PlayerLeftPayload)
	if payload.NewOwnerID != "u2" {
		t.Fatalf("new owner in event = %s, want u2", payload.NewOwnerID)
	}

	// Last players leaving resets the session outright.
	if _, err := svc.Leave(sess, "u2"); err != nil {
		t.Fatalf("leave u2: %v", err)
	}
	events, err = svc.Leave(sess, "u3")
	if err != nil {
		t.Fatalf("leave u3: %v", err)
	}
	if len(events) != 2 || events[1].Kind != EventSessionReset {
		t.Fatalf("expected session reset after roster emptied, got %+v", events)
	}
	if sess.Phase != domain.PhaseIdle || len(sess.Roster) != 0 {
		t.Fatalf("session not reset: %+v", sess)
	}
}

func TestLeaveTurnHolderPassesTurn(t *testing.T) {
	svc := newTestService()
	sess := domain.NewSession()
	sess.Roster = []string{"u1", "u2", "u3"}
	sess.OwnerID = "u1"
	sess.Phase = domain.PhasePlaying
	sess.TurnIndex = 1
	sess.Hands = map[string][]domain.Card{
		"u1": {{Suit: domain.Clubs, Rank: 4}},
		"u2": {{Suit: domain.Clubs, Rank: 5}},
		"u3": {{Suit: domain.Clubs, Rank: 6}},
	}
	sess.TricksWon = map[string]int{"u1": 0, "u2": 0, "u3": 0}
	sess.Bids = map[string]int{"u1": 1, "u2": 1, "u3": 1}

	if _, err := svc.Leave(sess, "u2"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if got := sess.CurrentPlayerID(); got != "u3" {
		t.Fatalf("turn = %s, want u3 (next seat after departed holder)", got)
	}
}

func TestLeaveMidTrickDropsPlayedCard(t *testing.T) {
	svc := newTestService()
	sess := domain.NewSession()
	sess.Roster = []string{"u1", "u2", "u3"}
	sess.OwnerID = "u1"
	sess.Phase = domain.PhasePlaying
	sess.TurnIndex = 2
	sess.Hands = map[string][]domain.Card{
		"u1": {{Suit: domain.Diamonds, Rank: 2}},
		"u2": {{Suit: domain.Diamonds, Rank: 3}},
		"u3": {{Suit: domain.Clubs, Rank: 7}, {Suit: domain.Hearts, Rank: 2}},
	}
	sess.TricksWon = map[string]int{"u1": 0, "u2": 0, "u3": 0}
	sess.Bids = map[string]int{"u1": 1, "u2": 1, "u3": 1}
	sess.CurrentTrick = []domain.PlayedCard{
		{PlayerID: "u1", Card: domain.Card{Suit: domain.Clubs, Rank: 5}},
		{PlayerID: "u2", Card: domain.Card{Suit: domain.Clubs, Rank: 9}},
	}

	if _, err := svc.Leave(sess, "u1"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if len(sess.CurrentTrick) != 1 || sess.CurrentTrick[0].PlayerID != "u2" {
		t.Fatalf("trick after leave = %+v, want only u2's card", sess.CurrentTrick)
	}
	if got := sess.CurrentPlayerID(); got != "u3" {
		t.Fatalf("turn = %s, want u3", got)
	}

	// The trick now completes against the shrunken roster.
	if _, err := svc.Play(sess, "u3", domain.Card{Suit: domain.Clubs, Rank: 7}); err != nil {
		t.Fatalf("play: %v", err)
	}
	if sess.TricksWon["u2"] != 1 {
		t.Fatalf("u2 won %d tricks, want 1", sess.TricksWon["u2"])
	}
	if len(sess.CurrentTrick) != 0 {
		t.Fatalf("trick not cleared: %+v", sess.CurrentTrick)
	}
	if got := sess.CurrentPlayerID(); got != "u2" {
		t.Fatalf("turn = %s, want winner u2 to lead", got)
	}
}

func TestResetIsIdempotent(t *testing.T) {
	svc := newTestService()
	sess := domain.NewSession()
	mustJoin(t, svc, sess, "u1", "u2")

	svc.Reset(sess)
	if sess.Phase != domain.PhaseIdle || len(sess.Roster) != 0 || sess.Round != 1 {
		t.Fatalf("unexpected state after reset: %+v", sess)
	}
	svc.Reset(sess)
	if sess.Phase != domain.PhaseIdle || len(sess.Roster) != 0 || sess.Round != 1 {
		t.Fatalf("reset is not idempotent: %+v", sess)
	}
}

func TestScoreboardFollowsSeatingOrder(t *testing.T) {
	svc := newTestService()
	sess := domain.NewSession()
	mustJoin(t, svc, sess, "u1", "u2")
	sess.Scores["u2"] = 4.2
	sess.Bids["u1"] = 3
	sess.TricksWon["u1"] = 2

	lines := svc.Scoreboard(sess)
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if lines[0].PlayerID != "u1" || !lines[0].HasBid || lines[0].Bid != 3 || lines[0].TricksWon != 2 {
		t.Fatalf("unexpected first line: %+v", lines[0])
	}
	if lines[1].PlayerID != "u2" || lines[1].HasBid || lines[1].Score != 4.2 {
		t.Fatalf("unexpected second line: %+v", lines[1])
	}
}
