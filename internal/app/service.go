package app

import (
	"errors"
	"math/rand"
	"time"

	"callbreak/internal/domain"
)

// Service contains the Call Break use-cases operating on a Session.
// Every operation validates fully before mutating, so a returned error
// always leaves the session untouched.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with the provided rng or a time-seeded default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

var (
	ErrAlreadyInProgress   = errors.New("game already in progress")
	ErrAlreadyJoined       = errors.New("player already at the table")
	ErrNotInRoster         = errors.New("player not at the table")
	ErrTableFull           = errors.New("table is full")
	ErrInsufficientPlayers = errors.New("not enough players to start")
	ErrNotOwner            = errors.New("actor is not the table owner")
	ErrWrongPhase          = errors.New("operation not allowed in this phase")
	ErrNotInGame           = errors.New("player not in the game")
	ErrDuplicateBid        = errors.New("bid already placed")
	ErrInvalidBid          = errors.New("bid out of range")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrCardNotHeld         = errors.New("card not in hand")
	ErrMustBeatLeadSuit    = errors.New("must play a higher card of the lead suit")
	ErrMustThrowTrump      = errors.New("must throw a spade")
)

// Join adds a player to the roster while the table is idle. The first
// player to join becomes the table owner.
func (s *Service) Join(sess *domain.Session, playerID string) ([]Event, error) {
	if sess.Phase != domain.PhaseIdle {
		return nil, ErrAlreadyInProgress
	}
	if sess.SeatOf(playerID) >= 0 {
		return nil, ErrAlreadyJoined
	}
	if len(sess.Roster) >= MaxPlayers {
		return nil, ErrTableFull
	}

	sess.Roster = append(sess.Roster, playerID)
	sess.TricksWon[playerID] = 0
	if _, ok := sess.Scores[playerID]; !ok {
		sess.Scores[playerID] = 0
	}
	owner := false
	if sess.OwnerID == "" {
		sess.OwnerID = playerID
		owner = true
	}

	return []Event{{
		Kind: EventPlayerJoined,
		Payload: PlayerJoinedPayload{
			PlayerID: playerID,
			Seat:     len(sess.Roster) - 1,
			Owner:    owner,
		},
	}}, nil
}

// Leave removes a player and all their per-round data. If the departing
// player held the turn, the turn passes to the next remaining seat. An
// emptied roster resets the session entirely.
func (s *Service) Leave(sess *domain.Session, playerID string) ([]Event, error) {
	seat := sess.SeatOf(playerID)
	if seat < 0 {
		return nil, ErrNotInRoster
	}

	sess.Roster = append(sess.Roster[:seat], sess.Roster[seat+1:]...)
	delete(sess.Hands, playerID)
	delete(sess.Bids, playerID)
	delete(sess.TricksWon, playerID)
	delete(sess.Scores, playerID)

	if len(sess.CurrentTrick) > 0 {
		kept := sess.CurrentTrick[:0]
		for _, pc := range sess.CurrentTrick {
			if pc.PlayerID != playerID {
				kept = append(kept, pc)
			}
		}
		sess.CurrentTrick = kept
	}

	if seat < sess.TurnIndex {
		sess.TurnIndex--
	}
	if len(sess.Roster) > 0 && sess.TurnIndex >= len(sess.Roster) {
		sess.TurnIndex = 0
	}

	newOwner := ""
	if sess.OwnerID == playerID {
		sess.OwnerID = ""
		if len(sess.Roster) > 0 {
			sess.OwnerID = sess.Roster[0]
			newOwner = sess.OwnerID
		}
	}

	events := []Event{{
		Kind:    EventPlayerLeft,
		Payload: PlayerLeftPayload{PlayerID: playerID, NewOwnerID: newOwner},
	}}

	if len(sess.Roster) == 0 {
		sess.ResetAll()
		return append(events, Event{
			Kind:    EventSessionReset,
			Payload: SessionResetPayload{Round: sess.Round, Full: true},
		}), nil
	}

	// A departure can complete what the table was waiting on.
	switch sess.Phase {
	case domain.PhaseBidding:
		if sess.BidsComplete() {
			events = append(events, s.beginPlaying(sess)...)
		}
	case domain.PhasePlaying:
		events = append(events, s.advancePlay(sess)...)
	}

	return events, nil
}

// Start shuffles and deals a fresh round: the roster is partitioned into
// equal blocks in seating order and any remainder is set aside undealt.
// Calling it again fully replaces all hands and zeroes trick counters.
// Only the table owner may deal.
func (s *Service) Start(sess *domain.Session, actorID string, baseBet int64) ([]Event, error) {
	if sess.SeatOf(actorID) < 0 {
		return nil, ErrNotInRoster
	}
	if actorID != sess.OwnerID {
		return nil, ErrNotOwner
	}
	if len(sess.Roster) < MinPlayersToStart {
		return nil, ErrInsufficientPlayers
	}

	deck := domain.NewDeck()
	s.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	n := len(sess.Roster)
	block := len(deck) / n
	undealt := len(deck) % n

	sess.Hands = make(map[string][]domain.Card, n)
	sess.Bids = map[string]int{}
	sess.TricksWon = make(map[string]int, n)
	sess.CurrentTrick = nil
	sess.BaseBet = baseBet

	events := make([]Event, 0, n+1)
	for i, id := range sess.Roster {
		hand := domain.SortHand(deck[i*block : (i+1)*block])
		sess.Hands[id] = hand
		sess.TricksWon[id] = 0
		events = append(events, Event{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{PlayerID: id, Hand: hand},
			Recipients: []string{id},
		})
	}

	sess.Phase = domain.PhaseBidding
	events = append(events, Event{
		Kind: EventBiddingStarted,
		Payload: BiddingStartedPayload{
			Round:    sess.Round,
			HandSize: block,
			Undealt:  undealt,
		},
	})
	return events, nil
}

// Bid records one bid per player during the bidding phase. The last bid
// moves the table to the playing phase with a randomly chosen first turn.
func (s *Service) Bid(sess *domain.Session, playerID string, amount int) ([]Event, error) {
	if sess.SeatOf(playerID) < 0 {
		return nil, ErrNotInGame
	}
	if sess.Phase != domain.PhaseBidding {
		return nil, ErrWrongPhase
	}
	if _, dup := sess.Bids[playerID]; dup {
		return nil, ErrDuplicateBid
	}
	if amount < 0 || amount > MaxBid {
		return nil, ErrInvalidBid
	}

	sess.Bids[playerID] = amount
	events := []Event{{
		Kind: EventBidPlaced,
		Payload: BidPlacedPayload{
			PlayerID:  playerID,
			Bid:       amount,
			Remaining: len(sess.Roster) - len(sess.Bids),
		},
	}}

	if sess.BidsComplete() {
		events = append(events, s.beginPlaying(sess)...)
	}
	return events, nil
}

// Play validates and applies one card play, resolving the trick and the
// round as they complete.
func (s *Service) Play(sess *domain.Session, playerID string, card domain.Card) ([]Event, error) {
	if sess.Phase != domain.PhasePlaying {
		return nil, ErrWrongPhase
	}
	if sess.CurrentPlayerID() != playerID {
		return nil, ErrNotYourTurn
	}
	hand := sess.Hands[playerID]
	if !domain.ContainsCard(hand, card) {
		return nil, ErrCardNotHeld
	}
	switch domain.RulePlay(hand, sess.CurrentTrick, card) {
	case domain.RulingMustBeatLeadSuit:
		return nil, ErrMustBeatLeadSuit
	case domain.RulingMustThrowTrump:
		return nil, ErrMustThrowTrump
	}

	seat := sess.SeatOf(playerID)
	sess.Hands[playerID], _ = domain.RemoveCard(hand, card)
	sess.CurrentTrick = append(sess.CurrentTrick, domain.PlayedCard{PlayerID: playerID, Card: card})
	sess.TurnIndex = sess.NextSeat(seat)

	events := []Event{{
		Kind:    EventCardPlayed,
		Payload: CardPlayedPayload{PlayerID: playerID, Seat: seat, Card: card},
	}}
	return append(events, s.advancePlay(sess)...), nil
}

// ScoreLine is one row of the scoreboard.
type ScoreLine struct {
	PlayerID  string  `json:"player_id"`
	Score     float64 `json:"score"`
	Bid       int     `json:"bid"`
	HasBid    bool    `json:"has_bid"`
	TricksWon int     `json:"tricks_won"`
}

// Scoreboard reports cumulative scores and the running round state in
// seating order. Valid in any phase.
func (s *Service) Scoreboard(sess *domain.Session) []ScoreLine {
	lines := make([]ScoreLine, 0, len(sess.Roster))
	for _, id := range sess.Roster {
		bid, hasBid := sess.Bids[id]
		lines = append(lines, ScoreLine{
			PlayerID:  id,
			Score:     sess.Scores[id],
			Bid:       bid,
			HasBid:    hasBid,
			TricksWon: sess.TricksWon[id],
		})
	}
	return lines
}

// Reset wipes the table completely: roster, scores and round counter.
// Resetting an already idle empty table is a no-op.
func (s *Service) Reset(sess *domain.Session) []Event {
	sess.ResetAll()
	return []Event{{
		Kind:    EventSessionReset,
		Payload: SessionResetPayload{Round: sess.Round, Full: true},
	}}
}

// beginPlaying transitions Bidding -> Playing and picks the first turn
// uniformly at random among the roster.
func (s *Service) beginPlaying(sess *domain.Session) []Event {
	sess.Phase = domain.PhasePlaying
	sess.TurnIndex = s.rng.Intn(len(sess.Roster))
	first := sess.CurrentPlayerID()
	return []Event{
		{
			Kind:    EventPlayingStarted,
			Payload: PlayingStartedPayload{FirstPlayerID: first, FirstSeat: sess.TurnIndex},
		},
		{
			Kind:    EventTurn,
			Payload: TurnPayload{PlayerID: first, Seat: sess.TurnIndex},
		},
	}
}

// advancePlay resolves a completed trick, finishes the round once all
// hands are empty, and otherwise announces whose turn it is.
func (s *Service) advancePlay(sess *domain.Session) []Event {
	var events []Event

	if n := len(sess.Roster); n > 0 && len(sess.CurrentTrick) >= n {
		winner := domain.TrickWinner(sess.CurrentTrick)
		sess.TricksWon[winner.PlayerID]++
		sess.CurrentTrick = nil
		sess.TurnIndex = sess.SeatOf(winner.PlayerID)
		events = append(events, Event{
			Kind: EventTrickResolved,
			Payload: TrickResolvedPayload{
				WinnerID:    winner.PlayerID,
				WinningCard: winner.Card,
				TricksWon:   sess.TricksWon[winner.PlayerID],
			},
		})
	}

	if sess.HandsEmpty() {
		return append(events, s.finishRound(sess)...)
	}

	current := sess.CurrentPlayerID()
	return append(events, Event{
		Kind:    EventTurn,
		Payload: TurnPayload{PlayerID: current, Seat: sess.TurnIndex},
	})
}

// finishRound scores the round, accumulates totals, settles chips and
// performs the implicit round reset back to Idle.
func (s *Service) finishRound(sess *domain.Session) []Event {
	sess.Phase = domain.PhaseFinished
	report := sess.BuildRoundReport()
	for _, r := range report.Results {
		sess.Scores[r.PlayerID] = r.TotalScore
	}
	changes := domain.CalculateSettlement(report, sess.BaseBet)

	sess.ResetRound()
	return []Event{
		{
			Kind:    EventGameEnded,
			Payload: GameEndedPayload{Report: report, BalanceChanges: changes},
		},
		{
			Kind:    EventSessionReset,
			Payload: SessionResetPayload{Round: sess.Round, Full: false},
		},
	}
}
