package domain

// Phase represents the lifecycle stage of a table session.
type Phase string

const (
	// PhaseIdle indicates the table is waiting for a deal.
	PhaseIdle Phase = "idle"
	// PhaseBidding indicates hands are dealt and bids are being collected.
	PhaseBidding Phase = "bidding"
	// PhasePlaying indicates tricks are actively being played.
	PhasePlaying Phase = "playing"
	// PhaseFinished indicates the round has resolved and scoring has run.
	PhaseFinished Phase = "finished"
)

// PlayedCard is one card on the table together with who played it.
type PlayedCard struct {
	PlayerID string `json:"player_id"`
	Card     Card   `json:"card"`
}

// Session is the authoritative aggregate for a single table. Insertion
// order of Roster defines seating and turn order. All fields round-trip
// through JSON so the aggregate can be snapshotted and restored.
type Session struct {
	Phase  Phase    `json:"phase"`
	Roster []string `json:"roster"`

	OwnerID string `json:"owner_id"`

	Hands     map[string][]Card  `json:"hands"`
	Bids      map[string]int     `json:"bids"`
	TricksWon map[string]int     `json:"tricks_won"`
	Scores    map[string]float64 `json:"scores"`

	CurrentTrick []PlayedCard `json:"current_trick"`
	TurnIndex    int          `json:"turn_index"`

	Round   int   `json:"round"`
	BaseBet int64 `json:"base_bet"`
}

// NewSession returns an empty idle session for round 1.
func NewSession() *Session {
	return &Session{
		Phase:     PhaseIdle,
		Hands:     map[string][]Card{},
		Bids:      map[string]int{},
		TricksWon: map[string]int{},
		Scores:    map[string]float64{},
		Round:     1,
	}
}

// SeatOf returns the seat index of the given player, or -1 if absent.
func (s *Session) SeatOf(playerID string) int {
	for i, id := range s.Roster {
		if id == playerID {
			return i
		}
	}
	return -1
}

// CurrentPlayerID returns the id of the player expected to act, or ""
// when the roster is empty.
func (s *Session) CurrentPlayerID() string {
	if len(s.Roster) == 0 || s.TurnIndex < 0 || s.TurnIndex >= len(s.Roster) {
		return ""
	}
	return s.Roster[s.TurnIndex]
}

// NextSeat returns the seat after i in seating order, wrapping.
func (s *Session) NextSeat(i int) int {
	if len(s.Roster) == 0 {
		return 0
	}
	return (i + 1) % len(s.Roster)
}

// LeadSuit returns the suit led in the current trick. ok is false while
// the trick is empty.
func (s *Session) LeadSuit() (Suit, bool) {
	if len(s.CurrentTrick) == 0 {
		return 0, false
	}
	return s.CurrentTrick[0].Card.Suit, true
}

// BidsComplete reports whether every roster member has a recorded bid.
func (s *Session) BidsComplete() bool {
	if len(s.Roster) == 0 {
		return false
	}
	for _, id := range s.Roster {
		if _, ok := s.Bids[id]; !ok {
			return false
		}
	}
	return true
}

// HandsEmpty reports whether every roster member has played out their hand.
func (s *Session) HandsEmpty() bool {
	for _, id := range s.Roster {
		if len(s.Hands[id]) > 0 {
			return false
		}
	}
	return true
}

// ResetRound clears per-round state and returns the table to Idle,
// keeping the roster and cumulative scores. The round counter advances.
func (s *Session) ResetRound() {
	s.Phase = PhaseIdle
	s.Hands = map[string][]Card{}
	s.Bids = map[string]int{}
	s.TricksWon = map[string]int{}
	for _, id := range s.Roster {
		s.TricksWon[id] = 0
	}
	s.CurrentTrick = nil
	s.TurnIndex = 0
	s.Round++
}

// ResetAll wipes the session entirely: roster, scores and round counter.
func (s *Session) ResetAll() {
	s.Phase = PhaseIdle
	s.Roster = nil
	s.OwnerID = ""
	s.Hands = map[string][]Card{}
	s.Bids = map[string]int{}
	s.TricksWon = map[string]int{}
	s.Scores = map[string]float64{}
	s.CurrentTrick = nil
	s.TurnIndex = 0
	s.Round = 1
	s.BaseBet = 0
}
