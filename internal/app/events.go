package app

import "callbreak/internal/domain"

// EventKind identifies emitted app events for adapter dispatch.
type EventKind string

const (
	EventPlayerJoined   EventKind = "player_joined"
	EventPlayerLeft     EventKind = "player_left"
	EventHandDealt      EventKind = "hand_dealt"
	EventBiddingStarted EventKind = "bidding_started"
	EventBidPlaced      EventKind = "bid_placed"
	EventPlayingStarted EventKind = "playing_started"
	EventCardPlayed     EventKind = "card_played"
	EventTrickResolved  EventKind = "trick_resolved"
	EventTurn           EventKind = "turn"
	EventGameEnded      EventKind = "game_ended"
	EventSessionReset   EventKind = "session_reset"
)

// Event is an app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // player IDs; empty means broadcast
}

type PlayerJoinedPayload struct {
	PlayerID string `json:"player_id"`
	Seat     int    `json:"seat"`
	Owner    bool   `json:"owner"`
}

type PlayerLeftPayload struct {
	PlayerID   string `json:"player_id"`
	NewOwnerID string `json:"new_owner_id,omitempty"`
}

type HandDealtPayload struct {
	PlayerID string        `json:"player_id"`
	Hand     []domain.Card `json:"hand"`
}

type BiddingStartedPayload struct {
	Round    int `json:"round"`
	HandSize int `json:"hand_size"`
	Undealt  int `json:"undealt"`
}

type BidPlacedPayload struct {
	PlayerID  string `json:"player_id"`
	Bid       int    `json:"bid"`
	Remaining int    `json:"remaining"`
}

type PlayingStartedPayload struct {
	FirstPlayerID string `json:"first_player_id"`
	FirstSeat     int    `json:"first_seat"`
}

type CardPlayedPayload struct {
	PlayerID string      `json:"player_id"`
	Seat     int         `json:"seat"`
	Card     domain.Card `json:"card"`
}

type TrickResolvedPayload struct {
	WinnerID    string      `json:"winner_id"`
	WinningCard domain.Card `json:"winning_card"`
	TricksWon   int         `json:"tricks_won"`
}

type TurnPayload struct {
	PlayerID string `json:"player_id"`
	Seat     int    `json:"seat"`
}

type GameEndedPayload struct {
	Report         domain.RoundReport `json:"report"`
	BalanceChanges map[string]int64   `json:"balance_changes"`
}

type SessionResetPayload struct {
	Round int  `json:"round"`
	Full  bool `json:"full"`
}
