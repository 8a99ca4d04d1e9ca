package app

const (
	// MinPlayersToStart is the minimum roster size required to deal a round.
	// Keep this centralized so tests or local runs can adjust the rule
	// without touching multiple call sites.
	MinPlayersToStart = 2

	// MaxPlayers caps the roster; a standard Call Break table seats four.
	MaxPlayers = 4

	// MaxBid rejects nonsense bids; a hand never exceeds 13 cards.
	MaxBid = 13
)
