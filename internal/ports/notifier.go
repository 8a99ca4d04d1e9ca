package ports

import (
	"context"

	"callbreak/internal/domain"
)

// Notifier delivers game notifications to players. The session engine
// only depends on this interface; the transport (match broadcast,
// console rendering in simulations) lives behind it.
type Notifier interface {
	// NotifyHand delivers a freshly dealt hand to a single player.
	NotifyHand(ctx context.Context, playerID string, hand []domain.Card) error

	// NotifyTurn tells everyone whose turn it is.
	NotifyTurn(ctx context.Context, playerID string, seat int) error

	// NotifyTrickResult announces the trick winner to the table.
	NotifyTrickResult(ctx context.Context, winnerID string, winning domain.Card) error

	// NotifyGameOver publishes the end-of-round report.
	NotifyGameOver(ctx context.Context, report domain.RoundReport) error
}
