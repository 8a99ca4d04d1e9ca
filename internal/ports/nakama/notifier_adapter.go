package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"callbreak/internal/app"
	"callbreak/internal/domain"
	"callbreak/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// DispatcherNotifier implements ports.Notifier on top of a Nakama match
// dispatcher. The dispatcher is only available inside match callbacks,
// so it is bound per-callback via Bind.
type DispatcherNotifier struct {
	dispatcher runtime.MatchDispatcher
	lookup     func(userID string) (runtime.Presence, bool)
}

// NewDispatcherNotifier creates a notifier. lookup resolves a user id to
// its connected presence for targeted delivery.
func NewDispatcherNotifier(lookup func(userID string) (runtime.Presence, bool)) *DispatcherNotifier {
	return &DispatcherNotifier{lookup: lookup}
}

// Bind points the notifier at the dispatcher of the current callback.
func (n *DispatcherNotifier) Bind(dispatcher runtime.MatchDispatcher) {
	n.dispatcher = dispatcher
}

// NotifyHand sends a hand privately to one player. Disconnected players
// (including bots) are skipped without error.
func (n *DispatcherNotifier) NotifyHand(ctx context.Context, playerID string, hand []domain.Card) error {
	if n.dispatcher == nil {
		return fmt.Errorf("notifier has no dispatcher bound")
	}
	presence, ok := n.lookup(playerID)
	if !ok {
		return nil
	}
	bytes, err := json.Marshal(app.HandDealtPayload{PlayerID: playerID, Hand: hand})
	if err != nil {
		return err
	}
	return n.dispatcher.BroadcastMessage(OpHandDealt, bytes, []runtime.Presence{presence}, nil, true)
}

// NotifyTurn broadcasts whose turn it is.
func (n *DispatcherNotifier) NotifyTurn(ctx context.Context, playerID string, seat int) error {
	if n.dispatcher == nil {
		return fmt.Errorf("notifier has no dispatcher bound")
	}
	bytes, err := json.Marshal(app.TurnPayload{PlayerID: playerID, Seat: seat})
	if err != nil {
		return err
	}
	return n.dispatcher.BroadcastMessage(OpTurn, bytes, nil, nil, true)
}

// NotifyTrickResult broadcasts the trick winner.
func (n *DispatcherNotifier) NotifyTrickResult(ctx context.Context, winnerID string, winning domain.Card) error {
	if n.dispatcher == nil {
		return fmt.Errorf("notifier has no dispatcher bound")
	}
	bytes, err := json.Marshal(map[string]interface{}{
		"winner_id":    winnerID,
		"winning_card": winning,
	})
	if err != nil {
		return err
	}
	return n.dispatcher.BroadcastMessage(OpTrickResolved, bytes, nil, nil, true)
}

// NotifyGameOver broadcasts the round report.
func (n *DispatcherNotifier) NotifyGameOver(ctx context.Context, report domain.RoundReport) error {
	if n.dispatcher == nil {
		return fmt.Errorf("notifier has no dispatcher bound")
	}
	bytes, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return n.dispatcher.BroadcastMessage(OpGameEnded, bytes, nil, nil, true)
}

var _ ports.Notifier = (*DispatcherNotifier)(nil)
