// Command simulate runs full Call Break rounds between bot agents on a
// local table. It exercises the same session engine the Nakama match
// handler drives, rendering play to the terminal and optionally
// persisting snapshots to a SQLite file.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"callbreak/internal/app"
	"callbreak/internal/bot"
	"callbreak/internal/config"
	"callbreak/internal/domain"
	"callbreak/internal/ports"
	"callbreak/internal/ports/sqlite"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/pterm/pterm"
)

type simConfig struct {
	Players  int    `env:"CALLBREAK_PLAYERS" envDefault:"4"`
	Rounds   int    `env:"CALLBREAK_ROUNDS" envDefault:"3"`
	Seed     int64  `env:"CALLBREAK_SEED" envDefault:"0"`
	Snapshot string `env:"CALLBREAK_SNAPSHOT"`
	Tier     string `env:"CALLBREAK_TIER"`
	Config   string `env:"CALLBREAK_CONFIG" envDefault:"data/game_config.json"`
}

var agentNames = []string{"Ayla", "Miro", "Suki", "Remy"}

func main() {
	var cfg simConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatal("Failed to parse environment", "err", err)
	}
	if cfg.Players < app.MinPlayersToStart {
		cfg.Players = app.MinPlayersToStart
	}
	if cfg.Players > app.MaxPlayers {
		cfg.Players = app.MaxPlayers
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	if err := config.LoadGameConfig(cfg.Config); err != nil {
		log.Warn("Game config unavailable, using defaults", "path", cfg.Config, "err", err)
	}

	ctx := context.Background()
	rng := rand.New(rand.NewSource(cfg.Seed))
	svc := app.NewService(rng)

	var store *sqlite.SnapshotStore
	sess := domain.NewSession()
	if cfg.Snapshot != "" {
		var err error
		store, err = sqlite.Open(cfg.Snapshot)
		if err != nil {
			log.Fatal("Failed to open snapshot store", "path", cfg.Snapshot, "err", err)
		}
		defer store.Close()

		loaded, err := store.Load(ctx)
		if err != nil {
			log.Fatal("Failed to load snapshot", "err", err)
		}
		if loaded.Phase == domain.PhaseIdle {
			sess = loaded
			log.Info("Resumed table from snapshot", "round", sess.Round)
		} else {
			log.Warn("Snapshot was mid-round, starting fresh", "phase", loaded.Phase)
		}
	}

	agents, names, err := seatAgents(svc, sess, cfg.Players, cfg.Seed)
	if err != nil {
		log.Fatal("Failed to seat agents", "err", err)
	}

	notifier := &consoleNotifier{names: names}

	pterm.DefaultHeader.Printfln("Call Break simulation: %d players, %d rounds, seed %d", cfg.Players, cfg.Rounds, cfg.Seed)

	for round := 0; round < cfg.Rounds; round++ {
		if err := runRound(ctx, svc, sess, agents, notifier, cfg.Tier); err != nil {
			log.Fatal("Round failed", "round", sess.Round, "err", err)
		}
		renderScoreboard(svc, sess, names)

		if store != nil {
			if err := store.Save(ctx, sess); err != nil {
				log.Warn("Failed to save snapshot", "err", err)
			}
		}
	}

	log.Info("Simulation complete", "rounds", cfg.Rounds)
}

// seatAgents joins the requested number of agents and then makes sure
// every roster member has one, so a resumed snapshot with more seats
// than requested still gets all its hands played.
func seatAgents(svc *app.Service, sess *domain.Session, players int, seed int64) (map[string]*bot.Agent, map[string]string, error) {
	agents := make(map[string]*bot.Agent, players)
	names := make(map[string]string, players)
	add := func(i int, id string) {
		name := agentNames[i%len(agentNames)]
		difficulty := "hard"
		if i%2 == 1 {
			difficulty = "normal"
		}
		agents[id] = bot.NewAgent(id, name, difficulty, rand.New(rand.NewSource(seed+int64(i))))
		names[id] = name
	}

	for i := 0; i < players; i++ {
		id := fmt.Sprintf("sim-%d", i+1)
		add(i, id)
		if sess.SeatOf(id) >= 0 {
			continue
		}
		if _, err := svc.Join(sess, id); err != nil {
			return nil, nil, fmt.Errorf("seat %s: %w", id, err)
		}
	}
	for i, id := range sess.Roster {
		if _, ok := agents[id]; !ok {
			add(i, id)
		}
	}
	return agents, names, nil
}

func runRound(ctx context.Context, svc *app.Service, sess *domain.Session, agents map[string]*bot.Agent, notifier ports.Notifier, tier string) error {
	events, err := svc.Start(sess, sess.OwnerID, config.GetBaseBet(tier))
	if err != nil {
		return fmt.Errorf("deal: %w", err)
	}
	emit(ctx, notifier, events)

	for _, id := range sess.Roster {
		agent := agents[id]
		bidEvents, err := svc.Bid(sess, id, agent.ChooseBid(sess.Hands[id]))
		if err != nil {
			return fmt.Errorf("bid for %s: %w", id, err)
		}
		emit(ctx, notifier, bidEvents)
	}

	for sess.Phase == domain.PhasePlaying {
		current := sess.CurrentPlayerID()
		agent := agents[current]
		card := agent.ChooseCard(sess.Hands[current], sess.CurrentTrick)
		playEvents, err := svc.Play(sess, current, card)
		if err != nil {
			return fmt.Errorf("play %s by %s: %w", card, current, err)
		}
		emit(ctx, notifier, playEvents)
	}
	return nil
}

// emit routes app events to the console the way the match handler
// routes them to connected clients.
func emit(ctx context.Context, notifier ports.Notifier, events []app.Event) {
	for _, ev := range events {
		switch ev.Kind {
		case app.EventHandDealt:
			p := ev.Payload.(app.HandDealtPayload)
			notifier.NotifyHand(ctx, p.PlayerID, p.Hand)
		case app.EventBiddingStarted:
			p := ev.Payload.(app.BiddingStartedPayload)
			pterm.Info.Printfln("Round %d: %d cards each, %d undealt", p.Round, p.HandSize, p.Undealt)
		case app.EventBidPlaced:
			p := ev.Payload.(app.BidPlacedPayload)
			pterm.Info.Printfln("%s bids %d (%d to go)", p.PlayerID, p.Bid, p.Remaining)
		case app.EventCardPlayed:
			p := ev.Payload.(app.CardPlayedPayload)
			pterm.Printfln("  %s plays %s", p.PlayerID, p.Card)
		case app.EventTrickResolved:
			p := ev.Payload.(app.TrickResolvedPayload)
			notifier.NotifyTrickResult(ctx, p.WinnerID, p.WinningCard)
		case app.EventTurn:
			p := ev.Payload.(app.TurnPayload)
			notifier.NotifyTurn(ctx, p.PlayerID, p.Seat)
		case app.EventGameEnded:
			p := ev.Payload.(app.GameEndedPayload)
			notifier.NotifyGameOver(ctx, p.Report)
		}
	}
}

func renderScoreboard(svc *app.Service, sess *domain.Session, names map[string]string) {
	rows := pterm.TableData{{"Player", "Score"}}
	for _, line := range svc.Scoreboard(sess) {
		rows = append(rows, []string{names[line.PlayerID], fmt.Sprintf("%.1f", line.Score)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

// consoleNotifier renders game notifications with pterm. It implements
// the same port the Nakama dispatcher adapter does.
type consoleNotifier struct {
	names map[string]string
}

func (c *consoleNotifier) name(playerID string) string {
	if n, ok := c.names[playerID]; ok {
		return fmt.Sprintf("%s (%s)", n, playerID)
	}
	return playerID
}

func (c *consoleNotifier) NotifyHand(ctx context.Context, playerID string, hand []domain.Card) error {
	cards := make([]string, len(hand))
	for i, card := range hand {
		cards[i] = card.String()
	}
	pterm.Debug.Printfln("%s holds %v", c.name(playerID), cards)
	return nil
}

func (c *consoleNotifier) NotifyTurn(ctx context.Context, playerID string, seat int) error {
	pterm.Debug.Printfln("Turn: %s (seat %d)", c.name(playerID), seat)
	return nil
}

func (c *consoleNotifier) NotifyTrickResult(ctx context.Context, winnerID string, winning domain.Card) error {
	pterm.Success.Printfln("Trick to %s with %s", c.name(winnerID), winning)
	return nil
}

func (c *consoleNotifier) NotifyGameOver(ctx context.Context, report domain.RoundReport) error {
	rows := pterm.TableData{{"Player", "Bid", "Won", "Round", "Total"}}
	for _, r := range report.Results {
		rows = append(rows, []string{
			c.name(r.PlayerID),
			fmt.Sprintf("%d", r.Bid),
			fmt.Sprintf("%d", r.TricksWon),
			fmt.Sprintf("%+.1f", r.RoundScore),
			fmt.Sprintf("%.1f", r.TotalScore),
		})
	}
	pterm.DefaultSection.Printfln("Round %d complete", report.Round)
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	return nil
}

var _ ports.Notifier = (*consoleNotifier)(nil)
