package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"strconv"

	"callbreak/internal/app"
	"callbreak/internal/bot"
	"callbreak/internal/config"
	"callbreak/internal/domain"
	"callbreak/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	MatchLabelKey_OpenSeats = "open" // Key for the open seats in the match label
)

// MatchLabel is the queryable label maintained for the lobby listing.
type MatchLabel struct {
	Open  int    `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Session   *domain.Session             `json:"session"`
	Tick      int64                       `json:"tick"`
	Presences map[string]runtime.Presence `json:"-"` // Map UserId -> Presence for targeted messaging
	App       *app.Service                `json:"-"`
	Snapshots ports.SnapshotStore         `json:"-"`
	Notifier  ports.Notifier              `json:"-"`
	Economy   ports.EconomyPort           `json:"-"`

	BotsEnabled      bool                  `json:"bots_enabled"`
	BotMinDelay      int                   `json:"bot_min_delay"`
	BotMaxDelay      int                   `json:"bot_max_delay"`
	BotAutoFillDelay int                   `json:"bot_auto_fill_delay"`
	BotWaitUntil     int64                 `json:"bot_wait_until"`
	LastSoloTick     int64                 `json:"last_solo_tick"`
	Bots             map[string]*bot.Agent `json:"-"`

	// Turn timer bookkeeping. TurnKey changes whenever the turn holder
	// or the phase changes, which rearms the deadline.
	TurnKey      string `json:"turn_key"`
	TurnDeadline int64  `json:"turn_deadline"`
}

func (ms *MatchState) OpenSeats() int {
	return app.MaxPlayers - len(ms.Session.Roster)
}

func (ms *MatchState) HumanCount() int {
	count := 0
	for _, id := range ms.Session.Roster {
		if !bot.IsBot(id) {
			count++
		}
	}
	return count
}

func (ms *MatchState) firstBotID() string {
	for _, id := range ms.Session.Roster {
		if bot.IsBot(id) {
			return id
		}
	}
	return ""
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	state := &MatchState{
		Presences: make(map[string]runtime.Presence),
		App:       app.NewService(nil),
		Bots:      make(map[string]*bot.Agent),
		Economy:   NewNakamaEconomyAdapter(nk),
		Snapshots: NewNakamaSnapshotAdapter(nk),
	}

	state.Notifier = NewDispatcherNotifier(func(userID string) (runtime.Presence, bool) {
		p, ok := state.Presences[userID]
		return p, ok
	})

	// Rehydrate the last saved session so a restarted match keeps its table.
	sess, err := state.Snapshots.Load(ctx)
	if err != nil {
		logger.Warn("MatchInit: Could not load session snapshot: %v", err)
		sess = domain.NewSession()
	}
	state.Session = sess

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env["callbreak_bots_enabled"]; ok {
		state.BotsEnabled = val == "true"
	}
	if val, ok := env["callbreak_bot_min_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMinDelay = i
		}
	}
	if val, ok := env["callbreak_bot_max_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMaxDelay = i
		}
	}

	if state.BotMinDelay == 0 {
		state.BotMinDelay = 1
	}
	if state.BotMaxDelay == 0 {
		state.BotMaxDelay = 3
	}
	state.BotAutoFillDelay = int(config.GetBotAutoFillDelay().Seconds())

	labelBytes, err := json.Marshal(&MatchLabel{
		Open:  state.OpenSeats(),
		Game:  "callbreak",
		Phase: string(state.Session.Phase),
	})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	if matchState.Session.Phase != domain.PhaseIdle {
		if matchState.Session.SeatOf(presence.GetUserId()) >= 0 {
			// Reconnect of a seated player.
			return state, true, ""
		}
		return state, false, "Game already in progress"
	}

	if matchState.OpenSeats() <= 0 && matchState.firstBotID() == "" {
		return state, false, "Match full"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}
	mh.bindDispatcher(matchState, dispatcher)

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p

		if matchState.Session.SeatOf(userID) >= 0 {
			// Reconnect; nothing to mutate, just resend the hand below.
			mh.resendPrivateState(ctx, matchState, logger, userID)
			continue
		}

		// Free a bot seat for a human when the table is full.
		if matchState.OpenSeats() <= 0 {
			botID := matchState.firstBotID()
			if botID == "" {
				logger.Warn("MatchJoin: User %s joined but no seat was available.", userID)
				continue
			}
			logger.Info("MatchJoin: Replacing bot %s with human %s", botID, userID)
			delete(matchState.Bots, botID)
			if events, err := matchState.App.Leave(matchState.Session, botID); err == nil {
				mh.dispatchEvents(ctx, matchState, dispatcher, logger, events)
			}
		}

		events, err := matchState.App.Join(matchState.Session, userID)
		if err != nil {
			logger.Warn("MatchJoin: User %s could not be seated: %v", userID, err)
			continue
		}
		mh.dispatchEvents(ctx, matchState, dispatcher, logger, events)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.saveSnapshot(ctx, matchState, logger)
	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}
	mh.bindDispatcher(matchState, dispatcher)

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)

		events, err := matchState.App.Leave(matchState.Session, userID)
		if err != nil {
			logger.Debug("MatchLeave: User %s was not seated: %v", userID, err)
			continue
		}
		mh.dispatchEvents(ctx, matchState, dispatcher, logger, events)
	}

	if matchState.HumanCount() == 0 {
		logger.Info("MatchLeave: Terminating match with no humans.")
		mh.saveSnapshot(ctx, matchState, logger)
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.saveSnapshot(ctx, matchState, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}
	mh.bindDispatcher(matchState, dispatcher)

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpPlaceBid:
			mh.handlePlaceBid(ctx, matchState, dispatcher, logger, msg)
		case OpPlayCard:
			mh.handlePlayCard(ctx, matchState, dispatcher, logger, msg)
		case OpRequestScore:
			mh.handleRequestScore(matchState, dispatcher, logger, msg)
		case OpRequestReset:
			mh.handleRequestReset(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	mh.enforceTurnTimer(ctx, matchState, dispatcher, logger)

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	return matchState
}

// enforceTurnTimer acts for a player who sat on their turn too long:
// a missing bid becomes 1, a stalled play becomes the first legal card.
func (mh *matchHandler) enforceTurnTimer(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	sess := state.Session
	key := ""
	switch sess.Phase {
	case domain.PhaseBidding:
		key = "bid:" + strconv.Itoa(sess.Round)
	case domain.PhasePlaying:
		key = "play:" + sess.CurrentPlayerID() + ":" + strconv.Itoa(len(sess.CurrentTrick))
	default:
		state.TurnKey = ""
		return
	}

	if state.TurnKey != key {
		state.TurnKey = key
		state.TurnDeadline = state.Tick + int64(config.GetTurnDuration().Seconds())
		return
	}
	if state.Tick < state.TurnDeadline {
		return
	}

	switch sess.Phase {
	case domain.PhaseBidding:
		for _, id := range sess.Roster {
			if _, ok := sess.Bids[id]; ok {
				continue
			}
			logger.Info("TurnTimer: Auto-bidding 1 for %s", id)
			events, err := state.App.Bid(sess, id, 1)
			if err != nil {
				logger.Error("TurnTimer: Auto-bid for %s failed: %v", id, err)
				continue
			}
			mh.dispatchEvents(ctx, state, dispatcher, logger, events)
		}
	case domain.PhasePlaying:
		playerID := sess.CurrentPlayerID()
		hand := sess.Hands[playerID]
		legal := domain.LegalPlays(hand, sess.CurrentTrick)
		var card domain.Card
		for i, ok := range legal {
			if !ok {
				continue
			}
			if card.IsZero() || hand[i].Rank < card.Rank {
				card = hand[i]
			}
		}
		if !card.IsZero() {
			logger.Info("TurnTimer: Auto-playing %s for %s", card, playerID)
			events, err := state.App.Play(sess, playerID, card)
			if err != nil {
				logger.Error("TurnTimer: Auto-play for %s failed: %v", playerID, err)
			} else {
				mh.dispatchEvents(ctx, state, dispatcher, logger, events)
			}
		}
	}
	mh.saveSnapshot(ctx, state, logger)
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	sess := state.Session

	// 1. Auto-fill an idle table when a single human has waited long enough.
	if sess.Phase == domain.PhaseIdle {
		if state.HumanCount() == 1 && state.OpenSeats() > 0 {
			if state.LastSoloTick == 0 {
				state.LastSoloTick = state.Tick
				logger.Debug("processBots: Single player detected, starting auto-fill timer.")
			}
			if state.Tick-state.LastSoloTick >= int64(state.BotAutoFillDelay) {
				for i := 0; state.OpenSeats() > 0 && i < app.MaxPlayers*2; i++ {
					identity := bot.GetBotIdentity(i)
					if identity.UserID == "" || sess.SeatOf(identity.UserID) >= 0 {
						continue
					}
					events, err := state.App.Join(sess, identity.UserID)
					if err != nil {
						logger.Error("processBots: Failed to seat bot %s: %v", identity.UserID, err)
						break
					}
					state.Bots[identity.UserID] = bot.NewAgent(identity.UserID, identity.DisplayName, identity.Difficulty, nil)
					logger.Info("processBots: Added bot %s (%s)", identity.Username, identity.UserID)
					mh.dispatchEvents(ctx, state, dispatcher, logger, events)
				}
				mh.updateLabel(state, dispatcher, logger)
				mh.saveSnapshot(ctx, state, logger)
				state.LastSoloTick = 0
			}
		} else {
			state.LastSoloTick = 0
		}
		return
	}

	// 2. Bots place missing bids.
	if sess.Phase == domain.PhaseBidding {
		for _, id := range sess.Roster {
			if !bot.IsBot(id) {
				continue
			}
			if _, ok := sess.Bids[id]; ok {
				continue
			}
			agent := mh.agentFor(state, id)
			events, err := state.App.Bid(sess, id, agent.ChooseBid(sess.Hands[id]))
			if err != nil {
				logger.Error("processBots: Bot %s failed to bid: %v", id, err)
				continue
			}
			mh.dispatchEvents(ctx, state, dispatcher, logger, events)
		}
		mh.saveSnapshot(ctx, state, logger)
		return
	}

	// 3. Bot turns while playing, with a humanizing delay.
	if sess.Phase != domain.PhasePlaying {
		return
	}
	currentID := sess.CurrentPlayerID()
	if !bot.IsBot(currentID) {
		state.BotWaitUntil = 0
		return
	}
	if state.BotWaitUntil == 0 {
		delay := rand.Intn(state.BotMaxDelay-state.BotMinDelay+1) + state.BotMinDelay
		state.BotWaitUntil = state.Tick + int64(delay)
		return
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	agent := mh.agentFor(state, currentID)
	card := agent.ChooseCard(sess.Hands[currentID], sess.CurrentTrick)
	events, err := state.App.Play(sess, currentID, card)
	if err != nil {
		logger.Error("processBots: Bot %s failed to play %s: %v", currentID, card, err)
		return
	}
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	mh.saveSnapshot(ctx, state, logger)
}

// bindDispatcher points the notifier at the dispatcher for this callback.
// Nakama hands the dispatcher to every callback rather than at init.
func (mh *matchHandler) bindDispatcher(state *MatchState, dispatcher runtime.MatchDispatcher) {
	if n, ok := state.Notifier.(*DispatcherNotifier); ok {
		n.Bind(dispatcher)
	}
}

func (mh *matchHandler) agentFor(state *MatchState, botID string) *bot.Agent {
	if agent, ok := state.Bots[botID]; ok {
		return agent
	}
	identity, _ := bot.GetBotConfig(botID)
	agent := bot.NewAgent(botID, identity.DisplayName, identity.Difficulty, nil)
	state.Bots[botID] = agent
	return agent
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	var request struct {
		Tier string `json:"tier"`
	}
	if len(msg.GetData()) > 0 {
		if err := json.Unmarshal(msg.GetData(), &request); err != nil {
			logger.Warn("StartGame: Invalid request from %s: %v", senderID, err)
			mh.sendError(state, dispatcher, logger, senderID, 400, "invalid start payload")
			return
		}
	}

	baseBet := config.GetBaseBet(request.Tier)
	events, err := state.App.Start(state.Session, senderID, baseBet)
	if err != nil {
		logger.Warn("StartGame: User %s could not start: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	mh.updateLabel(state, dispatcher, logger)
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	mh.saveSnapshot(ctx, state, logger)
	logger.Info("StartGame: Round %d dealt to %d players.", state.Session.Round, len(state.Session.Roster))
}

func (mh *matchHandler) handlePlaceBid(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	var request struct {
		Bid int `json:"bid"`
	}
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("PlaceBid: Invalid request from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, "invalid bid payload")
		return
	}

	events, err := state.App.Bid(state.Session, senderID, request.Bid)
	if err != nil {
		logger.Warn("PlaceBid: User %s bid %d rejected: %v", senderID, request.Bid, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	mh.saveSnapshot(ctx, state, logger)
}

func (mh *matchHandler) handlePlayCard(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	var request struct {
		Card string       `json:"card"`
		Suit *domain.Suit `json:"suit"`
		Rank *domain.Rank `json:"rank"`
	}
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("PlayCard: Invalid request from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, "invalid play payload")
		return
	}

	var card domain.Card
	switch {
	case request.Card != "":
		parsed, err := ParseCard(request.Card)
		if err != nil {
			mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
			return
		}
		card = parsed
	case request.Suit != nil && request.Rank != nil:
		card = domain.Card{Suit: *request.Suit, Rank: *request.Rank}
	default:
		mh.sendError(state, dispatcher, logger, senderID, 400, "card is required")
		return
	}

	events, err := state.App.Play(state.Session, senderID, card)
	if err != nil {
		logger.Warn("PlayCard: User %s failed to play %s: %v", senderID, card, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	mh.saveSnapshot(ctx, state, logger)
}

func (mh *matchHandler) handleRequestScore(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	lines := state.App.Scoreboard(state.Session)

	bytes, err := json.Marshal(lines)
	if err != nil {
		logger.Error("RequestScore: Failed to marshal scoreboard: %v", err)
		return
	}
	presence, ok := state.Presences[senderID]
	if !ok {
		return
	}
	dispatcher.BroadcastMessage(OpScoreboard, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) handleRequestReset(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if senderID != state.Session.OwnerID {
		mh.sendError(state, dispatcher, logger, senderID, 403, "only the owner can reset the table")
		return
	}

	// Presences survive a table reset; only the game state is wiped.
	events := state.App.Reset(state.Session)
	state.Bots = make(map[string]*bot.Agent)

	mh.updateLabel(state, dispatcher, logger)
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	mh.saveSnapshot(ctx, state, logger)
}

// resendPrivateState re-delivers a reconnecting player's hand.
func (mh *matchHandler) resendPrivateState(ctx context.Context, state *MatchState, logger runtime.Logger, userID string) {
	hand, ok := state.Session.Hands[userID]
	if !ok || len(hand) == 0 {
		return
	}
	if err := state.Notifier.NotifyHand(ctx, userID, hand); err != nil {
		logger.Warn("Reconnect: Failed to resend hand to %s: %v", userID, err)
	}
}

var eventOpCodes = map[app.EventKind]int64{
	app.EventPlayerJoined:   OpPlayerJoined,
	app.EventPlayerLeft:     OpPlayerLeft,
	app.EventHandDealt:      OpHandDealt,
	app.EventBiddingStarted: OpBiddingStarted,
	app.EventBidPlaced:      OpBidPlaced,
	app.EventPlayingStarted: OpPlayingStarted,
	app.EventCardPlayed:     OpCardPlayed,
	app.EventTrickResolved:  OpTrickResolved,
	app.EventTurn:           OpTurn,
	app.EventGameEnded:      OpGameEnded,
	app.EventSessionReset:   OpSessionReset,
}

// dispatchEvents fans app events out to clients. Hand, turn, trick and
// game-over events go through the notifier so alternative transports
// can observe them; everything else is broadcast directly.
func (mh *matchHandler) dispatchEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		if notifier := state.Notifier; notifier != nil {
			switch ev.Kind {
			case app.EventHandDealt:
				p := ev.Payload.(app.HandDealtPayload)
				if bot.IsBot(p.PlayerID) {
					continue
				}
				if err := notifier.NotifyHand(ctx, p.PlayerID, p.Hand); err != nil {
					logger.Warn("Dispatch: Failed to deliver hand to %s: %v", p.PlayerID, err)
				}
				continue
			case app.EventTurn:
				p := ev.Payload.(app.TurnPayload)
				if err := notifier.NotifyTurn(ctx, p.PlayerID, p.Seat); err != nil {
					logger.Warn("Dispatch: Failed to announce turn: %v", err)
				}
				continue
			case app.EventTrickResolved:
				p := ev.Payload.(app.TrickResolvedPayload)
				if err := notifier.NotifyTrickResult(ctx, p.WinnerID, p.WinningCard); err != nil {
					logger.Warn("Dispatch: Failed to announce trick result: %v", err)
				}
				continue
			case app.EventGameEnded:
				p := ev.Payload.(app.GameEndedPayload)
				mh.settleBalances(ctx, state, logger, p.BalanceChanges)
				if err := notifier.NotifyGameOver(ctx, p.Report); err != nil {
					logger.Warn("Dispatch: Failed to announce game over: %v", err)
				}
				mh.updateLabel(state, dispatcher, logger)
				continue
			}
		} else if ev.Kind == app.EventGameEnded {
			p := ev.Payload.(app.GameEndedPayload)
			mh.settleBalances(ctx, state, logger, p.BalanceChanges)
			mh.updateLabel(state, dispatcher, logger)
		}

		opCode, ok := eventOpCodes[ev.Kind]
		if !ok {
			logger.Warn("Dispatch: Unknown event kind: %v", ev.Kind)
			continue
		}

		bytes, err := json.Marshal(ev.Payload)
		if err != nil {
			logger.Error("Dispatch: Failed to marshal event %v: %v", ev.Kind, err)
			continue
		}

		var recipients []runtime.Presence
		if len(ev.Recipients) > 0 {
			for _, uid := range ev.Recipients {
				if p, ok := state.Presences[uid]; ok {
					recipients = append(recipients, p)
				}
			}
			// Targeted events with no connected recipient (bots) must
			// not fall back to a broadcast.
			if len(recipients) == 0 {
				continue
			}
		}

		dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
	}
}

// settleBalances applies end-of-round chip movements to player wallets.
func (mh *matchHandler) settleBalances(ctx context.Context, state *MatchState, logger runtime.Logger, changes map[string]int64) {
	if state.Economy == nil || len(changes) == 0 {
		return
	}
	updates := make([]ports.WalletUpdate, 0, len(changes))
	for userID, amount := range changes {
		if bot.IsBot(userID) {
			continue
		}
		updates = append(updates, ports.WalletUpdate{
			UserID: userID,
			Amount: amount,
			Metadata: map[string]interface{}{
				"match_id": ctx.Value(runtime.RUNTIME_CTX_MATCH_ID),
				"reason":   "round_settlement",
			},
		})
	}
	if err := state.Economy.UpdateBalances(ctx, updates); err != nil {
		logger.Error("Settlement: Failed to update balances: %v", err)
	}
}

// sendError sends a targeted error payload to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	bytes, err := json.Marshal(map[string]interface{}{
		"code":    code,
		"message": message,
	})
	if err != nil {
		logger.Error("Failed to marshal error payload: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}
	dispatcher.BroadcastMessage(OpGameError, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	labelBytes, err := json.Marshal(&MatchLabel{
		Open:  state.OpenSeats(),
		Game:  "callbreak",
		Phase: string(state.Session.Phase),
	})
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

// saveSnapshot persists the session after a state change. Persistence
// failures are logged but never roll back the in-memory commit.
func (mh *matchHandler) saveSnapshot(ctx context.Context, state *MatchState, logger runtime.Logger) {
	if state.Snapshots == nil {
		return
	}
	if err := state.Snapshots.Save(ctx, state.Session); err != nil {
		logger.Warn("Snapshot: Failed to save session: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	matchState, ok := state.(*MatchState)
	if ok {
		mh.saveSnapshot(ctx, matchState, logger)
	}
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
