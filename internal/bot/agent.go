package bot

import (
	"math/rand"
	"time"

	"callbreak/internal/domain"
)

// Agent is an autonomous table player. Difficulty tunes how greedy its
// card selection is; bidding is shared across difficulties.
type Agent struct {
	ID         string
	Name       string
	Difficulty string
	rng        *rand.Rand
}

// NewAgent constructs an agent. rng may be nil to use a time-seeded default.
func NewAgent(id, name, difficulty string, rng *rand.Rand) *Agent {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Agent{ID: id, Name: name, Difficulty: difficulty, rng: rng}
}

// ChooseBid estimates how many tricks the hand should take. Aces and
// guarded kings count as likely winners, long spades add coverage.
func (a *Agent) ChooseBid(hand []domain.Card) int {
	suitCounts := make(map[domain.Suit]int)
	for _, c := range hand {
		suitCounts[c.Suit]++
	}

	score := 0.0
	for _, c := range hand {
		switch c.Rank {
		case domain.RankAce:
			score += 1.0
		case domain.RankKing:
			if suitCounts[c.Suit] >= 2 {
				score += 0.7
			} else {
				score += 0.4
			}
		case domain.RankQueen:
			if suitCounts[c.Suit] >= 3 {
				score += 0.3
			}
		}
	}
	// Spades beyond the third tend to ruff a trick each.
	if extra := suitCounts[domain.Spades] - 3; extra > 0 {
		score += float64(extra) * 0.6
	}

	bid := int(score + 0.5)
	if bid < 1 {
		bid = 1
	}
	// Bids are capped at 13 regardless of hand size.
	limit := len(hand)
	if limit > 13 {
		limit = 13
	}
	if bid > limit {
		bid = limit
	}
	return bid
}

// ChooseCard picks a legal card for the current trick. Hard agents win
// as cheaply as possible and dump their lowest card when they cannot
// win; easy agents pick a random legal card.
func (a *Agent) ChooseCard(hand []domain.Card, trick []domain.PlayedCard) domain.Card {
	legal := domain.LegalPlays(hand, trick)
	candidates := make([]domain.Card, 0, len(hand))
	for i, ok := range legal {
		if ok {
			candidates = append(candidates, hand[i])
		}
	}
	if len(candidates) == 0 {
		// Unreachable: some card is always legal.
		return hand[0]
	}

	if a.Difficulty == "easy" {
		return candidates[a.rng.Intn(len(candidates))]
	}

	var cheapestWinner, lowest domain.Card
	for _, c := range candidates {
		if lowest.IsZero() || ranksBelow(c, lowest) {
			lowest = c
		}
		if wouldWin(trick, a.ID, c) {
			if cheapestWinner.IsZero() || ranksBelow(c, cheapestWinner) {
				cheapestWinner = c
			}
		}
	}
	if !cheapestWinner.IsZero() {
		return cheapestWinner
	}
	return lowest
}

// ranksBelow orders candidates by rank, breaking ties away from trump
// so spades are held back when an off-suit card ranks the same.
func ranksBelow(a, b domain.Card) bool {
	if a.Rank != b.Rank {
		return a.Rank < b.Rank
	}
	return a.Suit != domain.Spades && b.Suit == domain.Spades
}

func wouldWin(trick []domain.PlayedCard, playerID string, c domain.Card) bool {
	next := make([]domain.PlayedCard, len(trick), len(trick)+1)
	copy(next, trick)
	next = append(next, domain.PlayedCard{PlayerID: playerID, Card: c})
	return domain.TrickWinner(next).PlayerID == playerID
}
