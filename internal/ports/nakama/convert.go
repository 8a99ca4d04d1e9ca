package nakama

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"callbreak/internal/domain"
)

var rankAliases = map[string]domain.Rank{
	"2": 2, "3": 3, "4": 4, "5": 5, "6": 6,
	"7": 7, "8": 8, "9": 9, "10": 10,
	"j": domain.RankJack, "jack": domain.RankJack,
	"q": domain.RankQueen, "queen": domain.RankQueen,
	"k": domain.RankKing, "king": domain.RankKing,
	"a": domain.RankAce, "ace": domain.RankAce,
}

var suitAliases = map[string]domain.Suit{
	"hearts": domain.Hearts, "heart": domain.Hearts, "h": domain.Hearts, "♥": domain.Hearts,
	"spades": domain.Spades, "spade": domain.Spades, "s": domain.Spades, "♠": domain.Spades,
	"diamonds": domain.Diamonds, "diamond": domain.Diamonds, "d": domain.Diamonds, "♦": domain.Diamonds,
	"clubs": domain.Clubs, "club": domain.Clubs, "c": domain.Clubs, "♣": domain.Clubs,
}

// ParseCard turns loose client input like "10 hearts", "queen of spades"
// or "a club" into a card. The "of" connective is optional, and compact
// forms such as "as", "QS" or "10♥" are split on the trailing suit.
func ParseCard(input string) (domain.Card, error) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	fields := strings.Fields(normalized)

	tokens := fields[:0]
	for _, f := range fields {
		if f != "of" {
			tokens = append(tokens, f)
		}
	}
	if len(tokens) == 1 {
		if rank, suit, ok := splitCompact(tokens[0]); ok {
			tokens = []string{rank, suit}
		}
	}
	if len(tokens) != 2 {
		return domain.Card{}, fmt.Errorf("use a format like %q, %q or %q", "10 hearts", "queen spades", "a club")
	}

	rank, ok := rankAliases[tokens[0]]
	if !ok {
		return domain.Card{}, fmt.Errorf("unknown rank %q", tokens[0])
	}
	suit, ok := suitAliases[tokens[1]]
	if !ok {
		return domain.Card{}, fmt.Errorf("unknown suit %q", tokens[1])
	}
	return domain.Card{Suit: suit, Rank: rank}, nil
}

// splitCompact peels a trailing suit letter or symbol off a single
// token, so "as" reads as ace of spades and "10♥" as ten of hearts.
func splitCompact(token string) (rank, suit string, ok bool) {
	r, size := utf8.DecodeLastRuneInString(token)
	if size == 0 || size == len(token) {
		return "", "", false
	}
	rank = token[:len(token)-size]
	suit = string(r)
	if _, rankOK := rankAliases[rank]; !rankOK {
		return "", "", false
	}
	if _, suitOK := suitAliases[suit]; !suitOK {
		return "", "", false
	}
	return rank, suit, true
}
