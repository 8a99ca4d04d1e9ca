package domain

import (
	"fmt"
	"sort"
)

// Suit identifies one of the four card suits. Spades is the fixed trump suit.
type Suit int

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

var (
	suitSymbols = [4]string{"♣", "♦", "♥", "♠"}
	suitNames   = [4]string{"Clubs", "Diamonds", "Hearts", "Spades"}
)

func (s Suit) Symbol() string {
	if s < Clubs || s > Spades {
		return "?"
	}
	return suitSymbols[s]
}

func (s Suit) String() string {
	if s < Clubs || s > Spades {
		return "?"
	}
	return suitNames[s]
}

// Rank is the card rank, 2..14 where 11=J, 12=Q, 13=K, 14=A.
type Rank int

const (
	RankJack  Rank = 11
	RankQueen Rank = 12
	RankKing  Rank = 13
	RankAce   Rank = 14
)

func (r Rank) String() string {
	switch r {
	case RankJack:
		return "J"
	case RankQueen:
		return "Q"
	case RankKing:
		return "K"
	case RankAce:
		return "A"
	}
	return fmt.Sprintf("%d", int(r))
}

// Card is a single playing card. The zero value is not a valid card.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

func (c Card) String() string {
	if c.IsZero() {
		return ""
	}
	return c.Rank.String() + c.Suit.Symbol()
}

func (c Card) IsZero() bool { return c.Rank == 0 }

// NewDeck returns the full ordered 52-card deck.
func NewDeck() []Card {
	deck := make([]Card, 0, 52)
	for s := Clubs; s <= Spades; s++ {
		for r := Rank(2); r <= RankAce; r++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// SortHand returns a copy of the hand ordered suit-major, high ranks first.
func SortHand(hand []Card) []Card {
	out := make([]Card, len(hand))
	copy(out, hand)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Suit != out[j].Suit {
			return out[i].Suit > out[j].Suit
		}
		return out[i].Rank > out[j].Rank
	})
	return out
}

// RemoveCard removes one occurrence of c from the hand and reports whether it was present.
func RemoveCard(hand []Card, c Card) ([]Card, bool) {
	for i := range hand {
		if hand[i] == c {
			out := append([]Card{}, hand[:i]...)
			return append(out, hand[i+1:]...), true
		}
	}
	return hand, false
}

// ContainsCard reports whether the hand holds the given card.
func ContainsCard(hand []Card, c Card) bool {
	for _, h := range hand {
		if h == c {
			return true
		}
	}
	return false
}
