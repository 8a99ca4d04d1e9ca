package domain

import (
	"testing"
)

func TestNewDeckHas52DistinctCards(t *testing.T) {
	deck := NewDeck()
	if len(deck) != 52 {
		t.Fatalf("deck size = %d, want 52", len(deck))
	}
	seen := make(map[Card]bool, 52)
	for _, c := range deck {
		if seen[c] {
			t.Fatalf("duplicate card %s in deck", c)
		}
		seen[c] = true
	}
}

func TestCardString(t *testing.T) {
	tests := []struct {
		card Card
		want string
	}{
		{Card{Suit: Hearts, Rank: 2}, "2♥"},
		{Card{Suit: Spades, Rank: RankAce}, "A♠"},
		{Card{Suit: Diamonds, Rank: 10}, "10♦"},
		{Card{Suit: Clubs, Rank: RankQueen}, "Q♣"},
		{Card{}, ""},
	}
	for _, tt := range tests {
		if got := tt.card.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestSortHandSuitMajorHighFirst(t *testing.T) {
	hand := []Card{
		{Suit: Clubs, Rank: 5},
		{Suit: Spades, Rank: 2},
		{Suit: Spades, Rank: RankKing},
		{Suit: Hearts, Rank: 9},
	}
	sorted := SortHand(hand)
	want := []Card{
		{Suit: Spades, Rank: RankKing},
		{Suit: Spades, Rank: 2},
		{Suit: Hearts, Rank: 9},
		{Suit: Clubs, Rank: 5},
	}
	for i := range want {
		if sorted[i] != want[i] {
			t.Fatalf("sorted[%d] = %s, want %s", i, sorted[i], want[i])
		}
	}
	if hand[0] != (Card{Suit: Clubs, Rank: 5}) {
		t.Fatalf("SortHand mutated its input")
	}
}

func TestRemoveCard(t *testing.T) {
	hand := []Card{
		{Suit: Hearts, Rank: 7},
		{Suit: Spades, Rank: 3},
	}
	out, ok := RemoveCard(hand, Card{Suit: Spades, Rank: 3})
	if !ok {
		t.Fatalf("expected card removed")
	}
	if len(out) != 1 || out[0] != (Card{Suit: Hearts, Rank: 7}) {
		t.Fatalf("unexpected hand after removal: %v", out)
	}

	if _, ok := RemoveCard(hand, Card{Suit: Clubs, Rank: 2}); ok {
		t.Fatalf("removed a card that was not held")
	}
}
