package bot

import (
	"math/rand"
	"testing"

	"callbreak/internal/domain"
)

func TestChooseBidCountsHighCards(t *testing.T) {
	agent := NewAgent("b1", "Bot", "hard", rand.New(rand.NewSource(7)))

	weak := []domain.Card{
		{Suit: domain.Clubs, Rank: 2},
		{Suit: domain.Diamonds, Rank: 4},
		{Suit: domain.Hearts, Rank: 6},
		{Suit: domain.Clubs, Rank: 8},
	}
	if bid := agent.ChooseBid(weak); bid != 1 {
		t.Fatalf("weak hand bid = %d, want floor of 1", bid)
	}

	strong := []domain.Card{
		{Suit: domain.Clubs, Rank: domain.RankAce},
		{Suit: domain.Diamonds, Rank: domain.RankAce},
		{Suit: domain.Hearts, Rank: domain.RankAce},
		{Suit: domain.Hearts, Rank: domain.RankKing},
	}
	weakBid := agent.ChooseBid(weak)
	strongBid := agent.ChooseBid(strong)
	if strongBid <= weakBid {
		t.Fatalf("strong hand bid %d not above weak hand bid %d", strongBid, weakBid)
	}
	if strongBid > len(strong) {
		t.Fatalf("bid %d exceeds hand size %d", strongBid, len(strong))
	}
}

func TestChooseCardIsAlwaysLegal(t *testing.T) {
	agent := NewAgent("b1", "Bot", "easy", rand.New(rand.NewSource(7)))
	hand := []domain.Card{
		{Suit: domain.Hearts, Rank: 4},
		{Suit: domain.Hearts, Rank: 10},
		{Suit: domain.Spades, Rank: 3},
	}
	trick := []domain.PlayedCard{
		{PlayerID: "u1", Card: domain.Card{Suit: domain.Hearts, Rank: 7}},
	}

	for i := 0; i < 20; i++ {
		card := agent.ChooseCard(hand, trick)
		if got := domain.RulePlay(hand, trick, card); got != domain.RulingOK {
			t.Fatalf("agent chose illegal card %s (ruling %d)", card, got)
		}
	}
}

func TestChooseCardWinsCheaply(t *testing.T) {
	agent := NewAgent("b1", "Bot", "hard", rand.New(rand.NewSource(7)))
	hand := []domain.Card{
		{Suit: domain.Hearts, Rank: 9},
		{Suit: domain.Hearts, Rank: domain.RankAce},
	}
	trick := []domain.PlayedCard{
		{PlayerID: "u1", Card: domain.Card{Suit: domain.Hearts, Rank: 7}},
	}

	card := agent.ChooseCard(hand, trick)
	want := domain.Card{Suit: domain.Hearts, Rank: 9}
	if card != want {
		t.Fatalf("chose %s, want cheapest winning card %s", card, want)
	}
}

func TestChooseCardDumpsLowestWhenBeaten(t *testing.T) {
	agent := NewAgent("b1", "Bot", "hard", rand.New(rand.NewSource(7)))
	hand := []domain.Card{
		{Suit: domain.Clubs, Rank: 9},
		{Suit: domain.Clubs, Rank: 2},
	}
	trick := []domain.PlayedCard{
		{PlayerID: "u1", Card: domain.Card{Suit: domain.Hearts, Rank: domain.RankAce}},
	}

	card := agent.ChooseCard(hand, trick)
	want := domain.Card{Suit: domain.Clubs, Rank: 2}
	if card != want {
		t.Fatalf("chose %s, want lowest discard %s", card, want)
	}
}

func TestGetBotIdentityFallback(t *testing.T) {
	id := GetBotIdentity(3)
	if id.UserID == "" || id.DisplayName == "" {
		t.Fatalf("fallback identity incomplete: %+v", id)
	}
}
