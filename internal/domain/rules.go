package domain

// Ruling classifies a proposed play against the current trick.
type Ruling int

const (
	// RulingOK means the card may be played.
	RulingOK Ruling = iota
	// RulingMustBeatLeadSuit means the hand holds a lead-suit card that
	// beats the trick so far and the played card is not one of them.
	RulingMustBeatLeadSuit
	// RulingMustThrowTrump means the hand cannot beat the lead suit but
	// holds a spade, and the played card is not a spade.
	RulingMustThrowTrump
)

// highestOfSuit returns the highest rank of the given suit played so far
// in the trick, or 0 if the suit has not been played.
func highestOfSuit(trick []PlayedCard, suit Suit) Rank {
	var best Rank
	for _, pc := range trick {
		if pc.Card.Suit == suit && pc.Card.Rank > best {
			best = pc.Card.Rank
		}
	}
	return best
}

// RulePlay judges whether the card is a legal play from the hand given
// the trick so far. An empty trick makes any held card legal; the lead
// suit is then fixed by that card.
//
// A player holding a lead-suit card higher than anything played so far
// must beat the trick with one of those cards. Failing that, a player
// holding any spade must throw one. Only then is any card legal.
func RulePlay(hand []Card, trick []PlayedCard, card Card) Ruling {
	if len(trick) == 0 {
		return RulingOK
	}

	lead := trick[0].Card.Suit
	highest := highestOfSuit(trick, lead)

	canBeat := false
	for _, c := range hand {
		if c.Suit == lead && c.Rank > highest {
			canBeat = true
			break
		}
	}
	if canBeat {
		if card.Suit == lead && card.Rank > highest {
			return RulingOK
		}
		return RulingMustBeatLeadSuit
	}

	holdsSpade := false
	for _, c := range hand {
		if c.Suit == Spades {
			holdsSpade = true
			break
		}
	}
	if holdsSpade && card.Suit != Spades {
		return RulingMustThrowTrump
	}

	return RulingOK
}

// LegalPlays reports, per hand index, whether that card would be a legal
// play against the trick so far.
func LegalPlays(hand []Card, trick []PlayedCard) []bool {
	legal := make([]bool, len(hand))
	for i, c := range hand {
		legal[i] = RulePlay(hand, trick, c) == RulingOK
	}
	return legal
}

// TrickWinner resolves a completed trick. The winner is the highest rank
// among cards matching the lead suit; if no card followed the lead suit
// the highest spade takes it. The lead card itself always follows the
// lead suit, so the first branch decides every real trick.
func TrickWinner(trick []PlayedCard) PlayedCard {
	if len(trick) == 0 {
		return PlayedCard{}
	}

	lead := trick[0].Card.Suit
	var winner PlayedCard
	for _, pc := range trick {
		if pc.Card.Suit == lead && pc.Card.Rank > winner.Card.Rank {
			winner = pc
		}
	}
	if !winner.Card.IsZero() {
		return winner
	}

	for _, pc := range trick {
		if pc.Card.Suit == Spades && pc.Card.Rank > winner.Card.Rank {
			winner = pc
		}
	}
	return winner
}
