package domain

// PlayerResult is one player's line in a round report.
type PlayerResult struct {
	PlayerID   string  `json:"player_id"`
	Bid        int     `json:"bid"`
	TricksWon  int     `json:"tricks_won"`
	Success    bool    `json:"success"`
	RoundScore float64 `json:"round_score"`
	TotalScore float64 `json:"total_score"`
}

// RoundReport is the outcome of a completed round: one result per roster
// member in seating order, plus the set of players whose bid matched
// their tricks exactly. Zero, one or several winners are all possible.
type RoundReport struct {
	Round   int            `json:"round"`
	Results []PlayerResult `json:"results"`
	Winners []string       `json:"winners"`
}

// RoundScore computes the Call Break score for one player: making the
// bid earns the bid plus a tenth per overtrick, missing it costs the bid.
func RoundScore(bid, won int) float64 {
	if won >= bid {
		return float64(bid) + float64(won-bid)*0.1
	}
	return -float64(bid)
}

// BuildRoundReport evaluates bids against tricks won for every roster
// member. Cumulative totals include the score of this round.
func (s *Session) BuildRoundReport() RoundReport {
	report := RoundReport{Round: s.Round}
	for _, id := range s.Roster {
		bid := s.Bids[id]
		won := s.TricksWon[id]
		success := bid == won
		score := RoundScore(bid, won)
		report.Results = append(report.Results, PlayerResult{
			PlayerID:   id,
			Bid:        bid,
			TricksWon:  won,
			Success:    success,
			RoundScore: score,
			TotalScore: s.Scores[id] + score,
		})
		if success {
			report.Winners = append(report.Winners, id)
		}
	}
	return report
}

// CalculateSettlement converts a round report into chip deltas: players
// who made their bid collect bid x baseBet, players who missed pay the
// same. A zero bid settles to zero either way.
func CalculateSettlement(report RoundReport, baseBet int64) map[string]int64 {
	changes := make(map[string]int64, len(report.Results))
	for _, r := range report.Results {
		amount := int64(r.Bid) * baseBet
		if !r.Success {
			amount = -amount
		}
		changes[r.PlayerID] = amount
	}
	return changes
}
