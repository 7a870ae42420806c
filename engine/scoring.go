package engine

// checkTermination ends the game once any score has reached the target.
// The winner is the participant with the strictly lower score at that
// instant; equal scores end the match as a draw (Winner stays
// NoParticipant). Returns true when the game ended.
func (g *GameState) checkTermination() bool {
	reached := false
	for p := 0; p < NumParticipants; p++ {
		if g.Scores[p] >= g.Rules.TargetScore {
			reached = true
		}
	}
	if !reached {
		return false
	}

	switch {
	case g.Scores[Human] < g.Scores[AI]:
		g.Winner = Human
	case g.Scores[AI] < g.Scores[Human]:
		g.Winner = AI
	default:
		g.Winner = NoParticipant
	}
	g.Phase = PhaseGameOver
	g.recordGameOver()
	return true
}

// Score returns the participant's accumulated bull-head total.
func (g *GameState) Score(p Participant) int16 { return g.Scores[p] }

// IsDraw reports a terminated match with equal scores.
func (g *GameState) IsDraw() bool {
	return g.Phase == PhaseGameOver && g.Winner == NoParticipant
}
