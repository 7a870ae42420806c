package engine

// SubmitCard records one participant's play for the current round.
// takeRow is an optional pre-supplied row choice for the no-valid-row
// case (pass NoRow when none). The call fails with ErrIllegalMove — and
// mutates nothing — when the phase is wrong, the card is not in the
// participant's hand, the row index is malformed, or the participant has
// already submitted.
func (g *GameState) SubmitCard(p Participant, c Card, takeRow RowIndex) error {
	if g.Phase == PhaseGameOver {
		return ErrGameOver
	}
	if g.Phase != PhaseAwaitingSubmissions {
		return illegalMovef("cannot submit in phase %s", g.Phase)
	}
	if p != Human && p != AI {
		return illegalMovef("unknown participant %d", p)
	}
	if takeRow != NoRow && !takeRow.Valid() {
		return illegalMovef("row index %d out of range", takeRow)
	}
	if g.Subs[p].Present {
		return illegalMovef("%s already submitted card %d this round", p, g.Subs[p].Card)
	}
	if !g.HandContains(p, c) {
		return illegalMovef("card %d is not in %s hand", c, p)
	}
	g.Subs[p] = Submission{Card: c, TakeRow: takeRow, Present: true}
	return nil
}

// Resolve runs the round once both submissions are present. The pairs are
// ordered by ascending card number and each is applied fully — hand
// removal, placement, any take — before the next is considered; the
// second placement always evaluates against the board the first one left
// behind. Returns ErrAmbiguousAction when a pair hits the no-valid-row
// case without a supplied row choice; the resolution stays paused on that
// pair until ProvideRowChoice is called.
func (g *GameState) Resolve() error {
	if g.Phase == PhaseGameOver {
		return ErrGameOver
	}
	if g.Phase != PhaseAwaitingSubmissions {
		return illegalMovef("cannot resolve in phase %s", g.Phase)
	}
	if !g.BothSubmitted() {
		return illegalMovef("both submissions required (human:%v ai:%v)",
			g.Subs[Human].Present, g.Subs[AI].Present)
	}

	g.Phase = PhaseResolving

	// Card numbers are globally unique, so ordering needs no tie-break.
	first, second := Human, AI
	if g.Subs[AI].Card < g.Subs[Human].Card {
		first, second = AI, Human
	}
	g.queue = [NumParticipants]Participant{first, second}
	g.queueLen = NumParticipants
	g.queuePos = 0

	return g.resolveQueue()
}

// ProvideRowChoice supplies the row selection a paused resolution is
// waiting on and resumes it.
func (g *GameState) ProvideRowChoice(p Participant, row RowIndex) error {
	if g.Phase == PhaseGameOver {
		return ErrGameOver
	}
	if !g.Pending.Active {
		return illegalMovef("no row choice pending")
	}
	if g.Pending.Owner != p {
		return illegalMovef("row choice pending for %s, not %s", g.Pending.Owner, p)
	}
	if !row.Valid() {
		return illegalMovef("row index %d out of range", row)
	}

	card := g.Pending.Card
	g.Pending = PendingTake{}
	g.removeFromHand(p, card)
	g.takeRow(p, row, card)
	g.queuePos++

	return g.resolveQueue()
}

// resolveQueue applies queued pairs in order, pausing on a missing row
// choice and finishing the round when the queue is drained.
func (g *GameState) resolveQueue() error {
	for g.queuePos < g.queueLen {
		p := g.queue[g.queuePos]
		sub := g.Subs[p]

		target := g.PlacementTarget(sub.Card)
		if target == NoRow {
			if sub.TakeRow == NoRow {
				g.Pending = PendingTake{Active: true, Owner: p, Card: sub.Card}
				return ErrAmbiguousAction
			}
			g.removeFromHand(p, sub.Card)
			g.takeRow(p, sub.TakeRow, sub.Card)
		} else {
			g.removeFromHand(p, sub.Card)
			g.applyToRow(p, target, sub.Card)
		}
		g.queuePos++
	}

	g.finishRound()
	return nil
}

// finishRound closes the resolution step: clears submissions, bumps the
// round counter, and parks the state in RoundComplete for AdvanceRound.
func (g *GameState) finishRound() {
	g.Subs = [NumParticipants]Submission{}
	g.queueLen = 0
	g.queuePos = 0
	g.RoundNumber++
	g.Phase = PhaseRoundComplete
	g.recordRoundComplete()
}

// AdvanceRound performs the RoundComplete transition: termination check
// first, then either a fresh deal (hands exhausted) or straight back to
// AwaitingSubmissions.
func (g *GameState) AdvanceRound() error {
	if g.Phase == PhaseGameOver {
		return ErrGameOver
	}
	if g.Phase != PhaseRoundComplete {
		return illegalMovef("cannot advance round in phase %s", g.Phase)
	}

	if g.checkTermination() {
		return nil
	}
	if g.HandsExhausted() {
		return g.Deal()
	}
	g.Phase = PhaseAwaitingSubmissions
	return nil
}

// removeFromHand deletes the card from the hand, preserving order.
// Callers have already validated membership.
func (g *GameState) removeFromHand(p Participant, c Card) {
	for i := uint8(0); i < g.HandLens[p]; i++ {
		if g.Hands[p][i] != c {
			continue
		}
		copy(g.Hands[p][i:g.HandLens[p]-1], g.Hands[p][i+1:g.HandLens[p]])
		g.HandLens[p]--
		g.Hands[p][g.HandLens[p]] = EmptyCard
		return
	}
}
