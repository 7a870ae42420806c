package engine

// PlacementTarget returns the row a card must be placed into: among rows
// whose last card is strictly lower than the played card, the one whose
// last card is closest to it. NoRow means the card undercuts every row
// and the owner must take a row of their choice instead.
func (g *GameState) PlacementTarget(c Card) RowIndex {
	target := NoRow
	var best Card
	for r := RowIndex(0); r < NumRows; r++ {
		if g.RowLens[r] == 0 {
			continue
		}
		last := g.Rows[r][g.RowLens[r]-1]
		if last < c && last > best {
			best = last
			target = r
		}
	}
	return target
}

// applyToRow appends the card to the target row, first collecting the row
// into the owner's taken pile when it already holds five cards. Events
// are recorded in application order.
func (g *GameState) applyToRow(owner Participant, row RowIndex, c Card) {
	if g.RowLens[row] == RowCapacity {
		g.collectRow(owner, row, c, true)
		return
	}
	g.Rows[row][g.RowLens[row]] = c
	g.RowLens[row]++
	g.recordPlaced(owner, c, row)
}

// takeRow resolves a no-valid-row play: the owner collects the chosen row
// wholesale and the played card reseeds it. Rows always hold at least the
// starter card, so an empty take cannot occur.
func (g *GameState) takeRow(owner Participant, row RowIndex, c Card) {
	g.collectRow(owner, row, c, false)
}

// collectRow moves every card in the row to the owner's taken pile,
// credits the bull-heads, and reseeds the row with the played card.
func (g *GameState) collectRow(owner Participant, row RowIndex, c Card, forced bool) {
	n := g.RowLens[row]
	taken := make([]Card, n)
	copy(taken, g.Rows[row][:n])

	var heads int8
	for i := uint8(0); i < n; i++ {
		card := g.Rows[row][i]
		g.Taken[owner][g.TakenLens[owner]] = card
		g.TakenLens[owner]++
		heads += card.BullHeads()
	}
	g.Scores[owner] += int16(heads)

	g.Rows[row] = [RowCapacity]Card{}
	g.Rows[row][0] = c
	g.RowLens[row] = 1

	g.recordRowTaken(owner, c, row, taken, heads, forced)
}
