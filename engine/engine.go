// Package engine implements the 6 Nimmt (Take 6) game rules.
//
// The package is a self-contained, deterministic rules engine: it owns the
// deck, enforces placement legality, resolves simultaneous plays in card
// order, and computes scores and termination. All state lives in a flat
// value-type GameState (fixed arrays, no heap pointers), so a snapshot is
// a plain struct copy and every rejected operation is a strict no-op.
package engine

const (
	NumParticipants = 2
	NumRows         = 4
	RowCapacity     = 5
	DeckSize        = 104
)

// Phase is the session state machine position.
type Phase uint8

const (
	PhaseNotStarted Phase = iota
	PhaseDealing
	PhaseAwaitingSubmissions
	PhaseResolving
	PhaseRoundComplete
	PhaseGameOver
)

// String returns the phase name used in logs and events.
func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhaseDealing:
		return "dealing"
	case PhaseAwaitingSubmissions:
		return "awaiting_submissions"
	case PhaseResolving:
		return "resolving"
	case PhaseRoundComplete:
		return "round_complete"
	case PhaseGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Rules holds configurable match settings.
type Rules struct {
	HandSize    uint8
	StarterRows uint8
	TargetScore int16 // game ends once any score reaches this
}

// DefaultRules returns the standard two-player Take 6 settings.
func DefaultRules() Rules {
	return Rules{
		HandSize:    10,
		StarterRows: NumRows,
		TargetScore: 66,
	}
}

// Submission is one participant's play for the current round. TakeRow is
// the pre-supplied row choice for the no-valid-row case; NoRow means none
// was supplied and resolution blocks if the choice turns out to be needed.
type Submission struct {
	Card    Card
	TakeRow RowIndex
	Present bool
}

// PendingTake records a resolution paused on a missing row choice.
type PendingTake struct {
	Active bool
	Owner  Participant
	Card   Card
}

// GameState holds the complete, self-contained state of one match.
// It is a flat value type: Snapshot/Restore are plain struct copies.
type GameState struct {
	Rows     [NumRows][RowCapacity]Card
	RowLens  [NumRows]uint8
	Hands    [NumParticipants][DeckSize]Card // at most Rules.HandSize used
	HandLens [NumParticipants]uint8
	Taken    [NumParticipants][DeckSize]Card
	TakenLens [NumParticipants]uint8
	Scores   [NumParticipants]int16

	// Undealt remainder of the current deal. Never played; kept so the
	// 104-card conservation invariant holds at every phase boundary.
	Undealt    [DeckSize]Card
	UndealtLen uint8

	Phase       Phase
	RoundNumber uint16 // strictly increasing across deals
	DealNumber  uint16

	Subs    [NumParticipants]Submission
	Pending PendingTake

	// Resolution order for the current round (filled by Resolve).
	queue    [NumParticipants]Participant
	queueLen uint8
	queuePos uint8

	Events    [MaxRoundEvents]RoundEvent
	EventsLen uint8

	Winner Participant // NoParticipant while running, or on a draw
	RNG    uint64
	Rules  Rules
}

// ---------------------------------------------------------------------------
// xorshift64 RNG — inline, no interface
// ---------------------------------------------------------------------------

func (g *GameState) nextRand() uint64 {
	x := g.RNG
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.RNG = x
	return x
}

// randN returns a uniform value in [0, n). Rejection sampling keeps the
// draw unbiased; a plain modulo over the generator range wraps unevenly.
func (g *GameState) randN(n uint64) uint64 {
	limit := ^uint64(0) - ^uint64(0)%n
	for {
		if v := g.nextRand(); v < limit {
			return v % n
		}
	}
}

// ---------------------------------------------------------------------------
// NewGame and Deal
// ---------------------------------------------------------------------------

// NewGame initializes a fresh GameState with the given seed and rules.
// No cards are dealt until Deal is called.
func NewGame(seed uint64, rules Rules) GameState {
	var g GameState
	g.RNG = seed
	if g.RNG == 0 {
		g.RNG = 1 // xorshift can't start at 0
	}
	g.Rules = rules
	g.Winner = NoParticipant
	g.Phase = PhaseNotStarted
	return g
}

// Deal shuffles the full 104-card deck and deals both hands plus the four
// starter rows. Taken piles are cleared; scores persist across deals.
// Returns ErrInsufficientCards (with no state mutation) if the configured
// hand size and starter rows exceed the deck.
func (g *GameState) Deal() error {
	if g.Phase == PhaseGameOver {
		return ErrGameOver
	}
	need := int(g.Rules.HandSize)*NumParticipants + int(g.Rules.StarterRows)
	if need > DeckSize {
		return ErrInsufficientCards
	}
	g.Phase = PhaseDealing

	// Rebuild the full deck. Every deal starts from all 104 cards; the
	// previous deal's taken piles and undealt remainder are discarded.
	var deck [DeckSize]Card
	for i := 0; i < DeckSize; i++ {
		deck[i] = Card(i + 1)
	}

	// Fisher-Yates, swap partner drawn uniformly from [0, i].
	for i := DeckSize - 1; i > 0; i-- {
		j := int(g.randN(uint64(i + 1)))
		deck[i], deck[j] = deck[j], deck[i]
	}

	idx := 0
	for p := 0; p < NumParticipants; p++ {
		g.HandLens[p] = g.Rules.HandSize
		for c := uint8(0); c < g.Rules.HandSize; c++ {
			g.Hands[p][c] = deck[idx]
			idx++
		}
		sortHand(g.Hands[p][:g.HandLens[p]])
		g.TakenLens[p] = 0
	}

	for r := 0; r < NumRows; r++ {
		g.Rows[r] = [RowCapacity]Card{}
		g.RowLens[r] = 0
	}
	for r := uint8(0); r < g.Rules.StarterRows; r++ {
		g.Rows[r][0] = deck[idx]
		g.RowLens[r] = 1
		idx++
	}

	g.UndealtLen = uint8(DeckSize - idx)
	for i := 0; idx < DeckSize; i, idx = i+1, idx+1 {
		g.Undealt[i] = deck[idx]
	}

	g.Subs = [NumParticipants]Submission{}
	g.Pending = PendingTake{}
	g.DealNumber++
	g.recordDealt()
	g.Phase = PhaseAwaitingSubmissions
	return nil
}

// sortHand orders a hand ascending in place (insertion sort; hands are
// at most 10 cards).
func sortHand(hand []Card) {
	for i := 1; i < len(hand); i++ {
		c := hand[i]
		j := i - 1
		for j >= 0 && hand[j] > c {
			hand[j+1] = hand[j]
			j--
		}
		hand[j+1] = c
	}
}

// ---------------------------------------------------------------------------
// Query methods
// ---------------------------------------------------------------------------

// IsGameOver reports whether the match has terminated.
func (g *GameState) IsGameOver() bool { return g.Phase == PhaseGameOver }

// Row returns a copy of the cards currently in row r.
func (g *GameState) Row(r RowIndex) []Card {
	out := make([]Card, g.RowLens[r])
	copy(out, g.Rows[r][:g.RowLens[r]])
	return out
}

// Hand returns a copy of the participant's remaining hand.
func (g *GameState) Hand(p Participant) []Card {
	out := make([]Card, g.HandLens[p])
	copy(out, g.Hands[p][:g.HandLens[p]])
	return out
}

// HandContains reports whether the participant currently holds the card.
func (g *GameState) HandContains(p Participant, c Card) bool {
	for i := uint8(0); i < g.HandLens[p]; i++ {
		if g.Hands[p][i] == c {
			return true
		}
	}
	return false
}

// LowestCard returns the lowest-numbered card in the participant's hand,
// or EmptyCard for an empty hand. Used by the gateway forfeit policy.
func (g *GameState) LowestCard(p Participant) Card {
	if g.HandLens[p] == 0 {
		return EmptyCard
	}
	low := g.Hands[p][0]
	for i := uint8(1); i < g.HandLens[p]; i++ {
		if g.Hands[p][i] < low {
			low = g.Hands[p][i]
		}
	}
	return low
}

// RowBullHeads returns the bull-head sum currently held in row r.
func (g *GameState) RowBullHeads(r RowIndex) int {
	total := 0
	for i := uint8(0); i < g.RowLens[r]; i++ {
		total += int(g.Rows[r][i].BullHeads())
	}
	return total
}

// CheapestRow returns the row with the smallest bull-head sum, lowest
// index on ties. Deterministic default for a forced whole-row take.
func (g *GameState) CheapestRow() RowIndex {
	best := RowIndex(0)
	bestHeads := g.RowBullHeads(0)
	for r := RowIndex(1); r < NumRows; r++ {
		if h := g.RowBullHeads(r); h < bestHeads {
			best, bestHeads = r, h
		}
	}
	return best
}

// HandsExhausted reports whether both hands are empty.
func (g *GameState) HandsExhausted() bool {
	return g.HandLens[Human] == 0 && g.HandLens[AI] == 0
}

// BothSubmitted reports whether both plays for the round are present.
func (g *GameState) BothSubmitted() bool {
	return g.Subs[Human].Present && g.Subs[AI].Present
}

// ---------------------------------------------------------------------------
// Conservation
// ---------------------------------------------------------------------------

// CheckConservation verifies that every card number 1..104 exists exactly
// once across the undealt remainder, both hands, the four rows, and both
// taken piles. The in-flight pending card, if any, is counted too.
func (g *GameState) CheckConservation() error {
	var seen [DeckSize + 1]uint8

	count := func(c Card) {
		if c.Valid() {
			seen[c]++
		}
	}
	for i := uint8(0); i < g.UndealtLen; i++ {
		count(g.Undealt[i])
	}
	for p := 0; p < NumParticipants; p++ {
		for i := uint8(0); i < g.HandLens[p]; i++ {
			count(g.Hands[p][i])
		}
		for i := uint8(0); i < g.TakenLens[p]; i++ {
			count(g.Taken[p][i])
		}
	}
	for r := 0; r < NumRows; r++ {
		for i := uint8(0); i < g.RowLens[r]; i++ {
			count(g.Rows[r][i])
		}
	}

	for n := MinCard; n <= MaxCard; n++ {
		if seen[n] != 1 {
			return conservationError(n, seen[n])
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Snapshot Undo (Save / Restore)
// ---------------------------------------------------------------------------

// Snapshot is a complete value-copy of GameState.
type Snapshot GameState

// Save returns a snapshot of the current game state.
func (g *GameState) Save() Snapshot { return Snapshot(*g) }

// Restore replaces the game state with the given snapshot.
func (g *GameState) Restore(s Snapshot) { *g = GameState(s) }
