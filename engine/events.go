package engine

// RoundEventType discriminates the observable events of a round.
type RoundEventType uint8

const (
	EventDealt RoundEventType = iota
	EventPlaced
	EventRowTaken
	EventRoundComplete
	EventGameOver
)

// String returns the wire name of the event type.
func (t RoundEventType) String() string {
	switch t {
	case EventDealt:
		return "dealt"
	case EventPlaced:
		return "placed"
	case EventRowTaken:
		return "rowTaken"
	case EventRoundComplete:
		return "roundComplete"
	case EventGameOver:
		return "gameOver"
	default:
		return "unknown"
	}
}

// MaxRoundEvents bounds the event buffer: one dealt, two placements, two
// row takes, round complete, game over.
const MaxRoundEvents = 8

// RoundEvent is one fully observable step of a round, recorded in the
// exact order the resolver produced it so observers can replay placement
// without re-deriving the rules.
type RoundEvent struct {
	Type      RoundEventType
	Actor     Participant
	Card      Card                        // card placed (Placed, RowTaken)
	Row       RowIndex                    // affected row
	Taken     [RowCapacity]Card           // cards collected on a take
	TakenLen  uint8
	BullHeads int8                        // heads credited by a take
	Forced    bool                        // sixth-card take vs voluntary
	Round     uint16                      // round number at emission
	Deal      uint16                      // deal number at emission
	Scores    [NumParticipants]int16      // scores after the event
	Winner    Participant                 // set on GameOver
}

// TakenCards returns the collected cards of a take event as a slice.
func (e *RoundEvent) TakenCards() []Card {
	out := make([]Card, e.TakenLen)
	copy(out, e.Taken[:e.TakenLen])
	return out
}

// TakeEvents drains the recorded event buffer, returning the events in
// emission order.
func (g *GameState) TakeEvents() []RoundEvent {
	out := make([]RoundEvent, g.EventsLen)
	copy(out, g.Events[:g.EventsLen])
	g.EventsLen = 0
	return out
}

func (g *GameState) appendEvent(e RoundEvent) {
	if g.EventsLen >= MaxRoundEvents {
		// The buffer is sized for the worst round; dropping is a bug in
		// the caller's drain cadence, not a rules condition.
		return
	}
	e.Round = g.RoundNumber
	e.Deal = g.DealNumber
	e.Scores = g.Scores
	g.Events[g.EventsLen] = e
	g.EventsLen++
}

func (g *GameState) recordDealt() {
	g.appendEvent(RoundEvent{Type: EventDealt, Winner: NoParticipant})
}

func (g *GameState) recordPlaced(actor Participant, c Card, row RowIndex) {
	g.appendEvent(RoundEvent{Type: EventPlaced, Actor: actor, Card: c, Row: row, Winner: NoParticipant})
}

func (g *GameState) recordRowTaken(actor Participant, c Card, row RowIndex, taken []Card, heads int8, forced bool) {
	e := RoundEvent{Type: EventRowTaken, Actor: actor, Card: c, Row: row, BullHeads: heads, Forced: forced, Winner: NoParticipant}
	e.TakenLen = uint8(len(taken))
	copy(e.Taken[:], taken)
	g.appendEvent(e)
}

func (g *GameState) recordRoundComplete() {
	g.appendEvent(RoundEvent{Type: EventRoundComplete, Winner: NoParticipant})
}

func (g *GameState) recordGameOver() {
	g.appendEvent(RoundEvent{Type: EventGameOver, Winner: g.Winner})
}
