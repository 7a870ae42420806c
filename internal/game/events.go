// events.go — outward-facing event types and their mapping from the
// engine's round events.
package game

import (
	"github.com/git-sudo-404/6-Nimmit/engine"
)

// GameEventType represents the type of a game event delivered to the UI.
type GameEventType string

// Event types. The first five mirror the engine's round events in the
// exact order the resolver produced them; awaitRowChoice is a service
// prompt asking the human to pick a row to take.
const (
	EventDealt          GameEventType = "dealt"
	EventPlaced         GameEventType = "placed"
	EventRowTaken       GameEventType = "rowTaken"
	EventRoundComplete  GameEventType = "roundComplete"
	EventGameOver       GameEventType = "gameOver"
	EventAwaitRowChoice GameEventType = "awaitRowChoice"
)

// EventScores carries both running totals in event payloads.
type EventScores struct {
	Human int `json:"human"`
	AI    int `json:"ai"`
}

// GameEvent is the wire structure delivered through BroadcastFn. The UI
// animates from this stream alone and never re-derives placement logic.
type GameEvent struct {
	Type      GameEventType `json:"type"`
	Actor     string        `json:"actor,omitempty"`
	Card      int           `json:"card,omitempty"`
	Row       *int          `json:"row,omitempty"`
	Taken     []int         `json:"taken,omitempty"`
	BullHeads int           `json:"bullHeads,omitempty"`
	Forced    bool          `json:"forced,omitempty"`
	Round     int           `json:"round"`
	Deal      int           `json:"deal"`
	Scores    EventScores   `json:"scores"`
	Winner    string        `json:"winner,omitempty"`
	Draw      bool          `json:"draw,omitempty"`
}

// mapRoundEvent converts an engine event to the outward wire form.
func mapRoundEvent(e engine.RoundEvent) GameEvent {
	ev := GameEvent{
		Round: int(e.Round),
		Deal:  int(e.Deal),
		Scores: EventScores{
			Human: int(e.Scores[engine.Human]),
			AI:    int(e.Scores[engine.AI]),
		},
	}

	switch e.Type {
	case engine.EventDealt:
		ev.Type = EventDealt
	case engine.EventPlaced:
		ev.Type = EventPlaced
		ev.Actor = e.Actor.String()
		ev.Card = int(e.Card)
		row := int(e.Row)
		ev.Row = &row
	case engine.EventRowTaken:
		ev.Type = EventRowTaken
		ev.Actor = e.Actor.String()
		ev.Card = int(e.Card)
		row := int(e.Row)
		ev.Row = &row
		ev.BullHeads = int(e.BullHeads)
		ev.Forced = e.Forced
		for _, c := range e.TakenCards() {
			ev.Taken = append(ev.Taken, int(c))
		}
	case engine.EventRoundComplete:
		ev.Type = EventRoundComplete
	case engine.EventGameOver:
		ev.Type = EventGameOver
		if e.Winner == engine.NoParticipant {
			ev.Draw = true
		} else {
			ev.Winner = e.Winner.String()
		}
	}
	return ev
}
