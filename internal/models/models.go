// Package models holds the shared service-tier data structures.
package models

import (
	"github.com/google/uuid"

	"github.com/git-sudo-404/6-Nimmit/engine"
)

// Player is the service-level record for one participant of a match.
type Player struct {
	ID     uuid.UUID          `json:"id"`
	Seat   engine.Participant `json:"seat"`
	Name   string             `json:"name"`
	Score  int                `json:"score"`
	HasWon bool               `json:"hasWon"`
}

// NewPlayer creates a player for the given seat.
func NewPlayer(seat engine.Participant, name string) *Player {
	id, _ := uuid.NewRandom()
	return &Player{ID: id, Seat: seat, Name: name}
}

// MatchRecord is the persisted summary of one finished match.
type MatchRecord struct {
	ID         uuid.UUID      `json:"id"`
	Rounds     int            `json:"rounds"`
	Deals      int            `json:"deals"`
	WinnerSeat string         `json:"winnerSeat"`
	Draw       bool           `json:"draw"`
	Scores     map[string]int `json:"scores"`
}
