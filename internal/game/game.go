// internal/game/game.go
package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/git-sudo-404/6-Nimmit/engine"
	"github.com/git-sudo-404/6-Nimmit/internal/cache"
	"github.com/git-sudo-404/6-Nimmit/internal/database"
	"github.com/git-sudo-404/6-Nimmit/internal/gateway"
	"github.com/git-sudo-404/6-Nimmit/internal/models"
)

// OnGameEndFunc is invoked once when a match terminates. winner is
// uuid.Nil on a draw.
type OnGameEndFunc func(gameID uuid.UUID, winner uuid.UUID, scores map[uuid.UUID]int)

// NimmtGame is one match of Take 6: the engine state behind a mutex plus
// the orchestration around it — concurrent submission collection, the AI
// gateway call with its fallback policy, event fan-out, and the audit
// trail. The session is the sole mutator of the engine state.
type NimmtGame struct {
	ID      uuid.UUID
	Players [engine.NumParticipants]*models.Player

	Engine    engine.GameState
	Rules     engine.Rules
	Algorithm string

	Gateway gateway.MoveProvider

	Mu sync.Mutex

	// BroadcastFn delivers events to the UI layer in resolver order.
	BroadcastFn func(ev GameEvent)
	// OnGameEnd is executed after the gameOver event has been delivered.
	OnGameEnd OnGameEndFunc

	log    *logrus.Entry
	ctx    context.Context
	cancel context.CancelFunc

	// roundTag increments per collection window; a gateway response
	// carrying a stale tag is discarded on arrival.
	roundTag uint64

	awaitingHumanRow bool
	eventIndex       int
	started          bool
}

// NewNimmtGame creates an unstarted match against the given move provider.
func NewNimmtGame(seed uint64, rules engine.Rules, gw gateway.MoveProvider, algorithm string) *NimmtGame {
	id, _ := uuid.NewRandom()
	ctx, cancel := context.WithCancel(context.Background())
	g := &NimmtGame{
		ID:        id,
		Rules:     rules,
		Algorithm: algorithm,
		Gateway:   gw,
		ctx:       ctx,
		cancel:    cancel,
		log:       logrus.WithField("game_id", id),
	}
	g.Engine = engine.NewGame(seed, rules)
	g.Players[engine.Human] = models.NewPlayer(engine.Human, "human")
	g.Players[engine.AI] = models.NewPlayer(engine.AI, "ai")
	return g
}

// Start deals the first hands and opens the first submission window.
func (g *NimmtGame) Start() error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.started {
		return errors.New("game already started")
	}
	if err := g.Engine.Deal(); err != nil {
		return err
	}
	g.started = true
	g.roundTag++

	g.log.WithFields(logrus.Fields{
		"phase": g.Engine.Phase.String(),
		"deal":  g.Engine.DealNumber,
	}).Info("game started")

	g.persistInitialMatchState()
	g.flushEventsLocked()
	g.requestAIMoveAsync(g.roundTag)
	return nil
}

// SubmitHumanMove records the human's play for the current round.
// takeRow pre-answers the no-valid-row case; pass engine.NoRow when the
// UI has not asked. An ErrAmbiguousAction return means the resolution is
// paused waiting on ProvideHumanRowChoice; every other error is a strict
// no-op on game state.
func (g *NimmtGame) SubmitHumanMove(card engine.Card, takeRow engine.RowIndex) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if err := g.Engine.SubmitCard(engine.Human, card, takeRow); err != nil {
		g.log.WithError(err).WithField("card", card).Warn("human submission rejected")
		return err
	}
	g.logRound("humanSubmitted", map[string]interface{}{"card": int(card)})
	return g.maybeResolveLocked()
}

// ProvideHumanRowChoice answers a pending no-valid-row prompt and resumes
// the paused resolution.
func (g *NimmtGame) ProvideHumanRowChoice(row engine.RowIndex) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if !g.awaitingHumanRow {
		return engine.ErrIllegalMove
	}
	if err := g.Engine.ProvideRowChoice(engine.Human, row); err != nil {
		return err
	}
	g.awaitingHumanRow = false
	g.completeResolutionLocked()
	return nil
}

// HumanHand returns the human's remaining cards for the UI.
func (g *NimmtGame) HumanHand() []engine.Card {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.Engine.Hand(engine.Human)
}

// StateSnapshot returns a value copy of the engine state for observers.
func (g *NimmtGame) StateSnapshot() engine.Snapshot {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.Engine.Save()
}

// Close abandons the match: outstanding gateway work is cancelled and any
// late response is discarded on arrival.
func (g *NimmtGame) Close() {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	g.cancel()
	g.roundTag++
}

// maybeResolveLocked runs the resolver once both plays are in.
// Assumes lock is held by caller.
func (g *NimmtGame) maybeResolveLocked() error {
	if !g.Engine.BothSubmitted() {
		return nil
	}

	err := g.Engine.Resolve()
	if errors.Is(err, engine.ErrAmbiguousAction) {
		// The AI always carries a row choice, so the paused pair is the
		// human's. Flush what already resolved and prompt.
		g.awaitingHumanRow = true
		g.flushEventsLocked()
		g.broadcast(GameEvent{
			Type:  EventAwaitRowChoice,
			Actor: engine.Human.String(),
			Round: int(g.Engine.RoundNumber),
			Deal:  int(g.Engine.DealNumber),
		})
		return err
	}
	if err != nil {
		g.log.WithError(err).Error("resolution failed")
		return err
	}

	g.completeResolutionLocked()
	return nil
}

// completeResolutionLocked finishes a resolved round: events out, phase
// advanced, and either the next collection window or game end.
// Assumes lock is held by caller.
func (g *NimmtGame) completeResolutionLocked() {
	g.flushEventsLocked()

	if err := g.Engine.AdvanceRound(); err != nil {
		g.log.WithError(err).Error("round advance failed")
		return
	}
	g.flushEventsLocked()

	if g.Engine.IsGameOver() {
		g.finishGameLocked()
		return
	}

	g.roundTag++
	g.requestAIMoveAsync(g.roundTag)
}

// requestAIMoveAsync collects the AI's play for the tagged round without
// holding the lock across the network call.
// Assumes lock is held by caller.
func (g *NimmtGame) requestAIMoveAsync(tag uint64) {
	req := g.buildMoveRequestLocked()

	go func() {
		resp, err := g.Gateway.RequestMove(g.ctx, req)

		g.Mu.Lock()
		defer g.Mu.Unlock()

		if tag != g.roundTag || g.Engine.IsGameOver() {
			g.log.WithField("tag", tag).Debug("discarding stale gateway response")
			return
		}

		var card engine.Card
		takeRow := g.Engine.CheapestRow()
		if err != nil {
			// Bounded retries already happened inside the client. The
			// AI forfeits the round: lowest remaining card, cheapest row.
			g.log.WithError(err).Warn("ai gateway failed, applying forfeit policy")
			g.logRound("aiForfeit", map[string]interface{}{"error": err.Error()})
			card = g.Engine.LowestCard(engine.AI)
		} else {
			card = engine.Card(resp.ChosenCardNumber)
			if resp.TakeRowNumber != nil {
				takeRow = engine.RowIndex(*resp.TakeRowNumber)
			}
		}

		if err := g.Engine.SubmitCard(engine.AI, card, takeRow); err != nil {
			g.log.WithError(err).WithField("card", card).Error("ai submission rejected")
			return
		}
		g.logRound("aiSubmitted", nil)

		if rerr := g.maybeResolveLocked(); rerr != nil && !errors.Is(rerr, engine.ErrAmbiguousAction) {
			g.log.WithError(rerr).Error("resolution after ai submission failed")
		}
	}()
}

// buildMoveRequestLocked snapshots the public state for the gateway.
// The human hand is reduced to its size so the move service cannot
// condition on hidden cards.
// Assumes lock is held by caller.
func (g *NimmtGame) buildMoveRequestLocked() gateway.MoveRequest {
	board := make([][]int, engine.NumRows)
	for r := engine.RowIndex(0); r < engine.NumRows; r++ {
		row := g.Engine.Row(r)
		board[r] = make([]int, len(row))
		for i, c := range row {
			board[r][i] = int(c)
		}
	}
	aiHand := g.Engine.Hand(engine.AI)
	hand := make([]int, len(aiHand))
	for i, c := range aiHand {
		hand[i] = int(c)
	}
	return gateway.MoveRequest{
		Board:         board,
		AIHand:        hand,
		HumanHandSize: len(g.Engine.Hand(engine.Human)),
		Scores: gateway.Scores{
			Human: int(g.Engine.Score(engine.Human)),
			AI:    int(g.Engine.Score(engine.AI)),
		},
		Algorithm: g.Algorithm,
	}
}

// flushEventsLocked drains the engine event buffer, fanning each event
// out to the UI and the historian in order.
// Assumes lock is held by caller.
func (g *NimmtGame) flushEventsLocked() {
	for _, e := range g.Engine.TakeEvents() {
		ev := mapRoundEvent(e)
		g.broadcast(ev)
		g.logRound(string(ev.Type), map[string]interface{}{
			"actor": ev.Actor,
			"card":  ev.Card,
		})
	}
}

// broadcast delivers one event through BroadcastFn when wired.
// Assumes lock is held by caller.
func (g *NimmtGame) broadcast(ev GameEvent) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	}
}

// finishGameLocked records the outcome on the player models, notifies the
// end callback, and persists the final snapshot.
// Assumes lock is held by caller.
func (g *NimmtGame) finishGameLocked() {
	scores := make(map[uuid.UUID]int, engine.NumParticipants)
	winner := uuid.Nil
	for seat := engine.Participant(0); seat < engine.NumParticipants; seat++ {
		p := g.Players[seat]
		p.Score = int(g.Engine.Score(seat))
		p.HasWon = g.Engine.Winner == seat
		if p.HasWon {
			winner = p.ID
		}
		scores[p.ID] = p.Score
	}

	g.log.WithFields(logrus.Fields{
		"winner": g.Engine.Winner.String(),
		"human":  g.Engine.Score(engine.Human),
		"ai":     g.Engine.Score(engine.AI),
		"rounds": g.Engine.RoundNumber,
	}).Info("game over")

	g.persistFinalMatchState()

	if g.OnGameEnd != nil {
		g.OnGameEnd(g.ID, winner, scores)
	}
}

// logRound pushes one historian record to Redis, asynchronously and
// fire-and-forget. Assumes lock is held by caller.
func (g *NimmtGame) logRound(eventType string, payload map[string]interface{}) {
	g.eventIndex++
	rec := cache.RoundRecord{
		GameID:      g.ID,
		EventIndex:  g.eventIndex,
		Round:       int(g.Engine.RoundNumber),
		Deal:        int(g.Engine.DealNumber),
		EventType:   eventType,
		Payload:     payload,
		TimestampMs: time.Now().UnixMilli(),
	}
	go func(rec cache.RoundRecord) {
		ctx, cancelFn := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancelFn()
		if err := cache.PublishRoundRecord(ctx, rec); err != nil {
			g.log.WithError(err).WithField("event_index", rec.EventIndex).Error("failed publishing round record")
		}
	}(rec)
}

// persistInitialMatchState saves the deal snapshot for replay/audit.
// Assumes lock is held by caller.
func (g *NimmtGame) persistInitialMatchState() {
	type initialState struct {
		HumanHand []int `json:"humanHand"`
		AIHandLen int   `json:"aiHandLen"`
		Rows      [][]int `json:"rows"`
	}
	snap := initialState{Rows: make([][]int, engine.NumRows)}
	for _, c := range g.Engine.Hand(engine.Human) {
		snap.HumanHand = append(snap.HumanHand, int(c))
	}
	snap.AIHandLen = len(g.Engine.Hand(engine.AI))
	for r := engine.RowIndex(0); r < engine.NumRows; r++ {
		for _, c := range g.Engine.Row(r) {
			snap.Rows[r] = append(snap.Rows[r], int(c))
		}
	}

	if database.DB != nil {
		id := g.ID
		go func() {
			ctx, cancelFn := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelFn()
			if err := database.UpsertInitialMatchState(ctx, id, snap); err != nil {
				logrus.WithError(err).Error("failed persisting initial match state")
			}
		}()
	}
}

// persistFinalMatchState saves the terminal record.
// Assumes lock is held by caller.
func (g *NimmtGame) persistFinalMatchState() {
	rec := models.MatchRecord{
		ID:         g.ID,
		Rounds:     int(g.Engine.RoundNumber),
		Deals:      int(g.Engine.DealNumber),
		WinnerSeat: g.Engine.Winner.String(),
		Draw:       g.Engine.IsDraw(),
		Scores: map[string]int{
			engine.Human.String(): int(g.Engine.Score(engine.Human)),
			engine.AI.String():    int(g.Engine.Score(engine.AI)),
		},
	}
	if database.DB != nil {
		go func() {
			ctx, cancelFn := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelFn()
			if err := database.StoreFinalMatchState(ctx, rec.ID, rec); err != nil {
				logrus.WithError(err).Error("failed persisting final match state")
			}
		}()
	}
}
