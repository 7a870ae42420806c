package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/git-sudo-404/6-Nimmit/engine"
	"github.com/git-sudo-404/6-Nimmit/internal/gateway"
)

// fakeProvider is a scriptable MoveProvider. With no script it plays the
// lowest card in the AI hand; block, when set, holds the response until
// the channel is closed or the context is cancelled.
type fakeProvider struct {
	mu    sync.Mutex
	fail  bool
	block chan struct{}
	calls int
	pick  func(req gateway.MoveRequest) gateway.MoveResponse
}

func (f *fakeProvider) RequestMove(ctx context.Context, req gateway.MoveRequest) (gateway.MoveResponse, error) {
	f.mu.Lock()
	f.calls++
	fail, block, pick := f.fail, f.block, f.pick
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return gateway.MoveResponse{}, ctx.Err()
		}
	}
	if fail {
		return gateway.MoveResponse{}, gateway.ErrUnavailable
	}
	if pick != nil {
		return pick(req), nil
	}
	low := req.AIHand[0]
	for _, n := range req.AIHand {
		if n < low {
			low = n
		}
	}
	return gateway.MoveResponse{ChosenCardNumber: low}, nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// eventRecorder collects broadcast events; BroadcastFn runs under the
// session lock, so the recorder keeps its own.
type eventRecorder struct {
	mu  sync.Mutex
	evs []GameEvent
}

func (r *eventRecorder) record(ev GameEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evs = append(r.evs, ev)
}

func (r *eventRecorder) snapshot() []GameEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]GameEvent, len(r.evs))
	copy(out, r.evs)
	return out
}

func (r *eventRecorder) first(typ GameEventType) (GameEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.evs {
		if ev.Type == typ {
			return ev, true
		}
	}
	return GameEvent{}, false
}

func (r *eventRecorder) has(typ GameEventType) bool {
	_, ok := r.first(typ)
	return ok
}

func waitForEvent(t *testing.T, rec *eventRecorder, typ GameEventType) {
	t.Helper()
	require.Eventually(t, func() bool { return rec.has(typ) }, 2*time.Second, 5*time.Millisecond,
		"expected %s event", typ)
}

// craftedState builds an engine state mid-deal for scenario tests.
func craftedState(rows [engine.NumRows][]engine.Card, humanHand, aiHand []engine.Card) engine.GameState {
	var g engine.GameState
	g.Rules = engine.DefaultRules()
	g.Winner = engine.NoParticipant
	g.Phase = engine.PhaseAwaitingSubmissions
	g.RNG = 1
	g.DealNumber = 1
	for r, cards := range rows {
		for i, c := range cards {
			g.Rows[r][i] = c
		}
		g.RowLens[r] = uint8(len(cards))
	}
	for i, c := range humanHand {
		g.Hands[engine.Human][i] = c
	}
	g.HandLens[engine.Human] = uint8(len(humanHand))
	for i, c := range aiHand {
		g.Hands[engine.AI][i] = c
	}
	g.HandLens[engine.AI] = uint8(len(aiHand))
	return g
}

func TestStartOpensFirstRound(t *testing.T) {
	fp := &fakeProvider{}
	rec := &eventRecorder{}
	g := NewNimmtGame(42, engine.DefaultRules(), fp, gateway.AlgorithmMCTS)
	g.BroadcastFn = rec.record
	defer g.Close()

	require.NoError(t, g.Start())
	require.Error(t, g.Start(), "second start must be rejected")

	assert.True(t, rec.has(EventDealt))

	hand := g.HumanHand()
	require.Len(t, hand, int(engine.DefaultRules().HandSize))
	for i := 1; i < len(hand); i++ {
		assert.Less(t, hand[i-1], hand[i], "hand must be sorted")
	}

	g.Mu.Lock()
	row := g.Engine.CheapestRow()
	g.Mu.Unlock()
	require.NoError(t, g.SubmitHumanMove(hand[0], row))

	waitForEvent(t, rec, EventRoundComplete)

	// Exactly one card event per participant, both before roundComplete.
	evs := rec.snapshot()
	var cardEvents []GameEvent
	completeAt := -1
	for i, ev := range evs {
		switch ev.Type {
		case EventPlaced, EventRowTaken:
			cardEvents = append(cardEvents, ev)
		case EventRoundComplete:
			if completeAt < 0 {
				completeAt = i
			}
		}
	}
	require.Len(t, cardEvents, 2)
	assert.Greater(t, completeAt, 1)
	actors := map[string]bool{}
	for _, ev := range cardEvents {
		actors[ev.Actor] = true
	}
	assert.True(t, actors["human"])
	assert.True(t, actors["ai"])

	snap := g.StateSnapshot()
	assert.Equal(t, uint16(1), snap.RoundNumber)
	assert.Equal(t, engine.PhaseAwaitingSubmissions, snap.Phase)
}

func TestGatewayFailureForfeitsLowestCard(t *testing.T) {
	fp := &fakeProvider{fail: true}
	rec := &eventRecorder{}
	g := NewNimmtGame(7, engine.DefaultRules(), fp, gateway.AlgorithmExpectiminimax)
	g.BroadcastFn = rec.record
	defer g.Close()

	require.NoError(t, g.Start())

	g.Mu.Lock()
	aiLow := g.Engine.LowestCard(engine.AI)
	row := g.Engine.CheapestRow()
	g.Mu.Unlock()

	hand := g.HumanHand()
	require.NoError(t, g.SubmitHumanMove(hand[0], row))
	waitForEvent(t, rec, EventRoundComplete)

	found := false
	for _, ev := range rec.snapshot() {
		if (ev.Type == EventPlaced || ev.Type == EventRowTaken) && ev.Actor == "ai" {
			assert.Equal(t, int(aiLow), ev.Card, "forfeit must play the lowest remaining card")
			found = true
			break
		}
	}
	assert.True(t, found, "ai card event not seen")
}

func TestSubmissionGuards(t *testing.T) {
	fp := &fakeProvider{block: make(chan struct{})}
	g := NewNimmtGame(11, engine.DefaultRules(), fp, gateway.AlgorithmMCTS)
	defer g.Close()

	// Before the first deal there is no submission window.
	require.ErrorIs(t, g.SubmitHumanMove(10, engine.NoRow), engine.ErrIllegalMove)
	require.ErrorIs(t, g.ProvideHumanRowChoice(0), engine.ErrIllegalMove)

	require.NoError(t, g.Start())
	hand := g.HumanHand()
	require.NoError(t, g.SubmitHumanMove(hand[0], engine.NoRow))

	// One play per round; the gateway is still blocked so the window is open.
	require.ErrorIs(t, g.SubmitHumanMove(hand[1], engine.NoRow), engine.ErrIllegalMove)

	// No pending take either.
	require.ErrorIs(t, g.ProvideHumanRowChoice(0), engine.ErrIllegalMove)
}

func TestHumanRowChoiceFlow(t *testing.T) {
	fp := &fakeProvider{block: make(chan struct{})}
	rec := &eventRecorder{}
	g := NewNimmtGame(1, engine.DefaultRules(), fp, gateway.AlgorithmMCTS)
	g.BroadcastFn = rec.record
	defer g.Close()

	// Human's 5 undercuts every row; AI's 80 lands on row 2.
	g.Mu.Lock()
	g.Engine = craftedState(
		[engine.NumRows][]engine.Card{{20}, {31}, {40}, {90}},
		[]engine.Card{5, 100},
		[]engine.Card{80, 99},
	)
	g.started = true
	g.roundTag = 1
	require.NoError(t, g.Engine.SubmitCard(engine.AI, 80, engine.NoRow))
	g.Mu.Unlock()

	err := g.SubmitHumanMove(5, engine.NoRow)
	require.ErrorIs(t, err, engine.ErrAmbiguousAction)
	assert.True(t, rec.has(EventAwaitRowChoice))

	// Bad answers leave the prompt standing.
	require.Error(t, g.ProvideHumanRowChoice(7))

	require.NoError(t, g.ProvideHumanRowChoice(1))

	evs := rec.snapshot()
	var taken, placed *GameEvent
	for i := range evs {
		switch evs[i].Type {
		case EventRowTaken:
			taken = &evs[i]
		case EventPlaced:
			placed = &evs[i]
		}
	}
	require.NotNil(t, taken)
	assert.Equal(t, "human", taken.Actor)
	assert.Equal(t, 5, taken.Card)
	assert.Equal(t, 1, taken.BullHeads)
	assert.False(t, taken.Forced)
	assert.Equal(t, []int{31}, taken.Taken)
	require.NotNil(t, placed)
	assert.Equal(t, "ai", placed.Actor)
	assert.Equal(t, 80, placed.Card)

	assert.True(t, rec.has(EventRoundComplete))

	snap := g.StateSnapshot()
	assert.Equal(t, int16(1), snap.Scores[engine.Human])
	assert.Equal(t, int16(0), snap.Scores[engine.AI])
	assert.Equal(t, uint16(1), snap.RoundNumber)
	assert.Equal(t, engine.PhaseAwaitingSubmissions, snap.Phase)
}

func TestCloseDiscardsLateGatewayResponse(t *testing.T) {
	fp := &fakeProvider{block: make(chan struct{})}
	g := NewNimmtGame(3, engine.DefaultRules(), fp, gateway.AlgorithmMCTS)

	require.NoError(t, g.Start())
	require.Eventually(t, func() bool { return fp.callCount() == 1 }, time.Second, 5*time.Millisecond)

	g.Close()
	close(fp.block)

	// The response, whenever it lands, carries a stale tag and is dropped.
	time.Sleep(50 * time.Millisecond)
	g.Mu.Lock()
	assert.False(t, g.Engine.Subs[engine.AI].Present)
	g.Mu.Unlock()
}

func TestGameEndCallbackAndOutcome(t *testing.T) {
	fp := &fakeProvider{}
	rec := &eventRecorder{}
	g := NewNimmtGame(1, engine.DefaultRules(), fp, gateway.AlgorithmMCTS)
	g.BroadcastFn = rec.record

	var (
		endMu     sync.Mutex
		endCalled bool
		endWinner uuid.UUID
		endScores map[uuid.UUID]int
	)
	g.OnGameEnd = func(gameID, winner uuid.UUID, scores map[uuid.UUID]int) {
		endMu.Lock()
		defer endMu.Unlock()
		endCalled = true
		endWinner = winner
		endScores = scores
	}

	// Last cards of the deal; the forced take on row 3 puts the human at
	// 70 and hands the match to the AI.
	g.Mu.Lock()
	g.Engine = craftedState(
		[engine.NumRows][]engine.Card{{10}, {20}, {30}, {90, 91, 92, 93, 94}},
		[]engine.Card{95},
		[]engine.Card{50},
	)
	g.Engine.Scores[engine.Human] = 63
	g.started = true
	g.roundTag = 1
	require.NoError(t, g.Engine.SubmitCard(engine.AI, 50, engine.NoRow))
	g.Mu.Unlock()

	require.NoError(t, g.SubmitHumanMove(95, engine.NoRow))

	over, ok := rec.first(EventGameOver)
	require.True(t, ok)
	assert.Equal(t, "ai", over.Winner)
	assert.False(t, over.Draw)

	endMu.Lock()
	require.True(t, endCalled)
	assert.Equal(t, g.Players[engine.AI].ID, endWinner)
	assert.Equal(t, 70, endScores[g.Players[engine.Human].ID])
	assert.Equal(t, 0, endScores[g.Players[engine.AI].ID])
	endMu.Unlock()

	assert.True(t, g.Players[engine.AI].HasWon)
	assert.False(t, g.Players[engine.Human].HasWon)
	assert.Equal(t, 70, g.Players[engine.Human].Score)

	snap := g.StateSnapshot()
	assert.Equal(t, engine.PhaseGameOver, snap.Phase)
	assert.Equal(t, engine.AI, snap.Winner)

	// Terminal state rejects further play.
	require.ErrorIs(t, g.SubmitHumanMove(95, engine.NoRow), engine.ErrGameOver)
}
