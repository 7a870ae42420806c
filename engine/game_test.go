package engine

import "testing"

// TestNewGameDefaults: fresh state is NotStarted with no winner.
func TestNewGameDefaults(t *testing.T) {
	g := NewGame(42, DefaultRules())
	if g.Phase != PhaseNotStarted {
		t.Errorf("phase = %s, want not_started", g.Phase)
	}
	if g.Winner != NoParticipant {
		t.Errorf("winner = %v, want NoParticipant", g.Winner)
	}
	if g.Rules.TargetScore != 66 {
		t.Errorf("target score = %d, want 66", g.Rules.TargetScore)
	}
}

// TestNewGameZeroSeed: seed 0 must not wedge the xorshift generator.
func TestNewGameZeroSeed(t *testing.T) {
	g := NewGame(0, DefaultRules())
	if g.RNG == 0 {
		t.Fatal("RNG must not be 0")
	}
	if g.nextRand() == 0 {
		t.Error("generator must produce non-zero output")
	}
}

// TestDealShape: 10 cards per hand, four single-card rows, hands sorted,
// all dealt cards disjoint, conservation intact.
func TestDealShape(t *testing.T) {
	g := NewGame(7, DefaultRules())
	if err := g.Deal(); err != nil {
		t.Fatalf("Deal: %v", err)
	}
	if g.Phase != PhaseAwaitingSubmissions {
		t.Errorf("phase = %s, want awaiting_submissions", g.Phase)
	}
	for p := Participant(0); p < NumParticipants; p++ {
		if g.HandLens[p] != 10 {
			t.Errorf("hand %s has %d cards, want 10", p, g.HandLens[p])
		}
		hand := g.Hand(p)
		for i := 1; i < len(hand); i++ {
			if hand[i-1] >= hand[i] {
				t.Errorf("hand %s not sorted ascending: %v", p, hand)
				break
			}
		}
	}
	for r := 0; r < NumRows; r++ {
		if g.RowLens[r] != 1 {
			t.Errorf("row %d has %d cards, want 1 starter", r, g.RowLens[r])
		}
	}
	if g.UndealtLen != 80 {
		t.Errorf("undealt remainder = %d, want 80", g.UndealtLen)
	}
	if err := g.CheckConservation(); err != nil {
		t.Errorf("conservation after deal: %v", err)
	}
}

// TestDealInsufficientCards: an oversized deal fails with no mutation.
func TestDealInsufficientCards(t *testing.T) {
	rules := DefaultRules()
	rules.HandSize = 51 // 2*51 + 4 > 104
	g := NewGame(7, rules)
	before := g.Save()
	err := g.Deal()
	if err != ErrInsufficientCards {
		t.Fatalf("err = %v, want ErrInsufficientCards", err)
	}
	if g != GameState(before) {
		t.Error("failed deal must not mutate state")
	}
}

// TestDealEmitsDealtEvent: the deal records a single dealt event.
func TestDealEmitsDealtEvent(t *testing.T) {
	g := NewGame(7, DefaultRules())
	if err := g.Deal(); err != nil {
		t.Fatalf("Deal: %v", err)
	}
	evs := g.TakeEvents()
	if len(evs) != 1 || evs[0].Type != EventDealt {
		t.Fatalf("events = %v, want single dealt event", evs)
	}
	if evs[0].Deal != 1 {
		t.Errorf("deal number = %d, want 1", evs[0].Deal)
	}
	if len(g.TakeEvents()) != 0 {
		t.Error("TakeEvents must drain the buffer")
	}
}

// TestShuffleUniformity: over many deals from one generator stream, every
// card number should land in the first starter row roughly equally often.
// Deterministic (fixed seed), so the bounds are not flaky.
func TestShuffleUniformity(t *testing.T) {
	const trials = 10400 // expected count per card: 100
	g := NewGame(987654321, DefaultRules())
	counts := make(map[Card]int, DeckSize)
	for i := 0; i < trials; i++ {
		if err := g.Deal(); err != nil {
			t.Fatalf("Deal %d: %v", i, err)
		}
		counts[g.Rows[0][0]]++
		g.TakeEvents()
	}
	for n := MinCard; n <= MaxCard; n++ {
		c := counts[n]
		if c < 50 || c > 160 {
			t.Errorf("card %d seeded row 0 %d times, want ~100 (bounds 50..160)", n, c)
		}
	}
}

// TestDealRotatesCards: two consecutive deals must not produce identical
// hands (the generator advances between deals).
func TestDealRotatesCards(t *testing.T) {
	g := NewGame(99, DefaultRules())
	if err := g.Deal(); err != nil {
		t.Fatal(err)
	}
	first := g.Hand(Human)
	if err := g.Deal(); err != nil {
		t.Fatal(err)
	}
	second := g.Hand(Human)
	same := true
	for i := range first {
		if first[i] != second[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("consecutive deals produced identical human hands")
	}
}

// TestSnapshotRestore: Save/Restore are exact value copies.
func TestSnapshotRestore(t *testing.T) {
	g := NewGame(5, DefaultRules())
	if err := g.Deal(); err != nil {
		t.Fatal(err)
	}
	snap := g.Save()
	card := g.Hands[Human][0]
	if err := g.SubmitCard(Human, card, NoRow); err != nil {
		t.Fatal(err)
	}
	g.Restore(snap)
	if g != GameState(snap) {
		t.Error("restored state differs from snapshot")
	}
	if g.Subs[Human].Present {
		t.Error("restored state must not carry the submission")
	}
}
