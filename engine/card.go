package engine

// Card is a card number in 1..104. The zero value marks an empty slot.
type Card uint8

// EmptyCard represents the absence of a card.
const EmptyCard Card = 0

// MinCard and MaxCard bound the valid card numbers.
const (
	MinCard Card = 1
	MaxCard Card = 104
)

// Valid reports whether the card number is in 1..104.
func (c Card) Valid() bool { return c >= MinCard && c <= MaxCard }

// BullHeads returns the bull-head (penalty point) value of the card.
// Rules are checked in priority order; the first match wins:
//   - 55 → 7
//   - multiple of 11 → 5
//   - multiple of 10 → 3
//   - multiple of 5 → 2
//   - otherwise → 1
//
// 55 must be matched before the multiple-of-11 and multiple-of-5 rules,
// and multiples of 10 before the multiple-of-5 rule.
func (c Card) BullHeads() int8 {
	n := int(c)
	switch {
	case n == 55:
		return 7
	case n%11 == 0:
		return 5
	case n%10 == 0:
		return 3
	case n%5 == 0:
		return 2
	default:
		return 1
	}
}

// Participant identifies one of the two actors in a match.
type Participant uint8

const (
	Human Participant = 0
	AI    Participant = 1

	// NoParticipant marks the absence of a winner (draw or game running).
	NoParticipant Participant = 0xFF
)

// OpponentOf returns the other participant.
func OpponentOf(p Participant) Participant { return 1 - p }

// String returns a short label for logs and event payloads.
func (p Participant) String() string {
	switch p {
	case Human:
		return "human"
	case AI:
		return "ai"
	default:
		return "none"
	}
}

// RowIndex addresses one of the four board rows.
type RowIndex int8

// NoRow is the placement result when the played card is lower than every
// row's last card and the owner must take a row of their choice.
const NoRow RowIndex = -1

// Valid reports whether the index addresses a board row.
func (r RowIndex) Valid() bool { return r >= 0 && r < NumRows }
