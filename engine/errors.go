package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers match with errors.Is; wrapped variants carry
// the offending detail.
var (
	// ErrIllegalMove covers submissions outside AwaitingSubmissions,
	// cards not held by the submitting participant, duplicate
	// submissions, and malformed row indices. The state is untouched.
	ErrIllegalMove = errors.New("illegal move")

	// ErrAmbiguousAction is returned when a play has no valid row and no
	// row choice was supplied. Resolution stays paused on the pair until
	// ProvideRowChoice is called.
	ErrAmbiguousAction = errors.New("no valid row: row choice required")

	// ErrInsufficientCards is returned when the configured deal exceeds
	// the 104-card deck. No partial deal is committed.
	ErrInsufficientCards = errors.New("insufficient cards in deck")

	// ErrGameOver rejects any mutation after termination.
	ErrGameOver = errors.New("game is already over")

	// ErrConservation reports a violated card-conservation invariant.
	ErrConservation = errors.New("card conservation violated")
)

func illegalMovef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrIllegalMove, fmt.Sprintf(format, args...))
}

func conservationError(c Card, count uint8) error {
	return fmt.Errorf("%w: card %d present %d times", ErrConservation, c, count)
}
