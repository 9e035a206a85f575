package order

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrSessionNotFound     = errors.New("session not found")
	ErrMarmitaNotFound     = errors.New("marmita not found in cart")
	ErrUnknownSize         = errors.New("unknown size")
	ErrExtraUnavailable    = errors.New("extra is not available")
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidTransition   = errors.New("invalid state transition")
	ErrUnknownNeighborhood = errors.New("neighborhood is not in any delivery zone")
)

// TransitionError reports an operation attempted from a state that does not
// allow it. It matches ErrInvalidTransition with errors.Is.
type TransitionError struct {
	Op    string
	State State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s not allowed while %s", e.Op, e.State)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
