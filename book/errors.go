package book

import (
	"errors"
	"fmt"
)

// Sentinel errors for command input validation. Every one is terminal for
// the invoking command: nothing is written when a command fails validation.
var (
	ErrMissingID          = errors.New("no item ids given")
	ErrInvalidID          = errors.New("item not found")
	ErrMissingDescription = errors.New("no description given")
	ErrMissingBoards      = errors.New("no boards given")
	ErrInvalidPriority    = errors.New("priority must be 1, 2 or 3")
	ErrTooManyTargets     = errors.New("more than one target item given")
	ErrNotTask            = errors.New("item is not a task")
)

// InvalidIDError reports the first id that failed validation against its
// collection. It unwraps to ErrInvalidID so callers can classify with
// errors.Is and still recover the offending id with errors.As.
type InvalidIDError struct {
	ID int
}

func (e *InvalidIDError) Error() string { return fmt.Sprintf("item %d not found", e.ID) }

func (e *InvalidIDError) Unwrap() error { return ErrInvalidID }
