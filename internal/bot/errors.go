package bot

import (
	"errors"
	"fmt"
)

var (
	// ErrCallback matches every *CallbackError.
	ErrCallback = errors.New("bot: callback failed")
	// ErrAlreadyRun is returned when a Runner is started a second time.
	ErrAlreadyRun = errors.New("bot: runner already used")
)

// CallbackError wraps an error returned by the Handler.
type CallbackError struct {
	Round int
	Turn  int
	Err   error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("bot: callback failed in round %d turn %d: %v", e.Round, e.Turn, e.Err)
}

func (e *CallbackError) Unwrap() error { return e.Err }

func (e *CallbackError) Is(target error) bool { return target == ErrCallback }
