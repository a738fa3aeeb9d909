package engine

import (
	"errors"
	"fmt"

	"github.com/nfrund/tankbot/internal/protocol"
)

var (
	// ErrUnexpectedMessage matches every *ProtocolError.
	ErrUnexpectedMessage = errors.New("engine: unexpected message")
	// ErrTerminated is returned by Step once the machine has terminated.
	ErrTerminated = errors.New("engine: session terminated")
)

// ProtocolError reports a recognized message that arrived in a phase that does not allow it.
type ProtocolError struct {
	Phase  Phase
	Type   protocol.Type
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("engine: unexpected %s in phase %s: %s", e.Type, e.Phase, e.Reason)
}

func (e *ProtocolError) Is(target error) bool {
	return target == ErrUnexpectedMessage
}
