package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed matches every *DecodeError.
	ErrMalformed = errors.New("protocol: malformed message")
	// ErrNilMessage is returned when encoding a nil message.
	ErrNilMessage = errors.New("protocol: nil message")
	// ErrEmptyFrame is returned when encoding an *Unrecognized without a raw frame.
	ErrEmptyFrame = errors.New("protocol: empty frame")
)

// DecodeError reports a frame that is not a well-formed envelope, or a known message with
// missing or mistyped required fields.
type DecodeError struct {
	// Type is the discriminator, when one could be read.
	Type Type
	// Field is the wire path of the offending field, e.g. "botState.energy".
	Field  string
	Reason string
	Cause  error
}

func (e *DecodeError) Error() string {
	msg := "protocol: malformed"
	if e.Type != "" {
		msg += " " + string(e.Type)
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" (field %q)", e.Field)
	}
	msg += ": " + e.Reason
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrMalformed) hold for any DecodeError.
func (e *DecodeError) Is(target error) bool {
	return target == ErrMalformed
}

func malformed(t Type, field, reason string, cause error) *DecodeError {
	return &DecodeError{Type: t, Field: field, Reason: reason, Cause: cause}
}
