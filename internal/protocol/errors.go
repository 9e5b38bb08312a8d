package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrTruncatedVarint           = errors.New("truncated variable byte integer")
	ErrVarintOverflow            = errors.New("variable byte integer overflow")
	ErrTruncatedPayload          = errors.New("property length exceeds buffer")
	ErrTruncatedProperty         = errors.New("property exceeds property length")
	ErrUnknownPropertyIdentifier = errors.New("unknown property identifier")
	ErrStringTooLong             = errors.New("string longer than 65535 bytes")
	ErrInvalidValue              = errors.New("invalid property value")
	ErrDuplicateProperty         = errors.New("duplicate property")
)

// DecodeError reports where in the input a property block stopped parsing.
type DecodeError struct {
	Offset int
	// Length is set when the property length prefix itself is at fault;
	// ID is then meaningless.
	Length bool
	ID     MqttProperty
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Length {
		return fmt.Sprintf("decode properties at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("decode %s at offset %d: %v", e.ID, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError reports which entry of the list could not be encoded.
// Index is -1 when the list as a whole is at fault.
type EncodeError struct {
	Index int
	ID    MqttProperty
	Err   error
}

func (e *EncodeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("encode properties: %v", e.Err)
	}
	return fmt.Sprintf("encode property #%d (%s): %v", e.Index, e.ID, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
