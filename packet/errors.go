package packet

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated is returned when a declared length runs past the available bytes
	ErrTruncated = errors.New("packet: truncated")

	// ErrIncompleteFrame is returned by the Framer while a frame is still being received
	ErrIncompleteFrame = fmt.Errorf("%w: incomplete frame", ErrTruncated)

	ErrUnknownMessageType  = errors.New("packet: unknown message type")
	ErrBadMessageLength    = errors.New("packet: bad message length")
	ErrInvalidPrefixLength = errors.New("packet: invalid prefix length")
	ErrLengthFlagMismatch  = errors.New("packet: attribute length does not fit length field")
	ErrUnimplemented       = errors.New("packet: unimplemented")
)

// FrameError is a decode failure local to one frame. The stream stays in sync
// since the frame was cut out using the header's length field.
type FrameError struct {
	Header BGPHeader
	Err    error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("%s message (length %d): %v", msgTypeName(e.Header.Type), e.Header.Length, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

func truncated(what string, want int, have int) error {
	return fmt.Errorf("%s: need %d bytes, have %d: %w", what, want, have, ErrTruncated)
}
