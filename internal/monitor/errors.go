package monitor

import (
	"errors"
	"fmt"
)

var (
	// ErrBufferFull is returned by Append when every slot is taken.
	ErrBufferFull = errors.New("monitor buffer full")

	// ErrInvalidCharacter is returned by Append for word-separator codes.
	ErrInvalidCharacter = errors.New("invalid character: separators are not appendable")

	// ErrMalformedBuffer marks a snapshot whose count is inconsistent with
	// its capacity or contents.
	ErrMalformedBuffer = errors.New("malformed monitor buffer")

	// ErrInvalidCapacity is returned by New for non-positive sizing.
	ErrInvalidCapacity = errors.New("invalid buffer capacity")

	// ErrNotAllocated is returned when appending to a nil buffer.
	ErrNotAllocated = errors.New("monitor buffer not allocated")

	// ErrSessionBusy is returned by Session.Begin while the session is owned.
	ErrSessionBusy = errors.New("monitor session already in use")

	// ErrPoolClosed is returned by Pool.Acquire after Close.
	ErrPoolClosed = errors.New("monitor pool closed")
)

// MalformedBufferError describes why a snapshot was rejected.
type MalformedBufferError struct {
	Reason   string
	Count    int
	Capacity int
	// Index is the offending event index, or -1 when the header is at fault.
	Index int
}

func (e *MalformedBufferError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%v: %s (event %d, count=%d, capacity=%d)",
			ErrMalformedBuffer, e.Reason, e.Index, e.Count, e.Capacity)
	}
	return fmt.Sprintf("%v: %s (count=%d, capacity=%d)",
		ErrMalformedBuffer, e.Reason, e.Count, e.Capacity)
}

// Is lets errors.Is(err, ErrMalformedBuffer) match.
func (e *MalformedBufferError) Is(target error) bool {
	return target == ErrMalformedBuffer
}
