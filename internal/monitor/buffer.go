package monitor

import "fmt"

const (
	// DefaultBlocks is the block count used when the caller does not size
	// the buffer.
	DefaultBlocks = 127

	// DefaultSlotsPerBlock is the number of event slots in one block.
	DefaultSlotsPerBlock = 100
)

// Buffer is a fixed-capacity, append-only sequence of Events.
//
// The backing array is allocated once by New. Append is the only way to add
// events and it never reallocates; Reset rewinds the count for reuse.
type Buffer struct {
	events []Event
}

// New allocates a buffer holding blocks × slotsPerBlock events.
func New(blocks, slotsPerBlock int) (*Buffer, error) {
	if blocks < 1 || slotsPerBlock < 1 {
		return nil, fmt.Errorf("%w: %d blocks of %d slots", ErrInvalidCapacity, blocks, slotsPerBlock)
	}
	return &Buffer{events: make([]Event, 0, blocks*slotsPerBlock)}, nil
}

// Capacity returns the total number of slots.
func (b *Buffer) Capacity() int {
	return cap(b.events)
}

// Count returns the number of committed events.
func (b *Buffer) Count() int {
	return len(b.events)
}

// Remaining returns the number of free slots.
func (b *Buffer) Remaining() int {
	return cap(b.events) - len(b.events)
}

// Append writes g into the next free slot.
//
// Separator codes fail with ErrInvalidCharacter and a full buffer fails with
// ErrBufferFull; in both cases nothing is written. On success the count
// grows by exactly one. Confidence is clamped to [0,100] and the formatting
// byte is packed from the glyph's layout fields.
func (b *Buffer) Append(g Glyph) error {
	if b == nil || b.events == nil {
		return ErrNotAllocated
	}
	if IsSeparator(g.Code) {
		return ErrInvalidCharacter
	}
	if b.Remaining() <= 0 {
		return ErrBufferFull
	}
	b.events = append(b.events, g.event())
	return nil
}

// At returns the event in slot i.
func (b *Buffer) At(i int) (Event, bool) {
	if i < 0 || i >= len(b.events) {
		return Event{}, false
	}
	return b.events[i], true
}

// Reset rewinds the buffer to empty without releasing its storage.
func (b *Buffer) Reset() {
	b.events = b.events[:0]
}

// Snapshot copies the committed events out of the buffer.
func (b *Buffer) Snapshot() Snapshot {
	events := make([]Event, len(b.events))
	copy(events, b.events)
	return Snapshot{
		Capacity: cap(b.events),
		Count:    len(b.events),
		Events:   events,
	}
}

// Snapshot is a detached, serializable view of a buffer after recognition.
type Snapshot struct {
	Capacity int     `json:"capacity"`
	Count    int     `json:"count"`
	Events   []Event `json:"events"`
}

// Validate checks the header against the events and each event's
// invariants. The returned error is a *MalformedBufferError.
func (s Snapshot) Validate() error {
	fail := func(index int, reason string) error {
		return &MalformedBufferError{Reason: reason, Count: s.Count, Capacity: s.Capacity, Index: index}
	}
	if s.Capacity < 0 {
		return fail(-1, "negative capacity")
	}
	if s.Count < 0 {
		return fail(-1, "negative count")
	}
	if s.Count > s.Capacity {
		return fail(-1, "count exceeds capacity")
	}
	if len(s.Events) != s.Count {
		return fail(-1, fmt.Sprintf("count disagrees with %d stored events", len(s.Events)))
	}
	for i, ev := range s.Events {
		if ev.Confidence > MaxConfidence {
			return fail(i, "confidence out of range")
		}
		if ev.Blanks < 0 {
			return fail(i, "negative blank count")
		}
		if IsSeparator(ev.Code) {
			return fail(i, "separator stored as event")
		}
	}
	return nil
}
