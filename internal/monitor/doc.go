// Package monitor implements the bounded character stream that a recognition
// engine writes into while it runs.
//
// A Buffer is allocated once per recognition session with a fixed number of
// slots (blocks × slots per block). The engine calls Append once per
// recognized glyph; each call either commits exactly one Event or fails
// without touching the buffer. Once the engine signals completion the
// buffer is handed to the reconstruction pass (package words) as a Snapshot.
//
// # Capacity
//
// Capacity is expressed as a block count and a block size so callers can
// bound worst-case memory for a page with an unknown glyph count. The
// default of 127 blocks of 100 slots holds roughly 12,700 events. The
// backing slice is allocated up front and never grows; Reset rewinds the
// write count so the same buffer can serve the next recognition call.
//
// # Errors
//
// Append reports two recoverable conditions to the producer:
//   - ErrInvalidCharacter: the code was a word separator (space, newline,
//     carriage return, tab). Separators are structural, not events.
//   - ErrBufferFull: no slot is left. The producer may drop the remaining
//     glyphs or the caller may retry with a larger buffer.
//
// Consumers validating a Snapshot report ErrMalformedBuffer (wrapped in a
// *MalformedBufferError) when the count disagrees with the capacity or the
// event list.
//
// # Ownership
//
// A Buffer has a single owner at a time. Session and Pool enforce that
// across recognition calls; within a session the producer and consumer never
// overlap, so Buffer itself carries no lock.
package monitor
