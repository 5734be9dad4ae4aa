// Package words rebuilds words and lines from the flat event stream left in a
// monitor buffer after recognition.
//
// # Reconstruction
//
// Reconstruct makes one pass over the events in the order the producer wrote
// them. A positive blank count closes the open word. Otherwise a glyph that
// starts at or left of the open word's left edge, or at or below its bottom
// edge, is taken as the start of a new line: the word is closed and the line
// index advances.
//
// The line rule is geometric and approximate. A word closed by blanks never
// advances the line index, so a line break that coincides with a blank count
// keeps the previous line index. Callers that need exact layout should use
// the newline bits carried in each word's Formatting.
//
// # Confidence
//
// Word confidence is the arithmetic mean of its member events, on the
// monitor scale where 0 is a perfect match and 100 a rejected glyph.
//
// # Snapshots
//
// FromSnapshot validates a snapshot before reconstructing it and returns a
// *monitor.MalformedBufferError instead of a partial result when the header
// disagrees with the stored events.
package words
