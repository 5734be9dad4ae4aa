// Package ocr drives the Tesseract engine and feeds what it recognizes into
// monitor buffers one glyph at a time.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2). A
// Recognizer takes a session from a monitor.Pool, asks the engine for boxes
// at block, line, word and symbol level, nests them into a Page and streams
// the page through Feed into the session's buffer. The buffer is then
// reconstructed into words by package words.
//
// # Prerequisites
//
// Tesseract must be installed on the system and the binary built with cgo:
//   - Ubuntu/Debian: apt-get install tesseract-ocr libtesseract-dev
//   - macOS: brew install tesseract
//
// Language data files are required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//   - Other languages: tesseract-ocr-<lang> packages
//
// Without cgo the package still compiles; Recognize and Info report
// ErrEngineUnavailable.
//
// # Feed Rules
//
// Feed walks the page in reading order and appends one event per rune:
//   - Confidence is stored as 100 minus the engine's certainty
//   - The first glyph of every word except the first on a line has one blank
//   - The last glyph of a line is marked as a newline, or a paragraph end
//     when it closes its block
//   - Point size is the line height converted at the page resolution
//
// A full buffer stops the feed; the glyphs that did not fit are counted in
// FeedStats.Dropped.
//
// # Concurrency
//
// Each call holds one pool session for its whole duration, so concurrent
// calls never share a buffer. SetConcurrencyLimit additionally caps how many
// engine calls run at once.
package ocr
