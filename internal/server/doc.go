// Package server implements the MCP (Model Context Protocol) server for OCR
// with monitor buffers.
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - ocr_recognize: recognize one image, optionally cropped to a region
//     and preprocessed, returning words, lines and text
//   - ocr_recognize_batch: recognize several images concurrently
//   - ocr_reconstruct: rebuild words from a saved buffer snapshot
//   - ocr_pool_stats: report the monitor session pool
//   - ocr_engine_info: report engine availability and settings
//
// # Argument Validation
//
// Each tool's input schema is compiled once when the server is created.
// tools/call arguments are validated against it before dispatch, and a
// mismatch is answered with -32602 without running the tool.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: the Go error string
//
// A snapshot handed to ocr_reconstruct whose header disagrees with its
// events fails with a monitor.MalformedBufferError message.
package server
