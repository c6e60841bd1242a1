// Package server implements an MCP (Model Context Protocol) server that
// exposes the polar digit descriptor and the supervised resonance model as
// tools.
//
// # Protocol
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
// Descriptor:
//   - digit_describe: Image to 28x28 matrix to descriptor, with optional PNG preview
//   - digit_compare: Similarity of two images
//   - digit_read: Locate and classify each digit in a multi-digit image
//
// Single-sample model operations:
//   - model_train: Supervised training on one image
//   - model_test: Supervised test on one image, counting successes
//   - model_classify: Best matching label without side effects
//
// Dataset operations:
//   - model_train_idx: Train on an IDX dataset for a number of epochs
//   - model_test_idx: Test on an IDX dataset with per-label accuracy
//   - model_baseline_idx: One-prototype-per-label reference score
//
// Model state:
//   - model_stats: Cluster and success counts, hyperparameters
//   - model_reset: Start over with a fresh model
//
// # State
//
// Loaded images are cached by path for the lifetime of the process. The model
// lives in memory only and is lost when the server exits.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The underlying error string
package server
