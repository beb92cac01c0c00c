// Package server exposes the CAPTCHA solver over the MCP (Model Context
// Protocol) stdio surface: JSON-RPC 2.0, one message per line, requests on
// stdin and responses on stdout.
//
// Supported MCP methods:
//   - initialize: protocol handshake
//   - tools/list: enumerate available tools
//   - tools/call: execute a tool with arguments
//   - ping: health check
//
// # Available Tools
//
//   - captcha_solve: decode a CAPTCHA image file
//   - captcha_solve_region: decode a rectangular region of an image
//   - captcha_locate: find the text band inside a larger image
//   - captcha_engine_info: report the loaded recognition engine
//
// Loaded images are cached by path for the lifetime of the process, so a
// locate-then-solve-region sequence decodes the file once.
//
// Tool failures are returned as JSON-RPC errors with code -32000 and the Go
// error string in the data field. Decode failures are never retried by the
// server; the client decides what to do with them.
package server
