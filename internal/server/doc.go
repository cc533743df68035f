// Package server exposes staff note detection over MCP and HTTP.
//
// # Protocol
//
// The MCP server communicates over stdio using JSON-RPC 2.0:
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
// Detection:
//   - staff_detect_note: Name the note for a stroke extent or stroke points
//   - staff_detect_note_image: Name the note drawn on a canvas snapshot
//   - staff_detect_geometry: Locate the staff lines in a snapshot
//
// Output:
//   - staff_render_note: Draw a note on a staff as PNG
//   - staff_export_midi: Write notes as a Standard MIDI File
//
// Reference:
//   - staff_conventions: List naming conventions and their notes
//
// # Undetectable Strokes
//
// A stroke with no extent, or one whose nearest line lies outside the
// convention's range, is an expected outcome of drawing. The tools report it
// as a successful result with detected=false and a reason, never as a default
// note and never as a protocol error.
//
// # Error Handling
//
//   - -32700: request line is not JSON
//   - -32601: unknown method
//   - -32602: invalid tool arguments (decoding or validation)
//   - -32000: tool execution failure
//
// # HTTP
//
// Router serves the detection core to browser clients with open CORS:
// POST /detect, POST /detect/strokes, GET /conventions and GET /health.
//
// # Usage
//
//	srv := server.New(server.WithLogger(logger), server.WithConvention(staff.Treble))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
