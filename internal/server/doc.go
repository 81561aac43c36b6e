// Package server exposes the Photoshop tools over the Model Context
// Protocol.
//
// The server is a thin binding between the official MCP Go SDK and a
// tools.Registry. Every registered tool becomes an MCP tool with the same
// name, description and JSON schema. A call is handed to the registry,
// which validates the arguments and runs the handler against the
// configured photoshop.Application.
//
// # Results
//
// Tool results are never protocol errors. The JSON form of tools.Result
// is returned as text content and as structured content, and isError is
// set when success is false. Tools that return an image_base64 field (the
// document preview) also carry the decoded image as image content.
//
// # Resources
//
// Two read-only resources mirror the session tools:
//
//   - photoshop://session: the get_session_info result
//   - photoshop://document/active: the get_active_document_info result
//
// # Transport
//
// Run serves over stdio. stdout carries the protocol, so all logging goes
// to stderr.
package server
