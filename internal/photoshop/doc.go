// Package photoshop defines the adapter contract between the MCP tools and
// a Photoshop session.
//
// The contract is deliberately small. An Application answers version and
// document queries, creates and opens documents, and runs raw scripts. A
// Document exposes the handful of mutations the tools need (resize, mode
// change, crop, trim, rotate, flip, flatten, layer creation, selection and
// saveAs) and nothing else.
//
// # Backends
//
// Two implementations live in sub-packages:
//   - bridge: drives a running Photoshop through ExtendScript
//   - offline: an in-process raster session used for tests and headless use
//
// # Handles
//
// Document values are handles into a session owned by the backend. Callers
// must not hold on to them across tool calls; the host application may
// close or replace the document at any time.
//
// # Errors
//
// Backends return native failures unmodified. The only errors defined here
// are ErrNoActiveDocument, returned by ActiveDocument when nothing is open,
// and ErrFormatUnsupported, returned by SaveAs when a backend cannot write
// the requested format.
//
// # Units
//
// All dimensions and coordinates are pixels. Resolution is pixels per inch.
package photoshop
