package photoshop

import "errors"

var (
	// ErrNoActiveDocument is returned when an operation needs a document
	// and the session has none open.
	ErrNoActiveDocument = errors.New("No active document")

	// ErrFormatUnsupported is returned by SaveAs when the backend cannot
	// write the requested file format.
	ErrFormatUnsupported = errors.New("format not supported by this backend")

	// ErrScriptingUnsupported is returned by RunScript on backends without a
	// script engine.
	ErrScriptingUnsupported = errors.New("script execution not supported by this backend")
)
