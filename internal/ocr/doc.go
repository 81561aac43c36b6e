// Package ocr recognizes text in document composites with Tesseract.
//
// The Tesseract binding (gosseract) needs cgo and the native library, so it
// is only compiled with the "ocr" build tag:
//
//	go build -tags ocr ./cmd/photoshop-mcp
//
// Without the tag Recognize returns ErrUnavailable and Available reports
// false, which lets the server run on hosts without Tesseract installed.
//
// # Prerequisites
//
// Tesseract and the language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//   - Windows: https://github.com/UB-Mannheim/tesseract/wiki
//
// Languages use Tesseract codes ("eng", "deu", "fra", "chi_sim", ...).
// Several languages can be combined with "+", e.g. "eng+deu".
package ocr
