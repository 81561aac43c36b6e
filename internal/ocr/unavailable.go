//go:build !ocr

package ocr

import "image"

// Available reports whether this build can run OCR.
func Available() bool { return false }

// Recognize always returns ErrUnavailable in builds without the ocr tag.
func Recognize(img image.Image, language string) (*Result, error) {
	return nil, ErrUnavailable
}
