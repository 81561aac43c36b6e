package ocr

import "errors"

// ErrUnavailable is returned by Recognize in builds without the ocr tag.
var ErrUnavailable = errors.New("OCR is not available: rebuild with -tags ocr and install Tesseract")

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// TextRegion is a recognized word with its location.
type TextRegion struct {
	Text string `json:"text"`

	// Confidence is the recognition confidence from 0.0 to 1.0.
	Confidence float64 `json:"confidence"`

	Bounds Bounds `json:"bounds"`
}

// Result contains the text recognized in one image.
type Result struct {
	// FullText is all recognized text with the engine's spacing and newlines.
	FullText string `json:"full_text"`

	// Regions holds the individual words. It may be empty when the engine
	// could not produce bounding boxes; FullText is still set.
	Regions []TextRegion `json:"regions"`
}

// Translate shifts every region by (dx, dy). Regions recognized in a crop
// are mapped back to the coordinates of the full image this way.
func (r *Result) Translate(dx, dy int) {
	for i := range r.Regions {
		b := &r.Regions[i].Bounds
		b.X1 += dx
		b.X2 += dx
		b.Y1 += dy
		b.Y2 += dy
	}
}

// Filter drops regions recognized with less than minConfidence.
func (r *Result) Filter(minConfidence float64) {
	kept := r.Regions[:0]
	for _, reg := range r.Regions {
		if reg.Confidence >= minConfidence {
			kept = append(kept, reg)
		}
	}
	r.Regions = kept
}
