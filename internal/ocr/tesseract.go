//go:build ocr

package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Available reports whether this build can run OCR.
func Available() bool { return true }

// Recognize runs Tesseract over img and returns the full text plus
// word-level regions. language is a Tesseract language code such as "eng"
// or "eng+deu"; empty means "eng". The image is passed in memory.
func Recognize(img image.Image, language string) (*Result, error) {
	if language == "" {
		language = "eng"
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding image for tesseract: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("tesseract language %q: %w", language, err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("tesseract image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("tesseract: %w", err)
	}
	res := &Result{FullText: strings.TrimSpace(text), Regions: []TextRegion{}}

	// Word boxes are optional; the text alone is still a result.
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return res, nil
	}
	res.Regions = words(boxes)
	return res, nil
}

func words(boxes []gosseract.BoundingBox) []TextRegion {
	out := make([]TextRegion, 0, len(boxes))
	for _, b := range boxes {
		w := strings.TrimSpace(b.Word)
		if w == "" {
			continue
		}
		out = append(out, TextRegion{
			Text:       w,
			Confidence: float64(b.Confidence) / 100,
			Bounds:     Bounds{X1: b.Box.Min.X, Y1: b.Box.Min.Y, X2: b.Box.Max.X, Y2: b.Box.Max.Y},
		})
	}
	return out
}
