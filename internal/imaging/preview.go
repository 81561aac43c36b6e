package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// PreviewResult contains an encoded thumbnail of a document composite.
type PreviewResult struct {
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	OriginalWidth  int    `json:"original_width"`
	OriginalHeight int    `json:"original_height"`
	ImageBase64    string `json:"image_base64"`
	MimeType       string `json:"mime_type"`
	GridSpacing    int    `json:"grid_spacing,omitempty"`
}

// Preview scales img to fit within maxSize x maxSize, keeping its aspect
// ratio, and returns it as base64 PNG. Images that already fit are encoded
// at their own size. A non-nil grid is drawn over the thumbnail in the
// coordinates of img.
func Preview(img image.Image, maxSize int, grid *Grid) (*PreviewResult, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("invalid preview size %d", maxSize)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("cannot preview an empty image")
	}

	thumb := img
	if bounds.Dx() > maxSize || bounds.Dy() > maxSize {
		thumb = imaging.Fit(img, maxSize, maxSize, imaging.Lanczos)
	}
	res := &PreviewResult{
		Width:          thumb.Bounds().Dx(),
		Height:         thumb.Bounds().Dy(),
		OriginalWidth:  bounds.Dx(),
		OriginalHeight: bounds.Dy(),
		MimeType:       "image/png",
	}
	if grid != nil && grid.Spacing > 0 {
		thumb = drawGrid(thumb, *grid, float64(res.Width)/float64(bounds.Dx()))
		res.GridSpacing = grid.Spacing
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	res.ImageBase64 = base64.StdEncoding.EncodeToString(buf.Bytes())
	return res, nil
}
