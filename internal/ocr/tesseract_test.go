//go:build ocr

package ocr

import (
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawText draws text on an image using basicfont
func drawText(img *image.RGBA, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// imageWithText renders text and scales it up so Tesseract can read the
// 7x13 bitmap font reliably.
func imageWithText(text string, scale int) *image.RGBA {
	width := len(text)*7 + 40
	height := 40

	small := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(small, small.Bounds(), image.White, image.Point{}, draw.Src)
	drawText(small, 20, 25, text, color.Black)

	img := image.NewRGBA(image.Rect(0, 0, width*scale, height*scale))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := small.At(x, y)
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.Set(x*scale+dx, y*scale+dy, c)
				}
			}
		}
	}
	return img
}

func TestAvailable(t *testing.T) {
	if !Available() {
		t.Fatal("Available() = false in an ocr build")
	}
}

func TestRecognize(t *testing.T) {
	result, err := Recognize(imageWithText("HELLO WORLD", 4), "eng")
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if !strings.Contains(strings.ToUpper(result.FullText), "HELLO") {
		t.Errorf("FullText %q does not contain HELLO", result.FullText)
	}
	for _, r := range result.Regions {
		if r.Confidence < 0 || r.Confidence > 1 {
			t.Errorf("confidence %v out of range for %q", r.Confidence, r.Text)
		}
		if r.Bounds.X2 <= r.Bounds.X1 || r.Bounds.Y2 <= r.Bounds.Y1 {
			t.Errorf("empty bounds %+v for %q", r.Bounds, r.Text)
		}
	}
}

func TestRecognize_BlankImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	result, err := Recognize(img, "")
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if strings.TrimSpace(result.FullText) != "" {
		t.Errorf("expected no text, got %q", result.FullText)
	}
}

func TestRecognize_InvalidLanguage(t *testing.T) {
	if _, err := Recognize(imageWithText("TEST", 2), "not_a_language"); err == nil {
		t.Error("expected error for unknown language")
	}
}
