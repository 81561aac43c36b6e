package offline

import (
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/photoshop-mcp/internal/photoshop"
)

var (
	regularOnce sync.Once
	regular     *opentype.Font
	regularErr  error
)

func regularFont() (*opentype.Font, error) {
	regularOnce.Do(func() {
		regular, regularErr = opentype.Parse(goregular.TTF)
	})
	return regular, regularErr
}

// drawText renders opts.Text with its baseline origin at (X, Y). Size is
// in points at 72 ppi, so one point is one pixel.
func drawText(dst *image.NRGBA, opts photoshop.TextLayerOptions) error {
	f, err := regularFont()
	if err != nil {
		return fmt.Errorf("failed to load font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    opts.Size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("failed to create font face: %w", err)
	}
	defer face.Close()

	c := opts.Color
	c.A = 255
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(opts.X), Y: fixed.I(opts.Y)},
	}
	d.DrawString(opts.Text)
	return nil
}
