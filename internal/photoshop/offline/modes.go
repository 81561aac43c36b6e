package offline

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/photoshop-mcp/internal/photoshop"
)

// ChangeMode converts the document's pixels to what the target mode can
// represent and records the new mode. Bitmap and indexed conversions
// flatten the document first, as the host does.
func (d *Document) ChangeMode(ctx context.Context, mode photoshop.ColorMode) error {
	return d.do(true, func() error {
		if mode == d.mode {
			return nil
		}
		switch mode {
		case photoshop.ModeRGB, photoshop.ModeMultiChannel:
		case photoshop.ModeGrayscale:
			d.eachLayer(toGrayscale)
		case photoshop.ModeBitmap:
			d.flattenLocked()
			d.eachLayer(toGrayscale)
			d.eachLayer(toBitmap)
		case photoshop.ModeIndexed:
			d.flattenLocked()
			d.eachLayer(toIndexed)
		case photoshop.ModeCMYK:
			d.eachLayer(mapPixels(cmykRoundTrip))
		case photoshop.ModeLab:
			d.eachLayer(mapPixels(labRoundTrip))
		default:
			return fmt.Errorf("cannot convert to %s mode", mode)
		}
		d.mode = mode
		return nil
	})
}

func (d *Document) eachLayer(fn func(*image.NRGBA) *image.NRGBA) {
	for _, l := range d.layers {
		l.img = fn(l.img)
	}
}

// toGrayscale desaturates while keeping alpha.
func toGrayscale(img *image.NRGBA) *image.NRGBA {
	gray := effect.Grayscale(img)
	out := imaging.Clone(img)
	b := out.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := out.PixOffset(x, y)
			a := out.Pix[i+3]
			if a == 0 {
				continue
			}
			// bild works on premultiplied values.
			y8 := color.GrayModel.Convert(gray.At(x, y)).(color.Gray).Y
			v := uint8(min(int(y8)*255/int(a), 255))
			out.Pix[i], out.Pix[i+1], out.Pix[i+2] = v, v, v
		}
	}
	return out
}

func toBitmap(img *image.NRGBA) *image.NRGBA {
	return imaging.Clone(segment.Threshold(img, 128))
}

func toIndexed(img *image.NRGBA) *image.NRGBA {
	p := image.NewPaletted(img.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(p, p.Bounds(), img, img.Bounds().Min)
	return imaging.Clone(p)
}

func mapPixels(fn func(r, g, b uint8) (uint8, uint8, uint8)) func(*image.NRGBA) *image.NRGBA {
	return func(img *image.NRGBA) *image.NRGBA {
		out := imaging.Clone(img)
		for i := 0; i < len(out.Pix); i += 4 {
			if out.Pix[i+3] == 0 {
				continue
			}
			out.Pix[i], out.Pix[i+1], out.Pix[i+2] = fn(out.Pix[i], out.Pix[i+1], out.Pix[i+2])
		}
		return out
	}
}

func cmykRoundTrip(r, g, b uint8) (uint8, uint8, uint8) {
	return color.CMYKToRGB(color.RGBToCMYK(r, g, b))
}

func labRoundTrip(r, g, b uint8) (uint8, uint8, uint8) {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	return colorful.Lab(c.Lab()).Clamped().RGB255()
}
