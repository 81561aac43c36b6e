package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// DefaultGridColor is a semi-transparent red.
var DefaultGridColor = color.RGBA{255, 0, 0, 128}

// Grid describes a coordinate grid drawn over a preview.
type Grid struct {
	// Spacing is the distance between lines in document pixels.
	Spacing int
	// Labels prints "x,y" at every intersection.
	Labels bool
	Color  color.RGBA
}

// drawGrid draws g over img, which shows a document scale times its size.
// Lines and labels are placed in document coordinates.
func drawGrid(img image.Image, g Grid, scale float64) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)

	if g.Spacing <= 0 || scale <= 0 {
		return out
	}
	c := g.Color
	if c == (color.RGBA{}) {
		c = DefaultGridColor
	}
	w, h := out.Bounds().Dx(), out.Bounds().Dy()
	docW, docH := int(float64(w)/scale+0.5), int(float64(h)/scale+0.5)
	at := func(v int) int { return int(float64(v)*scale + 0.5) }

	for x := g.Spacing; x < docW; x += g.Spacing {
		px := at(x)
		for y := 0; y < h; y++ {
			blend(out, px, y, c)
		}
	}
	for y := g.Spacing; y < docH; y += g.Spacing {
		py := at(y)
		for x := 0; x < w; x++ {
			blend(out, x, py, c)
		}
	}

	if g.Labels {
		fg := color.RGBA{255, 255, 255, 255}
		bg := color.RGBA{0, 0, 0, 180}
		for y := g.Spacing; y < docH; y += g.Spacing {
			for x := g.Spacing; x < docW; x += g.Spacing {
				drawLabel(out, at(x)+2, at(y)+2, fmt.Sprintf("%d,%d", x, y), fg, bg)
			}
		}
	}
	return out
}

// blend composites c over the pixel at (x, y).
func blend(img *image.RGBA, x, y int, c color.RGBA) {
	if !(image.Point{x, y}.In(img.Bounds())) {
		return
	}
	dst := img.RGBAAt(x, y)
	a := uint32(c.A)
	mix := func(s, d uint8) uint8 { return uint8((uint32(s)*a + uint32(d)*(255-a)) / 255) }
	img.SetRGBA(x, y, color.RGBA{
		R: mix(c.R, dst.R),
		G: mix(c.G, dst.G),
		B: mix(c.B, dst.B),
		A: max(dst.A, c.A),
	})
}

// 3x5 pixel glyphs for coordinate labels.
var glyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	',': {"000", "000", "000", "010", "010"},
}

// drawLabel draws text on a background box with its top left at (x, y).
// Pixels outside img are skipped.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	const (
		charWidth   = 4
		labelHeight = 7
	)
	bounds := img.Bounds()
	set := func(px, py int, c color.RGBA) {
		if (image.Point{px, py}).In(bounds) {
			img.SetRGBA(px, py, c)
		}
	}

	labelWidth := len(text) * charWidth
	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			set(x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		for row, line := range glyphs[ch] {
			for col, pixel := range line {
				if pixel == '1' {
					set(cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}
