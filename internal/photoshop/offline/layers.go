package offline

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/photoshop-mcp/internal/photoshop"
)

var white = color.NRGBA{255, 255, 255, 255}

type layer struct {
	name    string
	kind    photoshop.LayerKind
	visible bool
	opacity float64 // percent
	img     *image.NRGBA
}

func newLayer(name string, kind photoshop.LayerKind, w, h int) *layer {
	return &layer{
		name:    name,
		kind:    kind,
		visible: true,
		opacity: 100,
		img:     image.NewNRGBA(image.Rect(0, 0, w, h)),
	}
}

func fillLayer(l *layer, c color.Color) {
	draw.Draw(l.img, l.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

func (l *layer) info() photoshop.LayerInfo {
	return photoshop.LayerInfo{
		Name:    l.name,
		Kind:    l.kind,
		Visible: l.visible,
		Opacity: l.opacity,
	}
}

// composite blends the visible layers bottom to top over bg. A nil bg
// leaves uncovered pixels transparent.
func composite(layers []*layer, w, h int, bg color.Color) *image.NRGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if bg != nil {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	}
	for _, l := range layers {
		if !l.visible || l.opacity <= 0 {
			continue
		}
		if l.opacity >= 100 {
			draw.Draw(dst, dst.Bounds(), l.img, image.Point{}, draw.Over)
			continue
		}
		mask := image.NewUniform(color.Alpha{A: uint8(l.opacity / 100 * 255)})
		draw.DrawMask(dst, dst.Bounds(), l.img, image.Point{}, mask, image.Point{}, draw.Over)
	}
	return imaging.Clone(dst)
}
