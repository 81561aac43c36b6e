package offline

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/photoshop-mcp/internal/photoshop"
)

var resampleFilters = map[photoshop.ResampleMethod]imaging.ResampleFilter{
	photoshop.ResampleBicubic:         imaging.CatmullRom,
	photoshop.ResampleBilinear:        imaging.Linear,
	photoshop.ResampleNearestNeighbor: imaging.NearestNeighbor,
	photoshop.ResampleBicubicSmoother: imaging.MitchellNetravali,
	photoshop.ResampleBicubicSharper:  imaging.Lanczos,
	photoshop.ResamplePreserveDetails: imaging.Lanczos,
	photoshop.ResampleAutomatic:       imaging.Lanczos,
}

// ResizeImage resamples every layer. A zero Width or Height keeps that
// dimension; a zero Resolution keeps the resolution.
func (d *Document) ResizeImage(ctx context.Context, opts photoshop.ResizeOptions) error {
	return d.do(true, func() error {
		if opts.Width < 0 || opts.Height < 0 {
			return fmt.Errorf("invalid size %dx%d", opts.Width, opts.Height)
		}
		filter, ok := resampleFilters[opts.Resample]
		if !ok {
			if opts.Resample != "" {
				return fmt.Errorf("unsupported resample method %q", opts.Resample)
			}
			filter = imaging.CatmullRom
		}

		w, h := d.size()
		nw, nh := opts.Width, opts.Height
		if nw == 0 {
			nw = w
		}
		if nh == 0 {
			nh = h
		}
		if nw != w || nh != h {
			for _, l := range d.layers {
				l.img = imaging.Resize(l.img, nw, nh, filter)
			}
			d.selection = nil
		}
		if opts.Resolution > 0 {
			d.resolution = opts.Resolution
		}
		return nil
	})
}

func (d *Document) Crop(ctx context.Context, b photoshop.Bounds) error {
	return d.do(true, func() error {
		w, h := d.size()
		if b.Empty() {
			return fmt.Errorf("invalid crop bounds: left must be < right and top must be < bottom")
		}
		if b.Left < 0 || b.Top < 0 || b.Right > w || b.Bottom > h {
			return fmt.Errorf("crop bounds (%d,%d)-(%d,%d) outside document (0,0)-(%d,%d)",
				b.Left, b.Top, b.Right, b.Bottom, w, h)
		}
		d.cropLocked(image.Rect(b.Left, b.Top, b.Right, b.Bottom))
		return nil
	})
}

func (d *Document) cropLocked(r image.Rectangle) {
	for _, l := range d.layers {
		l.img = imaging.Crop(l.img, r)
	}
	d.selection = nil
}

// Trim crops away the border that matches the trim criterion on the
// composite of the visible layers.
func (d *Document) Trim(ctx context.Context, trim photoshop.TrimType) error {
	return d.do(true, func() error {
		w, h := d.size()
		img := composite(d.layers, w, h, nil)

		var keep func(c color.NRGBA) bool
		switch trim {
		case photoshop.TrimTransparent:
			keep = func(c color.NRGBA) bool { return c.A != 0 }
		case photoshop.TrimTopLeftColor:
			ref := img.NRGBAAt(0, 0)
			keep = func(c color.NRGBA) bool { return c != ref }
		case photoshop.TrimBottomRightColor:
			ref := img.NRGBAAt(w-1, h-1)
			keep = func(c color.NRGBA) bool { return c != ref }
		default:
			return fmt.Errorf("unsupported trim type %q", trim)
		}

		r := contentBounds(img, keep)
		if r.Empty() {
			return fmt.Errorf("nothing left after trimming %s", trim)
		}
		if r != img.Bounds() {
			d.cropLocked(r)
		}
		return nil
	})
}

func contentBounds(img *image.NRGBA, keep func(color.NRGBA) bool) image.Rectangle {
	b := img.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !keep(img.NRGBAAt(x, y)) {
				continue
			}
			minX = min(minX, x)
			minY = min(minY, y)
			maxX = max(maxX, x)
			maxY = max(maxY, y)
		}
	}
	if maxX < minX {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// RotateCanvas rotates clockwise by angle degrees. Quarter turns are
// exact; other angles grow the canvas to hold the rotated image.
func (d *Document) RotateCanvas(ctx context.Context, angle float64) error {
	return d.do(true, func() error {
		a := math.Mod(angle, 360)
		if a < 0 {
			a += 360
		}
		if a == 0 {
			return nil
		}

		var rotate func(*image.NRGBA) *image.NRGBA
		switch a {
		case 90:
			rotate = func(img *image.NRGBA) *image.NRGBA { return imaging.Rotate270(img) }
		case 180:
			rotate = func(img *image.NRGBA) *image.NRGBA { return imaging.Rotate180(img) }
		case 270:
			rotate = func(img *image.NRGBA) *image.NRGBA { return imaging.Rotate90(img) }
		default:
			opts := &transform.RotationOptions{ResizeBounds: true}
			rotate = func(img *image.NRGBA) *image.NRGBA {
				return imaging.Clone(transform.Rotate(img, a, opts))
			}
		}
		for _, l := range d.layers {
			l.img = rotate(l.img)
		}
		d.selection = nil
		return nil
	})
}

func (d *Document) FlipCanvas(ctx context.Context, dir photoshop.Direction) error {
	return d.do(true, func() error {
		var flip func(image.Image) *image.NRGBA
		switch dir {
		case photoshop.Horizontal:
			flip = imaging.FlipH
		case photoshop.Vertical:
			flip = imaging.FlipV
		default:
			return fmt.Errorf("unsupported direction %q", dir)
		}
		for _, l := range d.layers {
			l.img = flip(l.img)
		}
		return nil
	})
}
