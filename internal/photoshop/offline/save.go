package offline

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/ironsheep/photoshop-mcp/internal/photoshop"
	"github.com/ironsheep/photoshop-mcp/internal/psd"
)

// SaveAs flattens the visible layers and writes them to path. PNG, TIFF
// and transparent GIF keep the alpha of RGB documents; every other format
// is flattened over white. WebP and JPEG-compressed TIFF return photoshop.ErrFormatUnsupported
// without touching the file system.
func (d *Document) SaveAs(ctx context.Context, path string, opts photoshop.SaveOptions, asCopy bool) error {
	d.app.mu.Lock()
	defer d.app.mu.Unlock()
	if d.closed {
		return errClosed
	}
	return d.saveLocked(path, opts, asCopy)
}

func (d *Document) saveLocked(path string, opts photoshop.SaveOptions, asCopy bool) error {
	if opts == nil {
		return fmt.Errorf("no save options")
	}
	encode, err := d.encoder(opts)
	if err != nil {
		return err
	}

	var bg color.Color = white
	if d.keepsAlpha(opts) {
		bg = nil
	}
	w, h := d.size()
	img := composite(d.layers, w, h, bg)

	if err := writeFile(path, func(f io.Writer) error { return encode(f, img) }); err != nil {
		return err
	}
	d.app.cache.Evict(path)

	if !asCopy {
		d.path = path
		d.name = filepath.Base(path)
		d.saved = true
	}
	return nil
}

type encodeFunc func(io.Writer, *image.NRGBA) error

func (d *Document) encoder(opts photoshop.SaveOptions) (encodeFunc, error) {
	switch o := opts.(type) {
	case photoshop.JPEGOptions:
		q := jpegQuality(o.Quality)
		return func(w io.Writer, img *image.NRGBA) error {
			return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(q))
		}, nil

	case photoshop.PNGOptions:
		level := pngLevel(o.Compression)
		return func(w io.Writer, img *image.NRGBA) error {
			return imaging.Encode(w, d.forMode(img), imaging.PNG, imaging.PNGCompressionLevel(level))
		}, nil

	case photoshop.GIFOptions:
		colors := o.Colors
		if colors < 2 || colors > 256 {
			colors = 256
		}
		if o.Transparency {
			return func(w io.Writer, img *image.NRGBA) error {
				return gif.Encode(w, transparentPaletted(img, colors), nil)
			}, nil
		}
		return func(w io.Writer, img *image.NRGBA) error {
			return imaging.Encode(w, img, imaging.GIF, imaging.GIFNumColors(colors), imaging.GIFDrawer(draw.FloydSteinberg))
		}, nil

	case photoshop.TIFFOptions:
		var c tiff.CompressionType
		switch o.Compression {
		case photoshop.TIFFNone, "":
			c = tiff.Uncompressed
		case photoshop.TIFFLZW, photoshop.TIFFZIP:
			// x/image/tiff has no LZW writer; Deflate is the lossless
			// compression it can produce.
			c = tiff.Deflate
		default:
			return nil, fmt.Errorf("TIFF %s compression: %w", o.Compression, photoshop.ErrFormatUnsupported)
		}
		return func(w io.Writer, img *image.NRGBA) error {
			return tiff.Encode(w, d.forMode(img), &tiff.Options{Compression: c, Predictor: c != tiff.Uncompressed})
		}, nil

	case photoshop.BMPOptions:
		return func(w io.Writer, img *image.NRGBA) error {
			return bmp.Encode(w, img)
		}, nil

	case photoshop.PSDOptions:
		res := d.resolution
		return func(w io.Writer, img *image.NRGBA) error {
			return psd.Encode(w, d.forMode(img), &psd.Options{Resolution: res, Compression: psd.RLE})
		}, nil

	case photoshop.WebPOptions:
		return nil, fmt.Errorf("webp: %w", photoshop.ErrFormatUnsupported)
	}
	return nil, fmt.Errorf("unknown save options %T", opts)
}

// keepsAlpha reports whether opts write a format that stores transparency.
// Grayscale and bitmap documents are written single-channel and always
// flatten.
func (d *Document) keepsAlpha(opts photoshop.SaveOptions) bool {
	if d.mode == photoshop.ModeGrayscale || d.mode == photoshop.ModeBitmap {
		return false
	}
	switch o := opts.(type) {
	case photoshop.PNGOptions, photoshop.TIFFOptions:
		return true
	case photoshop.GIFOptions:
		return o.Transparency
	}
	return false
}

// transparentPaletted dithers img onto the first colors-1 Plan 9 colors and
// reserves index 0 for pixels that are less than half opaque.
func transparentPaletted(img *image.NRGBA, colors int) *image.Paletted {
	pal := append(color.Palette{color.Transparent}, palette.Plan9[:colors-1]...)
	b := img.Bounds()
	opaque := image.NewNRGBA(b)
	draw.Draw(opaque, b, image.NewUniform(white), image.Point{}, draw.Src)
	draw.Draw(opaque, b, img, b.Min, draw.Over)

	dst := image.NewPaletted(b, pal)
	draw.FloydSteinberg.Draw(dst, b, opaque, b.Min)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.NRGBAAt(x, y).A < 128 {
				dst.SetColorIndex(x, y, 0)
			}
		}
	}
	return dst
}

// forMode narrows img to a single-channel image for grayscale and bitmap
// documents so lossless formats keep the mode.
func (d *Document) forMode(img *image.NRGBA) image.Image {
	if d.mode != photoshop.ModeGrayscale && d.mode != photoshop.ModeBitmap {
		return img
	}
	g := image.NewGray(img.Bounds())
	draw.Draw(g, g.Bounds(), img, img.Bounds().Min, draw.Src)
	return g
}

// jpegQuality maps the host's 0-12 scale onto 1-100.
func jpegQuality(q int) int {
	q = min(max(q, 0), 12)
	return max(q*100/12, 1)
}

func pngLevel(c int) png.CompressionLevel {
	switch {
	case c <= 0:
		return png.NoCompression
	case c <= 3:
		return png.BestSpeed
	case c <= 6:
		return png.DefaultCompression
	}
	return png.BestCompression
}

// writeFile writes through a temp file in the target directory so a failed
// encode never leaves a partial file at path.
func writeFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".photoshop-mcp-*")
	if err != nil {
		return fmt.Errorf("failed to create file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func defaultOptionsFor(path string) photoshop.SaveOptions {
	f, err := photoshop.ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return photoshop.PSDOptions{MaximizeCompatibility: true}
	}
	switch f {
	case photoshop.FormatJPEG:
		return photoshop.JPEGOptions{Quality: 10}
	case photoshop.FormatPNG:
		return photoshop.PNGOptions{Compression: 6}
	case photoshop.FormatGIF:
		return photoshop.GIFOptions{Colors: 256}
	case photoshop.FormatTIFF:
		return photoshop.TIFFOptions{Compression: photoshop.TIFFLZW}
	case photoshop.FormatBMP:
		return photoshop.BMPOptions{}
	case photoshop.FormatWebP:
		return photoshop.WebPOptions{Quality: 80}
	}
	return photoshop.PSDOptions{MaximizeCompatibility: true}
}
