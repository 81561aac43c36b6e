// Package psd reads and writes flattened Photoshop documents.
//
// Only the composite image is handled: 8 bits per channel, RGB or
// grayscale, with an optional alpha channel on read. Files are written as
// version 1 documents with a resolution resource and an empty layer
// section, which Photoshop opens as a single Background layer.
package psd

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"
)

const signature = "8BPS"

// Color modes from the file header.
const (
	modeGrayscale = 1
	modeRGB       = 3
)

// Compression is the image data compression.
type Compression uint16

const (
	Raw Compression = 0
	RLE Compression = 1
)

const resolutionInfoID = 0x03ED

// Version 1 document limits.
const (
	maxDimension = 30000
	maxChannels  = 56
)

// Options control Encode.
type Options struct {
	// Resolution in pixels per inch. Zero writes 72.
	Resolution  float64
	Compression Compression
}

// File is a decoded document.
type File struct {
	Image      image.Image
	Resolution float64
}

var (
	ErrSignature   = errors.New("psd: not a Photoshop document")
	ErrUnsupported = errors.New("psd: unsupported document")
)

func init() {
	image.RegisterFormat("psd", signature, Decode, DecodeConfig)
}

type header struct {
	Signature [4]byte
	Version   uint16
	Reserved  [6]byte
	Channels  uint16
	Height    uint32
	Width     uint32
	Depth     uint16
	Mode      uint16
}

// Encode writes img as a flattened PSD. *image.Gray images are written in
// grayscale mode, everything else as RGB composited over white.
func Encode(w io.Writer, img image.Image, opts *Options) error {
	if opts == nil {
		opts = &Options{}
	}
	res := opts.Resolution
	if res <= 0 {
		res = 72
	}
	b := img.Bounds()
	if b.Empty() {
		return fmt.Errorf("psd: empty image")
	}

	planes, mode := splitChannels(img)
	h := header{
		Version:  1,
		Channels: uint16(len(planes)),
		Height:   uint32(b.Dy()),
		Width:    uint32(b.Dx()),
		Depth:    8,
		Mode:     mode,
	}
	copy(h.Signature[:], signature)

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.BigEndian, h); err != nil {
		return err
	}
	// Color mode data.
	if err := binary.Write(bw, binary.BigEndian, uint32(0)); err != nil {
		return err
	}
	if err := writeResources(bw, res); err != nil {
		return err
	}
	// Layer and mask information.
	if err := binary.Write(bw, binary.BigEndian, uint32(0)); err != nil {
		return err
	}
	if err := writeImageData(bw, planes, b.Dx(), b.Dy(), opts.Compression); err != nil {
		return err
	}
	return bw.Flush()
}

func splitChannels(img image.Image) ([][]byte, uint16) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if g, ok := img.(*image.Gray); ok {
		plane := make([]byte, 0, w*h)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := g.PixOffset(b.Min.X, y)
			plane = append(plane, g.Pix[off:off+w]...)
		}
		return [][]byte{plane}, modeGrayscale
	}

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Over)

	planes := [][]byte{make([]byte, w*h), make([]byte, w*h), make([]byte, w*h)}
	for i := 0; i < w*h; i++ {
		planes[0][i] = rgba.Pix[i*4]
		planes[1][i] = rgba.Pix[i*4+1]
		planes[2][i] = rgba.Pix[i*4+2]
	}
	return planes, modeRGB
}

func writeResources(w io.Writer, res float64) error {
	fixed := uint32(math.Round(res * 65536))
	block := struct {
		Sig      [4]byte
		ID       uint16
		Name     [2]byte
		Size     uint32
		HRes     uint32
		HResUnit uint16
		WidthU   uint16
		VRes     uint32
		VResUnit uint16
		HeightU  uint16
	}{
		ID:       resolutionInfoID,
		Size:     16,
		HRes:     fixed,
		HResUnit: 1,
		WidthU:   1,
		VRes:     fixed,
		VResUnit: 1,
		HeightU:  1,
	}
	copy(block.Sig[:], "8BIM")
	if err := binary.Write(w, binary.BigEndian, uint32(binary.Size(block))); err != nil {
		return err
	}
	return binary.Write(w, binary.BigEndian, block)
}

func writeImageData(w io.Writer, planes [][]byte, width, height int, c Compression) error {
	if err := binary.Write(w, binary.BigEndian, uint16(c)); err != nil {
		return err
	}
	switch c {
	case Raw:
		for _, p := range planes {
			if _, err := w.Write(p); err != nil {
				return err
			}
		}
		return nil
	case RLE:
		rows := make([][]byte, 0, len(planes)*height)
		for _, p := range planes {
			for y := 0; y < height; y++ {
				rows = append(rows, packBits(p[y*width:(y+1)*width]))
			}
		}
		for _, r := range rows {
			if len(r) > math.MaxUint16 {
				return fmt.Errorf("psd: row too long for RLE")
			}
			if err := binary.Write(w, binary.BigEndian, uint16(len(r))); err != nil {
				return err
			}
		}
		for _, r := range rows {
			if _, err := w.Write(r); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("psd: unknown compression %d", c)
}

// Decode reads the composite image of a PSD.
func Decode(r io.Reader) (image.Image, error) {
	f, err := Read(r)
	if err != nil {
		return nil, err
	}
	return f.Image, nil
}

// DecodeConfig reads the header of a PSD.
func DecodeConfig(r io.Reader) (image.Config, error) {
	h, err := readHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	cfg := image.Config{Width: int(h.Width), Height: int(h.Height), ColorModel: color.NRGBAModel}
	if h.Mode == modeGrayscale && h.Channels == 1 {
		cfg.ColorModel = color.GrayModel
	}
	return cfg, nil
}

// Read decodes the composite image and the resolution of a PSD.
func Read(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)
	h, err := readHeader(br)
	if err != nil {
		return nil, err
	}

	// Color mode data.
	if err := skipSection(br); err != nil {
		return nil, err
	}
	res, err := readResources(br)
	if err != nil {
		return nil, err
	}
	// Layer and mask information.
	if err := skipSection(br); err != nil {
		return nil, err
	}

	w, hgt := int(h.Width), int(h.Height)
	planes, err := readImageData(br, int(h.Channels), w, hgt)
	if err != nil {
		return nil, err
	}
	return &File{Image: compose(h, planes, w, hgt), Resolution: res}, nil
}

func readHeader(r io.Reader) (header, error) {
	var h header
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return h, fmt.Errorf("psd: reading header: %w", err)
	}
	if string(h.Signature[:]) != signature {
		return h, ErrSignature
	}
	if h.Version != 1 {
		return h, fmt.Errorf("%w: version %d", ErrUnsupported, h.Version)
	}
	if h.Depth != 8 {
		return h, fmt.Errorf("%w: %d bits per channel", ErrUnsupported, h.Depth)
	}
	switch {
	case h.Mode == modeRGB && h.Channels >= 3:
	case h.Mode == modeGrayscale && h.Channels >= 1:
	default:
		return h, fmt.Errorf("%w: mode %d with %d channels", ErrUnsupported, h.Mode, h.Channels)
	}
	if h.Width == 0 || h.Height == 0 {
		return h, fmt.Errorf("%w: empty canvas", ErrUnsupported)
	}
	if h.Width > maxDimension || h.Height > maxDimension {
		return h, fmt.Errorf("%w: %dx%d canvas exceeds %d pixels", ErrUnsupported, h.Width, h.Height, maxDimension)
	}
	if h.Channels > maxChannels {
		return h, fmt.Errorf("%w: %d channels", ErrUnsupported, h.Channels)
	}
	return h, nil
}

func skipSection(r *bufio.Reader) error {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return err
	}
	_, err := r.Discard(int(n))
	return err
}

func readResources(r *bufio.Reader) (float64, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return 0, err
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return 0, fmt.Errorf("psd: reading resources: %w", err)
	}

	res := 72.0
	for len(data) >= 12 && string(data[:4]) == "8BIM" {
		id := binary.BigEndian.Uint16(data[4:6])
		// Pascal name padded to an even length including the count byte.
		nameLen := int(data[6]) + 1
		if nameLen%2 == 1 {
			nameLen++
		}
		off := 6 + nameLen
		if off+4 > len(data) {
			break
		}
		size := int(binary.BigEndian.Uint32(data[off : off+4]))
		off += 4
		if off+size > len(data) {
			break
		}
		if id == resolutionInfoID && size >= 4 {
			res = float64(binary.BigEndian.Uint32(data[off:off+4])) / 65536
		}
		off += size
		if size%2 == 1 {
			off++
		}
		if off > len(data) {
			break
		}
		data = data[off:]
	}
	return res, nil
}

func readImageData(r io.Reader, channels, width, height int) ([][]byte, error) {
	var c uint16
	if err := binary.Read(r, binary.BigEndian, &c); err != nil {
		return nil, fmt.Errorf("psd: reading image data: %w", err)
	}
	planes := make([][]byte, channels)
	switch Compression(c) {
	case Raw:
		// Planes grow row by row so a truncated file fails before the
		// full canvas is allocated.
		row := make([]byte, width)
		for i := range planes {
			for y := 0; y < height; y++ {
				if _, err := io.ReadFull(r, row); err != nil {
					return nil, fmt.Errorf("psd: reading channel %d: %w", i, err)
				}
				planes[i] = append(planes[i], row...)
			}
		}
	case RLE:
		counts := make([]uint16, channels*height)
		if err := binary.Read(r, binary.BigEndian, counts); err != nil {
			return nil, fmt.Errorf("psd: reading row counts: %w", err)
		}
		for i := range planes {
			for y := 0; y < height; y++ {
				packed := make([]byte, counts[i*height+y])
				if _, err := io.ReadFull(r, packed); err != nil {
					return nil, fmt.Errorf("psd: reading channel %d: %w", i, err)
				}
				row, err := unpackBits(packed, width)
				if err != nil {
					return nil, err
				}
				planes[i] = append(planes[i], row...)
			}
		}
	default:
		return nil, fmt.Errorf("%w: compression %d", ErrUnsupported, c)
	}
	return planes, nil
}

func compose(h header, planes [][]byte, w, hgt int) image.Image {
	if h.Mode == modeGrayscale && len(planes) == 1 {
		g := image.NewGray(image.Rect(0, 0, w, hgt))
		copy(g.Pix, planes[0])
		return g
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, hgt))
	for i := 0; i < w*hgt; i++ {
		a := byte(0xff)
		if h.Mode == modeGrayscale {
			if len(planes) > 1 {
				a = planes[1][i]
			}
			img.Pix[i*4], img.Pix[i*4+1], img.Pix[i*4+2] = planes[0][i], planes[0][i], planes[0][i]
		} else {
			if len(planes) > 3 {
				a = planes[3][i]
			}
			img.Pix[i*4], img.Pix[i*4+1], img.Pix[i*4+2] = planes[0][i], planes[1][i], planes[2][i]
		}
		img.Pix[i*4+3] = a
	}
	return img
}
