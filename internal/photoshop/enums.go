package photoshop

import (
	"fmt"
	"strings"
)

// ColorMode is a document color mode.
type ColorMode string

const (
	ModeRGB          ColorMode = "RGB"
	ModeCMYK         ColorMode = "CMYK"
	ModeGrayscale    ColorMode = "Grayscale"
	ModeLab          ColorMode = "Lab"
	ModeBitmap       ColorMode = "Bitmap"
	ModeIndexed      ColorMode = "IndexedColor"
	ModeMultiChannel ColorMode = "MultiChannel"
	ModeDuotone      ColorMode = "Duotone"
)

var colorModes = map[string]ColorMode{
	"rgb":          ModeRGB,
	"cmyk":         ModeCMYK,
	"grayscale":    ModeGrayscale,
	"gray":         ModeGrayscale,
	"lab":          ModeLab,
	"bitmap":       ModeBitmap,
	"indexed":      ModeIndexed,
	"indexedcolor": ModeIndexed,
	"multichannel": ModeMultiChannel,
}

// ColorModeNames lists the accepted mode arguments.
var ColorModeNames = []string{"rgb", "cmyk", "grayscale", "gray", "lab", "bitmap", "indexed", "multichannel"}

// ParseColorMode maps a case-insensitive mode name to a ColorMode.
// Duotone is reported by documents but cannot be a conversion target.
func ParseColorMode(s string) (ColorMode, error) {
	if m, ok := colorModes[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return "", fmt.Errorf("unsupported color mode %q", s)
}

// ResampleMethod selects the interpolation used by ResizeImage.
type ResampleMethod string

const (
	ResampleBicubic         ResampleMethod = "bicubic"
	ResampleBilinear        ResampleMethod = "bilinear"
	ResampleNearestNeighbor ResampleMethod = "nearest_neighbor"
	ResampleBicubicSmoother ResampleMethod = "bicubic_smoother"
	ResampleBicubicSharper  ResampleMethod = "bicubic_sharper"
	ResamplePreserveDetails ResampleMethod = "preserve_details"
	ResampleAutomatic       ResampleMethod = "automatic"
)

// ResampleMethodNames lists the accepted resample arguments.
var ResampleMethodNames = []string{
	string(ResampleBicubic),
	string(ResampleBilinear),
	string(ResampleNearestNeighbor),
	string(ResampleBicubicSmoother),
	string(ResampleBicubicSharper),
	string(ResamplePreserveDetails),
	string(ResampleAutomatic),
}

// ParseResampleMethod maps a case-insensitive name to a ResampleMethod.
func ParseResampleMethod(s string) (ResampleMethod, error) {
	return parseEnum[ResampleMethod](s, ResampleMethodNames, "resample method")
}

// TrimType selects what Trim removes.
type TrimType string

const (
	TrimTransparent      TrimType = "transparent"
	TrimTopLeftColor     TrimType = "top_left_color"
	TrimBottomRightColor TrimType = "bottom_right_color"
)

// TrimTypeNames lists the accepted trim arguments.
var TrimTypeNames = []string{string(TrimTransparent), string(TrimTopLeftColor), string(TrimBottomRightColor)}

// ParseTrimType maps a case-insensitive name to a TrimType.
func ParseTrimType(s string) (TrimType, error) {
	return parseEnum[TrimType](s, TrimTypeNames, "trim type")
}

// Direction is a canvas flip axis.
type Direction string

const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
)

// DirectionNames lists the accepted flip arguments.
var DirectionNames = []string{string(Horizontal), string(Vertical)}

// ParseDirection maps a case-insensitive name to a Direction.
func ParseDirection(s string) (Direction, error) {
	return parseEnum[Direction](s, DirectionNames, "direction")
}

// TIFFEncoding is the TIFF image compression.
type TIFFEncoding string

const (
	TIFFNone TIFFEncoding = "none"
	TIFFLZW  TIFFEncoding = "lzw"
	TIFFZIP  TIFFEncoding = "zip"
	TIFFJPEG TIFFEncoding = "jpeg"
)

// TIFFEncodingNames lists the accepted TIFF compression arguments.
var TIFFEncodingNames = []string{string(TIFFNone), string(TIFFLZW), string(TIFFZIP), string(TIFFJPEG)}

// ParseTIFFEncoding maps a case-insensitive name to a TIFFEncoding.
func ParseTIFFEncoding(s string) (TIFFEncoding, error) {
	return parseEnum[TIFFEncoding](s, TIFFEncodingNames, "TIFF compression")
}

// JPEGFormat is the JPEG scan layout.
type JPEGFormat string

const (
	JPEGStandard    JPEGFormat = "standard"
	JPEGOptimized   JPEGFormat = "optimized"
	JPEGProgressive JPEGFormat = "progressive"
)

// Format names a file format SaveAs can write.
type Format string

const (
	FormatPSD  Format = "psd"
	FormatJPEG Format = "jpg"
	FormatPNG  Format = "png"
	FormatGIF  Format = "gif"
	FormatTIFF Format = "tif"
	FormatBMP  Format = "bmp"
	FormatWebP Format = "webp"
)

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string { return "." + string(f) }

// ParseFormat maps a format argument to a Format. jpeg and tiff are
// accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "psd":
		return FormatPSD, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "gif":
		return FormatGIF, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	case "bmp":
		return FormatBMP, nil
	case "webp":
		return FormatWebP, nil
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

func parseEnum[T ~string](s string, names []string, what string) (T, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, n := range names {
		if n == v {
			return T(n), nil
		}
	}
	return "", fmt.Errorf("unsupported %s %q (want one of %s)", what, s, strings.Join(names, ", "))
}
