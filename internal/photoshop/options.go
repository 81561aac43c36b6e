package photoshop

// SaveOptions selects the file format of a SaveAs call and carries its
// format-specific settings.
type SaveOptions interface {
	Format() Format
}

// JPEGOptions writes a JPEG. Quality is on Photoshop's 0-12 scale.
type JPEGOptions struct {
	Quality int
	Scan    JPEGFormat
}

// PNGOptions writes a PNG. Compression is 0 (none) to 9 (smallest).
type PNGOptions struct {
	Compression int
	Interlaced  bool
}

// GIFOptions writes an indexed GIF.
type GIFOptions struct {
	Colors       int
	Transparency bool
}

// TIFFOptions writes a TIFF. JPEGQuality applies to TIFFJPEG only.
type TIFFOptions struct {
	Compression       TIFFEncoding
	JPEGQuality       int
	EmbedColorProfile bool
}

// PSDOptions writes a native Photoshop document.
type PSDOptions struct {
	MaximizeCompatibility bool
	EmbedColorProfile     bool
}

// BMPOptions writes a 24-bit Windows bitmap.
type BMPOptions struct{}

// WebPOptions writes a WebP. Quality is 0-100 and ignored when Lossless.
type WebPOptions struct {
	Quality  int
	Lossless bool
}

func (JPEGOptions) Format() Format { return FormatJPEG }
func (PNGOptions) Format() Format  { return FormatPNG }
func (GIFOptions) Format() Format  { return FormatGIF }
func (TIFFOptions) Format() Format { return FormatTIFF }
func (PSDOptions) Format() Format  { return FormatPSD }
func (BMPOptions) Format() Format  { return FormatBMP }
func (WebPOptions) Format() Format { return FormatWebP }
