package imaging

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Format names returned by DetectFormat.
const (
	FormatJPEG    = "jpeg"
	FormatPNG     = "png"
	FormatPSD     = "psd"
	FormatGIF     = "gif"
	FormatTIFF    = "tiff"
	FormatBMP     = "bmp"
	FormatWebP    = "webp"
	FormatUnknown = "unknown"
)

var signatures = []struct {
	format string
	match  func([]byte) bool
}{
	{FormatJPEG, prefix(0xFF, 0xD8)},
	{FormatPNG, prefix(0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A)},
	{FormatPSD, prefix(0x38, 0x42, 0x50, 0x53)},
	{FormatGIF, func(b []byte) bool { return bytes.HasPrefix(b, []byte("GIF87a")) || bytes.HasPrefix(b, []byte("GIF89a")) }},
	{FormatTIFF, func(b []byte) bool { return bytes.HasPrefix(b, []byte("II*\x00")) || bytes.HasPrefix(b, []byte("MM\x00*")) }},
	{FormatBMP, prefix('B', 'M')},
	{FormatWebP, func(b []byte) bool {
		return len(b) >= 12 && bytes.Equal(b[:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WEBP"))
	}},
}

func prefix(sig ...byte) func([]byte) bool {
	return func(b []byte) bool { return bytes.HasPrefix(b, sig) }
}

// DetectFormat identifies an image format from its leading bytes.
func DetectFormat(header []byte) string {
	for _, s := range signatures {
		if s.match(header) {
			return s.format
		}
	}
	return FormatUnknown
}

// SniffFile reads the first bytes of path and returns DetectFormat's answer.
func SniffFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	header := make([]byte, 16)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("failed to read file header: %w", err)
	}
	return DetectFormat(header[:n]), nil
}
