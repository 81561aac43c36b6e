package imaging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		want   string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, FormatJPEG},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}, FormatPNG},
		{"psd", []byte{0x38, 0x42, 0x50, 0x53, 0x00, 0x01}, FormatPSD},
		{"gif87", []byte("GIF87a...."), FormatGIF},
		{"gif89", []byte("GIF89a...."), FormatGIF},
		{"tiff little endian", []byte{'I', 'I', 0x2A, 0x00}, FormatTIFF},
		{"tiff big endian", []byte{'M', 'M', 0x00, 0x2A}, FormatTIFF},
		{"bmp", []byte("BM\x00\x00"), FormatBMP},
		{"webp", []byte("RIFF\x10\x00\x00\x00WEBPVP8 "), FormatWebP},
		{"riff not webp", []byte("RIFF\x10\x00\x00\x00WAVEfmt "), FormatUnknown},
		{"truncated png", []byte{0x89, 0x50}, FormatUnknown},
		{"empty", nil, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.header); got != tt.want {
				t.Errorf("DetectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSniffFile(t *testing.T) {
	dir := t.TempDir()

	short := filepath.Join(dir, "short.bin")
	if err := os.WriteFile(short, []byte{0xFF, 0xD8}, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := SniffFile(short)
	if err != nil {
		t.Fatalf("SniffFile failed: %v", err)
	}
	if got != FormatJPEG {
		t.Errorf("got %q, want jpeg", got)
	}

	empty := filepath.Join(dir, "empty.bin")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = SniffFile(empty)
	if err != nil {
		t.Fatalf("SniffFile on empty file failed: %v", err)
	}
	if got != FormatUnknown {
		t.Errorf("got %q, want unknown", got)
	}

	if _, err := SniffFile(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}
