package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ironsheep/photoshop-mcp/internal/psd"
)

// createTestImage writes a solid-color PNG into a temp dir and returns its path.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test-image.png")
	writePNG(t, path, createInMemoryImage(width, height, c))
	return path
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
}

func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestNewImageCache(t *testing.T) {
	cache := NewImageCache()
	if cache == nil {
		t.Fatal("NewImageCache returned nil")
	}
	if cache.Len() != 0 {
		t.Fatalf("new cache has %d entries", cache.Len())
	}
}

func TestImageCache_Load(t *testing.T) {
	path := createTestImage(t, 100, 50, color.RGBA{255, 0, 0, 255})
	cache := NewImageCache()

	img, format, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if format != "png" {
		t.Errorf("format: got %q, want png", format)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 50 {
		t.Errorf("dimensions: got %dx%d, want 100x50", img.Bounds().Dx(), img.Bounds().Dy())
	}

	img2, _, err := cache.Load(path)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img != img2 {
		t.Error("second Load did not return the cached image")
	}
}

func TestImageCache_ReloadsRewrittenFile(t *testing.T) {
	path := createTestImage(t, 10, 10, color.White)
	cache := NewImageCache()
	if _, _, err := cache.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	writePNG(t, path, createInMemoryImage(20, 30, color.Black))
	// Make sure the modification time moves even on coarse filesystems.
	later := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	img, _, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 30 {
		t.Errorf("stale image returned: %v", img.Bounds())
	}
}

func TestImageCache_LoadPSD(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.psd")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := psd.Encode(f, createInMemoryImage(12, 8, color.RGBA{0, 0, 255, 255}), nil); err != nil {
		t.Fatal(err)
	}
	f.Close()

	img, format, err := NewImageCache().Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if format != "psd" {
		t.Errorf("format: got %q, want psd", format)
	}
	if img.Bounds().Dx() != 12 {
		t.Errorf("width: got %d, want 12", img.Bounds().Dx())
	}
}

func TestImageCache_Load_NonExistent(t *testing.T) {
	cache := NewImageCache()
	if _, _, err := cache.Load("/nonexistent/path/image.png"); err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestImageCache_Load_InvalidImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := NewImageCache().Load(path); err == nil {
		t.Error("expected error for invalid image")
	}
}

func TestImageCache_Evict(t *testing.T) {
	p1 := createTestImage(t, 10, 10, color.White)
	p2 := createTestImage(t, 10, 10, color.Black)
	cache := NewImageCache()
	cache.Load(p1)
	cache.Load(p2)
	if cache.Len() != 2 {
		t.Fatalf("Len: got %d, want 2", cache.Len())
	}

	cache.Evict(p1)
	cache.Evict("/never/loaded.png")
	if cache.Len() != 1 {
		t.Errorf("Len after Evict: got %d, want 1", cache.Len())
	}
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	path := createTestImage(t, 50, 50, color.RGBA{0, 255, 0, 255})
	cache := NewImageCache()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := cache.Load(path); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent load error: %v", err)
	}
}

func TestStatFile(t *testing.T) {
	path := createTestImage(t, 64, 64, color.RGBA{1, 2, 3, 255})

	info, err := StatFile(path)
	if err != nil {
		t.Fatalf("StatFile failed: %v", err)
	}
	stat, _ := os.Stat(path)
	if info.SizeBytes != stat.Size() {
		t.Errorf("SizeBytes: got %d, want %d", info.SizeBytes, stat.Size())
	}
	if info.Format != FormatPNG {
		t.Errorf("Format: got %q, want png", info.Format)
	}
	want := float64(int(float64(stat.Size())/1024*100+0.5)) / 100
	if info.SizeKB != want {
		t.Errorf("SizeKB: got %v, want %v", info.SizeKB, want)
	}
}

func TestStatFile_Errors(t *testing.T) {
	if _, err := StatFile("/nonexistent/file.png"); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := StatFile(t.TempDir()); err == nil {
		t.Error("expected error for directory")
	}
}
