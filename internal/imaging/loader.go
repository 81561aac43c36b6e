package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"math"
	"os"
	"sync"
	"time"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	_ "github.com/ironsheep/photoshop-mcp/internal/psd" // Register PSD format decoder
)

// ImageCache provides thread-safe caching of decoded image files.
//
// Entries are keyed by path and validated against the file's size and
// modification time, so a file rewritten by a save is decoded again on the
// next Load. Callers that write a file they know is cached can also Evict
// it directly.
//
// ImageCache is safe for concurrent use by multiple goroutines.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]cachedImage
}

type cachedImage struct {
	img     image.Image
	format  string
	size    int64
	modTime time.Time
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]cachedImage),
	}
}

// Load retrieves an image from the cache or decodes it from disk.
//
// Any format with a registered decoder is accepted: PNG, JPEG, GIF, BMP,
// TIFF, WebP and flattened PSD. The returned format name is the one the
// decoder registered ("png", "jpeg", "psd", ...).
//
// The returned image is shared between callers and must not be modified.
func (c *ImageCache) Load(path string) (image.Image, string, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}

	c.mu.RLock()
	entry, ok := c.images[path]
	c.mu.RUnlock()
	if ok && entry.size == stat.Size() && entry.modTime.Equal(stat.ModTime()) {
		return entry.img, entry.format, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = cachedImage{img: img, format: format, size: stat.Size(), modTime: stat.ModTime()}
	c.mu.Unlock()

	return img, format, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// FileInfo describes a file written by an export or save.
type FileInfo struct {
	// Path is the file that was inspected.
	Path string `json:"file_path"`

	// SizeBytes is the size of the file on disk in bytes.
	SizeBytes int64 `json:"file_size_bytes"`

	// SizeKB is SizeBytes / 1024 rounded to two decimals.
	SizeKB float64 `json:"file_size_kb"`

	// Format is the format detected from the file's leading bytes, or
	// "unknown". The extension is not consulted.
	Format string `json:"detected_format"`
}

// StatFile reports the size and sniffed format of a file on disk.
func StatFile(path string) (*FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	format, err := SniffFile(path)
	if err != nil {
		return nil, err
	}

	return &FileInfo{
		Path:      path,
		SizeBytes: stat.Size(),
		SizeKB:    math.Round(float64(stat.Size())/1024*100) / 100,
		Format:    format,
	}, nil
}
