// Package offline implements the photoshop adapter as an in-process raster
// session.
//
// Documents are stacks of document-sized NRGBA layers. Pixel work goes
// through disintegration/imaging and bild; files are written with the
// standard encoders, golang.org/x/image and internal/psd. The backend has
// no script engine and cannot write WebP.
package offline

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"

	imgutil "github.com/ironsheep/photoshop-mcp/internal/imaging"
	"github.com/ironsheep/photoshop-mcp/internal/photoshop"
	"github.com/ironsheep/photoshop-mcp/internal/psd"
)

// Version is reported by App.Version.
const Version = "offline-1.0"

// App is an offline Photoshop session. The zero value is not usable; call
// New.
type App struct {
	mu     sync.Mutex
	cache  *imgutil.ImageCache
	docs   []*Document
	active *Document
	nextID int
}

var _ photoshop.Application = (*App)(nil)

// New returns an empty session. Opened files are decoded through cache;
// a nil cache gets a private one.
func New(cache *imgutil.ImageCache) *App {
	if cache == nil {
		cache = imgutil.NewImageCache()
	}
	return &App{cache: cache, nextID: 1}
}

func (a *App) Version(ctx context.Context) (string, error) {
	return Version, nil
}

func (a *App) ActiveDocument(ctx context.Context) (photoshop.Document, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active == nil {
		return nil, photoshop.ErrNoActiveDocument
	}
	return a.active, nil
}

func (a *App) Documents(ctx context.Context) ([]photoshop.Document, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	docs := make([]photoshop.Document, len(a.docs))
	for i, d := range a.docs {
		docs[i] = d
	}
	return docs, nil
}

func (a *App) CreateDocument(ctx context.Context, opts photoshop.NewDocumentOptions) (photoshop.Document, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid document size %dx%d", opts.Width, opts.Height)
	}
	if opts.Resolution <= 0 {
		opts.Resolution = 72
	}
	if opts.Mode == "" {
		opts.Mode = photoshop.ModeRGB
	}
	switch opts.Mode {
	case photoshop.ModeRGB, photoshop.ModeCMYK, photoshop.ModeGrayscale, photoshop.ModeLab, photoshop.ModeBitmap:
	default:
		return nil, fmt.Errorf("cannot create a document in %s mode", opts.Mode)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	name := opts.Name
	if name == "" {
		name = fmt.Sprintf("Untitled-%d", a.nextID)
	}
	bg := newLayer("Background", photoshop.LayerNormal, opts.Width, opts.Height)
	fillLayer(bg, white)

	d := a.addLocked(name, opts.Mode, opts.Resolution, []*layer{bg})
	return d, nil
}

func (a *App) OpenDocument(ctx context.Context, path string) (photoshop.Document, error) {
	img, format, err := a.cache.Load(path)
	if err != nil {
		return nil, err
	}

	res := 72.0
	if format == "psd" {
		if r, err := psdResolution(path); err == nil {
			res = r
		}
	}

	bg := &layer{
		name:    "Background",
		kind:    photoshop.LayerNormal,
		visible: true,
		opacity: 100,
		img:     imaging.Clone(img),
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	d := a.addLocked(filepath.Base(path), modeOf(img), res, []*layer{bg})
	d.path = path
	d.saved = true
	return d, nil
}

// RunScript always fails: the offline session has no script engine.
func (a *App) RunScript(ctx context.Context, script string) (string, error) {
	return "", photoshop.ErrScriptingUnsupported
}

func (a *App) addLocked(name string, mode photoshop.ColorMode, res float64, layers []*layer) *Document {
	d := &Document{
		app:        a,
		id:         a.nextID,
		name:       name,
		mode:       mode,
		resolution: res,
		layers:     layers,
	}
	a.nextID++
	a.docs = append(a.docs, d)
	a.active = d
	return d
}

func (a *App) removeLocked(d *Document) {
	for i, o := range a.docs {
		if o == d {
			a.docs = append(a.docs[:i], a.docs[i+1:]...)
			break
		}
	}
	if a.active == d {
		a.active = nil
		if n := len(a.docs); n > 0 {
			a.active = a.docs[n-1]
		}
	}
}

func modeOf(img image.Image) photoshop.ColorMode {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return photoshop.ModeGrayscale
	case *image.Paletted:
		return photoshop.ModeIndexed
	case *image.CMYK:
		return photoshop.ModeCMYK
	}
	return photoshop.ModeRGB
}

func psdResolution(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	doc, err := psd.Read(f)
	if err != nil {
		return 0, err
	}
	return doc.Resolution, nil
}
