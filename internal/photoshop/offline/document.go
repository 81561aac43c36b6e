package offline

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/photoshop-mcp/internal/photoshop"
)

var errClosed = errors.New("document has been closed")

// Document is an open offline document. All methods lock the owning App.
type Document struct {
	app        *App
	id         int
	name       string
	mode       photoshop.ColorMode
	resolution float64
	layers     []*layer // bottom first
	selection  *photoshop.Bounds
	path       string
	saved      bool
	closed     bool
}

var _ photoshop.Document = (*Document)(nil)

// ID returns the session-unique document id.
func (d *Document) ID() int { return d.id }

// do runs fn with the session locked, failing on closed documents. A
// successful mutation marks the document dirty.
func (d *Document) do(mutates bool, fn func() error) error {
	d.app.mu.Lock()
	defer d.app.mu.Unlock()
	if d.closed {
		return errClosed
	}
	if err := fn(); err != nil {
		return err
	}
	if mutates {
		d.saved = false
	}
	return nil
}

func (d *Document) size() (int, int) {
	b := d.layers[0].img.Bounds()
	return b.Dx(), b.Dy()
}

func (d *Document) bitsPerChannel() int {
	if d.mode == photoshop.ModeBitmap {
		return 1
	}
	return 8
}

func (d *Document) Info(ctx context.Context) (photoshop.DocumentInfo, error) {
	var info photoshop.DocumentInfo
	err := d.do(false, func() error {
		w, h := d.size()
		info = photoshop.DocumentInfo{
			Name:           d.name,
			Width:          w,
			Height:         h,
			Resolution:     d.resolution,
			Mode:           d.mode,
			BitsPerChannel: d.bitsPerChannel(),
			LayerCount:     len(d.layers),
			Path:           d.path,
			Saved:          d.saved,
		}
		return nil
	})
	return info, err
}

// Layers lists layers top first, matching the host's layer panel order.
func (d *Document) Layers(ctx context.Context) ([]photoshop.LayerInfo, error) {
	var out []photoshop.LayerInfo
	err := d.do(false, func() error {
		out = make([]photoshop.LayerInfo, 0, len(d.layers))
		for i := len(d.layers) - 1; i >= 0; i-- {
			out = append(out, d.layers[i].info())
		}
		return nil
	})
	return out, err
}

func (d *Document) Flatten(ctx context.Context) error {
	return d.do(true, func() error {
		d.flattenLocked()
		return nil
	})
}

func (d *Document) flattenLocked() {
	w, h := d.size()
	bg := &layer{
		name:    "Background",
		kind:    photoshop.LayerNormal,
		visible: true,
		opacity: 100,
		img:     composite(d.layers, w, h, white),
	}
	d.layers = []*layer{bg}
}

// MergeVisibleLayers replaces the visible layers with their composite,
// placed where the lowest visible layer was. Hidden layers are kept.
func (d *Document) MergeVisibleLayers(ctx context.Context) error {
	return d.do(true, func() error {
		first := -1
		var visible []*layer
		for i, l := range d.layers {
			if l.visible {
				if first < 0 {
					first = i
				}
				visible = append(visible, l)
			}
		}
		if len(visible) == 0 {
			return fmt.Errorf("no visible layers to merge")
		}
		if len(visible) == 1 {
			return nil
		}

		w, h := d.size()
		merged := &layer{
			name:    visible[0].name,
			kind:    photoshop.LayerNormal,
			visible: true,
			opacity: 100,
			img:     composite(visible, w, h, nil),
		}
		out := make([]*layer, 0, len(d.layers)-len(visible)+1)
		for i, l := range d.layers {
			switch {
			case i == first:
				out = append(out, merged)
			case !l.visible:
				out = append(out, l)
			}
		}
		d.layers = out
		return nil
	})
}

func (d *Document) AddTextLayer(ctx context.Context, opts photoshop.TextLayerOptions) (photoshop.LayerInfo, error) {
	var info photoshop.LayerInfo
	err := d.do(true, func() error {
		if opts.Text == "" {
			return fmt.Errorf("text is empty")
		}
		if opts.Size <= 0 {
			return fmt.Errorf("invalid text size %v", opts.Size)
		}
		w, h := d.size()
		l := newLayer(layerNameForText(opts.Text), photoshop.LayerText, w, h)
		if err := drawText(l.img, opts); err != nil {
			return err
		}
		d.layers = append(d.layers, l)
		info = l.info()
		return nil
	})
	return info, err
}

func (d *Document) AddFillLayer(ctx context.Context, opts photoshop.FillLayerOptions) (photoshop.LayerInfo, error) {
	var info photoshop.LayerInfo
	err := d.do(true, func() error {
		name := opts.Name
		if name == "" {
			name = "Color Fill"
		}
		w, h := d.size()
		l := newLayer(name, photoshop.LayerSolidFill, w, h)
		fillLayer(l, opts.Color)
		d.layers = append(d.layers, l)
		info = l.info()
		return nil
	})
	return info, err
}

func (d *Document) Selection(ctx context.Context) (photoshop.SelectionInfo, error) {
	var info photoshop.SelectionInfo
	err := d.do(false, func() error {
		if d.selection != nil {
			b := *d.selection
			info = photoshop.SelectionInfo{HasSelection: true, Bounds: &b}
		}
		return nil
	})
	return info, err
}

// Select replaces the selection with bounds clipped to the canvas.
func (d *Document) Select(ctx context.Context, bounds photoshop.Bounds) error {
	return d.do(false, func() error {
		w, h := d.size()
		r := image.Rect(bounds.Left, bounds.Top, bounds.Right, bounds.Bottom).Intersect(image.Rect(0, 0, w, h))
		if r.Empty() {
			return fmt.Errorf("selection (%d,%d)-(%d,%d) does not intersect the canvas",
				bounds.Left, bounds.Top, bounds.Right, bounds.Bottom)
		}
		d.selection = &photoshop.Bounds{Left: r.Min.X, Top: r.Min.Y, Right: r.Max.X, Bottom: r.Max.Y}
		return nil
	})
}

func (d *Document) Deselect(ctx context.Context) error {
	return d.do(false, func() error {
		d.selection = nil
		return nil
	})
}

// Close removes the document from the session. With save set the
// document is written to its own path first, in the format its extension
// names.
func (d *Document) Close(ctx context.Context, save bool) error {
	d.app.mu.Lock()
	defer d.app.mu.Unlock()
	if d.closed {
		return errClosed
	}
	if save {
		if d.path == "" {
			return fmt.Errorf("document %q has never been saved", d.name)
		}
		if err := d.saveLocked(d.path, defaultOptionsFor(d.path), false); err != nil {
			return err
		}
	}
	d.closed = true
	d.app.removeLocked(d)
	return nil
}

func layerNameForText(s string) string {
	const max = 32
	r := []rune(s)
	if len(r) > max {
		r = r[:max]
	}
	return string(r)
}
