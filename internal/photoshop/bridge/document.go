package bridge

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/ironsheep/photoshop-mcp/internal/photoshop"
)

// Document addresses an open Photoshop document by id. The id is resolved
// again on every call, so a handle to a closed document fails cleanly.
type Document struct {
	app *App
	id  int
}

var _ photoshop.Document = (*Document)(nil)

// ID returns Photoshop's document id.
func (d *Document) ID() int { return d.id }

func (d *Document) args(kv ...any) map[string]any {
	m := map[string]any{"ID": d.id}
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i].(string)] = kv[i+1]
	}
	return m
}

type hostInfo struct {
	Name       string  `json:"name"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Resolution float64 `json:"resolution"`
	Mode       string  `json:"mode"`
	Bits       string  `json:"bits"`
	LayerCount int     `json:"layer_count"`
	Path       string  `json:"path"`
	Saved      bool    `json:"saved"`
}

type hostLayer struct {
	Name    string  `json:"name"`
	Kind    string  `json:"kind"`
	Visible bool    `json:"visible"`
	Opacity float64 `json:"opacity"`
}

func (l hostLayer) info() photoshop.LayerInfo {
	return photoshop.LayerInfo{Name: l.Name, Kind: hostLayerKind(l.Kind), Visible: l.Visible, Opacity: l.Opacity}
}

func (d *Document) Info(ctx context.Context) (photoshop.DocumentInfo, error) {
	var h hostInfo
	if err := d.app.call(ctx, "info", d.args(), &h); err != nil {
		return photoshop.DocumentInfo{}, err
	}
	return photoshop.DocumentInfo{
		Name:           h.Name,
		Width:          int(h.Width + 0.5),
		Height:         int(h.Height + 0.5),
		Resolution:     h.Resolution,
		Mode:           hostMode(h.Mode),
		BitsPerChannel: hostBits(h.Bits),
		LayerCount:     h.LayerCount,
		Path:           h.Path,
		Saved:          h.Saved,
	}, nil
}

func (d *Document) Layers(ctx context.Context) ([]photoshop.LayerInfo, error) {
	var hl []hostLayer
	if err := d.app.call(ctx, "layers", d.args(), &hl); err != nil {
		return nil, err
	}
	out := make([]photoshop.LayerInfo, len(hl))
	for i, l := range hl {
		out[i] = l.info()
	}
	return out, nil
}

var resampleMethods = map[photoshop.ResampleMethod]string{
	photoshop.ResampleBicubic:         "BICUBIC",
	photoshop.ResampleBilinear:        "BILINEAR",
	photoshop.ResampleNearestNeighbor: "NEARESTNEIGHBOR",
	photoshop.ResampleBicubicSmoother: "BICUBICSMOOTHER",
	photoshop.ResampleBicubicSharper:  "BICUBICSHARPER",
	photoshop.ResamplePreserveDetails: "PRESERVEDETAILS",
	photoshop.ResampleAutomatic:       "AUTOMATIC",
}

func (d *Document) ResizeImage(ctx context.Context, opts photoshop.ResizeOptions) error {
	m := opts.Resample
	if m == "" {
		m = photoshop.ResampleBicubic
	}
	method, ok := resampleMethods[m]
	if !ok {
		return fmt.Errorf("unsupported resample method %q", opts.Resample)
	}
	return d.app.call(ctx, "resize", d.args(
		"Width", opts.Width,
		"Height", opts.Height,
		"Resolution", opts.Resolution,
		"Resample", method,
	), nil)
}

func (d *Document) ChangeMode(ctx context.Context, mode photoshop.ColorMode) error {
	target, ok := changeModes[mode]
	if !ok {
		return fmt.Errorf("cannot convert to %s mode", mode)
	}
	return d.app.call(ctx, "mode", d.args("Mode", target), nil)
}

func (d *Document) Crop(ctx context.Context, b photoshop.Bounds) error {
	if b.Empty() {
		return fmt.Errorf("invalid crop bounds: left must be < right and top must be < bottom")
	}
	return d.app.call(ctx, "crop", d.args("Left", b.Left, "Top", b.Top, "Right", b.Right, "Bottom", b.Bottom), nil)
}

var trimTypes = map[photoshop.TrimType]string{
	photoshop.TrimTransparent:      "TRANSPARENT",
	photoshop.TrimTopLeftColor:     "TOPLEFT",
	photoshop.TrimBottomRightColor: "BOTTOMRIGHT",
}

func (d *Document) Trim(ctx context.Context, trim photoshop.TrimType) error {
	t, ok := trimTypes[trim]
	if !ok {
		return fmt.Errorf("unsupported trim type %q", trim)
	}
	return d.app.call(ctx, "trim", d.args("Trim", t), nil)
}

func (d *Document) RotateCanvas(ctx context.Context, angle float64) error {
	return d.app.call(ctx, "rotate", d.args("Angle", angle), nil)
}

func (d *Document) FlipCanvas(ctx context.Context, dir photoshop.Direction) error {
	var name string
	switch dir {
	case photoshop.Horizontal:
		name = "HORIZONTAL"
	case photoshop.Vertical:
		name = "VERTICAL"
	default:
		return fmt.Errorf("unsupported direction %q", dir)
	}
	return d.app.call(ctx, "flip", d.args("Direction", name), nil)
}

func (d *Document) Flatten(ctx context.Context) error {
	return d.app.call(ctx, "flatten", d.args(), nil)
}

func (d *Document) MergeVisibleLayers(ctx context.Context) error {
	return d.app.call(ctx, "merge", d.args(), nil)
}

func (d *Document) AddTextLayer(ctx context.Context, opts photoshop.TextLayerOptions) (photoshop.LayerInfo, error) {
	var l hostLayer
	err := d.app.call(ctx, "text", d.args(
		"Text", opts.Text,
		"X", opts.X,
		"Y", opts.Y,
		"Size", opts.Size,
		"R", opts.Color.R,
		"G", opts.Color.G,
		"B", opts.Color.B,
	), &l)
	return l.info(), err
}

func (d *Document) AddFillLayer(ctx context.Context, opts photoshop.FillLayerOptions) (photoshop.LayerInfo, error) {
	name := opts.Name
	if name == "" {
		name = "Color Fill"
	}
	var l hostLayer
	err := d.app.call(ctx, "fill", d.args(
		"Name", name,
		"R", opts.Color.R,
		"G", opts.Color.G,
		"B", opts.Color.B,
	), &l)
	return l.info(), err
}

func (d *Document) Selection(ctx context.Context) (photoshop.SelectionInfo, error) {
	var s struct {
		HasSelection bool      `json:"has_selection"`
		Bounds       []float64 `json:"bounds"`
	}
	if err := d.app.call(ctx, "selection", d.args(), &s); err != nil {
		return photoshop.SelectionInfo{}, err
	}
	if !s.HasSelection || len(s.Bounds) != 4 {
		return photoshop.SelectionInfo{}, nil
	}
	return photoshop.SelectionInfo{
		HasSelection: true,
		Bounds: &photoshop.Bounds{
			Left:   int(s.Bounds[0]),
			Top:    int(s.Bounds[1]),
			Right:  int(s.Bounds[2]),
			Bottom: int(s.Bounds[3]),
		},
	}, nil
}

func (d *Document) Select(ctx context.Context, b photoshop.Bounds) error {
	if b.Empty() {
		return fmt.Errorf("invalid selection bounds")
	}
	return d.app.call(ctx, "select", d.args("Left", b.Left, "Top", b.Top, "Right", b.Right, "Bottom", b.Bottom), nil)
}

func (d *Document) Deselect(ctx context.Context) error {
	return d.app.call(ctx, "deselect", d.args(), nil)
}

var (
	jpegScans = map[photoshop.JPEGFormat]string{
		"":                        "STANDARDBASELINE",
		photoshop.JPEGStandard:    "STANDARDBASELINE",
		photoshop.JPEGOptimized:   "OPTIMIZEDBASELINE",
		photoshop.JPEGProgressive: "PROGRESSIVE",
	}
	tiffEncodings = map[photoshop.TIFFEncoding]string{
		"":                 "NONE",
		photoshop.TIFFNone: "NONE",
		photoshop.TIFFLZW:  "TIFFLZW",
		photoshop.TIFFZIP:  "TIFFZIP",
		photoshop.TIFFJPEG: "JPEG",
	}
)

// saveOptions converts typed options into the object the save script reads.
func saveOptions(opts photoshop.SaveOptions) (map[string]any, error) {
	switch o := opts.(type) {
	case photoshop.JPEGOptions:
		scan, ok := jpegScans[o.Scan]
		if !ok {
			return nil, fmt.Errorf("unsupported JPEG format %q", o.Scan)
		}
		return map[string]any{"quality": min(max(o.Quality, 0), 12), "scan": scan}, nil
	case photoshop.PNGOptions:
		return map[string]any{"compression": min(max(o.Compression, 0), 9), "interlaced": o.Interlaced}, nil
	case photoshop.GIFOptions:
		colors := o.Colors
		if colors < 2 || colors > 256 {
			colors = 256
		}
		return map[string]any{"colors": colors, "transparency": o.Transparency}, nil
	case photoshop.TIFFOptions:
		enc, ok := tiffEncodings[o.Compression]
		if !ok {
			return nil, fmt.Errorf("unsupported TIFF compression %q", o.Compression)
		}
		return map[string]any{
			"compression":         enc,
			"jpeg_quality":        min(max(o.JPEGQuality, 0), 12),
			"embed_color_profile": o.EmbedColorProfile,
		}, nil
	case photoshop.PSDOptions:
		return map[string]any{
			"maximize_compatibility": o.MaximizeCompatibility,
			"embed_color_profile":    o.EmbedColorProfile,
		}, nil
	case photoshop.BMPOptions:
		return map[string]any{}, nil
	case photoshop.WebPOptions:
		return map[string]any{"quality": min(max(o.Quality, 0), 100), "lossless": o.Lossless}, nil
	}
	return nil, fmt.Errorf("unknown save options %T", opts)
}

// SaveAs writes the document with the host's native writers. Photoshop
// versions without WebP support fail the WebP save action; that failure is
// reported as photoshop.ErrFormatUnsupported.
func (d *Document) SaveAs(ctx context.Context, path string, opts photoshop.SaveOptions, asCopy bool) error {
	if opts == nil {
		return fmt.Errorf("no save options")
	}
	o, err := saveOptions(opts)
	if err != nil {
		return err
	}
	err = d.app.call(ctx, "save", d.args(
		"Path", path,
		"AsCopy", asCopy,
		"Format", string(opts.Format()),
		"Options", o,
	), nil)
	if err != nil && opts.Format() == photoshop.FormatWebP && ctx.Err() == nil {
		return fmt.Errorf("%w: %v", photoshop.ErrFormatUnsupported, err)
	}
	return errors.WithMessage(err, "save")
}

func (d *Document) Close(ctx context.Context, save bool) error {
	return d.app.call(ctx, "close", d.args("Save", save), nil)
}
