package photoshop

import (
	"context"
	"image/color"
)

// Application is a handle on a Photoshop session.
type Application interface {
	// Version reports the host application version string.
	Version(ctx context.Context) (string, error)

	// ActiveDocument returns the focused document, or ErrNoActiveDocument.
	ActiveDocument(ctx context.Context) (Document, error)

	// Documents lists every open document in session order.
	Documents(ctx context.Context) ([]Document, error)

	// CreateDocument adds a new document and makes it active.
	CreateDocument(ctx context.Context, opts NewDocumentOptions) (Document, error)

	// OpenDocument opens a file and makes it active.
	OpenDocument(ctx context.Context, path string) (Document, error)

	// RunScript executes a JavaScript snippet in the host and returns the
	// value of its last expression as a string.
	RunScript(ctx context.Context, script string) (string, error)
}

// Document is a handle on one open document.
type Document interface {
	Info(ctx context.Context) (DocumentInfo, error)
	Layers(ctx context.Context) ([]LayerInfo, error)

	ResizeImage(ctx context.Context, opts ResizeOptions) error
	ChangeMode(ctx context.Context, mode ColorMode) error
	Crop(ctx context.Context, bounds Bounds) error
	Trim(ctx context.Context, trim TrimType) error

	// RotateCanvas rotates by angle degrees, positive values clockwise.
	RotateCanvas(ctx context.Context, angle float64) error
	FlipCanvas(ctx context.Context, dir Direction) error

	Flatten(ctx context.Context) error
	MergeVisibleLayers(ctx context.Context) error

	AddTextLayer(ctx context.Context, opts TextLayerOptions) (LayerInfo, error)
	AddFillLayer(ctx context.Context, opts FillLayerOptions) (LayerInfo, error)

	Selection(ctx context.Context) (SelectionInfo, error)
	Select(ctx context.Context, bounds Bounds) error
	Deselect(ctx context.Context) error

	// SaveAs writes the document to path in the format selected by opts.
	// When asCopy is true the document keeps its current file association.
	SaveAs(ctx context.Context, path string, opts SaveOptions, asCopy bool) error

	// Close closes the document, saving it first when save is true.
	Close(ctx context.Context, save bool) error
}

// NewDocumentOptions describes a document to create.
type NewDocumentOptions struct {
	Name       string
	Width      int
	Height     int
	Resolution float64
	Mode       ColorMode
}

// DocumentInfo is a snapshot of a document's properties.
type DocumentInfo struct {
	Name           string    `json:"name"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	Resolution     float64   `json:"resolution"`
	Mode           ColorMode `json:"mode"`
	BitsPerChannel int       `json:"bits_per_channel"`
	LayerCount     int       `json:"layer_count"`
	Path           string    `json:"path,omitempty"`
	Saved          bool      `json:"saved"`
}

// LayerKind distinguishes the layer types the tools create.
type LayerKind string

const (
	LayerNormal    LayerKind = "normal"
	LayerText      LayerKind = "text"
	LayerSolidFill LayerKind = "solidfill"
)

// LayerInfo describes one art layer.
type LayerInfo struct {
	Name    string    `json:"name"`
	Kind    LayerKind `json:"kind"`
	Visible bool      `json:"visible"`
	Opacity float64   `json:"opacity"`
}

// Bounds is a rectangle in document pixels. Right and Bottom are exclusive.
type Bounds struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Width returns Right - Left.
func (b Bounds) Width() int { return b.Right - b.Left }

// Height returns Bottom - Top.
func (b Bounds) Height() int { return b.Bottom - b.Top }

// Empty reports whether the rectangle contains no pixels.
func (b Bounds) Empty() bool { return b.Right <= b.Left || b.Bottom <= b.Top }

// SelectionInfo describes the active selection of a document.
type SelectionInfo struct {
	HasSelection bool    `json:"has_selection"`
	Bounds       *Bounds `json:"bounds,omitempty"`
}

// ResizeOptions are the arguments to ResizeImage.
type ResizeOptions struct {
	Width      int
	Height     int
	Resolution float64
	Resample   ResampleMethod
}

// TextLayerOptions are the arguments to AddTextLayer.
type TextLayerOptions struct {
	Text  string
	X     int
	Y     int
	Size  float64
	Color color.RGBA
}

// FillLayerOptions are the arguments to AddFillLayer.
type FillLayerOptions struct {
	Name  string
	Color color.RGBA
}
