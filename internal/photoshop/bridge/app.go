// Package bridge implements the photoshop adapter against a running Adobe
// Photoshop.
//
// Each adapter call renders one ExtendScript program from the embedded
// templates under scripts/ and hands it to a Runner. Arguments are always
// injected as JSON literals. Programs work in pixel ruler units, address
// documents by their numeric id and answer with JSON or "Error: message".
package bridge

import (
	"context"
	"fmt"
	"strings"

	"github.com/ironsheep/photoshop-mcp/internal/photoshop"
)

// App is a Photoshop session reached through a Runner.
type App struct {
	runner Runner
}

var _ photoshop.Application = (*App)(nil)

// New returns an App that runs its scripts with r.
func New(r Runner) *App {
	return &App{runner: r}
}

func (a *App) Version(ctx context.Context) (string, error) {
	var v string
	if err := a.call(ctx, "version", nil, &v); err != nil {
		return "", err
	}
	return v, nil
}

func (a *App) ActiveDocument(ctx context.Context) (photoshop.Document, error) {
	var id *int
	if err := a.call(ctx, "active", nil, &id); err != nil {
		return nil, err
	}
	if id == nil {
		return nil, photoshop.ErrNoActiveDocument
	}
	return &Document{app: a, id: *id}, nil
}

func (a *App) Documents(ctx context.Context) ([]photoshop.Document, error) {
	var ids []int
	if err := a.call(ctx, "documents", nil, &ids); err != nil {
		return nil, err
	}
	docs := make([]photoshop.Document, len(ids))
	for i, id := range ids {
		docs[i] = &Document{app: a, id: id}
	}
	return docs, nil
}

func (a *App) CreateDocument(ctx context.Context, opts photoshop.NewDocumentOptions) (photoshop.Document, error) {
	mode := opts.Mode
	if mode == "" {
		mode = photoshop.ModeRGB
	}
	newMode, ok := newDocumentModes[mode]
	if !ok {
		return nil, fmt.Errorf("cannot create a document in %s mode", mode)
	}
	res := opts.Resolution
	if res <= 0 {
		res = 72
	}
	data := map[string]any{
		"Width":      opts.Width,
		"Height":     opts.Height,
		"Resolution": res,
		"Name":       opts.Name,
		"Mode":       newMode,
	}
	var id int
	if err := a.call(ctx, "create", data, &id); err != nil {
		return nil, err
	}
	return &Document{app: a, id: id}, nil
}

func (a *App) OpenDocument(ctx context.Context, path string) (photoshop.Document, error) {
	var id int
	if err := a.call(ctx, "open", map[string]any{"Path": path}, &id); err != nil {
		return nil, err
	}
	return &Document{app: a, id: id}, nil
}

func (a *App) RunScript(ctx context.Context, script string) (string, error) {
	var out string
	if err := a.call(ctx, "script", map[string]any{"Script": script}, &out); err != nil {
		return "", err
	}
	return out, nil
}

// NewDocumentMode constant names.
var newDocumentModes = map[photoshop.ColorMode]string{
	photoshop.ModeRGB:       "RGB",
	photoshop.ModeCMYK:      "CMYK",
	photoshop.ModeGrayscale: "GRAYSCALE",
	photoshop.ModeLab:       "LAB",
	photoshop.ModeBitmap:    "BITMAP",
}

// ChangeMode constant names.
var changeModes = map[photoshop.ColorMode]string{
	photoshop.ModeRGB:          "RGB",
	photoshop.ModeCMYK:         "CMYK",
	photoshop.ModeGrayscale:    "GRAYSCALE",
	photoshop.ModeLab:          "LAB",
	photoshop.ModeBitmap:       "BITMAP",
	photoshop.ModeIndexed:      "INDEXEDCOLOR",
	photoshop.ModeMultiChannel: "MULTICHANNEL",
}

var documentModes = map[string]photoshop.ColorMode{
	"RGB":          photoshop.ModeRGB,
	"CMYK":         photoshop.ModeCMYK,
	"GRAYSCALE":    photoshop.ModeGrayscale,
	"LAB":          photoshop.ModeLab,
	"BITMAP":       photoshop.ModeBitmap,
	"INDEXEDCOLOR": photoshop.ModeIndexed,
	"MULTICHANNEL": photoshop.ModeMultiChannel,
	"DUOTONE":      photoshop.ModeDuotone,
}

// hostMode maps "DocumentMode.RGB" style enum strings to a ColorMode.
// Unknown values pass through without the prefix.
func hostMode(s string) photoshop.ColorMode {
	name := strings.TrimPrefix(s, "DocumentMode.")
	if m, ok := documentModes[name]; ok {
		return m
	}
	return photoshop.ColorMode(name)
}

func hostBits(s string) int {
	switch strings.TrimPrefix(s, "BitsPerChannelType.") {
	case "ONE":
		return 1
	case "SIXTEEN":
		return 16
	case "THIRTYTWO":
		return 32
	}
	return 8
}

func hostLayerKind(s string) photoshop.LayerKind {
	switch strings.TrimPrefix(s, "LayerKind.") {
	case "TEXT":
		return photoshop.LayerText
	case "SOLIDFILL":
		return photoshop.LayerSolidFill
	}
	return photoshop.LayerNormal
}
