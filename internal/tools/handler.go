package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"

	"goa.design/clue/log"

	imgutil "github.com/ironsheep/photoshop-mcp/internal/imaging"
	"github.com/ironsheep/photoshop-mcp/internal/photoshop"
)

// handle decodes arguments into a copy of defaults, so fields absent from
// the call keep their default values.
func handle[A any](defaults A, fn func(ctx context.Context, app photoshop.Application, a A) Result) Handler {
	return func(ctx context.Context, app photoshop.Application, raw json.RawMessage) Result {
		a := defaults
		if err := json.Unmarshal(raw, &a); err != nil {
			return Failf("invalid arguments: %v", err)
		}
		return fn(ctx, app, a)
	}
}

// withDocument is handle for tools that operate on the active document.
// Without one the call fails with "No active document" before anything
// else happens.
func withDocument[A any](defaults A, fn func(ctx context.Context, doc photoshop.Document, a A) Result) Handler {
	return handle(defaults, func(ctx context.Context, app photoshop.Application, a A) Result {
		doc, err := app.ActiveDocument(ctx)
		if err != nil {
			return Fail(err)
		}
		if doc == nil {
			return Fail(photoshop.ErrNoActiveDocument)
		}
		return fn(ctx, doc, a)
	})
}

// failed wraps err with what the tool was doing.
func failed(what string, err error) Result {
	r := Fail(err)
	if !errors.Is(err, photoshop.ErrNoActiveDocument) {
		r.Detail = fmt.Sprintf("Error %s: %+v", what, err)
	}
	return r
}

// fileFields stats a file written by a tool. A file that cannot be
// inspected does not fail the call; the result carries a warning instead.
func fileFields(ctx context.Context, path string) Fields {
	info, err := imgutil.StatFile(path)
	if err != nil {
		log.Warn(ctx, log.KV{K: "msg", V: "written file not found"}, log.KV{K: "path", V: path}, log.KV{K: "error", V: err.Error()})
		return Fields{"warning": fmt.Sprintf("file was saved but could not be inspected: %v", err)}
	}
	return Fields{
		"file_size_bytes": info.SizeBytes,
		"file_size_kb":    info.SizeKB,
		"detected_format": info.Format,
	}
}

// size returns the current pixel dimensions of doc.
func size(ctx context.Context, doc photoshop.Document) (int, int, error) {
	info, err := doc.Info(ctx)
	if err != nil {
		return 0, 0, err
	}
	return info.Width, info.Height, nil
}

// rgbArgs are the color_r/g/b components shared by the layer tools, with an
// optional hex override.
type rgbArgs struct {
	R   int    `json:"color_r"`
	G   int    `json:"color_g"`
	B   int    `json:"color_b"`
	Hex string `json:"color"`
}

func (a rgbArgs) color() (color.RGBA, error) {
	if a.Hex != "" {
		return imgutil.ParseHexColor(a.Hex)
	}
	return color.RGBA{
		R: imgutil.ClampByte(a.R),
		G: imgutil.ClampByte(a.G),
		B: imgutil.ClampByte(a.B),
		A: 255,
	}, nil
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
