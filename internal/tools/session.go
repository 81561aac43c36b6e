package tools

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"goa.design/clue/log"

	imgutil "github.com/ironsheep/photoshop-mcp/internal/imaging"
	"github.com/ironsheep/photoshop-mcp/internal/ocr"
	"github.com/ironsheep/photoshop-mcp/internal/photoshop"
)

func sessionTools(backend string) []Tool {
	return []Tool{
		{
			Name:        "get_session_info",
			Description: "Report the Photoshop version, the open documents and the active document.",
			ReadOnly:    true,
			Handler:     handle(struct{}{}, sessionInfo(backend)),
		},
		{
			Name:        "get_active_document_info",
			Description: "Report the properties and layers of the active document.",
			ReadOnly:    true,
			Handler:     withDocument(struct{}{}, activeDocumentInfo),
		},
		{
			Name:        "get_selection_info",
			Description: "Report the bounds of the selection in the active document.",
			ReadOnly:    true,
			Handler:     withDocument(struct{}{}, selectionInfo),
		},
		{
			Name:        "get_document_preview",
			Description: "Render the active document to a PNG thumbnail no larger than max_size on either side.",
			InputSchema: object(map[string]any{
				"max_size":     intRange("Largest thumbnail width or height in pixels", 512, 16, 4096),
				"grid_spacing": intRange("Draw a coordinate grid every N document pixels, 0 for none", 0, 0, 100000),
				"grid_labels":  boolean("Label grid intersections with their x,y document coordinates", true),
				"grid_color":   hex("Grid line hex color, semi-transparent red by default"),
			}),
			ReadOnly: true,
			Handler:  withDocument(previewArgs{MaxSize: 512, GridLabels: true}, documentPreview),
		},
		{
			Name:        "read_document_text",
			Description: "Recognize the text in the composite of the active document with Tesseract OCR.",
			InputSchema: object(map[string]any{
				"language": strDefault(`Tesseract language code, e.g. "eng" or "eng+deu"`, "eng"),
				"region": object(map[string]any{
					"left":   integer("Left edge in pixels", nil),
					"top":    integer("Top edge in pixels", nil),
					"right":  integer("Right edge in pixels", nil),
					"bottom": integer("Bottom edge in pixels", nil),
				}, "left", "top", "right", "bottom"),
				"min_confidence": fraction("Drop words recognized with lower confidence (0-1)", 0),
			}),
			ReadOnly: true,
			Handler:  withDocument(ocrArgs{Language: "eng"}, readDocumentText),
		},
	}
}

// identified is implemented by document handles that carry a host id.
type identified interface {
	ID() int
}

func sameDocument(a, b photoshop.Document) bool {
	ia, ok1 := a.(identified)
	ib, ok2 := b.(identified)
	if ok1 && ok2 {
		return ia.ID() == ib.ID()
	}
	return a == b
}

type documentSummary struct {
	Name       string              `json:"name"`
	Width      int                 `json:"width"`
	Height     int                 `json:"height"`
	Resolution float64             `json:"resolution"`
	Mode       photoshop.ColorMode `json:"mode"`
	IsActive   bool                `json:"is_active"`
}

func sessionInfo(backend string) func(context.Context, photoshop.Application, struct{}) Result {
	return func(ctx context.Context, app photoshop.Application, _ struct{}) Result {
		version, err := app.Version(ctx)
		if err != nil {
			return failed("getting session info", err).With(Fields{"is_running": false, "backend": backend})
		}
		docs, err := app.Documents(ctx)
		if err != nil {
			return failed("getting session info", err).With(Fields{"is_running": true, "backend": backend})
		}
		active, err := app.ActiveDocument(ctx)
		if err != nil && !errors.Is(err, photoshop.ErrNoActiveDocument) {
			return failed("getting session info", err).With(Fields{"is_running": true, "backend": backend})
		}

		summaries := make([]documentSummary, 0, len(docs))
		var activeName any
		for _, d := range docs {
			info, err := d.Info(ctx)
			if err != nil {
				return failed("getting session info", err).With(Fields{"is_running": true, "backend": backend})
			}
			isActive := active != nil && sameDocument(d, active)
			if isActive {
				activeName = info.Name
			}
			summaries = append(summaries, documentSummary{
				Name:       info.Name,
				Width:      info.Width,
				Height:     info.Height,
				Resolution: info.Resolution,
				Mode:       info.Mode,
				IsActive:   isActive,
			})
		}
		return OK(Fields{
			"is_running":          true,
			"version":             version,
			"backend":             backend,
			"has_active_document": active != nil,
			"document_count":      len(docs),
			"documents":           summaries,
			"active_document":     activeName,
		})
	}
}

func activeDocumentInfo(ctx context.Context, doc photoshop.Document, _ struct{}) Result {
	info, err := doc.Info(ctx)
	if err != nil {
		return failed("getting document info", err)
	}
	layers, err := doc.Layers(ctx)
	if err != nil {
		return failed("getting document info", err)
	}
	return OK(Fields{
		"name":             info.Name,
		"width":            info.Width,
		"height":           info.Height,
		"resolution":       info.Resolution,
		"mode":             info.Mode,
		"bits_per_channel": info.BitsPerChannel,
		"layer_count":      info.LayerCount,
		"layers":           layers,
		"path":             info.Path,
		"saved":            info.Saved,
	})
}

func selectionInfo(ctx context.Context, doc photoshop.Document, _ struct{}) Result {
	sel, err := doc.Selection(ctx)
	if err != nil {
		return failed("getting selection info", err)
	}
	if !sel.HasSelection || sel.Bounds == nil {
		return OK(Fields{"has_selection": false})
	}
	return OK(Fields{
		"has_selection": true,
		"bounds":        sel.Bounds,
		"width":         sel.Bounds.Width(),
		"height":        sel.Bounds.Height(),
	})
}

// renderComposite saves a PNG copy of doc into a temporary directory and
// decodes it. Both backends produce the composite this way.
func renderComposite(ctx context.Context, doc photoshop.Document) (image.Image, error) {
	dir, err := os.MkdirTemp("", "photoshop-mcp-composite-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "composite.png")
	if err := doc.SaveAs(ctx, path, photoshop.PNGOptions{Compression: 1}, true); err != nil {
		return nil, fmt.Errorf("failed to render composite: %w", err)
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode composite: %w", err)
	}
	return img, nil
}

type previewArgs struct {
	MaxSize     int    `json:"max_size"`
	GridSpacing int    `json:"grid_spacing"`
	GridLabels  bool   `json:"grid_labels"`
	GridColor   string `json:"grid_color"`
}

func (a previewArgs) grid() (*imgutil.Grid, error) {
	if a.GridSpacing <= 0 {
		return nil, nil
	}
	g := &imgutil.Grid{Spacing: a.GridSpacing, Labels: a.GridLabels, Color: imgutil.DefaultGridColor}
	if a.GridColor != "" {
		c, err := imgutil.ParseHexColor(a.GridColor)
		if err != nil {
			return nil, err
		}
		g.Color = c
	}
	return g, nil
}

func documentPreview(ctx context.Context, doc photoshop.Document, a previewArgs) Result {
	grid, err := a.grid()
	if err != nil {
		return Fail(err)
	}
	img, err := renderComposite(ctx, doc)
	if err != nil {
		return failed("rendering preview", err)
	}
	p, err := imgutil.Preview(img, a.MaxSize, grid)
	if err != nil {
		return failed("rendering preview", err)
	}
	log.Infof(ctx, "preview %dx%d of %dx%d composite", p.Width, p.Height, p.OriginalWidth, p.OriginalHeight)
	return OK(Fields{
		"width":           p.Width,
		"height":          p.Height,
		"original_width":  p.OriginalWidth,
		"original_height": p.OriginalHeight,
		"image_base64":    p.ImageBase64,
		"mime_type":       p.MimeType,
	}).With(gridFields(p.GridSpacing))
}

func gridFields(spacing int) Fields {
	if spacing == 0 {
		return nil
	}
	return Fields{"grid_spacing": spacing}
}

type ocrArgs struct {
	Language      string            `json:"language"`
	Region        *photoshop.Bounds `json:"region"`
	MinConfidence float64           `json:"min_confidence"`
}

func readDocumentText(ctx context.Context, doc photoshop.Document, a ocrArgs) Result {
	if !ocr.Available() {
		return Fail(ocr.ErrUnavailable)
	}
	if a.Region != nil && a.Region.Empty() {
		return Failf("Invalid OCR region: left must be less than right and top less than bottom")
	}
	img, err := renderComposite(ctx, doc)
	if err != nil {
		return failed("reading document text", err)
	}

	var offset image.Point
	if a.Region != nil {
		r := image.Rect(a.Region.Left, a.Region.Top, a.Region.Right, a.Region.Bottom).Intersect(img.Bounds())
		if r.Empty() {
			return Failf("OCR region [%d, %d, %d, %d] is outside the %dx%d document",
				a.Region.Left, a.Region.Top, a.Region.Right, a.Region.Bottom, img.Bounds().Dx(), img.Bounds().Dy())
		}
		img = imaging.Crop(img, r)
		offset = r.Min
	}

	log.Infof(ctx, "running OCR (%s) on %dx%d image", a.Language, img.Bounds().Dx(), img.Bounds().Dy())
	res, err := ocr.Recognize(img, a.Language)
	if err != nil {
		return failed("reading document text", err)
	}
	res.Translate(offset.X, offset.Y)
	res.Filter(a.MinConfidence)

	f := Fields{
		"language":   a.Language,
		"full_text":  res.FullText,
		"regions":    res.Regions,
		"word_count": len(res.Regions),
	}
	if a.Region != nil {
		f["region"] = a.Region
	}
	return OK(f)
}
