package tools

import (
	"context"

	"goa.design/clue/log"

	"github.com/ironsheep/photoshop-mcp/internal/photoshop"
)

func documentTools() []Tool {
	return []Tool{
		{
			Name:        "create_document",
			Description: "Create a new document in Photoshop and make it the active document.",
			InputSchema: object(map[string]any{
				"width":      positive("Width in pixels", 1000),
				"height":     positive("Height in pixels", 1000),
				"name":       strDefault("Document name", "Untitled"),
				"resolution": positiveNumber("Resolution in pixels per inch", 72),
				"mode":       enum("Color mode", "rgb", []string{"rgb", "cmyk", "grayscale", "gray", "lab", "bitmap"}),
			}),
			Handler: handle(createDocumentArgs{Width: 1000, Height: 1000, Name: "Untitled", Resolution: 72, Mode: "rgb"}, createDocument),
		},
		{
			Name:        "open_document",
			Description: "Open an existing image or PSD file and make it the active document.",
			InputSchema: object(map[string]any{
				"file_path": str("Absolute path to the file to open"),
			}, "file_path"),
			Handler: handle(openDocumentArgs{}, openDocument),
		},
		{
			Name:        "save_document",
			Description: "Save a copy of the active document. The document stays associated with its current file.",
			InputSchema: object(map[string]any{
				"file_path": str("Absolute path of the file to write"),
				"format":    enum("File format", "psd", []string{"psd", "jpg", "jpeg", "png"}),
			}, "file_path"),
			Handler: withDocument(saveDocumentArgs{Format: "psd"}, saveDocument),
		},
		{
			Name:        "close_document",
			Description: "Close the active document, optionally saving it to its existing file first.",
			InputSchema: object(map[string]any{
				"save": boolean("Save changes before closing", false),
			}),
			Destructive: true,
			Handler:     withDocument(closeDocumentArgs{}, closeDocument),
		},
	}
}

type createDocumentArgs struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Name       string  `json:"name"`
	Resolution float64 `json:"resolution"`
	Mode       string  `json:"mode"`
}

func createDocument(ctx context.Context, app photoshop.Application, a createDocumentArgs) Result {
	mode, err := photoshop.ParseColorMode(a.Mode)
	if err != nil {
		return Fail(err)
	}
	log.Infof(ctx, "creating document %q %dx%d at %v ppi in %s", a.Name, a.Width, a.Height, a.Resolution, mode)

	doc, err := app.CreateDocument(ctx, photoshop.NewDocumentOptions{
		Name:       a.Name,
		Width:      a.Width,
		Height:     a.Height,
		Resolution: a.Resolution,
		Mode:       mode,
	})
	if err != nil {
		return failed("creating document", err)
	}
	info, err := doc.Info(ctx)
	if err != nil {
		return failed("creating document", err)
	}
	return OK(Fields{
		"document_name": info.Name,
		"width":         info.Width,
		"height":        info.Height,
		"resolution":    info.Resolution,
		"mode":          info.Mode,
	})
}

type openDocumentArgs struct {
	FilePath string `json:"file_path"`
}

func openDocument(ctx context.Context, app photoshop.Application, a openDocumentArgs) Result {
	log.Infof(ctx, "opening %s", a.FilePath)
	doc, err := app.OpenDocument(ctx, a.FilePath)
	if err != nil {
		return failed("opening document", err)
	}
	info, err := doc.Info(ctx)
	if err != nil {
		return failed("opening document", err)
	}
	return OK(Fields{
		"document_name": info.Name,
		"width":         info.Width,
		"height":        info.Height,
		"resolution":    info.Resolution,
		"mode":          info.Mode,
		"file_path":     a.FilePath,
	})
}

type saveDocumentArgs struct {
	FilePath string `json:"file_path"`
	Format   string `json:"format"`
}

func saveDocument(ctx context.Context, doc photoshop.Document, a saveDocumentArgs) Result {
	format, err := photoshop.ParseFormat(a.Format)
	if err != nil {
		return Fail(err)
	}
	var opts photoshop.SaveOptions
	switch format {
	case photoshop.FormatJPEG:
		opts = photoshop.JPEGOptions{Quality: 10}
	case photoshop.FormatPNG:
		opts = photoshop.PNGOptions{}
	case photoshop.FormatPSD:
		opts = photoshop.PSDOptions{}
	default:
		return Failf("unsupported format for save_document: %s (want psd, jpg or png)", a.Format)
	}

	log.Infof(ctx, "saving document as %s to %s", format, a.FilePath)
	if err := doc.SaveAs(ctx, a.FilePath, opts, true); err != nil {
		return failed("saving document", err)
	}
	return OK(Fields{"file_path": a.FilePath, "format": format}).With(fileFields(ctx, a.FilePath))
}

type closeDocumentArgs struct {
	Save bool `json:"save"`
}

func closeDocument(ctx context.Context, doc photoshop.Document, a closeDocumentArgs) Result {
	info, err := doc.Info(ctx)
	if err != nil {
		return failed("closing document", err)
	}
	log.Infof(ctx, "closing %s (save=%v)", info.Name, a.Save)
	if err := doc.Close(ctx, a.Save); err != nil {
		return failed("closing document", err)
	}
	return OK(Fields{"document_name": info.Name, "saved": a.Save})
}
