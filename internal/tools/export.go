package tools

import (
	"context"
	"fmt"
	"strings"

	"goa.design/clue/log"

	"github.com/ironsheep/photoshop-mcp/internal/photoshop"
)

var exportFormats = []string{"jpg", "jpeg", "png", "psd", "tif", "tiff", "gif", "bmp"}

func exportTools() []Tool {
	return []Tool{
		{
			Name:        "export_image",
			Description: "Export a copy of the active document in the given format.",
			InputSchema: object(map[string]any{
				"file_path": str("Absolute path of the file to write"),
				"format":    enum("Export format", "jpg", exportFormats),
				"quality":   intRange("Quality: 1-12 for JPG, PNG compression is 9 minus quality", 10, 0, 12),
				"optimize":  boolean("Optimized JPG scans, LZW compression for TIFF", true),
			}, "file_path"),
			Handler: withDocument(exportArgs{Format: "jpg", Quality: 10, Optimize: true}, exportImage),
		},
		{
			Name:        "batch_export",
			Description: "Export the active document to several formats at once. Each file is base_path plus the format extension.",
			InputSchema: object(map[string]any{
				"base_path": str("Absolute file path without extension"),
				"formats": map[string]any{
					"type":        "array",
					"description": `Formats to export, e.g. ["jpg", "png", "psd"]`,
					"items":       map[string]any{"type": "string", "enum": exportFormats},
					"minItems":    1,
				},
				"quality":  intRange("Quality: 1-12 for JPG, PNG compression is 9 minus quality", 10, 0, 12),
				"optimize": boolean("Optimized JPG scans, LZW compression for TIFF", true),
			}, "base_path", "formats"),
			Handler: withDocument(batchExportArgs{Quality: 10, Optimize: true}, batchExport),
		},
	}
}

// exportOptions picks the save options export_image uses for format.
func exportOptions(format photoshop.Format, quality int, optimize bool) (photoshop.SaveOptions, error) {
	switch format {
	case photoshop.FormatJPEG:
		scan := photoshop.JPEGStandard
		if optimize {
			scan = photoshop.JPEGOptimized
		}
		return photoshop.JPEGOptions{Quality: clampInt(quality, 1, 12), Scan: scan}, nil
	case photoshop.FormatPNG:
		return photoshop.PNGOptions{Compression: clampInt(9-quality, 0, 9)}, nil
	case photoshop.FormatPSD:
		return photoshop.PSDOptions{EmbedColorProfile: true}, nil
	case photoshop.FormatTIFF:
		enc := photoshop.TIFFNone
		if optimize {
			enc = photoshop.TIFFLZW
		}
		return photoshop.TIFFOptions{Compression: enc}, nil
	case photoshop.FormatGIF:
		return photoshop.GIFOptions{Colors: 256, Transparency: true}, nil
	case photoshop.FormatBMP:
		return photoshop.BMPOptions{}, nil
	}
	return nil, fmt.Errorf("Unsupported format: %s (supported: jpg, png, psd, tiff, gif, bmp)", format)
}

// exportTo writes a copy of doc to path.
func exportTo(ctx context.Context, doc photoshop.Document, path, format string, quality int, optimize bool) (photoshop.Format, error) {
	f, err := photoshop.ParseFormat(format)
	if err != nil {
		return "", err
	}
	opts, err := exportOptions(f, quality, optimize)
	if err != nil {
		return "", err
	}
	if f == photoshop.FormatGIF {
		return f, saveIndexed(ctx, doc, path, opts)
	}
	return f, doc.SaveAs(ctx, path, opts, true)
}

// saveIndexed converts doc to indexed color for a GIF save and converts an
// RGB document back afterwards.
func saveIndexed(ctx context.Context, doc photoshop.Document, path string, opts photoshop.SaveOptions) error {
	info, err := doc.Info(ctx)
	if err != nil {
		return err
	}
	if info.Mode != photoshop.ModeIndexed {
		log.Infof(ctx, "converting from %s to indexed color for GIF", info.Mode)
		if err := doc.ChangeMode(ctx, photoshop.ModeIndexed); err != nil {
			return fmt.Errorf("converting to indexed color: %w", err)
		}
	}
	saveErr := doc.SaveAs(ctx, path, opts, true)
	if info.Mode == photoshop.ModeRGB {
		if err := doc.ChangeMode(ctx, photoshop.ModeRGB); err != nil && saveErr == nil {
			return fmt.Errorf("restoring RGB mode: %w", err)
		}
	}
	return saveErr
}

type exportArgs struct {
	FilePath string `json:"file_path"`
	Format   string `json:"format"`
	Quality  int    `json:"quality"`
	Optimize bool   `json:"optimize"`
}

func exportImage(ctx context.Context, doc photoshop.Document, a exportArgs) Result {
	log.Infof(ctx, "exporting image: format=%s, quality=%d, optimize=%v", a.Format, a.Quality, a.Optimize)
	format, err := exportTo(ctx, doc, a.FilePath, a.Format, a.Quality, a.Optimize)
	if err != nil {
		return failed("exporting image", err)
	}
	return OK(Fields{
		"file_path": a.FilePath,
		"format":    format,
		"quality":   a.Quality,
		"optimize":  a.Optimize,
	}).With(fileFields(ctx, a.FilePath))
}

type batchExportArgs struct {
	BasePath string   `json:"base_path"`
	Formats  []string `json:"formats"`
	Quality  int      `json:"quality"`
	Optimize bool     `json:"optimize"`
}

// exportEntry reports one format of a batch export.
type exportEntry struct {
	Format  string `json:"format"`
	Path    string `json:"path"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func batchExport(ctx context.Context, doc photoshop.Document, a batchExportArgs) Result {
	log.Infof(ctx, "batch exporting to %d formats: %s", len(a.Formats), strings.Join(a.Formats, ", "))

	files := make([]exportEntry, 0, len(a.Formats))
	var errs []exportEntry
	for _, format := range a.Formats {
		path := a.BasePath + "." + strings.ToLower(format)
		entry := exportEntry{Format: format, Path: path, Success: true}
		if _, err := exportTo(ctx, doc, path, format, a.Quality, a.Optimize); err != nil {
			log.Warn(ctx, log.KV{K: "msg", V: "export failed"}, log.KV{K: "format", V: format}, log.KV{K: "error", V: err.Error()})
			entry.Success = false
			entry.Error = err.Error()
			errs = append(errs, entry)
		}
		files = append(files, entry)
	}

	fields := Fields{
		"exported_count": len(files) - len(errs),
		"total_count":    len(a.Formats),
		"files":          files,
		"errors":         errs,
	}
	if len(errs) > 0 {
		return Failf("%d of %d formats failed to export", len(errs), len(a.Formats)).With(fields)
	}
	return OK(fields)
}
