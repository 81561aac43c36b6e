package tools

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"goa.design/clue/log"

	"github.com/ironsheep/photoshop-mcp/internal/photoshop"
)

func convertTools() []Tool {
	return []Tool{
		{
			Name:        "convert_to_jpg",
			Description: "Save a JPG copy of the active document. CMYK, Lab and grayscale documents are converted to RGB first.",
			InputSchema: object(map[string]any{
				"output_path": str("Absolute path of the JPG file"),
				"quality":     intRange("JPG quality, 12 is best", 10, 1, 12),
				"progressive": boolean("Progressive scans", false),
				"optimize":    boolean("Optimized baseline", true),
			}, "output_path"),
			Handler: withDocument(jpgArgs{Quality: 10, Optimize: true}, convertToJPG),
		},
		{
			Name:        "convert_to_png",
			Description: "Save a PNG copy of the active document. CMYK and Lab documents are converted to RGB first.",
			InputSchema: object(map[string]any{
				"output_path": str("Absolute path of the PNG file"),
				"compression": intRange("Compression level, 9 is smallest", 6, 0, 9),
				"interlaced":  boolean("Interlaced PNG", false),
			}, "output_path"),
			Handler: withDocument(pngArgs{Compression: 6}, convertToPNG),
		},
		{
			Name: "convert_to_webp",
			Description: "Save a WebP copy of the active document. When WebP cannot be written the copy is " +
				"saved as PNG next to the requested path and the result reports the fallback.",
			InputSchema: object(map[string]any{
				"output_path": str("Absolute path of the WebP file"),
				"quality":     intRange("Lossy quality, ignored when lossless", 80, 0, 100),
				"lossless":    boolean("Lossless encoding", false),
			}, "output_path"),
			Handler: withDocument(webpArgs{Quality: 80}, convertToWebP),
		},
		{
			Name:        "convert_to_gif",
			Description: "Save an indexed-color GIF copy of the active document.",
			InputSchema: object(map[string]any{
				"output_path":  str("Absolute path of the GIF file"),
				"colors":       intRange("Palette size", 256, 2, 256),
				"transparency": boolean("Preserve transparency", true),
			}, "output_path"),
			Handler: withDocument(gifArgs{Colors: 256, Transparency: true}, convertToGIF),
		},
		{
			Name:        "convert_to_tiff",
			Description: "Save a TIFF copy of the active document.",
			InputSchema: object(map[string]any{
				"output_path": str("Absolute path of the TIFF file"),
				"compression": enum("Compression", string(photoshop.TIFFLZW), photoshop.TIFFEncodingNames),
				"quality":     intRange("JPEG quality (1-12) when compression is jpeg", 10, 1, 12),
			}, "output_path"),
			Handler: withDocument(tiffArgs{Compression: string(photoshop.TIFFLZW), Quality: 10}, convertToTIFF),
		},
		{
			Name:        "convert_to_psd",
			Description: "Save a PSD copy of the active document.",
			InputSchema: object(map[string]any{
				"output_path":            str("Absolute path of the PSD file"),
				"maximize_compatibility": boolean("Include a composite for older readers", true),
			}, "output_path"),
			Handler: withDocument(psdArgs{MaximizeCompatibility: true}, convertToPSD),
		},
		{
			Name:        "convert_for_web",
			Description: "Downscale the active document to max_dimension, convert it to RGB and save it for the web.",
			InputSchema: object(map[string]any{
				"output_path":   str("Absolute path of the output file"),
				"format":        enum("Output format", "jpg", []string{"jpg", "jpeg", "png", "webp"}),
				"max_dimension": positive("Largest allowed width or height in pixels", 2048),
				"quality":       intRange("Quality (1-100)", 85, 1, 100),
			}, "output_path"),
			Handler: withDocument(webArgs{Format: "jpg", MaxDimension: 2048, Quality: 85}, convertForWeb),
		},
		{
			Name:        "convert_for_print",
			Description: "Set the print resolution, convert the color mode and save an LZW-compressed TIFF.",
			InputSchema: object(map[string]any{
				"output_path": str("Absolute path of the TIFF file"),
				"color_mode":  enum("Target color mode", "cmyk", []string{"cmyk", "rgb"}),
				"resolution":  positive("Resolution in pixels per inch", 300),
			}, "output_path"),
			Handler: withDocument(printArgs{ColorMode: "cmyk", Resolution: 300}, convertForPrint),
		},
		{
			Name:        "convert_for_social_media",
			Description: "Resize the active document to a social media format and save it as JPG.",
			InputSchema: object(map[string]any{
				"output_path": str("Absolute path of the JPG file"),
				"platform":    enum("Platform", "instagram", socialPlatforms),
				"post_type":   enum("Post type", "square", socialPostTypes),
				"quality":     intRange("Quality (1-100)", 90, 1, 100),
			}, "output_path"),
			Handler: withDocument(socialArgs{Platform: "instagram", PostType: "square", Quality: 90}, convertForSocialMedia),
		},
	}
}

// ensureRGB converts doc to RGB when its mode is one of from. It returns
// the mode converted from, or "".
func ensureRGB(ctx context.Context, doc photoshop.Document, from ...photoshop.ColorMode) (photoshop.ColorMode, error) {
	info, err := doc.Info(ctx)
	if err != nil {
		return "", err
	}
	if info.Mode == photoshop.ModeRGB {
		return "", nil
	}
	if len(from) > 0 && !slices.Contains(from, info.Mode) {
		return "", nil
	}
	log.Infof(ctx, "converting from %s to RGB", info.Mode)
	if err := doc.ChangeMode(ctx, photoshop.ModeRGB); err != nil {
		return "", fmt.Errorf("converting %s to RGB: %w", info.Mode, err)
	}
	return info.Mode, nil
}

// saved builds the result of a conversion that wrote path.
func saved(ctx context.Context, path string, format string, f Fields) Result {
	out := Fields{"output_path": path, "format": format}
	return OK(out).With(f).With(fileFields(ctx, path))
}

func withConverted(f Fields, from photoshop.ColorMode) Fields {
	if from != "" {
		f["converted_from"] = from
	}
	return f
}

type jpgArgs struct {
	OutputPath  string `json:"output_path"`
	Quality     int    `json:"quality"`
	Progressive bool   `json:"progressive"`
	Optimize    bool   `json:"optimize"`
}

func jpegScan(progressive, optimize bool) photoshop.JPEGFormat {
	switch {
	case progressive:
		return photoshop.JPEGProgressive
	case optimize:
		return photoshop.JPEGOptimized
	}
	return photoshop.JPEGStandard
}

func convertToJPG(ctx context.Context, doc photoshop.Document, a jpgArgs) Result {
	log.Infof(ctx, "converting to JPG: quality=%d, progressive=%v, optimize=%v", a.Quality, a.Progressive, a.Optimize)
	from, err := ensureRGB(ctx, doc, photoshop.ModeCMYK, photoshop.ModeLab, photoshop.ModeGrayscale)
	if err != nil {
		return failed("converting to JPG", err)
	}
	opts := photoshop.JPEGOptions{Quality: clampInt(a.Quality, 1, 12), Scan: jpegScan(a.Progressive, a.Optimize)}
	if err := doc.SaveAs(ctx, a.OutputPath, opts, true); err != nil {
		return failed("converting to JPG", err)
	}
	return saved(ctx, a.OutputPath, "jpg", withConverted(Fields{
		"quality":     a.Quality,
		"progressive": a.Progressive,
		"optimize":    a.Optimize,
	}, from))
}

type pngArgs struct {
	OutputPath  string `json:"output_path"`
	Compression int    `json:"compression"`
	Interlaced  bool   `json:"interlaced"`
}

func convertToPNG(ctx context.Context, doc photoshop.Document, a pngArgs) Result {
	log.Infof(ctx, "converting to PNG: compression=%d, interlaced=%v", a.Compression, a.Interlaced)
	from, err := ensureRGB(ctx, doc, photoshop.ModeCMYK, photoshop.ModeLab)
	if err != nil {
		return failed("converting to PNG", err)
	}
	opts := photoshop.PNGOptions{Compression: clampInt(a.Compression, 0, 9), Interlaced: a.Interlaced}
	if err := doc.SaveAs(ctx, a.OutputPath, opts, true); err != nil {
		return failed("converting to PNG", err)
	}
	return saved(ctx, a.OutputPath, "png", withConverted(Fields{
		"compression": a.Compression,
		"interlaced":  a.Interlaced,
	}, from))
}

type webpArgs struct {
	OutputPath string `json:"output_path"`
	Quality    int    `json:"quality"`
	Lossless   bool   `json:"lossless"`
}

// pngFallbackPath replaces the extension of path with .png.
func pngFallbackPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
}

func convertToWebP(ctx context.Context, doc photoshop.Document, a webpArgs) Result {
	log.Infof(ctx, "converting to WebP: quality=%d, lossless=%v", a.Quality, a.Lossless)
	return saveWebP(ctx, doc, a.OutputPath, a.Quality, a.Lossless)
}

func saveWebP(ctx context.Context, doc photoshop.Document, path string, quality int, lossless bool) Result {
	opts := photoshop.WebPOptions{Quality: clampInt(quality, 0, 100), Lossless: lossless}
	err := doc.SaveAs(ctx, path, opts, true)
	if err == nil {
		return saved(ctx, path, "webp", Fields{"quality": quality, "lossless": lossless})
	}
	if !errors.Is(err, photoshop.ErrFormatUnsupported) {
		return failed("converting to WebP", err)
	}

	fallback := pngFallbackPath(path)
	log.Warn(ctx, log.KV{K: "msg", V: "WebP not supported, exporting as PNG instead"}, log.KV{K: "path", V: fallback})
	if err := doc.SaveAs(ctx, fallback, photoshop.PNGOptions{Compression: 6}, true); err != nil {
		return failed("converting to WebP", err)
	}
	return saved(ctx, fallback, "png", Fields{
		"requested_path": path,
		"fallback":       true,
		"warning":        "WebP is not supported by this Photoshop backend; exported as PNG instead",
		"quality":        quality,
		"lossless":       lossless,
	})
}

type gifArgs struct {
	OutputPath   string `json:"output_path"`
	Colors       int    `json:"colors"`
	Transparency bool   `json:"transparency"`
}

func convertToGIF(ctx context.Context, doc photoshop.Document, a gifArgs) Result {
	log.Infof(ctx, "converting to GIF: colors=%d, transparency=%v", a.Colors, a.Transparency)
	opts := photoshop.GIFOptions{Colors: clampInt(a.Colors, 2, 256), Transparency: a.Transparency}
	if err := saveIndexed(ctx, doc, a.OutputPath, opts); err != nil {
		return failed("converting to GIF", err)
	}
	return saved(ctx, a.OutputPath, "gif", Fields{"colors": a.Colors, "transparency": a.Transparency})
}

type tiffArgs struct {
	OutputPath  string `json:"output_path"`
	Compression string `json:"compression"`
	Quality     int    `json:"quality"`
}

func convertToTIFF(ctx context.Context, doc photoshop.Document, a tiffArgs) Result {
	enc, err := photoshop.ParseTIFFEncoding(a.Compression)
	if err != nil {
		return Fail(err)
	}
	log.Infof(ctx, "converting to TIFF: compression=%s, quality=%d", enc, a.Quality)
	opts := photoshop.TIFFOptions{Compression: enc, JPEGQuality: clampInt(a.Quality, 1, 12), EmbedColorProfile: true}
	if err := doc.SaveAs(ctx, a.OutputPath, opts, true); err != nil {
		return failed("converting to TIFF", err)
	}
	return saved(ctx, a.OutputPath, "tiff", Fields{"compression": enc})
}

type psdArgs struct {
	OutputPath            string `json:"output_path"`
	MaximizeCompatibility bool   `json:"maximize_compatibility"`
}

func convertToPSD(ctx context.Context, doc photoshop.Document, a psdArgs) Result {
	log.Infof(ctx, "converting to PSD: maximize_compatibility=%v", a.MaximizeCompatibility)
	opts := photoshop.PSDOptions{MaximizeCompatibility: a.MaximizeCompatibility, EmbedColorProfile: true}
	if err := doc.SaveAs(ctx, a.OutputPath, opts, true); err != nil {
		return failed("converting to PSD", err)
	}
	return saved(ctx, a.OutputPath, "psd", Fields{"maximize_compatibility": a.MaximizeCompatibility})
}

type webArgs struct {
	OutputPath   string `json:"output_path"`
	Format       string `json:"format"`
	MaxDimension int    `json:"max_dimension"`
	Quality      int    `json:"quality"`
}

// webJPEGQuality maps 1-100 quality onto the 1-12 JPG scale.
func webJPEGQuality(q int) int {
	return clampInt(int(float64(q)/8.33), 1, 12)
}

// webPNGCompression maps 1-100 quality onto inverse PNG compression.
func webPNGCompression(q int) int {
	return clampInt((100-q)/11, 0, 9)
}

// fitWithin scales w x h down so neither side exceeds limit.
func fitWithin(w, h, limit int) (int, int, bool) {
	if w <= limit && h <= limit {
		return w, h, false
	}
	if w > h {
		return limit, max(1, h*limit/w), true
	}
	return max(1, w*limit/h), limit, true
}

func convertForWeb(ctx context.Context, doc photoshop.Document, a webArgs) Result {
	format, err := photoshop.ParseFormat(a.Format)
	if err != nil {
		return Fail(err)
	}
	switch format {
	case photoshop.FormatJPEG, photoshop.FormatPNG, photoshop.FormatWebP:
	default:
		r := Failf("Unsupported format for web: %s", a.Format)
		r.Detail = "Supported formats: jpg, png, webp"
		return r
	}
	log.Infof(ctx, "converting for web: format=%s, max_dimension=%d, quality=%d", format, a.MaxDimension, a.Quality)

	w, h, err := size(ctx, doc)
	if err != nil {
		return failed("converting for web", err)
	}
	nw, nh, resized := fitWithin(w, h, a.MaxDimension)
	if resized {
		log.Infof(ctx, "resizing from %dx%d to %dx%d", w, h, nw, nh)
		err := doc.ResizeImage(ctx, photoshop.ResizeOptions{
			Width: nw, Height: nh, Resolution: 72, Resample: photoshop.ResampleBicubicSharper,
		})
		if err != nil {
			return failed("converting for web", err)
		}
	}
	if _, err := ensureRGB(ctx, doc); err != nil {
		return failed("converting for web", err)
	}

	var res Result
	switch format {
	case photoshop.FormatJPEG:
		opts := photoshop.JPEGOptions{Quality: webJPEGQuality(a.Quality), Scan: photoshop.JPEGOptimized}
		if err := doc.SaveAs(ctx, a.OutputPath, opts, true); err != nil {
			return failed("converting for web", err)
		}
		res = saved(ctx, a.OutputPath, "jpg", nil)
	case photoshop.FormatPNG:
		opts := photoshop.PNGOptions{Compression: webPNGCompression(a.Quality)}
		if err := doc.SaveAs(ctx, a.OutputPath, opts, true); err != nil {
			return failed("converting for web", err)
		}
		res = saved(ctx, a.OutputPath, "png", nil)
	case photoshop.FormatWebP:
		res = saveWebP(ctx, doc, a.OutputPath, a.Quality, false)
		if !res.Success {
			return res
		}
	}

	fw, fh, err := size(ctx, doc)
	if err != nil {
		return failed("converting for web", err)
	}
	return res.With(Fields{
		"optimized_for":    "web",
		"resized":          resized,
		"final_dimensions": map[string]int{"width": fw, "height": fh},
		"quality":          a.Quality,
	})
}

type printArgs struct {
	OutputPath string `json:"output_path"`
	ColorMode  string `json:"color_mode"`
	Resolution int    `json:"resolution"`
}

func convertForPrint(ctx context.Context, doc photoshop.Document, a printArgs) Result {
	target, err := photoshop.ParseColorMode(a.ColorMode)
	if err != nil {
		return Fail(err)
	}
	if target != photoshop.ModeCMYK && target != photoshop.ModeRGB {
		return Failf("Unsupported print color mode: %s (want cmyk or rgb)", a.ColorMode)
	}
	log.Infof(ctx, "converting for print: color_mode=%s, resolution=%d", target, a.Resolution)

	info, err := doc.Info(ctx)
	if err != nil {
		return failed("converting for print", err)
	}
	if info.Resolution != float64(a.Resolution) {
		log.Infof(ctx, "changing resolution from %v to %d ppi", info.Resolution, a.Resolution)
		err := doc.ResizeImage(ctx, photoshop.ResizeOptions{
			Width: info.Width, Height: info.Height, Resolution: float64(a.Resolution),
		})
		if err != nil {
			return failed("converting for print", err)
		}
	}
	if info.Mode != target {
		log.Infof(ctx, "converting from %s to %s", info.Mode, target)
		if err := doc.ChangeMode(ctx, target); err != nil {
			return failed("converting for print", err)
		}
	}

	opts := photoshop.TIFFOptions{Compression: photoshop.TIFFLZW, EmbedColorProfile: true}
	if err := doc.SaveAs(ctx, a.OutputPath, opts, true); err != nil {
		return failed("converting for print", err)
	}
	return saved(ctx, a.OutputPath, "tiff", Fields{
		"optimized_for": "print",
		"color_mode":    strings.ToUpper(a.ColorMode),
		"resolution":    a.Resolution,
	})
}

var (
	socialPlatforms = []string{"instagram", "facebook", "twitter", "linkedin"}
	socialPostTypes = []string{"square", "landscape", "portrait", "story"}
)

// socialSizes maps platform and post type to pixel dimensions.
var socialSizes = map[string]map[string][2]int{
	"instagram": {
		"square":    {1080, 1080},
		"landscape": {1080, 566},
		"portrait":  {1080, 1350},
		"story":     {1080, 1920},
	},
	"facebook": {
		"square":    {1200, 1200},
		"landscape": {1200, 630},
		"portrait":  {1080, 1350},
		"story":     {1080, 1920},
	},
	"twitter": {
		"square":    {1200, 1200},
		"landscape": {1200, 675},
		"portrait":  {1080, 1350},
		"story":     {1080, 1920},
	},
	"linkedin": {
		"square":    {1200, 1200},
		"landscape": {1200, 627},
		"portrait":  {1080, 1350},
		"story":     {1080, 1920},
	},
}

type socialArgs struct {
	OutputPath string `json:"output_path"`
	Platform   string `json:"platform"`
	PostType   string `json:"post_type"`
	Quality    int    `json:"quality"`
}

func convertForSocialMedia(ctx context.Context, doc photoshop.Document, a socialArgs) Result {
	types, ok := socialSizes[strings.ToLower(a.Platform)]
	if !ok {
		r := Failf("Unsupported platform: %s", a.Platform)
		r.Detail = "Supported platforms: " + strings.Join(socialPlatforms, ", ")
		return r
	}
	dims, ok := types[strings.ToLower(a.PostType)]
	if !ok {
		r := Failf("Unsupported post type for %s: %s", a.Platform, a.PostType)
		r.Detail = "Supported types: " + strings.Join(socialPostTypes, ", ")
		return r
	}
	w, h := dims[0], dims[1]
	log.Infof(ctx, "resizing to %dx%d for %s %s", w, h, a.Platform, a.PostType)

	err := doc.ResizeImage(ctx, photoshop.ResizeOptions{
		Width: w, Height: h, Resolution: 72, Resample: photoshop.ResampleBicubicSharper,
	})
	if err != nil {
		return failed("converting for social media", err)
	}
	if _, err := ensureRGB(ctx, doc); err != nil {
		return failed("converting for social media", err)
	}
	opts := photoshop.JPEGOptions{Quality: webJPEGQuality(a.Quality), Scan: photoshop.JPEGOptimized}
	if err := doc.SaveAs(ctx, a.OutputPath, opts, true); err != nil {
		return failed("converting for social media", err)
	}
	return saved(ctx, a.OutputPath, "jpg", Fields{
		"optimized_for": a.Platform + " " + a.PostType,
		"platform":      a.Platform,
		"post_type":     a.PostType,
		"dimensions":    map[string]int{"width": w, "height": h},
		"quality":       a.Quality,
	})
}
