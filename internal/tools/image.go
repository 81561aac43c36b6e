package tools

import (
	"context"
	"math"
	"strings"

	"goa.design/clue/log"

	"github.com/ironsheep/photoshop-mcp/internal/photoshop"
)

func imageTools() []Tool {
	return []Tool{
		{
			Name: "resize_image",
			Description: "Resize the active document. Omit width or height to keep the aspect ratio, " +
				"omit both to change only the resolution.",
			InputSchema: object(map[string]any{
				"width":           positive("New width in pixels", nil),
				"height":          positive("New height in pixels", nil),
				"resolution":      positiveNumber("New resolution in pixels per inch", nil),
				"resample_method": enum("Resampling method", "bicubic", photoshop.ResampleMethodNames),
			}),
			Handler: withDocument(resizeArgs{ResampleMethod: "bicubic"}, resizeImage),
		},
		{
			Name:        "change_color_mode",
			Description: "Convert the active document to another color mode.",
			InputSchema: object(map[string]any{
				"mode": enum("Target color mode", "", photoshop.ColorModeNames),
			}, "mode"),
			Handler: withDocument(changeModeArgs{}, changeColorMode),
		},
		{
			Name:        "crop_image",
			Description: "Crop the active document to the given pixel bounds. right and bottom are exclusive.",
			InputSchema: object(map[string]any{
				"left":   integer("Left edge in pixels", nil),
				"top":    integer("Top edge in pixels", nil),
				"right":  integer("Right edge in pixels", nil),
				"bottom": integer("Bottom edge in pixels", nil),
			}, "left", "top", "right", "bottom"),
			Destructive: true,
			Handler:     withDocument(photoshop.Bounds{}, cropImage),
		},
		{
			Name:        "auto_trim",
			Description: "Trim transparent or solid-color pixels from the edges of the active document.",
			InputSchema: object(map[string]any{
				"trim_type": enum("What to trim", string(photoshop.TrimTransparent), photoshop.TrimTypeNames),
			}),
			Destructive: true,
			Handler:     withDocument(trimArgs{TrimType: string(photoshop.TrimTransparent)}, autoTrim),
		},
		{
			Name:        "rotate_image",
			Description: "Rotate the canvas of the active document. Positive angles rotate clockwise.",
			InputSchema: object(map[string]any{
				"angle": number("Rotation angle in degrees, e.g. 90, 180, 270 or -90", 90),
			}),
			Handler: withDocument(rotateArgs{Angle: 90}, rotateImage),
		},
		{
			Name:        "flip_image",
			Description: "Flip the canvas of the active document horizontally or vertically.",
			InputSchema: object(map[string]any{
				"direction": enum("Flip direction", string(photoshop.Horizontal), photoshop.DirectionNames),
			}),
			Handler: withDocument(flipArgs{Direction: string(photoshop.Horizontal)}, flipImage),
		},
		{
			Name:        "flatten_document",
			Description: "Flatten all layers of the active document, or merge only the visible ones.",
			InputSchema: object(map[string]any{
				"merge_visible_only": boolean("Merge only visible layers instead of flattening", false),
			}),
			Destructive: true,
			Handler:     withDocument(flattenArgs{}, flattenDocument),
		},
	}
}

type resizeArgs struct {
	Width          *int     `json:"width"`
	Height         *int     `json:"height"`
	Resolution     *float64 `json:"resolution"`
	ResampleMethod string   `json:"resample_method"`
}

// targetSize resolves the requested dimensions against the current ones.
// A single missing dimension follows the aspect ratio.
func (a resizeArgs) targetSize(w, h int) (int, int) {
	switch {
	case a.Width != nil && a.Height != nil:
		return *a.Width, *a.Height
	case a.Width != nil && w > 0:
		return *a.Width, max(1, int(math.Round(float64(h)*float64(*a.Width)/float64(w))))
	case a.Height != nil && h > 0:
		return max(1, int(math.Round(float64(w)*float64(*a.Height)/float64(h)))), *a.Height
	}
	return w, h
}

func resizeImage(ctx context.Context, doc photoshop.Document, a resizeArgs) Result {
	method, err := photoshop.ParseResampleMethod(a.ResampleMethod)
	if err != nil {
		return Fail(err)
	}
	before, err := doc.Info(ctx)
	if err != nil {
		return failed("resizing image", err)
	}
	w, h := a.targetSize(before.Width, before.Height)
	res := before.Resolution
	if a.Resolution != nil {
		res = *a.Resolution
	}

	log.Infof(ctx, "resizing %dx%d@%v -> %dx%d@%v (%s)", before.Width, before.Height, before.Resolution, w, h, res, method)
	err = doc.ResizeImage(ctx, photoshop.ResizeOptions{Width: w, Height: h, Resolution: res, Resample: method})
	if err != nil {
		return failed("resizing image", err)
	}
	after, err := doc.Info(ctx)
	if err != nil {
		return failed("resizing image", err)
	}
	return OK(Fields{
		"old_width":       before.Width,
		"old_height":      before.Height,
		"new_width":       after.Width,
		"new_height":      after.Height,
		"old_resolution":  before.Resolution,
		"new_resolution":  after.Resolution,
		"resample_method": method,
	})
}

type changeModeArgs struct {
	Mode string `json:"mode"`
}

func changeColorMode(ctx context.Context, doc photoshop.Document, a changeModeArgs) Result {
	mode, err := photoshop.ParseColorMode(a.Mode)
	if err != nil {
		r := Fail(err)
		r.Detail = "Valid modes are: " + strings.Join(photoshop.ColorModeNames, ", ")
		return r
	}
	before, err := doc.Info(ctx)
	if err != nil {
		return failed("changing color mode", err)
	}
	log.Infof(ctx, "changing color mode %s -> %s", before.Mode, mode)
	if err := doc.ChangeMode(ctx, mode); err != nil {
		return failed("changing color mode", err)
	}
	after, err := doc.Info(ctx)
	if err != nil {
		return failed("changing color mode", err)
	}
	return OK(Fields{"old_mode": before.Mode, "new_mode": after.Mode})
}

func cropImage(ctx context.Context, doc photoshop.Document, b photoshop.Bounds) Result {
	if b.Empty() {
		return Failf("Invalid crop bounds: left must be less than right and top less than bottom")
	}
	w, h, err := size(ctx, doc)
	if err != nil {
		return failed("cropping image", err)
	}
	log.Infof(ctx, "cropping to [%d, %d, %d, %d]", b.Left, b.Top, b.Right, b.Bottom)
	if err := doc.Crop(ctx, b); err != nil {
		return failed("cropping image", err)
	}
	nw, nh, err := size(ctx, doc)
	if err != nil {
		return failed("cropping image", err)
	}
	return OK(Fields{
		"old_width":   w,
		"old_height":  h,
		"new_width":   nw,
		"new_height":  nh,
		"crop_bounds": b,
	})
}

type trimArgs struct {
	TrimType string `json:"trim_type"`
}

func autoTrim(ctx context.Context, doc photoshop.Document, a trimArgs) Result {
	trim, err := photoshop.ParseTrimType(a.TrimType)
	if err != nil {
		return Fail(err)
	}
	w, h, err := size(ctx, doc)
	if err != nil {
		return failed("auto-trimming image", err)
	}
	log.Infof(ctx, "trimming %s pixels", trim)
	if err := doc.Trim(ctx, trim); err != nil {
		return failed("auto-trimming image", err)
	}
	nw, nh, err := size(ctx, doc)
	if err != nil {
		return failed("auto-trimming image", err)
	}
	return OK(Fields{
		"old_width":  w,
		"old_height": h,
		"new_width":  nw,
		"new_height": nh,
		"trim_type":  trim,
		"pixels_trimmed": map[string]int{
			"width":  w - nw,
			"height": h - nh,
		},
	})
}

type rotateArgs struct {
	Angle float64 `json:"angle"`
}

func rotateImage(ctx context.Context, doc photoshop.Document, a rotateArgs) Result {
	log.Infof(ctx, "rotating canvas %v degrees", a.Angle)
	if err := doc.RotateCanvas(ctx, a.Angle); err != nil {
		return failed("rotating image", err)
	}
	w, h, err := size(ctx, doc)
	if err != nil {
		return failed("rotating image", err)
	}
	return OK(Fields{"angle": a.Angle, "width": w, "height": h})
}

type flipArgs struct {
	Direction string `json:"direction"`
}

func flipImage(ctx context.Context, doc photoshop.Document, a flipArgs) Result {
	dir, err := photoshop.ParseDirection(a.Direction)
	if err != nil {
		return Fail(err)
	}
	log.Infof(ctx, "flipping canvas %s", dir)
	if err := doc.FlipCanvas(ctx, dir); err != nil {
		return failed("flipping image", err)
	}
	return OK(Fields{"direction": dir})
}

type flattenArgs struct {
	MergeVisibleOnly bool `json:"merge_visible_only"`
}

func flattenDocument(ctx context.Context, doc photoshop.Document, a flattenArgs) Result {
	before, err := doc.Layers(ctx)
	if err != nil {
		return failed("flattening document", err)
	}
	if a.MergeVisibleOnly {
		log.Infof(ctx, "merging visible layers")
		err = doc.MergeVisibleLayers(ctx)
	} else {
		log.Infof(ctx, "flattening %d layers", len(before))
		err = doc.Flatten(ctx)
	}
	if err != nil {
		return failed("flattening document", err)
	}
	after, err := doc.Layers(ctx)
	if err != nil {
		return failed("flattening document", err)
	}
	return OK(Fields{
		"layers_before":      len(before),
		"layers_after":       len(after),
		"merge_visible_only": a.MergeVisibleOnly,
	})
}
