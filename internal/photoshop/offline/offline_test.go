package offline

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	imgutil "github.com/ironsheep/photoshop-mcp/internal/imaging"
	"github.com/ironsheep/photoshop-mcp/internal/photoshop"
)

func newDoc(t *testing.T, w, h int) (*App, photoshop.Document) {
	t.Helper()
	app := New(nil)
	doc, err := app.CreateDocument(context.Background(), photoshop.NewDocumentOptions{
		Name: "test", Width: w, Height: h, Resolution: 72, Mode: photoshop.ModeRGB,
	})
	require.NoError(t, err)
	return app, doc
}

func info(t *testing.T, doc photoshop.Document) photoshop.DocumentInfo {
	t.Helper()
	i, err := doc.Info(context.Background())
	require.NoError(t, err)
	return i
}

func TestNoActiveDocument(t *testing.T) {
	app := New(nil)
	_, err := app.ActiveDocument(context.Background())
	assert.ErrorIs(t, err, photoshop.ErrNoActiveDocument)

	docs, err := app.Documents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestCreateDocument(t *testing.T) {
	ctx := context.Background()
	app, doc := newDoc(t, 200, 100)

	active, err := app.ActiveDocument(ctx)
	require.NoError(t, err)
	assert.Same(t, doc, active)

	i := info(t, doc)
	assert.Equal(t, "test", i.Name)
	assert.Equal(t, 200, i.Width)
	assert.Equal(t, 100, i.Height)
	assert.Equal(t, 72.0, i.Resolution)
	assert.Equal(t, photoshop.ModeRGB, i.Mode)
	assert.Equal(t, 8, i.BitsPerChannel)
	assert.Equal(t, 1, i.LayerCount)
	assert.False(t, i.Saved)

	layers, err := doc.Layers(ctx)
	require.NoError(t, err)
	require.Len(t, layers, 1)
	assert.Equal(t, "Background", layers[0].Name)

	_, err = app.CreateDocument(ctx, photoshop.NewDocumentOptions{Width: 0, Height: 10})
	assert.Error(t, err)
	_, err = app.CreateDocument(ctx, photoshop.NewDocumentOptions{Width: 10, Height: 10, Mode: photoshop.ModeDuotone})
	assert.Error(t, err)

	second, err := app.CreateDocument(ctx, photoshop.NewDocumentOptions{Width: 10, Height: 10})
	require.NoError(t, err)
	assert.Equal(t, "Untitled-2", info(t, second).Name)
}

func TestResizeImage(t *testing.T) {
	ctx := context.Background()
	for _, m := range photoshop.ResampleMethodNames {
		t.Run(m, func(t *testing.T) {
			_, doc := newDoc(t, 300, 200)
			require.NoError(t, doc.ResizeImage(ctx, photoshop.ResizeOptions{
				Width: 123, Height: 45, Resample: photoshop.ResampleMethod(m),
			}))
			i := info(t, doc)
			assert.Equal(t, 123, i.Width)
			assert.Equal(t, 45, i.Height)
		})
	}

	_, doc := newDoc(t, 300, 200)
	require.NoError(t, doc.ResizeImage(ctx, photoshop.ResizeOptions{Resolution: 300}))
	i := info(t, doc)
	assert.Equal(t, 300, i.Width)
	assert.Equal(t, 300.0, i.Resolution)

	assert.Error(t, doc.ResizeImage(ctx, photoshop.ResizeOptions{Width: 10, Height: 10, Resample: "lanczos"}))
}

func TestCropAndSelection(t *testing.T) {
	ctx := context.Background()
	_, doc := newDoc(t, 100, 80)

	require.NoError(t, doc.Select(ctx, photoshop.Bounds{Left: -10, Top: 10, Right: 50, Bottom: 500}))
	sel, err := doc.Selection(ctx)
	require.NoError(t, err)
	require.True(t, sel.HasSelection)
	assert.Equal(t, photoshop.Bounds{Left: 0, Top: 10, Right: 50, Bottom: 80}, *sel.Bounds)

	assert.Error(t, doc.Select(ctx, photoshop.Bounds{Left: 200, Top: 200, Right: 300, Bottom: 300}))

	require.NoError(t, doc.Crop(ctx, photoshop.Bounds{Left: 10, Top: 20, Right: 60, Bottom: 50}))
	i := info(t, doc)
	assert.Equal(t, 50, i.Width)
	assert.Equal(t, 30, i.Height)

	sel, err = doc.Selection(ctx)
	require.NoError(t, err)
	assert.False(t, sel.HasSelection)

	assert.Error(t, doc.Crop(ctx, photoshop.Bounds{Left: 0, Top: 0, Right: 100, Bottom: 100}))
	assert.Error(t, doc.Crop(ctx, photoshop.Bounds{Left: 10, Top: 0, Right: 10, Bottom: 5}))

	require.NoError(t, doc.Select(ctx, photoshop.Bounds{Left: 0, Top: 0, Right: 5, Bottom: 5}))
	require.NoError(t, doc.Deselect(ctx))
	sel, _ = doc.Selection(ctx)
	assert.False(t, sel.HasSelection)
}

func TestTrim(t *testing.T) {
	ctx := context.Background()
	_, doc := newDoc(t, 100, 100)
	d := doc.(*Document)

	// A red square at (20,30)-(40,60) on the white background.
	red := image.NewUniform(color.NRGBA{255, 0, 0, 255})
	fill := d.layers[0].img
	for y := 30; y < 60; y++ {
		for x := 20; x < 40; x++ {
			fill.Set(x, y, red.C)
		}
	}

	require.NoError(t, doc.Trim(ctx, photoshop.TrimTopLeftColor))
	i := info(t, doc)
	assert.Equal(t, 20, i.Width)
	assert.Equal(t, 30, i.Height)

	// Everything is red now; trimming would remove the whole canvas.
	assert.Error(t, doc.Trim(ctx, photoshop.TrimBottomRightColor))
	// Nothing is transparent; trim is a no-op.
	require.NoError(t, doc.Trim(ctx, photoshop.TrimTransparent))
	assert.Equal(t, 20, info(t, doc).Width)
}

func TestTrimTransparent(t *testing.T) {
	ctx := context.Background()
	_, doc := newDoc(t, 50, 50)
	d := doc.(*Document)
	d.layers[0].img = image.NewNRGBA(image.Rect(0, 0, 50, 50))
	d.layers[0].img.SetNRGBA(10, 5, color.NRGBA{0, 0, 0, 255})
	d.layers[0].img.SetNRGBA(14, 9, color.NRGBA{0, 0, 0, 10})

	require.NoError(t, doc.Trim(ctx, photoshop.TrimTransparent))
	i := info(t, doc)
	assert.Equal(t, 5, i.Width)
	assert.Equal(t, 5, i.Height)
}

func TestRotateCanvas(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		angle float64
		w, h  int
	}{
		{90, 40, 100},
		{-90, 40, 100},
		{180, 100, 40},
		{270, 40, 100},
		{360, 100, 40},
	}
	for _, tt := range tests {
		_, doc := newDoc(t, 100, 40)
		require.NoError(t, doc.RotateCanvas(ctx, tt.angle))
		i := info(t, doc)
		assert.Equal(t, tt.w, i.Width, "angle %v", tt.angle)
		assert.Equal(t, tt.h, i.Height, "angle %v", tt.angle)
	}

	_, doc := newDoc(t, 100, 40)
	require.NoError(t, doc.RotateCanvas(ctx, 45))
	i := info(t, doc)
	// The bounding box of a rotated w x h canvas is (w+h)*cos45 on both sides.
	assert.Equal(t, 99, i.Width)
	assert.Equal(t, 99, i.Height)

	img := doc.(*Document).layers[0].img
	b := img.Bounds()
	for _, p := range []image.Point{
		{b.Min.X, b.Min.Y}, {b.Max.X - 1, b.Min.Y}, {b.Min.X, b.Max.Y - 1}, {b.Max.X - 1, b.Max.Y - 1},
	} {
		assert.Zero(t, img.NRGBAAt(p.X, p.Y).A, "corner %v", p)
	}
	assert.Equal(t, uint8(255), img.NRGBAAt(b.Min.X+b.Dx()/2, b.Min.Y+b.Dy()/2).A)
}

func TestRotateClockwise(t *testing.T) {
	ctx := context.Background()
	_, doc := newDoc(t, 4, 2)
	d := doc.(*Document)
	d.layers[0].img.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})

	require.NoError(t, doc.RotateCanvas(ctx, 90))
	// The top-left corner moves to the top-right after a clockwise turn.
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, d.layers[0].img.NRGBAAt(1, 0))
}

func TestFlipCanvas(t *testing.T) {
	ctx := context.Background()
	_, doc := newDoc(t, 10, 10)
	d := doc.(*Document)
	d.layers[0].img.SetNRGBA(0, 0, color.NRGBA{0, 0, 255, 255})

	require.NoError(t, doc.FlipCanvas(ctx, photoshop.Horizontal))
	assert.Equal(t, uint8(255), d.layers[0].img.NRGBAAt(9, 0).B)
	require.NoError(t, doc.FlipCanvas(ctx, photoshop.Vertical))
	assert.Equal(t, uint8(255), d.layers[0].img.NRGBAAt(9, 9).B)
	assert.Error(t, doc.FlipCanvas(ctx, "diagonal"))
}

func TestLayersFlattenMerge(t *testing.T) {
	ctx := context.Background()
	_, doc := newDoc(t, 200, 100)

	text, err := doc.AddTextLayer(ctx, photoshop.TextLayerOptions{Text: "Hello", X: 10, Y: 50, Size: 24})
	require.NoError(t, err)
	assert.Equal(t, "Hello", text.Name)
	assert.Equal(t, photoshop.LayerText, text.Kind)

	fill, err := doc.AddFillLayer(ctx, photoshop.FillLayerOptions{Color: color.RGBA{0, 255, 0, 255}})
	require.NoError(t, err)
	assert.Equal(t, "Color Fill", fill.Name)

	layers, err := doc.Layers(ctx)
	require.NoError(t, err)
	require.Len(t, layers, 3)
	assert.Equal(t, "Color Fill", layers[0].Name)
	assert.Equal(t, "Background", layers[2].Name)

	d := doc.(*Document)
	d.layers[1].visible = false
	require.NoError(t, doc.MergeVisibleLayers(ctx))
	assert.Equal(t, 2, info(t, doc).LayerCount)

	require.NoError(t, doc.Flatten(ctx))
	assert.Equal(t, 1, info(t, doc).LayerCount)
	// The opaque green fill covers the background.
	assert.Equal(t, color.NRGBA{0, 255, 0, 255}, d.layers[0].img.NRGBAAt(100, 50))

	_, err = doc.AddTextLayer(ctx, photoshop.TextLayerOptions{Text: "", Size: 12})
	assert.Error(t, err)
}

func TestTextIsDrawn(t *testing.T) {
	ctx := context.Background()
	_, doc := newDoc(t, 200, 100)
	_, err := doc.AddTextLayer(ctx, photoshop.TextLayerOptions{Text: "MMMM", X: 10, Y: 60, Size: 40, Color: color.RGBA{0, 0, 0, 255}})
	require.NoError(t, err)

	d := doc.(*Document)
	textLayer := d.layers[1].img
	opaque := 0
	for i := 3; i < len(textLayer.Pix); i += 4 {
		if textLayer.Pix[i] > 0 {
			opaque++
		}
	}
	assert.Greater(t, opaque, 100)
}

func TestChangeMode(t *testing.T) {
	ctx := context.Background()
	for _, m := range []photoshop.ColorMode{
		photoshop.ModeGrayscale, photoshop.ModeCMYK, photoshop.ModeLab,
		photoshop.ModeBitmap, photoshop.ModeIndexed, photoshop.ModeMultiChannel, photoshop.ModeRGB,
	} {
		t.Run(string(m), func(t *testing.T) {
			_, doc := newDoc(t, 20, 20)
			_, err := doc.AddFillLayer(ctx, photoshop.FillLayerOptions{Color: color.RGBA{200, 30, 60, 255}})
			require.NoError(t, err)
			require.NoError(t, doc.ChangeMode(ctx, m))
			assert.Equal(t, m, info(t, doc).Mode)
		})
	}

	_, doc := newDoc(t, 20, 20)
	assert.Error(t, doc.ChangeMode(ctx, photoshop.ModeDuotone))
}

func TestChangeModeGrayscalePixels(t *testing.T) {
	ctx := context.Background()
	_, doc := newDoc(t, 4, 4)
	_, err := doc.AddFillLayer(ctx, photoshop.FillLayerOptions{Color: color.RGBA{255, 0, 0, 255}})
	require.NoError(t, err)
	require.NoError(t, doc.ChangeMode(ctx, photoshop.ModeGrayscale))

	px := doc.(*Document).layers[1].img.NRGBAAt(1, 1)
	assert.Equal(t, px.R, px.G)
	assert.Equal(t, px.G, px.B)
	assert.Equal(t, uint8(255), px.A)
}

func TestChangeModeBitmapFlattens(t *testing.T) {
	ctx := context.Background()
	_, doc := newDoc(t, 4, 4)
	_, err := doc.AddFillLayer(ctx, photoshop.FillLayerOptions{Color: color.RGBA{10, 10, 10, 255}})
	require.NoError(t, err)
	require.NoError(t, doc.ChangeMode(ctx, photoshop.ModeBitmap))

	i := info(t, doc)
	assert.Equal(t, 1, i.LayerCount)
	assert.Equal(t, 1, i.BitsPerChannel)
	assert.Equal(t, uint8(0), doc.(*Document).layers[0].img.NRGBAAt(0, 0).R)
}

func TestSaveAsSignatures(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	tests := []struct {
		file   string
		opts   photoshop.SaveOptions
		format string
	}{
		{"out.jpg", photoshop.JPEGOptions{Quality: 10}, imgutil.FormatJPEG},
		{"out.png", photoshop.PNGOptions{Compression: 6}, imgutil.FormatPNG},
		{"out.psd", photoshop.PSDOptions{MaximizeCompatibility: true}, imgutil.FormatPSD},
		{"out.gif", photoshop.GIFOptions{Colors: 64}, imgutil.FormatGIF},
		{"out.tif", photoshop.TIFFOptions{Compression: photoshop.TIFFLZW}, imgutil.FormatTIFF},
		{"none.tif", photoshop.TIFFOptions{Compression: photoshop.TIFFNone}, imgutil.FormatTIFF},
		{"out.bmp", photoshop.BMPOptions{}, imgutil.FormatBMP},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			_, doc := newDoc(t, 32, 16)
			path := filepath.Join(dir, tt.file)
			require.NoError(t, doc.SaveAs(ctx, path, tt.opts, true))

			got, err := imgutil.SniffFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.format, got)

			img, err := imaging.Open(path)
			if tt.format != imgutil.FormatPSD {
				require.NoError(t, err)
				assert.Equal(t, 32, img.Bounds().Dx())
			}
		})
	}
}

func TestSaveAsTransparency(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	tests := []struct {
		file   string
		opts   photoshop.SaveOptions
		corner uint8
	}{
		{"alpha.png", photoshop.PNGOptions{}, 0},
		{"alpha.tif", photoshop.TIFFOptions{Compression: photoshop.TIFFLZW}, 0},
		{"alpha.gif", photoshop.GIFOptions{Colors: 256, Transparency: true}, 0},
		{"opaque.gif", photoshop.GIFOptions{Colors: 256}, 255},
		{"opaque.jpg", photoshop.JPEGOptions{Quality: 10}, 255},
		{"opaque.bmp", photoshop.BMPOptions{}, 255},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			_, doc := newDoc(t, 20, 10)
			d := doc.(*Document)
			d.layers[0].img = image.NewNRGBA(image.Rect(0, 0, 20, 10))
			d.layers[0].img.SetNRGBA(5, 5, color.NRGBA{255, 0, 0, 255})

			path := filepath.Join(dir, tt.file)
			require.NoError(t, doc.SaveAs(ctx, path, tt.opts, true))
			img, err := imaging.Open(path)
			require.NoError(t, err)

			alpha := func(x, y int) uint8 {
				return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA).A
			}
			assert.Equal(t, tt.corner, alpha(0, 0))
			assert.Equal(t, uint8(255), alpha(5, 5))
		})
	}
}

func TestSaveAsUnsupported(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	_, doc := newDoc(t, 8, 8)

	path := filepath.Join(dir, "out.webp")
	err := doc.SaveAs(ctx, path, photoshop.WebPOptions{Quality: 80}, true)
	assert.ErrorIs(t, err, photoshop.ErrFormatUnsupported)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	err = doc.SaveAs(ctx, filepath.Join(dir, "out.tif"), photoshop.TIFFOptions{Compression: photoshop.TIFFJPEG}, true)
	assert.ErrorIs(t, err, photoshop.ErrFormatUnsupported)

	assert.Error(t, doc.SaveAs(ctx, filepath.Join(dir, "missing", "out.png"), photoshop.PNGOptions{}, true))
}

func TestSaveAsUpdatesDocument(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	_, doc := newDoc(t, 8, 8)

	copyPath := filepath.Join(dir, "copy.png")
	require.NoError(t, doc.SaveAs(ctx, copyPath, photoshop.PNGOptions{}, true))
	i := info(t, doc)
	assert.Equal(t, "test", i.Name)
	assert.Empty(t, i.Path)

	path := filepath.Join(dir, "doc.psd")
	require.NoError(t, doc.SaveAs(ctx, path, photoshop.PSDOptions{}, false))
	i = info(t, doc)
	assert.Equal(t, "doc.psd", i.Name)
	assert.Equal(t, path, i.Path)
	assert.True(t, i.Saved)

	require.NoError(t, doc.FlipCanvas(ctx, photoshop.Horizontal))
	assert.False(t, info(t, doc).Saved)
}

func TestOpenDocument(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	app, doc := newDoc(t, 64, 48)
	require.NoError(t, doc.ResizeImage(ctx, photoshop.ResizeOptions{Resolution: 300}))

	for _, tt := range []struct {
		file string
		opts photoshop.SaveOptions
		res  float64
	}{
		{"a.psd", photoshop.PSDOptions{}, 300},
		{"a.png", photoshop.PNGOptions{}, 72},
		{"a.tif", photoshop.TIFFOptions{}, 72},
		{"a.bmp", photoshop.BMPOptions{}, 72},
	} {
		path := filepath.Join(dir, tt.file)
		require.NoError(t, doc.SaveAs(ctx, path, tt.opts, true))

		opened, err := app.OpenDocument(ctx, path)
		require.NoError(t, err, tt.file)
		i := info(t, opened)
		assert.Equal(t, tt.file, i.Name)
		assert.Equal(t, 64, i.Width)
		assert.Equal(t, 48, i.Height)
		assert.Equal(t, tt.res, i.Resolution, tt.file)
		assert.Equal(t, path, i.Path)
		assert.True(t, i.Saved)

		active, err := app.ActiveDocument(ctx)
		require.NoError(t, err)
		assert.Same(t, opened, active)
	}

	_, err := app.OpenDocument(ctx, filepath.Join(dir, "nope.png"))
	assert.Error(t, err)
}

func TestCloseDocument(t *testing.T) {
	ctx := context.Background()
	app, first := newDoc(t, 10, 10)
	second, err := app.CreateDocument(ctx, photoshop.NewDocumentOptions{Width: 5, Height: 5})
	require.NoError(t, err)

	require.NoError(t, second.Close(ctx, false))
	active, err := app.ActiveDocument(ctx)
	require.NoError(t, err)
	assert.Same(t, first, active)

	_, err = second.Info(ctx)
	assert.Error(t, err)
	assert.Error(t, second.Close(ctx, false))

	assert.Error(t, first.Close(ctx, true), "never saved")

	path := filepath.Join(t.TempDir(), "first.png")
	require.NoError(t, first.SaveAs(ctx, path, photoshop.PNGOptions{}, false))
	require.NoError(t, first.Close(ctx, true))
	_, err = app.ActiveDocument(ctx)
	assert.ErrorIs(t, err, photoshop.ErrNoActiveDocument)
}

func TestRunScriptUnsupported(t *testing.T) {
	_, err := New(nil).RunScript(context.Background(), "1+1")
	assert.ErrorIs(t, err, photoshop.ErrScriptingUnsupported)
}

func TestJPEGQualityScale(t *testing.T) {
	assert.Equal(t, 1, jpegQuality(0))
	assert.Equal(t, 83, jpegQuality(10))
	assert.Equal(t, 100, jpegQuality(12))
	assert.Equal(t, 100, jpegQuality(50))
}
