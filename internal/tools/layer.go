package tools

import (
	"context"

	"goa.design/clue/log"

	imgutil "github.com/ironsheep/photoshop-mcp/internal/imaging"
	"github.com/ironsheep/photoshop-mcp/internal/photoshop"
)

func layerTools() []Tool {
	return []Tool{
		{
			Name:        "create_text_layer",
			Description: "Add a text layer to the active document. x and y place the text baseline in pixels.",
			InputSchema: object(map[string]any{
				"text":    str("Text content"),
				"x":       integer("X position in pixels", 100),
				"y":       integer("Y position in pixels", 100),
				"size":    positiveNumber("Font size in points", 24),
				"color_r": colorComponent("Red", 0),
				"color_g": colorComponent("Green", 0),
				"color_b": colorComponent("Blue", 0),
				"color":   hexColor,
			}, "text"),
			Handler: withDocument(textLayerArgs{X: 100, Y: 100, Size: 24}, createTextLayer),
		},
		{
			Name:        "create_solid_color_layer",
			Description: "Add a solid color fill layer covering the active document.",
			InputSchema: object(map[string]any{
				"color_r": colorComponent("Red", 255),
				"color_g": colorComponent("Green", 0),
				"color_b": colorComponent("Blue", 0),
				"color":   hexColor,
				"name":    strDefault("Layer name", "Color Fill"),
			}),
			Handler: withDocument(fillLayerArgs{rgbArgs: rgbArgs{R: 255}, Name: "Color Fill"}, createSolidColorLayer),
		},
	}
}

type textLayerArgs struct {
	rgbArgs
	Text string  `json:"text"`
	X    int     `json:"x"`
	Y    int     `json:"y"`
	Size float64 `json:"size"`
}

func createTextLayer(ctx context.Context, doc photoshop.Document, a textLayerArgs) Result {
	c, err := a.color()
	if err != nil {
		return Fail(err)
	}
	log.Infof(ctx, "adding text layer at (%d, %d) size %v", a.X, a.Y, a.Size)
	layer, err := doc.AddTextLayer(ctx, photoshop.TextLayerOptions{
		Text:  a.Text,
		X:     a.X,
		Y:     a.Y,
		Size:  a.Size,
		Color: c,
	})
	if err != nil {
		return failed("creating text layer", err)
	}
	return OK(Fields{"layer_name": layer.Name, "color": imgutil.HexString(c)})
}

type fillLayerArgs struct {
	rgbArgs
	Name string `json:"name"`
}

func createSolidColorLayer(ctx context.Context, doc photoshop.Document, a fillLayerArgs) Result {
	c, err := a.color()
	if err != nil {
		return Fail(err)
	}
	log.Infof(ctx, "adding fill layer %q", a.Name)
	layer, err := doc.AddFillLayer(ctx, photoshop.FillLayerOptions{Name: a.Name, Color: c})
	if err != nil {
		return failed("creating solid color layer", err)
	}
	return OK(Fields{"layer_name": layer.Name, "color": imgutil.HexString(c)})
}
