package tools

import (
	"context"

	"goa.design/clue/log"

	"github.com/ironsheep/photoshop-mcp/internal/photoshop"
)

func selectionTools() []Tool {
	return []Tool{
		{
			Name:        "select_rectangle",
			Description: "Replace the selection of the active document with a rectangle. right and bottom are exclusive.",
			InputSchema: object(map[string]any{
				"left":   integer("Left edge in pixels", nil),
				"top":    integer("Top edge in pixels", nil),
				"right":  integer("Right edge in pixels", nil),
				"bottom": integer("Bottom edge in pixels", nil),
			}, "left", "top", "right", "bottom"),
			Handler: withDocument(photoshop.Bounds{}, selectRectangle),
		},
		{
			Name:        "deselect",
			Description: "Clear the selection of the active document.",
			Handler:     withDocument(struct{}{}, deselect),
		},
	}
}

func selectRectangle(ctx context.Context, doc photoshop.Document, b photoshop.Bounds) Result {
	if b.Empty() {
		return Failf("Invalid selection bounds: left must be less than right and top less than bottom")
	}
	log.Infof(ctx, "selecting [%d, %d, %d, %d]", b.Left, b.Top, b.Right, b.Bottom)
	if err := doc.Select(ctx, b); err != nil {
		return failed("selecting rectangle", err)
	}
	return selectionInfo(ctx, doc, struct{}{})
}

func deselect(ctx context.Context, doc photoshop.Document, _ struct{}) Result {
	if err := doc.Deselect(ctx); err != nil {
		return failed("deselecting", err)
	}
	return OK(Fields{"has_selection": false})
}
