package tools

import (
	"context"

	"goa.design/clue/log"

	"github.com/ironsheep/photoshop-mcp/internal/photoshop"
)

func scriptTool() Tool {
	return Tool{
		Name: "run_script",
		Description: "Run an ExtendScript (JavaScript) snippet inside Photoshop and return the value of its " +
			"last expression. Scripts have full access to the host application.",
		InputSchema: object(map[string]any{
			"script": str("JavaScript source to evaluate"),
		}, "script"),
		Destructive: true,
		Handler:     handle(scriptArgs{}, runScript),
	}
}

type scriptArgs struct {
	Script string `json:"script"`
}

func runScript(ctx context.Context, app photoshop.Application, a scriptArgs) Result {
	log.Infof(ctx, "running %d byte script", len(a.Script))
	out, err := app.RunScript(ctx, a.Script)
	if err != nil {
		return failed("running script", err)
	}
	return OK(Fields{"result": out})
}
