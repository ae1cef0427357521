package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// ResetTool handles the pb_reset MCP tool.
type ResetTool struct {
	evals Evaluations
}

// NewResetTool creates a ResetTool.
func NewResetTool(evals Evaluations) *ResetTool {
	return &ResetTool{evals: evals}
}

// Definition returns the MCP tool definition for registration.
func (t *ResetTool) Definition() mcp.Tool {
	return mcp.NewTool("pb_reset",
		mcp.WithDescription(
			"Clear every response of an evaluation. Custom alerts are kept. "+
				"This is the only way to remove responses.",
		),
		mcp.WithString("evaluation_id",
			mcp.Required(),
			mcp.Description("Evaluation id."),
		),
	)
}

// Handle processes the pb_reset tool call.
func (t *ResetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireString(req, "evaluation_id")
	if errResult != nil {
		return errResult, nil
	}
	res, err := t.evals.Reset(ctx, id)
	if err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText("Responses cleared.\n\n" + renderResult(res, t.evals.Translator(res.Record.Locale))), nil
}
