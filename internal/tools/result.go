package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// ResultTool handles the pb_result MCP tool.
type ResultTool struct {
	evals Evaluations
}

// NewResultTool creates a ResultTool.
func NewResultTool(evals Evaluations) *ResultTool {
	return &ResultTool{evals: evals}
}

// Definition returns the MCP tool definition for registration.
func (t *ResultTool) Definition() mcp.Tool {
	return mcp.NewTool("pb_result",
		mcp.WithDescription(
			"Show an evaluation: dimension and criterion scores, progress, and "+
				"the strategic alerts (rule alerts followed by custom alerts).",
		),
		mcp.WithString("evaluation_id",
			mcp.Required(),
			mcp.Description("Evaluation id."),
		),
		mcp.WithString("format",
			mcp.Description("Output format."),
			mcp.Enum("markdown", "json"),
		),
	)
}

// Handle processes the pb_result tool call.
func (t *ResultTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireString(req, "evaluation_id")
	if errResult != nil {
		return errResult, nil
	}
	res, err := t.evals.Result(ctx, id)
	if err != nil {
		return toolError(err)
	}
	if req.GetString("format", "markdown") == "json" {
		return jsonResult(res)
	}
	return mcp.NewToolResultText(renderResult(res, t.evals.Translator(res.Record.Locale))), nil
}
