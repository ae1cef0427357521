package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// DeleteTool handles the pb_delete MCP tool.
type DeleteTool struct {
	evals Evaluations
}

// NewDeleteTool creates a DeleteTool.
func NewDeleteTool(evals Evaluations) *DeleteTool {
	return &DeleteTool{evals: evals}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("pb_delete",
		mcp.WithDescription("Permanently delete a stored evaluation."),
		mcp.WithString("evaluation_id",
			mcp.Required(),
			mcp.Description("Evaluation id."),
		),
	)
}

// Handle processes the pb_delete tool call.
func (t *DeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireString(req, "evaluation_id")
	if errResult != nil {
		return errResult, nil
	}
	if err := t.evals.Delete(ctx, id); err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Evaluation `%s` deleted.", id)), nil
}
