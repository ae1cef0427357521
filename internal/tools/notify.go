package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// NotifyTool handles the pb_notify MCP tool.
type NotifyTool struct {
	evals Evaluations
}

// NewNotifyTool creates a NotifyTool.
func NewNotifyTool(evals Evaluations) *NotifyTool {
	return &NotifyTool{evals: evals}
}

// Definition returns the MCP tool definition for registration.
func (t *NotifyTool) Definition() mcp.Tool {
	return mcp.NewTool("pb_notify",
		mcp.WithDescription(
			"Send the evaluation's scores and current alerts to the configured "+
				"notification channel (Discord).",
		),
		mcp.WithString("evaluation_id",
			mcp.Required(),
			mcp.Description("Evaluation id."),
		),
	)
}

// Handle processes the pb_notify tool call.
func (t *NotifyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireString(req, "evaluation_id")
	if errResult != nil {
		return errResult, nil
	}
	res, err := t.evals.Notify(ctx, id)
	if err != nil {
		if r, passthrough := toolError(err); passthrough == nil {
			return r, nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Notification failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Notification sent for `%s` with %d alert(s).", res.Record.ID, len(res.Alerts))), nil
}
