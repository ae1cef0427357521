package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// StartTool handles the pb_start MCP tool.
type StartTool struct {
	evals Evaluations
}

// NewStartTool creates a StartTool.
func NewStartTool(evals Evaluations) *StartTool {
	return &StartTool{evals: evals}
}

// Definition returns the MCP tool definition for registration.
func (t *StartTool) Definition() mcp.Tool {
	return mcp.NewTool("pb_start",
		mcp.WithDescription(
			"Start a new capability evaluation for an institution. Returns the "+
				"evaluation id used by every other pb_* tool. All elements start "+
				"unanswered, which scores as absent.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the institution or unit being evaluated."),
		),
		mcp.WithString("model_id",
			mcp.Description("Capability model id. Defaults to 'topp'."),
		),
		mcp.WithString("locale",
			mcp.Description(fmt.Sprintf(
				"Language for alert text. Supported: %s. Other tags resolve to the closest one. Defaults to the server locale.",
				strings.Join(t.evals.Locales(), ", "))),
		),
	)
}

// Handle processes the pb_start tool call.
func (t *StartTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, errResult := requireString(req, "name")
	if errResult != nil {
		return errResult, nil
	}

	res, err := t.evals.Start(ctx, name, req.GetString("model_id", ""), req.GetString("locale", ""))
	if err != nil {
		return toolError(err)
	}

	tr := t.evals.Translator(res.Record.Locale)
	return mcp.NewToolResultText(
		"Evaluation started. Use `pb_model` to see the elements and `pb_answer` to record responses.\n\n" +
			renderResult(res, tr),
	), nil
}
