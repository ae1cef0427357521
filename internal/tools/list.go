package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// ListTool handles the pb_list MCP tool.
type ListTool struct {
	evals Evaluations
}

// NewListTool creates a ListTool.
func NewListTool(evals Evaluations) *ListTool {
	return &ListTool{evals: evals}
}

// Definition returns the MCP tool definition for registration.
func (t *ListTool) Definition() mcp.Tool {
	return mcp.NewTool("pb_list",
		mcp.WithDescription("List stored evaluations, most recently updated first."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of evaluations to return. Default 20, 0 for all."),
		),
	)
}

// Handle processes the pb_list tool call.
func (t *ListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := int(req.GetFloat("limit", 20))
	list, err := t.evals.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing evaluations: %w", err)
	}
	if len(list) == 0 {
		return mcp.NewToolResultText("No evaluations yet. Start one with `pb_start`."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Evaluations (%d)\n\n", len(list))
	b.WriteString("| ID | Name | Model | Overall | Updated |\n")
	b.WriteString("|----|------|-------|---------|---------|\n")
	for _, s := range list {
		fmt.Fprintf(&b, "| `%s` | %s | %s | %d%% | %s |\n",
			s.ID, s.Name, s.ModelID, s.Overall, s.UpdatedAt.Format(time.RFC3339))
	}
	return mcp.NewToolResultText(b.String()), nil
}
