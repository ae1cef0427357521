package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/planbarometro/internal/capability"
)

// ModelTool handles the pb_model MCP tool.
// It describes a capability model so the assistant knows which element
// ids it can answer.
type ModelTool struct {
	models Models
}

// NewModelTool creates a ModelTool.
func NewModelTool(models Models) *ModelTool {
	return &ModelTool{models: models}
}

// Definition returns the MCP tool definition for registration.
func (t *ModelTool) Definition() mcp.Tool {
	return mcp.NewTool("pb_model",
		mcp.WithDescription(
			"Describe a capability model: its dimensions, criteria and the binary "+
				"elements (questions) of each criterion, with the element ids that "+
				"`pb_answer` expects. Without `model_id`, describes the TOPP model. "+
				"The yaml format can be saved to the models directory as a starting "+
				"point for a custom model.",
		),
		mcp.WithString("model_id",
			mcp.Description("Model id. Defaults to 'topp'."),
		),
		mcp.WithString("format",
			mcp.Description("Output format."),
			mcp.Enum("markdown", "json", "yaml"),
		),
	)
}

// Handle processes the pb_model tool call.
func (t *ModelTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("model_id", capability.TOPPModelID))
	model, ok := t.models.Get(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf(
			"Unknown model %q. Available models: %s", id, strings.Join(t.models.IDs(), ", "))), nil
	}

	switch req.GetString("format", "markdown") {
	case "json":
		return jsonResult(model)
	case "yaml":
		data, err := capability.Marshal(model)
		if err != nil {
			return nil, fmt.Errorf("encoding model: %w", err)
		}
		return mcp.NewToolResultText(string(data)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Model: %s (`%s`)\n\n", model.Name, model.ID)
	if model.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", model.Description)
	}
	fmt.Fprintf(&b, "**Elements:** %d\n", model.ElementCount())
	if model.IsTOPP() {
		b.WriteString("**Strategic alerts:** enabled\n\n")
	} else {
		b.WriteString("**Strategic alerts:** not available, the rules only read the TOPP dimensions\n\n")
	}
	for _, d := range model.Dimensions {
		fmt.Fprintf(&b, "## %s (`%s`)\n\n", d.Name, d.ID)
		for _, c := range d.Criteria {
			fmt.Fprintf(&b, "### %s %s\n\n", c.ID, c.Name)
			for _, e := range c.Elements {
				fmt.Fprintf(&b, "- `%s` %s\n", e.ID, e.Name)
			}
			b.WriteString("\n")
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}
