package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/planbarometro/internal/alerts"
)

// PreviewTool handles the pb_alerts_preview MCP tool.
// It runs the rule engine on four dimension percentages without storing
// anything.
type PreviewTool struct {
	evals Evaluations
}

// NewPreviewTool creates a PreviewTool.
func NewPreviewTool(evals Evaluations) *PreviewTool {
	return &PreviewTool{evals: evals}
}

// Definition returns the MCP tool definition for registration.
func (t *PreviewTool) Definition() mcp.Tool {
	return mcp.NewTool("pb_alerts_preview",
		mcp.WithDescription(
			"Run the strategic alert rules on four TOPP dimension percentages "+
				"(0-100) without creating an evaluation. Useful for what-if "+
				"analysis. Rules that depend on individual responses are skipped.",
		),
		mcp.WithNumber("technical", mcp.Required(), mcp.Description("Technical dimension percentage.")),
		mcp.WithNumber("operational", mcp.Required(), mcp.Description("Operational dimension percentage.")),
		mcp.WithNumber("political", mcp.Required(), mcp.Description("Political dimension percentage.")),
		mcp.WithNumber("prospective", mcp.Required(), mcp.Description("Prospective dimension percentage.")),
		mcp.WithString("locale", mcp.Description("Language for alert text.")),
	)
}

// Handle processes the pb_alerts_preview tool call.
func (t *PreviewTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p alerts.Profile
	fields := []struct {
		key string
		dst *int
	}{
		{"technical", &p.Technical},
		{"operational", &p.Operational},
		{"political", &p.Political},
		{"prospective", &p.Prospective},
	}
	for _, f := range fields {
		v, err := percentArg(req, f.key)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		*f.dst = v
	}

	locale := req.GetString("locale", "")
	list := t.evals.Preview(p, locale)
	tr := t.evals.Translator(locale)

	header := fmt.Sprintf("# Alert preview\n\nTechnical %d%% · Operational %d%% · Political %d%% · Prospective %d%% · Average %.1f%% · Spread %d\n\n",
		p.Technical, p.Operational, p.Political, p.Prospective, p.Average(), p.Spread())
	return mcp.NewToolResultText(header + renderAlerts(list, tr)), nil
}
