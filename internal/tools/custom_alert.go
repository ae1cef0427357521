package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/planbarometro/internal/alerts"
)

// CustomAlertTool handles the pb_custom_alert MCP tool.
// Custom alerts are written by the evaluator and shown after the rule
// alerts. They are stored as given.
type CustomAlertTool struct {
	evals Evaluations
}

// NewCustomAlertTool creates a CustomAlertTool.
func NewCustomAlertTool(evals Evaluations) *CustomAlertTool {
	return &CustomAlertTool{evals: evals}
}

// Definition returns the MCP tool definition for registration.
func (t *CustomAlertTool) Definition() mcp.Tool {
	return mcp.NewTool("pb_custom_alert",
		mcp.WithDescription(
			"Add or remove a custom strategic alert on an evaluation. Custom "+
				"alerts appear after the rule-generated alerts.",
		),
		mcp.WithString("evaluation_id", mcp.Required(), mcp.Description("Evaluation id.")),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("What to do."),
			mcp.Enum("add", "remove"),
		),
		mcp.WithString("alert_id", mcp.Description("Alert id. Required for remove; generated on add when omitted.")),
		mcp.WithString("title", mcp.Description("Alert title. Required for add.")),
		mcp.WithString("description", mcp.Description("What was observed.")),
		mcp.WithString("recommendation", mcp.Description("What to do about it.")),
		mcp.WithString("severity",
			mcp.Description("Severity. Defaults to medium."),
			mcp.Enum("high", "medium", "low"),
		),
		mcp.WithString("criteria", mcp.Description("Comma-separated dimension or criterion names the alert concerns.")),
		mcp.WithNumber("risk", mcp.Description("Risk level 0-100.")),
		mcp.WithNumber("impact", mcp.Description("Impact level 0-100.")),
		mcp.WithNumber("urgency", mcp.Description("Urgency level 0-100.")),
	)
}

// Handle processes the pb_custom_alert tool call.
func (t *CustomAlertTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireString(req, "evaluation_id")
	if errResult != nil {
		return errResult, nil
	}

	switch action := req.GetString("action", ""); action {
	case "add":
		return t.add(ctx, id, req)
	case "remove":
		alertID, errResult := requireString(req, "alert_id")
		if errResult != nil {
			return errResult, nil
		}
		res, err := t.evals.RemoveCustomAlert(ctx, id, alertID)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Custom alert `%s` removed.\n\n", alertID) +
			renderAlerts(res.Alerts, t.evals.Translator(res.Record.Locale))), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("Invalid action %q: must be add or remove", action)), nil
	}
}

func (t *CustomAlertTool) add(ctx context.Context, id string, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, errResult := requireString(req, "title")
	if errResult != nil {
		return errResult, nil
	}
	sev, err := alerts.ParseSeverity(req.GetString("severity", string(alerts.SeverityMedium)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var m alerts.Metrics
	levels := []struct {
		key string
		dst *int
	}{
		{"risk", &m.RiskLevel},
		{"impact", &m.ImpactLevel},
		{"urgency", &m.UrgencyLevel},
	}
	args := req.GetArguments()
	for _, l := range levels {
		if _, ok := args[l.key]; !ok {
			continue
		}
		v, err := percentArg(req, l.key)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		*l.dst = v
	}

	a := alerts.Alert{
		ID:             strings.TrimSpace(req.GetString("alert_id", "")),
		Title:          title,
		Description:    req.GetString("description", ""),
		Recommendation: req.GetString("recommendation", ""),
		Severity:       sev,
		Criteria:       splitList(req.GetString("criteria", "")),
		Metrics:        m,
	}
	res, err := t.evals.AddCustomAlert(ctx, id, a)
	if err != nil {
		return toolError(err)
	}
	added := res.Record.CustomAlerts[len(res.Record.CustomAlerts)-1]
	return mcp.NewToolResultText(fmt.Sprintf("Custom alert `%s` added.\n\n", added.ID) +
		renderAlerts(res.Alerts, t.evals.Translator(res.Record.Locale))), nil
}
