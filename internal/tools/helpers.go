// Package tools implements the MCP tool handlers for Planbarómetro.
//
// Each tool is a struct holding its dependencies with a Definition and a
// Handle method compatible with mcp-go's CallToolRequest signature.
// User mistakes come back as tool errors; infrastructure failures come
// back as Go errors.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/planbarometro/internal/alerts"
	"github.com/HendryAvila/planbarometro/internal/capability"
	"github.com/HendryAvila/planbarometro/internal/evaluation"
	"github.com/HendryAvila/planbarometro/internal/i18n"
	"github.com/HendryAvila/planbarometro/internal/notify"
	"github.com/HendryAvila/planbarometro/internal/store"
)

// Evaluations is the part of *evaluation.Service the tools use.
type Evaluations interface {
	Start(ctx context.Context, name, modelID, locale string) (*evaluation.Result, error)
	AnswerMany(ctx context.Context, id string, responses map[string]int) (*evaluation.Result, error)
	Reset(ctx context.Context, id string) (*evaluation.Result, error)
	Result(ctx context.Context, id string) (*evaluation.Result, error)
	AddCustomAlert(ctx context.Context, id string, a alerts.Alert) (*evaluation.Result, error)
	RemoveCustomAlert(ctx context.Context, id, alertID string) (*evaluation.Result, error)
	List(ctx context.Context, limit int) ([]store.Summary, error)
	Delete(ctx context.Context, id string) error
	Notify(ctx context.Context, id string) (*evaluation.Result, error)
	Preview(p alerts.Profile, locale string) []alerts.Alert
	Translator(locale string) *i18n.Translator
	Locales() []string
}

// Models is the part of *capability.Registry the tools use.
type Models interface {
	Get(id string) (*capability.Model, bool)
	IDs() []string
}

// userErrors are reported to the caller as tool errors.
var userErrors = []error{
	store.ErrNotFound,
	evaluation.ErrUnknownModel,
	evaluation.ErrUnknownElement,
	evaluation.ErrInvalidValue,
	evaluation.ErrUnknownAlert,
	notify.ErrDisabled,
}

// toolError turns a service error into a tool result when the caller can
// fix it, and passes anything else through.
func toolError(err error) (*mcp.CallToolResult, error) {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	return nil, err
}

// requireString returns a trimmed required argument or a tool error.
func requireString(req mcp.CallToolRequest, key string) (string, *mcp.CallToolResult) {
	v := strings.TrimSpace(req.GetString(key, ""))
	if v == "" {
		return "", mcp.NewToolResultError(fmt.Sprintf("'%s' is required", key))
	}
	return v, nil
}

// percentArg reads a 0-100 integer argument.
func percentArg(req mcp.CallToolRequest, key string) (int, error) {
	f := req.GetFloat(key, -1)
	if f < 0 || f > 100 || f != math.Trunc(f) {
		return 0, fmt.Errorf("'%s' must be an integer between 0 and 100", key)
	}
	return int(f), nil
}

// parseResponses decodes a JSON object of element id to 0/1.
func parseResponses(raw string) (map[string]int, error) {
	var m map[string]int
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("'responses' must be a JSON object of element id to 0 or 1: %v", err)
	}
	if len(m) == 0 {
		return nil, errors.New("'responses' is empty")
	}
	return m, nil
}

// splitList splits a comma-separated argument, dropping empty items.
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ─── Rendering ───────────────────────────────────────────────────────────────

// bar draws a ten-cell percentage bar.
func bar(pct int) string {
	filled := max(0, min(10, (pct+5)/10))
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

// dimensionName prefers the translated name and falls back to the model's.
func dimensionName(tr alerts.Translator, id capability.DimensionID, fallback string) string {
	key := "dimension." + string(id)
	if name := tr.Text(key); name != key {
		return name
	}
	if fallback != "" {
		return fallback
	}
	return string(id)
}

func renderResult(res *evaluation.Result, tr alerts.Translator) string {
	rec := res.Record
	var b strings.Builder

	fmt.Fprintf(&b, "# Evaluation: %s\n\n", rec.Name)
	fmt.Fprintf(&b, "**ID:** `%s`\n", rec.ID)
	fmt.Fprintf(&b, "**Model:** %s\n", rec.ModelID)
	fmt.Fprintf(&b, "**Locale:** %s\n", rec.Locale)
	fmt.Fprintf(&b, "**Progress:** %d/%d elements answered (%d%%)\n",
		res.Progress.Answered, res.Progress.Total, res.Progress.Percentage())
	fmt.Fprintf(&b, "**Overall score:** %d%%\n\n", rec.Scores.Overall)
	if !res.Progress.Complete() {
		fmt.Fprintf(&b, "> Partial evaluation: %d of %d elements unanswered. Scores are not final.\n\n",
			res.Progress.Total-res.Progress.Answered, res.Progress.Total)
	}

	b.WriteString("## Dimensions\n\n")
	b.WriteString("| Dimension | Score | |\n")
	b.WriteString("|-----------|-------|---|\n")
	for _, d := range rec.Scores.Dimensions {
		fmt.Fprintf(&b, "| %s | %d%% | %s |\n", dimensionName(tr, d.ID, d.Name), d.Percentage, bar(d.Percentage))
	}

	b.WriteString("\n## Criteria\n\n")
	b.WriteString("| Criterion | Name | Score |\n")
	b.WriteString("|-----------|------|-------|\n")
	for _, d := range rec.Scores.Dimensions {
		for _, c := range d.Criteria {
			fmt.Fprintf(&b, "| %s | %s | %d%% |\n", c.ID, c.Name, c.Percentage)
		}
	}

	b.WriteString("\n")
	b.WriteString(renderAlerts(res.Alerts, tr))

	if n := len(res.Missing); n > 0 && n < res.Progress.Total {
		b.WriteString("\n## Unanswered elements\n\n")
		for _, loc := range res.Missing {
			fmt.Fprintf(&b, "- `%s` %s\n", loc.Element.ID, loc.Element.Name)
		}
	}
	return b.String()
}

func renderAlerts(list []alerts.Alert, tr alerts.Translator) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Strategic alerts (%d)\n\n", len(list))
	if len(list) == 0 {
		b.WriteString("No alerts.\n")
		return b.String()
	}
	for _, a := range list {
		fmt.Fprintf(&b, "### %s %s [%s]\n\n", alerts.SeverityIcon(a.Severity), a.Title, tr.Text("severity."+string(a.Severity)))
		if a.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", a.Description)
		}
		if a.Recommendation != "" {
			fmt.Fprintf(&b, "**Recommendation:** %s\n\n", a.Recommendation)
		}
		fmt.Fprintf(&b, "Risk %d · Impact %d · Urgency %d",
			a.Metrics.RiskLevel, a.Metrics.ImpactLevel, a.Metrics.UrgencyLevel)
		if len(a.Criteria) > 0 {
			fmt.Fprintf(&b, " · Criteria: %s", strings.Join(a.Criteria, ", "))
		}
		fmt.Fprintf(&b, " · `%s`\n\n", a.ID)
	}
	return b.String()
}
