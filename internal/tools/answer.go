package tools

import (
	"context"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
)

// AnswerTool handles the pb_answer MCP tool.
// It records one response (element_id + value) or a batch (responses).
type AnswerTool struct {
	evals Evaluations
}

// NewAnswerTool creates an AnswerTool.
func NewAnswerTool(evals Evaluations) *AnswerTool {
	return &AnswerTool{evals: evals}
}

// Definition returns the MCP tool definition for registration.
func (t *AnswerTool) Definition() mcp.Tool {
	return mcp.NewTool("pb_answer",
		mcp.WithDescription(
			"Record element responses for an evaluation: 1 when the element is "+
				"present in the institution, 0 when it is absent. Pass either "+
				"`element_id` and `value`, or `responses` as a JSON object for a "+
				"batch. A batch is applied only if every entry is valid. Scores "+
				"and alerts are recomputed after every call.",
		),
		mcp.WithString("evaluation_id",
			mcp.Required(),
			mcp.Description("Evaluation id returned by pb_start."),
		),
		mcp.WithString("element_id",
			mcp.Description("Element id, e.g. 'T.1.2'."),
		),
		mcp.WithNumber("value",
			mcp.Description("1 = present, 0 = absent."),
		),
		mcp.WithString("responses",
			mcp.Description(`Batch of responses as JSON, e.g. {"T.1.1": 1, "T.1.2": 0}.`),
		),
	)
}

// Handle processes the pb_answer tool call.
func (t *AnswerTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireString(req, "evaluation_id")
	if errResult != nil {
		return errResult, nil
	}

	var responses map[string]int
	if raw := req.GetString("responses", ""); raw != "" {
		m, err := parseResponses(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		responses = m
	} else {
		elementID, errResult := requireString(req, "element_id")
		if errResult != nil {
			return mcp.NewToolResultError("Provide either 'element_id' and 'value', or 'responses'."), nil
		}
		v := req.GetFloat("value", -1)
		if v != math.Trunc(v) || (v != 0 && v != 1) {
			return mcp.NewToolResultError(fmt.Sprintf("'value' must be 0 or 1, got %v", v)), nil
		}
		responses = map[string]int{elementID: int(v)}
	}

	res, err := t.evals.AnswerMany(ctx, id, responses)
	if err != nil {
		return toolError(err)
	}

	tr := t.evals.Translator(res.Record.Locale)
	return mcp.NewToolResultText(
		fmt.Sprintf("Recorded %d response(s).\n\n", len(responses)) + renderResult(res, tr),
	), nil
}
