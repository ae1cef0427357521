// Package prompts implements MCP prompt handlers for Planbarómetro.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to run a sequence of tools. Unlike tools (which the AI
// calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// DiagnosePrompt handles the planbarometro-diagnose MCP prompt.
// It guides the AI through a full TOPP capability interview.
type DiagnosePrompt struct{}

// NewDiagnosePrompt creates a DiagnosePrompt.
func NewDiagnosePrompt() *DiagnosePrompt {
	return &DiagnosePrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *DiagnosePrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("planbarometro-diagnose",
		mcp.WithPromptDescription(
			"Run a strategic capability diagnosis of an institution. "+
				"Walks through every element of the TOPP model, scores the four "+
				"dimensions and explains the strategic alerts.",
		),
		mcp.WithArgument("name",
			mcp.ArgumentDescription("Name of the institution being evaluated"),
		),
		mcp.WithArgument("locale",
			mcp.ArgumentDescription("Language for alerts: 'es' or 'en'. Default: es"),
		),
	)
}

// Handle processes the planbarometro-diagnose prompt request.
func (p *DiagnosePrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := "my institution"
	if args := req.Params.Arguments; args != nil {
		if n, ok := args["name"]; ok && n != "" {
			name = n
		}
	}

	locale := "es"
	if args := req.Params.Arguments; args != nil {
		if l, ok := args["locale"]; ok && l != "" {
			locale = l
		}
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Capability diagnosis: %s", name),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want to diagnose the strategic planning capabilities of '%s'.\n\n"+
						"Please:\n"+
						"1. Run `pb_start` with name='%s' and locale='%s'\n"+
						"2. Run `pb_model` and ask me about each criterion, one at a time, in the model's order\n"+
						"3. For every element, decide with me whether it is present (1) or absent (0), and record the answers for the criterion with a single `pb_answer` batch\n"+
						"4. When every element is answered, run `pb_result` and explain the dimension scores and each strategic alert, starting with the high severity ones\n"+
						"5. Suggest custom alerts (`pb_custom_alert`) for anything we discussed that the rules did not catch\n\n"+
						"Elements I am unsure about count as absent until I answer them.",
					name, name, locale,
				)),
			},
		},
	}, nil
}
