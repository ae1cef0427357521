package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ReviewPrompt handles the planbarometro-review MCP prompt.
// It asks the AI to present an existing evaluation and what to do next.
type ReviewPrompt struct{}

// NewReviewPrompt creates a ReviewPrompt.
func NewReviewPrompt() *ReviewPrompt {
	return &ReviewPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ReviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("planbarometro-review",
		mcp.WithPromptDescription(
			"Review a stored evaluation: scores, progress, alerts and the "+
				"elements still unanswered.",
		),
		mcp.WithArgument("evaluation_id",
			mcp.ArgumentDescription("Evaluation id. If omitted, pick from the stored evaluations."),
		),
	)
}

// Handle processes the planbarometro-review prompt request.
func (p *ReviewPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	lookup := "Run `pb_list` and ask me which evaluation to review, then run `pb_result` for it."
	if id := req.Params.Arguments["evaluation_id"]; id != "" {
		lookup = fmt.Sprintf("Run `pb_result` with evaluation_id='%s'.", id)
	}

	return &mcp.GetPromptResult{
		Description: "Evaluation review",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					lookup + "\n\n" +
						"Then:\n" +
						"1. Show the four dimension scores and the overall score in a clear, visual format\n" +
						"2. Go through the strategic alerts from highest to lowest severity and tell me what each one means for us\n" +
						"3. If elements are still unanswered, list them and offer to continue the interview\n" +
						"4. Ask whether I want to send the summary with `pb_notify`",
				),
			},
		},
	}, nil
}
