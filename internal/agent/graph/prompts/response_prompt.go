package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/marketplace-assistant/server/internal/agent/budget"
	"github.com/marketplace-assistant/server/internal/agent/graph/tools"
	"github.com/marketplace-assistant/server/internal/agent/model"
)

//go:embed template/response_prompt.txt
var coreSystemPrompt string

// RenderResponseSystem renders the Response system prompt and triggers prompt callbacks.
func RenderResponseSystem(ctx context.Context, config model.ResponsePromptConfig, turn *model.TurnInput) (string, error) {
	if turn == nil {
		return "", fmt.Errorf("response prompt render: turn is nil")
	}

	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(coreSystemPrompt),
	)
	vars := map[string]any{
		"BusinessType":   config.BusinessType,
		"BusinessName":   config.BusinessName,
		"ServiceName":    turn.Service.Name,
		"MinimumBudget":  budget.FormatMoney(turn.Service.MinimumBudget, turn.Service.Currency),
		"BudgetQuestion": budget.BudgetQuestionPhrase,
		"BudgetSettled":  turn.BudgetSettled,
		"ServiceTool":    tools.ToolGetServiceDetails,
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("response prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("response prompt render: empty result")
	}
	return msgs[0].Content, nil
}
