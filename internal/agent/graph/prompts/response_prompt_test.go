package prompts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketplace-assistant/server/internal/agent/model"
)

func TestRenderResponseSystem(t *testing.T) {
	cfg := model.ResponsePromptConfig{BusinessType: "freelance marketplace", BusinessName: "GigBridge"}
	turn := &model.TurnInput{
		Service: model.ServiceContext{Name: "Website Development", MinimumBudget: 10000, Currency: "INR"},
	}

	t.Run("asks the canonical question while unsettled", func(t *testing.T) {
		out, err := RenderResponseSystem(context.Background(), cfg, turn)
		require.NoError(t, err)
		assert.Contains(t, out, "GigBridge")
		assert.Contains(t, out, "Selected service: Website Development")
		assert.Contains(t, out, "INR 10,000")
		assert.Contains(t, out, "What is your budget for this project?")
		assert.NotContains(t, out, "Do NOT ask about the budget again")
	})

	t.Run("suppresses budget questions once settled", func(t *testing.T) {
		settled := *turn
		settled.BudgetSettled = true
		out, err := RenderResponseSystem(context.Background(), cfg, &settled)
		require.NoError(t, err)
		assert.Contains(t, out, "Do NOT ask about the budget again")
		assert.NotContains(t, out, "budget for this project")
	})

	t.Run("nil turn", func(t *testing.T) {
		_, err := RenderResponseSystem(context.Background(), cfg, nil)
		assert.Error(t, err)
	})
}
