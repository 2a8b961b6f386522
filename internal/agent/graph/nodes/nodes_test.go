package nodes

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketplace-assistant/server/internal/agent/budget"
	"github.com/marketplace-assistant/server/internal/agent/model"
)

const budgetQuestion = "What is your budget for this project?"

func testNegotiator() *budget.Negotiator {
	return budget.NewNegotiator(budget.NewCatalog(model.BudgetConfig{
		Currency:        "INR",
		DefaultMinimum:  10000,
		ServiceMinimums: map[string]int64{"Website Development": 10000},
	}))
}

func TestApplyBudgetPolicy(t *testing.T) {
	policy := testNegotiator()

	t.Run("override for a stated amount", func(t *testing.T) {
		turn := &model.TurnInput{
			ConversationID: "c1",
			Service:        model.ServiceContext{Name: "website development"},
			History:        []*schema.Message{schema.AssistantMessage(budgetQuestion, nil)},
			NewMessages:    []*schema.Message{schema.UserMessage("INR 5000")},
		}
		out := applyBudgetPolicy(policy, turn)
		assert.Contains(t, out.Override, "below the standard minimum requirement")
		assert.Equal(t, "Website Development", out.Service.Name)
		assert.Equal(t, int64(10000), out.Service.MinimumBudget)
		assert.Empty(t, turn.Override, "input turn must not be modified")
	})

	t.Run("settled after decline and acceptance", func(t *testing.T) {
		turn := &model.TurnInput{
			Service: model.ServiceContext{Name: "Website Development"},
			History: []*schema.Message{
				schema.AssistantMessage(budgetQuestion, nil),
				schema.UserMessage("INR 5000"),
				schema.AssistantMessage("Your budget of INR 5,000 is below the standard minimum requirement of INR 10,000 for Website Development. Could you increase your budget to at least INR 10,000?", nil),
				schema.UserMessage("I can't increase the budget."),
				schema.AssistantMessage("Understood. Please note that the scope, features, and quality of work may be limited at this budget.", nil),
			},
			NewMessages: []*schema.Message{schema.UserMessage("We also need analytics integration.")},
		}
		out := applyBudgetPolicy(policy, turn)
		assert.Empty(t, out.Override)
		assert.True(t, out.BudgetSettled)
	})

	t.Run("blank input is nudged", func(t *testing.T) {
		turn := &model.TurnInput{NewMessages: []*schema.Message{schema.UserMessage(" ")}}
		out := applyBudgetPolicy(policy, turn)
		assert.NotEmpty(t, out.Override)
	})

	t.Run("nothing to say", func(t *testing.T) {
		turn := &model.TurnInput{NewMessages: []*schema.Message{schema.UserMessage("Hi, I need a website")}}
		out := applyBudgetPolicy(policy, turn)
		assert.Empty(t, out.Override)
		assert.False(t, out.BudgetSettled)
	})
}

func TestOverrideCondition(t *testing.T) {
	cond := NewOverrideCondition()

	next, err := cond(context.Background(), &model.TurnInput{Override: "Your budget is noted."})
	require.NoError(t, err)
	assert.Equal(t, NodeOverrideResponder, next)

	next, err = cond(context.Background(), &model.TurnInput{})
	require.NoError(t, err)
	assert.Equal(t, NodeResponseAssembler, next)
}

func TestToolRoute(t *testing.T) {
	withCalls := &schema.Message{Role: schema.Assistant, ToolCalls: []schema.ToolCall{{ID: "call_1"}}}

	assert.Equal(t, NodeToolExecutor, toolRoute(withCalls, false))
	assert.Equal(t, compose.END, toolRoute(withCalls, true))
	assert.Equal(t, compose.END, toolRoute(schema.AssistantMessage("done", nil), false))
}

func TestToolCallLimit(t *testing.T) {
	state := &model.AppState{}

	assert.False(t, incrementToolCallAndCheck(state, 2))
	assert.False(t, incrementToolCallAndCheck(state, 2))
	assert.True(t, checkAndMarkToolLimit(state, 2))
	assert.False(t, checkAndMarkToolLimit(state, 2), "limit is marked only once")
	assert.True(t, incrementToolCallAndCheck(state, 2))
	assert.Equal(t, DefaultMaxToolCalls, normalizeMaxToolCalls(0))
}

func TestToolExecutorPreHandler(t *testing.T) {
	pre := NewToolExecutorPreHandler(1)
	state := &model.AppState{ConversationID: "c1"}
	msg := schema.AssistantMessage("", nil)

	out, err := pre(context.Background(), msg, state)
	require.NoError(t, err)
	assert.Same(t, msg, out)
	assert.False(t, state.ToolCallLimitReached)

	_, err = pre(context.Background(), msg, state)
	require.NoError(t, err)
	assert.Equal(t, 2, state.ToolCallCount)
	assert.True(t, state.ToolCallLimitReached)
}

func TestFillToolCallID(t *testing.T) {
	history := []*schema.Message{
		{Role: schema.Assistant, ToolCalls: []schema.ToolCall{{ID: "call_7"}}},
	}
	in := []*schema.Message{{Role: schema.Tool, Content: "{}"}}

	fillToolCallID(in, history)
	assert.Equal(t, "call_7", in[0].ToolCallID)
}

func TestRecordUsage(t *testing.T) {
	state := &model.AppState{}
	out := &schema.Message{
		Role: schema.Assistant,
		ResponseMeta: &schema.ResponseMeta{Usage: &schema.TokenUsage{
			PromptTokens: 1_000_000, CompletionTokens: 0, TotalTokens: 1_000_000,
		}},
	}

	recordUsage(out, state, NodeResponseChatModel, "gemini-2.5-flash")
	assert.InDelta(t, 0.30, state.TotalCostUSD, 1e-9)
	assert.Contains(t, out.Extra, "usage_cost")

	recordUsage(schema.AssistantMessage("no usage", nil), state, NodeResponseChatModel, "gemini-2.5-flash")
	assert.InDelta(t, 0.30, state.TotalCostUSD, 1e-9)
}
