package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/marketplace-assistant/server/internal/agent/graph/conversations"
	"github.com/marketplace-assistant/server/internal/agent/graph/prompts"
	"github.com/marketplace-assistant/server/internal/agent/model"
	logx "github.com/marketplace-assistant/server/pkg/logger"
)

const (
	NodeInputConverter    = "InputConverter"
	NodeBudgetOverride    = "BudgetOverride"
	NodeOverrideResponder = "OverrideResponder"
	NodeResponseAssembler = "ResponseAssembler"
	NodeResponseChatModel = "ResponseChatModel"
	NodeToolExecutor      = "ToolExecutor"
)

// NewInputConverterPreHandler creates the pre-handler for InputConverter node
func NewInputConverterPreHandler() func(context.Context, model.QueryInput, *model.AppState) (model.QueryInput, error) {
	return func(ctx context.Context, in model.QueryInput, s *model.AppState) (model.QueryInput, error) {
		s.ConversationID = in.ConversationID
		// Reset per-query counters
		s.ToolCallCount = 0
		s.ToolCallLimitReached = false
		s.ToolCallIDSeq = 0
		s.TotalCostUSD = 0
		s.History = nil
		return in, nil
	}
}

// NewInputConverterNode commits the user message and returns the turn snapshot.
func NewInputConverterNode(mm *conversations.MessagesManager) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input model.QueryInput) (*model.TurnInput, error) {
		turn, err := mm.PrepareTurn(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("prepare turn: %w", err)
		}
		return turn, nil
	})
}

// NewInputConverterPostHandler records the resolved service in state.
func NewInputConverterPostHandler() func(context.Context, *model.TurnInput, *model.AppState) (*model.TurnInput, error) {
	return func(ctx context.Context, out *model.TurnInput, s *model.AppState) (*model.TurnInput, error) {
		s.ServiceName = out.Service.Name
		return out, nil
	}
}

// NewBudgetOverrideNode runs budget negotiation before any generation.
func NewBudgetOverrideNode(policy model.BudgetPolicy) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, turn *model.TurnInput) (*model.TurnInput, error) {
		return applyBudgetPolicy(policy, turn), nil
	})
}

// applyBudgetPolicy returns a copy of turn with the override, or the settled
// flag, filled in. The override takes precedence over the input guard.
func applyBudgetPolicy(policy model.BudgetPolicy, turn *model.TurnInput) *model.TurnInput {
	out := *turn
	out.Service = policy.Lookup(turn.Service.Name)
	name := out.Service.Name

	if msg, ok := policy.BuildOverrideMessage(turn.History, turn.NewMessages, name); ok {
		out.Override = msg
		return &out
	}
	if msg, ok := policy.BuildUserInputGuardMessage(turn.History, turn.NewMessages, name); ok {
		out.Override = msg
		return &out
	}
	out.BudgetSettled = policy.BudgetSettled(turn.History, turn.NewMessages, name)
	return &out
}

// NewOverrideCondition routes to the override responder when negotiation answered the turn.
func NewOverrideCondition() func(context.Context, *model.TurnInput) (string, error) {
	return func(ctx context.Context, turn *model.TurnInput) (string, error) {
		if turn.Override != "" {
			logx.Debug().Str("conversation_id", turn.ConversationID).Msg("Routing to OverrideResponder - budget override issued")
			return NodeOverrideResponder, nil
		}
		logx.Debug().Str("conversation_id", turn.ConversationID).Bool("budget_settled", turn.BudgetSettled).
			Msg("Routing to Response Assembler - no override")
		return NodeResponseAssembler, nil
	}
}

// NewOverrideResponderNode surfaces the override verbatim and stores it as the assistant reply.
func NewOverrideResponderNode(mm *conversations.MessagesManager) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, turn *model.TurnInput) (*schema.Message, error) {
		if err := mm.SaveResponse(ctx, turn.ConversationID, turn.Override); err != nil {
			return nil, fmt.Errorf("save override response: %w", err)
		}
		logx.Info().
			Str("conversation_id", turn.ConversationID).
			Str("service", turn.Service.Name).
			Msg("Budget override sent")
		return schema.AssistantMessage(turn.Override, nil), nil
	})
}

// NewResponseAssemblerNode creates the ResponseAssembler node for building response context
func NewResponseAssemblerNode(
	mm *conversations.MessagesManager,
	responsePromptConfig *model.ResponsePromptConfig,
) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, turn *model.TurnInput) ([]*schema.Message, error) {
		respSysPrompt, err := prompts.RenderResponseSystem(ctx, *responsePromptConfig, turn)
		if err != nil {
			return nil, fmt.Errorf("generate response prompt: %w", err)
		}
		return mm.BuildResponseContext(turn, respSysPrompt), nil
	})
}

// NewResponseChatModelPreHandler creates the pre-handler for ResponseChatModel node
func NewResponseChatModelPreHandler(maxToolCalls int) func(context.Context, []*schema.Message, *model.AppState) ([]*schema.Message, error) {
	return func(ctx context.Context, in []*schema.Message, state *model.AppState) ([]*schema.Message, error) {
		fillToolCallID(in, state.History)

		state.History = append(state.History, in...)

		if checkAndMarkToolLimit(state, maxToolCalls) {
			maxToolCalls = normalizeMaxToolCalls(maxToolCalls)
			wrapUp := &schema.Message{
				Role: schema.System,
				Content: fmt.Sprintf(
					"SYSTEM NOTICE: You have reached the maximum tool call limit (%d). "+
						"Answer with the information you already have.",
					maxToolCalls,
				),
			}
			state.History = append(state.History, wrapUp)
		}

		return state.History, nil
	}
}

// fillToolCallID gives a trailing tool result the id of the latest assistant tool
// call when the provider left it empty.
func fillToolCallID(in []*schema.Message, history []*schema.Message) {
	if len(in) == 0 {
		return
	}
	last := in[len(in)-1]
	if last == nil || last.Role != schema.Tool || strings.TrimSpace(last.ToolCallID) != "" {
		return
	}
	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		if msg == nil || msg.Role != schema.Assistant || len(msg.ToolCalls) == 0 {
			continue
		}
		if id := msg.ToolCalls[0].ID; strings.TrimSpace(id) != "" {
			last.ToolCallID = id
		}
		return
	}
}

// NewResponseChatModelPostHandler creates the post-handler for ResponseChatModel node
func NewResponseChatModelPostHandler(
	mm *conversations.MessagesManager,
	modelName string,
) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		if out == nil {
			return nil, fmt.Errorf("response model returned no message")
		}
		recordUsage(out, state, NodeResponseChatModel, modelName)

		// Some providers omit tool_call IDs.
		for i := range out.ToolCalls {
			if strings.TrimSpace(out.ToolCalls[i].ID) == "" {
				state.ToolCallIDSeq++
				out.ToolCalls[i].ID = fmt.Sprintf("call_%d", state.ToolCallIDSeq)
			}
		}

		state.History = append(state.History, out)

		if len(out.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(out.ToolCalls)).Msg("Calling tools")
		}

		// Persist only final assistant content.
		if out.Role == schema.Assistant && (len(out.ToolCalls) == 0 || state.ToolCallLimitReached) && strings.TrimSpace(out.Content) != "" {
			if err := mm.SaveResponse(ctx, state.ConversationID, out.Content); err != nil {
				logx.Error().
					Str("conversation_id", state.ConversationID).
					Err(err).
					Msg("Error saving assistant response")
			}
		}

		return out, nil
	}
}

// NewToolExecutorCondition creates the condition function for tool execution routing
func NewToolExecutorCondition() func(context.Context, *schema.Message) (string, error) {
	return func(ctx context.Context, input *schema.Message) (string, error) {
		var limitReached bool
		_ = compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			limitReached = state.ToolCallLimitReached
			return nil
		})
		return toolRoute(input, limitReached), nil
	}
}

func toolRoute(input *schema.Message, limitReached bool) string {
	if limitReached {
		logx.Debug().Msg("Tool limit reached previously - routing to end")
		return compose.END
	}
	if input != nil && len(input.ToolCalls) > 0 {
		logx.Debug().Int("tool_count", len(input.ToolCalls)).Msg("Routing to ToolExecutor")
		return NodeToolExecutor
	}
	return compose.END
}

// NewToolExecutorPreHandler creates the pre-handler for ToolExecutor node
func NewToolExecutorPreHandler(maxToolCalls int) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, in *schema.Message, state *model.AppState) (*schema.Message, error) {
		exceeded := incrementToolCallAndCheck(state, maxToolCalls)

		logx.Debug().
			Int("tool_call_count", state.ToolCallCount).
			Str("conversation_id", state.ConversationID).
			Msg("Tool execution attempt")

		if exceeded {
			logx.Warn().
				Int("tool_call_count", state.ToolCallCount).
				Int("max_tool_calls", normalizeMaxToolCalls(maxToolCalls)).
				Str("conversation_id", state.ConversationID).
				Msg("Tool call limit exceeded - flagging and continuing")
		}
		return in, nil
	}
}
