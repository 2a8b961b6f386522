package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/marketplace-assistant/server/internal/agent/graph/conversations"
	"github.com/marketplace-assistant/server/internal/agent/graph/nodes"
	"github.com/marketplace-assistant/server/internal/agent/graph/observers"
	"github.com/marketplace-assistant/server/internal/agent/graph/tools"
	"github.com/marketplace-assistant/server/internal/agent/model"
	logx "github.com/marketplace-assistant/server/pkg/logger"
)

// Runner is a thin wrapper to execute the compiled graph with the public QueryInput.
type Runner interface {
	Invoke(ctx context.Context, in model.QueryInput) (string, error)
}

// Config holds everything needed to compose the full response graph end-to-end.
// This is a convenience layer over GraphConfig that also constructs ChatModels and MessagesManager.
type Config struct {
	APIKey           string
	BaseURL          string
	ResponseModel    model.ResponseModelConfig
	ResponsePrompt   model.ResponsePromptConfig
	Conversation     model.ConversationConfig
	ConversationRepo model.ConversationRepository
	Catalog          model.ServiceCatalog
	BudgetPolicy     model.BudgetPolicy
}

// GraphConfig holds all configuration needed to build the graph
type GraphConfig struct {
	ChatModels           *nodes.ChatModels
	MessagesManager      *conversations.MessagesManager
	Catalog              model.ServiceCatalog
	BudgetPolicy         model.BudgetPolicy
	ResponsePromptConfig *model.ResponsePromptConfig
	ToolMaxCalls         int
}

// GraphBuilder handles the construction of the assistant turn graph
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.QueryInput, *schema.Message]
}

type graphRunner struct {
	runnable compose.Runnable[model.QueryInput, *schema.Message]
}

func (r *graphRunner) Invoke(ctx context.Context, in model.QueryInput) (string, error) {
	out, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		return "", err
	}
	if out == nil {
		return "", nil
	}
	if cost, ok := out.Extra["usage_cost_total_usd"].(float64); ok {
		logx.Info().Str("conversation_id", in.ConversationID).Float64("total_cost_usd", cost).Msg("Turn cost")
	}
	return out.Content, nil
}

// BuildResponseGraph composes ChatModels, MessagesManager, builds the graph, and returns a Runner.
func BuildResponseGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.ConversationRepo == nil {
		return nil, fmt.Errorf("conversation repo is nil")
	}

	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		RespConfig: &cfg.ResponseModel,
	})
	if err != nil {
		return nil, err
	}

	mm := conversations.NewMessagesManager(cfg.ConversationRepo, cfg.Conversation)

	runnable, err := BuildGraph(ctx, &GraphConfig{
		ChatModels:           cms,
		MessagesManager:      mm,
		Catalog:              cfg.Catalog,
		BudgetPolicy:         cfg.BudgetPolicy,
		ResponsePromptConfig: &cfg.ResponsePrompt,
		ToolMaxCalls:         cfg.Conversation.Tools.MaxCalls,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Response graph built successfully")
	return &graphRunner{runnable: runnable}, nil
}

// BuildGraph constructs and returns the compiled assistant graph
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.QueryInput, *schema.Message], error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.QueryInput, *schema.Message](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	if err := builder.setupTools(ctx); err != nil {
		return nil, err
	}
	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}
	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

func validateConfig(config *GraphConfig) error {
	switch {
	case config == nil:
		return fmt.Errorf("graph config is nil")
	case config.ChatModels == nil || config.ChatModels.Response == nil:
		return fmt.Errorf("chat models are not properly initialized")
	case config.MessagesManager == nil:
		return fmt.Errorf("messages manager is nil")
	case config.Catalog == nil || config.BudgetPolicy == nil:
		return fmt.Errorf("service catalog or budget policy is nil")
	case config.ResponsePromptConfig == nil:
		return fmt.Errorf("response prompt config is nil")
	}
	return nil
}

// setupTools configures business tools and binds them to the response model
func (b *GraphBuilder) setupTools(ctx context.Context) error {
	businessTools := tools.GetQueryTools(b.config.Catalog)
	toolInfos, err := tools.GetToolInfos(ctx, businessTools)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to get tool infos")
		return fmt.Errorf("failed to get tool infos: %w", err)
	}

	if err := b.config.ChatModels.BindToolsToResponseModel(ctx, toolInfos); err != nil {
		return err
	}

	toolsNode, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{
		Tools:               businessTools,
		ExecuteSequentially: true,
		UnknownToolsHandler: func(ctx context.Context, name, input string) (string, error) {
			logx.Warn().
				Str("tool_name", name).
				Str("arguments", input).
				Msg("Unknown or invalid tool call; returning fallback result")
			return fmt.Sprintf("{\"error\":\"unknown_tool\",\"name\":%q,\"note\":\"ignored\"}", name), nil
		},
		ToolArgumentsHandler: func(ctx context.Context, name, arguments string) (string, error) {
			return sanitizeToolArguments(name, arguments), nil
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Failed to create tools node")
		return fmt.Errorf("failed to create tools node: %w", err)
	}

	return b.graph.AddToolsNode(nodes.NodeToolExecutor, toolsNode,
		compose.WithStatePreHandler(nodes.NewToolExecutorPreHandler(b.config.ToolMaxCalls)),
	)
}

// sanitizeToolArguments normalizes model-produced arguments. It never fails:
// input that is not a JSON object is passed through unchanged.
func sanitizeToolArguments(name, arguments string) string {
	var m map[string]any
	if err := json.Unmarshal([]byte(arguments), &m); err != nil {
		return arguments
	}

	switch name {
	case tools.ToolGetServiceDetails:
		if v, ok := m["query"]; ok {
			switch vv := v.(type) {
			case string:
				m["query"] = strings.TrimSpace(vv)
			case nil:
				delete(m, "query")
			default:
				m["query"] = strings.TrimSpace(fmt.Sprint(v))
			}
		}
		if v, ok := m["max_results"]; ok {
			switch vv := v.(type) {
			case float64:
				m["max_results"] = clampInt(int(vv), 1, 20)
			case string:
				if n, err := strconv.Atoi(strings.TrimSpace(vv)); err == nil {
					m["max_results"] = clampInt(n, 1, 20)
				} else {
					delete(m, "max_results")
				}
			default:
				delete(m, "max_results")
			}
		}
	}

	b, err := json.Marshal(m)
	if err != nil {
		return arguments
	}
	return string(b)
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() error {
	mm := b.config.MessagesManager

	adders := []func() error{
		func() error {
			return b.graph.AddLambdaNode(nodes.NodeInputConverter,
				nodes.NewInputConverterNode(mm),
				compose.WithStatePreHandler(nodes.NewInputConverterPreHandler()),
				compose.WithStatePostHandler(nodes.NewInputConverterPostHandler()),
			)
		},
		func() error {
			return b.graph.AddLambdaNode(nodes.NodeBudgetOverride, nodes.NewBudgetOverrideNode(b.config.BudgetPolicy))
		},
		func() error {
			return b.graph.AddLambdaNode(nodes.NodeOverrideResponder, nodes.NewOverrideResponderNode(mm))
		},
		func() error {
			return b.graph.AddLambdaNode(nodes.NodeResponseAssembler,
				nodes.NewResponseAssemblerNode(mm, b.config.ResponsePromptConfig),
			)
		},
		func() error {
			return b.graph.AddChatModelNode(nodes.NodeResponseChatModel,
				b.config.ChatModels.Response,
				compose.WithStatePreHandler(nodes.NewResponseChatModelPreHandler(b.config.ToolMaxCalls)),
				compose.WithStatePostHandler(nodes.NewResponseChatModelPostHandler(mm, b.config.ChatModels.ResponseModelName)),
			)
		},
	}
	for _, add := range adders {
		if err := add(); err != nil {
			logx.Error().Err(err).Msg("Error adding node")
			return fmt.Errorf("error adding node: %w", err)
		}
	}
	return nil
}

// addEdges creates the main flow connections between nodes
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeInputConverter},
		{nodes.NodeInputConverter, nodes.NodeBudgetOverride},
		{nodes.NodeOverrideResponder, compose.END},
		{nodes.NodeResponseAssembler, nodes.NodeResponseChatModel},
		{nodes.NodeToolExecutor, nodes.NodeResponseChatModel},
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			return fmt.Errorf("error adding edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

// addBranches creates conditional routing branches
func (b *GraphBuilder) addBranches() error {
	overrideBranch := compose.NewGraphBranch(
		nodes.NewOverrideCondition(),
		map[string]bool{
			nodes.NodeOverrideResponder: true,
			nodes.NodeResponseAssembler: true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeBudgetOverride, overrideBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding budget override branch")
		return fmt.Errorf("error adding budget override branch: %w", err)
	}

	decisionBranch := compose.NewGraphBranch(
		nodes.NewToolExecutorCondition(),
		map[string]bool{
			nodes.NodeToolExecutor: true,
			compose.END:            true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeResponseChatModel, decisionBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding decision branch")
		return fmt.Errorf("error adding decision branch: %w", err)
	}

	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.QueryInput, *schema.Message], error) {
	// Limit total run steps to avoid infinite loops in branching or tool retries
	maxSteps := 10 + b.config.ToolMaxCalls*2
	if maxSteps < 20 {
		maxSteps = 20
	}

	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}

// clampInt returns v limited to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
