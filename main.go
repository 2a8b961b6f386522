package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/marketplace-assistant/server/internal/agent/budget"
	"github.com/marketplace-assistant/server/internal/agent/graph"
	"github.com/marketplace-assistant/server/internal/agent/model"
	"github.com/marketplace-assistant/server/internal/agent/repo"
	"github.com/marketplace-assistant/server/internal/core"
	logx "github.com/marketplace-assistant/server/pkg/logger"
	pkgredis "github.com/marketplace-assistant/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the assistant,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Response     model.ResponseModelConfig
	Prompt       model.ResponsePromptConfig
	Conversation model.ConversationConfig
	Budget       model.BudgetConfig
}

func main() {
	logx.Init()
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		logx.Warn().Err(err).Msg("Could not load .env file")
	}

	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		logx.Fatal().Err(err).Msg("Failed to process environment config")
	}
	logx.Init(logx.LoggerOpts{
		Environment: core.ParseEnvironment(envCfg.Environment),
		Level:       envCfg.LogLevel,
	})

	rdb, err := envCfg.Redis.New(ctx)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
	}
	defer rdb.Close()
	logx.Info().Msg("Connected to Redis")

	ttl, err := time.ParseDuration(envCfg.Conversation.TTL)
	if err != nil {
		logx.Fatal().Err(err).Str("ttl", envCfg.Conversation.TTL).Msg("Invalid CONVERSATION_TTL")
	}

	catalog := budget.NewCatalog(envCfg.Budget)
	runner, err := graph.BuildResponseGraph(ctx, graph.Config{
		APIKey:           envCfg.APIKey,
		BaseURL:          envCfg.BaseURL,
		ResponseModel:    envCfg.Response,
		ResponsePrompt:   envCfg.Prompt,
		Conversation:     envCfg.Conversation,
		ConversationRepo: repo.NewRedisConversationRepository(rdb, ttl),
		Catalog:          catalog,
		BudgetPolicy:     budget.NewNegotiator(catalog),
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build graph")
	}

	turns := []struct {
		description string
		service     string
		query       string
	}{
		{description: "Project inquiry", service: "Website Development", query: "Hi, I need a website for my bakery."},
		{description: "Low budget", query: "INR 5000"},
		{description: "Declines to increase", query: "Sorry, I can't increase the budget."},
		{description: "Follow-up", query: "When can a freelancer start?"},
	}

	conversationID := "demo-" + uuid.NewString()
	for i, turn := range turns {
		logx.Info().Int("turn", i+1).Str("description", turn.description).Str("query", turn.query).Msg("Sending turn")

		response, err := runner.Invoke(ctx, model.QueryInput{
			ConversationID: conversationID,
			ServiceName:    turn.service,
			Query:          turn.query,
		})
		if err != nil {
			logx.Fatal().Err(err).Int("turn", i+1).Msg("Failed to invoke graph")
		}

		logx.Info().Int("turn", i+1).Str("response", response).Msg("Assistant replied")
	}
}
