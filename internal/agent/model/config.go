package model

// ================ Config ================
type ConversationConfig struct {
	TTL     string `envconfig:"CONVERSATION_TTL" default:"30m"`
	History struct {
		MaxTurns int `envconfig:"CONVERSATION_HISTORY_MAX_TURNS" default:"20"`
	}
	Tools struct {
		MaxCalls int `envconfig:"CONVERSATION_TOOL_MAX_CALLS" default:"5"`
	}
}

type ResponseModelConfig struct {
	Model       string  `envconfig:"RESPONSE_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"RESPONSE_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"RESPONSE_TEMPERATURE" default:"0.4"`
}

type ResponsePromptConfig struct {
	BusinessType string `envconfig:"PROMPT_BUSINESS_TYPE" default:"freelance marketplace"`
	BusinessName string `envconfig:"PROMPT_BUSINESS_NAME" default:"GigBridge"`
}

// BudgetConfig configures the service catalog used by budget negotiation.
// ServiceMinimums is read as "Name:amount,Name:amount".
type BudgetConfig struct {
	Currency        string           `envconfig:"BUDGET_CURRENCY" default:"INR"`
	DefaultMinimum  int64            `envconfig:"BUDGET_DEFAULT_MINIMUM" default:"10000"`
	ServiceMinimums map[string]int64 `envconfig:"BUDGET_SERVICE_MINIMUMS" default:"Website Development:10000,Mobile App Development:25000,Logo Design:3000,SEO Optimization:8000"`
}
