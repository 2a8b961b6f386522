package model

import (
	"github.com/cloudwego/eino/schema"
)

// AppState stores per-invocation state for the Eino Graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as you never touch it outside handlers.
type AppState struct {
	ConversationID       string
	ServiceName          string
	History              []*schema.Message // mutated only inside Eino state handlers
	ToolCallCount        int
	ToolCallLimitReached bool
	ToolCallIDSeq        int // local sequence to synthesize tool_call_id when provider omits

	// Accumulated total LLM cost (USD) across model invocations for this query
	TotalCostUSD float64
}

// QueryInput represents the input for processing user queries.
type QueryInput struct {
	ConversationID string `json:"conversation_id"`
	ServiceName    string `json:"service_name,omitempty"`
	Query          string `json:"query"`
}

// TurnInput is the snapshot of one user turn handed to the budget nodes.
// History holds committed messages only; NewMessages holds the turn being processed.
type TurnInput struct {
	ConversationID string
	Service        ServiceContext
	History        []*schema.Message
	NewMessages    []*schema.Message

	// Override is set when budget negotiation answers the turn itself.
	Override string
	// BudgetSettled tells the response prompt not to ask for the budget again.
	BudgetSettled bool
}
