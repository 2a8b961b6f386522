package model

import (
	"github.com/cloudwego/eino/schema"
)

// ServiceContext describes the service a client selected, as seen by budget negotiation.
type ServiceContext struct {
	Name          string `json:"name"`
	MinimumBudget int64  `json:"minimum_budget"`
	Currency      string `json:"currency"`
}

// ServiceCatalog resolves a selected service name to its context.
type ServiceCatalog interface {
	Lookup(name string) ServiceContext
	Services() []ServiceContext
}

// BudgetPolicy is the budget negotiation surface the assistant pipeline consults each turn.
type BudgetPolicy interface {
	BuildOverrideMessage(history, messages []*schema.Message, serviceName string) (string, bool)
	BuildUserInputGuardMessage(history, messages []*schema.Message, serviceName string) (string, bool)
	BudgetSettled(history, messages []*schema.Message, serviceName string) bool
	Lookup(serviceName string) ServiceContext
}
