// Package budget decides, turn by turn, how the assistant reacts to a client's
// stated project budget. All decisions are re-derived from the transcript, so
// the same history always yields the same answer and nothing is stored.
package budget

import (
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/marketplace-assistant/server/internal/agent/model"
	logx "github.com/marketplace-assistant/server/pkg/logger"
)

// Decision is the outcome of the policy for one turn.
type Decision int

const (
	DecisionNone Decision = iota
	DecisionAcknowledge
	DecisionWarn
	DecisionAcceptLimitedScope
)

func (d Decision) String() string {
	switch d {
	case DecisionAcknowledge:
		return "acknowledge"
	case DecisionWarn:
		return "warn_below_minimum"
	case DecisionAcceptLimitedScope:
		return "accept_limited_scope"
	default:
		return "none"
	}
}

// Decide applies the negotiation policy to a scanned state.
func Decide(st State) Decision {
	if !st.BudgetQuestionAsked || st.LastStatedAmount == nil {
		return DecisionNone
	}
	if meetsMinimum(st) {
		if st.AcknowledgementAlreadyShown {
			return DecisionNone
		}
		return DecisionAcknowledge
	}
	if !st.WarningAlreadyShown {
		return DecisionWarn
	}
	if st.LimitedScopeAcceptanceAlreadyShown || !st.RepliedAfterWarning {
		return DecisionNone
	}
	if st.UserDeclinedToIncrease || st.RestatedSameAmount {
		return DecisionAcceptLimitedScope
	}
	return DecisionNone
}

// Settled reports whether negotiation for the current amount is over and the
// budget must not be asked for again.
func Settled(st State) bool {
	if st.LastStatedAmount == nil {
		return false
	}
	if meetsMinimum(st) {
		return st.AcknowledgementAlreadyShown
	}
	return st.LimitedScopeAcceptanceAlreadyShown ||
		(st.WarningAlreadyShown && st.RepliedAfterWarning && st.UserDeclinedToIncrease)
}

// foreignCurrency reports an amount stated in a currency other than the
// service's. Amounts are never converted.
func foreignCurrency(st State) bool {
	b := st.LastStatedAmount
	return b != nil && b.Currency != "" && st.Service.Currency != "" && !strings.EqualFold(b.Currency, st.Service.Currency)
}

// meetsMinimum compares the stated amount with the service minimum. A foreign
// currency amount cannot be compared and is only acknowledged.
func meetsMinimum(st State) bool {
	return foreignCurrency(st) || st.LastStatedAmount.Amount >= st.Service.MinimumBudget
}

// Negotiator is the entry point used by the assistant pipeline. It is safe for
// concurrent use.
type Negotiator struct {
	catalog model.ServiceCatalog
}

func NewNegotiator(catalog model.ServiceCatalog) *Negotiator {
	return &Negotiator{catalog: catalog}
}

// BuildOverrideMessage returns the message that must replace normal generation
// for this turn, or ok == false to let the assistant answer normally.
func (n *Negotiator) BuildOverrideMessage(history, messages []*schema.Message, serviceName string) (string, bool) {
	st := Scan(history, messages, n.catalog.Lookup(serviceName))
	decision := Decide(st)

	var out string
	switch decision {
	case DecisionAcknowledge:
		out = acknowledgementMessage(st)
	case DecisionWarn:
		out = warningMessage(st)
	case DecisionAcceptLimitedScope:
		out = limitedScopeMessage(st)
	}

	ev := logx.Debug().
		Str("service", st.Service.Name).
		Int64("minimum", st.Service.MinimumBudget).
		Str("decision", decision.String())
	if st.LastStatedAmount != nil {
		ev = ev.Int64("amount", st.LastStatedAmount.Amount).Str("currency", st.LastStatedAmount.Currency)
	}
	ev.Msg("Budget negotiation evaluated")

	return out, out != ""
}

// BudgetSettled reports whether the pipeline should stop collecting the budget.
func (n *Negotiator) BudgetSettled(history, messages []*schema.Message, serviceName string) bool {
	return Settled(Scan(history, messages, n.catalog.Lookup(serviceName)))
}

// Lookup exposes the service context the negotiator evaluates against.
func (n *Negotiator) Lookup(serviceName string) model.ServiceContext {
	return n.catalog.Lookup(serviceName)
}

var _ model.BudgetPolicy = (*Negotiator)(nil)
