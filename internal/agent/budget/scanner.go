package budget

import (
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/marketplace-assistant/server/internal/agent/model"
)

// State is the negotiation state projected from a transcript. It is derived on
// every call and never stored.
type State struct {
	Service model.ServiceContext

	BudgetQuestionAsked bool
	// LastStatedAmount is the most recent amount the user gave after the latest
	// budget question, or nil.
	LastStatedAmount *ParsedBudget

	// The *AlreadyShown flags only count messages sent since the user first
	// stated LastStatedAmount; a different amount starts a fresh cycle.
	WarningAlreadyShown                bool
	AcknowledgementAlreadyShown        bool
	LimitedScopeAcceptanceAlreadyShown bool

	// UserDeclinedToIncrease is read from the most recent user message only.
	UserDeclinedToIncrease bool
	// RestatedSameAmount is true when the latest user message repeats the
	// current amount after it was already warned about.
	RestatedSameAmount bool
	// RepliedAfterWarning is true when the latest user message follows the
	// most recent warning of the current cycle.
	RepliedAfterWarning bool

	LatestAssistantClass MessageClass
	LatestUserContent    string
	HasUserMessage       bool
}

type statement struct {
	index  int
	budget ParsedBudget
}

// Scan walks history followed by the not yet committed messages and builds the
// negotiation state. Neither slice is modified.
func Scan(history, messages []*schema.Message, svc model.ServiceContext) State {
	transcript := make([]*schema.Message, 0, len(history)+len(messages))
	transcript = append(transcript, history...)
	transcript = append(transcript, messages...)

	st := State{Service: svc}

	latestUser, latestAssistant := -1, -1
	for i := len(transcript) - 1; i >= 0 && (latestUser < 0 || latestAssistant < 0); i-- {
		m := transcript[i]
		if m == nil {
			continue
		}
		switch {
		case m.Role == schema.User && latestUser < 0:
			latestUser = i
			st.HasUserMessage = true
			st.LatestUserContent = m.Content
			st.UserDeclinedToIncrease = DeclinesIncrease(m.Content)
		case m.Role == schema.Assistant && latestAssistant < 0 && strings.TrimSpace(m.Content) != "":
			latestAssistant = i
			st.LatestAssistantClass = ClassifyAssistant(m.Content)
		}
	}

	question := -1
	for i := len(transcript) - 1; i >= 0; i-- {
		m := transcript[i]
		if m != nil && m.Role == schema.Assistant && ClassifyAssistant(m.Content) == ClassBudgetQuestion {
			question = i
			break
		}
	}
	if question < 0 {
		return st
	}
	st.BudgetQuestionAsked = true

	var stated []statement
	for i := question + 1; i < len(transcript); i++ {
		m := transcript[i]
		if m == nil || m.Role != schema.User {
			continue
		}
		if pb, ok := ParseAmount(m.Content); ok {
			if pb.Currency == "" {
				pb.Currency = svc.Currency
			}
			stated = append(stated, statement{index: i, budget: pb})
		}
	}
	if len(stated) == 0 {
		return st
	}

	current := stated[len(stated)-1]
	st.LastStatedAmount = &current.budget

	// The cycle starts at the first statement of the trailing run of equal amounts.
	cycleStart := current.index
	for k := len(stated) - 2; k >= 0; k-- {
		if !sameAmount(stated[k].budget, current.budget) {
			break
		}
		cycleStart = stated[k].index
	}

	lastWarning := -1
	for i := cycleStart + 1; i < len(transcript); i++ {
		m := transcript[i]
		if m == nil || m.Role != schema.Assistant {
			continue
		}
		switch ClassifyAssistant(m.Content) {
		case ClassAcknowledgement:
			st.AcknowledgementAlreadyShown = true
		case ClassWarning:
			st.WarningAlreadyShown = true
			lastWarning = i
		case ClassLimitedScope:
			st.LimitedScopeAcceptanceAlreadyShown = true
		}
	}

	if lastWarning >= 0 && latestUser > lastWarning {
		st.RepliedAfterWarning = true
		st.RestatedSameAmount = latestUser == current.index
	}
	return st
}

func sameAmount(a, b ParsedBudget) bool {
	return a.Amount == b.Amount && strings.EqualFold(a.Currency, b.Currency)
}
