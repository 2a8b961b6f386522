package budget

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatMoney renders an amount as "INR 15,000". Rupee amounts use Indian digit grouping.
func FormatMoney(amount int64, code string) string {
	tag := language.English
	if code == "INR" {
		tag = language.MustParse("en-IN")
	}
	p := message.NewPrinter(tag)
	if code == "" {
		return p.Sprintf("%d", amount)
	}
	return code + " " + p.Sprintf("%d", amount)
}

func serviceLabel(name string) string {
	if strings.TrimSpace(name) == "" {
		return "this service"
	}
	return strings.TrimSpace(name)
}

func acknowledgementMessage(st State) string {
	b := st.LastStatedAmount
	if foreignCurrency(st) {
		return fmt.Sprintf(
			"Thank you! Your budget is noted: %s for %s. The standard minimum for this service is %s, so we'll confirm the converted amount with freelancers before matching.",
			FormatMoney(b.Amount, b.Currency),
			serviceLabel(st.Service.Name),
			FormatMoney(st.Service.MinimumBudget, st.Service.Currency),
		)
	}
	return fmt.Sprintf(
		"Thank you! Your budget is noted: %s for %s. We'll use it to match you with the right freelancers.",
		FormatMoney(b.Amount, b.Currency), serviceLabel(st.Service.Name),
	)
}

func warningMessage(st State) string {
	b := st.LastStatedAmount
	return fmt.Sprintf(
		"Your budget of %s is below the standard minimum requirement of %s for %s. Could you increase your budget to at least %s?",
		FormatMoney(b.Amount, b.Currency),
		FormatMoney(st.Service.MinimumBudget, st.Service.Currency),
		serviceLabel(st.Service.Name),
		FormatMoney(st.Service.MinimumBudget, st.Service.Currency),
	)
}

func limitedScopeMessage(st State) string {
	b := st.LastStatedAmount
	return fmt.Sprintf(
		"Understood. We will proceed with your budget of %s for %s. Please note that the scope, features, and quality of work may be limited at this budget.",
		FormatMoney(b.Amount, b.Currency), serviceLabel(st.Service.Name),
	)
}

func blankInputMessage(st State) string {
	return fmt.Sprintf("Please type your message so I can keep helping you with %s.", serviceLabel(st.Service.Name))
}
