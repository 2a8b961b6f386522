package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeclinesIncrease(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"I can't increase the budget.", true},
		{"I cannot increase it.", true},
		{"we can not increase that", true},
		{"Sorry, unable to increase right now", true},
		{"I can’t really increase it", true},
		{"We won't be able to go higher", true},
		{"That's my max", true},
		{"The budget is fixed.", true},
		{"Sure, I can increase it to 12000", false},
		{"We also need analytics integration.", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, DeclinesIncrease(tt.text))
		})
	}
}

func TestClassifyAssistant(t *testing.T) {
	st := State{
		Service:          testCatalog().Lookup("Website Development"),
		LastStatedAmount: &ParsedBudget{Amount: 5000, Currency: "INR"},
	}

	assert.Equal(t, ClassBudgetQuestion, ClassifyAssistant(budgetQuestion))
	assert.Equal(t, ClassAcknowledgement, ClassifyAssistant(acknowledgementMessage(st)))
	assert.Equal(t, ClassAcknowledgement, ClassifyAssistant("Budget confirmed."))
	assert.Equal(t, ClassWarning, ClassifyAssistant(warningMessage(st)))
	assert.Equal(t, ClassLimitedScope, ClassifyAssistant(limitedScopeMessage(st)))
	assert.Equal(t, ClassNone, ClassifyAssistant("Below the standard minimum requirement, sadly."))
	assert.Equal(t, ClassNone, ClassifyAssistant("Tell me more about the features you need."))
}
