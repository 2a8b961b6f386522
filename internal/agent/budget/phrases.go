package budget

import (
	"regexp"
	"strings"
)

// BudgetQuestionPhrase identifies the assistant's canonical budget question.
const BudgetQuestionPhrase = "budget for this project"

// Signature phrases of the override messages. Callers and stored transcripts
// depend on these literally.
const (
	acknowledgementPhrase = "budget is noted"
	warningPhrase         = "below the standard minimum requirement"
	warningQuestion       = "could you increase your budget"
	limitedScopePhrase    = "scope, features, and quality of work may be limited"
)

// MessageClass tags an assistant message by the override it carries.
type MessageClass int

const (
	ClassNone MessageClass = iota
	ClassBudgetQuestion
	ClassAcknowledgement
	ClassWarning
	ClassLimitedScope
)

func (c MessageClass) String() string {
	switch c {
	case ClassBudgetQuestion:
		return "budget_question"
	case ClassAcknowledgement:
		return "acknowledgement"
	case ClassWarning:
		return "warning"
	case ClassLimitedScope:
		return "limited_scope"
	default:
		return "none"
	}
}

var acknowledgementRe = regexp.MustCompile(`(?i)budget is noted|budget noted|budget confirmed`)

// ClassifyAssistant reports which override class an assistant message belongs to.
// The limited-scope notice is checked first since it may restate the minimum.
func ClassifyAssistant(content string) MessageClass {
	lc := strings.ToLower(content)
	switch {
	case strings.Contains(lc, limitedScopePhrase):
		return ClassLimitedScope
	case strings.Contains(lc, warningPhrase) && strings.Contains(lc, warningQuestion):
		return ClassWarning
	case acknowledgementRe.MatchString(content):
		return ClassAcknowledgement
	case strings.Contains(lc, BudgetQuestionPhrase):
		return ClassBudgetQuestion
	default:
		return ClassNone
	}
}

var declineRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:can't|cant|cannot|can not|unable to|not able to|won't be able to|couldn't|could not|won't|will not)\s+(?:\w+\s+)?(?:increase|raise|go (?:any )?(?:higher|above|beyond|up)|stretch|extend|spend more|afford more|pay more)`),
	regexp.MustCompile(`(?i)\b(?:that's|that is|this is|it's|it is)\s+(?:my|our)\s+(?:max|maximum|limit|final budget|final offer)\b`),
	regexp.MustCompile(`(?i)\bno (?:more|extra|additional) budget\b`),
	regexp.MustCompile(`(?i)\b(?:budget|amount) is fixed\b`),
}

// DeclinesIncrease reports whether text says the budget cannot be raised.
func DeclinesIncrease(text string) bool {
	normalized := strings.NewReplacer("’", "'", "‘", "'").Replace(text)
	for _, re := range declineRes {
		if re.MatchString(normalized) {
			return true
		}
	}
	return false
}
