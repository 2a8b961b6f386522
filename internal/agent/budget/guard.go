package budget

import (
	"strings"

	"github.com/cloudwego/eino/schema"

	logx "github.com/marketplace-assistant/server/pkg/logger"
)

// BuildUserInputGuardMessage screens the incoming user input before normal
// generation. A user who answers the below-minimum warning by refusing to
// increase is always let through; only a blank input gets a nudge.
func (n *Negotiator) BuildUserInputGuardMessage(history, messages []*schema.Message, serviceName string) (string, bool) {
	st := Scan(history, messages, n.catalog.Lookup(serviceName))

	if st.LatestAssistantClass == ClassWarning && st.UserDeclinedToIncrease {
		logx.Debug().
			Str("service", st.Service.Name).
			Msg("User declined to increase budget after warning; not re-prompting")
		return "", false
	}

	if latestUserIn(messages) && strings.TrimSpace(st.LatestUserContent) == "" {
		return blankInputMessage(st), true
	}
	return "", false
}

func latestUserIn(messages []*schema.Message) bool {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i] != nil && messages[i].Role == schema.User {
			return true
		}
	}
	return false
}
