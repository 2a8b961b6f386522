package conversations

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/cloudwego/eino/schema"

	"github.com/marketplace-assistant/server/internal/agent/model"
	errx "github.com/marketplace-assistant/server/internal/core/error"
)

const maxQueryLen = 10000

type MessagesManager struct {
	conversationRepo model.ConversationRepository
	historyMaxTurns  int
}

func NewMessagesManager(conversationRepo model.ConversationRepository, config model.ConversationConfig) *MessagesManager {
	return &MessagesManager{
		conversationRepo: conversationRepo,
		historyMaxTurns:  config.History.MaxTurns,
	}
}

// ValidateQuery rejects input the pipeline cannot process.
func ValidateQuery(in model.QueryInput) error {
	if strings.TrimSpace(in.ConversationID) == "" {
		return errx.InvalidInput("conversation id is empty")
	}
	if !utf8.ValidString(in.Query) {
		return errx.InvalidInput("query is not valid utf-8")
	}
	if n := utf8.RuneCountInString(in.Query); n > maxQueryLen {
		return errx.InvalidInput("query too long: %d > %d characters", n, maxQueryLen)
	}
	return nil
}

// =========== Turn preparation ===========

// PrepareTurn loads the committed history, resolves the selected service and then
// commits the user message. The returned TurnInput keeps the new message apart
// from the history it was loaded with.
func (cm *MessagesManager) PrepareTurn(ctx context.Context, in model.QueryInput) (*model.TurnInput, error) {
	if err := ValidateQuery(in); err != nil {
		return nil, err
	}

	history, err := cm.conversationRepo.LoadHistory(ctx, in.ConversationID)
	if err != nil {
		return nil, err
	}

	serviceName := strings.TrimSpace(in.ServiceName)
	if serviceName != "" {
		if err := cm.conversationRepo.SetService(ctx, in.ConversationID, serviceName); err != nil {
			return nil, err
		}
	} else if serviceName, err = cm.conversationRepo.GetService(ctx, in.ConversationID); err != nil {
		return nil, err
	}

	userMsg := schema.UserMessage(in.Query)
	if err := cm.conversationRepo.AddMessage(ctx, in.ConversationID, userMsg); err != nil {
		return nil, err
	}

	return &model.TurnInput{
		ConversationID: in.ConversationID,
		Service:        model.ServiceContext{Name: serviceName},
		History:        history.Messages,
		NewMessages:    []*schema.Message{userMsg},
	}, nil
}

// BuildResponseContext prepends the system prompt to the most recent turns.
func (cm *MessagesManager) BuildResponseContext(turn *model.TurnInput, systemPrompt string) []*schema.Message {
	transcript := make([]*schema.Message, 0, len(turn.History)+len(turn.NewMessages))
	transcript = append(transcript, turn.History...)
	transcript = append(transcript, turn.NewMessages...)

	recent := trimTail(transcript, cm.historyMaxTurns)
	messages := make([]*schema.Message, 0, len(recent)+1)
	messages = append(messages, schema.SystemMessage(systemPrompt))
	for _, msg := range recent {
		if msg == nil || (msg.Role != schema.User && msg.Role != schema.Assistant) {
			continue
		}
		messages = append(messages, msg)
	}
	return messages
}

func (cm *MessagesManager) SaveResponse(ctx context.Context, conversationID string, content string) error {
	assistantMsg := schema.AssistantMessage(content, nil)
	return cm.conversationRepo.AddMessage(ctx, conversationID, assistantMsg)
}

// ====================== Helper function ======================
func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if maxTurns <= 0 || len(messages) <= maxTurns {
		return messages
	}
	return messages[len(messages)-maxTurns:]
}
