package conversations

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketplace-assistant/server/internal/agent/model"
	"github.com/marketplace-assistant/server/internal/agent/repo"
	errx "github.com/marketplace-assistant/server/internal/core/error"
)

func newTestManager(t *testing.T, maxTurns int) (*MessagesManager, *repo.RedisConversationRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := repo.NewRedisConversationRepository(rdb, time.Minute)
	var cfg model.ConversationConfig
	cfg.History.MaxTurns = maxTurns
	return NewMessagesManager(r, cfg), r
}

func TestValidateQuery(t *testing.T) {
	tests := []struct {
		name    string
		in      model.QueryInput
		wantErr bool
	}{
		{"ok", model.QueryInput{ConversationID: "c", Query: "INR 5000"}, false},
		{"blank query is allowed", model.QueryInput{ConversationID: "c", Query: "  "}, false},
		{"missing conversation", model.QueryInput{Query: "hi"}, true},
		{"invalid utf8", model.QueryInput{ConversationID: "c", Query: "\xff"}, true},
		{"too long", model.QueryInput{ConversationID: "c", Query: strings.Repeat("a", maxQueryLen+1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuery(tt.in)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, errx.StatusOf(err))
		})
	}
}

func TestPrepareTurn_SeparatesHistoryFromNewMessage(t *testing.T) {
	ctx := context.Background()
	mm, r := newTestManager(t, 10)
	require.NoError(t, r.AddMessage(ctx, "c1", schema.AssistantMessage("What is your budget for this project?", nil)))

	turn, err := mm.PrepareTurn(ctx, model.QueryInput{ConversationID: "c1", ServiceName: "Logo Design", Query: "INR 5000"})
	require.NoError(t, err)
	require.Len(t, turn.History, 1)
	require.Len(t, turn.NewMessages, 1)
	assert.Equal(t, "INR 5000", turn.NewMessages[0].Content)
	assert.Equal(t, "Logo Design", turn.Service.Name)

	n, err := r.GetMessageCount(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// The service is remembered for later turns.
	turn, err = mm.PrepareTurn(ctx, model.QueryInput{ConversationID: "c1", Query: "I can't increase it"})
	require.NoError(t, err)
	assert.Equal(t, "Logo Design", turn.Service.Name)
	assert.Len(t, turn.History, 2)
}

func TestPrepareTurn_InvalidInputIsNotStored(t *testing.T) {
	ctx := context.Background()
	mm, r := newTestManager(t, 10)

	_, err := mm.PrepareTurn(ctx, model.QueryInput{ConversationID: " ", Query: "hi"})
	require.Error(t, err)

	n, err := r.GetMessageCount(ctx, " ")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBuildResponseContext(t *testing.T) {
	mm, _ := newTestManager(t, 2)
	turn := &model.TurnInput{
		History: []*schema.Message{
			schema.AssistantMessage("What is your budget for this project?", nil),
			schema.UserMessage("INR 15000"),
			schema.AssistantMessage("Thank you! Your budget is noted.", nil),
		},
		NewMessages: []*schema.Message{schema.UserMessage("We also need analytics integration.")},
	}

	msgs := mm.BuildResponseContext(turn, "system prompt")
	require.Len(t, msgs, 3)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, "Thank you! Your budget is noted.", msgs[1].Content)
	assert.Equal(t, "We also need analytics integration.", msgs[2].Content)
	assert.Len(t, turn.History, 3)
}

func TestSaveResponse(t *testing.T) {
	ctx := context.Background()
	mm, r := newTestManager(t, 10)

	require.NoError(t, mm.SaveResponse(ctx, "c9", "Your budget is noted."))
	h, err := r.LoadHistory(ctx, "c9")
	require.NoError(t, err)
	require.Len(t, h.Messages, 1)
	assert.Equal(t, schema.Assistant, h.Messages[0].Role)
}
