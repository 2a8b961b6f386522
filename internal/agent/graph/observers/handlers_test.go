package observers

import (
	"context"
	"errors"
	"testing"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAllCallbacks(t *testing.T) {
	require.NotNil(t, NewAllCallbacks())
}

func TestLastUserContent(t *testing.T) {
	msgs := []*schema.Message{
		schema.UserMessage("first"),
		schema.AssistantMessage("reply", nil),
		schema.UserMessage("  INR 5000 "),
		nil,
	}
	assert.Equal(t, "INR 5000", lastUserContent(msgs))
	assert.Empty(t, lastUserContent(nil))
}

func TestHandlersReturnContext(t *testing.T) {
	ctx := context.Background()
	info := &einocb.RunInfo{Name: "test"}

	assert.Equal(t, ctx, newModelHandler().OnError(ctx, info, errors.New("boom")))
	assert.Equal(t, ctx, newToolHandler().OnError(ctx, info, errors.New("boom")))
	assert.Equal(t, ctx, newPromptHandler().OnError(ctx, info, errors.New("boom")))
}
