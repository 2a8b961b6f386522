package errx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "boom", New(nil, http.StatusInternalServerError, "boom").Error())
	assert.Equal(t, "invalid input: conversation id is empty", InvalidInput("conversation id is empty").Error())
}

func TestWrapRedis(t *testing.T) {
	assert.NoError(t, WrapRedis(nil))

	notFound := WrapRedis(redis.Nil)
	assert.True(t, errors.Is(notFound, redis.Nil))
	assert.Equal(t, http.StatusNotFound, StatusOf(notFound))

	cause := errors.New("connection refused")
	wrapped := fmt.Errorf("load history: %w", WrapRedis(cause))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, http.StatusBadGateway, StatusOf(wrapped))

	var appErr *AppError
	require.ErrorAs(t, wrapped, &appErr)
	assert.Equal(t, RedisErrorMessage, appErr.Message)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("plain")))
	assert.Equal(t, http.StatusBadRequest, StatusOf(InvalidInput("query is %s", "blank")))
}
