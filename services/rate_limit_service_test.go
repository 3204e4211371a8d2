package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitService_CheckLimit(t *testing.T) {
	ctx := context.Background()
	window := time.Minute

	t.Run("under limit", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectTxPipeline()
		mock.ExpectIncr("ratelimit:submit:203.0.113.7").SetVal(3)
		mock.ExpectExpire("ratelimit:submit:203.0.113.7", window).SetVal(true)
		mock.ExpectTxPipelineExec()

		allowed, retry, err := NewRateLimitService(client).CheckLimit(ctx, "submit:203.0.113.7", 5, window)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Zero(t, retry)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("over limit reports ttl", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectTxPipeline()
		mock.ExpectIncr("ratelimit:submit:ip").SetVal(6)
		mock.ExpectExpire("ratelimit:submit:ip", window).SetVal(true)
		mock.ExpectTxPipelineExec()
		mock.ExpectTTL("ratelimit:submit:ip").SetVal(42 * time.Second)

		allowed, retry, err := NewRateLimitService(client).CheckLimit(ctx, "submit:ip", 5, window)
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Equal(t, 42*time.Second, retry)
	})

	t.Run("redis error", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectTxPipeline()
		mock.ExpectIncr("ratelimit:submit:ip").SetErr(errors.New("connection refused"))

		_, _, err := NewRateLimitService(client).CheckLimit(ctx, "submit:ip", 5, window)
		assert.Error(t, err)
	})
}
