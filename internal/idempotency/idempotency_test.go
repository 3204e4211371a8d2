package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const key = "idem:submit:form-1:abc"

func TestReserve(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(mock redismock.ClientMock)
		want   Reservation
		errMsg string
	}{
		{
			name: "fresh key",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectSetNX(key, "pending", PendingTTL).SetVal(true)
			},
			want: Reservation{State: Reserved},
		},
		{
			name: "completed key replays",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectSetNX(key, "pending", PendingTTL).SetVal(false)
				mock.ExpectGet(key).SetVal("done:sub-9")
			},
			want: Reservation{State: Completed, SubmissionID: "sub-9"},
		},
		{
			name: "in flight",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectSetNX(key, "pending", PendingTTL).SetVal(false)
				mock.ExpectGet(key).SetVal("pending")
			},
			want: Reservation{State: InFlight},
		},
		{
			name: "redis down",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectSetNX(key, "pending", PendingTTL).SetErr(errors.New("dial tcp: refused"))
			},
			errMsg: "reserve idempotency key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mock := redismock.NewClientMock()
			tt.setup(mock)

			got, err := NewStore(client, 0).Reserve(context.Background(), "form-1", "abc")
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCompleteAndRelease(t *testing.T) {
	client, mock := redismock.NewClientMock()
	s := NewStore(client, time.Hour)

	mock.ExpectSet(key, "done:sub-1", time.Hour).SetVal("OK")
	mock.ExpectDel(key).SetVal(1)

	require.NoError(t, s.Complete(context.Background(), "form-1", "abc", "sub-1"))
	require.NoError(t, s.Release(context.Background(), "form-1", "abc"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_PendingExpiresBeforeDone(t *testing.T) {
	client, mock := redismock.NewClientMock()
	s := NewStore(client, 24*time.Hour)

	mock.ExpectSetNX(key, "pending", PendingTTL).SetVal(true)
	mock.ExpectSet(key, "done:sub-2", 24*time.Hour).SetVal("OK")

	res, err := s.Reserve(context.Background(), "form-1", "abc")
	require.NoError(t, err)
	assert.Equal(t, Reserved, res.State)
	require.NoError(t, s.Complete(context.Background(), "form-1", "abc", "sub-2"))
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Less(t, PendingTTL, 24*time.Hour)
}
