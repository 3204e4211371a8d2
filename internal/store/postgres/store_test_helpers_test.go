package postgres

import (
	"testing"
	"time"

	"github.com/formcraft/formcraft-backend/types"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

var formColumnLabels = []string{
	"id", "name", "description", "fields", "status", "is_public", "settings",
	"template_id", "created_by", "created_at", "updated_at", "published_at", "archived_at",
}

var fixedTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func formRow(id string, status types.FormStatus, publishedAt *time.Time) []any {
	return []any{
		id, "Contact", "Reach us",
		[]byte(`[{"id":"name","type":"text","label":"Name","validation":{"required":true}}]`),
		string(status), false, []byte(`{"notifyEmail":"owner@example.com"}`),
		nil, "user-1", fixedTime, fixedTime, publishedAt, nil,
	}
}
