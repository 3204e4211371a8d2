package postgres

import (
	"context"
	"time"

	"github.com/formcraft/formcraft-backend/internal/store"
	"github.com/formcraft/formcraft-backend/types"
)

// EmbedLogStore implements store.EmbedLogStore.
type EmbedLogStore struct {
	db DBTX
}

func NewEmbedLogStore(db DBTX) *EmbedLogStore {
	return &EmbedLogStore{db: db}
}

var _ store.EmbedLogStore = (*EmbedLogStore)(nil)

func (s *EmbedLogStore) CreateEmbedLog(ctx context.Context, entry *types.EmbedLog) error {
	if entry.EventType == "" {
		entry.EventType = types.EmbedEventLoad
	}
	query := `
		INSERT INTO embed_logs (embedding_key, referer, user_agent, event_type)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text, created_at`

	err := s.db.QueryRow(ctx, query, entry.EmbeddingKey, entry.Referer, entry.UserAgent, entry.EventType).
		Scan(&entry.ID, &entry.CreatedAt)
	return mapError(err)
}

func (s *EmbedLogStore) PurgeEmbedLogs(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM embed_logs WHERE created_at < $1`, before)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}
