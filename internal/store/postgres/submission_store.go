package postgres

import (
	"context"
	"fmt"

	"github.com/formcraft/formcraft-backend/internal/store"
	"github.com/formcraft/formcraft-backend/types"
)

// SubmissionStore implements store.SubmissionStore.
type SubmissionStore struct {
	db DBTX
}

func NewSubmissionStore(db DBTX) *SubmissionStore {
	return &SubmissionStore{db: db}
}

var _ store.SubmissionStore = (*SubmissionStore)(nil)

func (s *SubmissionStore) CreateSubmission(ctx context.Context, sub *types.Submission) error {
	data, err := marshalJSONB(sub.Data)
	if err != nil {
		return err
	}
	metadata, err := marshalJSONB(sub.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO form_submissions (form_id, data, metadata, submitter_ip, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text`

	err = s.db.QueryRow(ctx, query,
		sub.FormID,
		data,
		metadata,
		sub.SubmitterIP,
		sub.SubmittedAt,
	).Scan(&sub.ID)
	return mapError(err)
}

func (s *SubmissionStore) ListSubmissions(ctx context.Context, formID string) ([]types.Submission, error) {
	query := `
		SELECT id::text, form_id::text, data, metadata, COALESCE(submitter_ip, ''), submitted_at
		FROM form_submissions
		WHERE form_id = $1
		ORDER BY submitted_at DESC`

	rows, err := s.db.Query(ctx, query, formID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	subs := make([]types.Submission, 0)
	for rows.Next() {
		var (
			sub            types.Submission
			data, metadata []byte
		)
		if err := rows.Scan(&sub.ID, &sub.FormID, &data, &metadata, &sub.SubmitterIP, &sub.SubmittedAt); err != nil {
			return nil, err
		}
		if err := unmarshalJSONB(data, &sub.Data); err != nil {
			return nil, fmt.Errorf("submission %s data: %w", sub.ID, err)
		}
		if err := unmarshalJSONB(metadata, &sub.Metadata); err != nil {
			return nil, fmt.Errorf("submission %s metadata: %w", sub.ID, err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
