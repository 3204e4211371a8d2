package postgres

import (
	"context"
	"fmt"

	"github.com/formcraft/formcraft-backend/internal/store"
	"github.com/formcraft/formcraft-backend/pkg/valueobjects"
	"github.com/formcraft/formcraft-backend/types"
	"github.com/jackc/pgx/v5"
)

const templateColumns = `id::text, name, description, fields, is_premium, price::text,
	preview_image_url, created_by, created_at, updated_at`

// TemplateStore implements store.TemplateStore.
type TemplateStore struct {
	db DBTX
}

func NewTemplateStore(db DBTX) *TemplateStore {
	return &TemplateStore{db: db}
}

var _ store.TemplateStore = (*TemplateStore)(nil)

func scanTemplate(row pgx.Row) (*types.FormTemplate, error) {
	var (
		t      types.FormTemplate
		fields []byte
		price  string
	)
	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &fields, &t.IsPremium, &price,
		&t.PreviewImageURL, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	if err := unmarshalJSONB(fields, &t.Fields); err != nil {
		return nil, fmt.Errorf("template %s fields: %w", t.ID, err)
	}
	if t.Fields == nil {
		t.Fields = types.Fields{}
	}
	if t.Price, err = valueobjects.ParseCredits(price); err != nil {
		return nil, fmt.Errorf("template %s price: %w", t.ID, err)
	}
	return &t, nil
}

func (s *TemplateStore) CreateTemplate(ctx context.Context, tmpl *types.FormTemplate) error {
	fields, err := marshalJSONB(tmpl.Fields)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO form_templates (name, description, fields, is_premium, price, preview_image_url, created_by)
		VALUES ($1, $2, $3, $4, $5::text::numeric, $6, $7)
		RETURNING id::text, created_at, updated_at`

	err = s.db.QueryRow(ctx, query,
		tmpl.Name,
		tmpl.Description,
		fields,
		tmpl.IsPremium,
		tmpl.Price.String(),
		tmpl.PreviewImageURL,
		tmpl.CreatedBy,
	).Scan(&tmpl.ID, &tmpl.CreatedAt, &tmpl.UpdatedAt)
	return mapError(err)
}

func (s *TemplateStore) GetTemplate(ctx context.Context, id string) (*types.FormTemplate, error) {
	return scanTemplate(s.db.QueryRow(ctx, `SELECT `+templateColumns+` FROM form_templates WHERE id = $1`, id))
}

func (s *TemplateStore) ListTemplates(ctx context.Context, filter types.TemplateFilter) ([]types.FormTemplate, error) {
	query := `SELECT ` + templateColumns + `
		FROM form_templates
		WHERE ($1::text = '' OR created_by = $1::text)
		ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, filter.CreatedBy)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	templates := make([]types.FormTemplate, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

func (s *TemplateStore) SetTemplatePremium(ctx context.Context, id, ownerID string, price valueobjects.Credits) (*types.FormTemplate, error) {
	query := `
		UPDATE form_templates
		SET is_premium = TRUE, price = $1::text::numeric, updated_at = NOW()
		WHERE id = $2 AND created_by = $3
		RETURNING ` + templateColumns

	return scanTemplate(s.db.QueryRow(ctx, query, price.String(), id, ownerID))
}
