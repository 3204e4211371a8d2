package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/formcraft/formcraft-backend/internal/store"
	"github.com/formcraft/formcraft-backend/types"
	"github.com/jackc/pgx/v5"
)

var formColumnNames = []string{
	"id::text", "name", "description", "fields", "status", "is_public", "settings",
	"template_id::text", "created_by", "created_at", "updated_at", "published_at", "archived_at",
}

// formColumns renders the form select list, optionally qualified by a table alias.
func formColumns(alias string) string {
	if alias == "" {
		return strings.Join(formColumnNames, ", ")
	}
	cols := make([]string, len(formColumnNames))
	for i, c := range formColumnNames {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

// formScan holds the raw column values of a form row.
type formScan struct {
	form     types.Form
	status   string
	fields   []byte
	settings []byte
}

func (s *formScan) dest() []any {
	f := &s.form
	return []any{
		&f.ID, &f.Name, &f.Description, &s.fields, &s.status, &f.IsPublic, &s.settings,
		&f.TemplateID, &f.CreatedBy, &f.CreatedAt, &f.UpdatedAt, &f.PublishedAt, &f.ArchivedAt,
	}
}

func (s *formScan) finish() (*types.Form, error) {
	s.form.Status = types.FormStatus(s.status)
	if err := unmarshalJSONB(s.fields, &s.form.Fields); err != nil {
		return nil, fmt.Errorf("form %s fields: %w", s.form.ID, err)
	}
	if s.form.Fields == nil {
		s.form.Fields = types.Fields{}
	}
	if err := unmarshalJSONB(s.settings, &s.form.Settings); err != nil {
		return nil, fmt.Errorf("form %s settings: %w", s.form.ID, err)
	}
	form := s.form
	return &form, nil
}

// FormStore implements store.FormStore.
type FormStore struct {
	db DBTX
}

func NewFormStore(db DBTX) *FormStore {
	return &FormStore{db: db}
}

var _ store.FormStore = (*FormStore)(nil)

func (s *FormStore) CreateForm(ctx context.Context, form *types.Form) error {
	fields, err := marshalJSONB(form.Fields)
	if err != nil {
		return err
	}
	settings, err := marshalJSONB(form.Settings)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO forms (name, description, fields, status, is_public, settings, template_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id::text, created_at, updated_at`

	err = s.db.QueryRow(ctx, query,
		form.Name,
		form.Description,
		fields,
		string(form.Status),
		form.IsPublic,
		settings,
		form.TemplateID,
		form.CreatedBy,
	).Scan(&form.ID, &form.CreatedAt, &form.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	return nil
}

func (s *FormStore) GetForm(ctx context.Context, id string) (*types.Form, error) {
	query := `SELECT ` + formColumns("") + ` FROM forms WHERE id = $1`

	var row formScan
	if err := s.db.QueryRow(ctx, query, id).Scan(row.dest()...); err != nil {
		return nil, mapError(err)
	}
	return row.finish()
}

func (s *FormStore) ListForms(ctx context.Context, ownerID string, status *types.FormStatus) ([]types.Form, error) {
	query := `SELECT ` + formColumns("") + `
		FROM forms
		WHERE created_by = $1 AND ($2::text IS NULL OR status = $2::text)
		ORDER BY created_at DESC`

	var statusArg *string
	if status != nil {
		v := string(*status)
		statusArg = &v
	}

	rows, err := s.db.Query(ctx, query, ownerID, statusArg)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	forms := make([]types.Form, 0)
	for rows.Next() {
		var row formScan
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, err
		}
		f, err := row.finish()
		if err != nil {
			return nil, err
		}
		forms = append(forms, *f)
	}
	return forms, rows.Err()
}

func (s *FormStore) UpdateForm(ctx context.Context, form *types.Form) error {
	fields, err := marshalJSONB(form.Fields)
	if err != nil {
		return err
	}
	settings, err := marshalJSONB(form.Settings)
	if err != nil {
		return err
	}

	query := `
		UPDATE forms
		SET name = $1, description = $2, fields = $3, settings = $4, updated_at = $5
		WHERE id = $6 AND created_by = $7`

	tag, err := s.db.Exec(ctx, query,
		form.Name,
		form.Description,
		fields,
		settings,
		form.UpdatedAt,
		form.ID,
		form.CreatedBy,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// UpdateFormStatus persists a lifecycle transition in a single statement so
// the status and its timestamps are never observed apart.
func (s *FormStore) UpdateFormStatus(ctx context.Context, form *types.Form) error {
	query := `
		UPDATE forms
		SET status = $1, published_at = $2, archived_at = $3, updated_at = $4
		WHERE id = $5 AND created_by = $6`

	tag, err := s.db.Exec(ctx, query,
		string(form.Status),
		form.PublishedAt,
		form.ArchivedAt,
		form.UpdatedAt,
		form.ID,
		form.CreatedBy,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *FormStore) DeleteForm(ctx context.Context, id, ownerID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM forms WHERE id = $1 AND created_by = $2`, id, ownerID)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// scanFormRow is used by joins that select formColumns after other columns.
func scanFormRow(row pgx.Row, leading ...any) (*types.Form, error) {
	var fs formScan
	if err := row.Scan(append(leading, fs.dest()...)...); err != nil {
		return nil, mapError(err)
	}
	return fs.finish()
}
