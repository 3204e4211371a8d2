package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/formcraft/formcraft-backend/internal/store"
	"github.com/formcraft/formcraft-backend/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormStore_CreateForm(t *testing.T) {
	mock := newMock(t)
	s := NewFormStore(mock)

	fields, err := types.ParseFields([]types.FieldSpec{{ID: "email", Type: types.FieldTypeEmail, Label: "Email"}})
	require.NoError(t, err)
	form := &types.Form{Name: "Signup", Fields: fields, Status: types.FormStatusDraft, CreatedBy: "user-1"}

	mock.ExpectQuery("INSERT INTO forms").
		WithArgs("Signup", "", pgxmock.AnyArg(), "draft", false, pgxmock.AnyArg(), (*string)(nil), "user-1").
		WillReturnRows(mock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("form-1", fixedTime, fixedTime))

	require.NoError(t, s.CreateForm(context.Background(), form))
	assert.Equal(t, "form-1", form.ID)
	assert.Equal(t, fixedTime, form.CreatedAt)
}

func TestFormStore_GetForm(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock := newMock(t)
		s := NewFormStore(mock)

		published := fixedTime
		mock.ExpectQuery("SELECT (.+) FROM forms WHERE id = \\$1").
			WithArgs("form-1").
			WillReturnRows(mock.NewRows(formColumnLabels).AddRow(formRow("form-1", types.FormStatusPublished, &published)...))

		form, err := s.GetForm(context.Background(), "form-1")
		require.NoError(t, err)
		assert.Equal(t, types.FormStatusPublished, form.Status)
		assert.Equal(t, "owner@example.com", form.Settings.NotifyEmail)
		require.Len(t, form.Fields, 1)
		assert.True(t, form.Fields[0].IsRequired())
		require.NotNil(t, form.PublishedAt)
		assert.Nil(t, form.TemplateID)
	})

	t.Run("not found", func(t *testing.T) {
		mock := newMock(t)
		s := NewFormStore(mock)

		mock.ExpectQuery("SELECT (.+) FROM forms").WithArgs("missing").WillReturnError(pgx.ErrNoRows)

		_, err := s.GetForm(context.Background(), "missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		mock := newMock(t)
		s := NewFormStore(mock)

		mock.ExpectQuery("SELECT (.+) FROM forms").WithArgs("not-a-uuid").
			WillReturnError(&pgconn.PgError{Code: "22P02"})

		_, err := s.GetForm(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestFormStore_ListForms(t *testing.T) {
	mock := newMock(t)
	s := NewFormStore(mock)

	status := types.FormStatusDraft
	draft := "draft"
	mock.ExpectQuery("SELECT (.+) FROM forms\\s+WHERE created_by = \\$1").
		WithArgs("user-1", &draft).
		WillReturnRows(mock.NewRows(formColumnLabels).
			AddRow(formRow("form-2", types.FormStatusDraft, nil)...).
			AddRow(formRow("form-1", types.FormStatusDraft, nil)...))

	forms, err := s.ListForms(context.Background(), "user-1", &status)
	require.NoError(t, err)
	require.Len(t, forms, 2)
	assert.Equal(t, "form-2", forms[0].ID)
}

func TestFormStore_UpdateFormStatus(t *testing.T) {
	mock := newMock(t)
	s := NewFormStore(mock)

	form := &types.Form{ID: "form-1", CreatedBy: "user-1", Status: types.FormStatusDraft}
	require.NoError(t, form.Publish(fixedTime))

	mock.ExpectExec("UPDATE forms\\s+SET status = \\$1, published_at = \\$2, archived_at = \\$3, updated_at = \\$4").
		WithArgs("published", form.PublishedAt, (*time.Time)(nil), form.UpdatedAt, "form-1", "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.UpdateFormStatus(context.Background(), form))
}

func TestFormStore_UpdateAndDeleteNotOwned(t *testing.T) {
	mock := newMock(t)
	s := NewFormStore(mock)

	form := &types.Form{ID: "form-1", Name: "x", CreatedBy: "intruder", UpdatedAt: fixedTime}
	mock.ExpectExec("UPDATE forms").
		WithArgs("x", "", pgxmock.AnyArg(), pgxmock.AnyArg(), fixedTime, "form-1", "intruder").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec("DELETE FROM forms").
		WithArgs("form-1", "intruder").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, s.UpdateForm(context.Background(), form), store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteForm(context.Background(), "form-1", "intruder"), store.ErrNotFound)
}

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil))
	assert.ErrorIs(t, mapError(&pgconn.PgError{Code: "23505", ConstraintName: "embedding_sites_created_by_domain_key"}), store.ErrConflict)
	boom := errors.New("boom")
	assert.Equal(t, boom, mapError(boom))
}
