package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	apperrors "github.com/formcraft/formcraft-backend/errors"
	"github.com/formcraft/formcraft-backend/internal/store"
	"github.com/formcraft/formcraft-backend/internal/store/mocks"
	"github.com/formcraft/formcraft-backend/pkg/valueobjects"
	"github.com/formcraft/formcraft-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	templates *mocks.TemplateStore
	forms     *mocks.FormStore
	credits   *mocks.CreditStore
	svc       *TemplateService
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		templates: new(mocks.TemplateStore),
		forms:     new(mocks.FormStore),
		credits:   new(mocks.CreditStore),
	}
	f.svc = NewTemplateService(f.templates, f.forms, f.credits)
	f.svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() {
		f.templates.AssertExpectations(t)
		f.forms.AssertExpectations(t)
		f.credits.AssertExpectations(t)
	})
	return f
}

func sampleFields() types.Fields {
	minLen := 2
	return types.Fields{
		&types.TextField{FieldBase: types.FieldBase{ID: "name", Label: "Name", Required: true}, Type: types.FieldTypeText, Rules: types.TextRules{MinLength: &minLen}},
		&types.ChoiceField{FieldBase: types.FieldBase{ID: "plan", Label: "Plan"}, Type: types.FieldTypeSelect, Options: []string{"free", "pro"}},
	}
}

func mustCredits(t *testing.T, s string) valueobjects.Credits {
	t.Helper()
	c, err := valueobjects.ParseCredits(s)
	require.NoError(t, err)
	return c
}

func requireAppError(t *testing.T, err error, status int, msg string) {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, status, appErr.GetHTTPStatus())
	if msg != "" {
		assert.Equal(t, msg, appErr.Message)
	}
}

func TestInstantiateFromTemplate_CopiesFieldsIntoDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tmpl := &types.FormTemplate{ID: "tmpl-1", Name: "Contact", Description: "Say hi", Fields: sampleFields(), CreatedBy: "author"}

	f.templates.On("GetTemplate", ctx, "tmpl-1").Return(tmpl, nil)
	f.forms.On("CreateForm", ctx, mock.MatchedBy(func(form *types.Form) bool {
		return form.Status == types.FormStatusDraft && form.CreatedBy == "user-1" && *form.TemplateID == "tmpl-1"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*types.Form).ID = "form-9"
	}).Return(nil)

	form, err := f.svc.InstantiateFromTemplate(ctx, "tmpl-1", "user-1", types.InstantiateTemplateRequest{})
	require.NoError(t, err)
	assert.Equal(t, "form-9", form.ID)
	assert.Equal(t, "Contact", form.Name)
	assert.Equal(t, "Say hi", form.Description)
	assert.Equal(t, tmpl.Fields.Specs(), form.Fields.Specs())

	// Editing the template afterwards must not reach the form.
	tmpl.Fields[0].(*types.TextField).Label = "Changed"
	*tmpl.Fields[0].(*types.TextField).Rules.MinLength = 40
	tmpl.Fields[1].(*types.ChoiceField).Options[0] = "gratis"

	text := form.Fields[0].(*types.TextField)
	assert.Equal(t, "Name", text.Label)
	assert.Equal(t, 2, *text.Rules.MinLength)
	assert.Equal(t, []string{"free", "pro"}, form.Fields[1].(*types.ChoiceField).Options)
}

func TestInstantiateFromTemplate_Overrides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.templates.On("GetTemplate", ctx, "tmpl-1").
		Return(&types.FormTemplate{ID: "tmpl-1", Name: "Contact", Description: "Say hi", Fields: sampleFields()}, nil)
	f.forms.On("CreateForm", ctx, mock.Anything).Return(nil)

	name, desc := "  My contact  ", ""
	form, err := f.svc.InstantiateFromTemplate(ctx, "tmpl-1", "user-1", types.InstantiateTemplateRequest{Name: &name, Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "My contact", form.Name)
	assert.Equal(t, "", form.Description)
}

func TestInstantiateFromTemplate_Missing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.templates.On("GetTemplate", ctx, "nope").Return(nil, store.ErrNotFound)

	_, err := f.svc.InstantiateFromTemplate(ctx, "nope", "user-1", types.InstantiateTemplateRequest{})
	requireAppError(t, err, http.StatusNotFound, "Template not found")
}

func TestInstantiateFromTemplate_PremiumGate(t *testing.T) {
	ctx := context.Background()
	premium := func() *types.FormTemplate {
		return &types.FormTemplate{ID: "tmpl-p", Name: "Pro", Fields: sampleFields(), IsPremium: true, Price: mustCredits(t, "5"), CreatedBy: "author"}
	}

	t.Run("not purchased", func(t *testing.T) {
		f := newFixture(t)
		f.templates.On("GetTemplate", ctx, "tmpl-p").Return(premium(), nil)
		f.credits.On("HasPurchased", ctx, "user-1", "tmpl-p").Return(false, nil)

		_, err := f.svc.InstantiateFromTemplate(ctx, "tmpl-p", "user-1", types.InstantiateTemplateRequest{})
		requireAppError(t, err, http.StatusForbidden, MsgTemplateNotPurchased)
	})

	t.Run("purchased", func(t *testing.T) {
		f := newFixture(t)
		f.templates.On("GetTemplate", ctx, "tmpl-p").Return(premium(), nil)
		f.credits.On("HasPurchased", ctx, "user-1", "tmpl-p").Return(true, nil)
		f.forms.On("CreateForm", ctx, mock.Anything).Return(nil)

		_, err := f.svc.InstantiateFromTemplate(ctx, "tmpl-p", "user-1", types.InstantiateTemplateRequest{})
		require.NoError(t, err)
	})

	t.Run("owner", func(t *testing.T) {
		f := newFixture(t)
		f.templates.On("GetTemplate", ctx, "tmpl-p").Return(premium(), nil)
		f.forms.On("CreateForm", ctx, mock.Anything).Return(nil)

		_, err := f.svc.InstantiateFromTemplate(ctx, "tmpl-p", "author", types.InstantiateTemplateRequest{})
		require.NoError(t, err)
	})
}

func TestInstantiateFromForm(t *testing.T) {
	ctx := context.Background()

	t.Run("requires form id and name", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.InstantiateFromForm(ctx, "user-1", types.CreateTemplateRequest{FormID: "form-1", Name: " "})
		requireAppError(t, err, http.StatusBadRequest, MsgFormAndNameRequired)
	})

	t.Run("description falls back to form", func(t *testing.T) {
		f := newFixture(t)
		form := &types.Form{ID: "form-1", Name: "Survey", Description: "Yearly survey", Fields: sampleFields(), CreatedBy: "user-1"}
		f.forms.On("GetForm", ctx, "form-1").Return(form, nil)
		f.templates.On("CreateTemplate", ctx, mock.MatchedBy(func(tmpl *types.FormTemplate) bool {
			return !tmpl.IsPremium && tmpl.Price.IsZero()
		})).Return(nil)

		tmpl, err := f.svc.InstantiateFromForm(ctx, "user-1", types.CreateTemplateRequest{FormID: "form-1", Name: "Survey template"})
		require.NoError(t, err)
		assert.Equal(t, "Yearly survey", tmpl.Description)
		assert.Equal(t, form.Fields.Specs(), tmpl.Fields.Specs())

		form.Fields[0].(*types.TextField).Label = "Changed"
		assert.Equal(t, "Name", tmpl.Fields[0].(*types.TextField).Label)
	})

	t.Run("not owned is not found", func(t *testing.T) {
		f := newFixture(t)
		f.forms.On("GetForm", ctx, "form-1").Return(&types.Form{ID: "form-1", CreatedBy: "someone-else"}, nil)

		_, err := f.svc.InstantiateFromForm(ctx, "user-1", types.CreateTemplateRequest{FormID: "form-1", Name: "Copy"})
		requireAppError(t, err, http.StatusNotFound, "Form not found")
	})
}

func TestSetPremium(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects zero price", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.SetPremium(ctx, "tmpl-1", "user-1", valueobjects.ZeroCredits)
		requireAppError(t, err, http.StatusBadRequest, "")
	})

	t.Run("not owner", func(t *testing.T) {
		f := newFixture(t)
		price := mustCredits(t, "3")
		f.templates.On("SetTemplatePremium", ctx, "tmpl-1", "user-1", price).Return(nil, store.ErrNotFound)

		_, err := f.svc.SetPremium(ctx, "tmpl-1", "user-1", price)
		requireAppError(t, err, http.StatusNotFound, "")
	})
}

func TestPurchase(t *testing.T) {
	ctx := context.Background()
	price := mustCredits(t, "2.50")
	tmpl := &types.FormTemplate{ID: "tmpl-p", IsPremium: true, Price: price, CreatedBy: "author"}

	t.Run("debits price", func(t *testing.T) {
		f := newFixture(t)
		f.templates.On("GetTemplate", ctx, "tmpl-p").Return(tmpl, nil)
		f.credits.On("PurchaseTemplate", ctx, "user-1", "tmpl-p", price).Return(mustCredits(t, "7.50"), nil)

		balance, err := f.svc.Purchase(ctx, "user-1", "tmpl-p")
		require.NoError(t, err)
		assert.Equal(t, "7.50", balance.String())
	})

	t.Run("already purchased", func(t *testing.T) {
		f := newFixture(t)
		f.templates.On("GetTemplate", ctx, "tmpl-p").Return(tmpl, nil)
		f.credits.On("PurchaseTemplate", ctx, "user-1", "tmpl-p", price).Return(valueobjects.Credits{}, store.ErrConflict)

		_, err := f.svc.Purchase(ctx, "user-1", "tmpl-p")
		requireAppError(t, err, http.StatusConflict, MsgTemplateAlreadyPurchase)
	})

	t.Run("insufficient credits", func(t *testing.T) {
		f := newFixture(t)
		f.templates.On("GetTemplate", ctx, "tmpl-p").Return(tmpl, nil)
		f.credits.On("PurchaseTemplate", ctx, "user-1", "tmpl-p", price).Return(valueobjects.Credits{}, store.ErrInsufficientCredits)

		_, err := f.svc.Purchase(ctx, "user-1", "tmpl-p")
		requireAppError(t, err, http.StatusBadRequest, "Insufficient credits")
	})

	t.Run("free template", func(t *testing.T) {
		f := newFixture(t)
		f.templates.On("GetTemplate", ctx, "tmpl-f").Return(&types.FormTemplate{ID: "tmpl-f"}, nil)

		_, err := f.svc.Purchase(ctx, "user-1", "tmpl-f")
		requireAppError(t, err, http.StatusBadRequest, "Template is not premium")
	})
}
