// Package service implements template instantiation and the premium
// template catalogue.
package service

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/formcraft/formcraft-backend/errors"
	"github.com/formcraft/formcraft-backend/internal/store"
	"github.com/formcraft/formcraft-backend/logger"
	"github.com/formcraft/formcraft-backend/pkg/valueobjects"
	"github.com/formcraft/formcraft-backend/types"
)

const (
	MsgFormAndNameRequired     = "Form ID and name are required"
	MsgTemplateNotPurchased    = "Template not purchased"
	MsgTemplateAlreadyPurchase = "Template already purchased"
)

// TemplateService copies field schemas between forms and templates. Every
// copy is a deep clone so later edits on either side stay isolated.
type TemplateService struct {
	templates store.TemplateStore
	forms     store.FormStore
	credits   store.CreditStore
	now       func() time.Time
}

func NewTemplateService(templates store.TemplateStore, forms store.FormStore, credits store.CreditStore) *TemplateService {
	return &TemplateService{
		templates: templates,
		forms:     forms,
		credits:   credits,
		now:       time.Now,
	}
}

// InstantiateFromTemplate creates a draft form owned by ownerID from the
// template. Nil overrides fall back to the template's name and description.
func (s *TemplateService) InstantiateFromTemplate(ctx context.Context, templateID, ownerID string, overrides types.InstantiateTemplateRequest) (*types.Form, error) {
	tmpl, err := s.templates.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, store.ToAppError(err, "Template", templateID)
	}

	if err := s.checkAccess(ctx, tmpl, ownerID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	form := &types.Form{
		Name:        tmpl.Name,
		Description: tmpl.Description,
		Fields:      tmpl.Fields.Clone(),
		Status:      types.FormStatusDraft,
		TemplateID:  &tmpl.ID,
		CreatedBy:   ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if overrides.Name != nil && strings.TrimSpace(*overrides.Name) != "" {
		form.Name = strings.TrimSpace(*overrides.Name)
	}
	if overrides.Description != nil {
		form.Description = *overrides.Description
	}

	if err := s.forms.CreateForm(ctx, form); err != nil {
		return nil, store.ToAppError(err, "Form", "")
	}

	logger.GetLogger().Infow("Form created from template",
		"formID", form.ID, "templateID", tmpl.ID, "userID", ownerID)
	return form, nil
}

func (s *TemplateService) checkAccess(ctx context.Context, tmpl *types.FormTemplate, userID string) error {
	if !tmpl.IsPremium || tmpl.CreatedBy == userID {
		return nil
	}
	purchased, err := s.credits.HasPurchased(ctx, userID, tmpl.ID)
	if err != nil {
		return store.ToAppError(err, "Template", tmpl.ID)
	}
	if !purchased {
		return apperrors.Forbidden(MsgTemplateNotPurchased, tmpl.ID)
	}
	return nil
}

// InstantiateFromForm saves a copy of an owned form's fields as a free
// template.
func (s *TemplateService) InstantiateFromForm(ctx context.Context, ownerID string, req types.CreateTemplateRequest) (*types.FormTemplate, error) {
	name := strings.TrimSpace(req.Name)
	if strings.TrimSpace(req.FormID) == "" || name == "" {
		return nil, apperrors.ValidationFailed(MsgFormAndNameRequired, "")
	}

	form, err := s.forms.GetForm(ctx, req.FormID)
	if err != nil {
		return nil, store.ToAppError(err, "Form", req.FormID)
	}
	if form.CreatedBy != ownerID {
		return nil, apperrors.NotFound("Form", req.FormID)
	}

	description := form.Description
	if req.Description != nil {
		description = *req.Description
	}

	now := s.now().UTC()
	tmpl := &types.FormTemplate{
		Name:        name,
		Description: description,
		Fields:      form.Fields.Clone(),
		IsPremium:   false,
		Price:       valueobjects.ZeroCredits,
		CreatedBy:   ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.templates.CreateTemplate(ctx, tmpl); err != nil {
		return nil, store.ToAppError(err, "Template", "")
	}

	logger.GetLogger().Infow("Template created from form",
		"templateID", tmpl.ID, "formID", form.ID, "userID", ownerID)
	return tmpl, nil
}

// ListTemplates lists all templates, or only createdBy's when set.
func (s *TemplateService) ListTemplates(ctx context.Context, createdBy string) ([]types.FormTemplate, error) {
	templates, err := s.templates.ListTemplates(ctx, types.TemplateFilter{CreatedBy: createdBy})
	if err != nil {
		return nil, store.ToAppError(err, "Template", "")
	}
	if templates == nil {
		templates = []types.FormTemplate{}
	}
	return templates, nil
}

func (s *TemplateService) GetTemplate(ctx context.Context, id string) (*types.FormTemplate, error) {
	tmpl, err := s.templates.GetTemplate(ctx, id)
	if err != nil {
		return nil, store.ToAppError(err, "Template", id)
	}
	return tmpl, nil
}

// SetPremium marks an owned template as premium at price.
func (s *TemplateService) SetPremium(ctx context.Context, templateID, ownerID string, price valueobjects.Credits) (*types.FormTemplate, error) {
	if !price.IsPositive() {
		return nil, apperrors.ValidationFailed("Price must be greater than zero", price.String())
	}
	tmpl, err := s.templates.SetTemplatePremium(ctx, templateID, ownerID, price)
	if err != nil {
		return nil, store.ToAppError(err, "Template", templateID)
	}
	return tmpl, nil
}

// Purchase debits the template price from userID and records the purchase.
// It returns the remaining balance.
func (s *TemplateService) Purchase(ctx context.Context, userID, templateID string) (valueobjects.Credits, error) {
	tmpl, err := s.templates.GetTemplate(ctx, templateID)
	if err != nil {
		return valueobjects.Credits{}, store.ToAppError(err, "Template", templateID)
	}
	if !tmpl.IsPremium || !tmpl.Price.IsPositive() {
		return valueobjects.Credits{}, apperrors.ValidationFailed("Template is not premium", templateID)
	}
	if tmpl.CreatedBy == userID {
		return valueobjects.Credits{}, apperrors.ValidationFailed("Cannot purchase your own template", templateID)
	}

	balance, err := s.credits.PurchaseTemplate(ctx, userID, templateID, tmpl.Price)
	if err != nil {
		if store.IsConflict(err) {
			return valueobjects.Credits{}, apperrors.NewConflictError(MsgTemplateAlreadyPurchase, templateID)
		}
		return valueobjects.Credits{}, store.ToAppError(err, "Template", templateID)
	}

	logger.GetLogger().Infow("Template purchased",
		"templateID", templateID, "userID", userID, "price", tmpl.Price.Display())
	return balance, nil
}
