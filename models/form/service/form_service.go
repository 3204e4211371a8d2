// Package service implements the dashboard operations on forms: creation,
// editing, lifecycle transitions and reading submissions.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/formcraft/formcraft-backend/errors"
	"github.com/formcraft/formcraft-backend/internal/store"
	"github.com/formcraft/formcraft-backend/logger"
	"github.com/formcraft/formcraft-backend/types"
)

// TemplateInstantiator creates a draft form from a template.
type TemplateInstantiator interface {
	InstantiateFromTemplate(ctx context.Context, templateID, ownerID string, overrides types.InstantiateTemplateRequest) (*types.Form, error)
}

// FormService handles owner-scoped form operations. A form owned by someone
// else is reported as not found.
type FormService struct {
	forms       store.FormStore
	submissions store.SubmissionStore
	templates   TemplateInstantiator
	now         func() time.Time
}

func NewFormService(forms store.FormStore, submissions store.SubmissionStore, templates TemplateInstantiator) *FormService {
	return &FormService{
		forms:       forms,
		submissions: submissions,
		templates:   templates,
		now:         time.Now,
	}
}

// CreateForm stores a new draft. With a template id the fields come from the
// template and the request only contributes an optional name and description.
func (s *FormService) CreateForm(ctx context.Context, ownerID string, req types.CreateFormRequest) (*types.Form, error) {
	if req.TemplateID != nil && *req.TemplateID != "" {
		var overrides types.InstantiateTemplateRequest
		if req.Form != nil {
			if req.Form.Name != "" {
				overrides.Name = &req.Form.Name
			}
			if req.Form.Description != "" {
				overrides.Description = &req.Form.Description
			}
		}
		return s.templates.InstantiateFromTemplate(ctx, *req.TemplateID, ownerID, overrides)
	}

	if req.Form == nil {
		return nil, apperrors.ValidationFailed("Form is required", "")
	}
	form, err := s.fromDraft(ownerID, *req.Form)
	if err != nil {
		return nil, err
	}
	if err := s.forms.CreateForm(ctx, form); err != nil {
		return nil, store.ToAppError(err, "Form", "")
	}

	logger.GetLogger().Infow("Form created", "formID", form.ID, "userID", ownerID, "fields", len(form.Fields))
	return form, nil
}

func (s *FormService) fromDraft(ownerID string, draft types.FormDraft) (*types.Form, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return nil, apperrors.ValidationFailed("Form name is required", "")
	}
	fields, err := parseFields(draft.Fields)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	return &types.Form{
		Name:        name,
		Description: draft.Description,
		Fields:      fields,
		Status:      types.FormStatusDraft,
		Settings:    draft.Settings,
		CreatedBy:   ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func parseFields(specs []types.FieldSpec) (types.Fields, error) {
	fields, err := types.ParseFields(specs)
	if err != nil {
		var schemaErr *types.SchemaError
		if errors.As(err, &schemaErr) {
			return nil, apperrors.ValidationFailed("Invalid field definition", schemaErr.Error()).
				WithData("field", schemaErr.FieldID)
		}
		return nil, apperrors.ValidationFailed("Invalid field definition", err.Error())
	}
	if fields == nil {
		fields = types.Fields{}
	}
	return fields, nil
}

// ListForms lists the owner's forms, optionally narrowed to one status.
func (s *FormService) ListForms(ctx context.Context, ownerID string, status *types.FormStatus) ([]types.Form, error) {
	if status != nil && !status.IsValid() {
		return nil, apperrors.ValidationFailed("Invalid status", status.String())
	}
	forms, err := s.forms.ListForms(ctx, ownerID, status)
	if err != nil {
		return nil, store.ToAppError(err, "Form", "")
	}
	if forms == nil {
		forms = []types.Form{}
	}
	return forms, nil
}

// GetForm returns the form when ownerID owns it.
func (s *FormService) GetForm(ctx context.Context, id, ownerID string) (*types.Form, error) {
	form, err := s.forms.GetForm(ctx, id)
	if err != nil {
		return nil, store.ToAppError(err, "Form", id)
	}
	if form.CreatedBy != ownerID {
		return nil, apperrors.NotFound("Form", id)
	}
	return form, nil
}

// UpdateForm replaces the editable attributes. The status is untouched, so an
// archived form stays archived until it is republished.
func (s *FormService) UpdateForm(ctx context.Context, id, ownerID string, draft types.FormDraft) (*types.Form, error) {
	form, err := s.GetForm(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return nil, apperrors.ValidationFailed("Form name is required", "")
	}
	fields, err := parseFields(draft.Fields)
	if err != nil {
		return nil, err
	}

	form.Name = name
	form.Description = draft.Description
	form.Fields = fields
	form.Settings = draft.Settings
	form.UpdatedAt = s.now().UTC()

	if err := s.forms.UpdateForm(ctx, form); err != nil {
		return nil, store.ToAppError(err, "Form", id)
	}
	return form, nil
}

// UpdateStatus moves the form to status and persists the transition.
func (s *FormService) UpdateStatus(ctx context.Context, id, ownerID string, status types.FormStatus) (*types.Form, error) {
	if !status.IsValid() {
		return nil, apperrors.ValidationFailed("Invalid status", status.String())
	}
	form, err := s.GetForm(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	previous := form.Status
	if err := form.Transition(status, s.now()); err != nil {
		return nil, apperrors.ValidationFailed("Invalid status transition", err.Error())
	}
	if err := s.forms.UpdateFormStatus(ctx, form); err != nil {
		return nil, store.ToAppError(err, "Form", id)
	}

	logger.GetLogger().Infow("Form status changed", "formID", id, "from", previous, "to", status)
	return form, nil
}

// DeleteForm removes the form with its submissions and grants.
func (s *FormService) DeleteForm(ctx context.Context, id, ownerID string) error {
	if err := s.forms.DeleteForm(ctx, id, ownerID); err != nil {
		return store.ToAppError(err, "Form", id)
	}
	logger.GetLogger().Infow("Form deleted", "formID", id, "userID", ownerID)
	return nil
}

// ListSubmissions returns the submissions of an owned form, newest first.
func (s *FormService) ListSubmissions(ctx context.Context, id, ownerID string) ([]types.Submission, error) {
	if _, err := s.GetForm(ctx, id, ownerID); err != nil {
		return nil, err
	}
	subs, err := s.submissions.ListSubmissions(ctx, id)
	if err != nil {
		return nil, store.ToAppError(err, "Submission", id)
	}
	if subs == nil {
		subs = []types.Submission{}
	}
	return subs, nil
}
