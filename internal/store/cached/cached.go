// Package cached decorates the read-heavy stores with internal/cache. Cache
// failures are logged and fall through to the wrapped store.
package cached

import (
	"context"
	"time"

	"github.com/formcraft/formcraft-backend/internal/cache"
	"github.com/formcraft/formcraft-backend/internal/store"
	"github.com/formcraft/formcraft-backend/logger"
	"github.com/formcraft/formcraft-backend/pkg/valueobjects"
	"github.com/formcraft/formcraft-backend/types"
)

const templatesTag = "templates"

func formTag(id string) string { return "form:" + id }

// FormStore caches GetForm under the form:{id} tag.
type FormStore struct {
	store.FormStore
	cache cache.Cache
	ttl   time.Duration
}

func NewFormStore(next store.FormStore, c cache.Cache, ttl time.Duration) *FormStore {
	return &FormStore{FormStore: next, cache: c, ttl: ttl}
}

var _ store.FormStore = (*FormStore)(nil)

func (s *FormStore) GetForm(ctx context.Context, id string) (*types.Form, error) {
	key := formTag(id)
	var form types.Form
	hit, err := s.cache.Get(ctx, key, &form)
	if err != nil {
		logger.GetLogger().Warnw("Form cache read failed", "formID", id, "error", err)
	}
	if hit {
		return &form, nil
	}

	loaded, err := s.FormStore.GetForm(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, loaded, s.ttl, key); err != nil {
		logger.GetLogger().Warnw("Form cache write failed", "formID", id, "error", err)
	}
	return loaded, nil
}

func (s *FormStore) UpdateForm(ctx context.Context, form *types.Form) error {
	if err := s.FormStore.UpdateForm(ctx, form); err != nil {
		return err
	}
	s.invalidate(ctx, form.ID)
	return nil
}

func (s *FormStore) UpdateFormStatus(ctx context.Context, form *types.Form) error {
	if err := s.FormStore.UpdateFormStatus(ctx, form); err != nil {
		return err
	}
	s.invalidate(ctx, form.ID)
	return nil
}

func (s *FormStore) DeleteForm(ctx context.Context, id, ownerID string) error {
	if err := s.FormStore.DeleteForm(ctx, id, ownerID); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *FormStore) invalidate(ctx context.Context, id string) {
	if err := s.cache.Invalidate(ctx, formTag(id)); err != nil {
		logger.GetLogger().Errorw("Form cache invalidation failed", "formID", id, "error", err)
	}
}

// TemplateStore caches ListTemplates under the templates tag.
type TemplateStore struct {
	store.TemplateStore
	cache cache.Cache
	ttl   time.Duration
}

func NewTemplateStore(next store.TemplateStore, c cache.Cache, ttl time.Duration) *TemplateStore {
	return &TemplateStore{TemplateStore: next, cache: c, ttl: ttl}
}

var _ store.TemplateStore = (*TemplateStore)(nil)

func (s *TemplateStore) ListTemplates(ctx context.Context, filter types.TemplateFilter) ([]types.FormTemplate, error) {
	key := "templates:" + filter.CreatedBy
	if filter.CreatedBy == "" {
		key = "templates:all"
	}

	var templates []types.FormTemplate
	hit, err := s.cache.Get(ctx, key, &templates)
	if err != nil {
		logger.GetLogger().Warnw("Template cache read failed", "key", key, "error", err)
	}
	if hit {
		return templates, nil
	}

	templates, err = s.TemplateStore.ListTemplates(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, templates, s.ttl, templatesTag); err != nil {
		logger.GetLogger().Warnw("Template cache write failed", "key", key, "error", err)
	}
	return templates, nil
}

func (s *TemplateStore) CreateTemplate(ctx context.Context, tmpl *types.FormTemplate) error {
	if err := s.TemplateStore.CreateTemplate(ctx, tmpl); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *TemplateStore) SetTemplatePremium(ctx context.Context, id, ownerID string, price valueobjects.Credits) (*types.FormTemplate, error) {
	tmpl, err := s.TemplateStore.SetTemplatePremium(ctx, id, ownerID, price)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return tmpl, nil
}

func (s *TemplateStore) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, templatesTag); err != nil {
		logger.GetLogger().Errorw("Template cache invalidation failed", "error", err)
	}
}
