package handlers

import (
	"context"
	"io"

	"github.com/formcraft/formcraft-backend/models/embed"
	submissionsvc "github.com/formcraft/formcraft-backend/models/submission/service"
	"github.com/formcraft/formcraft-backend/pkg/valueobjects"
	"github.com/formcraft/formcraft-backend/types"
)

// FormServiceInterface defines the form dashboard operations needed by handlers
type FormServiceInterface interface {
	CreateForm(ctx context.Context, ownerID string, req types.CreateFormRequest) (*types.Form, error)
	ListForms(ctx context.Context, ownerID string, status *types.FormStatus) ([]types.Form, error)
	GetForm(ctx context.Context, id, ownerID string) (*types.Form, error)
	UpdateForm(ctx context.Context, id, ownerID string, draft types.FormDraft) (*types.Form, error)
	UpdateStatus(ctx context.Context, id, ownerID string, status types.FormStatus) (*types.Form, error)
	DeleteForm(ctx context.Context, id, ownerID string) error
	ListSubmissions(ctx context.Context, id, ownerID string) ([]types.Submission, error)
}

type SubmissionServiceInterface interface {
	Submit(ctx context.Context, in submissionsvc.SubmitInput) (*types.SubmitResult, error)
}

type TemplateServiceInterface interface {
	InstantiateFromForm(ctx context.Context, ownerID string, req types.CreateTemplateRequest) (*types.FormTemplate, error)
	InstantiateFromTemplate(ctx context.Context, templateID, ownerID string, overrides types.InstantiateTemplateRequest) (*types.Form, error)
	ListTemplates(ctx context.Context, createdBy string) ([]types.FormTemplate, error)
	GetTemplate(ctx context.Context, id string) (*types.FormTemplate, error)
	SetPremium(ctx context.Context, templateID, ownerID string, price valueobjects.Credits) (*types.FormTemplate, error)
	Purchase(ctx context.Context, userID, templateID string) (valueobjects.Credits, error)
}

// EmbedServiceInterface covers the public embed page, uploads and the
// site and grant dashboard.
type EmbedServiceInterface interface {
	Authorize(ctx context.Context, embedKey, refererDomain string) (embed.Decision, error)
	Load(ctx context.Context, embedKey, refererDomain, referer, userAgent string) (embed.Decision, error)
	CreateSite(ctx context.Context, ownerID, domain string) (*types.Site, error)
	ListSites(ctx context.Context, ownerID string) ([]types.Site, error)
	ApproveSite(ctx context.Context, actorID, siteID string) (*types.Site, error)
	CreateGrant(ctx context.Context, ownerID, formID string, req types.CreateGrantRequest) (*types.EmbedGrant, error)
	ListGrants(ctx context.Context, ownerID, formID string) ([]types.EmbedGrant, error)
	RevokeGrant(ctx context.Context, ownerID, key string) error
	EmbedCode(ctx context.Context, ownerID, key, height, width string) (*types.EmbedCodeResponse, error)
}

type CreditServiceInterface interface {
	Summary(ctx context.Context, userID string) (*types.CreditSummary, error)
	AddCredits(ctx context.Context, userID string, amount valueobjects.Credits, description string) (valueobjects.Credits, error)
}

// FileStore persists uploaded files. internal/storage.BucketStorage satisfies it.
type FileStore interface {
	Save(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
}
