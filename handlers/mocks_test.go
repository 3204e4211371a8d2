package handlers

import (
	"context"
	"io"

	"github.com/formcraft/formcraft-backend/models/embed"
	submissionsvc "github.com/formcraft/formcraft-backend/models/submission/service"
	"github.com/formcraft/formcraft-backend/pkg/valueobjects"
	"github.com/formcraft/formcraft-backend/types"
	"github.com/stretchr/testify/mock"
)

type MockFormService struct {
	mock.Mock
}

func (m *MockFormService) CreateForm(ctx context.Context, ownerID string, req types.CreateFormRequest) (*types.Form, error) {
	args := m.Called(ctx, ownerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Form), args.Error(1)
}

func (m *MockFormService) ListForms(ctx context.Context, ownerID string, status *types.FormStatus) ([]types.Form, error) {
	args := m.Called(ctx, ownerID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Form), args.Error(1)
}

func (m *MockFormService) GetForm(ctx context.Context, id, ownerID string) (*types.Form, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Form), args.Error(1)
}

func (m *MockFormService) UpdateForm(ctx context.Context, id, ownerID string, draft types.FormDraft) (*types.Form, error) {
	args := m.Called(ctx, id, ownerID, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Form), args.Error(1)
}

func (m *MockFormService) UpdateStatus(ctx context.Context, id, ownerID string, status types.FormStatus) (*types.Form, error) {
	args := m.Called(ctx, id, ownerID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Form), args.Error(1)
}

func (m *MockFormService) DeleteForm(ctx context.Context, id, ownerID string) error {
	return m.Called(ctx, id, ownerID).Error(0)
}

func (m *MockFormService) ListSubmissions(ctx context.Context, id, ownerID string) ([]types.Submission, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Submission), args.Error(1)
}

type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) Submit(ctx context.Context, in submissionsvc.SubmitInput) (*types.SubmitResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SubmitResult), args.Error(1)
}

type MockTemplateService struct {
	mock.Mock
}

func (m *MockTemplateService) InstantiateFromForm(ctx context.Context, ownerID string, req types.CreateTemplateRequest) (*types.FormTemplate, error) {
	args := m.Called(ctx, ownerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FormTemplate), args.Error(1)
}

func (m *MockTemplateService) InstantiateFromTemplate(ctx context.Context, templateID, ownerID string, overrides types.InstantiateTemplateRequest) (*types.Form, error) {
	args := m.Called(ctx, templateID, ownerID, overrides)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Form), args.Error(1)
}

func (m *MockTemplateService) ListTemplates(ctx context.Context, createdBy string) ([]types.FormTemplate, error) {
	args := m.Called(ctx, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.FormTemplate), args.Error(1)
}

func (m *MockTemplateService) GetTemplate(ctx context.Context, id string) (*types.FormTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FormTemplate), args.Error(1)
}

func (m *MockTemplateService) SetPremium(ctx context.Context, templateID, ownerID string, price valueobjects.Credits) (*types.FormTemplate, error) {
	args := m.Called(ctx, templateID, ownerID, price)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FormTemplate), args.Error(1)
}

func (m *MockTemplateService) Purchase(ctx context.Context, userID, templateID string) (valueobjects.Credits, error) {
	args := m.Called(ctx, userID, templateID)
	return args.Get(0).(valueobjects.Credits), args.Error(1)
}

type MockEmbedService struct {
	mock.Mock
}

func (m *MockEmbedService) Authorize(ctx context.Context, embedKey, refererDomain string) (embed.Decision, error) {
	args := m.Called(ctx, embedKey, refererDomain)
	return args.Get(0).(embed.Decision), args.Error(1)
}

func (m *MockEmbedService) Load(ctx context.Context, embedKey, refererDomain, referer, userAgent string) (embed.Decision, error) {
	args := m.Called(ctx, embedKey, refererDomain, referer, userAgent)
	return args.Get(0).(embed.Decision), args.Error(1)
}

func (m *MockEmbedService) CreateSite(ctx context.Context, ownerID, domain string) (*types.Site, error) {
	args := m.Called(ctx, ownerID, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Site), args.Error(1)
}

func (m *MockEmbedService) ListSites(ctx context.Context, ownerID string) ([]types.Site, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Site), args.Error(1)
}

func (m *MockEmbedService) ApproveSite(ctx context.Context, actorID, siteID string) (*types.Site, error) {
	args := m.Called(ctx, actorID, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Site), args.Error(1)
}

func (m *MockEmbedService) CreateGrant(ctx context.Context, ownerID, formID string, req types.CreateGrantRequest) (*types.EmbedGrant, error) {
	args := m.Called(ctx, ownerID, formID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.EmbedGrant), args.Error(1)
}

func (m *MockEmbedService) ListGrants(ctx context.Context, ownerID, formID string) ([]types.EmbedGrant, error) {
	args := m.Called(ctx, ownerID, formID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.EmbedGrant), args.Error(1)
}

func (m *MockEmbedService) RevokeGrant(ctx context.Context, ownerID, key string) error {
	return m.Called(ctx, ownerID, key).Error(0)
}

func (m *MockEmbedService) EmbedCode(ctx context.Context, ownerID, key, height, width string) (*types.EmbedCodeResponse, error) {
	args := m.Called(ctx, ownerID, key, height, width)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.EmbedCodeResponse), args.Error(1)
}

type MockCreditService struct {
	mock.Mock
}

func (m *MockCreditService) Summary(ctx context.Context, userID string) (*types.CreditSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.CreditSummary), args.Error(1)
}

func (m *MockCreditService) AddCredits(ctx context.Context, userID string, amount valueobjects.Credits, description string) (valueobjects.Credits, error) {
	args := m.Called(ctx, userID, amount, description)
	return args.Get(0).(valueobjects.Credits), args.Error(1)
}

type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Save(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	// Drain so the handler sees a completed write.
	_, _ = io.Copy(io.Discard, body)
	return m.Called(ctx, key, body, size, contentType).Error(0)
}

// compile-time checks
var (
	_ FormServiceInterface       = (*MockFormService)(nil)
	_ SubmissionServiceInterface = (*MockSubmissionService)(nil)
	_ TemplateServiceInterface   = (*MockTemplateService)(nil)
	_ EmbedServiceInterface      = (*MockEmbedService)(nil)
	_ CreditServiceInterface     = (*MockCreditService)(nil)
	_ FileStore                  = (*MockFileStore)(nil)
)
