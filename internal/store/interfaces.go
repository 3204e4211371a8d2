// Package store defines the persistence contracts used by the services.
// internal/store/postgres implements them; internal/store/cached decorates
// the read-heavy ones.
package store

import (
	"context"
	"time"

	"github.com/formcraft/formcraft-backend/pkg/valueobjects"
	"github.com/formcraft/formcraft-backend/types"
)

// FormStore handles form persistence.
type FormStore interface {
	// CreateForm inserts the form and fills in ID and timestamps.
	CreateForm(ctx context.Context, form *types.Form) error
	GetForm(ctx context.Context, id string) (*types.Form, error)
	// ListForms returns the owner's forms, newest first. A nil status lists all.
	ListForms(ctx context.Context, ownerID string, status *types.FormStatus) ([]types.Form, error)
	// UpdateForm writes name, description, fields and settings.
	UpdateForm(ctx context.Context, form *types.Form) error
	// UpdateFormStatus writes status, its timestamp and updated_at in one statement.
	UpdateFormStatus(ctx context.Context, form *types.Form) error
	DeleteForm(ctx context.Context, id, ownerID string) error
}

// TemplateStore handles form template persistence.
type TemplateStore interface {
	CreateTemplate(ctx context.Context, tmpl *types.FormTemplate) error
	GetTemplate(ctx context.Context, id string) (*types.FormTemplate, error)
	// ListTemplates returns templates ordered by created_at descending.
	ListTemplates(ctx context.Context, filter types.TemplateFilter) ([]types.FormTemplate, error)
	SetTemplatePremium(ctx context.Context, id, ownerID string, price valueobjects.Credits) (*types.FormTemplate, error)
}

// SubmissionStore handles submission persistence. Submissions are immutable.
type SubmissionStore interface {
	CreateSubmission(ctx context.Context, sub *types.Submission) error
	ListSubmissions(ctx context.Context, formID string) ([]types.Submission, error)
}

// EmbedStore handles sites and embed grants.
type EmbedStore interface {
	// GetGrantDetails loads a grant with its site and form in one read.
	GetGrantDetails(ctx context.Context, key string) (*types.EmbedGrantDetails, error)
	CreateSite(ctx context.Context, site *types.Site) error
	GetSite(ctx context.Context, id string) (*types.Site, error)
	ListSites(ctx context.Context, ownerID string) ([]types.Site, error)
	ApproveSite(ctx context.Context, id string) (*types.Site, error)
	CreateGrant(ctx context.Context, grant *types.EmbedGrant) error
	ListGrants(ctx context.Context, formID string) ([]types.EmbedGrant, error)
	DeleteGrant(ctx context.Context, key string) error
}

// EmbedLogStore handles the embed audit log.
type EmbedLogStore interface {
	CreateEmbedLog(ctx context.Context, entry *types.EmbedLog) error
	// PurgeEmbedLogs deletes entries older than before and returns the count.
	PurgeEmbedLogs(ctx context.Context, before time.Time) (int64, error)
}

// CreditStore handles the credit ledger. Every balance change and its ledger
// entry are written in one transaction.
type CreditStore interface {
	GetBalance(ctx context.Context, userID string) (valueobjects.Credits, error)
	ListTransactions(ctx context.Context, userID string) ([]types.CreditTransaction, error)
	AddCredits(ctx context.Context, userID string, amount valueobjects.Credits, description string) (valueobjects.Credits, error)
	UseCredits(ctx context.Context, userID string, amount valueobjects.Credits, referenceID, description string) (valueobjects.Credits, error)
	HasPurchased(ctx context.Context, userID, templateID string) (bool, error)
	// PurchaseTemplate debits price and records the purchase. Returns
	// ErrConflict when already purchased, ErrInsufficientCredits when the
	// balance is too low.
	PurchaseTemplate(ctx context.Context, userID, templateID string, price valueobjects.Credits) (valueobjects.Credits, error)
}
