package types

import (
	"time"

	"github.com/formcraft/formcraft-backend/pkg/valueobjects"
)

// FormTemplate is a reusable field schema. Forms created from it keep no link
// to it beyond their templateId.
type FormTemplate struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	Description     string               `json:"description"`
	Fields          Fields               `json:"fields"`
	IsPremium       bool                 `json:"isPremium"`
	Price           valueobjects.Credits `json:"price"`
	PreviewImageURL *string              `json:"previewImageUrl,omitempty"`
	CreatedBy       string               `json:"createdBy"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

// TemplateFilter narrows a template listing. An empty CreatedBy lists all.
type TemplateFilter struct {
	CreatedBy string
}

// CreateTemplateRequest is the body of POST /api/templates/create.
type CreateTemplateRequest struct {
	FormID      string  `json:"formId"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// InstantiateTemplateRequest is the body of POST /api/templates/:id/instantiate.
type InstantiateTemplateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// SetPremiumRequest is the body of PUT /api/templates/:id/premium.
type SetPremiumRequest struct {
	Price valueobjects.Credits `json:"price"`
}
