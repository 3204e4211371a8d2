package types

import (
	"encoding/json"
	"time"
)

// Site is a third-party domain that may host embedded forms once approved.
type Site struct {
	ID         string    `json:"id"`
	Domain     string    `json:"domain"`
	IsApproved bool      `json:"isApproved"`
	CreatedBy  string    `json:"createdBy"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// EmbedGrant links one form to one site through an opaque key.
type EmbedGrant struct {
	EmbeddingKey string          `json:"embeddingKey"`
	FormID       string          `json:"formId"`
	SiteID       string          `json:"siteId"`
	Settings     json.RawMessage `json:"settings,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// EmbedGrantDetails is a grant joined with its site and form in one read.
type EmbedGrantDetails struct {
	Grant EmbedGrant
	Site  Site
	Form  Form
}

const EmbedEventLoad = "load"

// EmbedLog is one audit entry for an embed page load.
type EmbedLog struct {
	ID           string    `json:"id"`
	EmbeddingKey string    `json:"embeddingKey"`
	Referer      *string   `json:"referer,omitempty"`
	UserAgent    *string   `json:"userAgent,omitempty"`
	EventType    string    `json:"eventType"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateSiteRequest is the body of POST /api/sites.
type CreateSiteRequest struct {
	Domain string `json:"domain" binding:"required"`
}

// CreateGrantRequest is the body of POST /api/forms/:id/embeddings.
type CreateGrantRequest struct {
	SiteID   string          `json:"siteId" binding:"required"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

// EmbedCodeResponse carries a ready-to-paste iframe snippet.
type EmbedCodeResponse struct {
	EmbeddingKey string `json:"embeddingKey"`
	Code         string `json:"code"`
}
