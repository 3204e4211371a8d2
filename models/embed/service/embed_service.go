// Package service manages embedding sites and grants, and serves embed loads.
package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	apperrors "github.com/formcraft/formcraft-backend/errors"
	"github.com/formcraft/formcraft-backend/internal/store"
	"github.com/formcraft/formcraft-backend/logger"
	"github.com/formcraft/formcraft-backend/models/embed"
	"github.com/formcraft/formcraft-backend/services"
	"github.com/formcraft/formcraft-backend/types"
)

const recordLoadTimeout = 5 * time.Second

// AdminChecker reports whether a user may approve sites.
type AdminChecker interface {
	IsAdmin(userID string) bool
}

type EmbedService struct {
	embeds     store.EmbedStore
	forms      store.FormStore
	logs       store.EmbedLogStore
	authorizer *embed.Authorizer
	jobs       services.JobSubmitter
	admins     AdminChecker
	baseURL    string
}

func NewEmbedService(
	embeds store.EmbedStore,
	forms store.FormStore,
	logs store.EmbedLogStore,
	authorizer *embed.Authorizer,
	jobs services.JobSubmitter,
	admins AdminChecker,
	baseURL string,
) *EmbedService {
	return &EmbedService{
		embeds:     embeds,
		forms:      forms,
		logs:       logs,
		authorizer: authorizer,
		jobs:       jobs,
		admins:     admins,
		baseURL:    baseURL,
	}
}

// Authorize checks embedKey against refererDomain without side effects.
func (s *EmbedService) Authorize(ctx context.Context, embedKey, refererDomain string) (embed.Decision, error) {
	return s.authorizer.Authorize(ctx, embedKey, refererDomain)
}

// Load authorizes an embed page load and, when allowed, records it in the
// background. referer and userAgent are the raw request headers.
func (s *EmbedService) Load(ctx context.Context, embedKey, refererDomain, referer, userAgent string) (embed.Decision, error) {
	decision, err := s.authorizer.Authorize(ctx, embedKey, refererDomain)
	if err != nil {
		return embed.Decision{}, err
	}
	if decision.Authorized {
		s.RecordLoad(embedKey, referer, userAgent)
	}
	return decision, nil
}

// RecordLoad queues an embed_logs insert. It never blocks; failures are
// logged and dropped.
func (s *EmbedService) RecordLoad(embedKey, referer, userAgent string) {
	entry := &types.EmbedLog{
		EmbeddingKey: embedKey,
		EventType:    types.EmbedEventLoad,
		CreatedAt:    time.Now().UTC(),
	}
	if referer != "" {
		entry.Referer = &referer
	}
	if userAgent != "" {
		entry.UserAgent = &userAgent
	}

	queued := s.jobs.Submit(services.Job{
		Name: "record-embed-load",
		Execute: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, recordLoadTimeout)
			defer cancel()
			return s.logs.CreateEmbedLog(ctx, entry)
		},
	})
	if !queued {
		logger.GetLogger().Warnw("Embed load not recorded, worker pool unavailable",
			"embedKey", logger.MaskEmbedKey(embedKey))
	}
}

// CreateSite registers domain for ownerID. New sites start unapproved.
func (s *EmbedService) CreateSite(ctx context.Context, ownerID, domain string) (*types.Site, error) {
	normalized := embed.NormalizeDomain(domain)
	if !validDomain(normalized) {
		return nil, apperrors.ValidationFailed("Invalid domain", domain)
	}

	site := &types.Site{
		Domain:    normalized,
		CreatedBy: ownerID,
	}
	if err := s.embeds.CreateSite(ctx, site); err != nil {
		if store.IsConflict(err) {
			return nil, apperrors.NewConflictError("Site already registered", normalized)
		}
		return nil, store.ToAppError(err, "Site", "")
	}

	logger.GetLogger().Infow("Site registered", "siteID", site.ID, "domain", normalized, "userID", ownerID)
	return site, nil
}

func validDomain(d string) bool {
	if d == "" || len(d) > 253 {
		return false
	}
	return !strings.ContainsAny(d, " /:?#@\t\n")
}

func (s *EmbedService) ListSites(ctx context.Context, ownerID string) ([]types.Site, error) {
	sites, err := s.embeds.ListSites(ctx, ownerID)
	if err != nil {
		return nil, store.ToAppError(err, "Site", "")
	}
	if sites == nil {
		sites = []types.Site{}
	}
	return sites, nil
}

// ApproveSite is restricted to configured admins.
func (s *EmbedService) ApproveSite(ctx context.Context, actorID, siteID string) (*types.Site, error) {
	if s.admins == nil || !s.admins.IsAdmin(actorID) {
		return nil, apperrors.Forbidden("Only administrators can approve sites", "")
	}
	site, err := s.embeds.ApproveSite(ctx, siteID)
	if err != nil {
		return nil, store.ToAppError(err, "Site", siteID)
	}
	logger.GetLogger().Infow("Site approved", "siteID", siteID, "domain", site.Domain, "approvedBy", actorID)
	return site, nil
}

func (s *EmbedService) ownedForm(ctx context.Context, formID, ownerID string) (*types.Form, error) {
	form, err := s.forms.GetForm(ctx, formID)
	if err != nil {
		return nil, store.ToAppError(err, "Form", formID)
	}
	if form.CreatedBy != ownerID {
		return nil, apperrors.NotFound("Form", formID)
	}
	return form, nil
}

// CreateGrant issues a new embedding key for an owned form on an owned site.
func (s *EmbedService) CreateGrant(ctx context.Context, ownerID, formID string, req types.CreateGrantRequest) (*types.EmbedGrant, error) {
	if _, err := s.ownedForm(ctx, formID, ownerID); err != nil {
		return nil, err
	}
	site, err := s.embeds.GetSite(ctx, req.SiteID)
	if err != nil {
		return nil, store.ToAppError(err, "Site", req.SiteID)
	}
	if site.CreatedBy != ownerID {
		return nil, apperrors.NotFound("Site", req.SiteID)
	}

	settings := req.Settings
	if len(settings) > 0 && !json.Valid(settings) {
		return nil, apperrors.ValidationFailed("Invalid settings", "settings must be a JSON value")
	}

	key, err := embed.GenerateKey()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ServerError, "Failed to create embedding")
	}
	grant := &types.EmbedGrant{
		EmbeddingKey: key,
		FormID:       formID,
		SiteID:       site.ID,
		Settings:     settings,
	}
	if err := s.embeds.CreateGrant(ctx, grant); err != nil {
		return nil, store.ToAppError(err, "Embedding", "")
	}

	logger.GetLogger().Infow("Embedding created",
		"formID", formID, "siteID", site.ID, "embedKey", logger.MaskEmbedKey(key))
	return grant, nil
}

func (s *EmbedService) ListGrants(ctx context.Context, ownerID, formID string) ([]types.EmbedGrant, error) {
	if _, err := s.ownedForm(ctx, formID, ownerID); err != nil {
		return nil, err
	}
	grants, err := s.embeds.ListGrants(ctx, formID)
	if err != nil {
		return nil, store.ToAppError(err, "Embedding", "")
	}
	if grants == nil {
		grants = []types.EmbedGrant{}
	}
	return grants, nil
}

func (s *EmbedService) ownedGrant(ctx context.Context, ownerID, key string) (*types.EmbedGrantDetails, error) {
	details, err := s.embeds.GetGrantDetails(ctx, key)
	if err != nil {
		return nil, store.ToAppError(err, "Embedding", logger.MaskEmbedKey(key))
	}
	if details.Form.CreatedBy != ownerID {
		return nil, apperrors.NotFound("Embedding", logger.MaskEmbedKey(key))
	}
	return details, nil
}

// RevokeGrant deletes an embedding key. Pages using it stop loading at once.
func (s *EmbedService) RevokeGrant(ctx context.Context, ownerID, key string) error {
	if _, err := s.ownedGrant(ctx, ownerID, key); err != nil {
		return err
	}
	if err := s.embeds.DeleteGrant(ctx, key); err != nil {
		return store.ToAppError(err, "Embedding", logger.MaskEmbedKey(key))
	}
	logger.GetLogger().Infow("Embedding revoked", "embedKey", logger.MaskEmbedKey(key), "userID", ownerID)
	return nil
}

// EmbedCode returns the iframe snippet for an owned embedding key.
func (s *EmbedService) EmbedCode(ctx context.Context, ownerID, key, height, width string) (*types.EmbedCodeResponse, error) {
	if _, err := s.ownedGrant(ctx, ownerID, key); err != nil {
		return nil, err
	}
	return &types.EmbedCodeResponse{
		EmbeddingKey: key,
		Code:         embed.GenerateEmbedCode(key, s.baseURL, height, width),
	}, nil
}
