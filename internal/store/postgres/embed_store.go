package postgres

import (
	"context"
	"encoding/json"

	"github.com/formcraft/formcraft-backend/internal/store"
	"github.com/formcraft/formcraft-backend/types"
	"github.com/jackc/pgx/v5"
)

const siteColumns = `id::text, domain, is_approved, created_by, created_at, updated_at`

const grantColumns = `embedding_key, form_id::text, site_id::text, settings, created_at, updated_at`

// EmbedStore implements store.EmbedStore.
type EmbedStore struct {
	db DBTX
}

func NewEmbedStore(db DBTX) *EmbedStore {
	return &EmbedStore{db: db}
}

var _ store.EmbedStore = (*EmbedStore)(nil)

func siteDest(s *types.Site) []any {
	return []any{&s.ID, &s.Domain, &s.IsApproved, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt}
}

func grantDest(g *types.EmbedGrant, settings *[]byte) []any {
	return []any{&g.EmbeddingKey, &g.FormID, &g.SiteID, settings, &g.CreatedAt, &g.UpdatedAt}
}

func scanSite(row pgx.Row) (*types.Site, error) {
	var s types.Site
	if err := row.Scan(siteDest(&s)...); err != nil {
		return nil, mapError(err)
	}
	return &s, nil
}

// GetGrantDetails is the only join in the service: grant, site and form in one read.
func (s *EmbedStore) GetGrantDetails(ctx context.Context, key string) (*types.EmbedGrantDetails, error) {
	query := `
		SELECT e.embedding_key, e.form_id::text, e.site_id::text, e.settings, e.created_at, e.updated_at,
			s.id::text, s.domain, s.is_approved, s.created_by, s.created_at, s.updated_at,
			` + formColumns("f") + `
		FROM form_embeddings e
		JOIN embedding_sites s ON s.id = e.site_id
		JOIN forms f ON f.id = e.form_id
		WHERE e.embedding_key = $1`

	var (
		details  types.EmbedGrantDetails
		settings []byte
	)
	leading := append(grantDest(&details.Grant, &settings), siteDest(&details.Site)...)
	form, err := scanFormRow(s.db.QueryRow(ctx, query, key), leading...)
	if err != nil {
		return nil, err
	}
	details.Form = *form
	if len(settings) > 0 {
		details.Grant.Settings = json.RawMessage(settings)
	}
	return &details, nil
}

func (s *EmbedStore) CreateSite(ctx context.Context, site *types.Site) error {
	query := `
		INSERT INTO embedding_sites (domain, is_approved, created_by)
		VALUES ($1, $2, $3)
		RETURNING id::text, created_at, updated_at`

	err := s.db.QueryRow(ctx, query, site.Domain, site.IsApproved, site.CreatedBy).
		Scan(&site.ID, &site.CreatedAt, &site.UpdatedAt)
	return mapError(err)
}

func (s *EmbedStore) GetSite(ctx context.Context, id string) (*types.Site, error) {
	return scanSite(s.db.QueryRow(ctx, `SELECT `+siteColumns+` FROM embedding_sites WHERE id = $1`, id))
}

func (s *EmbedStore) ListSites(ctx context.Context, ownerID string) ([]types.Site, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+siteColumns+` FROM embedding_sites WHERE created_by = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	sites := make([]types.Site, 0)
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, *site)
	}
	return sites, rows.Err()
}

func (s *EmbedStore) ApproveSite(ctx context.Context, id string) (*types.Site, error) {
	query := `
		UPDATE embedding_sites SET is_approved = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + siteColumns
	return scanSite(s.db.QueryRow(ctx, query, id))
}

func (s *EmbedStore) CreateGrant(ctx context.Context, grant *types.EmbedGrant) error {
	settings := []byte(grant.Settings)
	if len(settings) == 0 {
		settings = []byte("{}")
	}

	query := `
		INSERT INTO form_embeddings (embedding_key, form_id, site_id, settings)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := s.db.QueryRow(ctx, query, grant.EmbeddingKey, grant.FormID, grant.SiteID, settings).
		Scan(&grant.CreatedAt, &grant.UpdatedAt)
	return mapError(err)
}

func (s *EmbedStore) ListGrants(ctx context.Context, formID string) ([]types.EmbedGrant, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+grantColumns+` FROM form_embeddings WHERE form_id = $1 ORDER BY created_at DESC`, formID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	grants := make([]types.EmbedGrant, 0)
	for rows.Next() {
		var (
			g        types.EmbedGrant
			settings []byte
		)
		if err := rows.Scan(grantDest(&g, &settings)...); err != nil {
			return nil, err
		}
		if len(settings) > 0 {
			g.Settings = json.RawMessage(settings)
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

func (s *EmbedStore) DeleteGrant(ctx context.Context, key string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM form_embeddings WHERE embedding_key = $1`, key)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
