// Package embed decides whether an embed key may show its form on the
// requesting site. Denials are returned as a Decision, never as an error; an
// error means the grant could not be read at all.
package embed

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/formcraft/formcraft-backend/internal/store"
	"github.com/formcraft/formcraft-backend/types"
)

const (
	ReasonInvalidKey         = "Invalid embedding key"
	ReasonNotPublished       = "Form is not published"
	ReasonSiteNotApproved    = "Site is not approved for embedding"
	ReasonUnauthorizedDomain = "Unauthorized domain"
)

// GrantLookup loads a grant joined with its site and form.
type GrantLookup interface {
	GetGrantDetails(ctx context.Context, key string) (*types.EmbedGrantDetails, error)
}

// Decision is the outcome of an authorization check. Form is set only when
// Authorized is true.
type Decision struct {
	Authorized bool
	FormID     string
	SiteDomain string
	Reason     string
	Form       *types.Form
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

type Authorizer struct {
	grants              GrantLookup
	allowMissingReferer bool
}

// NewAuthorizer returns an Authorizer. allowMissingReferer decides requests
// that carry no referring domain.
func NewAuthorizer(grants GrantLookup, allowMissingReferer bool) *Authorizer {
	return &Authorizer{grants: grants, allowMissingReferer: allowMissingReferer}
}

// Authorize runs the full check for one request. It never caches: loads and
// submissions are verified independently.
func (a *Authorizer) Authorize(ctx context.Context, embedKey, refererDomain string) (Decision, error) {
	if strings.TrimSpace(embedKey) == "" {
		return deny(ReasonInvalidKey), nil
	}
	details, err := a.grants.GetGrantDetails(ctx, embedKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return deny(ReasonInvalidKey), nil
		}
		return Decision{}, err
	}
	return Evaluate(details, refererDomain, a.allowMissingReferer), nil
}

// Evaluate applies the grant rules in order: publication, site approval,
// then the referring domain.
func Evaluate(details *types.EmbedGrantDetails, refererDomain string, allowMissingReferer bool) Decision {
	if details == nil {
		return deny(ReasonInvalidKey)
	}
	if details.Form.Status != types.FormStatusPublished {
		return deny(ReasonNotPublished)
	}
	if !details.Site.IsApproved {
		return deny(ReasonSiteNotApproved)
	}

	if strings.TrimSpace(refererDomain) == "" {
		if !allowMissingReferer {
			return deny(ReasonUnauthorizedDomain)
		}
	} else if !DomainMatches(refererDomain, details.Site.Domain) {
		return deny(ReasonUnauthorizedDomain)
	}

	form := details.Form
	return Decision{
		Authorized: true,
		FormID:     form.ID,
		SiteDomain: NormalizeDomain(details.Site.Domain),
		Form:       &form,
	}
}

// NormalizeDomain lowercases d and strips a leading scheme, a leading "www."
// and a trailing slash.
func NormalizeDomain(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	d = strings.TrimSuffix(d, "/")
	return d
}

// DomainMatches reports whether referer is the site domain or a subdomain of it.
func DomainMatches(referer, site string) bool {
	r := NormalizeDomain(referer)
	s := NormalizeDomain(site)
	if r == "" || s == "" {
		return false
	}
	return r == s || strings.HasSuffix(r, "."+s)
}

// RefererHost extracts the hostname from a Referer header value. It returns
// "" when no host can be found.
func RefererHost(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// FrameAncestors builds the CSP directive allowing the site and its
// subdomains to frame the embed page.
func FrameAncestors(siteDomain string) string {
	d := NormalizeDomain(siteDomain)
	if d == "" {
		return "frame-ancestors 'none'"
	}
	return "frame-ancestors " + d + " *." + d
}
