package middleware

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/formcraft/formcraft-backend/logger"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// KeyProvider resolves a signing key by key ID.
type KeyProvider interface {
	GetKey(ctx context.Context, kid string) (jwk.Key, error)
}

// JWKSCache holds the provider's public keys and refreshes them when they
// expire or an unknown kid shows up.
type JWKSCache struct {
	keys        map[string]jwk.Key
	expiresAt   time.Time
	mutex       sync.RWMutex
	refreshLock sync.Mutex
	jwksURL     string
	anonKey     string
	ttl         time.Duration
	httpClient  *http.Client
}

var _ KeyProvider = (*JWKSCache)(nil)

// NewJWKSCache returns an empty cache; the first lookup fetches the set.
// A nil client gets a 10 second timeout.
func NewJWKSCache(jwksURL, anonKey string, ttl time.Duration, client *http.Client) *JWKSCache {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &JWKSCache{
		keys:       make(map[string]jwk.Key),
		jwksURL:    jwksURL,
		anonKey:    anonKey,
		ttl:        ttl,
		httpClient: client,
	}
}

// GetKey returns the key for kid, refreshing the set on a miss or expiry.
func (c *JWKSCache) GetKey(ctx context.Context, kid string) (jwk.Key, error) {
	c.mutex.RLock()
	key, found := c.keys[kid]
	expired := time.Now().After(c.expiresAt)
	c.mutex.RUnlock()

	if found && !expired {
		return key, nil
	}

	if err := c.refresh(ctx, expired); err != nil {
		if found {
			logger.GetLogger().Warnw("JWKS refresh failed, using stale key", "kid", kid, "error", err)
			return key, nil
		}
		return nil, err
	}

	c.mutex.RLock()
	key, found = c.keys[kid]
	c.mutex.RUnlock()
	if !found {
		return nil, fmt.Errorf("%w: kid %q", ErrJWKSKeyNotFound, kid)
	}
	return key, nil
}

// refresh fetches the key set. Concurrent callers wait for one fetch; a
// caller that only missed a kid skips the fetch when another goroutine has
// just refreshed.
func (c *JWKSCache) refresh(ctx context.Context, expired bool) error {
	c.mutex.RLock()
	stamp := c.expiresAt
	c.mutex.RUnlock()

	c.refreshLock.Lock()
	defer c.refreshLock.Unlock()

	c.mutex.RLock()
	refreshedMeanwhile := !c.expiresAt.Equal(stamp)
	c.mutex.RUnlock()
	if refreshedMeanwhile {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.jwksURL, nil)
	if err != nil {
		return fmt.Errorf("create JWKS request: %w", err)
	}
	if c.anonKey != "" {
		req.Header.Set("apikey", c.anonKey)
		req.Header.Set("Authorization", "Bearer "+c.anonKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch JWKS: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read JWKS: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	set, err := jwk.Parse(body)
	if err != nil {
		return fmt.Errorf("parse JWKS: %w", err)
	}

	keys := make(map[string]jwk.Key, set.Len())
	for i := 0; i < set.Len(); i++ {
		key, ok := set.Key(i)
		if !ok || key.KeyID() == "" {
			continue
		}
		keys[key.KeyID()] = key
	}

	c.mutex.Lock()
	c.keys = keys
	c.expiresAt = time.Now().Add(c.ttl)
	c.mutex.Unlock()

	logger.GetLogger().Infow("JWKS cache refreshed", "keys", len(keys), "expired", expired)
	return nil
}
