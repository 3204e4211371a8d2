package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jwksServer(t *testing.T, kid string) (*httptest.Server, *int32) {
	t.Helper()
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pub, err := jwk.FromRaw(privateKey.PublicKey)
	require.NoError(t, err)
	require.NoError(t, pub.Set(jwk.KeyIDKey, kid))
	require.NoError(t, pub.Set(jwk.AlgorithmKey, jwa.RS256))

	set := jwk.NewSet()
	require.NoError(t, set.AddKey(pub))
	body, err := json.Marshal(set)
	require.NoError(t, err)

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestJWKSCache_GetKey(t *testing.T) {
	srv, hits := jwksServer(t, "kid-1")
	cache := NewJWKSCache(srv.URL, "anon-key", time.Hour, srv.Client())
	ctx := context.Background()

	key, err := cache.GetKey(ctx, "kid-1")
	require.NoError(t, err)
	assert.Equal(t, "kid-1", key.KeyID())

	_, err = cache.GetKey(ctx, "kid-1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits), "second lookup is served from cache")

	_, err = cache.GetKey(ctx, "unknown")
	assert.ErrorIs(t, err, ErrJWKSKeyNotFound)
}

func TestJWKSCache_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cache := NewJWKSCache(srv.URL, "", time.Hour, srv.Client())
	_, err := cache.GetKey(context.Background(), "kid-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
