package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/formcraft/formcraft-backend/config"
	"github.com/formcraft/formcraft-backend/logger"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenMissingClaim is returned when the token has no subject.
	ErrTokenMissingClaim = errors.New("token missing required claim")
	// ErrValidationMethodUnavailable means neither HS256 nor JWKS could be tried.
	ErrValidationMethodUnavailable = errors.New("no validation method available for token")
	ErrJWKSKeyNotFound             = errors.New("jwks key not found")
)

const jwksTTL = 15 * time.Minute

// Validator checks a bearer token and returns its subject.
type Validator interface {
	Validate(ctx context.Context, tokenString string) (string, error)
}

// JWTValidator accepts Supabase access tokens signed with the project secret
// (HS256) or with a key published in the project's JWKS.
type JWTValidator struct {
	keys         KeyProvider
	staticSecret []byte
}

var _ Validator = (*JWTValidator)(nil)

// NewJWTValidator builds a validator from the configured Supabase settings.
func NewJWTValidator(cfg *config.ExternalServices) (*JWTValidator, error) {
	log := logger.GetLogger()
	v := &JWTValidator{}

	if cfg.SupabaseJWTSecret != "" {
		v.staticSecret = []byte(cfg.SupabaseJWTSecret)
	}
	if cfg.SupabaseURL != "" {
		jwksURL := cfg.SupabaseURL + "/auth/v1/.well-known/jwks.json"
		v.keys = NewJWKSCache(jwksURL, cfg.SupabaseAnonKey, jwksTTL, nil)
		log.Infow("JWKS validation enabled", "url", jwksURL)
	}

	if v.staticSecret == nil && v.keys == nil {
		return nil, ErrValidationMethodUnavailable
	}
	return v, nil
}

// NewJWTValidatorWithKeys is NewJWTValidator with an explicit key source.
func NewJWTValidatorWithKeys(secret []byte, keys KeyProvider) *JWTValidator {
	return &JWTValidator{staticSecret: secret, keys: keys}
}

// Validate tries HS256 first and falls back to JWKS when the token names a
// key ID. An expiry reported by either method wins over other failures.
func (v *JWTValidator) Validate(ctx context.Context, tokenString string) (string, error) {
	var hsErr, jwksErr error

	if len(v.staticSecret) > 0 {
		sub, err := v.validateHS256(tokenString)
		if err == nil {
			return sub, nil
		}
		hsErr = err
	}

	if v.keys != nil {
		kid, alg, err := keyIDAndAlg(tokenString)
		switch {
		case err != nil:
			jwksErr = fmt.Errorf("%w: %w", ErrTokenInvalid, err)
		case kid != "":
			sub, err := v.validateJWKS(ctx, tokenString, kid, alg)
			if err == nil {
				return sub, nil
			}
			jwksErr = err
		}
	}

	switch {
	case errors.Is(hsErr, ErrTokenExpired) || errors.Is(jwksErr, ErrTokenExpired):
		return "", ErrTokenExpired
	case errors.Is(hsErr, ErrTokenMissingClaim) || errors.Is(jwksErr, ErrTokenMissingClaim):
		return "", ErrTokenMissingClaim
	case jwksErr != nil:
		return "", jwksErr
	case hsErr != nil:
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, hsErr)
	default:
		return "", ErrValidationMethodUnavailable
	}
}

func keyIDAndAlg(tokenString string) (string, string, error) {
	msg, err := jws.Parse([]byte(tokenString))
	if err != nil {
		return "", "", err
	}
	sigs := msg.Signatures()
	if len(sigs) == 0 {
		return "", "", errors.New("token has no signature")
	}
	headers := sigs[0].ProtectedHeaders()
	return headers.KeyID(), headers.Algorithm().String(), nil
}

func (v *JWTValidator) validateHS256(tokenString string) (string, error) {
	token, err := jwt.Parse([]byte(tokenString),
		jwt.WithKey(jwa.HS256, v.staticSecret),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(30*time.Second),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return "", fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return "", err
	}
	if token.Subject() == "" {
		return "", ErrTokenMissingClaim
	}
	return token.Subject(), nil
}

func (v *JWTValidator) validateJWKS(ctx context.Context, tokenString, kid, alg string) (string, error) {
	key, err := v.keys.GetKey(ctx, kid)
	if err != nil {
		return "", err
	}

	keyAlg := key.Algorithm().String()
	if keyAlg == "" {
		keyAlg = alg
	}
	token, err := jwt.Parse([]byte(tokenString),
		jwt.WithKey(jwa.SignatureAlgorithm(keyAlg), key),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(30*time.Second),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return "", fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return "", fmt.Errorf("%w: kid %q: %w", ErrTokenInvalid, kid, err)
	}
	if token.Subject() == "" {
		return "", ErrTokenMissingClaim
	}
	return token.Subject(), nil
}
