package embed

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"html"
	"strings"
)

const (
	DefaultFrameHeight = "600px"
	DefaultFrameWidth  = "100%"

	keyBytes = 24
)

// GenerateKey returns a new embedding key: 24 random bytes, base64url
// encoded without padding.
func GenerateKey() (string, error) {
	b := make([]byte, keyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate embedding key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateEmbedCode renders the iframe snippet a site owner pastes into their
// page. Empty height and width fall back to the defaults.
func GenerateEmbedCode(key, baseURL, height, width string) string {
	if height == "" {
		height = DefaultFrameHeight
	}
	if width == "" {
		width = DefaultFrameWidth
	}
	return fmt.Sprintf(
		`<iframe src="%s/embed/%s" width="%s" height="%s" frameborder="0" allow="camera; microphone" style="border: none;"></iframe>`,
		strings.TrimSuffix(baseURL, "/"), key, html.EscapeString(width), html.EscapeString(height),
	)
}
