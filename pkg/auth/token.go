// Package auth issues and verifies the API's bearer tokens. The scheme is a
// symmetric HS256 construction implemented directly on the standard crypto
// primitives: base64url(header).base64url(claims).base64url(hmac). Wire
// compatible with any HS256 JWT consumer sharing the secret.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lmorand/brasserie-backend/pkg/config"
	"github.com/google/uuid"
)

// Verification failures stay distinct internally for logging, but handlers
// must collapse them into one opaque unauthorized response so the API never
// acts as a validity oracle.
var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenSignature = errors.New("token signature mismatch")
)

type tokenHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

var fixedHeader = tokenHeader{Alg: "HS256", Typ: "JWT"}

// MintAccessToken signs the claim set with the configured secret. IssuedAt
// and ExpiresAt are filled from now and the configured TTL when unset.
func MintAccessToken(cfg config.TokenConfig, now time.Time, claims Claims) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("token secret is required")
	}
	if claims.UserID == uuid.Nil {
		return "", fmt.Errorf("token subject is required")
	}

	if claims.IssuedAt == 0 {
		claims.IssuedAt = now.Unix()
	}
	if claims.ExpiresAt == 0 {
		claims.ExpiresAt = now.Add(cfg.TTL()).Unix()
	}

	headerJSON, err := json.Marshal(fixedHeader)
	if err != nil {
		return "", fmt.Errorf("encoding header: %w", err)
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("encoding claims: %w", err)
	}

	header64 := base64.RawURLEncoding.EncodeToString(headerJSON)
	claims64 := base64.RawURLEncoding.EncodeToString(claimsJSON)
	signingInput := header64 + "." + claims64

	sig := sign(cfg.Secret, signingInput)
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// ParseAccessToken verifies the token and returns its claims. Every failure
// path fails closed with one of the sentinel errors above.
func ParseAccessToken(cfg config.TokenConfig, token string, now time.Time) (*Claims, error) {
	return parse(cfg, token, now, false)
}

// ParseAccessTokenAllowExpired verifies the signature and structure but
// skips the expiry check. Used by the refresh exchange, which accepts a
// stale access token as proof of prior identity.
func ParseAccessTokenAllowExpired(cfg config.TokenConfig, token string, now time.Time) (*Claims, error) {
	return parse(cfg, token, now, true)
}

func parse(cfg config.TokenConfig, token string, now time.Time, allowExpired bool) (*Claims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("token secret is required")
	}

	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 3 {
		return nil, ErrTokenMalformed
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrTokenMalformed
	}
	var header tokenHeader
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, ErrTokenMalformed
	}
	if header.Alg != fixedHeader.Alg {
		return nil, ErrTokenMalformed
	}

	claimsJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrTokenMalformed
	}
	var claims Claims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return nil, ErrTokenMalformed
	}

	if !allowExpired && claims.Expired(now) {
		return nil, ErrTokenExpired
	}

	supplied, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, ErrTokenMalformed
	}
	expected := sign(cfg.Secret, parts[0]+"."+parts[1])
	if !hmac.Equal(supplied, expected) {
		return nil, ErrTokenSignature
	}

	return &claims, nil
}

func sign(secret, input string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(input))
	return mac.Sum(nil)
}
