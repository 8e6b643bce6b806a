package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lmorand/brasserie-backend/pkg/db/models"
	"github.com/lmorand/brasserie-backend/pkg/db/schema"
)

const TableRefreshTokens = "refresh_tokens"

// ErrRefreshInvalid covers every way a refresh token can fail validation:
// unknown, revoked, expired, or bound to a different user. Callers collapse
// it into an opaque unauthorized response.
var ErrRefreshInvalid = errors.New("refresh token invalid")

// TokenStore persists opaque refresh tokens. The backing table is optional:
// deployments without it keep the historical behavior where a well-signed
// access token alone is enough to refresh.
type TokenStore struct {
	db   *gorm.DB
	caps *schema.Capabilities
}

func NewTokenStore(db *gorm.DB, caps *schema.Capabilities) *TokenStore {
	return &TokenStore{db: db, caps: caps}
}

func (s *TokenStore) enabled() bool {
	return s != nil && s.db != nil && s.caps.HasTable(TableRefreshTokens)
}

// Issue mints a new opaque token for the user. Without the backing table the
// token is returned but not persisted; Validate will then accept anything.
func (s *TokenStore) Issue(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	token := hex.EncodeToString(buf)

	if !s.enabled() {
		return token, nil
	}

	row := models.RefreshToken{Token: token, UserID: userID}
	if ttl > 0 {
		expires := time.Now().UTC().Add(ttl)
		row.ExpiresAt = &expires
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("storing refresh token: %w", err)
	}
	return token, nil
}

// Validate checks the token against the store. With no backing table every
// token passes; that keeps refresh working on deployments that never created
// the table, at the cost of replayability there.
func (s *TokenStore) Validate(ctx context.Context, token string, userID uuid.UUID, now time.Time) error {
	if !s.enabled() {
		return nil
	}
	if token == "" {
		return ErrRefreshInvalid
	}

	var row models.RefreshToken
	err := s.db.WithContext(ctx).Where("token = ?", token).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRefreshInvalid
	}
	if err != nil {
		return fmt.Errorf("looking up refresh token: %w", err)
	}

	if row.Revoked || row.UserID != userID {
		return ErrRefreshInvalid
	}
	if row.ExpiresAt != nil && now.After(*row.ExpiresAt) {
		return ErrRefreshInvalid
	}
	return nil
}

// Revoke marks the token unusable. Tokens rotate on every refresh, so the
// old one is revoked as soon as its successor is issued.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	if !s.enabled() || token == "" {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("token = ?", token).
		UpdateColumn("revoked", true).Error
}
