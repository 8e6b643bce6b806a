package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken maps an opaque refresh credential to a user. The table is
// optional: deployments without it fall back to the historical fail-open
// refresh behavior.
type RefreshToken struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	Token     string     `gorm:"column:token;not null;uniqueIndex"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
	Revoked   bool       `gorm:"column:revoked;not null;default:false"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
