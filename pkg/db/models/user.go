package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Roles recognized by the API. Stored as plain text so legacy rows with
// arbitrary casing keep working.
const (
	RoleAdmin  = "admin"
	RoleStaff  = "staff"
	RoleClient = "client"
)

// User is the canonical identity entity. Several columns are optional in the
// field: older deployments run a reduced users table, so repositories must
// consult schema capabilities before selecting or writing the pointer-typed
// fields below.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string    `gorm:"type:text;not null;uniqueIndex"`
	Username  *string   `gorm:"column:username"`
	FirstName string    `gorm:"column:first_name;not null"`
	LastName  string    `gorm:"column:last_name;not null"`
	Role      string    `gorm:"column:role;not null;default:client"`
	Phone     *string   `gorm:"column:phone"`

	// Password holds the stored credential in whichever hash era it was
	// written: argon2id, bare md5/sha1/sha256 hex, or legacy plaintext.
	// It is upgraded in place on the first successful login.
	Password string `gorm:"column:password;not null"`

	Balance    *decimal.Decimal `gorm:"column:balance;type:numeric(10,2)"`
	CardNumber *string          `gorm:"column:card_number"`

	IsActive bool `gorm:"column:is_active;not null;default:true"`

	FailedLoginAttempts int        `gorm:"column:failed_login_attempts;default:0"`
	LastFailedLoginAt   *time.Time `gorm:"column:last_failed_login_at"`
	LastLoginAt         *time.Time `gorm:"column:last_login_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
