// Package users persists accounts against whichever users table the deployment
// actually has. Every optional column is gated on a schema capability probe,
// so the same binary serves both pre and post migration databases.
package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lmorand/brasserie-backend/pkg/db/models"
	"github.com/lmorand/brasserie-backend/pkg/db/schema"
)

const TableUsers = "users"

// Columns every supported deployment has. Optional columns are probed one by
// one in selectColumns.
var requiredColumns = []string{"id", "email", "password", "first_name", "last_name", "role", "is_active", "created_at", "updated_at"}

var optionalColumns = []string{"username", "phone", "balance", "card_number", "failed_login_attempts", "last_failed_login_at", "last_login_at"}

// Repository exposes user persistence over an adaptive column set.
type Repository struct {
	db   *gorm.DB
	caps *schema.Capabilities
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB, caps *schema.Capabilities) *Repository {
	return &Repository{db: db, caps: caps}
}

func (r *Repository) selectColumns() []string {
	cols := append([]string(nil), requiredColumns...)
	for _, col := range optionalColumns {
		if r.caps.HasColumn(TableUsers, col) {
			cols = append(cols, col)
		}
	}
	return cols
}

// FindByIdentifier resolves a login identifier to a user. The identifier is
// matched against email, and against username when the deployment has that
// column.
func (r *Repository) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	q := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select(r.selectColumns())

	if r.caps.HasColumn(TableUsers, "username") {
		q = q.Where("email = ? OR username = ?", identifier, identifier)
	} else {
		q = q.Where("email = ?", identifier)
	}

	var user models.User
	if err := q.Take(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select(r.selectColumns()).
		Where("id = ?", id).
		Take(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateCredential replaces the stored credential, used to upgrade legacy
// hashes in place after a successful verification.
func (r *Repository) UpdateCredential(ctx context.Context, id uuid.UUID, credential string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("password", credential).Error
}

// RecordLoginFailure bumps the failure counter atomically and stamps the
// failure time when the column exists. A deployment without the counter
// column has lockout disabled; the call is then a no-op.
func (r *Repository) RecordLoginFailure(ctx context.Context, id uuid.UUID, at time.Time) error {
	if !r.caps.HasColumn(TableUsers, "failed_login_attempts") {
		return nil
	}

	updates := map[string]any{
		"failed_login_attempts": gorm.Expr("failed_login_attempts + 1"),
	}
	if r.caps.HasColumn(TableUsers, "last_failed_login_at") {
		updates["last_failed_login_at"] = at
	}

	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumns(updates).Error
}

// ResetLoginFailures clears the failure counter after a successful login.
func (r *Repository) ResetLoginFailures(ctx context.Context, id uuid.UUID) error {
	if !r.caps.HasColumn(TableUsers, "failed_login_attempts") {
		return nil
	}

	updates := map[string]any{"failed_login_attempts": 0}
	if r.caps.HasColumn(TableUsers, "last_failed_login_at") {
		updates["last_failed_login_at"] = nil
	}

	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumns(updates).Error
}

// UpdateLastLogin refreshes the user's last_login_at timestamp when the
// deployment tracks it.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if !r.caps.HasColumn(TableUsers, "last_login_at") {
		return nil
	}

	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}
