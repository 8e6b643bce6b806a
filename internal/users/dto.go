package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lmorand/brasserie-backend/pkg/db/models"
)

// UserDTO is the transport shape that omits the stored credential.
type UserDTO struct {
	ID          uuid.UUID        `json:"id"`
	Email       string           `json:"email"`
	Username    *string          `json:"username,omitempty"`
	FirstName   string           `json:"first_name"`
	LastName    string           `json:"last_name"`
	Role        string           `json:"role"`
	Phone       *string          `json:"phone,omitempty"`
	Balance     *decimal.Decimal `json:"balance,omitempty"`
	IsActive    bool             `json:"is_active"`
	LastLoginAt *time.Time       `json:"last_login_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		Phone:       u.Phone,
		Balance:     u.Balance,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
