package auth

import (
	"strings"

	"github.com/lmorand/brasserie-backend/internal/users"
)

// LoginRequest captures the credentials sent to the login endpoint. Older
// clients send email, newer ones send identifier; both map to the same
// lookup.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required_without=Email"`
	Email      string `json:"email" validate:"required_without=Identifier"`
	Password   string `json:"password" validate:"required"`
}

// LoginIdentifier returns the effective identifier, preferring the modern
// field.
func (r LoginRequest) LoginIdentifier() string {
	if id := strings.TrimSpace(r.Identifier); id != "" {
		return id
	}
	return strings.TrimSpace(r.Email)
}

// RefreshRequest exchanges an expired access token plus a refresh token for
// a fresh pair.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LoginResponse contains the token pair and the sanitized user produced by a
// successful login or refresh.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}
