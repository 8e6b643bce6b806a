package auth

import (
	"time"

	"github.com/google/uuid"
)

// Claims is the identity payload carried by an access token. Timestamps are
// unix seconds to keep the wire format stable across languages.
type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IssuedAt  int64     `json:"iat"`
	ExpiresAt int64     `json:"exp"`
}

// Expired reports whether the claim set is past its expiry at the given
// instant. A zero expiry counts as expired: tokens without a lifetime are
// never accepted.
func (c Claims) Expired(now time.Time) bool {
	return c.ExpiresAt <= 0 || now.Unix() > c.ExpiresAt
}
