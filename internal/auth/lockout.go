package auth

import (
	"time"

	"github.com/lmorand/brasserie-backend/pkg/config"
	"github.com/lmorand/brasserie-backend/pkg/db/models"
)

// Clock abstracts time.Now for deterministic tests.
type Clock func() time.Time

// Tracker decides whether an account is locked out based on the persisted
// failure counters. The counters live on the users row, so lockout state
// survives restarts and is shared across instances without coordination.
type Tracker struct {
	cfg config.LockoutConfig
	now Clock
}

// NewTracker builds a lockout tracker. A nil clock falls back to UTC now.
func NewTracker(cfg config.LockoutConfig, now Clock) *Tracker {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &Tracker{cfg: cfg, now: now}
}

// Locked reports whether the user has exhausted their failed attempts inside
// the lockout window. Rows without a failure timestamp lock indefinitely once
// over the limit: with no time reference the window cannot expire, and manual
// reset is safer than guessing.
func (t *Tracker) Locked(user *models.User) bool {
	if user == nil || user.FailedLoginAttempts < t.cfg.MaxAttempts {
		return false
	}
	if user.LastFailedLoginAt == nil {
		return true
	}
	return t.now().Sub(*user.LastFailedLoginAt) < t.cfg.Window
}

// Remaining returns how many failed attempts are left before lockout.
func (t *Tracker) Remaining(user *models.User) int {
	if user == nil {
		return t.cfg.MaxAttempts
	}
	left := t.cfg.MaxAttempts - user.FailedLoginAttempts
	if left < 0 {
		return 0
	}
	return left
}
