package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lmorand/brasserie-backend/internal/users"
	pkgAuth "github.com/lmorand/brasserie-backend/pkg/auth"
	"github.com/lmorand/brasserie-backend/pkg/config"
	"github.com/lmorand/brasserie-backend/pkg/db/models"
	pkgerrors "github.com/lmorand/brasserie-backend/pkg/errors"
	"github.com/lmorand/brasserie-backend/pkg/logger"
	"github.com/lmorand/brasserie-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Refresh tokens outlive access tokens by design; thirty days matches the
// session length the clients expect.
const refreshTokenTTL = 30 * 24 * time.Hour

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	WhoAmI(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error)
	Refresh(ctx context.Context, req RefreshRequest) (*LoginResponse, error)
}

type userRepository interface {
	FindByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateCredential(ctx context.Context, id uuid.UUID, credential string) error
	RecordLoginFailure(ctx context.Context, id uuid.UUID, at time.Time) error
	ResetLoginFailures(ctx context.Context, id uuid.UUID) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type refreshStore interface {
	Issue(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error)
	Validate(ctx context.Context, token string, userID uuid.UUID, now time.Time) error
	Revoke(ctx context.Context, token string) error
}

type service struct {
	users       userRepository
	tokens      refreshStore
	lockout     *Tracker
	tokenCfg    config.TokenConfig
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
	now         Clock
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	RefreshTokens  refreshStore
	Lockout        *Tracker
	TokenConfig    config.TokenConfig
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
	Now            Clock
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.RefreshTokens == nil {
		return nil, fmt.Errorf("refresh token store is required")
	}
	if params.Lockout == nil {
		params.Lockout = NewTracker(config.LockoutConfig{}, params.Now)
	}
	if params.Now == nil {
		params.Now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		users:       params.UserRepo,
		tokens:      params.RefreshTokens,
		lockout:     params.Lockout,
		tokenCfg:    params.TokenConfig,
		passwordCfg: params.PasswordConfig,
		logg:        params.Logger,
		now:         params.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	identifier := req.LoginIdentifier()
	if identifier == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	// Lockout is checked before the credential so a locked account leaks
	// nothing about password validity.
	if s.lockout.Locked(user) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account locked, try again later")
	}

	valid, format := security.VerifyCredential(req.Password, user.Password)
	if !valid {
		now := s.now()
		if err := s.users.RecordLoginFailure(ctx, user.ID, now); err != nil {
			s.warn(ctx, "recording login failure", err)
		}
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account disabled")
	}

	// A credential stored in a legacy hash era is upgraded in place while
	// the plaintext is in hand. Failure to upgrade never blocks the login.
	if format.NeedsUpgrade() {
		if upgraded, hashErr := security.HashPassword(req.Password, s.passwordCfg); hashErr != nil {
			s.warn(ctx, "hashing upgraded credential", hashErr)
		} else if err := s.users.UpdateCredential(ctx, user.ID, upgraded); err != nil {
			s.warn(ctx, "upgrading stored credential", err)
		}
	}

	now := s.now()
	if err := s.users.ResetLoginFailures(ctx, user.ID); err != nil {
		s.warn(ctx, "resetting login failures", err)
	}
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.warn(ctx, "updating last login", err)
	}
	user.LastLoginAt = &now

	return s.issuePair(ctx, user, now)
}

func (s *service) WhoAmI(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		// The token already proved identity; a missing row means the
		// subject has since been removed.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	return users.FromModel(user), nil
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*LoginResponse, error) {
	now := s.now()

	// An expired access token is acceptable proof of prior identity here;
	// everything else about it must still verify.
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.tokenCfg, req.AccessToken, now)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	if err := s.tokens.Validate(ctx, req.RefreshToken, claims.UserID, now); err != nil {
		if errors.Is(err, ErrRefreshInvalid) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "validate refresh token")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account disabled")
	}

	if err := s.tokens.Revoke(ctx, req.RefreshToken); err != nil {
		s.warn(ctx, "revoking refresh token", err)
	}

	return s.issuePair(ctx, user, now)
}

// issuePair mints the access token from the user's current row, so role and
// email changes take effect on the next refresh.
func (s *service) issuePair(ctx context.Context, user *models.User, now time.Time) (*LoginResponse, error) {
	accessToken, err := pkgAuth.MintAccessToken(s.tokenCfg, now, pkgAuth.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	refreshToken, err := s.tokens.Issue(ctx, user.ID, refreshTokenTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issue refresh token")
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         users.FromModel(user),
	}, nil
}

func (s *service) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}
