package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/singularity/internal/common"
	"github.com/dmitrijs2005/singularity/internal/cryptox"
	"github.com/dmitrijs2005/singularity/internal/dbx"
	"github.com/dmitrijs2005/singularity/internal/logging"
	"github.com/dmitrijs2005/singularity/internal/server/auth"
	"github.com/dmitrijs2005/singularity/internal/server/config"
	"github.com/dmitrijs2005/singularity/internal/server/metrics"
	"github.com/dmitrijs2005/singularity/internal/server/models"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService issues, verifies and rotates tokens, and enforces the
// failed-login lockout.
type AuthService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	lockoutThreshold             int
	lockoutDuration              time.Duration
	metrics                      *metrics.Metrics
	log                          logging.Logger

	now func() time.Time
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, mx *metrics.Metrics, log logging.Logger) *AuthService {
	return &AuthService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		lockoutThreshold:             cfg.LockoutThreshold,
		lockoutDuration:              cfg.LockoutDuration,
		metrics:                      mx,
		log:                          log,
		now:                          time.Now,
	}
}

// TokenAuth checks the credentials and returns a fresh TokenPair. Unknown
// users, inactive users and wrong passwords all yield ErrorUnauthorized;
// locked accounts yield ErrAccountLocked.
func (s *AuthService) TokenAuth(ctx context.Context, email, password, ip string) (*TokenPair, error) {
	pair, result, err := s.tokenAuth(ctx, email, password, ip)
	s.metrics.IncLogin(result)
	return pair, err
}

func (s *AuthService) tokenAuth(ctx context.Context, email, password, ip string) (*TokenPair, string, error) {
	now := s.now()
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "invalid", common.ErrorUnauthorized
		}
		s.log.Error(ctx, "login lookup failed", "error", err)
		return nil, "error", common.ErrorInternal
	}
	if !user.CanLogin() {
		return nil, "invalid", common.ErrorUnauthorized
	}
	if user.LockedAt(now) {
		return nil, "locked", common.ErrAccountLocked
	}

	ok, err := cryptox.ComparePassword(password, user.PasswordHash)
	if err != nil {
		s.log.Error(ctx, "stored password hash unreadable", "user_id", user.ID, "error", err)
		return nil, "error", common.ErrorInternal
	}
	if !ok {
		_, lockedUntil, err := repo.RecordFailedLogin(ctx, user.ID, s.lockoutThreshold, now.Add(s.lockoutDuration))
		if err != nil {
			s.log.Error(ctx, "record failed login", "user_id", user.ID, "error", err)
			return nil, "error", common.ErrorInternal
		}
		if lockedUntil != nil && lockedUntil.After(now) {
			s.log.Warn(ctx, "account locked", "user_id", user.ID, "until", lockedUntil)
			return nil, "locked", common.ErrAccountLocked
		}
		return nil, "invalid", common.ErrorUnauthorized
	}

	var pair *TokenPair
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).RecordSuccessfulLogin(ctx, user.ID, ip, now); err != nil {
			return err
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, user, tx)
		return genErr
	})
	if err != nil {
		s.log.Error(ctx, "issue tokens", "user_id", user.ID, "error", err)
		return nil, "error", common.ErrorInternal
	}
	return pair, "success", nil
}

// VerifyToken validates an access token and returns its claims.
func (s *AuthService) VerifyToken(token string) (*auth.Claims, error) {
	return auth.ParseToken(token, s.jwtSecret)
}

// RefreshToken exchanges a refresh token for a new pair. The old token is
// consumed in the same transaction that stores its replacement, so it can
// be used once. Expired tokens are deleted and yield ErrRefreshTokenExpired.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair *TokenPair
	var expired bool

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		token, err := s.repomanager.RefreshTokens(tx).Consume(ctx, refreshToken)
		if err != nil {
			return err
		}
		if token.Expires.Before(s.now()) {
			expired = true
			return nil
		}

		user, err := s.repomanager.Users(tx).GetByID(ctx, token.UserID)
		if err != nil {
			return err
		}
		if !user.CanLogin() {
			return common.ErrorUnauthorized
		}

		pair, err = s.generateTokenPair(ctx, user, tx)
		return err
	})
	switch {
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrorUnauthorized):
		return nil, common.ErrInvalidToken
	case err != nil:
		return nil, fmt.Errorf("refresh token: %w", err)
	case expired:
		return nil, common.ErrRefreshTokenExpired
	}
	return pair, nil
}

// DeleteMe soft-deletes the user and revokes every refresh token it holds.
func (s *AuthService) DeleteMe(ctx context.Context, userID string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).SoftDelete(ctx, userID); err != nil {
			return err
		}
		return s.repomanager.RefreshTokens(tx).RevokeUser(ctx, userID)
	})
}

// --- helpers below ---

func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(user.ID, user.IsStaff || user.IsSuperuser, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, user.ID, refresh, s.now().Add(s.refreshTokenValidityDuration)); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
