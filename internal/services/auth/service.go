// Package auth issues and revokes JWTs and throttles login attempts.
package auth

import (
	"context"
	stderrors "errors"
	"log"
	"time"

	"vaultpay/internal/errors"
	"vaultpay/internal/models"
	"vaultpay/internal/repositories"
	"vaultpay/internal/repositories/cache"
	"vaultpay/internal/services/user"
	"vaultpay/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

var errInvalidCredentials = &errors.DomainError{
	Code:    errors.CodeAccessDenied,
	Message: "invalid credentials",
}

var errLoginLocked = &errors.DomainError{
	Code:    errors.CodeRateLimited,
	Message: "too many failed logins, try again later",
}

type Service interface {
	Login(ctx context.Context, email, password string) (*models.User, string, string, error)
	RefreshTokens(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, userID uint, token string) error
}

type service struct {
	userRepo      repositories.UserRepository
	loginAttempts user.AttemptLimiter
	blacklist     *cache.TokenBlacklist
}

func NewService(userRepo repositories.UserRepository, loginAttempts user.AttemptLimiter, blacklist *cache.TokenBlacklist) Service {
	if userRepo == nil {
		panic("user repository is required")
	}
	return &service{
		userRepo:      userRepo,
		loginAttempts: loginAttempts,
		blacklist:     blacklist,
	}
}

func (s *service) Login(ctx context.Context, email, password string) (*models.User, string, string, error) {
	if s.loginAttempts != nil {
		locked, err := s.loginAttempts.TooMany(ctx, email)
		if err != nil {
			log.Printf("login attempt check failed: %v", err)
		} else if locked {
			return nil, "", "", errLoginLocked
		}
	}

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, repositories.ErrUserNotFound) {
			s.recordFailure(ctx, email)
			return nil, "", "", errInvalidCredentials
		}
		return nil, "", "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		s.recordFailure(ctx, email)
		return nil, "", "", errInvalidCredentials
	}

	if s.loginAttempts != nil {
		_ = s.loginAttempts.Reset(ctx, email)
	}

	u.LastLoginAt = time.Now()
	if err := s.userRepo.Update(ctx, u); err != nil {
		log.Printf("failed to record login time for user %d: %v", u.ID, err)
	}

	accessToken, refreshToken, err := utils.GenerateTokens(&models.UserClaims{
		UserID:       u.ID,
		Email:        u.Email,
		Role:         u.Role,
		TokenVersion: u.TokenVersion,
		Permissions:  models.GetDefaultPermissions(u.Role),
	})
	if err != nil {
		return nil, "", "", err
	}
	return u, accessToken, refreshToken, nil
}

func (s *service) RefreshTokens(ctx context.Context, refreshToken string) (string, string, error) {
	_, claims, err := utils.ParseToken(refreshToken)
	if err != nil {
		return "", "", errInvalidCredentials
	}

	u, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", "", errInvalidCredentials
	}
	if u.TokenVersion != claims.TokenVersion {
		return "", "", errInvalidCredentials
	}

	return utils.GenerateTokens(&models.UserClaims{
		UserID:       u.ID,
		Email:        u.Email,
		Role:         u.Role,
		TokenVersion: u.TokenVersion,
		Permissions:  models.GetDefaultPermissions(u.Role),
	})
}

// Logout bumps the token version so outstanding refresh tokens die, and
// blacklists the presented access token for its remaining lifetime.
func (s *service) Logout(ctx context.Context, userID uint, token string) error {
	if err := s.userRepo.IncrementTokenVersion(ctx, userID); err != nil {
		return err
	}

	if s.blacklist != nil && token != "" {
		if _, claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
			ttl := time.Until(claims.ExpiresAt.Time)
			if err := s.blacklist.Revoke(ctx, token, ttl); err != nil {
				log.Printf("failed to blacklist token: %v", err)
			}
		}
	}
	return nil
}

func (s *service) recordFailure(ctx context.Context, email string) {
	if s.loginAttempts == nil {
		return
	}
	if err := s.loginAttempts.Fail(ctx, email); err != nil {
		log.Printf("failed to record login failure: %v", err)
	}
}
