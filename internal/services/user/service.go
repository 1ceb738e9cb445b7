// Package user handles registration and transaction-PIN verification. PIN
// attempts are throttled through a keyed Redis counter so a stolen device
// cannot brute-force four digits.
package user

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"

	"vaultpay/internal/errors"
	"vaultpay/internal/models"
	"vaultpay/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

// AttemptLimiter is the counter-with-expiry contract; the Redis-backed
// implementation lives in repositories/cache.
type AttemptLimiter interface {
	TooMany(ctx context.Context, id string) (bool, error)
	Fail(ctx context.Context, id string) error
	Reset(ctx context.Context, id string) error
}

type Service interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	GetUser(ctx context.Context, userID uint) (*models.User, error)
	SetTransactionPIN(ctx context.Context, userID uint, pin string) error
	VerifyTransactionPIN(ctx context.Context, userID uint, pin string) error
}

type service struct {
	repo        repositories.UserRepository
	pinAttempts AttemptLimiter
}

func NewService(repo repositories.UserRepository, pinAttempts AttemptLimiter) Service {
	if repo == nil {
		panic("user repository is required")
	}
	return &service{repo: repo, pinAttempts: pinAttempts}
}

func (s *service) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	if len(password) < 8 {
		return nil, &errors.DomainError{
			Code:    errors.CodeValidation,
			Message: "password must be at least 8 characters",
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     "user",
		Status:   "active",
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if stderrors.Is(err, repositories.ErrDuplicateKey) {
			return nil, &errors.DomainError{
				Code:    errors.CodeConflict,
				Message: "email already registered",
			}
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

func (s *service) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, repositories.ErrUserNotFound) {
			return nil, &errors.DomainError{Code: errors.CodeNotFound, Message: "user not found"}
		}
		return nil, err
	}
	return user, nil
}

func (s *service) SetTransactionPIN(ctx context.Context, userID uint, pin string) error {
	if len(pin) != 4 {
		return &errors.DomainError{
			Code:    errors.CodeValidation,
			Message: "transaction PIN must be 4 digits",
		}
	}
	if _, err := strconv.Atoi(pin); err != nil {
		return &errors.DomainError{
			Code:    errors.CodeValidation,
			Message: "transaction PIN must be 4 digits",
		}
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash PIN: %w", err)
	}
	user.TransactionPIN = string(hash)
	return s.repo.Update(ctx, user)
}

// VerifyTransactionPIN checks the PIN against the stored hash, refusing
// outright while the attempt budget is exhausted. A failed compare records
// one attempt; success resets the counter.
func (s *service) VerifyTransactionPIN(ctx context.Context, userID uint, pin string) error {
	key := strconv.FormatUint(uint64(userID), 10)

	if s.pinAttempts != nil {
		locked, err := s.pinAttempts.TooMany(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to check PIN attempts: %w", err)
		}
		if locked {
			return errors.ErrPINLocked
		}
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.TransactionPIN == "" {
		return errors.ErrInvalidPIN
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.TransactionPIN), []byte(pin)); err != nil {
		if s.pinAttempts != nil {
			if recordErr := s.pinAttempts.Fail(ctx, key); recordErr != nil {
				return fmt.Errorf("failed to record PIN attempt: %w", recordErr)
			}
		}
		return errors.ErrInvalidPIN
	}

	if s.pinAttempts != nil {
		_ = s.pinAttempts.Reset(ctx, key)
	}
	return nil
}
