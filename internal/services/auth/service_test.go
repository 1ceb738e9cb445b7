package auth

import (
	"context"
	"testing"

	"vaultpay/internal/errors"
	"vaultpay/internal/models"
	"vaultpay/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users map[uint]*models.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error { return nil }

func (r *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) IncrementTokenVersion(ctx context.Context, userID uint) error {
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.TokenVersion++
	return nil
}

type fakeLimiter struct {
	max      int
	failures map[string]int
}

func (l *fakeLimiter) TooMany(ctx context.Context, id string) (bool, error) {
	return l.failures[id] >= l.max, nil
}

func (l *fakeLimiter) Fail(ctx context.Context, id string) error {
	l.failures[id]++
	return nil
}

func (l *fakeLimiter) Reset(ctx context.Context, id string) error {
	delete(l.failures, id)
	return nil
}

func newTestRepo(t *testing.T) *fakeUserRepo {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	return &fakeUserRepo{users: map[uint]*models.User{
		1: {
			Model:        gorm.Model{ID: 1},
			Email:        "alice@example.com",
			Password:     string(hash),
			Role:         "user",
			TokenVersion: 1,
		},
	}}
}

func TestLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	repo := newTestRepo(t)
	limiter := &fakeLimiter{max: 5, failures: make(map[string]int)}
	svc := NewService(repo, limiter, nil)

	t.Run("success", func(t *testing.T) {
		u, access, refresh, err := svc.Login(context.Background(), "alice@example.com", "hunter22hunter22")
		require.NoError(t, err)
		assert.Equal(t, uint(1), u.ID)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
		assert.False(t, repo.users[1].LastLoginAt.IsZero())
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, _, err := svc.Login(context.Background(), "alice@example.com", "wrong")
		var derr *errors.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, errors.CodeAccessDenied, derr.Code)
		assert.Equal(t, 1, limiter.failures["alice@example.com"])
	})

	t.Run("unknown email counts as a failure too", func(t *testing.T) {
		_, _, _, err := svc.Login(context.Background(), "mallory@example.com", "whatever")
		var derr *errors.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, errors.CodeAccessDenied, derr.Code)
	})

	t.Run("locked out after repeated failures", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			_, _, _, _ = svc.Login(context.Background(), "alice@example.com", "wrong")
		}
		_, _, _, err := svc.Login(context.Background(), "alice@example.com", "hunter22hunter22")
		var derr *errors.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, errors.CodeRateLimited, derr.Code)
	})
}

func TestRefreshTokens(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	repo := newTestRepo(t)
	svc := NewService(repo, nil, nil)

	_, _, refresh, err := svc.Login(context.Background(), "alice@example.com", "hunter22hunter22")
	require.NoError(t, err)

	access2, refresh2, err := svc.RefreshTokens(context.Background(), refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access2)
	assert.NotEmpty(t, refresh2)

	t.Run("stale token version is refused", func(t *testing.T) {
		require.NoError(t, repo.IncrementTokenVersion(context.Background(), 1))
		_, _, err := svc.RefreshTokens(context.Background(), refresh)
		assert.Error(t, err)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, _, err := svc.RefreshTokens(context.Background(), "not-a-token")
		assert.Error(t, err)
	})
}

func TestLogoutBumpsTokenVersion(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	repo := newTestRepo(t)
	svc := NewService(repo, nil, nil)

	before := repo.users[1].TokenVersion
	require.NoError(t, svc.Logout(context.Background(), 1, ""))
	assert.Equal(t, before+1, repo.users[1].TokenVersion)
}
