package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/investdesk/core/internal/adapters/repository"
	"github.com/investdesk/core/internal/domain/entities"
	"github.com/investdesk/core/internal/infrastructure/config"
	"github.com/investdesk/core/internal/infrastructure/logger"
	"github.com/investdesk/core/internal/infrastructure/storage"
	"github.com/investdesk/core/internal/ports"
)

func newTestUserRepo(t *testing.T) ports.UserRepository {
	t.Helper()
	dataDir := t.TempDir()
	store := storage.NewStore(storage.NewLockManager(time.Second), logger.Nop())
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, repository.UsersFile), []byte(`{"users":[]}`), 0644))
	return repository.NewUserRepository(store, dataDir, logger.Nop())
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:    "test-secret-key-for-tests-only",
		ExpiresIn: time.Hour,
		Issuer:    "investdesk-test",
	}
}

func seedUser(t *testing.T, repo ports.UserRepository, email, password string, role entities.UserRole) *entities.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := repo.Create(context.Background(), &entities.User{
		Name:     "Test User",
		Email:    email,
		Password: string(hash),
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func TestAuthService_Login(t *testing.T) {
	repo := newTestUserRepo(t)
	svc := NewAuthService(repo, testJWTConfig(), logger.Nop())
	seedUser(t, repo, "admin@investdesk.io", "correct horse", entities.UserRoleAdmin)

	resp, err := svc.Login(context.Background(), ports.LoginRequest{
		Email:    "admin@investdesk.io",
		Password: "correct horse",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Empty(t, resp.User.Password, "the password hash must never leave the service")

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin@investdesk.io", claims.Email)
	assert.Equal(t, entities.UserRoleAdmin, claims.Role)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	repo := newTestUserRepo(t)
	svc := NewAuthService(repo, testJWTConfig(), logger.Nop())
	seedUser(t, repo, "admin@investdesk.io", "correct horse", entities.UserRoleAdmin)

	_, err := svc.Login(context.Background(), ports.LoginRequest{
		Email:    "admin@investdesk.io",
		Password: "wrong horse",
	})
	assert.Error(t, err)
}

func TestAuthService_LoginUnknownEmail(t *testing.T) {
	repo := newTestUserRepo(t)
	svc := NewAuthService(repo, testJWTConfig(), logger.Nop())

	_, err := svc.Login(context.Background(), ports.LoginRequest{
		Email:    "nobody@investdesk.io",
		Password: "whatever",
	})
	assert.Error(t, err)
}

func TestAuthService_ValidateTokenWrongSecret(t *testing.T) {
	repo := newTestUserRepo(t)
	issuing := NewAuthService(repo, testJWTConfig(), logger.Nop())
	seedUser(t, repo, "admin@investdesk.io", "correct horse", entities.UserRoleAdmin)

	resp, err := issuing.Login(context.Background(), ports.LoginRequest{
		Email:    "admin@investdesk.io",
		Password: "correct horse",
	})
	require.NoError(t, err)

	other := testJWTConfig()
	other.Secret = "a-different-secret-entirely"
	validating := NewAuthService(repo, other, logger.Nop())

	_, err = validating.ValidateToken(resp.AccessToken)
	assert.Error(t, err)
}

func TestAuthService_ValidateExpiredToken(t *testing.T) {
	repo := newTestUserRepo(t)
	cfg := testJWTConfig()
	cfg.ExpiresIn = -time.Minute
	svc := NewAuthService(repo, cfg, logger.Nop())
	seedUser(t, repo, "admin@investdesk.io", "correct horse", entities.UserRoleAdmin)

	resp, err := svc.Login(context.Background(), ports.LoginRequest{
		Email:    "admin@investdesk.io",
		Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken)
	assert.Error(t, err)
}

func TestAuthService_ValidateGarbageToken(t *testing.T) {
	svc := NewAuthService(newTestUserRepo(t), testJWTConfig(), logger.Nop())
	_, err := svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}
