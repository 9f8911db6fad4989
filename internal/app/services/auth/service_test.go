package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourway/internal/app/services/auth"
	domainauth "tourway/internal/domain/auth"
	domainuser "tourway/internal/domain/user"
	"tourway/internal/infra/security"
	"tourway/internal/infra/storage/memory"
)

func newService() (*auth.Service, *memory.UserRepository) {
	users := memory.NewUserRepository()
	svc := &auth.Service{
		Users:     users,
		Sessions:  memory.NewSessionStore(),
		Passwords: security.BcryptHasher{Cost: 4},
		Tokens:    security.RandomTokenGenerator{},
	}
	return svc, users
}

func TestRegisterIssuesSession(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	result, err := svc.Register(ctx, auth.RegisterParams{
		Email:    "  Ada@Example.COM ",
		Name:     "Ada Lovelace",
		Password: "correcthorse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "ada@example.com", result.User.Email)
	assert.Equal(t, domainuser.RoleTraveler, result.User.Role)

	resolved, err := svc.ResolveToken(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, resolved.User.ID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	params := auth.RegisterParams{Email: "ada@example.com", Name: "Ada", Password: "correcthorse"}

	_, err := svc.Register(ctx, params)
	require.NoError(t, err)

	_, err = svc.Register(ctx, params)
	assert.ErrorIs(t, err, domainuser.ErrEmailAlreadyUsed)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Register(context.Background(), auth.RegisterParams{
		Email:    "ada@example.com",
		Name:     "Ada",
		Password: "short",
	})
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
}

func TestLogin(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	_, err := svc.Register(ctx, auth.RegisterParams{Email: "ada@example.com", Name: "Ada", Password: "correcthorse"})
	require.NoError(t, err)

	result, err := svc.Login(ctx, auth.LoginParams{Email: "ada@example.com", Password: "correcthorse"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	_, err = svc.Login(ctx, auth.LoginParams{Email: "ada@example.com", Password: "wrongwrong"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(ctx, auth.LoginParams{Email: "nobody@example.com", Password: "correcthorse"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	result, err := svc.Register(ctx, auth.RegisterParams{Email: "ada@example.com", Name: "Ada", Password: "correcthorse"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, result.Token))

	_, err = svc.ResolveToken(ctx, result.Token)
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestResolveExpiredSession(t *testing.T) {
	svc, _ := newService()
	svc.SessionTTL = time.Nanosecond
	ctx := context.Background()

	result, err := svc.Register(ctx, auth.RegisterParams{Email: "ada@example.com", Name: "Ada", Password: "correcthorse"})
	require.NoError(t, err)

	// The memory store evicts expired sessions on read, so the token
	// resolves to a missing session rather than an expired one.
	time.Sleep(2 * time.Millisecond)
	_, err = svc.ResolveToken(ctx, result.Token)
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestIsOwnerOrAdmin(t *testing.T) {
	svc, users := newService()
	ctx := context.Background()

	owner, err := svc.Register(ctx, auth.RegisterParams{Email: "owner@example.com", Name: "Owner", Password: "correcthorse"})
	require.NoError(t, err)
	stranger, err := svc.Register(ctx, auth.RegisterParams{Email: "other@example.com", Name: "Other", Password: "correcthorse"})
	require.NoError(t, err)
	admin, err := svc.Register(ctx, auth.RegisterParams{Email: "admin@example.com", Name: "Admin", Password: "correcthorse"})
	require.NoError(t, err)
	admin.User.Role = domainuser.RoleAdmin
	require.NoError(t, users.Save(ctx, admin.User))

	allowed, err := svc.IsOwnerOrAdmin(ctx, owner.User.ID, owner.User.ID)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = svc.IsOwnerOrAdmin(ctx, owner.User.ID, stranger.User.ID)
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = svc.IsOwnerOrAdmin(ctx, owner.User.ID, admin.User.ID)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = svc.IsOwnerOrAdmin(ctx, owner.User.ID, "")
	require.NoError(t, err)
	assert.False(t, allowed)
}
