package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nurpe/finishing-touch/internal/model"
)

func TestAuthService_Login(t *testing.T) {
	users := newFakeUserStore()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	stored, err := users.Create(context.Background(), model.User{Email: "owner@example.com", PasswordHash: string(hash), Role: model.RoleManager})
	require.NoError(t, err)

	svc := NewAuthService(users, fakeTokenIssuer{}, nopLogger())

	result, err := svc.Login(context.Background(), LoginInput{Email: " Owner@Example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "token-"+stored.ID.String(), result.AccessToken)
	assert.Equal(t, model.RoleManager, result.User.Role)

	_, err = svc.Login(context.Background(), LoginInput{Email: "owner@example.com", Password: "wrong-horse"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Login(context.Background(), LoginInput{Email: "owner@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	me, err := svc.Me(context.Background(), model.Principal{UserID: stored.ID})
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", me.Email)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	users := newFakeUserStore()
	svc := NewAuthService(users, fakeTokenIssuer{}, nopLogger())

	require.NoError(t, svc.EnsureAdmin(context.Background(), "", "ignored"))
	assert.Empty(t, users.users)

	require.NoError(t, svc.EnsureAdmin(context.Background(), "Admin@Example.com", "bootstrap-pass"))
	require.Len(t, users.users, 1)
	admin := users.users["admin@example.com"]
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("bootstrap-pass")))

	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin@example.com", "another-pass"))
	assert.Len(t, users.users, 1)
	assert.Equal(t, admin.PasswordHash, users.users["admin@example.com"].PasswordHash)
}
