package integration

import (
	"context"
	"testing"

	"goblog/db"
	"goblog/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Register(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("HashesPassword", func(t *testing.T) {
		user := registerTestUser(t, env, "alice", "alice@x.com", "p1")

		stored, err := env.userRepo.FindByEmail(ctx, "alice@x.com")
		require.NoError(t, err)

		assert.Equal(t, user.ID, stored.ID)
		assert.NotEqual(t, "p1", stored.PasswordHash)
		assert.True(t, auth.CheckPassword(stored.PasswordHash, "p1"))
	})

	t.Run("PasswordMismatchCreatesNoUser", func(t *testing.T) {
		_, err := env.authService.Register(ctx, "Mallory M", "mallory", "mallory@x.com", "p1", "p2")
		require.ErrorIs(t, err, auth.ErrPasswordMismatch)

		_, err = env.userRepo.FindByEmail(ctx, "mallory@x.com")
		assert.ErrorIs(t, err, db.ErrNotFound)
	})

	t.Run("DuplicateUsernameRejected", func(t *testing.T) {
		registerTestUser(t, env, "carol", "carol@x.com", "pw")

		_, err := env.authService.Register(ctx, "Carol Two", "carol", "carol2@x.com", "pw", "pw")
		assert.ErrorIs(t, err, db.ErrDuplicate)
	})
}

func TestAuthService_Login(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	registered := registerTestUser(t, env, "alice", "alice@x.com", "p1")

	t.Run("CorrectCredentials", func(t *testing.T) {
		user, err := env.authService.Login(ctx, "alice@x.com", "p1")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
	})

	t.Run("WrongPasswordAndUnknownEmailAreIndistinguishable", func(t *testing.T) {
		_, errWrongPassword := env.authService.Login(ctx, "alice@x.com", "wrong")
		_, errUnknownEmail := env.authService.Login(ctx, "nobody@x.com", "p1")

		assert.ErrorIs(t, errWrongPassword, auth.ErrInvalidCredentials)
		assert.ErrorIs(t, errUnknownEmail, auth.ErrInvalidCredentials)
		assert.Equal(t, errWrongPassword, errUnknownEmail)
	})
}
