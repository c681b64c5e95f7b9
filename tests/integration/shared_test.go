package integration

import (
	"context"
	"testing"

	"goblog/db"
	"goblog/internal/auth"
	"goblog/internal/post"
	"goblog/models"
	"goblog/tests/testutils"

	"github.com/stretchr/testify/require"
)

type testEnv struct {
	authService *auth.Service
	postService *post.Service
	userRepo    db.UserRepository
	postRepo    db.PostRepository
	dbManager   *db.DBManager
}

func setupTestEnv(t *testing.T) (*testEnv, func()) {
	factory, cleanup := testutils.SetupTestRepositoryFactory(t)

	userRepo := factory.NewUserRepository()
	postRepo := factory.NewPostRepository()
	dbManager := db.NewDBManager()

	env := &testEnv{
		authService: auth.NewService(userRepo, dbManager),
		postService: post.NewService(postRepo, dbManager),
		userRepo:    userRepo,
		postRepo:    postRepo,
		dbManager:   dbManager,
	}

	return env, func() {
		dbManager.Stop()
		cleanup()
	}
}

func registerTestUser(t *testing.T, env *testEnv, username, email, password string) *models.User {
	user, err := env.authService.Register(context.Background(), "Test "+username, username, email, password, password)
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	return user
}
