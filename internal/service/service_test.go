package service

import (
	"context"
	"testing"

	"chirper/internal/models"
	"chirper/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testDeps struct {
	db       *gorm.DB
	users    repository.UserRepository
	messages repository.MessageRepository
	follows  repository.FollowRepository
	likes    repository.LikeRepository
}

func setupTestDeps(t *testing.T) *testDeps {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Message{},
		&models.Follow{},
		&models.Like{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	return &testDeps{
		db:       db,
		users:    repository.NewUserRepository(db),
		messages: repository.NewMessageRepository(db),
		follows:  repository.NewFollowRepository(db),
		likes:    repository.NewLikeRepository(db),
	}
}

func signupUser(t *testing.T, auth *AuthService, username string) *models.User {
	t.Helper()
	user, err := auth.Signup(context.Background(), username, username+"@example.com", "password123", "")
	require.NoError(t, err)
	return user
}
