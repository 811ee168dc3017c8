package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"chirper/internal/config"
	"chirper/internal/models"
	"chirper/internal/repository"
	"chirper/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestApp wires a Server over an in-memory SQLite database and registers
// the API routes without the metrics and limiter middleware.
func newTestApp(t *testing.T) (*fiber.App, *Server, *gorm.DB) {
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

	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	followRepo := repository.NewFollowRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	s := &Server{
		config:      &config.Config{JWTSecret: "test_secret"},
		db:          db,
		userRepo:    userRepo,
		messageRepo: messageRepo,
		followRepo:  followRepo,
		likeRepo:    likeRepo,
	}
	s.authService = service.NewAuthService(userRepo)
	s.userService = service.NewUserService(userRepo, messageRepo, followRepo, likeRepo)
	s.messageService = service.NewMessageService(messageRepo, likeRepo)
	s.followService = service.NewFollowService(userRepo, followRepo)
	s.feedService = service.NewFeedService(messageRepo, followRepo)

	app := fiber.New()
	app.Post("/api/auth/signup", s.Signup)
	app.Post("/api/auth/login", s.Login)
	app.Post("/api/auth/logout", s.AuthRequired(), s.Logout)
	app.Get("/api/feed", s.GetFeed)
	app.Get("/api/messages/:id", s.GetMessage)
	app.Post("/api/messages", s.AuthRequired(), s.CreateMessage)
	app.Delete("/api/messages/:id", s.AuthRequired(), s.DeleteMessage)
	app.Post("/api/messages/:id/like", s.AuthRequired(), s.LikeMessage)
	app.Delete("/api/messages/:id/like", s.AuthRequired(), s.UnlikeMessage)
	app.Get("/api/users/:id", s.GetUserProfile)
	app.Put("/api/users/me", s.AuthRequired(), s.UpdateMyProfile)
	app.Post("/api/users/:id/follow", s.AuthRequired(), s.FollowUser)
	app.Delete("/api/users/:id/follow", s.AuthRequired(), s.UnfollowUser)

	return app, s, db
}

type authedUser struct {
	ID    uint
	Token string
}

func signupViaAPI(t *testing.T, app *fiber.App, username string) authedUser {
	t.Helper()
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"email":    fmt.Sprintf("%s@example.com", username),
		"password": "password123",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return authedUser{ID: out.User.ID, Token: out.Token}
}

func jsonRequest(method, target, token string, payload any) *http.Request {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestCreateMessageRequiresAuth(t *testing.T) {
	app, _, db := newTestApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/messages", "", map[string]string{"text": "anonymous chirp"}))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// No row was written.
	var count int64
	db.Model(&models.Message{}).Count(&count)
	assert.Zero(t, count)
}

func TestDeleteMessageOwnerOnly(t *testing.T) {
	app, _, db := newTestApp(t)
	alice := signupViaAPI(t, app, "alice")
	bob := signupViaAPI(t, app, "bob")

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/messages", alice.Token, map[string]string{"text": "keep out"}))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	resp, err = app.Test(jsonRequest(http.MethodDelete, fmt.Sprintf("/api/messages/%d", created.ID), bob.Token, nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var count int64
	db.Model(&models.Message{}).Count(&count)
	assert.Equal(t, int64(1), count)

	resp, err = app.Test(jsonRequest(http.MethodDelete, fmt.Sprintf("/api/messages/%d", created.ID), alice.Token, nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestSelfLikeForbidden(t *testing.T) {
	app, _, db := newTestApp(t)
	alice := signupViaAPI(t, app, "alice")
	bob := signupViaAPI(t, app, "bob")

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/messages", alice.Token, map[string]string{"text": "my own chirp"}))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	likeURL := fmt.Sprintf("/api/messages/%d/like", created.ID)

	resp, err = app.Test(jsonRequest(http.MethodPost, likeURL, alice.Token, nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var count int64
	db.Model(&models.Like{}).Count(&count)
	assert.Zero(t, count, "no like edge may exist after a rejected self-like")

	resp, err = app.Test(jsonRequest(http.MethodPost, likeURL, bob.Token, nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodGet, fmt.Sprintf("/api/messages/%d", created.ID), bob.Token, nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var fetched models.Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&fetched))
	assert.Equal(t, 1, fetched.LikesCount)
	assert.True(t, fetched.Liked)
}

func TestSelfFollowForbidden(t *testing.T) {
	app, _, db := newTestApp(t)
	alice := signupViaAPI(t, app, "alice")

	resp, err := app.Test(jsonRequest(http.MethodPost, fmt.Sprintf("/api/users/%d/follow", alice.ID), alice.Token, nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var count int64
	db.Model(&models.Follow{}).Count(&count)
	assert.Zero(t, count)
}

func TestFollowAndFeedFlow(t *testing.T) {
	app, _, _ := newTestApp(t)
	alice := signupViaAPI(t, app, "alice")
	bob := signupViaAPI(t, app, "bob")
	carol := signupViaAPI(t, app, "carol")

	resp, err := app.Test(jsonRequest(http.MethodPost, fmt.Sprintf("/api/users/%d/follow", bob.ID), alice.Token, nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	for user, text := range map[authedUser]string{
		bob:   "from bob",
		carol: "from carol",
	} {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/messages", user.Token, map[string]string{"text": text}))
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/feed", alice.Token, nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var feed struct {
		Messages []models.Message `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&feed))
	require.Len(t, feed.Messages, 1)
	assert.Equal(t, "from bob", feed.Messages[0].Text)

	// Anonymous viewers get an empty feed, not an error.
	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/feed", "", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&feed))
	assert.Empty(t, feed.Messages)
}

func TestUpdateProfileRequiresPassword(t *testing.T) {
	app, _, _ := newTestApp(t)
	alice := signupViaAPI(t, app, "alice")

	resp, err := app.Test(jsonRequest(http.MethodPut, "/api/users/me", alice.Token, map[string]string{
		"username": "renamed",
		"email":    "alice@example.com",
		"password": "wrong-password",
	}))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Contains(t, errResp.Fields, "password")
}

func TestLogoutRevokesToken(t *testing.T) {
	app, s, _ := newTestApp(t)

	mr := miniredis.RunT(t)
	s.redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	alice := signupViaAPI(t, app, "alice")

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/logout", alice.Token, nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The revoked token no longer authenticates.
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/messages", alice.Token, map[string]string{"text": "too late"}))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutDegradesFeedToAnonymous(t *testing.T) {
	app, s, _ := newTestApp(t)

	mr := miniredis.RunT(t)
	s.redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	alice := signupViaAPI(t, app, "alice")
	bob := signupViaAPI(t, app, "bob")

	resp, err := app.Test(jsonRequest(http.MethodPost, fmt.Sprintf("/api/users/%d/follow", bob.ID), alice.Token, nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/messages", bob.Token, map[string]string{"text": "from bob"}))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var feed struct {
		Messages  []models.Message `json:"messages"`
		Anonymous bool             `json:"anonymous"`
	}

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/feed", alice.Token, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&feed))
	_ = resp.Body.Close()
	require.Len(t, feed.Messages, 1)
	assert.False(t, feed.Anonymous)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/auth/logout", alice.Token, nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The revoked token no longer personalizes optional-auth reads; the feed
	// falls back to the anonymous empty envelope.
	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/feed", alice.Token, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&feed))
	_ = resp.Body.Close()
	assert.Empty(t, feed.Messages)
	assert.True(t, feed.Anonymous)
}
