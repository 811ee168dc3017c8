package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"chirper/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRepository_FeedOrderAndFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	base := time.Now().Add(-time.Hour)
	oldest := createTestMessage(t, db, alice.ID, "oldest", base)
	middle := createTestMessage(t, db, bob.ID, "middle", base.Add(10*time.Minute))
	newest := createTestMessage(t, db, alice.ID, "newest", base.Add(20*time.Minute))
	createTestMessage(t, db, carol.ID, "excluded", base.Add(30*time.Minute))

	feed, err := repo.Feed(ctx, []uint{alice.ID, bob.ID}, 100, alice.ID)
	require.NoError(t, err)
	require.Len(t, feed, 3)

	// Newest first, and carol's message never appears.
	assert.Equal(t, newest.ID, feed[0].ID)
	assert.Equal(t, middle.ID, feed[1].ID)
	assert.Equal(t, oldest.ID, feed[2].ID)
}

func TestMessageRepository_FeedTiebreakOnEqualTimestamps(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	at := time.Now().Truncate(time.Second)
	first := createTestMessage(t, db, alice.ID, "first", at)
	second := createTestMessage(t, db, alice.ID, "second", at)

	feed, err := repo.Feed(ctx, []uint{alice.ID}, 100, 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)

	// Equal timestamps fall back to id descending.
	assert.Equal(t, second.ID, feed[0].ID)
	assert.Equal(t, first.ID, feed[1].ID)
}

func TestMessageRepository_FeedCap(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	base := time.Now().Add(-24 * time.Hour)
	for i := 0; i < 105; i++ {
		createTestMessage(t, db, alice.ID, fmt.Sprintf("msg %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	feed, err := repo.Feed(ctx, []uint{alice.ID}, 100, 0)
	require.NoError(t, err)
	assert.Len(t, feed, 100)

	// The cap keeps the newest, drops the oldest.
	assert.Equal(t, "msg 104", feed[0].Text)
	assert.Equal(t, "msg 5", feed[99].Text)
}

func TestMessageRepository_FeedEmptyOwnerSet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)

	feed, err := repo.Feed(context.Background(), nil, 100, 0)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestMessageRepository_Decoration(t *testing.T) {
	db := setupTestDB(t)
	messages := NewMessageRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")
	message := createTestMessage(t, db, alice.ID, "popular", time.Now())

	require.NoError(t, likes.Add(ctx, bob.ID, message.ID))
	require.NoError(t, likes.Add(ctx, carol.ID, message.ID))

	got, err := messages.GetByID(ctx, message.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.LikesCount)
	assert.True(t, got.Liked)

	// Anonymous viewers see counts but no liked flag.
	got, err = messages.GetByID(ctx, message.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, got.LikesCount)
	assert.False(t, got.Liked)
}

func TestMessageRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)

	_, err := repo.GetByID(context.Background(), 12345, 0)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, "NOT_FOUND"))
}

func TestMessageRepository_DeleteRemovesLikeEdges(t *testing.T) {
	db := setupTestDB(t)
	messages := NewMessageRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	message := createTestMessage(t, db, alice.ID, "doomed", time.Now())
	require.NoError(t, likes.Add(ctx, bob.ID, message.ID))

	require.NoError(t, messages.Delete(ctx, message.ID))

	_, err := messages.GetByID(ctx, message.ID, 0)
	assert.True(t, models.IsCode(err, "NOT_FOUND"))

	var likeCount int64
	db.Model(&models.Like{}).Count(&likeCount)
	assert.Zero(t, likeCount)
}

func TestMessageRepository_ListByUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	base := time.Now().Add(-time.Hour)
	createTestMessage(t, db, alice.ID, "one", base)
	createTestMessage(t, db, alice.ID, "two", base.Add(time.Minute))
	createTestMessage(t, db, bob.ID, "other", base.Add(2*time.Minute))

	list, err := repo.ListByUser(ctx, alice.ID, 20, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "two", list[0].Text)

	count, err := repo.CountByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
