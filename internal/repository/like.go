package repository

import (
	"context"

	"chirper/internal/cache"
	"chirper/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines persistence operations for like edges.
type LikeRepository interface {
	Add(ctx context.Context, userID, messageID uint) error
	Remove(ctx context.Context, userID, messageID uint) error
	Exists(ctx context.Context, userID, messageID uint) (bool, error)
	Likers(ctx context.Context, messageID uint) ([]models.User, error)
	LikedMessages(ctx context.Context, userID uint, limit, offset int, viewerID uint) ([]models.Message, error)
	LikedMessageIDs(ctx context.Context, userID uint) ([]uint, error)
	CountForMessage(ctx context.Context, messageID uint) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a new LikeRepository implementation.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Add creates a like edge. Liking a message twice is a no-op against the
// unique (user_id, message_id) pair.
func (r *likeRepository) Add(ctx context.Context, userID, messageID uint) (err error) {
	ctx, finish := observe(ctx, "likes", "add")
	defer func() { finish(err) }()

	like := models.Like{UserID: userID, MessageID: messageID}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "message_id"}},
			DoNothing: true,
		}).
		Create(&like).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	// The cached anonymous copy carries LikesCount.
	cache.InvalidateMessage(ctx, messageID)
	return nil
}

// Remove deletes the like edge. Removing an absent edge succeeds.
func (r *likeRepository) Remove(ctx context.Context, userID, messageID uint) (err error) {
	ctx, finish := observe(ctx, "likes", "remove")
	defer func() { finish(err) }()

	err = r.db.WithContext(ctx).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Delete(&models.Like{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateMessage(ctx, messageID)
	return nil
}

func (r *likeRepository) Exists(ctx context.Context, userID, messageID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Likers lists the users who liked a message.
func (r *likeRepository) Likers(ctx context.Context, messageID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN likes ON likes.user_id = users.id").
		Where("likes.message_id = ?", messageID).
		Order("likes.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// LikedMessages lists the messages a user has liked, newest like first,
// decorated for the viewer.
func (r *likeRepository) LikedMessages(ctx context.Context, userID uint, limit, offset int, viewerID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Joins("JOIN likes ON likes.message_id = messages.id").
		Where("likes.user_id = ?", userID).
		Order("likes.created_at DESC").
		Limit(limit).
		Offset(offset).
		Preload("User").
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	ptrs := make([]*models.Message, len(messages))
	for i := range messages {
		ptrs[i] = &messages[i]
	}
	if err := decorateMessages(ctx, r.db, ptrs, viewerID); err != nil {
		return nil, err
	}
	return messages, nil
}

// LikedMessageIDs returns the IDs of all messages userID has liked.
func (r *likeRepository) LikedMessageIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ?", userID).
		Pluck("message_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *likeRepository) CountForMessage(ctx context.Context, messageID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("message_id = ?", messageID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
