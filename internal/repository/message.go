package repository

import (
	"context"
	"errors"

	"chirper/internal/cache"
	"chirper/internal/models"

	"gorm.io/gorm"
)

// MessageRepository defines persistence operations for messages.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Message, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int, viewerID uint) ([]models.Message, error)
	ListRecent(ctx context.Context, limit, offset int, viewerID uint) ([]models.Message, error)
	Feed(ctx context.Context, ownerIDs []uint, limit int, viewerID uint) ([]models.Message, error)
	Delete(ctx context.Context, id uint) error
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository returns a new MessageRepository implementation.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) (err error) {
	ctx, finish := observe(ctx, "messages", "create")
	defer func() { finish(err) }()

	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetByID loads a message with its author and like decoration. Anonymous
// reads carry no viewer-specific state, so they are served cache-aside;
// likes and deletes invalidate the entry.
func (r *messageRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Message, error) {
	if viewerID == 0 {
		var message models.Message
		err := cache.Aside(ctx, cache.MessageKey(id), &message, cache.MessageTTL, func() error {
			loaded, err := r.loadByID(ctx, id, 0)
			if err != nil {
				return err
			}
			message = *loaded
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &message, nil
	}

	return r.loadByID(ctx, id, viewerID)
}

func (r *messageRepository) loadByID(ctx context.Context, id uint, viewerID uint) (*models.Message, error) {
	var message models.Message
	err := r.db.WithContext(ctx).Preload("User").First(&message, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Message", id)
		}
		return nil, models.NewInternalError(err)
	}

	if err := r.decorate(ctx, []*models.Message{&message}, viewerID); err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) ListByUser(ctx context.Context, userID uint, limit, offset int, viewerID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Preload("User").
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if err := r.decorateSlice(ctx, messages, viewerID); err != nil {
		return nil, err
	}
	return messages, nil
}

// ListRecent lists the newest messages across all users, for discovery.
func (r *messageRepository) ListRecent(ctx context.Context, limit, offset int, viewerID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Preload("User").
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if err := r.decorateSlice(ctx, messages, viewerID); err != nil {
		return nil, err
	}
	return messages, nil
}

// Feed returns messages authored by any of ownerIDs, newest first with id as
// a tiebreaker so ordering is stable within a timestamp, capped at limit.
// An empty owner set returns an empty slice without touching the database.
func (r *messageRepository) Feed(ctx context.Context, ownerIDs []uint, limit int, viewerID uint) (messages []models.Message, err error) {
	if len(ownerIDs) == 0 {
		return []models.Message{}, nil
	}

	ctx, finish := observe(ctx, "messages", "feed")
	defer func() { finish(err) }()

	err = r.db.WithContext(ctx).
		Where("user_id IN ?", ownerIDs).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Preload("User").
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if err := r.decorateSlice(ctx, messages, viewerID); err != nil {
		return nil, err
	}
	return messages, nil
}

// Delete removes the message and its like edges in one transaction so no
// like row ever points at a missing message.
func (r *messageRepository) Delete(ctx context.Context, id uint) (err error) {
	ctx, finish := observe(ctx, "messages", "delete")
	defer func() { finish(err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Message{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateMessage(ctx, id)
	return nil
}

func (r *messageRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *messageRepository) decorateSlice(ctx context.Context, messages []models.Message, viewerID uint) error {
	ptrs := make([]*models.Message, len(messages))
	for i := range messages {
		ptrs[i] = &messages[i]
	}
	return r.decorate(ctx, ptrs, viewerID)
}

func (r *messageRepository) decorate(ctx context.Context, messages []*models.Message, viewerID uint) error {
	return decorateMessages(ctx, r.db, messages, viewerID)
}

// decorateMessages fills LikesCount and Liked for a batch of messages with
// two grouped queries instead of one pair per message.
func decorateMessages(ctx context.Context, db *gorm.DB, messages []*models.Message, viewerID uint) error {
	if len(messages) == 0 {
		return nil
	}

	ids := make([]uint, len(messages))
	for i, m := range messages {
		ids[i] = m.ID
	}

	type likeCount struct {
		MessageID uint
		Count     int
	}
	var counts []likeCount
	err := db.WithContext(ctx).
		Model(&models.Like{}).
		Select("message_id, COUNT(*) as count").
		Where("message_id IN ?", ids).
		Group("message_id").
		Scan(&counts).Error
	if err != nil {
		return models.NewInternalError(err)
	}

	countByID := make(map[uint]int, len(counts))
	for _, c := range counts {
		countByID[c.MessageID] = c.Count
	}

	likedByViewer := make(map[uint]bool)
	if viewerID != 0 {
		var likedIDs []uint
		err := db.WithContext(ctx).
			Model(&models.Like{}).
			Where("user_id = ? AND message_id IN ?", viewerID, ids).
			Pluck("message_id", &likedIDs).Error
		if err != nil {
			return models.NewInternalError(err)
		}
		for _, id := range likedIDs {
			likedByViewer[id] = true
		}
	}

	for _, m := range messages {
		m.LikesCount = countByID[m.ID]
		m.Liked = likedByViewer[m.ID]
	}
	return nil
}
