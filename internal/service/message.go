package service

import (
	"context"

	"chirper/internal/models"
	"chirper/internal/repository"
	"chirper/internal/validation"
)

// MessageService handles posting, reading, deleting, and liking messages.
type MessageService struct {
	messages repository.MessageRepository
	likes    repository.LikeRepository
}

// NewMessageService returns a new MessageService.
func NewMessageService(messages repository.MessageRepository, likes repository.LikeRepository) *MessageService {
	return &MessageService{messages: messages, likes: likes}
}

// Post creates a message owned by userID.
func (s *MessageService) Post(ctx context.Context, userID uint, text string) (*models.Message, error) {
	if err := RequireAuthenticated(userID); err != nil {
		return nil, err
	}
	if err := validation.ValidateMessageText(text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	message := &models.Message{Text: text, UserID: userID}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, err
	}
	return s.messages.GetByID(ctx, message.ID, userID)
}

// Get returns a single message decorated for the viewer.
func (s *MessageService) Get(ctx context.Context, id uint, viewerID uint) (*models.Message, error) {
	return s.messages.GetByID(ctx, id, viewerID)
}

// ListByUser returns a user's messages, newest first.
func (s *MessageService) ListByUser(ctx context.Context, userID uint, limit, offset int, viewerID uint) ([]models.Message, error) {
	return s.messages.ListByUser(ctx, userID, limit, offset, viewerID)
}

// ListRecent returns the newest messages across all users.
func (s *MessageService) ListRecent(ctx context.Context, limit, offset int, viewerID uint) ([]models.Message, error) {
	return s.messages.ListRecent(ctx, limit, offset, viewerID)
}

// Delete removes a message. Only the owner may delete it; the message's
// like edges go with it.
func (s *MessageService) Delete(ctx context.Context, userID, messageID uint) error {
	message, err := s.messages.GetByID(ctx, messageID, userID)
	if err != nil {
		return err
	}
	if err := CanDeleteMessage(userID, message.UserID); err != nil {
		return err
	}
	return s.messages.Delete(ctx, messageID)
}

// Like records userID liking a message. Liking your own message is
// rejected; liking twice is a no-op.
func (s *MessageService) Like(ctx context.Context, userID, messageID uint) error {
	message, err := s.messages.GetByID(ctx, messageID, userID)
	if err != nil {
		return err
	}
	if err := CanLike(userID, message.UserID); err != nil {
		return err
	}
	return s.likes.Add(ctx, userID, messageID)
}

// Unlike removes userID's like from a message. Unliking a message that was
// never liked succeeds.
func (s *MessageService) Unlike(ctx context.Context, userID, messageID uint) error {
	if err := RequireAuthenticated(userID); err != nil {
		return err
	}
	if _, err := s.messages.GetByID(ctx, messageID, userID); err != nil {
		return err
	}
	return s.likes.Remove(ctx, userID, messageID)
}

// Likers lists who liked a message.
func (s *MessageService) Likers(ctx context.Context, messageID uint) ([]models.User, error) {
	if _, err := s.messages.GetByID(ctx, messageID, 0); err != nil {
		return nil, err
	}
	return s.likes.Likers(ctx, messageID)
}

// LikedMessages lists the messages a user has liked.
func (s *MessageService) LikedMessages(ctx context.Context, userID uint, limit, offset int, viewerID uint) ([]models.Message, error) {
	return s.likes.LikedMessages(ctx, userID, limit, offset, viewerID)
}
