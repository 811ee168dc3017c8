package service

import (
	"context"
	"time"

	"chirper/internal/models"
	"chirper/internal/observability"
	"chirper/internal/repository"
)

// FeedLimit caps the number of messages a feed returns.
const FeedLimit = 100

// FeedService composes the home timeline.
type FeedService struct {
	messages repository.MessageRepository
	follows  repository.FollowRepository
}

// NewFeedService returns a new FeedService.
func NewFeedService(messages repository.MessageRepository, follows repository.FollowRepository) *FeedService {
	return &FeedService{messages: messages, follows: follows}
}

// Compose returns the viewer's feed: their own messages plus those of
// everyone they follow, newest first, capped at FeedLimit. A zero viewerID
// (no identity) yields an empty feed without querying the store.
func (s *FeedService) Compose(ctx context.Context, viewerID uint) ([]models.Message, error) {
	if viewerID == 0 {
		return []models.Message{}, nil
	}

	start := time.Now()
	defer func() {
		observability.FeedComposeLatency.Observe(time.Since(start).Seconds())
	}()

	followingIDs, err := s.follows.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	ownerIDs := append(followingIDs, viewerID)

	return s.messages.Feed(ctx, ownerIDs, FeedLimit, viewerID)
}
