package service

import (
	"context"

	"chirper/internal/models"
	"chirper/internal/repository"
)

// FollowService handles the follow graph.
type FollowService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
}

// NewFollowService returns a new FollowService.
func NewFollowService(users repository.UserRepository, follows repository.FollowRepository) *FollowService {
	return &FollowService{users: users, follows: follows}
}

// Follow makes userID follow targetID. Following yourself is rejected;
// following someone you already follow is a no-op.
func (s *FollowService) Follow(ctx context.Context, userID, targetID uint) error {
	if err := CanFollow(userID, targetID); err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return err
	}
	return s.follows.Add(ctx, userID, targetID)
}

// Unfollow removes the edge. Unfollowing someone you never followed succeeds.
func (s *FollowService) Unfollow(ctx context.Context, userID, targetID uint) error {
	if err := RequireAuthenticated(userID); err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return err
	}
	return s.follows.Remove(ctx, userID, targetID)
}

// Followers lists who follows userID.
func (s *FollowService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.Followers(ctx, userID)
}

// Following lists who userID follows.
func (s *FollowService) Following(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.Following(ctx, userID)
}

// IsFollowing reports whether userID follows targetID.
func (s *FollowService) IsFollowing(ctx context.Context, userID, targetID uint) (bool, error) {
	return s.follows.Exists(ctx, userID, targetID)
}
