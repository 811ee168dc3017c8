package service

import (
	"context"

	"chirper/internal/models"
	"chirper/internal/repository"
	"chirper/internal/validation"
)

// ProfileUpdate carries the editable profile fields plus the current
// password, which must be re-proven before any change is applied.
type ProfileUpdate struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	ImageURL       string `json:"image_url"`
	HeaderImageURL string `json:"header_image_url"`
	Location       string `json:"location"`
	Bio            string `json:"bio"`
	Password       string `json:"password"`
}

// Profile is a user plus their social counts.
type Profile struct {
	User           models.User `json:"user"`
	MessagesCount  int64       `json:"messages_count"`
	FollowersCount int64       `json:"followers_count"`
	FollowingCount int64       `json:"following_count"`
	LikesCount     int64       `json:"likes_count"`
}

// UserService handles profile reads, edits, and account deletion.
type UserService struct {
	users    repository.UserRepository
	messages repository.MessageRepository
	follows  repository.FollowRepository
	likes    repository.LikeRepository
}

// NewUserService returns a new UserService.
func NewUserService(
	users repository.UserRepository,
	messages repository.MessageRepository,
	follows repository.FollowRepository,
	likes repository.LikeRepository,
) *UserService {
	return &UserService{users: users, messages: messages, follows: follows, likes: likes}
}

// GetProfile loads a user together with their message/follower/following counts.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	messagesCount, err := s.messages.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	followersCount, err := s.follows.CountFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	followingCount, err := s.follows.CountFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	likedIDs, err := s.likes.LikedMessageIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Profile{
		User:           *user,
		MessagesCount:  messagesCount,
		FollowersCount: followersCount,
		FollowingCount: followingCount,
		LikesCount:     int64(len(likedIDs)),
	}, nil
}

// UpdateProfile applies a profile edit. The current password must verify
// first; a wrong password fails the edit with a field error rather than a
// generic denial. Username and email collisions are both checked so the
// response can name every conflicting field, and blank image URLs fall back
// to the stock defaults. All changes land in one save.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !checkPassword(user.Password, update.Password) {
		appErr := models.NewValidationError("Incorrect password")
		appErr.Fields = []string{"password"}
		return nil, appErr
	}

	if err := validation.ValidateUsername(update.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(update.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateBio(update.Bio); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	// Check both credentials before writing so one response can report
	// every collision, not just the first.
	var duplicates []string
	if update.Username != user.Username {
		taken, err := s.users.UsernameTaken(ctx, update.Username, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			duplicates = append(duplicates, "username")
		}
	}
	if update.Email != user.Email {
		taken, err := s.users.EmailTaken(ctx, update.Email, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			duplicates = append(duplicates, "email")
		}
	}
	if len(duplicates) > 0 {
		return nil, models.NewDuplicateCredentialError(duplicates...)
	}

	user.Username = update.Username
	user.Email = update.Email
	user.Location = update.Location
	user.Bio = update.Bio

	user.ImageURL = update.ImageURL
	if user.ImageURL == "" {
		user.ImageURL = models.DefaultImageURL
	}
	user.HeaderImageURL = update.HeaderImageURL
	if user.HeaderImageURL == "" {
		user.HeaderImageURL = models.DefaultHeaderImageURL
	}

	// The unique constraints still backstop a race between the checks
	// above and this save.
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount removes the user and everything they own.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	return s.users.Delete(ctx, userID)
}
