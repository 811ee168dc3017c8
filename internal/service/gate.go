package service

import (
	"chirper/internal/models"
)

// The gate centralizes who-may-do-what decisions so handlers do not each
// re-derive them. All denials carry the UNAUTHORIZED code; the transport
// layer maps missing identity to 401 and forbidden actions to 403.

// RequireAuthenticated rejects requests with no established identity.
func RequireAuthenticated(userID uint) error {
	if userID == 0 {
		return models.NewUnauthorizedError("Access unauthorized")
	}
	return nil
}

// CanDeleteMessage permits deletion only by the message's owner.
func CanDeleteMessage(userID, ownerID uint) error {
	if err := RequireAuthenticated(userID); err != nil {
		return err
	}
	if userID != ownerID {
		return models.NewUnauthorizedError("You can only delete your own messages")
	}
	return nil
}

// CanFollow rejects following yourself.
func CanFollow(userID, targetID uint) error {
	if err := RequireAuthenticated(userID); err != nil {
		return err
	}
	if userID == targetID {
		return models.NewUnauthorizedError("You cannot follow yourself")
	}
	return nil
}

// CanLike rejects liking your own message.
func CanLike(userID, ownerID uint) error {
	if err := RequireAuthenticated(userID); err != nil {
		return err
	}
	if userID == ownerID {
		return models.NewUnauthorizedError("You cannot like your own message")
	}
	return nil
}
