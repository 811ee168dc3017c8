// Package service contains the application's business logic.
package service

import (
	"context"

	"chirper/internal/models"
	"chirper/internal/observability"
	"chirper/internal/repository"
	"chirper/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the username does not exist, so a
// failed login costs the same whether the username or the password was wrong.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AuthService handles signup and credential verification.
type AuthService struct {
	users repository.UserRepository
}

// NewAuthService returns a new AuthService.
func NewAuthService(users repository.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Signup registers a new user. The username and email must be unique; a
// collision surfaces as a DUPLICATE_CREDENTIAL error from the store rather
// than a racy pre-check here.
func (s *AuthService) Signup(ctx context.Context, username, email, password, imageURL string) (*models.User, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		ImageURL: imageURL,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies a username/password pair. Both unknown-username and
// wrong-password fail with the same error; the caller cannot tell which
// credential was bad.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if user == nil {
		// Burn a comparison anyway to keep response timing uniform.
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		observability.AuthFailures.WithLabelValues("unknown_user").Inc()
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		observability.AuthFailures.WithLabelValues("bad_password").Inc()
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	return user, nil
}

// checkPassword re-proves a password against a stored hash, used by login and
// by sensitive profile changes.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
