package seed

import (
	"fmt"
	"log"

	"chirper/internal/models"

	"gorm.io/gorm"
)

// Seeder populates the database with generated users, messages, and a
// follow/like mesh between them.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder with default options.
func NewSeeder(db *gorm.DB) *Seeder {
	return NewSeederWithOptions(db, Options{})
}

// NewSeederWithOptions creates a Seeder with explicit options.
func NewSeederWithOptions(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts)}
}

// ClearAll removes all seeded data. Edges go first so nothing ever
// references a missing row mid-clear.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	for _, model := range []any{
		&models.Like{},
		&models.Follow{},
		&models.Message{},
		&models.User{},
	} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Unscoped().Delete(model).Error; err != nil {
			return fmt.Errorf("failed to clear data: %w", err)
		}
	}
	return nil
}

// SeedSocialMesh creates count users and a follow graph between them. Each
// user follows a random subset of the others.
func (s *Seeder) SeedSocialMesh(count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)

	// A few well-known accounts for manual testing.
	for _, name := range []string{"alice", "bob", "carol"} {
		if len(users) >= count {
			break
		}
		name := name
		user, err := s.factory.CreateUser(func(u *models.User) {
			u.Username = name
			u.Email = fmt.Sprintf("%s@example.com", name)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", name, err)
		}
		users = append(users, user)
	}

	for i := len(users); i < count; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			continue
		}
		users = append(users, user)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}

	for _, follower := range users {
		// Follow roughly a fifth of the population.
		targets := s.factory.rand.Perm(len(users))
		n := len(users)/5 + 1
		for _, idx := range targets[:n] {
			if err := s.factory.CreateFollow(follower, users[idx]); err != nil {
				return nil, fmt.Errorf("failed to create follow: %w", err)
			}
		}
	}

	log.Printf("Seeded %d users with follow mesh", len(users))
	return users, nil
}

// SeedEngagement creates count messages spread across users plus likes on
// them. Users never like their own messages.
func (s *Seeder) SeedEngagement(users []*models.User, count int) ([]*models.Message, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to seed messages for")
	}

	messages := make([]*models.Message, 0, count)
	for i := 0; i < count; i++ {
		author := users[s.factory.rand.Intn(len(users))]
		message, err := s.factory.CreateMessage(author)
		if err != nil {
			return nil, fmt.Errorf("failed to create message: %w", err)
		}
		messages = append(messages, message)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d messages...", i)
		}
	}

	for _, message := range messages {
		likes := s.factory.rand.Intn(len(users)/3 + 1)
		for j := 0; j < likes; j++ {
			liker := users[s.factory.rand.Intn(len(users))]
			if liker.ID == message.UserID {
				continue
			}
			if err := s.factory.CreateLike(liker, message); err != nil {
				return nil, fmt.Errorf("failed to create like: %w", err)
			}
		}
	}

	log.Printf("Seeded %d messages with likes", len(messages))
	return messages, nil
}
