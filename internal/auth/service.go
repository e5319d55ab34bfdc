package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/database/users"
	"github.com/mrlokans/library/internal/entities"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameRequired   = errors.New("username is required")
	ErrUsernameTooLong    = errors.New("username must be at most 64 characters")
)

const (
	maxUsernameLength    = 64
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin"
)

// Service handles authentication and user management.
type Service struct {
	db     *gorm.DB
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(db *gorm.DB, cfg config.Auth) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, username, password string) (*entities.User, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if len(username) > maxUsernameLength {
		return nil, ErrUsernameTooLong
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{Username: username, PasswordHash: passwordHash}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := users.NewRepository(tx)

		_, err := repo.GetByUsername(ctx, username)
		if err == nil {
			return ErrUserExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check existing user: %w", err)
		}

		if err := repo.Create(ctx, user); err != nil {
			if database.IsUniqueViolation(err) {
				return ErrUserExists
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate validates credentials and returns the user. Unknown users
// and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*entities.User, error) {
	user, err := users.NewRepository(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	return user, nil
}

// GetUserByID returns ErrUserNotFound when the id does not exist.
func (s *Service) GetUserByID(ctx context.Context, id uint) (*entities.User, error) {
	user, err := users.NewRepository(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *Service) HasUsers(ctx context.Context) (bool, error) {
	count, err := users.NewRepository(s.db).Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	return count > 0, nil
}

// SeedDefaultAdmin inserts admin/admin when no user exists yet. It reports
// whether a user was created.
func (s *Service) SeedDefaultAdmin(ctx context.Context) (bool, error) {
	hasUsers, err := s.HasUsers(ctx)
	if err != nil || hasUsers {
		return false, err
	}

	if _, err := s.Register(ctx, defaultAdminUsername, defaultAdminPassword); err != nil {
		if errors.Is(err, ErrUserExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
