package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/gatewatch/gatewatch/pkg/server/models"
)

// ============================================
// USER OPERATIONS
// ============================================

func (s *GORMStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	return findBy[models.User](ctx, s.db, "username", username, models.ErrUserNotFound)
}

func (s *GORMStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return findBy[models.User](ctx, s.db, "id", id, models.ErrUserNotFound)
}

func (s *GORMStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	return findAll[models.User](ctx, s.db)
}

func (s *GORMStore) CreateUser(ctx context.Context, user *models.User) (string, error) {
	if err := user.Validate(); err != nil {
		return "", err
	}
	user.CreatedAt = time.Now()
	return insertWithID(ctx, s.db, user, &user.ID, models.ErrDuplicateUser)
}

func (s *GORMStore) UpdateUser(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	// Check if user exists first
	var existing models.User
	if err := s.db.WithContext(ctx).Where("id = ?", user.ID).First(&existing).Error; err != nil {
		return convertNotFoundError(err, models.ErrUserNotFound)
	}

	// Update specific fields using Select to handle booleans properly
	err := s.db.WithContext(ctx).
		Model(&existing).
		Select("Username", "DisplayName", "Phone", "Role", "CheckpostID", "Active").
		Updates(user).Error
	if isUniqueConstraintError(err) {
		return models.ErrDuplicateUser
	}
	return err
}

func (s *GORMStore) DeleteUser(ctx context.Context, username string) error {
	return deleteBy[models.User](ctx, s.db, "username", username, models.ErrUserNotFound)
}

func (s *GORMStore) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	return updateColumn[models.User](ctx, s.db, "username", username, "password_hash", passwordHash, models.ErrUserNotFound)
}

func (s *GORMStore) UpdateLastLogin(ctx context.Context, username string, timestamp time.Time) error {
	return updateColumn[models.User](ctx, s.db, "username", username, "last_login", timestamp, models.ErrUserNotFound)
}

func (s *GORMStore) ValidateCredentials(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.Active {
		return nil, models.ErrUserDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	return user, nil
}

// ResolveRangerByPhoneSuffix maps an SMS sender to a ranger account. Phone
// numbers are stored as entered (separators and all), so suffix matching
// happens on the digits in Go rather than in SQL.
func (s *GORMStore) ResolveRangerByPhoneSuffix(ctx context.Context, suffix string) (*models.User, error) {
	if suffix == "" {
		return nil, models.ErrUnknownSender
	}

	var rangers []*models.User
	err := s.db.WithContext(ctx).
		Where("role = ? AND active = ?", string(models.RoleRanger), true).
		Find(&rangers).Error
	if err != nil {
		return nil, err
	}

	var matches []*models.User
	for _, r := range rangers {
		if r.PhoneMatchesSuffix(suffix) {
			matches = append(matches, r)
		}
	}

	switch len(matches) {
	case 0:
		return nil, models.ErrUnknownSender
	case 1:
		return matches[0], nil
	default:
		return nil, models.ErrAmbiguousSender
	}
}

// ============================================
// ADMIN INITIALIZATION
// ============================================

func (s *GORMStore) EnsureAdminUser(ctx context.Context) (string, error) {
	// Check if admin exists
	_, err := s.GetUser(ctx, models.AdminUsername)
	if err == nil {
		return "", nil // Admin already exists
	}
	if !errors.Is(err, models.ErrUserNotFound) {
		return "", err // Unexpected error
	}

	// Check if password was explicitly set via environment variable
	passwordFromEnv := os.Getenv(models.EnvAdminInitialPassword) != ""

	// Generate or get password from environment
	password, err := models.GetOrGenerateAdminPassword()
	if err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}

	passwordHash, err := models.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	admin := models.DefaultAdminUser(passwordHash)

	if _, err := s.CreateUser(ctx, admin); err != nil {
		return "", fmt.Errorf("failed to create admin user: %w", err)
	}

	// The generated password is only worth reporting when nobody chose it.
	if passwordFromEnv {
		return "", nil
	}
	return password, nil
}

func (s *GORMStore) IsAdminInitialized(ctx context.Context) (bool, error) {
	_, err := s.GetUser(ctx, models.AdminUsername)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, models.ErrUserNotFound) {
		return false, nil
	}
	return false, err
}
