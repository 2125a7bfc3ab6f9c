package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	authdomain "workhub-backend/internal/auth/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *authdomain.User) error
	FindByID(ctx context.Context, id string) (*authdomain.User, error)
	Update(ctx context.Context, user *authdomain.User) error
	// UpdateLastSync stamps only the provider's last_sync column so that a
	// concurrent token write by the auth layer is not overwritten.
	UpdateLastSync(ctx context.Context, userID string, provider authdomain.Provider, at time.Time) error
}

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of userRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) Create(ctx context.Context, user *authdomain.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*authdomain.User, error) {
	var user authdomain.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *authdomain.User) error {
	user.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) UpdateLastSync(ctx context.Context, userID string, provider authdomain.Provider, at time.Time) error {
	if _, ok := authdomain.ParseProvider(string(provider)); !ok {
		return fmt.Errorf("unknown provider %q", provider)
	}
	column := string(provider) + "_last_sync"
	return r.db.WithContext(ctx).Model(&authdomain.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			column:       at,
			"updated_at": time.Now(),
		}).Error
}
