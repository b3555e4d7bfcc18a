package repository

import (
	"context"

	"github.com/shaygp/boxd/internal/models"
	"gorm.io/gorm"
)

// ProfileRepository is the identity store the profile cache reads through
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	GetProfiles(ctx context.Context, userIDs []string) ([]*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		return nil, storeErr("get profile", "user", err)
	}
	return &user, nil
}

func (r *profileRepository) GetProfiles(ctx context.Context, userIDs []string) ([]*models.User, error) {
	var users []*models.User
	if len(userIDs) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", userIDs).Find(&users).Error
	return users, storeErr("get profiles", "user", err)
}

func (r *profileRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return ErrInvalidInput
	}
	return storeErr("create user", "user", r.db.WithContext(ctx).Create(user).Error)
}

func (r *profileRepository) UpdateUser(ctx context.Context, user *models.User) error {
	if user == nil || user.ID == "" {
		return ErrInvalidInput
	}
	return storeErr("update user", "user", r.db.WithContext(ctx).Save(user).Error)
}
