package repository

import (
	"context"

	apperrors "github.com/shaygp/boxd/internal/errors"
	"github.com/shaygp/boxd/internal/models"
	"gorm.io/gorm"
)

// FollowRepository stores follow edges
type FollowRepository interface {
	CreateFollow(ctx context.Context, edge *models.Follow) error
	// DeleteFollow reports whether an edge was removed
	DeleteFollow(ctx context.Context, followerID, followingID string) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	FollowerIDs(ctx context.Context, userID string) ([]string, error)
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
	CountFollowers(ctx context.Context, userID string) (int64, error)
	CountFollowing(ctx context.Context, userID string) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) CreateFollow(ctx context.Context, edge *models.Follow) error {
	if edge == nil {
		return ErrInvalidInput
	}
	err := r.db.WithContext(ctx).Create(edge).Error
	if isDuplicate(err) {
		return apperrors.AlreadyFollowing()
	}
	return storeErr("create follow", "follow", err)
}

func (r *followRepository) DeleteFollow(ctx context.Context, followerID, followingID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, storeErr("delete follow", "follow", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, storeErr("check follow", "follow", err)
	}
	return count > 0, nil
}

func (r *followRepository) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Order("created_at DESC").
		Pluck("follower_id", &ids).Error
	return ids, storeErr("list followers", "follow", err)
}

func (r *followRepository) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Order("created_at DESC").
		Pluck("following_id", &ids).Error
	return ids, storeErr("list following", "follow", err)
}

func (r *followRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("following_id = ?", userID).Count(&count).Error
	return count, storeErr("count followers", "follow", err)
}

func (r *followRepository) CountFollowing(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, storeErr("count following", "follow", err)
}
