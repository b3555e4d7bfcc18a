package repository

import (
	"context"

	apperrors "github.com/shaygp/boxd/internal/errors"
	"github.com/shaygp/boxd/internal/models"
	"gorm.io/gorm"
)

// LikeRepository stores like edges from actors to targets
type LikeRepository interface {
	CreateLike(ctx context.Context, like *models.Like) error
	// DeleteLike removes the like only when it points at a target of kind
	DeleteLike(ctx context.Context, actorID, targetID string, kind models.TargetKind) (bool, error)
	HasLiked(ctx context.Context, actorID, targetID string) (bool, error)
	LikerIDs(ctx context.Context, targetID string) ([]string, error)
	// LikersByTarget groups liker ids for several targets in one query
	LikersByTarget(ctx context.Context, targetIDs []string) (map[string][]string, error)
	CountLikes(ctx context.Context, targetID string) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) CreateLike(ctx context.Context, like *models.Like) error {
	if like == nil {
		return ErrInvalidInput
	}
	err := r.db.WithContext(ctx).Create(like).Error
	if isDuplicate(err) {
		return apperrors.AlreadyLiked()
	}
	return storeErr("create like", "like", err)
}

func (r *likeRepository) DeleteLike(ctx context.Context, actorID, targetID string, kind models.TargetKind) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("actor_id = ? AND target_id = ? AND target_kind = ?", actorID, targetID, kind).
		Delete(&models.Like{})
	if res.Error != nil {
		return false, storeErr("delete like", "like", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *likeRepository) HasLiked(ctx context.Context, actorID, targetID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("actor_id = ? AND target_id = ?", actorID, targetID).
		Count(&count).Error
	if err != nil {
		return false, storeErr("check like", "like", err)
	}
	return count > 0, nil
}

func (r *likeRepository) LikerIDs(ctx context.Context, targetID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("target_id = ?", targetID).
		Order("created_at ASC").
		Pluck("actor_id", &ids).Error
	return ids, storeErr("list likers", "like", err)
}

func (r *likeRepository) LikersByTarget(ctx context.Context, targetIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(targetIDs))
	if len(targetIDs) == 0 {
		return out, nil
	}
	var likes []models.Like
	err := r.db.WithContext(ctx).
		Where("target_id IN ?", targetIDs).
		Order("created_at ASC").
		Find(&likes).Error
	if err != nil {
		return nil, storeErr("list likers", "like", err)
	}
	for _, l := range likes {
		out[l.TargetID] = append(out[l.TargetID], l.ActorID)
	}
	return out, nil
}

func (r *likeRepository) CountLikes(ctx context.Context, targetID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("target_id = ?", targetID).Count(&count).Error
	return count, storeErr("count likes", "like", err)
}
