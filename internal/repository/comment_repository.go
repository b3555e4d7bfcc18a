package repository

import (
	"context"

	"github.com/shaygp/boxd/internal/models"
	"gorm.io/gorm"
)

// CommentRepository stores comments on race logs and lists
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	// DeleteComment removes the comment together with the likes on it
	DeleteComment(ctx context.Context, id string) (bool, error)
	ListForTarget(ctx context.Context, targetID string, limit int) ([]models.Comment, error)
	CountComments(ctx context.Context, targetID string) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment == nil {
		return ErrInvalidInput
	}
	return storeErr("create comment", "comment", r.db.WithContext(ctx).Create(comment).Error)
}

func (r *commentRepository) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, storeErr("get comment", "comment", err)
	}
	return &comment, nil
}

func (r *commentRepository) DeleteComment(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected > 0
		if !removed {
			return nil
		}
		return tx.Where("target_id = ? AND target_kind = ?", id, models.TargetComment).
			Delete(&models.Like{}).Error
	})
	if err != nil {
		return false, storeErr("delete comment", "comment", err)
	}
	return removed, nil
}

// ListForTarget returns comments oldest first, the order threads read in
func (r *commentRepository) ListForTarget(ctx context.Context, targetID string, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	q := r.db.WithContext(ctx).Where("target_id = ?", targetID).Order("created_at ASC").Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&comments).Error
	return comments, storeErr("list comments", "comment", err)
}

func (r *commentRepository) CountComments(ctx context.Context, targetID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("target_id = ?", targetID).Count(&count).Error
	return count, storeErr("count comments", "comment", err)
}
