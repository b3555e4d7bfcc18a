package repository

import (
	"context"

	"github.com/shaygp/boxd/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository stores per-recipient notifications
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	GetNotification(ctx context.Context, id string) (*models.Notification, error)
	ListForRecipient(ctx context.Context, recipientID string, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	UnreadIDs(ctx context.Context, recipientID string) ([]string, error)
	// MarkRead flips is_read on the given ids and returns rows changed
	MarkRead(ctx context.Context, ids []string) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n == nil {
		return ErrInvalidInput
	}
	return storeErr("create notification", "notification", r.db.WithContext(ctx).Create(n).Error)
}

func (r *notificationRepository) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&n).Error; err != nil {
		return nil, storeErr("get notification", "notification", err)
	}
	return &n, nil
}

func (r *notificationRepository) ListForRecipient(ctx context.Context, recipientID string, limit int) ([]models.Notification, error) {
	var list []models.Notification
	q := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&list).Error
	return list, storeErr("list notifications", "notification", err)
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, storeErr("count unread notifications", "notification", err)
}

func (r *notificationRepository) UnreadIDs(ctx context.Context, recipientID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	return ids, storeErr("list unread notifications", "notification", err)
}

func (r *notificationRepository) MarkRead(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id IN ? AND is_read = ?", ids, false).
		UpdateColumn("is_read", true)
	if res.Error != nil {
		return 0, storeErr("mark notifications read", "notification", res.Error)
	}
	return res.RowsAffected, nil
}
