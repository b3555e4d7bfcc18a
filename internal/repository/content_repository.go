package repository

import (
	"context"

	"github.com/shaygp/boxd/internal/models"
	"gorm.io/gorm"
)

// ContentRepository holds the race logs and lists that likes and comments target
type ContentRepository interface {
	CreateRaceLog(ctx context.Context, log *models.RaceLog) error
	GetRaceLog(ctx context.Context, id string) (*models.RaceLog, error)
	CreateList(ctx context.Context, list *models.List) error
	GetList(ctx context.Context, id string) (*models.List, error)
}

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) CreateRaceLog(ctx context.Context, log *models.RaceLog) error {
	if log == nil {
		return ErrInvalidInput
	}
	return storeErr("create race log", "race log", r.db.WithContext(ctx).Create(log).Error)
}

func (r *contentRepository) GetRaceLog(ctx context.Context, id string) (*models.RaceLog, error) {
	var log models.RaceLog
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&log).Error; err != nil {
		return nil, storeErr("get race log", "race log", err)
	}
	return &log, nil
}

func (r *contentRepository) CreateList(ctx context.Context, list *models.List) error {
	if list == nil {
		return ErrInvalidInput
	}
	return storeErr("create list", "list", r.db.WithContext(ctx).Create(list).Error)
}

func (r *contentRepository) GetList(ctx context.Context, id string) (*models.List, error) {
	var list models.List
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&list).Error; err != nil {
		return nil, storeErr("get list", "list", err)
	}
	return &list, nil
}
