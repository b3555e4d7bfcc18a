package repository

import (
	"context"

	apperrors "github.com/shaygp/boxd/internal/errors"
	"github.com/shaygp/boxd/internal/models"
	"gorm.io/gorm"
)

// DefaultMembershipLimit is the largest actor set QueryByActors accepts
const DefaultMembershipLimit = 10

// ActivityRepository is the append-only activity store
type ActivityRepository interface {
	CreateActivity(ctx context.Context, activity *models.Activity) error
	GetActivity(ctx context.Context, id string) (*models.Activity, error)
	QueryGlobal(ctx context.Context, page Page) ([]models.Activity, error)
	QueryByActor(ctx context.Context, actorID string, page Page) ([]models.Activity, error)
	// QueryByActors rejects sets larger than MembershipLimit
	QueryByActors(ctx context.Context, actorIDs []string, page Page) ([]models.Activity, error)
	MembershipLimit() int
}

type activityRepository struct {
	db              *gorm.DB
	membershipLimit int
}

// NewActivityRepository creates a new activity repository. A membershipLimit
// below 1 falls back to DefaultMembershipLimit.
func NewActivityRepository(db *gorm.DB, membershipLimit int) ActivityRepository {
	if membershipLimit < 1 {
		membershipLimit = DefaultMembershipLimit
	}
	return &activityRepository{db: db, membershipLimit: membershipLimit}
}

func (r *activityRepository) MembershipLimit() int {
	return r.membershipLimit
}

func (r *activityRepository) CreateActivity(ctx context.Context, activity *models.Activity) error {
	if activity == nil {
		return ErrInvalidInput
	}
	return storeErr("append activity", "activity", r.db.WithContext(ctx).Create(activity).Error)
}

func (r *activityRepository) GetActivity(ctx context.Context, id string) (*models.Activity, error) {
	var activity models.Activity
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&activity).Error; err != nil {
		return nil, storeErr("get activity", "activity", err)
	}
	return &activity, nil
}

func (r *activityRepository) QueryGlobal(ctx context.Context, page Page) ([]models.Activity, error) {
	var activities []models.Activity
	err := orderedPage(r.db.WithContext(ctx), page).Find(&activities).Error
	return activities, storeErr("query global activity", "activity", err)
}

func (r *activityRepository) QueryByActor(ctx context.Context, actorID string, page Page) ([]models.Activity, error) {
	var activities []models.Activity
	q := r.db.WithContext(ctx).Where("actor_id = ?", actorID)
	err := orderedPage(q, page).Find(&activities).Error
	return activities, storeErr("query actor activity", "activity", err)
}

func (r *activityRepository) QueryByActors(ctx context.Context, actorIDs []string, page Page) ([]models.Activity, error) {
	if len(actorIDs) > r.membershipLimit {
		return nil, apperrors.MembershipLimitExceeded(len(actorIDs), r.membershipLimit)
	}
	var activities []models.Activity
	if len(actorIDs) == 0 {
		return activities, nil
	}
	q := r.db.WithContext(ctx).Where("actor_id IN ?", actorIDs)
	err := orderedPage(q, page).Find(&activities).Error
	return activities, storeErr("query activity by actors", "activity", err)
}
