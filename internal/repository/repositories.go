package repository

import "gorm.io/gorm"

// Repositories bundles every store the services depend on
type Repositories struct {
	Profiles      ProfileRepository
	Follows       FollowRepository
	Counters      CounterRepository
	Activities    ActivityRepository
	Notifications NotificationRepository
	Likes         LikeRepository
	Comments      CommentRepository
	Content       ContentRepository
}

// New builds gorm-backed repositories over one connection
func New(db *gorm.DB, membershipLimit int) *Repositories {
	return &Repositories{
		Profiles:      NewProfileRepository(db),
		Follows:       NewFollowRepository(db),
		Counters:      NewCounterRepository(db),
		Activities:    NewActivityRepository(db, membershipLimit),
		Notifications: NewNotificationRepository(db),
		Likes:         NewLikeRepository(db),
		Comments:      NewCommentRepository(db),
		Content:       NewContentRepository(db),
	}
}
