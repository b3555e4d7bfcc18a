package models

import (
	"time"

	"gorm.io/gorm"
)

// TargetKind names the kind of entity an activity, like or comment points at.
type TargetKind string

const (
	TargetRaceLog TargetKind = "raceLog"
	TargetList    TargetKind = "list"
	TargetUser    TargetKind = "user"
	TargetComment TargetKind = "comment"
)

// Follow is a directed edge follower -> following, unique per pair.
type Follow struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	FollowerID  string    `gorm:"size:36;not null;uniqueIndex:idx_follows_pair;index" json:"follower_id"`
	FollowingID string    `gorm:"size:36;not null;uniqueIndex:idx_follows_pair;index" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Like is one actor's reaction to a race log, list or comment.
type Like struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	ActorID    string     `gorm:"size:36;not null;uniqueIndex:idx_likes_actor_target" json:"actor_id"`
	TargetID   string     `gorm:"size:36;not null;uniqueIndex:idx_likes_actor_target;index" json:"target_id"`
	TargetKind TargetKind `gorm:"size:20;not null" json:"target_kind"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Comment on a race log or list. LikedBy is derived from the likes table
// on read and never stored.
type Comment struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	ActorID    string     `gorm:"size:36;not null;index" json:"actor_id"`
	TargetID   string     `gorm:"size:36;not null;index" json:"target_id"`
	TargetKind TargetKind `gorm:"size:20;not null" json:"target_kind"`
	Body       string     `gorm:"type:text;not null" json:"body"`
	LikesCount int64      `gorm:"not null;default:0" json:"likes_count"`
	LikedBy    []string   `gorm:"-" json:"liked_by"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

// NotificationKind is the reason a notification was sent.
type NotificationKind string

const (
	NotificationFollow  NotificationKind = "follow"
	NotificationLike    NotificationKind = "like"
	NotificationComment NotificationKind = "comment"
)

// Notification is addressed to one recipient and only ever flips IsRead.
type Notification struct {
	ID          string           `gorm:"primaryKey;size:36" json:"id"`
	RecipientID string           `gorm:"size:36;not null;index:idx_notifications_recipient" json:"recipient_id"`
	Kind        NotificationKind `gorm:"size:20;not null" json:"kind"`
	ActorID     string           `gorm:"size:36;not null" json:"actor_id"`
	Actor       ActorIdentity    `gorm:"embedded;embeddedPrefix:actor_" json:"actor"`
	Message     string           `gorm:"type:text;not null" json:"message"`
	LinkTo      *string          `gorm:"type:text" json:"link_to,omitempty"`
	IsRead      bool             `gorm:"not null;default:false;index:idx_notifications_recipient" json:"is_read"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = generateUUID()
	}
	return nil
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = generateUUID()
	}
	return nil
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = generateUUID()
	}
	return nil
}

// AfterFind restores the identity id, which shares the actor_id column.
func (n *Notification) AfterFind(tx *gorm.DB) error {
	n.Actor.ID = n.ActorID
	return nil
}
