package models

import (
	"time"

	"gorm.io/gorm"
)

// ActivityKind is the action an activity records.
type ActivityKind string

const (
	ActivityLog    ActivityKind = "log"
	ActivityReview ActivityKind = "review"
	ActivityLike   ActivityKind = "like"
	ActivityList   ActivityKind = "list"
	ActivityFollow ActivityKind = "follow"
)

// Valid reports whether k is one of the recorded activity kinds.
func (k ActivityKind) Valid() bool {
	switch k {
	case ActivityLog, ActivityReview, ActivityLike, ActivityList, ActivityFollow:
		return true
	}
	return false
}

// RaceMetadata is the race reference data stamped into logs and activities.
type RaceMetadata struct {
	Season   int    `json:"season"`
	Round    int    `json:"round"`
	RaceName string `json:"race_name"`
	Circuit  string `json:"circuit,omitempty"`
	Series   string `json:"series,omitempty"`
	Date     string `json:"date,omitempty"`
}

// Activity is an immutable record of one user action. Feeds order
// activities by (created_at desc, id asc).
type Activity struct {
	ID         string        `gorm:"primaryKey;size:36" json:"id"`
	ActorID    string        `gorm:"size:36;not null;index:idx_activities_actor_created" json:"actor_id"`
	Actor      ActorIdentity `gorm:"embedded;embeddedPrefix:actor_" json:"actor"`
	Kind       ActivityKind  `gorm:"size:20;not null" json:"kind"`
	TargetID   string        `gorm:"size:36;not null" json:"target_id"`
	TargetKind TargetKind    `gorm:"size:20;not null" json:"target_kind"`
	Content    *string       `gorm:"type:text" json:"content,omitempty"`
	Race       *RaceMetadata `gorm:"serializer:json;type:text" json:"race,omitempty"`
	CreatedAt  time.Time     `gorm:"index;index:idx_activities_actor_created" json:"created_at"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = generateUUID()
	}
	return nil
}

func (a *Activity) AfterFind(tx *gorm.DB) error {
	a.Actor.ID = a.ActorID
	return nil
}
