package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the identity row the profile cache reads. Only the fields the
// social core needs live here; credentials belong to the identity provider.
type User struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Username    string    `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName string    `gorm:"not null" json:"display_name"`
	AvatarURL   string    `gorm:"type:text" json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ActorIdentity is the snapshot of a user stamped into activities and
// notifications at write time. ID is not stored by the embedding row, which
// keeps its own actor_id column.
type ActorIdentity struct {
	ID          string `gorm:"-" json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Identity returns the snapshot view of the user.
func (u *User) Identity() ActorIdentity {
	return ActorIdentity{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}

// Missing reports whether the snapshot lacks the fields readers display.
func (a ActorIdentity) Missing() bool {
	return a.DisplayName == ""
}

// UserStats holds the denormalized follow counters for a user. Rows are
// created lazily by the first counter adjustment.
type UserStats struct {
	UserID         string    `gorm:"primaryKey;size:36" json:"user_id"`
	FollowersCount int64     `gorm:"not null;default:0" json:"followers_count"`
	FollowingCount int64     `gorm:"not null;default:0" json:"following_count"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (UserStats) TableName() string {
	return "user_stats"
}

func generateUUID() string {
	return uuid.New().String()
}

// BeforeCreate hooks for GORM
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = generateUUID()
	}
	return nil
}
