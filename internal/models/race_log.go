package models

import (
	"time"

	"gorm.io/gorm"
)

// RaceLog is a user's record of watching a race. Only the fields likes,
// comments and the feed touch are modelled.
type RaceLog struct {
	ID            string       `gorm:"primaryKey;size:36" json:"id"`
	UserID        string       `gorm:"size:36;not null;index" json:"user_id"`
	Race          RaceMetadata `gorm:"serializer:json;type:text;not null" json:"race"`
	Rating        float64      `gorm:"not null;default:0" json:"rating"`
	Review        *string      `gorm:"type:text" json:"review,omitempty"`
	LikesCount    int64        `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount int64        `gorm:"not null;default:0" json:"comments_count"`
	CreatedAt     time.Time    `json:"created_at"`
}

// List is a user-curated collection of races.
type List struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	UserID        string    `gorm:"size:36;not null;index" json:"user_id"`
	Title         string    `gorm:"not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description,omitempty"`
	LikesCount    int64     `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount int64     `gorm:"not null;default:0" json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`
}

func (r *RaceLog) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = generateUUID()
	}
	return nil
}

func (l *List) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = generateUUID()
	}
	return nil
}
