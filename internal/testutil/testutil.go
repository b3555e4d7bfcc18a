// Package testutil builds the in-memory stores package tests run against.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shaygp/boxd/internal/database"
	"github.com/shaygp/boxd/internal/logger"
	"github.com/shaygp/boxd/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory SQLite database closed at test end
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.Use(zap.NewNop())

	db, err := database.OpenInMemory()
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user whose display name is the given name
func CreateUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Username:    name,
		DisplayName: name,
		AvatarURL:   "https://cdn.boxd.test/avatars/" + name + ".png",
	}
	require.NoError(t, db.WithContext(context.Background()).Create(user).Error)
	return user
}

// CreateActivity inserts an activity with a fixed id and timestamp
func CreateActivity(t *testing.T, db *gorm.DB, id string, actor *models.User, at time.Time) *models.Activity {
	t.Helper()
	a := &models.Activity{
		ID:         id,
		ActorID:    actor.ID,
		Actor:      actor.Identity(),
		Kind:       models.ActivityLog,
		TargetID:   "log-" + id,
		TargetKind: models.TargetRaceLog,
		CreatedAt:  at.UTC(),
	}
	require.NoError(t, db.Create(a).Error)
	return a
}

// Base is a fixed instant tests offset from, whole seconds in UTC
var Base = time.Date(2024, time.May, 26, 13, 0, 0, 0, time.UTC)
