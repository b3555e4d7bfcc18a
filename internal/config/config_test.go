package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Feed.MembershipLimit)
	assert.Equal(t, 500, cfg.Notifications.BulkChunk)
	assert.Equal(t, 60*time.Second, cfg.ProfileCacheTTL)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Contains(t, cfg.PostgresDSN(), "dbname=boxd")
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("FEED_MEMBERSHIP_LIMIT", "30")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file:boxd.db")
	t.Setenv("PROFILE_CACHE_TTL", "2m")

	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Feed.MembershipLimit)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "file:boxd.db", cfg.PostgresDSN())
	assert.Equal(t, 2*time.Minute, cfg.ProfileCacheTTL)
}

func TestValidateRejectsBadSettings(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	_, err := FromViper(newViper())
	assert.Error(t, err)

	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("FEED_MEMBERSHIP_LIMIT", "0")
	_, err = FromViper(newViper())
	assert.Error(t, err)
}
