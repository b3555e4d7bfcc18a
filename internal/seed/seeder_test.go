package seed

import (
	"context"
	"testing"

	"github.com/shaygp/boxd/internal/config"
	"github.com/shaygp/boxd/internal/container"
	"github.com/shaygp/boxd/internal/models"
	"github.com/shaygp/boxd/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunKeepsCountersConsistent(t *testing.T) {
	db := testutil.NewDB(t)
	c, err := container.New(&config.Config{Feed: config.FeedConfig{MembershipLimit: 10}}, db, nil)
	require.NoError(t, err)

	sum, err := NewSeeder(c.Repositories().Profiles, c.Actions()).Run(context.Background(), Options{
		Users:          6,
		FollowsPerUser: 3,
		LogsPerUser:    2,
		ListsPerUser:   1,
		LikesPerUser:   3,
		CommentsPerLog: 1,
		Seed:           42,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, sum.Users)
	assert.Equal(t, 12, sum.Logs)
	assert.Equal(t, 6, sum.Lists)
	assert.Equal(t, 12, sum.Comments)
	assert.Zero(t, sum.Degraded)

	var follows, likes int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&follows).Error)
	require.NoError(t, db.Model(&models.Like{}).Count(&likes).Error)
	assert.Equal(t, int64(sum.Follows), follows)
	assert.Equal(t, int64(sum.Likes), likes)

	var followers, logLikes, logComments int64
	require.NoError(t, db.Model(&models.UserStats{}).Select("COALESCE(SUM(followers_count), 0)").Scan(&followers).Error)
	require.NoError(t, db.Model(&models.RaceLog{}).Select("COALESCE(SUM(likes_count), 0)").Scan(&logLikes).Error)
	require.NoError(t, db.Model(&models.RaceLog{}).Select("COALESCE(SUM(comments_count), 0)").Scan(&logComments).Error)
	assert.Equal(t, follows, followers)
	assert.Equal(t, likes, logLikes)
	assert.Equal(t, int64(sum.Comments), logComments)
}
