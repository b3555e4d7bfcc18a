package counters

import (
	"context"
	"sync"
	"testing"

	apperrors "github.com/shaygp/boxd/internal/errors"
	"github.com/shaygp/boxd/internal/models"
	"github.com/shaygp/boxd/internal/repository"
	"github.com/shaygp/boxd/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustCreatesUserStatsOnFirstUse(t *testing.T) {
	db := testutil.NewDB(t)
	ledger := NewLedger(repository.NewCounterRepository(db))
	ctx := context.Background()

	require.NoError(t, ledger.Adjust(ctx, User("u1"), FollowersCount, 1))
	require.NoError(t, ledger.Adjust(ctx, User("u1"), FollowersCount, 1))
	require.NoError(t, ledger.Adjust(ctx, User("u1"), FollowingCount, 1))

	stats, err := ledger.UserStats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.FollowersCount)
	assert.Equal(t, int64(1), stats.FollowingCount)
}

func TestUntouchedUserReadsZero(t *testing.T) {
	db := testutil.NewDB(t)
	ledger := NewLedger(repository.NewCounterRepository(db))

	stats, err := ledger.UserStats(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, stats.FollowersCount)
	assert.Zero(t, stats.FollowingCount)
}

func TestAdjustIsNotClamped(t *testing.T) {
	db := testutil.NewDB(t)
	ledger := NewLedger(repository.NewCounterRepository(db))
	ctx := context.Background()

	require.NoError(t, ledger.Adjust(ctx, User("u1"), FollowersCount, -1))
	got, err := ledger.Get(ctx, User("u1"), FollowersCount)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), got)

	require.NoError(t, ledger.Adjust(ctx, User("u1"), FollowersCount, 1))
	got, err = ledger.Get(ctx, User("u1"), FollowersCount)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestAdjustRaceLogCounters(t *testing.T) {
	db := testutil.NewDB(t)
	ledger := NewLedger(repository.NewCounterRepository(db))
	ctx := context.Background()

	log := &models.RaceLog{UserID: "u1", Race: models.RaceMetadata{Season: 2024, Round: 8, RaceName: "Monaco Grand Prix"}}
	require.NoError(t, db.Create(log).Error)

	require.NoError(t, ledger.Adjust(ctx, RaceLog(log.ID), LikesCount, 1))
	require.NoError(t, ledger.Adjust(ctx, RaceLog(log.ID), CommentsCount, 1))
	require.NoError(t, ledger.Adjust(ctx, RaceLog(log.ID), CommentsCount, 1))

	var reloaded models.RaceLog
	require.NoError(t, db.First(&reloaded, "id = ?", log.ID).Error)
	assert.Equal(t, int64(1), reloaded.LikesCount)
	assert.Equal(t, int64(2), reloaded.CommentsCount)
}

func TestAdjustMissingRowIsNotFound(t *testing.T) {
	db := testutil.NewDB(t)
	ledger := NewLedger(repository.NewCounterRepository(db))

	err := ledger.Adjust(context.Background(), List("missing"), LikesCount, 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRejectsUnknownOwnerFieldPairs(t *testing.T) {
	db := testutil.NewDB(t)
	ledger := NewLedger(repository.NewCounterRepository(db))
	ctx := context.Background()

	err := ledger.Adjust(ctx, RaceLog("x"), FollowersCount, 1)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	err = ledger.Adjust(ctx, Comment("x"), CommentsCount, 1)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	err = ledger.Adjust(ctx, Owner{Kind: "playlist", ID: "x"}, LikesCount, 1)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestConcurrentAdjustmentsAreNotLost(t *testing.T) {
	db := testutil.NewDB(t)
	ledger := NewLedger(repository.NewCounterRepository(db))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			delta := int64(1)
			if i%4 == 0 {
				delta = -1
			}
			assert.NoError(t, ledger.Adjust(ctx, User("hot"), FollowersCount, delta))
		}(i)
	}
	wg.Wait()

	got, err := ledger.Get(ctx, User("hot"), FollowersCount)
	require.NoError(t, err)
	assert.Equal(t, int64(15-5), got)
}

func TestRecountOverwrites(t *testing.T) {
	db := testutil.NewDB(t)
	ledger := NewLedger(repository.NewCounterRepository(db))
	ctx := context.Background()

	require.NoError(t, ledger.Adjust(ctx, User("u1"), FollowersCount, 7))
	require.NoError(t, ledger.Recount(ctx, User("u1"), FollowersCount, 3))

	got, err := ledger.Get(ctx, User("u1"), FollowersCount)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)

	// recount on a user with no stats row yet creates it
	require.NoError(t, ledger.Recount(ctx, User("u2"), FollowingCount, 4))
	got, err = ledger.Get(ctx, User("u2"), FollowingCount)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got)
}

func TestOwnerOf(t *testing.T) {
	owner, err := OwnerOf(models.TargetList, "l1")
	require.NoError(t, err)
	assert.Equal(t, List("l1"), owner)

	_, err = OwnerOf("album", "x")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
