package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/shaygp/boxd/internal/counters"
	apperrors "github.com/shaygp/boxd/internal/errors"
	"github.com/shaygp/boxd/internal/models"
	"github.com/shaygp/boxd/internal/pipeline"
	"github.com/shaygp/boxd/internal/repository"
	"github.com/shaygp/boxd/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// failingCounters fails every increment
type failingCounters struct {
	repository.CounterRepository
}

func (failingCounters) Increment(context.Context, repository.CounterColumn, int64) error {
	return apperrors.StorageUnavailable("increment counter", errors.New("connection reset"))
}

type GraphTestSuite struct {
	suite.Suite
	db     *gorm.DB
	graph  *Graph
	ledger *counters.Ledger
	alice  *models.User
	bob    *models.User
	ctx    context.Context
}

func (s *GraphTestSuite) SetupTest() {
	s.db = testutil.NewDB(s.T())
	s.ctx = context.Background()
	s.ledger = counters.NewLedger(repository.NewCounterRepository(s.db))
	s.graph = New(repository.NewFollowRepository(s.db), repository.NewProfileRepository(s.db), s.ledger)
	s.alice = testutil.CreateUser(s.T(), s.db, "alice")
	s.bob = testutil.CreateUser(s.T(), s.db, "bob")
}

func (s *GraphTestSuite) stats(userID string) *models.UserStats {
	stats, err := s.ledger.UserStats(s.ctx, userID)
	s.Require().NoError(err)
	return stats
}

func (s *GraphTestSuite) TestFollowUpdatesBothCounters() {
	before := s.stats(s.bob.ID).FollowersCount

	edge, err := s.graph.Follow(s.ctx, s.alice.ID, s.bob.ID)
	s.Require().NoError(err)
	s.Equal(s.alice.ID, edge.FollowerID)
	s.Equal(s.bob.ID, edge.FollowingID)
	s.NotEmpty(edge.ID)

	s.Equal(before+1, s.stats(s.bob.ID).FollowersCount)
	s.Equal(int64(1), s.stats(s.alice.ID).FollowingCount)

	following, err := s.graph.IsFollowing(s.ctx, s.alice.ID, s.bob.ID)
	s.Require().NoError(err)
	s.True(following)
}

func (s *GraphTestSuite) TestUnfollowRestoresCounters() {
	_, err := s.graph.Follow(s.ctx, s.alice.ID, s.bob.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.graph.Unfollow(s.ctx, s.alice.ID, s.bob.ID))

	s.Zero(s.stats(s.bob.ID).FollowersCount)
	s.Zero(s.stats(s.alice.ID).FollowingCount)

	following, err := s.graph.IsFollowing(s.ctx, s.alice.ID, s.bob.ID)
	s.Require().NoError(err)
	s.False(following)
}

func (s *GraphTestSuite) TestSelfFollowRejected() {
	_, err := s.graph.Follow(s.ctx, s.alice.ID, s.alice.ID)
	s.ErrorIs(err, apperrors.ErrSelfFollow)
	s.Zero(s.stats(s.alice.ID).FollowersCount)
}

func (s *GraphTestSuite) TestDoubleFollowRejected() {
	_, err := s.graph.Follow(s.ctx, s.alice.ID, s.bob.ID)
	s.Require().NoError(err)

	_, err = s.graph.Follow(s.ctx, s.alice.ID, s.bob.ID)
	s.ErrorIs(err, apperrors.ErrAlreadyFollowing)
	s.Equal(int64(1), s.stats(s.bob.ID).FollowersCount, "no second delta")
}

func (s *GraphTestSuite) TestDuplicateEdgeAtStoreIsAlreadyFollowing() {
	repo := repository.NewFollowRepository(s.db)
	s.Require().NoError(repo.CreateFollow(s.ctx, &models.Follow{FollowerID: s.alice.ID, FollowingID: s.bob.ID}))

	err := repo.CreateFollow(s.ctx, &models.Follow{FollowerID: s.alice.ID, FollowingID: s.bob.ID})
	s.ErrorIs(err, apperrors.ErrAlreadyFollowing)
}

func (s *GraphTestSuite) TestUnfollowWithoutEdge() {
	err := s.graph.Unfollow(s.ctx, s.alice.ID, s.bob.ID)
	s.ErrorIs(err, apperrors.ErrNotFollowing)
	s.Zero(s.stats(s.bob.ID).FollowersCount)
}

func (s *GraphTestSuite) TestFollowUnknownUser() {
	_, err := s.graph.Follow(s.ctx, s.alice.ID, "ghost")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *GraphTestSuite) TestFollowRequiresActor() {
	_, err := s.graph.Follow(s.ctx, "", s.bob.ID)
	s.ErrorIs(err, apperrors.ErrUnauthenticated)
}

func (s *GraphTestSuite) TestCounterFailureIsDegradedSuccess() {
	ledger := counters.NewLedger(failingCounters{repository.NewCounterRepository(s.db)})
	g := New(repository.NewFollowRepository(s.db), repository.NewProfileRepository(s.db), ledger)

	edge, err := g.Follow(s.ctx, s.alice.ID, s.bob.ID)
	s.Require().Error(err)
	s.NotNil(edge, "edge is kept")
	s.True(pipeline.IsDegraded(err))
	s.ErrorIs(err, apperrors.ErrStorageUnavailable)

	se, ok := pipeline.AsStepError(err)
	s.Require().True(ok)
	s.Equal(pipeline.RelationWritten, se.Reached)
	s.Equal(pipeline.StepCounters, se.Step)

	following, err := g.IsFollowing(s.ctx, s.alice.ID, s.bob.ID)
	s.Require().NoError(err)
	s.True(following)
}

func (s *GraphTestSuite) TestListFollowersAndFollowing() {
	carol := testutil.CreateUser(s.T(), s.db, "carol")
	_, err := s.graph.Follow(s.ctx, s.alice.ID, s.bob.ID)
	s.Require().NoError(err)
	_, err = s.graph.Follow(s.ctx, carol.ID, s.bob.ID)
	s.Require().NoError(err)
	_, err = s.graph.Follow(s.ctx, s.alice.ID, carol.ID)
	s.Require().NoError(err)

	followers, err := s.graph.ListFollowers(s.ctx, s.bob.ID)
	s.Require().NoError(err)
	names := []string{}
	for _, f := range followers {
		names = append(names, f.DisplayName)
	}
	s.ElementsMatch([]string{"alice", "carol"}, names)

	following, err := s.graph.ListFollowing(s.ctx, s.alice.ID)
	s.Require().NoError(err)
	s.ElementsMatch([]string{s.bob.ID, carol.ID}, following)

	n, err := s.graph.CountFollowers(s.ctx, s.bob.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), n)

	n, err = s.graph.CountFollowing(s.ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), n)
}

func TestGraphTestSuite(t *testing.T) {
	suite.Run(t, new(GraphTestSuite))
}

func TestFollowUnfollowCycleLeavesCountsUnchanged(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	ledger := counters.NewLedger(repository.NewCounterRepository(db))
	g := New(repository.NewFollowRepository(db), repository.NewProfileRepository(db), ledger)
	a := testutil.CreateUser(t, db, "a")
	b := testutil.CreateUser(t, db, "b")

	for i := 0; i < 3; i++ {
		_, err := g.Follow(ctx, a.ID, b.ID)
		require.NoError(t, err)
		require.NoError(t, g.Unfollow(ctx, a.ID, b.ID))
	}

	stats, err := ledger.UserStats(ctx, b.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.FollowersCount)
}
