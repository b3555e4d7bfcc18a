package notifications

import (
	"context"
	"fmt"
	"testing"
	"time"

	apperrors "github.com/shaygp/boxd/internal/errors"
	"github.com/shaygp/boxd/internal/models"
	"github.com/shaygp/boxd/internal/profiles"
	"github.com/shaygp/boxd/internal/repository"
	"github.com/shaygp/boxd/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type NotificationsTestSuite struct {
	suite.Suite
	db    *gorm.DB
	ctx   context.Context
	d     *Dispatcher
	alice *models.User
	bob   *models.User
}

func (s *NotificationsTestSuite) SetupTest() {
	s.db = testutil.NewDB(s.T())
	s.ctx = context.Background()
	resolver := profiles.NewResolver(repository.NewProfileRepository(s.db), nil, 0)
	s.d = NewDispatcher(repository.NewNotificationRepository(s.db), resolver, 3)
	s.alice = testutil.CreateUser(s.T(), s.db, "alice")
	s.bob = testutil.CreateUser(s.T(), s.db, "bob")
}

func (s *NotificationsTestSuite) notify(kind models.NotificationKind) *models.Notification {
	n, err := s.d.Notify(s.ctx, NotifyInput{
		RecipientID: s.bob.ID,
		ActorID:     s.alice.ID,
		Kind:        kind,
		TargetKind:  models.TargetRaceLog,
		LinkTo:      LinkToRaceLog("log-1"),
	})
	s.Require().NoError(err)
	s.Require().NotNil(n)
	return n
}

func (s *NotificationsTestSuite) TestNotifyStampsActorAndMessage() {
	n := s.notify(models.NotificationComment)

	s.False(n.IsRead)
	s.Equal(s.alice.ID, n.ActorID)
	s.Equal("alice", n.Actor.DisplayName)
	s.Equal("alice commented on your race log", n.Message)
	s.Require().NotNil(n.LinkTo)
	s.Equal("/logs/log-1", *n.LinkTo)

	stored, err := s.d.Get(s.ctx, n.ID)
	s.Require().NoError(err)
	s.Equal(s.alice.ID, stored.Actor.ID)
}

func (s *NotificationsTestSuite) TestSelfNotificationIsNoop() {
	n, err := s.d.Notify(s.ctx, NotifyInput{RecipientID: s.alice.ID, ActorID: s.alice.ID, Kind: models.NotificationLike})
	s.NoError(err)
	s.Nil(n)

	count, err := s.d.UnreadCount(s.ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *NotificationsTestSuite) TestNotifyUnknownActor() {
	_, err := s.d.Notify(s.ctx, NotifyInput{RecipientID: s.bob.ID, ActorID: "ghost", Kind: models.NotificationFollow})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *NotificationsTestSuite) TestMarkReadIsIdempotent() {
	n := s.notify(models.NotificationLike)

	s.Require().NoError(s.d.MarkRead(s.ctx, n.ID))
	s.Require().NoError(s.d.MarkRead(s.ctx, n.ID))

	stored, err := s.d.Get(s.ctx, n.ID)
	s.Require().NoError(err)
	s.True(stored.IsRead)

	count, err := s.d.UnreadCount(s.ctx, s.bob.ID)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *NotificationsTestSuite) TestMarkReadUnknownID() {
	err := s.d.MarkRead(s.ctx, "missing")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *NotificationsTestSuite) TestMarkAllReadChunks() {
	for i := 0; i < 7; i++ {
		s.notify(models.NotificationLike)
	}
	// someone else's inbox is untouched
	_, err := s.d.Notify(s.ctx, NotifyInput{RecipientID: s.alice.ID, ActorID: s.bob.ID, Kind: models.NotificationFollow})
	s.Require().NoError(err)

	n, err := s.d.MarkAllRead(s.ctx, s.bob.ID)
	s.Require().NoError(err)
	s.Equal(int64(7), n)

	count, err := s.d.UnreadCount(s.ctx, s.bob.ID)
	s.Require().NoError(err)
	s.Zero(count)

	count, err = s.d.UnreadCount(s.ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), count)

	again, err := s.d.MarkAllRead(s.ctx, s.bob.ID)
	s.Require().NoError(err)
	s.Zero(again)
}

func (s *NotificationsTestSuite) TestListForNewestFirstWithPatchedIdentity() {
	older := &models.Notification{
		RecipientID: s.bob.ID, Kind: models.NotificationFollow, ActorID: s.alice.ID,
		Message: "old", CreatedAt: testutil.Base,
	}
	newer := &models.Notification{
		RecipientID: s.bob.ID, Kind: models.NotificationLike, ActorID: s.alice.ID,
		Actor: models.ActorIdentity{DisplayName: "alice"}, Message: "new", CreatedAt: testutil.Base.Add(time.Minute),
	}
	s.Require().NoError(s.db.Create(older).Error)
	s.Require().NoError(s.db.Create(newer).Error)

	list, err := s.d.ListFor(s.ctx, s.bob.ID, 10)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("new", list[0].Message)
	s.Equal("old", list[1].Message)
	s.Equal("alice", list[1].Actor.DisplayName, "missing snapshot patched on read")
}

func TestNotificationsTestSuite(t *testing.T) {
	suite.Run(t, new(NotificationsTestSuite))
}

// snapshotRepo injects a notification between the unread snapshot and the
// first bulk update
type snapshotRepo struct {
	repository.NotificationRepository
	inject func()
}

func (r *snapshotRepo) UnreadIDs(ctx context.Context, recipientID string) ([]string, error) {
	ids, err := r.NotificationRepository.UnreadIDs(ctx, recipientID)
	if r.inject != nil {
		r.inject()
	}
	return ids, err
}

func TestMarkAllReadLeavesLaterNotificationsUnread(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	resolver := profiles.NewResolver(repository.NewProfileRepository(db), nil, 0)

	repo := &snapshotRepo{NotificationRepository: repository.NewNotificationRepository(db)}
	d := NewDispatcher(repo, resolver, 2)

	for i := 0; i < 3; i++ {
		_, err := d.Notify(ctx, NotifyInput{RecipientID: bob.ID, ActorID: alice.ID, Kind: models.NotificationLike, Message: fmt.Sprint(i)})
		require.NoError(t, err)
	}
	repo.inject = func() {
		_, err := d.Notify(ctx, NotifyInput{RecipientID: bob.ID, ActorID: alice.ID, Kind: models.NotificationFollow})
		require.NoError(t, err)
	}

	n, err := d.MarkAllRead(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	unread, err := d.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "Max started following you", Message(models.NotificationFollow, "Max", ""))
	assert.Equal(t, "Someone liked your list", Message(models.NotificationLike, "", models.TargetList))
	assert.Equal(t, "/users/u1", *LinkToTarget(models.TargetUser, "u1"))
	assert.Nil(t, LinkToTarget(models.TargetComment, "c1"))
}
